// Package sqlite persists depth-discretisation calibration runs.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CalibrationRun records one binning pass over a depth map: the
// discretisation parameters used and the resulting bin occupancy.
type CalibrationRun struct {
	RunID         string          `json:"run_id"`
	Source        string          `json:"source"`
	Mode          string          `json:"mode"`
	DepthMin      float64         `json:"depth_min"`
	DepthMax      float64         `json:"depth_max"`
	NumBins       int             `json:"num_bins"`
	OccupancyJSON json.RawMessage `json:"occupancy_json,omitempty"`
	CreatedAt     int64           `json:"created_at"`
}

// CalibrationStore provides persistence for calibration runs.
type CalibrationStore struct {
	db *sql.DB
}

// NewCalibrationStore creates a new CalibrationStore.
func NewCalibrationStore(db *sql.DB) *CalibrationStore {
	return &CalibrationStore{db: db}
}

// Insert persists a new calibration run. If RunID is empty, a UUID is
// generated.
func (s *CalibrationStore) Insert(run *CalibrationRun) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.CreatedAt == 0 {
		run.CreatedAt = time.Now().UnixNano()
	}

	var occStr interface{}
	if len(run.OccupancyJSON) > 0 {
		occStr = string(run.OccupancyJSON)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO calibration_runs (
				run_id, source, mode, depth_min, depth_max, num_bins,
				occupancy_json, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.Source, run.Mode, run.DepthMin, run.DepthMax,
			run.NumBins, occStr, run.CreatedAt,
		)
		return err
	})
}

// Get returns a single run by id, or sql.ErrNoRows if absent.
func (s *CalibrationStore) Get(runID string) (*CalibrationRun, error) {
	row := s.db.QueryRow(`
		SELECT run_id, source, mode, depth_min, depth_max, num_bins,
		       occupancy_json, created_at
		FROM calibration_runs WHERE run_id = ?`, runID)
	return scanCalibrationRun(row)
}

// ListBySource returns all runs for a given source, newest first.
func (s *CalibrationStore) ListBySource(source string) ([]*CalibrationRun, error) {
	rows, err := s.db.Query(`
		SELECT run_id, source, mode, depth_min, depth_max, num_bins,
		       occupancy_json, created_at
		FROM calibration_runs
		WHERE source = ?
		ORDER BY created_at DESC`, source)
	if err != nil {
		return nil, fmt.Errorf("querying calibration runs for %s: %w", source, err)
	}
	defer rows.Close()

	var runs []*CalibrationRun
	for rows.Next() {
		run, err := scanCalibrationRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCalibrationRun(row rowScanner) (*CalibrationRun, error) {
	var run CalibrationRun
	var occ sql.NullString
	err := row.Scan(&run.RunID, &run.Source, &run.Mode, &run.DepthMin,
		&run.DepthMax, &run.NumBins, &occ, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	if occ.Valid {
		run.OccupancyJSON = json.RawMessage(occ.String)
	}
	return &run, nil
}
