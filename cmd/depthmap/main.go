// Package main provides the depthmap calibration tool. It loads a
// depth map from CSV, discretises it into bins under a selected mode,
// and reports bin occupancy as JSON, PNG plot, HTML report, and
// optionally a calibration run recorded in sqlite.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/banshee-data/depth.report/internal/config"
	"github.com/banshee-data/depth.report/internal/db"
	"github.com/banshee-data/depth.report/internal/depthbin"
	"github.com/banshee-data/depth.report/internal/monitor"
	sqlitestore "github.com/banshee-data/depth.report/internal/storage/sqlite"
	"github.com/banshee-data/depth.report/internal/tensor"
	"github.com/banshee-data/depth.report/internal/version"
)

// Config holds configuration for a calibration pass.
type Config struct {
	InputCSV      string
	ConfigPath    string
	Mode          string
	DepthMin      float64
	DepthMax      float64
	NumBins       int
	OutputJSON    string
	PlotPNG       string
	ReportHTML    string
	DBPath        string
	MigrationsDir string
	ShowVersion   bool
}

// Result is the JSON document the tool emits.
type Result struct {
	Source    string             `json:"source"`
	Rows      int                `json:"rows"`
	Cols      int                `json:"cols"`
	Mode      string             `json:"mode"`
	DepthMin  float64            `json:"depth_min"`
	DepthMax  float64            `json:"depth_max"`
	NumBins   int                `json:"num_bins"`
	Occupancy depthbin.Occupancy `json:"occupancy"`
	RunID     string             `json:"run_id,omitempty"`
}

func main() {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("depthmap %s (%s, built %s)\n", version.Version, version.GitSHA, version.BuildTime)
		return
	}

	if cfg.InputCSV == "" {
		log.Fatal("input CSV file is required (-input)")
	}

	depthMap, err := loadDepthMapCSV(cfg.InputCSV)
	if err != nil {
		log.Fatalf("Failed to load depth map: %v", err)
	}

	mode := depthbin.Mode(cfg.Mode)
	if !mode.IsValid() {
		log.Fatalf("Invalid mode %q (valid: %s)", cfg.Mode, depthbin.ValidModesString())
	}

	targets, err := depthbin.BinDepthTargets(depthMap, mode, cfg.DepthMin, cfg.DepthMax, cfg.NumBins)
	if err != nil {
		log.Fatalf("Binning failed: %v", err)
	}
	occ, err := depthbin.CountOccupancy(targets, mode, cfg.NumBins)
	if err != nil {
		log.Fatalf("Occupancy count failed: %v", err)
	}

	shape := depthMap.Shape()
	result := &Result{
		Source:    cfg.InputCSV,
		Rows:      shape[0],
		Cols:      shape[1],
		Mode:      cfg.Mode,
		DepthMin:  cfg.DepthMin,
		DepthMax:  cfg.DepthMax,
		NumBins:   cfg.NumBins,
		Occupancy: occ,
	}

	if cfg.DBPath != "" {
		runID, err := recordRun(cfg, occ)
		if err != nil {
			log.Fatalf("Failed to record calibration run: %v", err)
		}
		result.RunID = runID
	}

	if cfg.PlotPNG != "" {
		if err := monitor.PlotOccupancy(occ, cfg.PlotPNG); err != nil {
			log.Fatalf("Failed to write plot: %v", err)
		}
		log.Printf("Wrote occupancy plot to %s", cfg.PlotPNG)
	}

	if cfg.ReportHTML != "" {
		if err := monitor.WriteOccupancyReport(occ, cfg.InputCSV, cfg.ReportHTML); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		log.Printf("Wrote occupancy report to %s", cfg.ReportHTML)
	}

	if err := writeResult(result, cfg.OutputJSON); err != nil {
		log.Fatalf("Failed to write result: %v", err)
	}
}

func parseFlags() *Config {
	cfg := &Config{}

	flag.StringVar(&cfg.InputCSV, "input", "", "Depth map CSV file (required)")
	flag.StringVar(&cfg.ConfigPath, "config", "", "Tuning config JSON (optional)")
	flag.StringVar(&cfg.Mode, "mode", "", "Discretisation mode: UD, LID or SID (overrides config)")
	flag.Float64Var(&cfg.DepthMin, "min", 0, "Minimum depth in meters (overrides config)")
	flag.Float64Var(&cfg.DepthMax, "max", 0, "Maximum depth in meters (overrides config)")
	flag.IntVar(&cfg.NumBins, "bins", 0, "Number of depth bins (overrides config)")
	flag.StringVar(&cfg.OutputJSON, "json", "", "Write result JSON to this file (default stdout)")
	flag.StringVar(&cfg.PlotPNG, "plot", "", "Write PNG occupancy histogram to this file")
	flag.StringVar(&cfg.ReportHTML, "report", "", "Write HTML occupancy report to this file")
	flag.StringVar(&cfg.DBPath, "db", "", "Record the run in this sqlite database")
	flag.StringVar(&cfg.MigrationsDir, "migrations", "db/migrations", "Migrations directory for -db")
	flag.BoolVar(&cfg.ShowVersion, "version", false, "Print version and exit")
	flag.Parse()

	// Start from tuning defaults, layer the config file on top, then
	// any explicitly-set flags.
	tuning := config.DefaultTuningConfig()
	if cfg.ConfigPath != "" {
		loaded, err := config.LoadTuningConfig(cfg.ConfigPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
		tuning = loaded
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["mode"] {
		cfg.Mode = string(tuning.GetDiscretizeMode())
	}
	if !set["min"] {
		cfg.DepthMin = tuning.GetDepthMin()
	}
	if !set["max"] {
		cfg.DepthMax = tuning.GetDepthMax()
	}
	if !set["bins"] {
		cfg.NumBins = tuning.GetNumBins()
	}

	return cfg
}

// loadDepthMapCSV reads a rectangular CSV of float64 depth samples into
// an (H, W) tensor. Non-finite tokens ("NaN", "Inf", "-Inf") are
// accepted and flow through to binning.
func loadDepthMapCSV(path string) (*tensor.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%s: empty depth map", path)
	}

	cols := len(records[0])
	data := make([]float64, 0, len(records)*cols)
	for i, row := range records {
		if len(row) != cols {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d", path, i, len(row), cols)
		}
		for j, cell := range row {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("%s: row %d col %d: %w", path, i, j, err)
			}
			data = append(data, v)
		}
	}
	return tensor.New([]int{len(records), cols}, data)
}

func recordRun(cfg *Config, occ depthbin.Occupancy) (string, error) {
	database, err := db.NewDB(cfg.DBPath)
	if err != nil {
		return "", err
	}
	defer database.Close()

	if err := database.MigrateUp(cfg.MigrationsDir); err != nil {
		return "", err
	}

	occJSON, err := json.Marshal(occ)
	if err != nil {
		return "", fmt.Errorf("marshaling occupancy: %w", err)
	}

	run := &sqlitestore.CalibrationRun{
		Source:        cfg.InputCSV,
		Mode:          cfg.Mode,
		DepthMin:      cfg.DepthMin,
		DepthMax:      cfg.DepthMax,
		NumBins:       cfg.NumBins,
		OccupancyJSON: occJSON,
	}
	store := sqlitestore.NewCalibrationStore(database.DB)
	if err := store.Insert(run); err != nil {
		return "", err
	}
	log.Printf("Recorded calibration run %s", run.RunID)
	return run.RunID, nil
}

func writeResult(result *Result, path string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	if path == "" {
		fmt.Println(string(data))
		return nil
	}
	return os.WriteFile(path, data, 0644)
}
