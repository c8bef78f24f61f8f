package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"trade-auditor/internal/audit"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/marketdata"
	"trade-auditor/internal/marketdata/marketdataobs"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/report"
	"trade-auditor/internal/risk"
	"trade-auditor/internal/risk/riskobs"
	"trade-auditor/internal/store"
	"trade-auditor/internal/trace"
	"trade-auditor/internal/tradelog"
	"trade-auditor/internal/types"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	positionsPath := flag.String("positions", "", "JSON array of position records")
	fillsPath := flag.String("fills", "", "JSONL fill log whose open positions are added")
	format := flag.String("format", "", "output format: text, json, or csv (default from config)")
	timeout := flag.Duration("timeout", 30*time.Second, "deadline for the market data lookup")
	save := flag.Bool("save", false, "also save the report under report.output_dir")
	flag.Parse()

	if *positionsPath == "" && *fillsPath == "" {
		fmt.Println("Error: -positions or -fills is required")
		flag.Usage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	if err := logger.Init(); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		os.Exit(1)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	defer trace.Shutdown(context.Background())

	cfg, err := store.LoadConfigOrDefault(*configPath)
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *format == "" {
		*format = cfg.Report.Format
	}
	reportFormat, err := report.ParseFormat(*format)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, err := loadRecords(ctx, cfg, *positionsPath, *fillsPath)
	if err != nil {
		fmt.Printf("Error loading positions: %v\n", err)
		os.Exit(1)
	}

	m := metrics.New()
	source, err := marketdata.New(cfg)
	if err != nil {
		fmt.Printf("Error creating market data source: %v\n", err)
		os.Exit(1)
	}

	analyzer := riskobs.Wrap(risk.NewAnalyzer(riskConfig(cfg), marketdataobs.Wrap(source, m)), m)
	rep, err := analyzer.Analyze(ctx, records)
	if err != nil {
		var ie *types.InputError
		if errors.As(err, &ie) {
			fmt.Printf("Invalid position input (%s): %s\n", ie.Requirement, ie.Reason)
		} else {
			fmt.Printf("Error running risk analysis: %v\n", err)
		}
		os.Exit(1)
	}

	reporter := report.NewReporter(cfg.Report.OutputDir)
	content, err := reporter.Risk(rep, reportFormat)
	if err != nil {
		fmt.Printf("Error generating report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(content)

	if *save {
		path, err := reporter.SaveRisk(rep, reportFormat)
		if err != nil {
			fmt.Printf("Warning: Could not save report: %v\n", err)
		} else {
			fmt.Printf("Report saved to: %s\n", path)
		}
	}

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		logger.ErrorWithErr(ctx, "Failed to write metrics textfile", err, "path", cfg.Metrics.Textfile)
	}
}

func riskConfig(cfg *store.Config) risk.Config {
	return risk.Config{
		RiskFreeRate:       cfg.Risk.RiskFreeRate,
		DefaultVolatility:  cfg.Risk.DefaultVolatility,
		MinVolatility:      cfg.Risk.MinVolatility,
		VolWindow:          cfg.Risk.VolWindow,
		LookbackDays:       cfg.Risk.LookbackDays,
		TradingDaysPerYear: float64(cfg.Risk.TradingDaysPerYear),
	}
}

// loadRecords reads free-form position records and, from a fill log, the
// positions still open after matching.
func loadRecords(ctx context.Context, cfg *store.Config, positionsPath, fillsPath string) ([]types.RiskRecord, error) {
	records := make([]types.RiskRecord, 0)

	if positionsPath != "" {
		f, err := os.Open(positionsPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := json.NewDecoder(f)
		dec.UseNumber()
		var raw []map[string]any
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode %s: %w", positionsPath, err)
		}
		for _, fields := range raw {
			records = append(records, types.FieldsRecord(fields))
		}
	}

	if fillsPath != "" {
		fills, _, err := tradelog.ReadFile(fillsPath)
		if err != nil {
			return nil, err
		}
		rep, err := audit.NewAuditor(cfg.Audit.MinHoldingDays).Run(ctx, fills)
		if err != nil {
			return nil, err
		}
		for _, p := range rep.Open {
			records = append(records, types.PositionRecord(p))
		}
	}
	return records, nil
}
