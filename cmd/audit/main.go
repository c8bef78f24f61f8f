package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"trade-auditor/internal/audit"
	"trade-auditor/internal/audit/auditobs"
	"trade-auditor/internal/logger"
	"trade-auditor/internal/metrics"
	"trade-auditor/internal/report"
	"trade-auditor/internal/store"
	"trade-auditor/internal/trace"
	"trade-auditor/internal/tradelog"
	"trade-auditor/internal/types"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	fillsPath := flag.String("fills", "", "JSONL fill log to audit (required)")
	format := flag.String("format", "", "output format: text, json, or csv (default from config)")
	save := flag.Bool("save", false, "also save the report under report.output_dir")
	flag.Parse()

	if *fillsPath == "" {
		fmt.Println("Error: -fills is required")
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
	ctx := context.Background()
	defer trace.Shutdown(ctx)

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

	fills, stats, err := tradelog.ReadFile(*fillsPath)
	if err != nil {
		fmt.Printf("Error reading fill log: %v\n", err)
		os.Exit(1)
	}
	if stats.Skipped > 0 {
		logger.Warn(ctx, "Skipped malformed fill log lines", "skipped", stats.Skipped, "lines", stats.Lines)
	}

	m := metrics.New()
	auditor := auditobs.Wrap(audit.NewAuditor(cfg.Audit.MinHoldingDays), m)

	rep, err := auditor.Run(ctx, fills)
	if err != nil {
		var ie *types.InputError
		if errors.As(err, &ie) {
			fmt.Printf("Invalid fill log (%s): %s\n", ie.Requirement, ie.Reason)
		} else {
			fmt.Printf("Error running audit: %v\n", err)
		}
		os.Exit(1)
	}

	reporter := report.NewReporter(cfg.Report.OutputDir)
	content, err := reporter.Audit(rep, reportFormat)
	if err != nil {
		fmt.Printf("Error generating report: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(content)

	if *save {
		path, err := reporter.SaveAudit(rep, reportFormat)
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
