package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"trade-auditor/internal/types"
)

// Format specifies the output format for reports
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatCSV  Format = "csv"
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatText, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s", s)
}

// Reporter renders audit and risk reports and stores them on disk
type Reporter struct {
	outputDir string
}

func NewReporter(outputDir string) *Reporter {
	return &Reporter{outputDir: outputDir}
}

func (r *Reporter) Audit(rep *types.AuditReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return toJSON(rep)
	case FormatText:
		return auditText(rep), nil
	case FormatCSV:
		return auditCSV(rep)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func (r *Reporter) Risk(rep *types.RiskReport, format Format) (string, error) {
	switch format {
	case FormatJSON:
		return toJSON(rep)
	case FormatText:
		return riskText(rep), nil
	case FormatCSV:
		return riskCSV(rep)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// SaveAudit writes the rendered audit report and returns its path
func (r *Reporter) SaveAudit(rep *types.AuditReport, format Format) (string, error) {
	content, err := r.Audit(rep, format)
	if err != nil {
		return "", err
	}
	return r.save("audit", rep.GeneratedAt, format, content)
}

// SaveRisk writes the rendered risk report and returns its path
func (r *Reporter) SaveRisk(rep *types.RiskReport, format Format) (string, error) {
	content, err := r.Risk(rep, format)
	if err != nil {
		return "", err
	}
	return r.save("risk", rep.AsOf, format, content)
}

func (r *Reporter) save(kind string, at time.Time, format Format, content string) (string, error) {
	if err := os.MkdirAll(r.outputDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%s_%s.%s", kind, at.Format("2006-01-02_15-04-05"), format)
	path := filepath.Join(r.outputDir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

func toJSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
