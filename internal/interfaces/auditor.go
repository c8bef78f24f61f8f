package interfaces

import (
	"context"

	"trade-auditor/internal/types"
)

// Auditor turns a fill log into positions, strategies and realized metrics.
type Auditor interface {
	Run(ctx context.Context, fills []types.Fill) (*types.AuditReport, error)
}
