package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Stats is a derived aggregate snapshot of the canonical collection. It is
// recomputed from scratch after every mutation and never patched in place.
type Stats struct {
	Total        int                      `json:"total"`
	ByStatus     map[types.RiskStatus]int `json:"byStatus"`
	BySeverity   map[types.Severity]int   `json:"bySeverity"`
	AverageScore float64                  `json:"averageScore"`
	MaxScore     int                      `json:"maxScore"`
	UpdatedAt    time.Time                `json:"updatedAt"`
}
