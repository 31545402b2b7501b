package stats

import (
	"math"
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/scoring"
)

// Compute reduces a risk collection into a fresh aggregate snapshot in a
// single pass. It must be called after every mutation; the snapshot is
// never patched incrementally.
func Compute(risks []*model.Risk) model.Stats {
	s := model.Stats{
		Total:      len(risks),
		ByStatus:   make(map[types.RiskStatus]int, 3),
		BySeverity: make(map[types.Severity]int, 3),
		UpdatedAt:  time.Now().UTC(),
	}
	for _, status := range types.AllRiskStatuses() {
		s.ByStatus[status] = 0
	}
	for _, severity := range types.AllSeverities() {
		s.BySeverity[severity] = 0
	}

	if len(risks) == 0 {
		return s
	}

	totalScore := 0
	for _, risk := range risks {
		s.ByStatus[risk.Status.Normalize()]++
		s.BySeverity[scoring.SeverityOf(risk.RiskScore)]++
		if risk.RiskScore > s.MaxScore {
			s.MaxScore = risk.RiskScore
		}
		totalScore += risk.RiskScore
	}

	s.AverageScore = math.Round(float64(totalScore)/float64(len(risks))*100) / 100
	return s
}
