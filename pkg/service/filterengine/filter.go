package filterengine

import (
	"strings"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/service/scoring"
)

// Apply returns the subset of risks matching every active filter
// predicate (logical AND). Input order is preserved and the input slice
// is never modified, so repeated application with the same filters is a
// no-op.
func Apply(risks []*model.Risk, filters model.Filters) []*model.Risk {
	matched := make([]*model.Risk, 0, len(risks))
	for _, risk := range risks {
		if matches(risk, filters) {
			matched = append(matched, risk)
		}
	}
	return matched
}

func matches(risk *model.Risk, filters model.Filters) bool {
	if filters.Search != "" {
		needle := strings.ToLower(filters.Search)
		if !strings.Contains(strings.ToLower(risk.Title), needle) &&
			!strings.Contains(strings.ToLower(risk.Description), needle) {
			return false
		}
	}

	if filters.Category != model.FilterAll &&
		!strings.EqualFold(risk.Category, filters.Category) {
		return false
	}

	if filters.Status != model.FilterAll &&
		filters.Status != risk.Status.String() {
		return false
	}

	if filters.Severity != model.FilterAll &&
		filters.Severity != scoring.SeverityOf(risk.RiskScore).String() {
		return false
	}

	return true
}
