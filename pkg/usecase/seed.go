package usecase

import (
	"context"
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/service/scoring"
	"github.com/secmon-lab/riskregister/pkg/utils/logging"
)

type seedRecord struct {
	title          string
	description    string
	probability    int
	impact         int
	category       string
	status         types.RiskStatus
	mitigationPlan string
}

var demoRecords = []seedRecord{
	{
		title:          "Payment processor outage",
		description:    "Primary payment provider becomes unavailable, blocking all checkout transactions until failover completes.",
		probability:    3,
		impact:         5,
		category:       "Operational",
		status:         types.RiskStatusOpen,
		mitigationPlan: "Contract a secondary processor and rehearse the failover runbook quarterly.",
	},
	{
		title:          "Vendor compliance gap",
		description:    "A key vendor's certification lapsed and the renewed audit report has not been delivered.",
		probability:    2,
		impact:         4,
		category:       "Compliance",
		status:         types.RiskStatusMitigated,
		mitigationPlan: "Obtained interim attestation letter; full report due next quarter.",
	},
	{
		title:          "Phishing vulnerability",
		description:    "Staff remain susceptible to credential phishing campaigns targeting the admin console.",
		probability:    4,
		impact:         3,
		category:       "Security",
		status:         types.RiskStatusOpen,
		mitigationPlan: "Roll out hardware security keys and run a phishing simulation program.",
	},
}

// SeedDemoData populates an empty store with the demo records and returns
// how many were added. A non-empty store is left untouched and 0 is
// returned, so seeding is safe to call unconditionally at startup.
func (x *RiskStore) SeedDemoData(ctx context.Context) int {
	now := time.Now().UTC()

	x.mu.Lock()
	if len(x.risks) > 0 {
		x.mu.Unlock()
		logging.From(ctx).Info("store is not empty, skipping demo seed", "count", len(x.risks))
		return 0
	}

	for _, rec := range demoRecords {
		risk := &model.Risk{
			ID:             types.NewRiskID(),
			Title:          rec.title,
			Description:    rec.description,
			Probability:    rec.probability,
			Impact:         rec.impact,
			RiskScore:      scoring.Score(rec.probability, rec.impact),
			Category:       rec.category,
			Status:         rec.status,
			MitigationPlan: rec.mitigationPlan,
			CreationDate:   now,
			LastModified:   now,
		}
		x.risks = append([]*model.Risk{risk}, x.risks...)
	}
	x.recalc()
	seeded := len(x.risks)
	x.mu.Unlock()

	x.notify()
	logging.From(ctx).Info("seeded demo risks", "count", seeded)
	return seeded
}
