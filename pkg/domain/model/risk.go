package model

import (
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Risk is the canonical risk record. RiskScore is always derived from the
// clamped Probability and Impact; it is never set independently.
type Risk struct {
	ID             types.RiskID     `json:"id"`
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Probability    int              `json:"probability"`
	Impact         int              `json:"impact"`
	RiskScore      int              `json:"riskScore"`
	Category       string           `json:"category"`
	Status         types.RiskStatus `json:"status"`
	MitigationPlan string           `json:"mitigationPlan"`
	CreationDate   time.Time        `json:"creationDate"`
	LastModified   time.Time        `json:"lastModified"`
}

// Clone returns a copy of the risk to prevent external modification
func (x *Risk) Clone() *Risk {
	copied := *x
	return &copied
}

// RiskInput is the payload for creating a risk. Status and MitigationPlan
// are optional; empty Status defaults to open.
type RiskInput struct {
	Title          string           `json:"title"`
	Description    string           `json:"description"`
	Probability    int              `json:"probability"`
	Impact         int              `json:"impact"`
	Category       string           `json:"category"`
	Status         types.RiskStatus `json:"status,omitempty"`
	MitigationPlan string           `json:"mitigationPlan,omitempty"`
}

// RiskUpdate is a partial update of a risk. A nil field means "leave the
// current value unchanged"; a non-nil field overwrites it. This keeps
// "field omitted" distinct from "field explicitly set to an empty value".
type RiskUpdate struct {
	Title          *string           `json:"title,omitempty"`
	Description    *string           `json:"description,omitempty"`
	Probability    *int              `json:"probability,omitempty"`
	Impact         *int              `json:"impact,omitempty"`
	Category       *string           `json:"category,omitempty"`
	Status         *types.RiskStatus `json:"status,omitempty"`
	MitigationPlan *string           `json:"mitigationPlan,omitempty"`
}

// IsEmpty reports whether the update carries no fields at all
func (x RiskUpdate) IsEmpty() bool {
	return x.Title == nil &&
		x.Description == nil &&
		x.Probability == nil &&
		x.Impact == nil &&
		x.Category == nil &&
		x.Status == nil &&
		x.MitigationPlan == nil
}
