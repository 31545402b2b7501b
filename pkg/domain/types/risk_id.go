package types

import (
	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
)

// RiskID is an opaque unique identifier for a risk record. It is generated
// once at creation and never changes afterwards.
type RiskID string

// NewRiskID generates a new collision-resistant RiskID.
func NewRiskID() RiskID {
	return RiskID(uuid.NewString())
}

// Validate checks if the RiskID is valid
func (x RiskID) Validate() error {
	if x == "" {
		return goerr.New("risk ID cannot be empty")
	}
	return nil
}

// String returns the string representation of RiskID
func (x RiskID) String() string {
	return string(x)
}
