package models

import "time"

// Record sources. Used only for merge precedence during reconciliation
// and never rendered to applicants.
const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Repayment frequencies accepted on submission.
const (
	FrequencyWeekly    = "weekly"
	FrequencyMonthly   = "monthly"
	FrequencyQuarterly = "quarterly"
)

// LoanApplicationRecord is the central entity of the portal. Records for
// the same application may arrive from both the authoritative store and
// the local submission cache with differing status vocabularies.
//
// The three completion flags are plain booleans on purpose: a flag absent
// from the source payload decodes to false, which is the contract — an
// unset flag always reads as an unmet requirement, never as "unknown".
type LoanApplicationRecord struct {
	ID                 string    `json:"id" db:"id"`
	UserID             string    `json:"user_id" db:"user_id"`
	LoanAmount         float64   `json:"loan_amount" db:"loan_amount"`
	LoanPurpose        string    `json:"loan_purpose" db:"loan_purpose"`
	LoanTenorMonths    int       `json:"loan_tenor_months" db:"loan_tenor_months"`
	RepaymentFrequency string    `json:"repayment_frequency" db:"repayment_frequency"`
	Status             string    `json:"status" db:"status"`
	DocumentsCompleted bool      `json:"documents_completed" db:"documents_completed"`
	ESGCompleted       bool      `json:"esg_completed" db:"esg_completed"`
	AssetsCompleted    bool      `json:"assets_completed" db:"assets_completed"`
	AIDecision         string    `json:"ai_decision,omitempty" db:"ai_decision"`
	AIConfidence       float64   `json:"ai_confidence,omitempty" db:"ai_confidence"`
	AIReasoning        string    `json:"ai_reasoning,omitempty" db:"ai_reasoning"`
	Source             string    `json:"-" db:"-"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
}

// ValidFrequency reports whether f is one of the accepted repayment frequencies.
func ValidFrequency(f string) bool {
	switch f {
	case FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}
	return false
}
