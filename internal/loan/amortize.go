package loan

import (
	"fmt"
	"math"
)

// AmortizationResult holds the derived repayment figures for a fixed-rate,
// equal-installment loan. Values are unrounded; rounding happens at the
// presentation boundary.
type AmortizationResult struct {
	PeriodicPayment float64 `json:"periodic_payment"`
	TotalInterest   float64 `json:"total_interest"`
	TotalPayable    float64 `json:"total_payable"`
}

// InvalidInputError reports an amortization input that violates the
// calculator preconditions. This is a programmer-error class: callers
// validate upstream instead of coercing values into range.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ComputePayment computes the periodic payment, total interest, and total
// payable for a loan. annualRate is a fraction (0.12 means 12% p.a.) and
// is converted to a monthly periodic rate. A zero rate degenerates to a
// straight principal split, avoiding the division by zero in the annuity
// formula. Pure and deterministic.
func ComputePayment(principal, annualRate float64, months int) (AmortizationResult, error) {
	if principal <= 0 || math.IsNaN(principal) || math.IsInf(principal, 0) {
		return AmortizationResult{}, &InvalidInputError{Field: "principal", Reason: "must be a positive amount"}
	}
	if months < 1 {
		return AmortizationResult{}, &InvalidInputError{Field: "months", Reason: "must be at least 1"}
	}
	if annualRate < 0 || math.IsNaN(annualRate) || math.IsInf(annualRate, 0) {
		return AmortizationResult{}, &InvalidInputError{Field: "annual_rate", Reason: "must be zero or positive"}
	}

	periodicRate := annualRate / 12
	var payment float64
	if periodicRate == 0 {
		payment = principal / float64(months)
	} else {
		growth := math.Pow(1+periodicRate, float64(months))
		payment = principal * periodicRate * growth / (growth - 1)
	}

	totalPayable := payment * float64(months)
	return AmortizationResult{
		PeriodicPayment: payment,
		TotalInterest:   totalPayable - principal,
		TotalPayable:    totalPayable,
	}, nil
}
