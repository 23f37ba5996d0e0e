package loan

import (
	"math"

	"loan-portal-service/internal/models"
)

// Risk grades bucketed from the upstream decision confidence. Records
// without a decision are counted as ungraded.
const (
	GradeA        = "A"
	GradeB        = "B"
	GradeC        = "C"
	GradeD        = "D"
	GradeUngraded = "ungraded"
)

// PortfolioSummary is the dashboard roll-up over a set of reconciled
// records. Derived on demand, never persisted.
type PortfolioSummary struct {
	TotalApplications     int            `json:"total_applications"`
	ApprovedCount         int            `json:"approved_count"`
	RejectedCount         int            `json:"rejected_count"`
	PendingCount          int            `json:"pending_count"`
	TotalDisbursed        float64        `json:"total_disbursed"`
	AverageLoanAmount     float64        `json:"average_loan_amount"`
	ApprovalRatePercent   float64        `json:"approval_rate_percent"`
	RiskGradeDistribution map[string]int `json:"risk_grade_distribution"`
}

// PortfolioAggregator rolls reconciled records up into summary
// statistics. Pure and deterministic, no I/O.
type PortfolioAggregator struct {
	Normalizer Normalizer
}

// Aggregate computes the portfolio summary. Disbursed totals cover
// approved and active loans; pending covers applications still before a
// decision. Averages and rates are 0 on empty input rather than a
// division-by-zero fault. A record whose status fails strict
// normalization still counts toward totals, it just stays unclassified.
func (a PortfolioAggregator) Aggregate(records []models.LoanApplicationRecord) PortfolioSummary {
	summary := PortfolioSummary{
		RiskGradeDistribution: make(map[string]int),
	}

	var amountSum float64
	for _, rec := range records {
		summary.TotalApplications++
		amountSum += rec.LoanAmount
		summary.RiskGradeDistribution[riskGrade(rec)]++

		info, err := a.Normalizer.Normalize(rec.Status)
		if err != nil {
			continue
		}
		switch info.Canonical {
		case StatusApproved:
			summary.ApprovedCount++
			summary.TotalDisbursed += rec.LoanAmount
		case StatusActive:
			summary.TotalDisbursed += rec.LoanAmount
		case StatusRejected:
			summary.RejectedCount++
		case StatusPendingDocuments, StatusUnderReview:
			summary.PendingCount++
		}
	}

	if summary.TotalApplications > 0 {
		total := float64(summary.TotalApplications)
		summary.AverageLoanAmount = amountSum / total
		rate := float64(summary.ApprovedCount) / total * 100
		summary.ApprovalRatePercent = math.Round(rate*10) / 10
	}

	return summary
}

func riskGrade(rec models.LoanApplicationRecord) string {
	if rec.AIDecision == "" {
		return GradeUngraded
	}
	switch {
	case rec.AIConfidence >= 0.8:
		return GradeA
	case rec.AIConfidence >= 0.6:
		return GradeB
	case rec.AIConfidence >= 0.4:
		return GradeC
	default:
		return GradeD
	}
}
