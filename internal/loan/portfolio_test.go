package loan

import (
	"math"
	"testing"
	"time"

	"loan-portal-service/internal/models"
)

func TestAggregate_EmptyInput(t *testing.T) {
	var agg PortfolioAggregator

	summary := agg.Aggregate(nil)
	if summary.TotalApplications != 0 || summary.ApprovedCount != 0 || summary.RejectedCount != 0 ||
		summary.PendingCount != 0 || summary.TotalDisbursed != 0 ||
		summary.AverageLoanAmount != 0 || summary.ApprovalRatePercent != 0 {
		t.Errorf("expected all-zero summary on empty input, got %+v", summary)
	}
}

func TestAggregate_MixedPortfolio(t *testing.T) {
	var agg PortfolioAggregator
	now := time.Now().UTC()

	summary := agg.Aggregate([]models.LoanApplicationRecord{
		{ID: "A", LoanAmount: 50000, Status: "approved", AIDecision: "approve", AIConfidence: 0.92, CreatedAt: now},
		{ID: "B", LoanAmount: 30000, Status: "active", AIDecision: "approve", AIConfidence: 0.65, CreatedAt: now},
		{ID: "C", LoanAmount: 20000, Status: "rejected", AIDecision: "reject", AIConfidence: 0.30, CreatedAt: now},
		{ID: "D", LoanAmount: 10000, Status: "under_review", CreatedAt: now},
		{ID: "E", LoanAmount: 10000, Status: "pending_documents", CreatedAt: now},
		{ID: "F", LoanAmount: 40000, Status: "completed", AIDecision: "approve", AIConfidence: 0.75, CreatedAt: now},
	})

	if summary.TotalApplications != 6 {
		t.Errorf("expected 6 applications, got %d", summary.TotalApplications)
	}
	if summary.ApprovedCount != 1 {
		t.Errorf("expected 1 approved, got %d", summary.ApprovedCount)
	}
	if summary.RejectedCount != 1 {
		t.Errorf("expected 1 rejected, got %d", summary.RejectedCount)
	}
	if summary.PendingCount != 2 {
		t.Errorf("expected 2 pending, got %d", summary.PendingCount)
	}
	// disbursed covers approved and active only
	if summary.TotalDisbursed != 80000 {
		t.Errorf("expected 80000 disbursed, got %v", summary.TotalDisbursed)
	}
	if math.Abs(summary.AverageLoanAmount-160000.0/6) > 1e-9 {
		t.Errorf("unexpected average loan amount %v", summary.AverageLoanAmount)
	}
	// 1/6 = 16.666..., rounded to one decimal
	if summary.ApprovalRatePercent != 16.7 {
		t.Errorf("expected approval rate 16.7, got %v", summary.ApprovalRatePercent)
	}

	grades := summary.RiskGradeDistribution
	if grades[GradeA] != 1 || grades[GradeB] != 2 || grades[GradeD] != 1 || grades[GradeUngraded] != 2 {
		t.Errorf("unexpected risk grade distribution %v", grades)
	}
}

func TestAggregate_UnknownStatusCountsAsPending(t *testing.T) {
	var agg PortfolioAggregator

	summary := agg.Aggregate([]models.LoanApplicationRecord{
		{ID: "A", LoanAmount: 5000, Status: "weird_status_v2"},
	})

	if summary.TotalApplications != 1 {
		t.Errorf("expected 1 application, got %d", summary.TotalApplications)
	}
	if summary.PendingCount != 1 {
		t.Errorf("lenient normalization should classify unknown as pending, got %d", summary.PendingCount)
	}
	if summary.TotalDisbursed != 0 {
		t.Errorf("unknown status must not count as disbursed, got %v", summary.TotalDisbursed)
	}
}
