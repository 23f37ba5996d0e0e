package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"loan-portal-service/internal/loan"
	"loan-portal-service/internal/models"
)

type stubRemoteStore struct {
	records  []models.LoanApplicationRecord
	listErr  error
	inserted []models.LoanApplicationRecord
	insErr   error
}

func (s *stubRemoteStore) ListByUser(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error) {
	return s.records, s.listErr
}

func (s *stubRemoteStore) Insert(ctx context.Context, record models.LoanApplicationRecord) error {
	if s.insErr != nil {
		return s.insErr
	}
	s.inserted = append(s.inserted, record)
	return nil
}

type stubLocalCache struct {
	records  []models.LoanApplicationRecord
	getErr   error
	appended []models.LoanApplicationRecord
}

func (s *stubLocalCache) GetUserApplications(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error) {
	return s.records, s.getErr
}

func (s *stubLocalCache) AppendUserApplication(ctx context.Context, record models.LoanApplicationRecord) error {
	s.appended = append(s.appended, record)
	return nil
}

type stubPublisher struct {
	events []models.ApplicationEvent
}

func (s *stubPublisher) PublishApplicationEvent(ctx context.Context, event models.ApplicationEvent) error {
	s.events = append(s.events, event)
	return nil
}

func newTestService(remote *stubRemoteStore, cache *stubLocalCache, events EventPublisher) *LoanService {
	return NewLoanService(remote, cache, events, nil, loan.Normalizer{}, zap.NewNop())
}

func TestApplicantOverview_MergesBothSources(t *testing.T) {
	now := time.Now().UTC()

	remote := &stubRemoteStore{records: []models.LoanApplicationRecord{
		{ID: "A1", UserID: "USR-1", LoanAmount: 50000, Status: "approved", AIDecision: "approve", CreatedAt: now},
	}}
	cache := &stubLocalCache{records: []models.LoanApplicationRecord{
		{ID: "A1", UserID: "USR-1", LoanAmount: 50000, Status: "pending_documents", CreatedAt: now},
		{ID: "B2", UserID: "USR-1", LoanAmount: 20000, Status: "submitted", CreatedAt: now.Add(-time.Hour)},
	}}

	overview, err := newTestService(remote, cache, nil).ApplicantOverview(context.Background(), "USR-1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if len(overview.Applications) != 2 {
		t.Fatalf("expected 2 applications, got %d", len(overview.Applications))
	}

	// remote record wins the A1 conflict
	var a1 *ApplicationView
	for i := range overview.Applications {
		if overview.Applications[i].ID == "A1" {
			a1 = &overview.Applications[i]
		}
	}
	if a1 == nil {
		t.Fatal("A1 missing from overview")
	}
	if a1.Status != "approved" {
		t.Errorf("expected remote status to win, got %q", a1.Status)
	}
	if a1.Provisional {
		t.Error("remote-backed record must not be provisional")
	}
	if a1.StatusInfo.Canonical != loan.StatusApproved {
		t.Errorf("expected canonical approved, got %s", a1.StatusInfo.Canonical)
	}

	// the local-only record reads as provisional
	for _, view := range overview.Applications {
		if view.ID == "B2" && !view.Provisional {
			t.Error("local-only record must be provisional")
		}
	}

	if overview.Portfolio.TotalApplications != 2 {
		t.Errorf("expected portfolio over 2 records, got %d", overview.Portfolio.TotalApplications)
	}
	if len(overview.Notifications) == 0 {
		t.Error("expected derived notifications")
	}
}

func TestApplicantOverview_DegradesWhenRemoteDown(t *testing.T) {
	now := time.Now().UTC()

	remote := &stubRemoteStore{listErr: errors.New("scylla timeout")}
	cache := &stubLocalCache{records: []models.LoanApplicationRecord{
		{ID: "B2", UserID: "USR-1", LoanAmount: 20000, Status: "submitted", CreatedAt: now},
	}}

	overview, err := newTestService(remote, cache, nil).ApplicantOverview(context.Background(), "USR-1")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if len(overview.Applications) != 1 || overview.Applications[0].ID != "B2" {
		t.Fatalf("expected the cached record to survive, got %+v", overview.Applications)
	}
}

func TestApplicantOverview_ErrsWhenBothSourcesDown(t *testing.T) {
	remote := &stubRemoteStore{listErr: errors.New("scylla timeout")}
	cache := &stubLocalCache{getErr: errors.New("redis refused")}

	_, err := newTestService(remote, cache, nil).ApplicantOverview(context.Background(), "USR-1")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestApplicantOverview_RequiresUserID(t *testing.T) {
	_, err := newTestService(&stubRemoteStore{}, &stubLocalCache{}, nil).ApplicantOverview(context.Background(), "  ")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestSubmitApplication(t *testing.T) {
	remote := &stubRemoteStore{}
	cache := &stubLocalCache{}
	publisher := &stubPublisher{}
	svc := newTestService(remote, cache, publisher)

	record, err := svc.SubmitApplication(context.Background(), &ApplicationSubmitRequest{
		UserID:             "USR-1",
		LoanAmount:         75000,
		LoanPurpose:        "working_capital",
		LoanTenorMonths:    24,
		RepaymentFrequency: models.FrequencyMonthly,
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if record.ID == "" {
		t.Error("expected a minted application id")
	}
	if record.Status != string(loan.StatusPendingDocuments) {
		t.Errorf("new applications start as pending_documents, got %q", record.Status)
	}
	if len(remote.inserted) != 1 {
		t.Fatalf("expected one remote insert, got %d", len(remote.inserted))
	}
	if len(cache.appended) != 1 {
		t.Fatalf("expected write-through cache append, got %d", len(cache.appended))
	}
	if len(publisher.events) != 1 || publisher.events[0].EventType != models.EventApplicationSubmitted {
		t.Fatalf("expected one submitted event, got %+v", publisher.events)
	}
}

func TestSubmitApplication_Validation(t *testing.T) {
	svc := newTestService(&stubRemoteStore{}, &stubLocalCache{}, nil)

	cases := []struct {
		name string
		req  ApplicationSubmitRequest
	}{
		{"missing user", ApplicationSubmitRequest{LoanAmount: 1000, LoanTenorMonths: 12, RepaymentFrequency: "monthly"}},
		{"zero amount", ApplicationSubmitRequest{UserID: "U", LoanAmount: 0, LoanTenorMonths: 12, RepaymentFrequency: "monthly"}},
		{"negative amount", ApplicationSubmitRequest{UserID: "U", LoanAmount: -5, LoanTenorMonths: 12, RepaymentFrequency: "monthly"}},
		{"zero tenor", ApplicationSubmitRequest{UserID: "U", LoanAmount: 1000, LoanTenorMonths: 0, RepaymentFrequency: "monthly"}},
		{"bad frequency", ApplicationSubmitRequest{UserID: "U", LoanAmount: 1000, LoanTenorMonths: 12, RepaymentFrequency: "daily"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := tc.req
			if _, err := svc.SubmitApplication(context.Background(), &req); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestSubmitApplication_RemoteFailureFailsSubmission(t *testing.T) {
	remote := &stubRemoteStore{insErr: errors.New("write timeout")}
	svc := newTestService(remote, &stubLocalCache{}, nil)

	_, err := svc.SubmitApplication(context.Background(), &ApplicationSubmitRequest{
		UserID:             "USR-1",
		LoanAmount:         1000,
		LoanTenorMonths:    6,
		RepaymentFrequency: models.FrequencyWeekly,
	})
	if err == nil {
		t.Fatal("expected submission to fail when the authoritative write fails")
	}
}

func TestSearchApplications_RejectsSuspiciousQuery(t *testing.T) {
	svc := newTestService(&stubRemoteStore{}, &stubLocalCache{}, nil)

	_, err := svc.SearchApplications(context.Background(), "<script>alert(1)</script>", 10)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
