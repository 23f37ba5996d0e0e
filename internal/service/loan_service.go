package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"loan-portal-service/internal/loan"
	"loan-portal-service/internal/models"
	"loan-portal-service/internal/util"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrUnavailable  = errors.New("no application source available")
)

// RemoteStore is the authoritative application store.
type RemoteStore interface {
	ListByUser(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error)
	Insert(ctx context.Context, record models.LoanApplicationRecord) error
}

// LocalCache is the best-effort per-user record cache written at
// submission time.
type LocalCache interface {
	GetUserApplications(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error)
	AppendUserApplication(ctx context.Context, record models.LoanApplicationRecord) error
}

// EventPublisher publishes application lifecycle events.
type EventPublisher interface {
	PublishApplicationEvent(ctx context.Context, event models.ApplicationEvent) error
}

// SearchIndex is the back-office search collaborator. Indexing is
// best-effort and never blocks the pipeline.
type SearchIndex interface {
	IndexApplication(ctx context.Context, record models.LoanApplicationRecord) error
	SearchApplications(ctx context.Context, query string, size int) ([]models.LoanApplicationRecord, error)
}

// LoanService runs the aggregation pipeline: fetch both sources,
// reconcile, derive notifications and portfolio statistics.
type LoanService struct {
	remote     RemoteStore
	cache      LocalCache
	events     EventPublisher
	search     SearchIndex
	normalizer loan.Normalizer
	notifier   loan.NotificationGenerator
	aggregator loan.PortfolioAggregator
	logger     *zap.Logger
}

func NewLoanService(
	remote RemoteStore,
	cache LocalCache,
	events EventPublisher,
	search SearchIndex,
	normalizer loan.Normalizer,
	logger *zap.Logger,
) *LoanService {
	return &LoanService{
		remote:     remote,
		cache:      cache,
		events:     events,
		search:     search,
		normalizer: normalizer,
		notifier:   loan.NotificationGenerator{Normalizer: normalizer},
		aggregator: loan.PortfolioAggregator{Normalizer: normalizer},
		logger:     logger,
	}
}

// ApplicationView decorates a reconciled record with its derived fields
// for the presentation layer.
type ApplicationView struct {
	models.LoanApplicationRecord
	StatusInfo   loan.StatusInfo        `json:"status_info"`
	Requirements loan.RequirementStatus `json:"requirements"`
	// Provisional marks a record seen only in the local cache; its
	// remote write may not be confirmed yet.
	Provisional bool `json:"provisional"`
}

// ApplicantOverview is the full dashboard payload for one applicant.
type ApplicantOverview struct {
	Applications  []ApplicationView       `json:"applications"`
	Notifications []loan.NotificationItem `json:"notifications"`
	Portfolio     loan.PortfolioSummary   `json:"portfolio"`
}

// ApplicationSubmitRequest is the payload for a new application.
type ApplicationSubmitRequest struct {
	UserID             string  `json:"user_id"`
	LoanAmount         float64 `json:"loan_amount"`
	LoanPurpose        string  `json:"loan_purpose"`
	LoanTenorMonths    int     `json:"loan_tenor_months"`
	RepaymentFrequency string  `json:"repayment_frequency"`
}

// fetchRecords pulls both sources concurrently. A failing source degrades
// to the other one; only both failing is an error, so a single backend
// outage never blanks the dashboard.
func (s *LoanService) fetchRecords(ctx context.Context, userID string) (remote, local []models.LoanApplicationRecord, err error) {
	var remoteErr, localErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		remote, remoteErr = s.remote.ListByUser(gctx, userID)
		return nil
	})
	g.Go(func() error {
		local, localErr = s.cache.GetUserApplications(gctx, userID)
		return nil
	})
	_ = g.Wait()

	if remoteErr != nil && localErr != nil {
		return nil, nil, fmt.Errorf("%w: remote: %v, local: %v", ErrUnavailable, remoteErr, localErr)
	}
	if remoteErr != nil {
		s.logger.Warn("Remote store unavailable, serving cached records",
			util.String("user_id", userID),
			util.ErrorField(remoteErr))
		remote = nil
	}
	if localErr != nil {
		s.logger.Warn("Local cache unavailable, serving remote records only",
			util.String("user_id", userID),
			util.ErrorField(localErr))
		local = nil
	}
	return remote, local, nil
}

// ApplicantOverview reconciles both sources and derives the dashboard
// payload. The whole pipeline recomputes on every call; nothing is
// retained between invocations.
func (s *LoanService) ApplicantOverview(ctx context.Context, userID string) (*ApplicantOverview, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	remote, local, err := s.fetchRecords(ctx, userID)
	if err != nil {
		return nil, err
	}

	records := loan.Reconcile(remote, local)

	views := make([]ApplicationView, 0, len(records))
	for _, rec := range records {
		info, err := s.normalizer.Normalize(rec.Status)
		if err != nil {
			// strict mode: the fault stays local to this record
			s.logger.Error("Skipping record with unmapped status",
				util.String("application_id", rec.ID),
				util.String("status", rec.Status),
				util.ErrorField(err))
			continue
		}
		views = append(views, ApplicationView{
			LoanApplicationRecord: rec,
			StatusInfo:            info,
			Requirements:          loan.EvaluateRequirements(rec),
			Provisional:           rec.Source == models.SourceLocal,
		})
	}

	return &ApplicantOverview{
		Applications:  views,
		Notifications: s.notifier.Generate(records),
		Portfolio:     s.aggregator.Aggregate(records),
	}, nil
}

// Notifications returns just the derived notification set for a user.
func (s *LoanService) Notifications(ctx context.Context, userID string) ([]loan.NotificationItem, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	remote, local, err := s.fetchRecords(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.notifier.Generate(loan.Reconcile(remote, local)), nil
}

// Portfolio returns just the aggregate statistics for a user.
func (s *LoanService) Portfolio(ctx context.Context, userID string) (loan.PortfolioSummary, error) {
	if strings.TrimSpace(userID) == "" {
		return loan.PortfolioSummary{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	remote, local, err := s.fetchRecords(ctx, userID)
	if err != nil {
		return loan.PortfolioSummary{}, err
	}
	return s.aggregator.Aggregate(loan.Reconcile(remote, local)), nil
}

// SubmitApplication validates and stores a new application, then fans out
// to the cache, the event topic, and the search index. Only the
// authoritative write can fail the submission.
func (s *LoanService) SubmitApplication(ctx context.Context, req *ApplicationSubmitRequest) (*models.LoanApplicationRecord, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request body is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.LoanAmount <= 0 {
		return nil, fmt.Errorf("%w: loan amount must be positive", ErrInvalidInput)
	}
	if req.LoanTenorMonths < 1 {
		return nil, fmt.Errorf("%w: loan tenor must be at least one month", ErrInvalidInput)
	}
	if !models.ValidFrequency(req.RepaymentFrequency) {
		return nil, fmt.Errorf("%w: repayment frequency must be weekly, monthly, or quarterly", ErrInvalidInput)
	}

	record := models.LoanApplicationRecord{
		ID:                 uuid.New().String(),
		UserID:             req.UserID,
		LoanAmount:         req.LoanAmount,
		LoanPurpose:        strings.TrimSpace(req.LoanPurpose),
		LoanTenorMonths:    req.LoanTenorMonths,
		RepaymentFrequency: req.RepaymentFrequency,
		Status:             string(loan.StatusPendingDocuments),
		Source:             models.SourceRemote,
		CreatedAt:          time.Now().UTC(),
	}

	if err := s.remote.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to store application: %w", err)
	}

	// write-through cache so the record is visible before the remote
	// store's read path catches up
	if err := s.cache.AppendUserApplication(ctx, record); err != nil {
		s.logger.Warn("Failed to cache submitted application",
			util.String("application_id", record.ID),
			util.ErrorField(err))
	}

	if s.events != nil {
		event := models.ApplicationEvent{
			EventID:       uuid.New().String(),
			EventType:     models.EventApplicationSubmitted,
			ApplicationID: record.ID,
			UserID:        record.UserID,
			LoanAmount:    record.LoanAmount,
			LoanPurpose:   record.LoanPurpose,
			Status:        record.Status,
			OccurredAt:    record.CreatedAt,
		}
		if err := s.events.PublishApplicationEvent(ctx, event); err != nil {
			s.logger.Warn("Failed to publish application event",
				util.String("application_id", record.ID),
				util.ErrorField(err))
		}
	}

	if s.search != nil {
		if err := s.search.IndexApplication(ctx, record); err != nil {
			s.logger.Warn("Failed to index submitted application",
				util.String("application_id", record.ID),
				util.ErrorField(err))
		}
	}

	s.logger.Info("Application submitted",
		util.String("application_id", record.ID),
		util.String("user_id", record.UserID))

	return &record, nil
}

// Amortize computes the repayment figures for a prospective loan.
func (s *LoanService) Amortize(principal, annualRate float64, months int) (loan.AmortizationResult, error) {
	return loan.ComputePayment(principal, annualRate, months)
}

// SearchApplications runs a back-office search over the application index.
func (s *LoanService) SearchApplications(ctx context.Context, query string, size int) ([]models.LoanApplicationRecord, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", ErrInvalidInput)
	}
	if util.ContainsSuspicious(query) {
		return nil, fmt.Errorf("%w: search query contains disallowed characters", ErrInvalidInput)
	}
	if s.search == nil {
		return nil, fmt.Errorf("search index is not configured")
	}
	return s.search.SearchApplications(ctx, util.SanitizeInput(query), size)
}
