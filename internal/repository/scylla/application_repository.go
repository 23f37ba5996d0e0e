package scylla

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"loan-portal-service/internal/bucketing"
	"loan-portal-service/internal/models"
	"loan-portal-service/internal/util"
)

// ApplicationRepository is the interface over the authoritative
// application store.
type ApplicationRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error)
	Insert(ctx context.Context, record models.LoanApplicationRecord) error
	HealthCheck(ctx context.Context) error
}

// applicationRepository reads and writes loan_applications rows,
// partitioned by the user's murmur3 bucket.
type applicationRepository struct {
	client       *ScyllaClient
	bucketingMgr *bucketing.BucketingManager
}

func NewApplicationRepository(client *ScyllaClient, bucketingMgr *bucketing.BucketingManager, logger *zap.Logger) ApplicationRepository {
	return &applicationRepository{
		client:       client,
		bucketingMgr: bucketingMgr,
	}
}

// ListByUser returns every application the remote store holds for a user.
// Returned records are tagged with the remote source for reconciliation.
func (r *applicationRepository) ListByUser(ctx context.Context, userID string) ([]models.LoanApplicationRecord, error) {
	bucket := r.bucketingMgr.GetUserBucket(userID)

	query := r.client.Session.Query(
		r.client.Prepared.SelectApplicationsByUser.Statement(),
		bucket, userID,
	).WithContext(ctx)

	iter := query.Iter()

	var records []models.LoanApplicationRecord
	var rec models.LoanApplicationRecord
	for iter.Scan(
		&rec.ID, &rec.UserID, &rec.LoanAmount, &rec.LoanPurpose, &rec.LoanTenorMonths,
		&rec.RepaymentFrequency, &rec.Status, &rec.DocumentsCompleted, &rec.ESGCompleted,
		&rec.AssetsCompleted, &rec.AIDecision, &rec.AIConfidence, &rec.AIReasoning, &rec.CreatedAt,
	) {
		rec.Source = models.SourceRemote
		records = append(records, rec)
		rec = models.LoanApplicationRecord{}
	}

	if err := iter.Close(); err != nil {
		util.Error("Failed to list applications",
			zap.String("user_id", userID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to list applications for user %s: %w", userID, err)
	}

	return records, nil
}

// Insert writes one application row.
func (r *applicationRepository) Insert(ctx context.Context, record models.LoanApplicationRecord) error {
	if record.ID == "" || record.UserID == "" {
		return fmt.Errorf("application record requires id and user_id")
	}

	bucket := r.bucketingMgr.GetUserBucket(record.UserID)

	query := r.client.Session.Query(
		r.client.Prepared.InsertApplication.Statement(),
		bucket, record.UserID, record.ID, record.LoanAmount, record.LoanPurpose,
		record.LoanTenorMonths, record.RepaymentFrequency, record.Status,
		record.DocumentsCompleted, record.ESGCompleted, record.AssetsCompleted,
		record.AIDecision, record.AIConfidence, record.AIReasoning, record.CreatedAt,
	).WithContext(ctx)

	if err := query.Exec(); err != nil {
		util.Error("Failed to insert application",
			zap.String("application_id", record.ID),
			zap.String("user_id", record.UserID),
			zap.Error(err))
		return fmt.Errorf("failed to insert application %s: %w", record.ID, err)
	}

	util.Info("Application stored",
		zap.String("application_id", record.ID),
		zap.String("user_id", record.UserID),
		zap.Int("user_bucket", bucket))

	return nil
}

func (r *applicationRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck()
}
