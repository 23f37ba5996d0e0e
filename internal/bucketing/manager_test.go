package bucketing

import (
	"testing"

	"loan-portal-service/internal/config"
)

func newTestManager(buckets int) *BucketingManager {
	cfg := &config.Config{}
	cfg.Bucketing.UserBuckets = buckets
	return NewBucketingManager(cfg)
}

func TestGetUserBucket_Deterministic(t *testing.T) {
	bm := newTestManager(100)

	first := bm.GetUserBucket("USR-12345")
	for i := 0; i < 10; i++ {
		if got := bm.GetUserBucket("USR-12345"); got != first {
			t.Fatalf("bucket changed between calls: %d vs %d", first, got)
		}
	}
}

func TestGetUserBucket_InRange(t *testing.T) {
	bm := newTestManager(16)

	ids := []string{"a", "b", "USR-1", "USR-2", "some-longer-identifier"}
	for _, id := range ids {
		bucket := bm.GetUserBucket(id)
		if bucket < 0 || bucket >= 16 {
			t.Errorf("bucket %d for %q out of range", bucket, id)
		}
	}
}
