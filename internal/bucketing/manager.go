package bucketing

import (
	"hash"
	"sync"
	"time"

	"github.com/spaolacci/murmur3"

	"loan-portal-service/internal/config"
)

// BucketingManager assigns users to stable partition buckets. Buckets
// spread rows across Scylla partitions; assignments must stay consistent
// across restarts, so the hash is seedless murmur3 over the raw user id.
type BucketingManager struct {
	userBuckets int
	hasherPool  sync.Pool
}

func NewBucketingManager(cfg *config.Config) *BucketingManager {
	bm := &BucketingManager{
		userBuckets: cfg.Bucketing.UserBuckets,
	}

	// pool of hash states to avoid per-call allocation
	bm.hasherPool = sync.Pool{
		New: func() interface{} {
			return murmur3.New64()
		},
	}

	return bm
}

// GetUserBucket returns the consistent bucket for a user (0 to userBuckets-1).
func (bm *BucketingManager) GetUserBucket(userID string) int {
	hasher := bm.hasherPool.Get().(hash.Hash64)
	defer bm.hasherPool.Put(hasher)

	hasher.Reset()
	_, _ = hasher.Write([]byte(userID))

	return int(hasher.Sum64() % uint64(bm.userBuckets))
}

// GetDateBucket returns the UTC date partition used by analytics rows.
func (bm *BucketingManager) GetDateBucket() string {
	return time.Now().UTC().Format("2006-01-02")
}
