package quota

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LocalStore is the process-local fallback used when the shared store cannot
// be created or reached. Counts are per instance, so enforcement is looser
// than the shared store; this is the only permissive-fallback path in the
// subsystem. Refunds are a no-op here because the token bucket refills
// continuously.
type LocalStore struct {
	mu      sync.Mutex
	buckets map[string]*localBucket
}

type localBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

const localBucketTTL = 30 * time.Minute

// NewLocalStore builds the fallback store and starts the idle-bucket sweep.
func NewLocalStore(ctx context.Context) *LocalStore {
	s := &LocalStore{buckets: make(map[string]*localBucket)}

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()

	return s
}

// Allow admits up to max requests per window per key via a token bucket.
func (s *LocalStore) Allow(_ context.Context, key string, window time.Duration, max int) (Decision, error) {
	if max <= 0 {
		return Decision{Allowed: true}, nil
	}

	s.mu.Lock()
	bucket, ok := s.buckets[key]
	if !ok {
		bucket = &localBucket{
			lim: rate.NewLimiter(rate.Every(window/time.Duration(max)), max),
		}
		s.buckets[key] = bucket
	}
	bucket.seen = time.Now()
	s.mu.Unlock()

	res := bucket.lim.Reserve()
	if delay := res.Delay(); delay > 0 {
		res.Cancel()
		return Decision{Allowed: false, RetryAfter: delay}, nil
	}
	return Decision{Allowed: true}, nil
}

// Refund is a no-op for the local store.
func (s *LocalStore) Refund(_ context.Context, _ string) error {
	return nil
}

func (s *LocalStore) sweep() {
	cutoff := time.Now().Add(-localBucketTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, bucket := range s.buckets {
		if bucket.seen.Before(cutoff) {
			delete(s.buckets, key)
		}
	}
}
