package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/wavemax/affiliate-program/internal/domain"
)

type recordingRepo struct {
	cutoffs chan time.Time
}

func (r *recordingRepo) Create(context.Context, *domain.RevokedToken) error { return nil }

func (r *recordingRepo) Exists(context.Context, string) (bool, error) { return false, nil }

func (r *recordingRepo) DeleteRevokedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.cutoffs <- cutoff
	return 1, nil
}

func TestPurgeWorkerUsesRetentionCutoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repo := &recordingRepo{cutoffs: make(chan time.Time, 10)}
	retention := 24 * time.Hour
	StartPurgeWorker(ctx, repo, retention, 10*time.Millisecond, zap.NewNop())

	select {
	case cutoff := <-repo.cutoffs:
		expected := time.Now().Add(-retention)
		assert.WithinDuration(t, expected, cutoff, time.Second)
	case <-time.After(2 * time.Second):
		t.Fatal("purge worker never ran")
	}
}

func TestPurgeWorkerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := &recordingRepo{cutoffs: make(chan time.Time, 100)}
	StartPurgeWorker(ctx, repo, time.Hour, 5*time.Millisecond, zap.NewNop())

	<-repo.cutoffs
	cancel()

	// Drain anything in flight, then confirm the ticker is gone.
	time.Sleep(20 * time.Millisecond)
	for len(repo.cutoffs) > 0 {
		<-repo.cutoffs
	}
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, repo.cutoffs)
}
