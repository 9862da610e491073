package usecase

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/hash066/biavault/internal/cache"
	apperrors "github.com/hash066/biavault/internal/errors"
	snapshotDomain "github.com/hash066/biavault/internal/snapshot/domain"
	viewDomain "github.com/hash066/biavault/internal/view/domain"
)

// stubSnapshotReader serves a fixed payload and counts reads.
type stubSnapshotReader struct {
	payload []byte
	err     error
	reads   atomic.Int64
	// delay simulates decryption latency so concurrent readers overlap
	delay time.Duration
}

func (s *stubSnapshotReader) ReadLatest(
	ctx context.Context,
	tenantID uuid.UUID,
	actorID string,
) (*snapshotDomain.Snapshot, error) {
	s.reads.Add(1)
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	if s.err != nil {
		return nil, s.err
	}

	payload := make([]byte, len(s.payload))
	copy(payload, s.payload)
	return &snapshotDomain.Snapshot{
		ID:       uuid.Must(uuid.NewV7()),
		TenantID: tenantID,
		Version:  1,
		Payload:  payload,
	}, nil
}

func setupViewUseCase(t *testing.T, reader SnapshotReader) (ViewUseCase, *cache.RedisViewCache) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		require.NoError(t, client.Close())
	})

	viewCache := cache.NewRedisViewCache(client, time.Minute)
	return NewViewUseCase(reader, viewCache), viewCache
}

const testPayload = `{
	"processes": [
		{"name": "billing", "category": "finance", "impact": "HIGH", "depends_on": ["database"]},
		{"name": "database", "category": "infrastructure", "impact": "HIGH"}
	]
}`

func TestViewUseCase_Get(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())

	t.Run("computes heatmap from the latest snapshot", func(t *testing.T) {
		reader := &stubSnapshotReader{payload: []byte(testPayload)}
		useCase, _ := setupViewUseCase(t, reader)

		encoded, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
		require.NoError(t, err)

		var view viewDomain.HeatmapView
		require.NoError(t, json.Unmarshal(encoded, &view))
		assert.Equal(t, viewDomain.HeatmapView{
			"finance":        {"HIGH": 1},
			"infrastructure": {"HIGH": 1},
		}, view)
	})

	t.Run("computes dependency graph", func(t *testing.T) {
		reader := &stubSnapshotReader{payload: []byte(testPayload)}
		useCase, _ := setupViewUseCase(t, reader)

		encoded, err := useCase.Get(ctx, tenantID, "dependency-graph", "reader@example.com")
		require.NoError(t, err)

		var view viewDomain.DependencyGraphView
		require.NoError(t, json.Unmarshal(encoded, &view))
		assert.Equal(t, viewDomain.DependencyGraphView{
			"billing":  {"database"},
			"database": {},
		}, view)
	})

	t.Run("second read is served from cache", func(t *testing.T) {
		reader := &stubSnapshotReader{payload: []byte(testPayload)}
		useCase, _ := setupViewUseCase(t, reader)

		first, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
		require.NoError(t, err)
		second, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), reader.reads.Load())
	})

	t.Run("rejects unknown views", func(t *testing.T) {
		reader := &stubSnapshotReader{payload: []byte(testPayload)}
		useCase, _ := setupViewUseCase(t, reader)

		_, err := useCase.Get(ctx, tenantID, "pie-chart", "reader@example.com")
		assert.ErrorIs(t, err, viewDomain.ErrUnknownView)
		assert.Equal(t, int64(0), reader.reads.Load())
	})

	t.Run("propagates snapshot read errors", func(t *testing.T) {
		reader := &stubSnapshotReader{err: snapshotDomain.ErrSnapshotNotFound}
		useCase, _ := setupViewUseCase(t, reader)

		_, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("payload without processes yields an empty view", func(t *testing.T) {
		reader := &stubSnapshotReader{payload: []byte(`{"something":"else"}`)}
		useCase, _ := setupViewUseCase(t, reader)

		encoded, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
		require.NoError(t, err)
		assert.JSONEq(t, `{}`, string(encoded))
	})
}

func TestViewUseCase_ConcurrentRecomputesCollapse(t *testing.T) {
	// Registered before setupViewUseCase so it runs after the miniredis and
	// redis client cleanups registered there.
	t.Cleanup(func() { goleak.VerifyNone(t) })

	ctx := context.Background()
	tenantID := uuid.Must(uuid.NewV7())

	reader := &stubSnapshotReader{payload: []byte(testPayload), delay: 50 * time.Millisecond}
	useCase, _ := setupViewUseCase(t, reader)

	const readers = 10
	var wg sync.WaitGroup
	results := make([][]byte, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			encoded, err := useCase.Get(ctx, tenantID, "heatmap", "reader@example.com")
			require.NoError(t, err)
			results[i] = encoded
		}(i)
	}
	wg.Wait()

	// All callers share one computation
	assert.Equal(t, int64(1), reader.reads.Load())
	for i := 1; i < readers; i++ {
		assert.Equal(t, results[0], results[i])
	}
}
