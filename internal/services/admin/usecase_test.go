package admin

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
	"github.com/pulsewatch/pulsewatch/internal/repository/inmem"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeSink struct {
	mu      sync.Mutex
	updates int
	removed []string
}

func (s *fakeSink) UpdateStatus(*check.Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
}

func (s *fakeSink) RemoveStatus(c *check.Check) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removed = append(s.removed, c.Token)
}

type fakeEvents struct {
	mu          sync.Mutex
	transitions []check.Status
}

func (e *fakeEvents) StatusChanged(_ context.Context, c *check.Check, _ check.Status) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.transitions = append(e.transitions, c.Status)
	return nil
}

type fakeCache struct{ invalidations int }

func (c *fakeCache) Invalidate() { c.invalidations++ }

func newUC(repo check.Repo, sink *fakeSink, events *fakeEvents, cacheSpy *fakeCache) *Usecase {
	return New(repo, sink, events, cacheSpy, nil, func() time.Time { return t0 })
}

func TestCreate(t *testing.T) {
	repo := inmem.NewCheckRepo()
	cacheSpy := &fakeCache{}
	uc := newUC(repo, &fakeSink{}, &fakeEvents{}, cacheSpy)

	c, err := uc.Create(context.Background(), "nightly-backup", "1d", "2h")
	require.NoError(t, err)

	assert.Equal(t, check.StatusNew, c.Status)
	assert.Equal(t, t0, c.CreatedAt)
	assert.Nil(t, c.LastPingAt)
	assert.Zero(t, c.ConsecutiveDowns)
	_, err = uuid.Parse(c.Token)
	assert.NoError(t, err, "token is a uuid")
	assert.Equal(t, 1, cacheSpy.invalidations)

	c2, err := uc.Create(context.Background(), "other", "1d", "2h")
	require.NoError(t, err)
	assert.NotEqual(t, c.Token, c2.Token)
}

func TestDeleteIsIdempotentForCallers(t *testing.T) {
	repo := inmem.NewCheckRepo()
	sink := &fakeSink{}
	uc := newUC(repo, sink, &fakeEvents{}, &fakeCache{})

	c, err := uc.Create(context.Background(), "job", "1h", "5m")
	require.NoError(t, err)

	require.NoError(t, uc.Delete(context.Background(), c.Token))
	assert.Equal(t, []string{c.Token}, sink.removed)

	err = uc.Delete(context.Background(), c.Token)
	assert.ErrorIs(t, err, check.ErrNotFound, "second delete reports already gone")
}

func TestToggleMaintenanceRoundTrip(t *testing.T) {
	t.Run("with ping history resumes up", func(t *testing.T) {
		repo := inmem.NewCheckRepo()
		uc := newUC(repo, &fakeSink{}, &fakeEvents{}, &fakeCache{})
		c, err := uc.Create(context.Background(), "job", "1h", "5m")
		require.NoError(t, err)

		ping := t0.Add(time.Minute)
		_, err = repo.UpdateByToken(context.Background(), c.Token, func(cc *check.Check) (bool, error) {
			cc.Status = check.StatusDown
			cc.LastPingAt = &ping
			cc.ConsecutiveDowns = 4
			return true, nil
		})
		require.NoError(t, err)

		got, err := uc.ToggleMaintenance(context.Background(), c.Token)
		require.NoError(t, err)
		assert.Equal(t, check.StatusMaintenance, got.Status)
		assert.Equal(t, 4, got.ConsecutiveDowns, "entering maintenance freezes counters")

		got, err = uc.ToggleMaintenance(context.Background(), c.Token)
		require.NoError(t, err)
		assert.Equal(t, check.StatusUp, got.Status)
		assert.Equal(t, 4, got.ConsecutiveDowns, "exit resumes where it left off")
	})

	t.Run("without ping history resumes new", func(t *testing.T) {
		repo := inmem.NewCheckRepo()
		uc := newUC(repo, &fakeSink{}, &fakeEvents{}, &fakeCache{})
		c, err := uc.Create(context.Background(), "job", "1h", "5m")
		require.NoError(t, err)

		_, err = uc.ToggleMaintenance(context.Background(), c.Token)
		require.NoError(t, err)
		got, err := uc.ToggleMaintenance(context.Background(), c.Token)
		require.NoError(t, err)
		assert.Equal(t, check.StatusNew, got.Status, "maintenance never fabricates ping history")
	})

	t.Run("unknown token", func(t *testing.T) {
		repo := inmem.NewCheckRepo()
		uc := newUC(repo, &fakeSink{}, &fakeEvents{}, &fakeCache{})
		_, err := uc.ToggleMaintenance(context.Background(), "missing")
		assert.ErrorIs(t, err, check.ErrNotFound)
	})
}

func TestRecordFailureBypassesMaintenance(t *testing.T) {
	repo := inmem.NewCheckRepo()
	events := &fakeEvents{}
	uc := newUC(repo, &fakeSink{}, events, &fakeCache{})

	c, err := uc.Create(context.Background(), "job", "1h", "5m")
	require.NoError(t, err)
	_, err = uc.ToggleMaintenance(context.Background(), c.Token)
	require.NoError(t, err)

	reason := "manual"
	got, err := uc.RecordFailure(context.Background(), c.Token, &reason)
	require.NoError(t, err)

	assert.Equal(t, check.StatusFailed, got.Status)
	require.NotNil(t, got.LastError)
	assert.Equal(t, "manual", *got.LastError)
	require.NotNil(t, got.LastPingAt)
	assert.Equal(t, t0, *got.LastPingAt)
	assert.Zero(t, got.ConsecutiveDowns)
	assert.Contains(t, events.transitions, check.StatusFailed)
}
