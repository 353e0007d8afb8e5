// Package cache is a short-TTL read-through cache for list-style reads.
// It only ever serves snapshot consumers (list API, notifier); the
// transactional single-record paths always read the store directly.
package cache

import (
	"context"
	"time"

	"github.com/united-manufacturing-hub/expiremap/v2/pkg/expiremap"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

const snapshotKey = "all"

type Snapshot struct {
	repo check.Repo
	m    *expiremap.ExpireMap[string, []*check.Check]
}

func NewSnapshot(repo check.Repo, ttl time.Duration) *Snapshot {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &Snapshot{
		repo: repo,
		m:    expiremap.NewEx[string, []*check.Check](ttl, ttl),
	}
}

// List returns the cached full check list, refilling from the store on miss.
func (s *Snapshot) List(ctx context.Context) ([]*check.Check, error) {
	if cached, ok := s.m.Load(snapshotKey); ok {
		return *cached, nil
	}
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	s.m.Set(snapshotKey, list)
	return list, nil
}

// Invalidate drops the snapshot. Called synchronously from every mutation so
// readers never lag the latest write by more than the TTL.
func (s *Snapshot) Invalidate() {
	s.m.Delete(snapshotKey)
}
