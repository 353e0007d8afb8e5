// Package inmem is a mutex-guarded check store with the same per-record
// read-modify-write contract as the postgres implementation. It backs the
// service-level tests and can run the daemon without a database.
package inmem

import (
	"context"
	"sort"
	"sync"

	"github.com/pulsewatch/pulsewatch/internal/domain/check"
)

var _ check.Repo = (*CheckRepo)(nil)

type CheckRepo struct {
	mu      sync.Mutex
	nextID  int64
	byToken map[string]*check.Check
}

func NewCheckRepo() *CheckRepo {
	return &CheckRepo{nextID: 1, byToken: make(map[string]*check.Check)}
}

func (r *CheckRepo) Create(_ context.Context, c *check.Check) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byToken[c.Token]; ok {
		return check.ErrConflict
	}
	c.ID = r.nextID
	r.nextID++
	r.byToken[c.Token] = c.Clone()
	return nil
}

func (r *CheckRepo) GetByToken(_ context.Context, token string) (*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byToken[token]
	if !ok {
		return nil, check.ErrNotFound
	}
	return c.Clone(), nil
}

func (r *CheckRepo) GetByID(_ context.Context, id int64) (*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c := r.findByID(id); c != nil {
		return c.Clone(), nil
	}
	return nil, check.ErrNotFound
}

func (r *CheckRepo) findByID(id int64) *check.Check {
	for _, c := range r.byToken {
		if c.ID == id {
			return c
		}
	}
	return nil
}

func (r *CheckRepo) snapshot(filter func(*check.Check) bool) []*check.Check {
	out := make([]*check.Check, 0, len(r.byToken))
	for _, c := range r.byToken {
		if filter == nil || filter(c) {
			out = append(out, c.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *CheckRepo) List(_ context.Context) ([]*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(nil), nil
}

func (r *CheckRepo) ListActive(_ context.Context) ([]*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot(func(c *check.Check) bool { return c.Status != check.StatusMaintenance }), nil
}

func (r *CheckRepo) ListPage(_ context.Context, limit, offset int) ([]*check.Check, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	all := r.snapshot(nil)
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (r *CheckRepo) update(c *check.Check, fn check.Mutator) (*check.Check, error) {
	cp := c.Clone()
	write, err := fn(cp)
	if err != nil {
		return nil, err
	}
	if write {
		r.byToken[c.Token] = cp
	}
	return cp.Clone(), nil
}

func (r *CheckRepo) UpdateByToken(_ context.Context, token string, fn check.Mutator) (*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byToken[token]
	if !ok {
		return nil, check.ErrNotFound
	}
	return r.update(c, fn)
}

func (r *CheckRepo) UpdateByID(_ context.Context, id int64, fn check.Mutator) (*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.findByID(id)
	if c == nil {
		return nil, check.ErrNotFound
	}
	return r.update(c, fn)
}

func (r *CheckRepo) Delete(_ context.Context, token string) (*check.Check, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byToken[token]
	if !ok {
		return nil, check.ErrNotFound
	}
	delete(r.byToken, token)
	return c, nil
}
