package override

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu    sync.Mutex
	items Set
	Err   error
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{}
}

func (r *RepositoryStub) FindAll(ctx context.Context) ([]Override, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return r.items.All(), nil
}

func (r *RepositoryStub) StoreBatch(ctx context.Context, batch []Override) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.items = r.items.With(batch...)
	return nil
}

func (r *RepositoryStub) Reconcile(ctx context.Context, changed []Override, dropped []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	items := r.items.Without(dropped...).Without(eventIds(changed)...)
	r.items = items.With(changed...)
	return nil
}

func eventIds(overrides []Override) []string {
	ids := make([]string, 0, len(overrides))
	for _, o := range overrides {
		ids = append(ids, o.EventId)
	}
	return ids
}

func (r *RepositoryStub) Delete(ctx context.Context, eventId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.items = r.items.Without(eventId)
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = Set{}
	r.Err = nil
}
