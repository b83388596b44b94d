package settings

import (
	"context"
	"sync"
)

type RepositoryStub struct {
	mu      sync.Mutex
	devices map[string]Settings
	flash   FlashMessage
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{devices: map[string]Settings{}}
}

func (r *RepositoryStub) Find(ctx context.Context, deviceId string) (Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.devices[deviceId]
	if !ok {
		return Settings{}, ErrNotFound
	}
	return s, nil
}

func (r *RepositoryStub) Store(ctx context.Context, s Settings) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices[s.DeviceId] = s
	return nil
}

func (r *RepositoryStub) FindFlash(ctx context.Context) (FlashMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.flash, nil
}

func (r *RepositoryStub) StoreFlash(ctx context.Context, m FlashMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flash = m
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.devices = map[string]Settings{}
	r.flash = FlashMessage{}
}
