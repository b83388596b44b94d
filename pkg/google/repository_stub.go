package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type TokenRepositoryStub struct {
	mu    sync.Mutex
	nonce string
	token *oauth2.Token
}

func NewTokenRepositoryStub() *TokenRepositoryStub {
	return &TokenRepositoryStub{}
}

func (r *TokenRepositoryStub) StoreNonce(ctx context.Context, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonce = nonce
	r.token = nil
	return nil
}

func (r *TokenRepositoryStub) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nonce == "" || r.nonce != nonce {
		return ErrNonceMismatch
	}
	r.token = token
	return nil
}

func (r *TokenRepositoryStub) FindToken(ctx context.Context) (*oauth2.Token, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.token, nil
}

func (r *TokenRepositoryStub) Delete(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nonce = ""
	r.token = nil
	return nil
}
