package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/oauth2"
)

var ErrNonceMismatch = errors.New("google auth nonce does not match")

// TokenRepository keeps the single Google authorization of the agenda.
type TokenRepository interface {
	StoreNonce(ctx context.Context, nonce string) error
	StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error
	FindToken(ctx context.Context) (*oauth2.Token, error)
	Delete(ctx context.Context) error
}

type TokenRepositoryImpl struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) StoreNonce(ctx context.Context, nonce string) error {
	query := `INSERT INTO google_auth (id, nonce, access_token, refresh_token, expiry)
		VALUES (1, $1, '', '', NULL)
		ON CONFLICT (id) DO UPDATE SET nonce = EXCLUDED.nonce, access_token = '', refresh_token = '', expiry = NULL`
	if _, err := r.db.Exec(ctx, query, nonce); err != nil {
		return fmt.Errorf("failed to store google auth nonce: %w", err)
	}
	return nil
}

func (r *TokenRepositoryImpl) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) error {
	query := `UPDATE google_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE id = 1 AND nonce = $4`
	result, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry, nonce)
	if err != nil {
		return fmt.Errorf("failed to store google auth token: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNonceMismatch
	}
	return nil
}

// FindToken returns nil without error when no authorization was completed yet.
func (r *TokenRepositoryImpl) FindToken(ctx context.Context) (*oauth2.Token, error) {
	var token oauth2.Token
	var expiry *time.Time
	query := `SELECT access_token, refresh_token, expiry FROM google_auth WHERE id = 1 AND refresh_token <> ''`
	err := r.db.QueryRow(ctx, query).Scan(&token.AccessToken, &token.RefreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve google auth token: %w", err)
	}
	if expiry != nil {
		token.Expiry = *expiry
	}
	return &token, nil
}

func (r *TokenRepositoryImpl) Delete(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM google_auth`); err != nil {
		return fmt.Errorf("failed to delete google auth: %w", err)
	}
	return nil
}
