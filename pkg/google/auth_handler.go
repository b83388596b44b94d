package google

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/klokku/agenda/internal/config"
	"github.com/klokku/agenda/internal/rest"
	"github.com/klokku/agenda/pkg/settings"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

// GoogleAuth holds the read-only calendar authorization shared by all devices. A refresh
// token from the configuration takes precedence over one obtained through the OAuth flow.
type GoogleAuth struct {
	repo         TokenRepository
	oauthConfig  *oauth2.Config
	refreshToken string
}

func NewGoogleAuth(repo TokenRepository, cfg config.Application) *GoogleAuth {
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + "/api/integrations/google/auth/callback",
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
	return &GoogleAuth{repo: repo, oauthConfig: oauthConfig, refreshToken: cfg.Google.RefreshToken}
}

func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	if settings.Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	stateNonce := uuid.New().String()
	finalUrl := r.URL.Query().Get("finalUrl")

	if err := g.repo.StoreNonce(r.Context(), stateNonce); err != nil {
		log.Errorf("failed to store Google auth nonce: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	parts := strings.SplitN(r.FormValue("state"), "|", 2)
	if len(parts) != 2 {
		rest.WriteError(w, http.StatusBadRequest, "Invalid state", "")
		return
	}
	finalUrl, nonce := parts[0], parts[1]

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	if err := g.repo.StoreToken(r.Context(), nonce, token); err != nil {
		log.Errorf("unable to store Google auth token for nonce: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	if settings.Current(r.Context()).ReadOnly() {
		rest.WriteError(w, http.StatusForbidden, "Device is read-only", "")
		return
	}
	if err := g.repo.Delete(r.Context()); err != nil {
		log.Errorf("failed to delete Google auth: %v", err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (g *GoogleAuth) getToken(ctx context.Context) (*oauth2.Token, error) {
	if g.refreshToken != "" {
		return &oauth2.Token{RefreshToken: g.refreshToken}, nil
	}
	if g.repo == nil {
		return nil, nil
	}
	return g.repo.FindToken(ctx)
}

// getClient returns nil when there is no authorization yet.
func (g *GoogleAuth) getClient(ctx context.Context) (*http.Client, error) {
	token, err := g.getToken(ctx)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, nil
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
