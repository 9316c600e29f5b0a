package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/futurehomeno/cliffhanger/backoff"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/futurehomeno/edge-indra-adapter/internal/config"
	"github.com/futurehomeno/edge-indra-adapter/internal/jwt"
)

// Authenticator is the interface for the Indra authenticator.
//
// Login is based on a magic-link email: the API sends a verification link to
// the account owner and the authenticator polls the token endpoint until the
// link is confirmed or the retry budget runs out.
type Authenticator interface {
	// Login requests a magic-link email for the account and polls for a token, persisting credentials on success.
	Login(email string) error
	// AccessToken is responsible for providing a valid access token for the Indra API.
	// It will automatically refresh the token if it's expired.
	// Returns an error if the application is not logged in.
	AccessToken() (string, error)
	// Refresh forces a token refresh regardless of the token expiration time.
	// Used by callers that observed a token rejection before its recorded expiry.
	Refresh() error
	// Logout removes credentials from the config.
	Logout() error
}

type authenticator struct {
	mu      sync.Mutex
	cfg     *config.Service
	http    HTTPClient
	backoff backoff.Stateful
}

// NewAuthenticator creates a new instance of the Authenticator.
func NewAuthenticator(http HTTPClient, cfgSvc *config.Service) Authenticator {
	backoffCfg := cfgSvc.GetAuthenticatorBackoffCfg()

	statefulBackoff := backoff.NewStateful(
		backoffCfg.InitialBackoff,
		backoffCfg.RepeatedBackoff,
		backoffCfg.FinalBackoff,
		backoffCfg.InitialFailureCount,
		backoffCfg.RepeatedFailureCount,
	)

	return &authenticator{
		cfg:     cfgSvc,
		http:    http,
		backoff: statefulBackoff,
	}
}

func (a *authenticator) Login(email string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	mobileKey := a.cfg.GetMobileKey()
	if mobileKey == "" {
		mobileKey = uuid.NewString()
	}

	if err := a.cfg.SetAccountIdentity(email, mobileKey); err != nil {
		return errors.Wrap(err, "failed to save account identity in storage")
	}

	hash, err := a.http.RequestMagicLink(email, mobileKey)
	if err != nil {
		return errors.Wrap(err, "failed to request a magic link")
	}

	token, err := a.pollForToken(email, mobileKey, hash)
	if err != nil {
		return err
	}

	if err := a.updateCredentials(token); err != nil {
		return err
	}

	a.backoff.Reset()

	return nil
}

func (a *authenticator) AccessToken() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	credentials := a.cfg.GetCredentials()
	if credentials.Empty() {
		return "", errors.New("credentials are empty: login first")
	}

	if !credentials.Expired() {
		return credentials.AccessToken, nil
	}

	log.WithField("expired_at", credentials.ExpiresAt.Format(time.RFC3339)).
		Debug("authenticator: access token expired, refreshing...")

	if err := a.refresh(credentials); err != nil {
		return "", err
	}

	return a.cfg.GetCredentials().AccessToken, nil
}

func (a *authenticator) Refresh() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	credentials := a.cfg.GetCredentials()
	if credentials.Empty() {
		return errors.New("credentials are empty: login first")
	}

	return a.refresh(credentials)
}

func (a *authenticator) Logout() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	return a.cfg.ClearCredentials()
}

func (a *authenticator) refresh(credentials config.Credentials) error {
	if a.backoff.Should() {
		return errors.New("too many requests: backoff is in use")
	}

	token, err := a.http.RefreshToken(credentials.AccessToken)
	if err != nil {
		a.backoff.Fail()

		return fmt.Errorf("failed to refresh the auth token: try again later: %w", err)
	}

	a.backoff.Reset()

	return a.updateCredentials(token)
}

// pollForToken waits for the user to confirm the magic link.
// The token endpoint returns an empty token until confirmation happens.
func (a *authenticator) pollForToken(email, mobileKey, hash string) (string, error) {
	attempts := a.cfg.GetMagicLinkPollAttempts()
	interval := a.cfg.GetMagicLinkPollInterval()

	for i := 0; i < attempts; i++ {
		token, err := a.http.Token(email, mobileKey, hash)
		if err != nil {
			return "", errors.Wrap(err, "token polling failed")
		}

		if token != "" {
			return token, nil
		}

		time.Sleep(interval)
	}

	return "", errors.Errorf("magic link was not confirmed within %d attempts", attempts)
}

func (a *authenticator) updateCredentials(accessToken string) error {
	expiresAt, err := jwt.ExpirationDate(accessToken)
	if err != nil {
		return fmt.Errorf("failed to extract expiration date from access token: %w", err)
	}

	if err := a.cfg.SetCredentials(accessToken, expiresAt); err != nil {
		return fmt.Errorf("failed to save credentials in storage: %w", err)
	}

	return nil
}
