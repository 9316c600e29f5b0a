package config

import (
	"sync"
	"time"

	"github.com/futurehomeno/cliffhanger/config"
	"github.com/futurehomeno/cliffhanger/storage"
	"github.com/michalkurzeja/go-clock"
)

const (
	defaultBaseURL = "https://api.indra.co.uk"

	defaultPollingInterval = time.Minute
	minPollingInterval     = 30 * time.Second
	maxPollingInterval     = 5 * time.Minute

	defaultHTTPTimeout = 30 * time.Second

	defaultMagicLinkPollAttempts = 30
	defaultMagicLinkPollInterval = 2 * time.Second
)

// Config is a model containing all application configuration settings.
type Config struct {
	config.Default
	Credentials

	Email                 string `json:"email"`
	MobileKey             string `json:"mobileKey"`
	IndraBaseURL          string `json:"indraBaseURL"`
	PollingInterval       string `json:"pollingInterval"`
	HTTPTimeout           string `json:"httpTimeout"`
	MagicLinkPollAttempts int    `json:"magicLinkPollAttempts"`
	MagicLinkPollInterval string `json:"magicLinkPollInterval"`
}

// New creates new instance of a configuration object.
func New(workDir string) *Config {
	return &Config{
		Default: config.NewDefault(workDir),
	}
}

// Factory is a factory method returning the configuration object without default settings.
func Factory() *Config {
	return &Config{}
}

// Credentials represent Indra API credentials.
type Credentials struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Empty checks if credentials are empty.
func (c Credentials) Empty() bool {
	return c == Credentials{}
}

// Expired checks if credentials are expired.
func (c Credentials) Expired() bool {
	return clock.Now().UTC().After(c.ExpiresAt)
}

// BackoffCfg contains settings of a stateful backoff used for token refresh retries.
type BackoffCfg struct {
	InitialBackoff       time.Duration
	RepeatedBackoff      time.Duration
	FinalBackoff         time.Duration
	InitialFailureCount  uint32
	RepeatedFailureCount uint32
}

// Service is a configuration service responsible for:
// - providing concurrency safe access to settings
// - persistence of settings.
type Service struct {
	storage.Storage[*Config]
	lock *sync.RWMutex
}

// NewService creates a new configuration service.
func NewService(storage storage.Storage[*Config]) *Service {
	return &Service{
		Storage: storage,
		lock:    &sync.RWMutex{},
	}
}

// GetWorkDir allows to safely access a configuration setting.
func (cs *Service) GetWorkDir() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.Storage.Model().WorkDir
}

// GetIndraBaseURL allows to safely access a configuration setting.
func (cs *Service) GetIndraBaseURL() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if url := cs.Storage.Model().IndraBaseURL; url != "" {
		return url
	}

	return defaultBaseURL
}

// SetIndraBaseURL allows to safely set and persist configuration settings.
func (cs *Service) SetIndraBaseURL(url string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().IndraBaseURL = url

	return cs.Storage.Save()
}

// SetLogLevel allows to safely set and persist configuration settings.
func (cs *Service) SetLogLevel(logLevel string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().LogLevel = logLevel

	return cs.Storage.Save()
}

// GetEmail allows to safely access a configuration setting.
func (cs *Service) GetEmail() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.Storage.Model().Email
}

// GetMobileKey allows to safely access a configuration setting.
func (cs *Service) GetMobileKey() string {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.Storage.Model().MobileKey
}

// SetAccountIdentity persists the account email and the mobile key used in magic-link requests.
func (cs *Service) SetAccountIdentity(email, mobileKey string) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().Email = email
	cs.Storage.Model().MobileKey = mobileKey

	return cs.Storage.Save()
}

// GetCredentials allows to safely access a configuration setting.
func (cs *Service) GetCredentials() Credentials {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	return cs.Storage.Model().Credentials
}

// SetCredentials allows to safely set and persist configuration settings.
func (cs *Service) SetCredentials(accessToken string, expiresAt time.Time) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().Credentials = Credentials{
		AccessToken: accessToken,
		ExpiresAt:   expiresAt.UTC(),
	}

	return cs.Storage.Save()
}

// ClearCredentials removes credentials from the configuration.
func (cs *Service) ClearCredentials() error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().Credentials = Credentials{}

	return cs.Storage.Save()
}

// GetPollingInterval allows to safely access a configuration setting.
// The interval is clamped to a sane range to avoid hammering the vendor or starving freshness.
func (cs *Service) GetPollingInterval() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	duration, err := time.ParseDuration(cs.Storage.Model().PollingInterval)
	if err != nil {
		return defaultPollingInterval
	}

	if duration < minPollingInterval {
		return minPollingInterval
	}

	if duration > maxPollingInterval {
		return maxPollingInterval
	}

	return duration
}

// SetPollingInterval allows to safely set and persist configuration settings.
func (cs *Service) SetPollingInterval(interval time.Duration) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().PollingInterval = interval.String()

	return cs.Storage.Save()
}

// GetHTTPTimeout allows to safely access a configuration setting.
func (cs *Service) GetHTTPTimeout() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	duration, err := time.ParseDuration(cs.Storage.Model().HTTPTimeout)
	if err != nil {
		return defaultHTTPTimeout
	}

	return duration
}

// SetHTTPTimeout allows to safely set and persist configuration settings.
func (cs *Service) SetHTTPTimeout(timeout time.Duration) error {
	cs.lock.Lock()
	defer cs.lock.Unlock()

	cs.Storage.Model().ConfiguredAt = time.Now().Format(time.RFC3339)
	cs.Storage.Model().HTTPTimeout = timeout.String()

	return cs.Storage.Save()
}

// GetMagicLinkPollAttempts allows to safely access a configuration setting.
func (cs *Service) GetMagicLinkPollAttempts() int {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	if attempts := cs.Storage.Model().MagicLinkPollAttempts; attempts > 0 {
		return attempts
	}

	return defaultMagicLinkPollAttempts
}

// GetMagicLinkPollInterval allows to safely access a configuration setting.
func (cs *Service) GetMagicLinkPollInterval() time.Duration {
	cs.lock.RLock()
	defer cs.lock.RUnlock()

	duration, err := time.ParseDuration(cs.Storage.Model().MagicLinkPollInterval)
	if err != nil {
		return defaultMagicLinkPollInterval
	}

	return duration
}

// GetAuthenticatorBackoffCfg returns backoff settings applied between failed token refresh attempts.
func (cs *Service) GetAuthenticatorBackoffCfg() BackoffCfg {
	return BackoffCfg{
		InitialBackoff:       time.Minute,
		RepeatedBackoff:      5 * time.Minute,
		FinalBackoff:         30 * time.Minute,
		InitialFailureCount:  1,
		RepeatedFailureCount: 5,
	}
}
