package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/thoas/go-funk"
)

const (
	magicLinkURITemplate = "/api/user/check/%s/%s/1"
	tokenURITemplate     = "/api/user/token/%s/%s/%s/1"
	tokenValidateURI     = "/api/authorize/validate"
	tokenRefreshURI      = "/api/authorize/refresh" //nolint:gosec
	devicesURI           = "/api/devices"
	schedulesURI         = "/api/schedules"
	transactionsURI      = "/api/reports/transactions/latest"

	devicePropertiesURITemplate      = "/api/command/properties/%s"
	installationTelemetryURITemplate = "/api/v1/installations/%s/telemetry/latest"
	deviceTelemetryURITemplate       = "/api/telemetry/devices/%s/latest"
	solarStatusURITemplate           = "/api/devices/%s/solar"
	solarEnableURITemplate           = "/api/devices/%s/solar/enable"
	solarDisableURITemplate          = "/api/devices/%s/solar/disable"
	boostStartURITemplate            = "/api/command/boost/start/%s"
	boostStopURITemplate             = "/api/command/boost/stop/%s"

	// Cable lock endpoints are not prefixed with /api.
	lockURITemplate   = "/lock/%s"
	unlockURITemplate = "/unlock/%s"

	authorizationHeader = "Authorization"
	contentTypeHeader   = "Content-Type"

	jsonContentType = "application/json"

	// Token endpoints respond with HTTP 200 and a short placeholder body until
	// the magic link is confirmed. Anything longer than this is a real JWT.
	minTokenLength = 50
)

// HTTPClient represents Indra HTTP API Client.
type HTTPClient interface {
	// RequestMagicLink triggers a magic-link verification email and returns a hash used to poll for a token.
	RequestMagicLink(email, mobileKey string) (string, error)
	// Token polls for a JWT token after magic-link verification.
	// It returns an empty token without an error if the link has not been confirmed yet.
	Token(email, mobileKey, hash string) (string, error)
	// ValidateToken checks if the provided token is still accepted by the API.
	ValidateToken(accessToken string) error
	// RefreshToken retrieves a new token based on the current one.
	RefreshToken(accessToken string) (string, error)
	// Devices returns all chargers registered on the account.
	Devices(accessToken string) ([]Device, error)
	// DeviceProperties retrieves named settings of the selected charger.
	DeviceProperties(accessToken, deviceUID string) (DeviceProperties, error)
	// InstallationTelemetry retrieves latest installation-level readings.
	InstallationTelemetry(accessToken, locationUID string) (InstallationTelemetry, error)
	// DeviceTelemetry retrieves latest electrical readings of the selected charger.
	DeviceTelemetry(accessToken, deviceUID string) (*DeviceTelemetry, error)
	// SolarStatus retrieves the solar matching state of the selected charger.
	// An empty status is returned if the vendor reports no solar data.
	SolarStatus(accessToken, deviceUID string) (*SolarStatus, error)
	// EnableSolar turns solar matching on for the selected charger.
	EnableSolar(accessToken, deviceUID string) error
	// DisableSolar turns solar matching off for the selected charger.
	DisableSolar(accessToken, deviceUID string) error
	// StartBoost starts a boost charging session for the selected charger.
	StartBoost(accessToken, deviceUID string) error
	// StopBoost stops a boost charging session for the selected charger.
	StopBoost(accessToken, deviceUID string) error
	// Lock locks the selected charger.
	Lock(accessToken, deviceUID string) error
	// Unlock unlocks the selected charger.
	Unlock(accessToken, deviceUID string) error
	// LatestTransactions retrieves most recent charging sessions for all devices on the account.
	LatestTransactions(accessToken string) ([]Transaction, error)
	// Schedules retrieves all charge schedules on the account.
	Schedules(accessToken string) ([]Schedule, error)
}

type httpClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewHTTPClient returns a new instance of Indra HTTPClient.
func NewHTTPClient(http *http.Client, baseURL string) HTTPClient {
	return &httpClient{
		httpClient: http,
		baseURL:    baseURL,
	}
}

func (c *httpClient) RequestMagicLink(email, mobileKey string) (string, error) {
	u := c.buildURL(magicLinkURITemplate, strings.TrimSpace(email), mobileKey)

	req, err := newRequestBuilder(http.MethodGet, u).build()
	if err != nil {
		return "", errors.Wrap(err, "failed to create magic link request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return "", errors.Wrap(err, "magic link request failed")
	}

	defer resp.Body.Close()

	hash, err := c.readTextResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "could not read magic link response body")
	}

	if funk.IsEmpty(hash) {
		return "", errors.New("magic link response does not contain a verification hash")
	}

	return hash, nil
}

func (c *httpClient) Token(email, mobileKey, hash string) (string, error) {
	u := c.buildURL(tokenURITemplate, strings.TrimSpace(email), mobileKey, hash)

	req, err := newRequestBuilder(http.MethodGet, u).build()
	if err != nil {
		return "", errors.Wrap(err, "failed to create token request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return "", errors.Wrap(err, "token request failed")
	}

	defer resp.Body.Close()

	token, err := c.readTextResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "could not read token response body")
	}

	if len(token) <= minTokenLength {
		return "", nil
	}

	return token, nil
}

func (c *httpClient) ValidateToken(accessToken string) error {
	req, err := newRequestBuilder(http.MethodGet, c.buildURL(tokenValidateURI)).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return errors.Wrap(err, "failed to create token validation request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return errors.Wrap(err, "token validation request failed")
	}

	defer resp.Body.Close()

	return nil
}

func (c *httpClient) RefreshToken(accessToken string) (string, error) {
	req, err := newRequestBuilder(http.MethodGet, c.buildURL(tokenRefreshURI)).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return "", errors.Wrap(err, "failed to create token refresh request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return "", errors.Wrap(err, "token refresh request failed")
	}

	defer resp.Body.Close()

	token, err := c.readTextResponse(resp)
	if err != nil {
		return "", errors.Wrap(err, "could not read token refresh response body")
	}

	if len(token) <= minTokenLength {
		return "", errors.New("token refresh response does not contain a token")
	}

	return token, nil
}

func (c *httpClient) Devices(accessToken string) ([]Device, error) {
	req, err := newRequestBuilder(http.MethodGet, c.buildURL(devicesURI)).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create devices request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch devices from api")
	}

	defer resp.Body.Close()

	var devices []Device

	if err := c.readResponseBody(resp, &devices); err != nil {
		return nil, errors.Wrap(err, "could not read devices response body")
	}

	return devices, nil
}

func (c *httpClient) DeviceProperties(accessToken, deviceUID string) (DeviceProperties, error) {
	u := c.buildURL(devicePropertiesURITemplate, deviceUID)

	req, err := newRequestBuilder(http.MethodGet, u).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create device properties request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform device properties api call")
	}

	defer resp.Body.Close()

	properties := DeviceProperties{}

	if err := c.readResponseBody(resp, &properties); err != nil {
		return nil, errors.Wrap(err, "could not read device properties response body")
	}

	return properties, nil
}

func (c *httpClient) InstallationTelemetry(accessToken, locationUID string) (InstallationTelemetry, error) {
	u := c.buildURL(installationTelemetryURITemplate, locationUID)

	req, err := newRequestBuilder(http.MethodGet, u).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create installation telemetry request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform installation telemetry api call")
	}

	defer resp.Body.Close()

	telemetry := InstallationTelemetry{}

	if err := c.readResponseBody(resp, &telemetry); err != nil {
		return nil, errors.Wrap(err, "could not read installation telemetry response body")
	}

	return telemetry, nil
}

func (c *httpClient) DeviceTelemetry(accessToken, deviceUID string) (*DeviceTelemetry, error) {
	u := c.buildURL(deviceTelemetryURITemplate, deviceUID)

	req, err := newRequestBuilder(http.MethodGet, u).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create device telemetry request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform device telemetry api call")
	}

	defer resp.Body.Close()

	telemetry := &DeviceTelemetry{}

	if err := c.readResponseBody(resp, telemetry); err != nil {
		return nil, errors.Wrap(err, "could not read device telemetry response body")
	}

	return telemetry, nil
}

func (c *httpClient) SolarStatus(accessToken, deviceUID string) (*SolarStatus, error) {
	u := c.buildURL(solarStatusURITemplate, deviceUID)

	req, err := newRequestBuilder(http.MethodGet, u).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create solar status request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform solar status api call")
	}

	defer resp.Body.Close()

	status := &SolarStatus{}

	if err := c.readResponseBody(resp, status); err != nil {
		return nil, errors.Wrap(err, "could not read solar status response body")
	}

	return status, nil
}

func (c *httpClient) EnableSolar(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPut, c.buildURL(solarEnableURITemplate, deviceUID), accessToken, http.StatusOK)
}

func (c *httpClient) DisableSolar(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPut, c.buildURL(solarDisableURITemplate, deviceUID), accessToken, http.StatusOK)
}

func (c *httpClient) StartBoost(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPost, c.buildURL(boostStartURITemplate, deviceUID), accessToken, http.StatusOK, http.StatusAccepted)
}

func (c *httpClient) StopBoost(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPost, c.buildURL(boostStopURITemplate, deviceUID), accessToken, http.StatusOK, http.StatusAccepted)
}

func (c *httpClient) Lock(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPut, c.buildURL(lockURITemplate, deviceUID), accessToken, http.StatusOK)
}

func (c *httpClient) Unlock(accessToken, deviceUID string) error {
	return c.performCommand(http.MethodPut, c.buildURL(unlockURITemplate, deviceUID), accessToken, http.StatusOK)
}

func (c *httpClient) LatestTransactions(accessToken string) ([]Transaction, error) {
	req, err := newRequestBuilder(http.MethodGet, c.buildURL(transactionsURI)).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create transactions request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform transactions api call")
	}

	defer resp.Body.Close()

	var transactions []Transaction

	if err := c.readResponseBody(resp, &transactions); err != nil {
		return nil, errors.Wrap(err, "could not read transactions response body")
	}

	return transactions, nil
}

func (c *httpClient) Schedules(accessToken string) ([]Schedule, error) {
	req, err := newRequestBuilder(http.MethodGet, c.buildURL(schedulesURI)).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		build()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create schedules request")
	}

	resp, err := c.performRequest(req, http.StatusOK)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform schedules api call")
	}

	defer resp.Body.Close()

	var schedules []Schedule

	if err := c.readResponseBody(resp, &schedules); err != nil {
		return nil, errors.Wrap(err, "could not read schedules response body")
	}

	return schedules, nil
}

func (c *httpClient) performCommand(method, url, accessToken string, wantResponseCodes ...int) error {
	req, err := newRequestBuilder(method, url).
		addHeader(authorizationHeader, c.bearerTokenHeader(accessToken)).
		addHeader(contentTypeHeader, jsonContentType).
		build()
	if err != nil {
		return errors.Wrap(err, "failed to create command request")
	}

	resp, err := c.performRequest(req, wantResponseCodes...)
	if err != nil {
		return errors.Wrap(err, "command request failed")
	}

	defer resp.Body.Close()

	return nil
}

func (c *httpClient) buildURL(path string, args ...interface{}) string {
	return c.baseURL + fmt.Sprintf(path, args...)
}

// performRequest executes the request and classifies failures: an HTTP 401 is
// reported as an AuthError so callers can attempt a token refresh, any other
// unexpected status code is reported as an HTTPError carrying the status.
func (c *httpClient) performRequest(req *http.Request, wantResponseCodes ...int) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not perform http call")
	}

	if funk.ContainsInt(wantResponseCodes, resp.StatusCode) {
		return resp, nil
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, &AuthError{Err: errors.New("bearer token rejected by the api")}
	}

	return nil, &HTTPError{
		Err:    errors.Errorf("expected response code to be %v, but got %d instead", wantResponseCodes, resp.StatusCode),
		Status: resp.StatusCode,
	}
}

func (c *httpClient) readResponseBody(r *http.Response, body interface{}) error {
	err := json.NewDecoder(r.Body).Decode(body)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "could not decode response body")
	}

	return nil
}

// readTextResponse reads a plain-text body. The vendor wraps text payloads in quotes.
func (c *httpClient) readTextResponse(r *http.Response) (string, error) {
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return "", errors.Wrap(err, "could not read response body")
	}

	return strings.Trim(strings.TrimSpace(string(b)), `"`), nil
}

func (c *httpClient) bearerTokenHeader(authToken string) string {
	return "Bearer " + authToken
}
