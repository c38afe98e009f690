package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the per-request id that ties client and server logs together.
const RequestIDHeader = "X-Request-ID"

// DefaultBaseURL is the API location used when none is configured.
const DefaultBaseURL = "http://127.0.0.1:5000/api"

// Client defines the interface for interacting with the donations API.
type Client interface {
	// SendOTP asks the server to mail a one-time passcode to email.
	SendOTP(ctx context.Context, email string) (message string, err error)
	// VerifyOTP checks the passcode the user typed for email.
	VerifyOTP(ctx context.Context, email, otp string) (message string, err error)
	// TotalDonors returns the running donor count.
	TotalDonors(ctx context.Context) (int, error)
	// Organizations lists every registered NGO.
	Organizations(ctx context.Context) ([]Organization, error)
	// Requirements fetches the item catalog of one NGO.
	Requirements(ctx context.Context, organizationID int) (*RequirementCatalog, error)
	// SubmitAction records a donate, giveaway or resale action.
	SubmitAction(ctx context.Context, req DonationActionRequest) (message string, err error)
}

// APIClient implements Client over JSON/HTTP.
type APIClient struct {
	BaseURL    *url.URL
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Logger     *slog.Logger
}

// ClientConfig holds configuration for creating a new APIClient.
type ClientConfig struct {
	BaseURL string
	// Timeout bounds every request. Zero means no timeout.
	Timeout time.Duration
	// RateLimit caps outgoing requests per second. Zero disables throttling.
	RateLimit float64
	// Burst is the limiter bucket size; defaults to 1 when RateLimit is set.
	Burst  int
	Logger *slog.Logger
}

// NewAPIClient creates a new API client instance.
func NewAPIClient(config ClientConfig) (*APIClient, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API base URL: %w", err)
	}
	if baseURL.Scheme != "http" && baseURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid API base URL %q: scheme must be http or https", config.BaseURL)
	}

	var limiter *rate.Limiter
	if config.RateLimit > 0 {
		burst := config.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(config.RateLimit), burst)
	}

	return &APIClient{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: config.Timeout},
		Limiter:    limiter,
		Logger:     config.Logger,
	}, nil
}

// SendOTP calls POST /login/send_otp.
func (c *APIClient) SendOTP(ctx context.Context, email string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, []string{"login", "send_otp"}, emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// VerifyOTP calls POST /login/verify_otp.
func (c *APIClient) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, []string{"login", "verify_otp"}, verifyRequest{Email: email, OTP: otp}, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// TotalDonors calls GET /donors/total.
func (c *APIClient) TotalDonors(ctx context.Context) (int, error) {
	var resp donorTotalResponse
	if err := c.do(ctx, http.MethodGet, []string{"donors", "total"}, nil, &resp); err != nil {
		return 0, err
	}
	return resp.TotalDonors, nil
}

// Organizations calls GET /ngos.
func (c *APIClient) Organizations(ctx context.Context) ([]Organization, error) {
	var orgs []Organization
	if err := c.do(ctx, http.MethodGet, []string{"ngos"}, nil, &orgs); err != nil {
		return nil, err
	}
	return orgs, nil
}

// Requirements calls GET /ngo_requirements/{id}.
func (c *APIClient) Requirements(ctx context.Context, organizationID int) (*RequirementCatalog, error) {
	var catalog RequirementCatalog
	if err := c.do(ctx, http.MethodGet, []string{"ngo_requirements", strconv.Itoa(organizationID)}, nil, &catalog); err != nil {
		return nil, err
	}
	if catalog.Requirements == nil {
		catalog.Requirements = map[string][]string{}
	}
	return &catalog, nil
}

// SubmitAction calls POST /donate.
func (c *APIClient) SubmitAction(ctx context.Context, req DonationActionRequest) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, http.MethodPost, []string{"donate"}, req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

// do performs one JSON round trip. A nil body sends no payload; out receives
// the decoded success body.
func (c *APIClient) do(ctx context.Context, method string, path []string, body any, out any) error {
	endpoint := c.BaseURL.JoinPath(path...)
	op := method + " " + endpoint.Path

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return transportErr(op, err)
		}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	reqID := uuid.NewString()
	req.Header.Set(RequestIDHeader, reqID)
	logger := c.Logger.With("request_id", reqID)

	logger.DebugContext(ctx, "api request", "method", method, "url", endpoint.String())
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return transportErr(op, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportErr(op, err)
	}
	logger.DebugContext(ctx, "api response", "method", method, "url", endpoint.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg messageResponse
		if err := json.Unmarshal(respBytes, &msg); err != nil || msg.Message == "" {
			msg.Message = http.StatusText(resp.StatusCode)
		}
		if msg.Error != "" {
			logger.DebugContext(ctx, "api error detail", "url", endpoint.String(), "detail", msg.Error)
		}
		return &HTTPError{StatusCode: resp.StatusCode, Message: msg.Message}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBytes, out); err != nil {
		return transportErr(op, fmt.Errorf("failed to decode response: %w", err))
	}
	return nil
}

// Ensure APIClient implements Client interface
var _ Client = (*APIClient)(nil)
