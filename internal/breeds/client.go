package breeds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/eleven-am/spycat/internal/logger"
)

const (
	DefaultBaseURL = "https://api.thecatapi.com"
	DefaultTimeout = 5 * time.Second

	// maxResponseBytes bounds how much of a registry response is read.
	maxResponseBytes = 4 << 20
)

var (
	// ErrUnknownBreed means the registry answered and the breed is not in it.
	ErrUnknownBreed = errors.New("unknown breed")
	// ErrUnavailable means the registry could not be reached or answered badly.
	ErrUnavailable = errors.New("breed registry unavailable")
)

// Validator checks a breed name against a registry.
type Validator interface {
	Validate(ctx context.Context, breed string) error
}

// Config holds configuration for the TheCatAPI client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Breed is the subset of a registry entry the agency uses.
type Breed struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client queries TheCatAPI's breed list.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		logger:     logger.Breeds(),
	}
}

// List fetches every breed the registry knows.
func (c *Client) List(ctx context.Context) ([]Breed, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/breeds", nil)
	if err != nil {
		return nil, fmt.Errorf("breeds: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		request.Header.Set("x-api-key", c.apiKey)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		c.logger.Warn("registry request failed", "err", err)
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer response.Body.Close()

	body, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnavailable, err)
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		c.logger.Warn("registry returned error", "status", response.StatusCode)
		return nil, fmt.Errorf("%w: HTTP %d", ErrUnavailable, response.StatusCode)
	}

	var breeds []Breed
	if err := json.Unmarshal(body, &breeds); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return breeds, nil
}

// Validate returns nil when breed names a registry breed, matched
// case-insensitively against the breed name or id.
func (c *Client) Validate(ctx context.Context, breed string) error {
	breed = strings.TrimSpace(breed)
	if len(breed) < 2 {
		return fmt.Errorf("%w: %q", ErrUnknownBreed, breed)
	}

	known, err := c.List(ctx)
	if err != nil {
		return err
	}

	for _, b := range known {
		if strings.EqualFold(b.Name, breed) || strings.EqualFold(b.ID, breed) {
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownBreed, breed)
}

// AcceptAll is the Validator used when the registry check is disabled.
type AcceptAll struct{}

func (AcceptAll) Validate(context.Context, string) error {
	return nil
}
