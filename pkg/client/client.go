// Package client provides the GraphQL transport for the characters API.
// It issues a single operation, GetCharacters, and classifies failures.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for upstream operations.
var (
	graphqlRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_requests_total",
		Help: "Total GraphQL requests by operation and status",
	}, []string{"operation", "status"})

	graphqlRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "graphql_request_duration_seconds",
		Help:    "GraphQL request duration in seconds by operation",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"operation"})

	graphqlErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "graphql_errors_total",
		Help: "Total GraphQL errors by class",
	}, []string{"class"})
)

const operationGetCharacters = "GetCharacters"

// DefaultEndpoint is the public Rick and Morty GraphQL API.
const DefaultEndpoint = "https://rickandmortyapi.com/graphql"

// maxErrorBody bounds how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL.
	Endpoint string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout per HTTP request.
	Timeout time.Duration
}

// DefaultConfig returns a default configuration for the public API.
func DefaultConfig(userAgent string) Config {
	return Config{
		Endpoint:  DefaultEndpoint,
		UserAgent: userAgent,
		Timeout:   15 * time.Second,
	}
}

// Client is the GraphQL transport.
type Client struct {
	httpClient *http.Client
	config     Config
	logger     zerolog.Logger
}

// New creates a new GraphQL client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	if !strings.HasPrefix(cfg.Endpoint, "http://") && !strings.HasPrefix(cfg.Endpoint, "https://") {
		return nil, fmt.Errorf("endpoint must be an http(s) URL (got %q)", cfg.Endpoint)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		config: cfg,
		logger: log.With().Str("component", "graphql-client").Logger(),
	}, nil
}

// GetCharacters fetches one page of characters.
// An empty or missing result set is returned as an empty page, not an error.
func (c *Client) GetCharacters(ctx context.Context, page int) (*CharacterPage, error) {
	if page < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPage, page)
	}

	startTime := time.Now()
	defer func() {
		graphqlRequestDuration.WithLabelValues(operationGetCharacters).Observe(time.Since(startTime).Seconds())
	}()

	body, err := json.Marshal(graphQLRequest{
		OperationName: operationGetCharacters,
		Query:         GetCharactersQuery,
		Variables:     map[string]any{"page": page},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)

	c.logger.Debug().
		Int("page", page).
		Msg("Executing GraphQL request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		graphqlRequestsTotal.WithLabelValues(operationGetCharacters, "network_error").Inc()
		return nil, c.fail(page, &TransportError{
			Class:   ErrorClassNetwork,
			Message: "request failed",
			Err:     err,
		})
	}
	defer resp.Body.Close()

	graphqlRequestsTotal.WithLabelValues(operationGetCharacters, strconv.Itoa(resp.StatusCode)).Inc()

	if class := classifyStatus(resp.StatusCode); class != "" {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		msg := resp.Status
		if s := strings.TrimSpace(string(snippet)); s != "" {
			msg = resp.Status + ": " + s
		}
		return nil, c.fail(page, &TransportError{
			Class:      class,
			StatusCode: resp.StatusCode,
			Message:    msg,
		})
	}

	var decoded charactersResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, c.fail(page, &TransportError{
			Class:      ErrorClassDecode,
			StatusCode: resp.StatusCode,
			Message:    "decode response",
			Err:        err,
		})
	}

	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, c.fail(page, &TransportError{
			Class:      ErrorClassGraphQL,
			StatusCode: resp.StatusCode,
			Message:    strings.Join(messages, "; "),
		})
	}

	result := decoded.toPage()

	c.logger.Debug().
		Int("page", page).
		Int("items", len(result.Items)).
		Int("total_pages", result.TotalPages).
		Dur("duration", time.Since(startTime)).
		Msg("GraphQL request succeeded")

	return result, nil
}

// fail records and logs a classified error.
func (c *Client) fail(page int, err *TransportError) error {
	graphqlErrorsTotal.WithLabelValues(string(err.Class)).Inc()
	c.logger.Warn().
		Err(err).
		Int("page", page).
		Str("error_class", string(err.Class)).
		Int("status_code", err.StatusCode).
		Msg("GraphQL request error")
	return err
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// Endpoint returns the configured GraphQL endpoint.
func (c *Client) Endpoint() string {
	return c.config.Endpoint
}
