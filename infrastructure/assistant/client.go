// Package assistant is the HTTP client for the personal-assistant
// backend, the canonical store of notes, episodes, documents and
// connections. The graph engine is a read-mostly consumer: it lists
// entities, reads existing connections, and creates new ones.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"mindgraph/domain/entities"
	pkgerrors "mindgraph/pkg/errors"
)

// Config holds client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration
	// PageSize is the episode page size; episodes are the only paginated
	// collection
	PageSize int
	// MaxPages bounds episode pagination as a safety stop
	MaxPages int
}

// Client talks to the assistant backend over HTTP. All calls go through
// a circuit breaker so a dead backend degrades fast instead of stacking
// up timeouts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
	pageSize   int
	maxPages   int
}

// NewClient creates a new assistant backend client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = 50
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "assistant-api",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Conflicts and not-founds are expected API outcomes; only
			// transport failures and server errors count against the breaker
			if err == nil || pkgerrors.IsConflict(err) || pkgerrors.IsNotFound(err) {
				return true
			}
			return !pkgerrors.IsUnavailable(err) && !pkgerrors.IsInternal(err)
		},
	})

	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    breaker,
		logger:     logger,
		pageSize:   cfg.PageSize,
		maxPages:   cfg.MaxPages,
	}
}

type notesResponse struct {
	Notes []entities.Note `json:"notes"`
}

type documentsResponse struct {
	Documents []entities.Document `json:"documents"`
}

type episodesResponse struct {
	Episodes []entities.Episode `json:"episodes"`
	HasMore  bool               `json:"has_more"`
}

// ListNotes fetches all notes
func (c *Client) ListNotes(ctx context.Context) ([]entities.Note, error) {
	var resp notesResponse
	if err := c.getJSON(ctx, "/api/notes", &resp); err != nil {
		return nil, err
	}
	return resp.Notes, nil
}

// ListDocuments fetches all documents
func (c *Client) ListDocuments(ctx context.Context) ([]entities.Document, error) {
	var resp documentsResponse
	if err := c.getJSON(ctx, "/api/documents", &resp); err != nil {
		return nil, err
	}
	return resp.Documents, nil
}

// ListEpisodes fetches all episodes, following pagination until the
// backend reports no more pages or the page cap is reached
func (c *Client) ListEpisodes(ctx context.Context) ([]entities.Episode, error) {
	var episodes []entities.Episode

	for page := 1; page <= c.maxPages; page++ {
		var resp episodesResponse
		path := fmt.Sprintf("/api/episodes?page=%d&page_size=%d", page, c.pageSize)
		if err := c.getJSON(ctx, path, &resp); err != nil {
			return nil, err
		}

		episodes = append(episodes, resp.Episodes...)
		if !resp.HasMore || len(resp.Episodes) == 0 {
			return episodes, nil
		}
	}

	c.logger.Warn("episode pagination stopped at page cap", zap.Int("max_pages", c.maxPages))
	return episodes, nil
}

// getJSON performs a GET through the circuit breaker and decodes the body
func (c *Client) getJSON(ctx context.Context, path string, target interface{}) error {
	body, err := c.execute(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, target); err != nil {
		return pkgerrors.NewInternal("failed to decode response from "+path, err)
	}
	return nil
}

// execute runs one HTTP request through the circuit breaker and maps the
// outcome onto the error taxonomy: transport failures become Unavailable,
// 409 becomes Conflict, 404 becomes NotFound, other non-2xx become
// Internal.
func (c *Client) execute(ctx context.Context, method, path string, payload interface{}) ([]byte, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		var reqBody io.Reader
		if payload != nil {
			encoded, err := json.Marshal(payload)
			if err != nil {
				return nil, pkgerrors.NewInternal("failed to encode request body", err)
			}
			reqBody = bytes.NewReader(encoded)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
		if err != nil {
			return nil, pkgerrors.NewInternal("failed to build request", err)
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, pkgerrors.NewUnavailable("assistant backend unreachable", err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, pkgerrors.NewUnavailable("failed to read response body", err)
		}

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return body, nil
		case resp.StatusCode == http.StatusConflict:
			return nil, pkgerrors.NewConflict("resource already exists")
		case resp.StatusCode == http.StatusNotFound:
			return nil, pkgerrors.NewNotFound("resource not found: " + path)
		default:
			return nil, pkgerrors.NewInternal(
				fmt.Sprintf("assistant backend returned %d for %s %s", resp.StatusCode, method, path),
				nil,
			)
		}
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, pkgerrors.NewUnavailable("assistant backend circuit open", err)
		}
		return nil, err
	}

	body, _ := result.([]byte)
	return body, nil
}
