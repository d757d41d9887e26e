// Package api is the HTTP client of the comparison service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ErykKul/DataSync/internal/compare"
	"github.com/ErykKul/DataSync/internal/diff"
	"github.com/ErykKul/DataSync/internal/logging"
)

// pollPath is shared by every repository type.
const pollPath = "api/common/compare"

// maxErrorBody bounds the response body kept in a StatusError.
const maxErrorBody = 4 << 10

// retryLogger adapts the dsync logger to retryablehttp.LeveledLogger.
type retryLogger struct {
	log *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.log.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.log.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.log.Warn().Fields(keysAndValues).Msg(msg)
}

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the comparison service.
	BaseURL string
	// RepoType selects the compare and store endpoints (github, gitlab).
	RepoType string

	RetryMax     int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration

	Logger *logging.Logger
	// HTTPClient overrides the underlying transport client.
	HTTPClient *http.Client
}

// Client talks to the comparison service.
type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	repoType string
	log      *logging.Logger
}

// NewClient creates a client with retrying transport.
func NewClient(opts Options) (*Client, error) {
	if opts.BaseURL == "" {
		return nil, errors.New("base URL is required")
	}
	if opts.RepoType == "" {
		return nil, errors.New("repository type is required")
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}

	retryClient := retryablehttp.NewClient()
	if opts.HTTPClient != nil {
		retryClient.HTTPClient = opts.HTTPClient
	}
	retryClient.RetryMax = opts.RetryMax
	if opts.RetryWaitMin > 0 {
		retryClient.RetryWaitMin = opts.RetryWaitMin
	}
	if opts.RetryWaitMax > 0 {
		retryClient.RetryWaitMax = opts.RetryWaitMax
	}
	retryClient.Logger = &retryLogger{log: log}
	retryClient.ErrorHandler = passthroughResponse

	return &Client{
		http:     retryClient,
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		repoType: opts.RepoType,
		log:      log,
	}, nil
}

// CompareRequest starts a comparison between a repository and a dataset.
type CompareRequest struct {
	RepoToken      string `json:"ghToken"`
	RepoOwner      string `json:"ghUser"`
	RepoName       string `json:"repo"`
	Hash           string `json:"hash"`
	PersistentID   string `json:"persistentId"`
	DataverseToken string `json:"dataverseKey"`
}

// PollRequest asks for a fresher result of an existing job.
type PollRequest struct {
	PersistentID   string            `json:"persistentId"`
	DataverseToken string            `json:"dataverseKey"`
	ID             string            `json:"id"`
	Data           []diff.FileRecord `json:"data"`
}

// StoreRequest submits the selected actions of a finished job.
type StoreRequest struct {
	PersistentID   string            `json:"persistentId"`
	DataverseToken string            `json:"dataverseKey"`
	RepoToken      string            `json:"ghToken"`
	RepoOwner      string            `json:"ghUser"`
	RepoName       string            `json:"repo"`
	Hash           string            `json:"hash"`
	ID             string            `json:"id"`
	PlanID         string            `json:"planId,omitempty"`
	Data           []diff.FileRecord `json:"data"`
}

// StoreResponse acknowledges a submission.
type StoreResponse struct {
	Status string `json:"status,omitempty"`
	URL    string `json:"url,omitempty"`
}

// Compare starts a comparison job and returns its first result with the
// data sorted by id.
func (c *Client) Compare(ctx context.Context, req CompareRequest) (*compare.Result, error) {
	var res compare.Result
	if err := c.post(ctx, "api/"+c.repoType+"/compare", req, &res); err != nil {
		return nil, fmt.Errorf("failed to start comparison: %w", err)
	}
	sortByID(res.Data)
	c.log.Debug().Str("job", res.ID).Stringer("status", res.Status).Int("files", len(res.Data)).Msg("comparison started")
	return &res, nil
}

// Poller returns a compare.Poller for the given dataset credentials.
func (c *Client) Poller(persistentID, dataverseToken string) compare.Poller {
	return compare.PollerFunc(func(ctx context.Context, files []diff.FileRecord, id string) (*compare.Result, error) {
		return c.Poll(ctx, PollRequest{
			PersistentID:   persistentID,
			DataverseToken: dataverseToken,
			ID:             id,
			Data:           files,
		})
	})
}

// Poll asks the service for the current state of a comparison job.
func (c *Client) Poll(ctx context.Context, req PollRequest) (*compare.Result, error) {
	var res compare.Result
	if err := c.post(ctx, pollPath, req, &res); err != nil {
		return nil, fmt.Errorf("failed to poll comparison %s: %w", req.ID, err)
	}
	sortByID(res.Data)
	return &res, nil
}

// Store submits the final record list.
func (c *Client) Store(ctx context.Context, req StoreRequest) (*StoreResponse, error) {
	var res StoreResponse
	if err := c.post(ctx, "api/"+c.repoType+"/store", req, &res); err != nil {
		return nil, fmt.Errorf("failed to store actions: %w", err)
	}
	return &res, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := c.baseURL + "/" + path
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// passthroughResponse hands the last response back once retries are
// exhausted, so non-2xx answers surface as *StatusError.
func passthroughResponse(resp *http.Response, err error, _ int) (*http.Response, error) {
	if resp != nil {
		return resp, nil
	}
	return nil, err
}

func sortByID(records []diff.FileRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].ID < records[j].ID
	})
}
