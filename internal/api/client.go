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
	"strings"
	"time"

	retry "github.com/avast/retry-go"
	gocache "github.com/patrickmn/go-cache"

	"jobdeck/internal/config"
	"jobdeck/internal/model"
)

const statsCacheTTL = 30 * time.Second

// Client talks to the job queue backend. All methods take a context and
// return explicit errors; the caller decides what failure means (retry on
// the next tick, roll back an overlay, keep dirty state).
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     *slog.Logger

	// Detail stats are refetched every time the user opens the detail
	// view; a short TTL cache absorbs that without hiding fresh data.
	statsCache *gocache.Cache
}

func NewClient(cfg config.Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		token:      cfg.APIToken,
		httpc:      &http.Client{Timeout: cfg.RequestTimeout},
		log:        logger,
		statsCache: gocache.New(statsCacheTTL, time.Minute),
	}
}

// RateLimit is the backend's optional rate-limit announcement, surfaced in
// the dashboard header.
type RateLimit struct {
	Remaining int
	ResetAt   string
}

// ListOptions are the server-side filter hints. The client re-filters
// locally regardless, so these only trim payload size.
type ListOptions struct {
	Owner  string
	Status string
}

type listResponse struct {
	Jobs []model.Job `json:"jobs"`
}

// ListJobs fetches the ordered job collection.
func (c *Client) ListJobs(ctx context.Context, opts ListOptions) ([]model.Job, *RateLimit, error) {
	q := url.Values{}
	if opts.Owner != "" {
		q.Set("owner", opts.Owner)
	}
	if opts.Status != "" {
		q.Set("status", opts.Status)
	}
	path := "/api/jobs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out listResponse
	header, err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	if err != nil {
		return nil, nil, err
	}
	return out.Jobs, rateLimitFromHeader(header), nil
}

func rateLimitFromHeader(h http.Header) *RateLimit {
	raw := h.Get("X-RateLimit-Remaining")
	if raw == "" {
		return nil
	}
	remaining, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &RateLimit{Remaining: remaining, ResetAt: h.Get("X-RateLimit-Reset")}
}

// Reorder replaces the server-side order with the full ordered id list,
// last writer wins.
func (c *Client) Reorder(ctx context.Context, ids []string) error {
	body := map[string]any{"ids": ids}
	_, err := c.doJSON(ctx, http.MethodPost, "/api/jobs/order", body, nil)
	return err
}

// UpdatePriority sets a job's priority (1 highest .. 5 lowest).
func (c *Client) UpdatePriority(ctx context.Context, id string, priority int) error {
	body := map[string]any{"priority": model.ClampPriority(priority)}
	_, err := c.doJSON(ctx, http.MethodPatch, "/api/jobs/"+url.PathEscape(id)+"/priority", body, nil)
	return err
}

// Do issues a per-id action. The backend treats these as idempotent, so a
// transient failure gets one immediate retry before the error surfaces.
func (c *Client) Do(ctx context.Context, action model.Action, id string) error {
	var method, path string
	switch action {
	case model.ActionDelete:
		method = http.MethodDelete
		path = "/api/jobs/" + url.PathEscape(id)
	case model.ActionPause, model.ActionResume, model.ActionCancel, model.ActionReset, model.ActionResetFailed:
		method = http.MethodPost
		path = "/api/jobs/" + url.PathEscape(id) + "/" + string(action)
	default:
		return fmt.Errorf("unknown action %q", action)
	}

	return retry.Do(
		func() error {
			_, err := c.doJSON(ctx, method, path, nil, nil)
			return err
		},
		retry.Attempts(2),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
	)
}

// JobProgress fetches unit counts by state for one job.
func (c *Client) JobProgress(ctx context.Context, id string) (model.ProgressCounts, error) {
	var out model.ProgressCounts
	_, err := c.doJSON(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id)+"/progress", nil, &out)
	return out, err
}

// JobStats fetches the detail statistics for one job, served from a short
// TTL cache when available.
func (c *Client) JobStats(ctx context.Context, id string) (model.JobStats, error) {
	if cached, ok := c.statsCache.Get(id); ok {
		return cached.(model.JobStats), nil
	}
	var out model.JobStats
	if _, err := c.doJSON(ctx, http.MethodGet, "/api/jobs/"+url.PathEscape(id)+"/stats", nil, &out); err != nil {
		return model.JobStats{}, err
	}
	c.statsCache.SetDefault(id, out)
	return out, nil
}

// CreateExport starts an export of the current queue. columnRenames maps
// default CSV header names to replacements and may be nil.
func (c *Client) CreateExport(ctx context.Context, columnRenames map[string]string) (model.Export, error) {
	var body any
	if len(columnRenames) > 0 {
		body = map[string]any{"column_renames": columnRenames}
	}
	var out model.Export
	_, err := c.doJSON(ctx, http.MethodPost, "/api/exports", body, &out)
	return out, err
}

// ExportStatus polls one export.
func (c *Client) ExportStatus(ctx context.Context, id string) (model.Export, error) {
	var out model.Export
	_, err := c.doJSON(ctx, http.MethodGet, "/api/exports/"+url.PathEscape(id), nil, &out)
	return out, err
}

// ExportDownloadURL is where a ready export can be fetched from.
func (c *Client) ExportDownloadURL(id string) string {
	return c.baseURL + "/api/exports/" + url.PathEscape(id) + "/download"
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) (http.Header, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request for %s: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := http.StatusText(resp.StatusCode)
		var apiErr apiError
		if data, readErr := io.ReadAll(io.LimitReader(resp.Body, 4096)); readErr == nil {
			if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
				msg = apiErr.Error
			}
		}
		c.log.Warn("backend request failed", "method", method, "path", path, "status", resp.StatusCode)
		return resp.Header, fmt.Errorf("%s %s: %s", method, path, msg)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.Header, fmt.Errorf("decode response for %s: %w", path, err)
		}
	}
	return resp.Header, nil
}
