package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jobscout/companion-api/internal/domain"
)

// statusSuccess is the envelope status the scoring service uses for
// accepted operations.
const statusSuccess = "success"

// ErrRejected is returned when the scoring service explicitly rejects an
// operation (non-2xx response or a non-success envelope status).
var ErrRejected = errors.New("remote operation rejected")

// Client calls the scoring service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Client for the scoring service at baseURL.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "remote_client"),
	}
}

// snapshotEnvelope is the response shape of GET /job/{id}.
type snapshotEnvelope struct {
	Status string           `json:"status"`
	Data   *domain.Snapshot `json:"data"`
}

// GetJobSnapshot retrieves the remote canonical state for a job.
//
// All failure modes collapse to "no usable data": transport errors are
// returned as errors, while a non-2xx response, a non-success envelope
// status, or a missing data payload return (nil, nil). Callers decide
// whether to retry. When the payload reports permanent failure the
// snapshot is still returned, with assessed forced to false — a failed
// job must never be reported assessed.
func (c *Client) GetJobSnapshot(ctx context.Context, jobID string) (*domain.Snapshot, error) {
	endpoint := c.baseURL + "/job/" + url.PathEscape(jobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("snapshot fetch returned non-success status",
			"job_id", jobID,
			"http_status", resp.StatusCode)
		return nil, nil
	}

	var envelope snapshotEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		c.logger.Debug("snapshot fetch returned undecodable body",
			"job_id", jobID,
			"error", err)
		return nil, nil
	}

	if envelope.Status != statusSuccess || envelope.Data == nil {
		return nil, nil
	}

	snap := envelope.Data
	if snap.IsFailed() {
		snap.Assessed = domain.Bool(false)
		snap.Failed = domain.Bool(true)
	}

	return snap, nil
}

// RegenerateAssessment asks the scoring service to re-run the assessment
// for a job. A rejection is surfaced to the caller as ErrRejected.
func (c *Client) RegenerateAssessment(ctx context.Context, jobID string) error {
	return c.postJobAction(ctx, "/regenerate_job_assessment", jobID)
}

// MarkApplied records on the scoring service that the user applied to
// the job.
func (c *Client) MarkApplied(ctx context.Context, jobID string) error {
	return c.postJobAction(ctx, "/update_job_applied", jobID)
}

// UnmarkApplied clears the applied flag for the job on the scoring
// service.
func (c *Client) UnmarkApplied(ctx context.Context, jobID string) error {
	return c.postJobAction(ctx, "/update_job_unapplied", jobID)
}

// jobSummaryWire tolerates the applied flag arriving as 0/1 or a boolean.
type jobSummaryWire struct {
	JobID      string          `json:"job_id"`
	JobApplied json.RawMessage `json:"job_applied"`
}

// ListRecentJobs returns job summaries, including the applied flag, for
// jobs assessed within the last daysBack days, capped at limit entries.
func (c *Client) ListRecentJobs(ctx context.Context, daysBack, limit int) ([]domain.JobSummary, error) {
	endpoint := fmt.Sprintf("%s/jobs_recent?days_back=%s&limit=%s",
		c.baseURL,
		url.QueryEscape(strconv.Itoa(daysBack)),
		url.QueryEscape(strconv.Itoa(limit)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build recent jobs request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("recent jobs request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: recent jobs listing returned %s", ErrRejected, responseDetail(resp))
	}

	var wire []jobSummaryWire
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("failed to decode recent jobs listing: %w", err)
	}

	jobs := make([]domain.JobSummary, 0, len(wire))
	for _, w := range wire {
		jobs = append(jobs, domain.JobSummary{
			JobID:      w.JobID,
			JobApplied: decodeAppliedFlag(w.JobApplied),
		})
	}

	return jobs, nil
}

// postJobAction posts {"job_id": ...} to the given path and surfaces any
// non-success outcome as ErrRejected.
func (c *Client) postJobAction(ctx context.Context, path, jobID string) error {
	body, err := json.Marshal(map[string]string{"job_id": jobID})
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		bytes.NewReader(body),
	)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s returned %s", ErrRejected, path, responseDetail(resp))
	}

	var envelope struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if envelope.Status != statusSuccess {
		return fmt.Errorf("%w: %s returned status %q", ErrRejected, path, envelope.Status)
	}

	return nil
}

// responseDetail extracts the service's error detail field when present,
// falling back to the HTTP status.
func responseDetail(resp *http.Response) string {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil {
		var payload struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
			return fmt.Sprintf("%d: %s", resp.StatusCode, payload.Detail)
		}
	}
	return resp.Status
}

// decodeAppliedFlag tolerates 0/1, booleans, and null, defaulting to
// not-applied for anything unreadable.
func decodeAppliedFlag(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil && n != 0 {
		return 1
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil && b {
		return 1
	}
	return 0
}
