// Package jenkins is a small client for the Jenkins remote access API used to
// start, look up and cancel dump builds.
package jenkins

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrNotFound is returned when neither a build nor a queue item matched.
	ErrNotFound = errors.New("no build or queue item with that id")
	// ErrBuildFinished is returned by Cancel when the build exists but is no
	// longer running and no queue item has the same id.
	ErrBuildFinished = errors.New("build already finished")
)

const (
	tracerName     = "gitlab.com/dumpyara/dumpyarabot/internal/jenkins"
	buildsTree     = "allBuilds[number,result,url,actions[parameters[name,value]]]"
	buildTree      = "number,result,url"
	defaultTimeout = 10 * time.Second
)

// Client talks to a Jenkins server.
type Client struct {
	baseURL    string
	user       string
	token      string
	httpClient *http.Client
	tracer     trace.Tracer
}

// New creates a Jenkins client. user and token are sent as basic auth when user is set.
func New(baseURL, user, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		user:    user,
		token:   token,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			// Jenkins answers POSTs with a redirect to the queue item; the status is enough.
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		tracer: otel.Tracer(tracerName),
	}
}

// TriggerBuild queues a build of job with the given parameters.
func (c *Client) TriggerBuild(ctx context.Context, job string, params map[string]string) error {
	ctx, span := c.tracer.Start(ctx, "jenkins.TriggerBuild",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("jenkins.job", job)),
	)
	defer span.End()

	form := url.Values{}
	for k, v := range params {
		form.Set(k, v)
	}

	endpoint := fmt.Sprintf("%s/job/%s/buildWithParameters", c.baseURL, url.PathEscape(job))
	status, err := c.post(ctx, endpoint, form)
	if err != nil {
		return recordErr(span, fmt.Errorf("failed to trigger build: %w", err))
	}
	if !isSuccess(status) {
		return recordErr(span, fmt.Errorf("jenkins returned status %d when triggering %s", status, job))
	}

	return nil
}

// Builds lists all builds of job, newest first.
func (c *Client) Builds(ctx context.Context, job string) ([]Build, error) {
	ctx, span := c.tracer.Start(ctx, "jenkins.Builds",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("jenkins.job", job)),
	)
	defer span.End()

	endpoint := fmt.Sprintf("%s/job/%s/api/json?tree=%s",
		c.baseURL,
		url.PathEscape(job),
		url.QueryEscape(buildsTree),
	)

	var payload buildsResponse
	status, err := c.getJSON(ctx, endpoint, &payload)
	if err != nil {
		return nil, recordErr(span, fmt.Errorf("failed to list builds: %w", err))
	}
	if status != http.StatusOK {
		return nil, recordErr(span, fmt.Errorf("jenkins returned status %d when listing %s", status, job))
	}

	builds := make([]Build, 0, len(payload.AllBuilds))
	for _, b := range payload.AllBuilds {
		builds = append(builds, toBuild(b))
	}
	span.SetAttributes(attribute.Int("jenkins.builds", len(builds)))

	return builds, nil
}

// FindBuild returns the newest build of job whose URL parameter equals target
// and which is either still running or succeeded. It returns nil when there is none.
func (c *Client) FindBuild(ctx context.Context, job, target string) (*Build, error) {
	builds, err := c.Builds(ctx, job)
	if err != nil {
		return nil, err
	}

	for _, b := range builds {
		if b.Parameters["URL"] != target {
			continue
		}
		if b.Building() || b.Succeeded() {
			return &b, nil
		}
	}

	return nil, nil
}

// GetBuild fetches build id of job. It returns ErrNotFound when the build does not exist.
func (c *Client) GetBuild(ctx context.Context, job string, id int) (*Build, error) {
	ctx, span := c.tracer.Start(ctx, "jenkins.GetBuild",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("jenkins.job", job),
			attribute.Int("jenkins.id", id),
		),
	)
	defer span.End()

	endpoint := fmt.Sprintf("%s/job/%s/%d/api/json?tree=%s",
		c.baseURL,
		url.PathEscape(job),
		id,
		url.QueryEscape(buildTree),
	)

	var payload buildPayload
	status, err := c.getJSON(ctx, endpoint, &payload)
	switch {
	case err != nil:
		return nil, recordErr(span, fmt.Errorf("failed to get build %d: %w", id, err))
	case status == http.StatusNotFound:
		return nil, ErrNotFound
	case status != http.StatusOK:
		return nil, recordErr(span, fmt.Errorf("jenkins returned status %d when getting build %d", status, id))
	}

	build := toBuild(payload)
	return &build, nil
}

// Cancel stops build id of job when it is still running. Otherwise it tries
// to remove queue item id instead. A finished build is never stopped.
func (c *Client) Cancel(ctx context.Context, job string, id int) (CancelResult, error) {
	ctx, span := c.tracer.Start(ctx, "jenkins.Cancel",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("jenkins.job", job),
			attribute.Int("jenkins.id", id),
		),
	)
	defer span.End()

	finished := false
	build, err := c.GetBuild(ctx, job, id)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return 0, recordErr(span, err)
	case build.Building():
		stopURL := fmt.Sprintf("%s/job/%s/%d/stop", c.baseURL, url.PathEscape(job), id)
		status, err := c.post(ctx, stopURL, nil)
		if err != nil {
			return 0, recordErr(span, fmt.Errorf("failed to stop build: %w", err))
		}
		if !isSuccess(status) {
			return 0, recordErr(span, fmt.Errorf("jenkins returned status %d when stopping build %d", status, id))
		}
		return CancelledBuild, nil
	default:
		finished = true
		span.SetAttributes(attribute.String("jenkins.result", build.Result))
	}

	queueURL := fmt.Sprintf("%s/queue/cancelItem?id=%s", c.baseURL, strconv.Itoa(id))
	status, err := c.post(ctx, queueURL, nil)
	if err != nil {
		return 0, recordErr(span, fmt.Errorf("failed to cancel queue item: %w", err))
	}
	switch {
	case isSuccess(status):
		return CancelledQueueItem, nil
	case status == http.StatusNotFound && finished:
		return 0, ErrBuildFinished
	case status == http.StatusNotFound:
		return 0, ErrNotFound
	default:
		return 0, recordErr(span, fmt.Errorf("jenkins returned status %d when cancelling queue item %d", status, id))
	}
}

// getJSON decodes a 200 response into v and returns the status code.
// Other statuses are returned without decoding.
func (c *Client) getJSON(ctx context.Context, endpoint string, v any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
	}

	return resp.StatusCode, nil
}

func (c *Client) post(ctx context.Context, endpoint string, form url.Values) (int, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}

func (c *Client) authorize(req *http.Request) {
	if c.user != "" {
		req.SetBasicAuth(c.user, c.token)
	}
}

func isSuccess(status int) bool {
	switch status {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent, http.StatusFound, http.StatusSeeOther:
		return true
	default:
		return false
	}
}

func recordErr(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return err
}

func toBuild(p buildPayload) Build {
	b := Build{
		Number:     p.Number,
		URL:        p.URL,
		Parameters: make(map[string]string),
	}
	if p.Result != nil {
		b.Result = *p.Result
	}
	for _, action := range p.Actions {
		for _, param := range action.Parameters {
			b.Parameters[param.Name] = fmt.Sprint(param.Value)
		}
	}
	return b
}
