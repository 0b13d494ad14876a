package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/resilience"
)

var (
	ErrNotFound    = errors.New("resource not found")
	ErrUnavailable = errors.New("portfolio API unavailable")
)

// APIError is a non-2xx response from the portfolio API.
type APIError struct {
	Status  int      `json:"-"`
	Message string   `json:"message"`
	Code    string   `json:"error_code"`
	Errors  []string `json:"errors"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("portfolio API %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("portfolio API %d: %s", e.Status, e.Message)
}

// Config configures a Client.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RetryMax  int
	RetryWait time.Duration
	// RateLimit caps outgoing requests per second. Zero means unlimited.
	RateLimit float64
	UserAgent string
	Logger    *zap.Logger
}

// Client calls the portfolio REST API.
type Client struct {
	resty   *resty.Client
	limiter *rate.Limiter
	breaker *resilience.Breaker
	logger  *zap.Logger
}

// New creates a client. Requests time out after cfg.Timeout (10s by
// default), transport errors and 5xx responses to GETs are retried, and a
// circuit breaker fails fast while the API is down.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RetryMax < 0 {
		cfg.RetryMax = 0
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 200 * time.Millisecond
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "portfolio-term/1.0"
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = cfg.RetryWait
	retryClient.RetryWaitMax = 10 * cfg.RetryWait
	retryClient.Logger = nil
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	restyClient := resty.NewWithClient(retryClient.StandardClient())
	restyClient.
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}

	logger := cfg.Logger
	breaker := resilience.New("portfolio-api", resilience.Settings{
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
		IsFailure:        isFailure,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Client{
		resty:   restyClient,
		limiter: limiter,
		breaker: breaker,
		logger:  logger,
	}
}

// checkRetry retries connection errors for every method but server errors
// only for idempotent requests.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if resp != nil && resp.Request != nil && resp.Request.Method != http.MethodGet {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// isFailure counts only transport errors and 5xx responses against the
// breaker. Calls abandoned by their caller say nothing about the server.
func isFailure(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= 500
	}
	return !errors.Is(err, ErrNotFound)
}

// BreakerState reports the circuit breaker state.
func (c *Client) BreakerState() resilience.State {
	return c.breaker.State()
}

// do sends one request through the limiter and the breaker and decodes a
// 2xx body into out.
func (c *Client) do(ctx context.Context, method, path string, query map[string]string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	err := c.breaker.Do(func() error {
		req := c.resty.R().SetContext(ctx).SetError(&APIError{})
		if out != nil {
			req.SetResult(out)
		}
		if len(query) > 0 {
			req.SetQueryParams(query)
		}
		if body != nil {
			req.SetBody(body)
		}

		resp, err := req.Execute(method, path)
		if err != nil && ctx.Err() != nil {
			return fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		if err != nil {
			return fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
		}
		if resp.IsSuccess() {
			return nil
		}
		if resp.StatusCode() == http.StatusNotFound {
			return ErrNotFound
		}
		apiErr, _ := resp.Error().(*APIError)
		if apiErr == nil {
			apiErr = &APIError{}
		}
		apiErr.Status = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode())
		}
		return apiErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

// ProjectQuery filters a project listing.
type ProjectQuery struct {
	Category string
	Featured *bool
	Search   string
	Page     int
	PerPage  int
}

func (q ProjectQuery) params() map[string]string {
	p := map[string]string{}
	if q.Category != "" {
		p["category"] = q.Category
	}
	if q.Featured != nil {
		p["featured"] = strconv.FormatBool(*q.Featured)
	}
	if q.Search != "" {
		p["search"] = q.Search
	}
	if q.Page > 0 {
		p["page"] = strconv.Itoa(q.Page)
	}
	if q.PerPage > 0 {
		p["per_page"] = strconv.Itoa(q.PerPage)
	}
	return p
}

// ListProjects fetches one page of published projects.
func (c *Client) ListProjects(ctx context.Context, q ProjectQuery) (*project.Page, error) {
	var page project.Page
	if err := c.do(ctx, http.MethodGet, "/projects", q.params(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// GetProject fetches one project by id or slug.
func (c *Client) GetProject(ctx context.Context, idOrSlug string) (*project.Project, error) {
	var p project.Project
	if err := c.do(ctx, http.MethodGet, "/projects/"+idOrSlug, nil, nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FeaturedProjects fetches up to limit featured projects. A non-positive
// limit uses the server default.
func (c *Client) FeaturedProjects(ctx context.Context, limit int) ([]project.Project, error) {
	var query map[string]string
	if limit > 0 {
		query = map[string]string{"limit": strconv.Itoa(limit)}
	}
	var items []project.Project
	if err := c.do(ctx, http.MethodGet, "/projects/featured", query, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Categories is the category listing response.
type Categories struct {
	Categories []project.CategoryCount `json:"categories"`
	Total      int                     `json:"total_categories"`
}

// Categories fetches published categories with their counts.
func (c *Client) Categories(ctx context.Context) (*Categories, error) {
	var out Categories
	if err := c.do(ctx, http.MethodGet, "/projects/categories", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContactRequest is a contact form submission.
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
}

// ContactResponse is the contact endpoint's success envelope.
type ContactResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		ID          string    `json:"id"`
		SubmittedAt time.Time `json:"submitted_at"`
	} `json:"data"`
}

// SubmitContact posts a contact form submission. It is never retried after
// the server has answered.
func (c *Client) SubmitContact(ctx context.Context, req ContactRequest) (*ContactResponse, error) {
	var out ContactResponse
	if err := c.do(ctx, http.MethodPost, "/contact", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProjectSource adapts the client to the terminal's project cache. Every
// published project is fetched page by page.
type ProjectSource struct {
	Client *Client
}

// ListProjects returns all published projects.
func (s ProjectSource) ListProjects(ctx context.Context) ([]project.Project, error) {
	var all []project.Project
	for page := 1; ; page++ {
		p, err := s.Client.ListProjects(ctx, ProjectQuery{Page: page, PerPage: project.MaxPerPage})
		if err != nil {
			return nil, err
		}
		all = append(all, p.Items...)
		if !p.HasNext {
			return all, nil
		}
	}
}
