package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
)

// RateRule grants Limit requests per Window to each client IP. Method and
// Path select the requests it applies to; an empty Method matches any.
type RateRule struct {
	Name   string
	Method string
	Path   string
	Limit  int
	Window time.Duration
}

func (r RateRule) matches(method, path string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	return path == r.Path || strings.HasPrefix(path, strings.TrimSuffix(r.Path, "/")+"/")
}

// RateLimitConfig defines rate limiting configuration.
type RateLimitConfig struct {
	// Global applies to every request no endpoint rule matches.
	Global RateRule
	// Rules are checked in order; the first match replaces Global.
	Rules []RateRule
	// Exempt path prefixes are never limited.
	Exempt []string
	// IdleTTL evicts limiters of clients not seen for this long.
	IdleTTL time.Duration
	// OnLimited observes every rejection.
	OnLimited func(rule string)
	Clock     func() time.Time
}

// DefaultRateLimitConfig returns the API's limits: 100/min overall, with
// tighter budgets on contact, upload and login.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Global: RateRule{Name: "global", Limit: 100, Window: time.Minute},
		Rules: []RateRule{
			{Name: "contact", Method: http.MethodPost, Path: "/api/contact", Limit: 5, Window: time.Minute},
			{Name: "upload", Method: http.MethodPost, Path: "/api/admin/upload", Limit: 10, Window: time.Minute},
			{Name: "login", Method: http.MethodPost, Path: "/api/admin/login", Limit: 5, Window: 5 * time.Minute},
		},
		Exempt:  []string{"/api/health", "/uploads", "/metrics"},
		IdleTTL: 10 * time.Minute,
	}
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type limiterSet struct {
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
	ttl       time.Duration
}

func (s *limiterSet) get(key string, rule RateRule, now time.Time) *rate.Limiter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ttl > 0 && now.Sub(s.lastSweep) > s.ttl {
		for k, c := range s.clients {
			if now.Sub(c.lastSeen) > s.ttl {
				delete(s.clients, k)
			}
		}
		s.lastSweep = now
	}

	c, ok := s.clients[key]
	if !ok {
		c = &client{limiter: newLimiter(rule)}
		s.clients[key] = c
	}
	c.lastSeen = now
	return c.limiter
}

// newLimiter spreads Limit tokens evenly over Window and allows a full
// window's budget as a burst.
func newLimiter(rule RateRule) *rate.Limiter {
	if rule.Limit <= 0 || rule.Window <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Every(rule.Window/time.Duration(rule.Limit)), rule.Limit)
}

// RateLimit creates a per-IP rate limiting middleware. Rejected requests get
// 429 with the RATE_LIMIT_EXCEEDED envelope and a Retry-After header.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	set := &limiterSet{clients: make(map[string]*client), ttl: cfg.IdleTTL}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, prefix := range cfg.Exempt {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		rule := cfg.Global
		for _, r := range cfg.Rules {
			if r.matches(c.Request.Method, path) {
				rule = r
				break
			}
		}
		if rule.Limit <= 0 {
			c.Next()
			return
		}

		now := cfg.Clock()
		limiter := set.get(rule.Name+"|"+c.ClientIP(), rule, now)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rule.Limit))

		res := limiter.ReserveN(now, 1)
		if delay := res.DelayFrom(now); delay > 0 {
			res.CancelAt(now)
			if cfg.OnLimited != nil {
				cfg.OnLimited(rule.Name)
			}
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", strconv.Itoa(int(math.Ceil(delay.Seconds()))))
			response.Fail(c, http.StatusTooManyRequests, response.CodeRateLimited,
				"Rate limit exceeded. Please try again later.")
			return
		}

		remaining := int(limiter.TokensAt(now))
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}
