package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/api/response"
	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/portfolio/internal/storage/uploads"
)

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the handlers.
type Deps struct {
	Projects *project.Service
	Contacts *contact.Service
	Admins   *admin.Service
	Uploads  *uploads.Store
	DB       Pinger
	Metrics  *monitoring.Metrics
	Logger   *zap.Logger

	Version      string
	EmailEnabled bool
}

// Handlers contains all HTTP handlers
type Handlers struct {
	projects     *project.Service
	contacts     *contact.Service
	admins       *admin.Service
	uploads      *uploads.Store
	db           Pinger
	metrics      *monitoring.Metrics
	logger       *zap.Logger
	version      string
	emailEnabled bool
	now          func() time.Time
}

// NewHandlers creates a new handler set
func NewHandlers(d Deps) *Handlers {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = monitoring.NewMetrics()
	}
	registerFieldNames()
	return &Handlers{
		projects:     d.Projects,
		contacts:     d.Contacts,
		admins:       d.Admins,
		uploads:      d.Uploads,
		db:           d.DB,
		metrics:      d.Metrics,
		logger:       d.Logger,
		version:      d.Version,
		emailEnabled: d.EmailEnabled,
		now:          time.Now,
	}
}

var fieldNamesOnce sync.Once

// registerFieldNames makes gin's validator report json/form names instead
// of Go field names.
func registerFieldNames() {
	fieldNamesOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
				if name != "" && name != "-" {
					return name
				}
			}
			return f.Name
		})
	})
}

// bindErrors flattens a binding error into "field: message" strings.
func bindErrors(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"body: " + err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fmt.Sprintf("%s: %s", fe.Field(), describeRule(fe)))
	}
	return out
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be greater than or equal to " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be less than or equal to " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	}
	return "is invalid"
}

// fail maps a service error to a response. Unknown errors become a logged
// INTERNAL_ERROR.
func (h *Handlers) fail(c *gin.Context, err error) {
	var verr *contact.ValidationError
	switch {
	case errors.As(err, &verr):
		errs := make([]string, len(verr.Fields))
		for i, f := range verr.Fields {
			errs[i] = f.Field + ": " + f.Message
		}
		response.Invalid(c, errs...)
	case errors.Is(err, project.ErrNotFound):
		response.NotFound(c, "Project not found")
	case errors.Is(err, contact.ErrNotFound):
		response.NotFound(c, "Contact message not found")
	case errors.Is(err, uploads.ErrNotFound):
		response.NotFound(c, "File not found")
	case errors.Is(err, project.ErrInvalidInput):
		response.Invalid(c, strings.TrimPrefix(err.Error(), project.ErrInvalidInput.Error()+": "))
	case errors.Is(err, uploads.ErrTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.CodeHTTP,
			fmt.Sprintf("File too large. Maximum size is %d MB", h.uploads.MaxSize()>>20))
	case errors.Is(err, uploads.ErrUnsupportedType):
		response.Fail(c, http.StatusUnsupportedMediaType, response.CodeHTTP,
			"File type not allowed. Allowed types: jpeg, png, gif, webp")
	case errors.Is(err, uploads.ErrEmpty), errors.Is(err, uploads.ErrInvalidName):
		response.Invalid(c, "file: "+err.Error())
	case errors.Is(err, admin.ErrInvalidCredentials):
		response.Unauthorized(c, "Incorrect username or password")
	case errors.Is(err, admin.ErrInactive):
		response.Fail(c, http.StatusForbidden, response.CodeHTTP, "Admin account is disabled")
	case errors.Is(err, context.Canceled):
		c.Abort()
	default:
		errorID := response.Internal(c)
		h.logger.Error("request failed",
			zap.String("error_id", errorID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err))
	}
}

// Root describes the API.
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Portfolio API",
		"version": h.version,
		"status":  "running",
	})
}

// NotFound answers unmatched routes with the error envelope.
func (h *Handlers) NotFound(c *gin.Context) {
	response.NotFound(c, "Resource not found")
}

// Health reports liveness and database reachability.
func (h *Handlers) Health(c *gin.Context) {
	status, code, database := "healthy", http.StatusOK, "connected"
	if err := h.ping(c.Request.Context()); err != nil {
		status, code, database = "unhealthy", http.StatusServiceUnavailable, "disconnected"
		h.logger.Warn("health check failed", zap.Error(err))
	}
	c.JSON(code, gin.H{
		"status":    status,
		"timestamp": h.now().UTC(),
		"version":   h.version,
		"database":  database,
	})
}

// HealthDetailed reports every dependency with its latency.
func (h *Handlers) HealthDetailed(c *gin.Context) {
	ctx := c.Request.Context()
	overall, code := "healthy", http.StatusOK

	start := time.Now()
	db := gin.H{"status": "healthy"}
	if err := h.ping(ctx); err != nil {
		db = gin.H{"status": "unhealthy", "error": err.Error()}
		overall, code = "unhealthy", http.StatusServiceUnavailable
	}
	db["response_time_ms"] = float64(time.Since(start).Microseconds()) / 1000

	storage := gin.H{"status": "disabled"}
	if h.uploads != nil {
		usage, err := h.uploads.Usage(ctx)
		if err != nil {
			storage = gin.H{"status": "degraded", "error": err.Error()}
			if overall == "healthy" {
				overall = "degraded"
			}
		} else {
			storage = gin.H{"status": "healthy", "files": usage.Files, "size": usage.BytesHuman}
		}
	}

	email := "disabled"
	if h.emailEnabled {
		email = "enabled"
	}
	snap := h.metrics.Snapshot()

	c.JSON(code, gin.H{
		"status":    overall,
		"timestamp": h.now().UTC(),
		"version":   h.version,
		"services": gin.H{
			"database": db,
			"uploads":  storage,
			"email":    gin.H{"status": email},
			"terminal": gin.H{"status": "healthy", "active_sessions": snap.ActiveSessions},
		},
		"uptime_seconds": snap.UptimeSeconds,
	})
}

func (h *Handlers) ping(ctx context.Context) error {
	if h.db == nil {
		return errors.New("no database configured")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return h.db.Ping(ctx)
}
