package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/resilience"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second, RetryMax: 2, RetryWait: time.Millisecond})
	return c, &hits
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestListProjectsSendsQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/projects", r.URL.Path)
		assert.Equal(t, "web", r.URL.Query().Get("category"))
		assert.Equal(t, "true", r.URL.Query().Get("featured"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		writeJSON(w, http.StatusOK, project.NewPage([]project.Project{{ID: "prj_1", Title: "Alpha"}}, 11, 2, 10))
	})

	featured := true
	page, err := c.ListProjects(context.Background(), ProjectQuery{Category: "web", Featured: &featured, Page: 2})
	require.NoError(t, err)
	assert.Equal(t, 11, page.Total)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Alpha", page.Items[0].Title)
}

func TestGetProjectNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "message": "Project not found", "error_code": "NOT_FOUND"})
	})

	_, err := c.GetProject(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	for i := 0; i < 10; i++ {
		_, _ = c.GetProject(context.Background(), "nope")
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState(), "404s never open the circuit")
}

func TestFeaturedAndCategories(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/projects/featured":
			assert.Equal(t, "3", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, []project.Project{{ID: "prj_1"}, {ID: "prj_2"}})
		case "/api/projects/categories":
			writeJSON(w, http.StatusOK, map[string]any{
				"categories":       []project.CategoryCount{{Name: "web", Count: 2}},
				"total_categories": 1,
			})
		default:
			http.NotFound(w, r)
		}
	})

	items, err := c.FeaturedProjects(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	cats, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, cats.Total)
	assert.Equal(t, "web", cats.Categories[0].Name)
}

func TestRetriesServerErrorsOnGet(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"message": "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []project.Project{{ID: "prj_1"}})
	})

	items, err := c.FeaturedProjects(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestServerErrorSurfacesEnvelope(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false, "message": "Internal server error", "error_code": "INTERNAL_ERROR",
		})
	})

	_, err := c.Categories(context.Background())
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "INTERNAL_ERROR", apiErr.Code)
	assert.Equal(t, int32(3), hits.Load(), "one attempt plus two retries")
}

func TestSubmitContactIsNotRetried(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body ContactRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body.Name == "fail" {
			writeJSON(w, http.StatusBadGateway, map[string]any{"message": "upstream"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Thank you for your message! I'll get back to you soon.",
			"data":    map[string]any{"id": "msg_1", "submitted_at": "2024-05-01T12:00:00Z"},
		})
	})

	resp, err := c.SubmitContact(context.Background(), ContactRequest{Name: "Ada", Email: "a@b.dev", Subject: "s", Message: "hello there friend"})
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "msg_1", resp.Data.ID)

	_, err = c.SubmitContact(context.Background(), ContactRequest{Name: "fail"})
	require.Error(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestValidationErrorDoesNotTripBreaker(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "Validation failed", "error_code": "VALIDATION_ERROR", "errors": []string{"email: must be a valid email address"},
		})
	})

	for i := 0; i < 8; i++ {
		_, err := c.SubmitContact(context.Background(), ContactRequest{})
		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, []string{"email: must be a valid email address"}, apiErr.Errors)
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestUnreachableServerOpensCircuit(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(Config{BaseURL: url, Timeout: time.Second, RetryMax: 0})
	for i := 0; i < 5; i++ {
		_, err := c.Categories(context.Background())
		assert.ErrorIs(t, err, ErrUnavailable)
	}
	assert.Equal(t, resilience.StateOpen, c.BreakerState())

	_, err := c.Categories(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestAbandonedCallsDoNotTripBreaker(t *testing.T) {
	arrived := make(chan struct{}, 32)
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		arrived <- struct{}{}
		<-r.Context().Done()
	})

	for i := 0; i < 6; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-arrived
			cancel()
		}()
		_, err := c.Categories(ctx)
		cancel()
		assert.ErrorIs(t, err, context.Canceled)
		assert.NotErrorIs(t, err, ErrUnavailable)
	}
	for i := 0; i < 6; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		_, err := c.Categories(ctx)
		cancel()
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	}
	assert.Equal(t, resilience.StateClosed, c.BreakerState())
}

func TestProjectSourceWalksPages(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		assert.Equal(t, "50", r.URL.Query().Get("per_page"))
		var items []project.Project
		for i := 0; i < 2; i++ {
			items = append(items, project.Project{ID: fmt.Sprintf("prj_%s_%d", page, i)})
		}
		total := 4
		n := 2
		if page == "1" {
			writeJSON(w, http.StatusOK, project.Page{Items: items, Total: total, Page: 1, PerPage: n, Pages: 2, HasNext: true})
			return
		}
		writeJSON(w, http.StatusOK, project.Page{Items: items, Total: total, Page: 2, PerPage: n, Pages: 2, HasPrev: true})
	})

	all, err := ProjectSource{Client: c}.ListProjects(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, int32(2), hits.Load())
}

func TestRateLimitHonorsContext(t *testing.T) {
	c, hits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []project.Project{})
	})
	c.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	_, err := c.FeaturedProjects(context.Background(), 0)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = c.FeaturedProjects(ctx, 0)
	assert.Error(t, err)
	assert.Equal(t, int32(1), hits.Load())
}
