package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/GriffinCanCode/portfolio/internal/domain/admin"
	"github.com/GriffinCanCode/portfolio/internal/domain/contact"
	"github.com/GriffinCanCode/portfolio/internal/domain/project"
	"github.com/GriffinCanCode/portfolio/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/portfolio/internal/storage/seed"
	"github.com/GriffinCanCode/portfolio/internal/storage/sqlite"
	"github.com/GriffinCanCode/portfolio/internal/storage/uploads"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []contact.Message
}

func (n *recordingNotifier) Enqueue(m contact.Message) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, m)
}

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("database is locked") }

type fixture struct {
	router   *gin.Engine
	handlers *Handlers
	db       *sqlite.DB
	projects *project.Service
	notifier *recordingNotifier
	metrics  *monitoring.Metrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	projects := project.NewService(db.Projects(), nil)
	doc, err := seed.Load("")
	require.NoError(t, err)
	_, err = seed.NewSeeder(projects, nil).Seed(ctx, doc)
	require.NoError(t, err)

	_, err = projects.Create(ctx, project.Input{
		Title: "Secret Draft", Description: "not yet", Category: "web", Status: project.StatusDraft,
	})
	require.NoError(t, err)

	admins := admin.NewService(db.Admins(), admin.Config{Secret: "test-secret", Cost: bcrypt.MinCost}, nil)
	_, err = admins.EnsureAccount(ctx, "admin", "admin123", "admin@example.dev")
	require.NoError(t, err)

	store, err := uploads.NewStore(uploads.Config{Dir: filepath.Join(t.TempDir(), "uploads"), MaxSize: 1 << 20}, nil)
	require.NoError(t, err)

	notifier := &recordingNotifier{}
	metrics := monitoring.NewMetrics()
	h := NewHandlers(Deps{
		Projects: projects,
		Contacts: contact.NewService(db.Contacts(), notifier, nil),
		Admins:   admins,
		Uploads:  store,
		DB:       db,
		Metrics:  metrics,
		Version:  "1.0.0-test",
	})

	router := gin.New()
	router.GET("/", h.Root)
	h.Register(router.Group("/api"))
	return &fixture{router: router, handlers: h, db: db, projects: projects, notifier: notifier, metrics: metrics}
}

func (f *fixture) request(method, path string, body any, token string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, _ := json.Marshal(b)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "handler-test")
	req.RemoteAddr = "203.0.113.9:4000"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T) string {
	t.Helper()
	rec := f.request(http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "admin123"}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var tok admin.Token
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tok))
	return tok.AccessToken
}

func decodeInto[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRootAndHealth(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "1.0.0-test", decodeInto[map[string]any](t, rec)["version"])

	rec = f.request(http.MethodGet, "/api/health", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeInto[map[string]any](t, rec)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "connected", body["database"])

	rec = f.request(http.MethodGet, "/api/health/detailed", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	services := decodeInto[map[string]any](t, rec)["services"].(map[string]any)
	assert.Equal(t, "healthy", services["database"].(map[string]any)["status"])
	assert.Equal(t, "disabled", services["email"].(map[string]any)["status"])
}

func TestHealthReportsDatabaseFailure(t *testing.T) {
	f := newFixture(t)
	f.handlers.db = failingPinger{}

	rec := f.request(http.MethodGet, "/api/health", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "disconnected", decodeInto[map[string]any](t, rec)["database"])
}

func TestListProjects(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		query     string
		wantTotal int
		wantPages int
		wantLen   int
		wantFirst string
	}{
		{"defaults hide drafts", "", 6, 1, 6, "Portfolio Terminal"},
		{"category filter", "?category=systems", 2, 1, 2, "AgentOS"},
		{"featured filter", "?featured=true", 3, 1, 3, "Portfolio Terminal"},
		{"search", "?search=raft", 1, 1, 1, "Tiny Raft"},
		{"second page", "?per_page=4&page=2", 6, 2, 2, "Recipe Box"},
		{"page past the end", "?page=9", 6, 1, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.request(http.MethodGet, "/api/projects"+tt.query, nil, "")
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			page := decodeInto[project.Page](t, rec)
			assert.Equal(t, tt.wantTotal, page.Total)
			assert.Equal(t, tt.wantPages, page.Pages)
			require.Len(t, page.Items, tt.wantLen)
			if tt.wantFirst != "" {
				assert.Equal(t, tt.wantFirst, page.Items[0].Title)
			}
		})
	}
}

func TestListProjectsRejectsBadQuery(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"?page=0", "?per_page=51", "?per_page=0", "?featured=maybe", "?page=abc"} {
		rec := f.request(http.MethodGet, "/api/projects"+q, nil, "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, q)
		assert.Equal(t, "VALIDATION_ERROR", decodeInto[map[string]any](t, rec)["error_code"], q)
	}
}

func TestGetProjectBySlugAndID(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/projects/portfolio-terminal", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeInto[project.Project](t, rec)
	assert.Equal(t, "Portfolio Terminal", p.Title)

	rec = f.request(http.MethodGet, "/api/projects/"+p.ID, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	for _, missing := range []string{"no-such-project", "secret-draft"} {
		rec = f.request(http.MethodGet, "/api/projects/"+missing, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, missing)
		assert.Equal(t, "NOT_FOUND", decodeInto[map[string]any](t, rec)["error_code"])
	}
}

func TestFeaturedProjects(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/projects/featured", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeInto[[]project.Project](t, rec), 3)

	rec = f.request(http.MethodGet, "/api/projects/featured?limit=1", nil, "")
	items := decodeInto[[]project.Project](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "portfolio-terminal", items[0].Slug)

	rec = f.request(http.MethodGet, "/api/projects/featured?limit=21", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCategories(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/projects/categories", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	type listing struct {
		Categories []project.CategoryCount `json:"categories"`
		Total      int                     `json:"total_categories"`
	}
	body := decodeInto[listing](t, rec)
	assert.Equal(t, 3, body.Total)
	assert.Equal(t, []project.CategoryCount{{Name: "systems", Count: 2}, {Name: "tools", Count: 2}, {Name: "web", Count: 2}}, body.Categories)
}

func TestSubmitContact(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodPost, "/api/contact", map[string]string{
		"name":    "Ada   Lovelace",
		"email":   "ADA@Example.dev",
		"subject": "Hello",
		"message": "I would love to chat about your terminal.",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
		Data    struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "Thank you for your message! I'll get back to you soon.", body.Message)
	assert.True(t, strings.HasPrefix(body.Data.ID, "msg_"))

	stored, err := f.db.Contacts().Get(context.Background(), body.Data.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", stored.Name)
	assert.Equal(t, "ada@example.dev", stored.Email)
	assert.Equal(t, "203.0.113.9", stored.IPAddress)
	assert.Equal(t, "handler-test", stored.UserAgent)

	require.Len(t, f.notifier.messages, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.ContactSubmissions.WithLabelValues("accepted")))
}

func TestSubmitContactValidation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name      string
		body      any
		wantField string
	}{
		{"missing email", map[string]string{"name": "Ada", "subject": "Hi", "message": "three words here"}, "email:"},
		{"short message", map[string]string{"name": "Ada", "email": "a@b.dev", "subject": "Hi", "message": "hi"}, "message:"},
		{"bad name", map[string]string{"name": "Ada <3", "email": "a@b.dev", "subject": "Hi", "message": "three words here"}, "name:"},
		{"malformed json", `{"name":`, "body:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.request(http.MethodPost, "/api/contact", tt.body, "")
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
			var body struct {
				Code   string   `json:"error_code"`
				Errors []string `json:"errors"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "VALIDATION_ERROR", body.Code)
			require.NotEmpty(t, body.Errors)
			assert.True(t, strings.HasPrefix(body.Errors[0], tt.wantField), body.Errors)
		})
	}
	assert.Empty(t, f.notifier.messages)
	assert.Equal(t, 4.0, testutil.ToFloat64(f.metrics.ContactSubmissions.WithLabelValues("invalid")))
}

func TestAdminRoutesRequireToken(t *testing.T) {
	f := newFixture(t)

	rec := f.request(http.MethodGet, "/api/admin/dashboard", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(http.MethodPost, "/api/admin/login", map[string]string{"username": "admin", "password": "wrong-password"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.request(http.MethodPost, "/api/admin/login", map[string]string{"username": "a"}, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.request(http.MethodGet, "/api/admin/dashboard", nil, f.login(t))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeInto[map[string]any](t, rec)
	assert.Equal(t, 7.0, body["projects"].(map[string]any)["total"])
	assert.Equal(t, 1.0, body["projects"].(map[string]any)["drafts"])
}

func TestAdminProjectCRUD(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.request(http.MethodGet, "/api/admin/projects?status=draft", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeInto[project.Page](t, rec).Total)

	rec = f.request(http.MethodPost, "/api/admin/projects", map[string]any{
		"title":        "Portfolio Terminal",
		"description":  "<p>Second take</p><script>alert(1)</script>",
		"category":     "Web",
		"technologies": []string{"Go", " ", "Go"},
	}, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decodeInto[project.Project](t, rec)
	assert.Equal(t, "portfolio-terminal-2", created.Slug)
	assert.Equal(t, "web", created.Category)
	assert.NotContains(t, created.Description, "script")

	rec = f.request(http.MethodPost, "/api/admin/projects", map[string]any{"title": "No category"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.request(http.MethodPut, "/api/admin/projects/"+created.ID, map[string]any{
		"title": "Renamed", "description": "d", "category": "tools", "status": "archived",
	}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "renamed", decodeInto[project.Project](t, rec).Slug)

	rec = f.request(http.MethodGet, "/api/projects/renamed", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "archived projects are hidden")

	rec = f.request(http.MethodDelete, "/api/admin/projects/"+created.ID, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.request(http.MethodDelete, "/api/admin/projects/"+created.ID, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.request(http.MethodPut, "/api/admin/projects/"+created.ID, map[string]any{"title": "x", "description": "d", "category": "c"}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminContacts(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	rec := f.request(http.MethodPost, "/api/contact", map[string]string{
		"name": "Grace", "email": "grace@example.dev", "subject": "Hi", "message": "Nice work on this",
	}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.request(http.MethodGet, "/api/admin/contacts?read_status=false", nil, token)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeInto[contact.Page](t, rec)
	require.Equal(t, 1, page.Total)
	messageID := page.Items[0].ID

	rec = f.request(http.MethodPatch, "/api/admin/contacts/"+messageID, map[string]any{"read_status": true, "replied": true, "notes": "answered"}, token)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeInto[contact.Message](t, rec)
	assert.True(t, updated.Read)
	assert.NotNil(t, updated.ReplyDate)

	rec = f.request(http.MethodGet, "/api/admin/contacts?read_status=false", nil, token)
	assert.Equal(t, 0, decodeInto[contact.Page](t, rec).Total)

	rec = f.request(http.MethodGet, "/api/admin/contacts/msg_missing", nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func multipartBody(t *testing.T, field, name string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// multiFileBody writes one "files" part per name, all carrying data.
func multiFileBody(t *testing.T, data map[string][]byte, names ...string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data[name])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return img.Bytes()
}

func (f *fixture) upload(token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	return f.uploadTo("/api/admin/upload", token, body, contentType)
}

func (f *fixture) uploadTo(path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestUploadAndDelete(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))

	body, ct := multipartBody(t, "file", "shot.png", img.Bytes())
	rec := f.upload(token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data uploads.File `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "image/png", resp.Data.ContentType)
	assert.True(t, strings.HasPrefix(resp.Data.URL, "/uploads/"))

	body, ct = multipartBody(t, "file", "notes.png", []byte("plain text pretending to be an image"))
	rec = f.upload(token, body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	body, ct = multipartBody(t, "other", "shot.png", img.Bytes())
	rec = f.upload(token, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.request(http.MethodDelete, "/api/admin/upload/"+resp.Data.Filename, nil, token)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.request(http.MethodDelete, "/api/admin/upload/"+resp.Data.Filename, nil, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = f.request(http.MethodDelete, "/api/admin/upload/portfolio.db", nil, token)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUploadTooLarge(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	body, ct := multipartBody(t, "file", "big.png", bytes.Repeat([]byte{0x89}, 1<<20+10))
	rec := f.upload(token, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestUploadMultiple(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	img := pngBytes(t)
	data := map[string][]byte{"a.png": img, "b.png": img}

	body, ct := multiFileBody(t, data, "a.png", "b.png")
	rec := f.uploadTo("/api/admin/upload/multiple", token, body, ct)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		Data struct {
			UploadedFiles []uploads.File `json:"uploaded_files"`
			TotalFiles    int            `json:"total_files"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Data.TotalFiles)
	require.Len(t, resp.Data.UploadedFiles, 2)
	assert.Equal(t, "a.png", resp.Data.UploadedFiles[0].OriginalName)
	assert.Equal(t, "b.png", resp.Data.UploadedFiles[1].OriginalName)
	assert.NotEqual(t, resp.Data.UploadedFiles[0].Filename, resp.Data.UploadedFiles[1].Filename)
	for _, file := range resp.Data.UploadedFiles {
		assert.FileExists(t, filepath.Join(f.handlers.uploads.Dir(), file.Filename))
	}
}

func TestUploadMultipleRejectsTooManyFiles(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	img := pngBytes(t)

	data := make(map[string][]byte)
	var names []string
	for i := 0; i <= MaxUploadFiles; i++ {
		name := fmt.Sprintf("shot-%02d.png", i)
		data[name] = img
		names = append(names, name)
	}
	body, ct := multiFileBody(t, data, names...)
	rec := f.uploadTo("/api/admin/upload/multiple", token, body, ct)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Maximum 10 files")

	entries, err := os.ReadDir(f.handlers.uploads.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadMultipleRollsBackOnRejectedFile(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)
	data := map[string][]byte{
		"good.png":  pngBytes(t),
		"notes.png": []byte("plain text pretending to be an image"),
	}

	body, ct := multiFileBody(t, data, "good.png", "notes.png")
	rec := f.uploadTo("/api/admin/upload/multiple", token, body, ct)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	entries, err := os.ReadDir(f.handlers.uploads.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadMultipleRequiresFiles(t *testing.T) {
	f := newFixture(t)
	token := f.login(t)

	body, ct := multipartBody(t, "file", "shot.png", pngBytes(t))
	rec := f.uploadTo("/api/admin/upload/multiple", token, body, ct)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	body, ct = multiFileBody(t, map[string][]byte{"big.png": bytes.Repeat([]byte{0x89}, 1<<20+10)}, "big.png")
	rec = f.uploadTo("/api/admin/upload/multiple", token, body, ct)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = f.request(http.MethodPost, "/api/admin/upload/multiple", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
