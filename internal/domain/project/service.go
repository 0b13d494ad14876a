package project

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/portfolio/internal/shared/id"
)

// Filter narrows a repository listing. Zero values mean "any".
type Filter struct {
	Category string
	Featured *bool
	Search   string
	Status   Status
	Offset   int
	Limit    int
}

// Repository persists projects.
type Repository interface {
	List(ctx context.Context, f Filter) ([]Project, int, error)
	Get(ctx context.Context, id string) (*Project, error)
	GetBySlug(ctx context.Context, slug string) (*Project, error)
	Categories(ctx context.Context, status Status) ([]CategoryCount, error)
	SlugExists(ctx context.Context, slug, excludeID string) (bool, error)
	Create(ctx context.Context, p *Project) error
	Update(ctx context.Context, p *Project) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

// Query is a public listing request.
type Query struct {
	Category string
	Featured *bool
	Search   string
	Status   Status
	Page     int
	PerPage  int
}

// Input carries the editable fields of a project.
type Input struct {
	Title            string            `json:"title" binding:"required,min=1,max=200"`
	Description      string            `json:"description" binding:"required,min=1"`
	ShortDescription string            `json:"short_description" binding:"max=300"`
	Technologies     []string          `json:"technologies"`
	Images           []string          `json:"images"`
	Thumbnail        string            `json:"thumbnail"`
	Links            *Links            `json:"links"`
	Category         string            `json:"category" binding:"required,min=1,max=50"`
	Featured         bool              `json:"featured"`
	Status           Status            `json:"status"`
	Order            int               `json:"order"`
	Metadata         map[string]string `json:"metadata"`
	Slug             string            `json:"slug"`
}

// Service implements the project showcase use cases.
type Service struct {
	repo   Repository
	logger *zap.Logger
	now    func() time.Time
	strict *bluemonday.Policy
	rich   *bluemonday.Policy
}

// NewService creates a project service.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		logger: logger,
		now:    time.Now,
		strict: bluemonday.StrictPolicy(),
		rich:   bluemonday.UGCPolicy(),
	}
}

// ListPublished returns one page of published projects, newest and
// highest-ordered first.
func (s *Service) ListPublished(ctx context.Context, q Query) (Page, error) {
	q.Status = StatusPublished
	return s.list(ctx, q)
}

// ListAll returns one page across every status, or a single status when set.
func (s *Service) ListAll(ctx context.Context, q Query) (Page, error) {
	return s.list(ctx, q)
}

func (s *Service) list(ctx context.Context, q Query) (Page, error) {
	page, perPage := NormalizePage(q.Page, q.PerPage)
	items, total, err := s.repo.List(ctx, Filter{
		Category: strings.TrimSpace(q.Category),
		Featured: q.Featured,
		Search:   strings.TrimSpace(q.Search),
		Status:   q.Status,
		Offset:   Offset(page, perPage),
		Limit:    perPage,
	})
	if err != nil {
		return Page{}, fmt.Errorf("list projects: %w", err)
	}
	return NewPage(items, total, page, perPage), nil
}

// Get looks a published project up by id, then by slug.
func (s *Service) Get(ctx context.Context, idOrSlug string) (*Project, error) {
	p, err := s.find(ctx, idOrSlug)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusPublished {
		return nil, ErrNotFound
	}
	return p, nil
}

// GetAny looks a project up regardless of status.
func (s *Service) GetAny(ctx context.Context, idOrSlug string) (*Project, error) {
	return s.find(ctx, idOrSlug)
}

func (s *Service) find(ctx context.Context, idOrSlug string) (*Project, error) {
	p, err := s.repo.Get(ctx, idOrSlug)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("get project: %w", err)
	}
	p, err = s.repo.GetBySlug(ctx, idOrSlug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get project by slug: %w", err)
	}
	return p, nil
}

// Featured returns up to limit featured published projects.
func (s *Service) Featured(ctx context.Context, limit int) ([]Project, error) {
	if limit < 1 {
		limit = DefaultFeaturedSize
	}
	if limit > MaxFeaturedSize {
		limit = MaxFeaturedSize
	}
	featured := true
	items, _, err := s.repo.List(ctx, Filter{Featured: &featured, Status: StatusPublished, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("featured projects: %w", err)
	}
	if items == nil {
		items = []Project{}
	}
	return items, nil
}

// Categories returns published categories ordered by project count.
func (s *Service) Categories(ctx context.Context) ([]CategoryCount, error) {
	cats, err := s.repo.Categories(ctx, StatusPublished)
	if err != nil {
		return nil, fmt.Errorf("project categories: %w", err)
	}
	if cats == nil {
		cats = []CategoryCount{}
	}
	return cats, nil
}

// Published returns every published project in display order. The terminal
// uses it as its project source.
func (s *Service) Published(ctx context.Context) ([]Project, error) {
	items, _, err := s.repo.List(ctx, Filter{Status: StatusPublished})
	if err != nil {
		return nil, fmt.Errorf("published projects: %w", err)
	}
	return items, nil
}

// Create stores a new project with a unique slug.
func (s *Service) Create(ctx context.Context, in Input) (*Project, error) {
	p := &Project{ID: id.NewProjectID().String()}
	if err := s.apply(p, in); err != nil {
		return nil, err
	}
	slug, err := s.uniqueSlug(ctx, firstNonEmpty(in.Slug, in.Title), p.ID)
	if err != nil {
		return nil, err
	}
	p.Slug = slug
	now := s.now().UTC()
	p.DateCreated, p.DateUpdated = now, now

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	s.logger.Info("project created", zap.String("id", p.ID), zap.String("slug", p.Slug))
	return p, nil
}

// Update replaces the editable fields of an existing project.
func (s *Service) Update(ctx context.Context, projectID string, in Input) (*Project, error) {
	p, err := s.repo.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	oldTitle := p.Title
	if err := s.apply(p, in); err != nil {
		return nil, err
	}
	if in.Slug != "" || p.Title != oldTitle {
		slug, err := s.uniqueSlug(ctx, firstNonEmpty(in.Slug, p.Title), p.ID)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
	}
	p.DateUpdated = s.now().UTC()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("update project: %w", err)
	}
	return p, nil
}

// Delete removes a project.
func (s *Service) Delete(ctx context.Context, projectID string) error {
	if err := s.repo.Delete(ctx, projectID); err != nil {
		return err
	}
	s.logger.Info("project deleted", zap.String("id", projectID))
	return nil
}

// Stats returns counters for the dashboard.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) apply(p *Project, in Input) error {
	title := s.plain(in.Title)
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	category := strings.ToLower(s.plain(in.Category))
	if category == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidInput)
	}
	status := in.Status
	if status == "" {
		status = StatusPublished
	}
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}

	p.Title = title
	p.Description = strings.TrimSpace(s.rich.Sanitize(in.Description))
	p.ShortDescription = s.plain(in.ShortDescription)
	p.Technologies = cleanList(in.Technologies)
	p.Images = cleanList(in.Images)
	p.Thumbnail = strings.TrimSpace(in.Thumbnail)
	p.Links = nil
	if in.Links != nil && !in.Links.Empty() {
		links := *in.Links
		p.Links = &links
	}
	p.Category = category
	p.Featured = in.Featured
	p.Status = status
	p.Order = in.Order
	p.Metadata = in.Metadata
	return nil
}

func (s *Service) plain(v string) string {
	return html.UnescapeString(strings.TrimSpace(s.strict.Sanitize(v)))
}

func (s *Service) uniqueSlug(ctx context.Context, source, excludeID string) (string, error) {
	base := Slugify(source)
	if base == "" {
		base = strings.ToLower(strings.TrimPrefix(excludeID, id.ProjectPrefix+"_"))
	}
	slug := base
	for n := 2; ; n++ {
		exists, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("check slug: %w", err)
		}
		if !exists {
			return slug, nil
		}
		slug = base + "-" + strconv.Itoa(n)
	}
}

var (
	slugStrip  = regexp.MustCompile(`[^a-z0-9\s_-]`)
	slugDashes = regexp.MustCompile(`[\s_-]+`)
)

// Slugify converts a title into a URL-safe slug of at most 100 characters.
func Slugify(s string) string {
	slug := slugStrip.ReplaceAllString(strings.ToLower(s), "")
	slug = slugDashes.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
