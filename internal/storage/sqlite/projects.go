package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/GriffinCanCode/portfolio/internal/domain/project"
)

const projectColumns = `id, slug, title, description, short_description, technologies, images,
	thumbnail, links, category, featured, status, sort_order, metadata, date_created, date_updated`

// ProjectStore implements project.Repository.
type ProjectStore struct {
	db *sql.DB
}

var _ project.Repository = (*ProjectStore)(nil)

func projectWhere(f project.Filter) (string, []any) {
	var conds []string
	var args []any
	if f.Status != "" {
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, strings.ToLower(f.Category))
	}
	if f.Featured != nil {
		conds = append(conds, "featured = ?")
		args = append(args, boolInt(*f.Featured))
	}
	if f.Search != "" {
		pattern := likePattern(strings.ToLower(f.Search))
		conds = append(conds, `(lower(title) LIKE ? ESCAPE '\' OR lower(description) LIKE ? ESCAPE '\'
			OR lower(short_description) LIKE ? ESCAPE '\' OR lower(technologies) LIKE ? ESCAPE '\')`)
		args = append(args, pattern, pattern, pattern, pattern)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List returns one window of matching projects and the total match count.
func (s *ProjectStore) List(ctx context.Context, f project.Filter) ([]project.Project, int, error) {
	where, args := projectWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	limit, limitArgs := limitClause(f.Limit, f.Offset)
	query := "SELECT " + projectColumns + " FROM projects" + where +
		" ORDER BY sort_order DESC, date_created DESC, id DESC" + limit
	rows, err := s.db.QueryContext(ctx, query, append(args, limitArgs...)...)
	if err != nil {
		return nil, 0, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	items := []project.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", err)
	}
	return items, total, nil
}

// Get returns the project with the given id.
func (s *ProjectStore) Get(ctx context.Context, id string) (*project.Project, error) {
	return s.getBy(ctx, "id", id)
}

// GetBySlug returns the project with the given slug.
func (s *ProjectStore) GetBySlug(ctx context.Context, slug string) (*project.Project, error) {
	return s.getBy(ctx, "slug", strings.ToLower(slug))
}

func (s *ProjectStore) getBy(ctx context.Context, column, value string) (*project.Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE "+column+" = ?", value)
	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, project.ErrNotFound
	}
	return p, err
}

// Categories counts projects per category, most populated first.
func (s *ProjectStore) Categories(ctx context.Context, status project.Status) ([]project.CategoryCount, error) {
	query := "SELECT category, COUNT(*) FROM projects"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, string(status))
	}
	query += " GROUP BY category ORDER BY COUNT(*) DESC, category ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	out := []project.CategoryCount{}
	for rows.Next() {
		var c project.CategoryCount
		if err := rows.Scan(&c.Name, &c.Count); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SlugExists reports whether another project already uses slug.
func (s *ProjectStore) SlugExists(ctx context.Context, slug, excludeID string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM projects WHERE slug = ? AND id != ?", slug, excludeID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("check slug: %w", err)
	}
	return n > 0, nil
}

// Create inserts a project.
func (s *ProjectStore) Create(ctx context.Context, p *project.Project) error {
	vals, err := projectValues(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, "INSERT INTO projects ("+projectColumns+
		") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)", vals...)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// Update replaces a stored project.
func (s *ProjectStore) Update(ctx context.Context, p *project.Project) error {
	vals, err := projectValues(p)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `UPDATE projects SET slug = ?, title = ?, description = ?,
		short_description = ?, technologies = ?, images = ?, thumbnail = ?, links = ?, category = ?,
		featured = ?, status = ?, sort_order = ?, metadata = ?, date_created = ?, date_updated = ?
		WHERE id = ?`, append(vals[1:], p.ID)...)
	if err != nil {
		return fmt.Errorf("update project: %w", err)
	}
	return requireRow(res, project.ErrNotFound)
}

// Delete removes a project.
func (s *ProjectStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return requireRow(res, project.ErrNotFound)
}

// Stats counts projects by status.
func (s *ProjectStore) Stats(ctx context.Context) (project.Stats, error) {
	var st project.Stats
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*),
		COALESCE(SUM(CASE WHEN status = 'published' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'draft' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'archived' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(featured), 0)
		FROM projects`).Scan(&st.Total, &st.Published, &st.Drafts, &st.Archived, &st.Featured)
	if err != nil {
		return project.Stats{}, fmt.Errorf("project stats: %w", err)
	}
	return st, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(row scanner) (*project.Project, error) {
	var (
		p                project.Project
		techs, images    string
		links, metadata  sql.NullString
		featured         int
		status           string
		created, updated int64
	)
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.ShortDescription, &techs, &images,
		&p.Thumbnail, &links, &p.Category, &featured, &status, &p.Order, &metadata, &created, &updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}

	if err := sonic.UnmarshalString(techs, &p.Technologies); err != nil {
		return nil, fmt.Errorf("decode technologies: %w", err)
	}
	if err := sonic.UnmarshalString(images, &p.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}
	if links.Valid && links.String != "" {
		p.Links = &project.Links{}
		if err := sonic.UnmarshalString(links.String, p.Links); err != nil {
			return nil, fmt.Errorf("decode links: %w", err)
		}
	}
	if metadata.Valid && metadata.String != "" {
		if err := sonic.UnmarshalString(metadata.String, &p.Metadata); err != nil {
			return nil, fmt.Errorf("decode metadata: %w", err)
		}
	}
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	p.Featured = featured != 0
	p.Status = project.Status(status)
	p.DateCreated = fromMillis(created)
	p.DateUpdated = fromMillis(updated)
	return &p, nil
}

func projectValues(p *project.Project) ([]any, error) {
	techs, err := encodeList(p.Technologies)
	if err != nil {
		return nil, fmt.Errorf("encode technologies: %w", err)
	}
	images, err := encodeList(p.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	var links, metadata sql.NullString
	if p.Links != nil && !p.Links.Empty() {
		s, err := sonic.MarshalString(p.Links)
		if err != nil {
			return nil, fmt.Errorf("encode links: %w", err)
		}
		links = sql.NullString{String: s, Valid: true}
	}
	if len(p.Metadata) > 0 {
		s, err := sonic.MarshalString(p.Metadata)
		if err != nil {
			return nil, fmt.Errorf("encode metadata: %w", err)
		}
		metadata = sql.NullString{String: s, Valid: true}
	}
	return []any{
		p.ID, p.Slug, p.Title, p.Description, p.ShortDescription, techs, images,
		p.Thumbnail, links, p.Category, boolInt(p.Featured), string(p.Status), p.Order, metadata,
		toMillis(p.DateCreated), toMillis(p.DateUpdated),
	}, nil
}

func encodeList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	return sonic.MarshalString(v)
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
