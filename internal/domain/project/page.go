package project

const (
	DefaultPerPage      = 10
	MaxPerPage          = 50
	DefaultFeaturedSize = 6
	MaxFeaturedSize     = 20
)

// Page is a paginated slice of projects.
type Page struct {
	Items   []Project `json:"items"`
	Total   int       `json:"total"`
	Page    int       `json:"page"`
	PerPage int       `json:"per_page"`
	Pages   int       `json:"pages"`
	HasNext bool      `json:"has_next"`
	HasPrev bool      `json:"has_prev"`
}

// Pagination describes the position of one page within a result set.
type Pagination struct {
	Page    int
	PerPage int
	Pages   int
	HasNext bool
	HasPrev bool
}

// Paginate computes page metadata. An empty result still has one page.
func Paginate(total, page, perPage int) Pagination {
	page, perPage = NormalizePage(page, perPage)
	pages := 1
	if total > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return Pagination{
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		HasNext: page < pages,
		HasPrev: page > 1,
	}
}

// NormalizePage clamps page and perPage to their allowed ranges.
func NormalizePage(page, perPage int) (int, int) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}

// NewPage assembles a Page from one window of results.
func NewPage(items []Project, total, page, perPage int) Page {
	if items == nil {
		items = []Project{}
	}
	p := Paginate(total, page, perPage)
	return Page{
		Items:   items,
		Total:   total,
		Page:    p.Page,
		PerPage: p.PerPage,
		Pages:   p.Pages,
		HasNext: p.HasNext,
		HasPrev: p.HasPrev,
	}
}

// Offset returns the row offset of a normalized page.
func Offset(page, perPage int) int {
	page, perPage = NormalizePage(page, perPage)
	return (page - 1) * perPage
}
