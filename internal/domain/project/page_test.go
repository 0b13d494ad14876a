package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		page    int
		perPage int
		want    Pagination
	}{
		{
			name: "empty result has one page",
			page: 1, perPage: 10,
			want: Pagination{Page: 1, PerPage: 10, Pages: 1},
		},
		{
			name:  "exact multiple",
			total: 20, page: 1, perPage: 10,
			want: Pagination{Page: 1, PerPage: 10, Pages: 2, HasNext: true},
		},
		{
			name:  "partial last page",
			total: 21, page: 3, perPage: 10,
			want: Pagination{Page: 3, PerPage: 10, Pages: 3, HasPrev: true},
		},
		{
			name:  "middle page",
			total: 30, page: 2, perPage: 10,
			want: Pagination{Page: 2, PerPage: 10, Pages: 3, HasNext: true, HasPrev: true},
		},
		{
			name:  "per page clamped to max",
			total: 120, page: 1, perPage: 500,
			want: Pagination{Page: 1, PerPage: MaxPerPage, Pages: 3, HasNext: true},
		},
		{
			name:  "zero inputs use defaults",
			total: 5,
			want:  Pagination{Page: 1, PerPage: DefaultPerPage, Pages: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Paginate(tt.total, tt.page, tt.perPage))
		})
	}
}

func TestNewPageNeverReturnsNilItems(t *testing.T) {
	page := NewPage(nil, 0, 1, 10)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.Pages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrev)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, 0, Offset(-4, 10))
}
