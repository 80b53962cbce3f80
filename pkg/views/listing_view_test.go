package views

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	tests := []struct {
		name         string
		in           ListQuery
		wantPage     int
		wantPageSize int
	}{
		{"defaults", ListQuery{}, 1, 10},
		{"negative page", ListQuery{Page: -3, PageSize: 20}, 1, 20},
		{"oversized page size capped", ListQuery{Page: 2, PageSize: 5000}, 2, 100},
		{"valid passes through", ListQuery{Page: 7, PageSize: 25}, 7, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.in.Normalize()
			assert.Equal(t, tt.wantPage, tt.in.Page)
			assert.Equal(t, tt.wantPageSize, tt.in.PageSize)
		})
	}
}

func TestListQueryOffset(t *testing.T) {
	q := ListQuery{Page: 3, PageSize: 25}
	assert.Equal(t, 50, q.Offset())
}

func TestListQuerySortOrder(t *testing.T) {
	assert.Equal(t, "ASC", ListQuery{Filter: "oldest"}.SortOrder())
	assert.Equal(t, "DESC", ListQuery{Filter: "newest"}.SortOrder())
	assert.Equal(t, "DESC", ListQuery{}.SortOrder())
}

func TestListQueryLikePattern(t *testing.T) {
	assert.Equal(t, "%laptop%", ListQuery{SearchQuery: "laptop"}.LikePattern())
	assert.Equal(t, `%50\% off\_now%`, ListQuery{SearchQuery: "50% off_now"}.LikePattern())
	assert.Equal(t, `%a\\b%`, ListQuery{SearchQuery: `a\b`}.LikePattern())
}
