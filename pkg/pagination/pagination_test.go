package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name      string
		params    *PaginationParams
		wantItems []int
		wantPages int
		wantNext  bool
	}{
		{"first page", &PaginationParams{Page: 1, PerPage: 3}, []int{1, 2, 3}, 3, true},
		{"last partial page", &PaginationParams{Page: 3, PerPage: 3}, []int{7}, 3, false},
		{"past the end", &PaginationParams{Page: 9, PerPage: 3}, []int{}, 3, false},
		{"nil params use defaults", nil, items, 1, false},
		{"invalid values are clamped", &PaginationParams{Page: 0, PerPage: 500}, items, 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Slice(items, tt.params)
			assert.Equal(t, tt.wantItems, result.Items)
			assert.Equal(t, tt.wantPages, result.Pagination.TotalPages)
			assert.Equal(t, tt.wantNext, result.Pagination.HasNext)
			assert.EqualValues(t, len(items), result.Pagination.Total)
		})
	}
}
