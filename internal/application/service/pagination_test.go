package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPageRequest(t *testing.T) {
	tests := []struct {
		name      string
		page      int
		limit     int
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults", 0, 0, 1, 5, 0},
		{"first page", 1, 5, 1, 5, 0},
		{"third page", 3, 5, 3, 5, 10},
		{"custom limit", 2, 20, 2, 20, 20},
		{"negative page", -4, 10, 1, 10, 0},
		{"negative limit", 2, -1, 2, 5, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPageRequest(tt.page, tt.limit)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantSkip, p.Skip())
		})
	}
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 3, TotalPages(12, 5))
	assert.Equal(t, 2, TotalPages(10, 5))
	assert.Equal(t, 1, TotalPages(1, 5))
	assert.Equal(t, 0, TotalPages(0, 5))
}
