package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestListQueryNormalize(t *testing.T) {
	cases := []struct {
		name             string
		page, size       int
		wantPage, wantSz int
	}{
		{"defaults", 0, 0, 1, 10},
		{"negative", -3, -1, 1, 10},
		{"in range", 4, 25, 4, 25},
		{"over cap", 2, 500, 2, 100},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := ListQuery{Page: tc.page, Size: tc.size}
			q.Normalize()
			assert.Equal(t, tc.wantPage, q.Page)
			assert.Equal(t, tc.wantSz, q.Size)
			assert.Equal(t, tc.wantSz, q.Limit())
			assert.Equal(t, (tc.wantPage-1)*tc.wantSz, q.Offset())
		})
	}
}

func TestListQueryWhereOwnerOnly(t *testing.T) {
	cond, args := ListQuery{}.where("u1", []string{"name"}, "status", "created_at")
	assert.Equal(t, "user_id = $1", cond)
	assert.Equal(t, []any{"u1"}, args)
}

func TestListQueryWhereAllFilters(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	q := ListQuery{Search: "  Puja ", Status: "PENDING", StartDate: &start, EndDate: &end}

	cond, args := q.where("u1", []string{"name", "description"}, "status", "date")
	assert.Equal(t,
		"user_id = $1 AND (LOWER(name) LIKE $2 OR LOWER(description) LIKE $2) AND status = $3 AND date >= $4 AND date <= $5",
		cond)
	assert.Equal(t, []any{"u1", "%puja%", "PENDING", start, end}, args)
}

func TestListQueryWhereIgnoresInapplicableFilters(t *testing.T) {
	start := time.Now().UTC()
	q := ListQuery{Search: "x", Status: "PAID", StartDate: &start}
	// No status or date column: those filters must not leak into the clause.
	cond, args := q.where("u1", []string{"name"}, "", "")
	assert.Equal(t, "user_id = $1 AND (LOWER(name) LIKE $2)", cond)
	assert.Len(t, args, 2)
}

func TestListQueryPage(t *testing.T) {
	q := ListQuery{Page: 3, Size: 20}
	q.Normalize()
	cond, args := q.page("user_id = $1", []any{"u1"})
	assert.Equal(t, "user_id = $1 ORDER BY created_at ASC LIMIT $2 OFFSET $3", cond)
	assert.Equal(t, []any{"u1", 20, 40}, args)
}
