package repository

import (
	"fmt"
	"strings"
	"time"
)

// List pagination bounds. Out-of-range requests are clamped, never rejected.
const (
	defaultPage = 1
	defaultSize = 10
	maxSize     = 100
)

// ListQuery carries the optional filters accepted by every list endpoint.
// Search is a case-insensitive substring match against the entity's text
// columns. Status applies only to entities with a status column. StartDate
// and EndDate bound a timestamp column inclusively.
type ListQuery struct {
	Search    string
	Status    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Size      int
}

// Normalize substitutes defaults for absent or invalid pagination values:
// page < 1 becomes 1, size outside [1,100] becomes 10 when unset/negative
// and 100 when above the cap.
func (q *ListQuery) Normalize() {
	if q.Page < 1 {
		q.Page = defaultPage
	}
	if q.Size < 1 {
		q.Size = defaultSize
	}
	if q.Size > maxSize {
		q.Size = maxSize
	}
}

// Limit returns the normalized page size.
func (q ListQuery) Limit() int { return q.Size }

// Offset returns the row offset for the normalized page.
func (q ListQuery) Offset() int { return (q.Page - 1) * q.Size }

// where builds a conjunctive WHERE clause scoped to the owner. searchCols are
// the text columns the free-text filter matches against; statusCol and
// dateCol may be empty for entities without those columns. It returns the
// condition (without the WHERE keyword) and the ordered argument list; the
// next placeholder index continues from len(args)+1.
func (q ListQuery) where(ownerID string, searchCols []string, statusCol, dateCol string) (string, []any) {
	conds := []string{"user_id = $1"}
	args := []any{ownerID}
	if s := strings.TrimSpace(q.Search); s != "" && len(searchCols) > 0 {
		args = append(args, "%"+strings.ToLower(s)+"%")
		n := len(args)
		parts := make([]string, 0, len(searchCols))
		for _, col := range searchCols {
			parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE $%d", col, n))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}
	if q.Status != "" && statusCol != "" {
		args = append(args, q.Status)
		conds = append(conds, fmt.Sprintf("%s = $%d", statusCol, len(args)))
	}
	if dateCol != "" {
		if q.StartDate != nil {
			args = append(args, q.StartDate.UTC())
			conds = append(conds, fmt.Sprintf("%s >= $%d", dateCol, len(args)))
		}
		if q.EndDate != nil {
			args = append(args, q.EndDate.UTC())
			conds = append(conds, fmt.Sprintf("%s <= $%d", dateCol, len(args)))
		}
	}
	return strings.Join(conds, " AND "), args
}

// page appends the ORDER BY / LIMIT / OFFSET tail shared by all list queries.
// Rows always come back in creation order.
func (q ListQuery) page(cond string, args []any) (string, []any) {
	tail := fmt.Sprintf(" ORDER BY created_at ASC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	return cond + tail, append(args, q.Limit(), q.Offset())
}
