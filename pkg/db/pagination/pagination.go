package pagination

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query is the list query contract shared by every collection endpoint.
type Query struct {
	Page       int    `form:"page" json:"page" binding:"omitempty,gte=1"`
	Limit      int    `form:"limit" json:"limit" binding:"omitempty,gte=1,lte=100"`
	SortBy     string `form:"sort_by" json:"sort_by"`
	SortOrder  string `form:"sort_order" json:"sort_order" binding:"omitempty,sort_order"`
	SearchTerm string `form:"search_term" json:"search_term"`
}

type Meta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// Normalize applies defaults and restricts SortBy to the allowed columns;
// an unknown column falls back to defaultSort.
func (q Query) Normalize(allowedSort map[string]string, defaultSort string) Query {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit < 1 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	sortBy := strings.TrimSpace(q.SortBy)
	column, ok := allowedSort[sortBy]
	if !ok {
		column = defaultSort
	}
	q.SortBy = column

	switch strings.ToLower(strings.TrimSpace(q.SortOrder)) {
	case "asc":
		q.SortOrder = "asc"
	default:
		q.SortOrder = "desc"
	}
	q.SearchTerm = strings.TrimSpace(q.SearchTerm)
	return q
}

func (q Query) Offset() int {
	if q.Page < 1 {
		return 0
	}
	return (q.Page - 1) * q.Limit
}

func (q Query) Meta(total int64) Meta {
	return Meta{Page: q.Page, Limit: q.Limit, Total: total}
}

// Like returns the search term wrapped for a case-insensitive LIKE match.
func (q Query) Like() string {
	return "%" + strings.ToLower(q.SearchTerm) + "%"
}

// Apply adds ordering and paging to an already filtered statement. The
// SortBy column must come from Normalize.
func (q Query) Apply(db *gorm.DB) *gorm.DB {
	if q.SortBy != "" {
		db = db.Order(clause.OrderByColumn{
			Column: clause.Column{Name: q.SortBy},
			Desc:   q.SortOrder != "asc",
		})
	}
	return db.Offset(q.Offset()).Limit(q.Limit)
}
