package feed

import (
	"math"
	"strconv"
	"strings"

	"github.com/projectbuddy/projectbuddy/internal/models"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Page is a 1-indexed page request. Construct it with NewPage or ParsePage so
// the bounds hold.
type Page struct {
	Page  int
	Limit int
}

// NewPage clamps page to >= 1 and limit to [1, MaxLimit].
func NewPage(page, limit int) Page {
	if page < 1 {
		page = 1
	}

	if limit < 1 {
		limit = 1
	}

	if limit > MaxLimit {
		limit = MaxLimit
	}

	return Page{Page: page, Limit: limit}
}

// ParsePage reads query-string values. Missing or malformed values fall back
// to the defaults instead of failing the request.
func ParsePage(page, limit string) Page {
	p, err := strconv.Atoi(strings.TrimSpace(page))
	if err != nil {
		p = 1
	}

	l, err := strconv.Atoi(strings.TrimSpace(limit))
	if err != nil {
		l = DefaultLimit
	}

	return NewPage(p, l)
}

func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p Page) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(p.Limit)))
}

// Result is one page of posts plus the total number of qualifying rows.
type Result struct {
	Items []models.Post
	Total int64
}
