package params

import (
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	maxSearchLen = 100
)

// Pagination is parsed from ?page=&limit= and completed by ComputeMeta once
// the store has reported the total row count.
type Pagination struct {
	Limit      int  `json:"limit"`
	Offset     int  `json:"-"`
	Page       int  `json:"page"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ParsePagination never fails; junk values fall back to the defaults.
func ParsePagination(q url.Values) Pagination {
	p := Pagination{Limit: DefaultLimit, Page: 1}

	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if limit, err := strconv.Atoi(s); err == nil && limit > 0 {
			p.Limit = min(limit, MaxLimit)
		}
	}
	if s := strings.TrimSpace(q.Get("page")); s != "" {
		if page, err := strconv.Atoi(s); err == nil && page > 0 {
			p.Page = page
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

func (p *Pagination) ComputeMeta(total int) {
	p.Total = total
	if p.Limit > 0 {
		p.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	p.HasPrev = p.Page > 1
	p.HasNext = p.Page*p.Limit < total
}

// Search returns the trimmed ?search= term, cut to a sane length.
func Search(q url.Values) string {
	s := strings.TrimSpace(q.Get("search"))
	if len(s) > maxSearchLen {
		s = s[:maxSearchLen]
	}
	return s
}

// String returns nil when key is absent or blank.
func String(q url.Values, key string) *string {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil
	}
	return &s
}

// Int64 returns nil when key is absent, and an error when it is not a
// positive integer.
func Int64(q url.Values, key string) (*int64, error) {
	s := strings.TrimSpace(q.Get(key))
	if s == "" {
		return nil, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return nil, fmt.Errorf("%s must be a positive integer", key)
	}
	return &n, nil
}
