// Package listing builds bounded, filtered listings: it turns page/limit
// query parameters and optional equality filters into a store query and
// wraps the result with pagination metadata.
package listing

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

const (
	QueryParamPage  = "page"
	QueryParamLimit = "limit"

	MinPage  = 1
	MinLimit = 1
	MaxLimit = 100
)

var (
	ErrInvalidPage  = errors.New("page must be a positive integer")
	ErrInvalidLimit = errors.New("limit must be between 1 and 100")
)

// Source is the part of a collection a listing needs.
type Source interface {
	Find(ctx context.Context, filter bson.M, skip, limit int64) ([]bson.M, error)
	CountDocuments(ctx context.Context, filter bson.M) (int64, error)
}

// Field is an optional equality filter taken from a query parameter.
type Field struct {
	Param  string // query parameter name
	Column string // document field; defaults to Param

	// Normalize is applied to the raw value before matching.
	Normalize func(string) string
	// Allowed restricts values. A value outside the set matches nothing.
	Allowed []string
}

func (f Field) column() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Param
}

// Spec describes one listing call site.
type Spec struct {
	DefaultLimit int64
	Fields       []Field
}

// Query is a normalized listing request.
type Query struct {
	Filter bson.M
	Page   int64
	Limit  int64
	// NoMatch is set when a filter value can never match.
	NoMatch bool
}

// Skip is the number of matching documents before the requested page.
func (q Query) Skip() int64 {
	return (q.Page - 1) * q.Limit
}

// Envelope is the paginated result.
type Envelope struct {
	Items       []bson.M `json:"items"`
	Total       int64    `json:"total"`
	TotalPages  int64    `json:"totalPages"`
	CurrentPage int64    `json:"currentPage"`
}

// TotalPages is ceil(total/limit). limit must be positive.
func TotalPages(total, limit int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// Build parses page and limit from values and composes the filter from
// fixed (always applied) and the optional Fields. Empty values are
// skipped.
func (s Spec) Build(values url.Values, fixed bson.M) (Query, error) {
	page, err := parsePositive(values.Get(QueryParamPage), MinPage)
	if err != nil || page < MinPage {
		return Query{}, ErrInvalidPage
	}
	limit, err := parsePositive(values.Get(QueryParamLimit), s.defaultLimit())
	if err != nil || limit < MinLimit || limit > MaxLimit {
		return Query{}, ErrInvalidLimit
	}
	// (page-1)*limit must fit in an int64.
	if page-1 > math.MaxInt64/limit {
		return Query{}, ErrInvalidPage
	}

	q := Query{Filter: bson.M{}, Page: page, Limit: limit}
	for k, v := range fixed {
		q.Filter[k] = v
	}
	for _, f := range s.Fields {
		raw := strings.TrimSpace(values.Get(f.Param))
		if raw == "" {
			continue
		}
		if f.Normalize != nil {
			raw = f.Normalize(raw)
		}
		if len(f.Allowed) > 0 && !contains(f.Allowed, raw) {
			q.NoMatch = true
		}
		q.Filter[f.column()] = raw
	}
	return q, nil
}

func (s Spec) defaultLimit() int64 {
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return 10
}

// Run executes q against src: one count over the whole filter and one
// bounded find for the page.
func Run(ctx context.Context, src Source, q Query) (Envelope, error) {
	if q.Page < MinPage {
		return Envelope{}, ErrInvalidPage
	}
	if q.Limit < MinLimit {
		return Envelope{}, ErrInvalidLimit
	}
	if q.Page-1 > math.MaxInt64/q.Limit {
		return Envelope{}, ErrInvalidPage
	}

	env := Envelope{Items: []bson.M{}, CurrentPage: q.Page}
	if q.NoMatch {
		return env, nil
	}

	total, err := src.CountDocuments(ctx, q.Filter)
	if err != nil {
		return Envelope{}, fmt.Errorf("count: %w", err)
	}
	env.Total = total
	env.TotalPages = TotalPages(total, q.Limit)

	if q.Skip() >= total {
		return env, nil
	}
	items, err := src.Find(ctx, q.Filter, q.Skip(), q.Limit)
	if err != nil {
		return Envelope{}, fmt.Errorf("find: %w", err)
	}
	if items != nil {
		env.Items = items
	}
	return env, nil
}

func parsePositive(raw string, def int64) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
