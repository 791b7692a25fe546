// Package posts provides the remote content source of the latest posts block.
package posts

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidQuery is returned for unsupported query parameters
var ErrInvalidQuery = errors.New("invalid posts query")

// Post summary
type Post struct {
	ID      int64     `json:"id"`
	Title   string    `json:"title"`
	Link    string    `json:"link"`
	DateGMT time.Time `json:"date_gmt"`
}

// Query for the latest posts
type Query struct {
	PostsToShow int
	// Order is asc or desc
	Order string
	// OrderBy is date or title
	OrderBy string
	// Categories is a comma separated list of category ids, empty means all
	Categories string
}

// Source of posts
type Source interface {
	Latest(ctx context.Context, q Query) ([]Post, error)
}

// SourceFunc adapts a function to Source
type SourceFunc func(ctx context.Context, q Query) ([]Post, error)

func (f SourceFunc) Latest(ctx context.Context, q Query) ([]Post, error) {
	return f(ctx, q)
}

// CategoryIDs parses Categories
func (q Query) CategoryIDs() ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(q.Categories, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q", ErrInvalidQuery, part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (q Query) validate() error {
	if q.PostsToShow < 1 {
		return fmt.Errorf("%w: posts to show must be positive, got %d", ErrInvalidQuery, q.PostsToShow)
	}
	switch q.Order {
	case "asc", "desc":
	default:
		return fmt.Errorf("%w: order %q", ErrInvalidQuery, q.Order)
	}
	switch q.OrderBy {
	case "date", "title":
	default:
		return fmt.Errorf("%w: order by %q", ErrInvalidQuery, q.OrderBy)
	}
	return nil
}
