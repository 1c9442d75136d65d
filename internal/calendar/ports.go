// Package calendar defines the outbound port for the content calendar
// that published posts are recorded on.
package calendar

import (
	"context"

	"cardgenius/internal/core"
)

// Writer records a published post on the content calendar.
type Writer interface {
	// AppendPublished adds one row for the post and returns a reference
	// to where it landed.
	AppendPublished(ctx context.Context, post core.Post) (ref string, err error)
}
