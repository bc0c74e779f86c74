package media

import (
	"context"

	"snapgram/internal/observability"
)

// Instrumented counts and traces every call to the wrapped host.
type Instrumented struct {
	next Uploader
}

// Instrument wraps up with metrics and tracing.
func Instrument(up Uploader) *Instrumented {
	return &Instrumented{next: up}
}

// Unwrap returns the wrapped host.
func (i *Instrumented) Unwrap() Uploader {
	return i.next
}

func (i *Instrumented) Upload(ctx context.Context, obj Object) (string, error) {
	ctx, end := observability.StartSpan(ctx, "media", "upload")
	url, err := i.next.Upload(ctx, obj)
	end(err)
	observability.RecordMediaOperation("upload", err)
	return url, err
}

func (i *Instrumented) Destroy(ctx context.Context, key string) error {
	ctx, end := observability.StartSpan(ctx, "media", "destroy")
	err := i.next.Destroy(ctx, key)
	end(err)
	observability.RecordMediaOperation("destroy", err)
	return err
}
