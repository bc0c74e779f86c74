// Package service holds the business rules between HTTP handlers and stores.
package service

import (
	"context"
	"io"
	"log/slog"

	"snapgram/internal/media"
	"snapgram/internal/middleware"
	"snapgram/internal/models"
)

// Upload is a file received with a request.
type Upload struct {
	ContentType string
	Size        int64
	Body        io.Reader
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, hash string) bool
}

func uploadObject(ctx context.Context, up media.Uploader, key string, file *Upload) (string, error) {
	url, err := up.Upload(ctx, media.Object{
		Key:         key,
		ContentType: file.ContentType,
		Body:        file.Body,
		Size:        file.Size,
	})
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return url, nil
}

// destroyQuietly removes key from the media host. Failures are logged and
// never fail the calling operation.
func destroyQuietly(ctx context.Context, up media.Uploader, key string) {
	if key == "" {
		return
	}
	if err := up.Destroy(ctx, key); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to destroy media",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

func derefOr(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}
