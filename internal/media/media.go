// Package media stores user-uploaded images on a media host and returns
// their public URLs.
package media

import (
	"context"
	"fmt"
	"io"
	"strings"

	"snapgram/internal/config"
)

// Object is one file to upload.
type Object struct {
	Key         string
	ContentType string
	Body        io.Reader
	Size        int64
}

// Uploader is a media host.
type Uploader interface {
	// Upload stores obj and returns its public URL.
	Upload(ctx context.Context, obj Object) (string, error)
	// Destroy removes key. Missing objects are not an error.
	Destroy(ctx context.Context, key string) error
}

// FormatForMIME maps an image MIME type to the stored file extension.
// Unknown types are stored as jpg.
func FormatForMIME(mime string) string {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}
	switch mime {
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	default:
		return "jpg"
	}
}

// ProfilePictureKey is where a user's profile picture lives.
func ProfilePictureKey(userID, mime string) string {
	return fmt.Sprintf("profile_pictures/%s.%s", userID, FormatForMIME(mime))
}

// PostMediaKey is where a post's media lives.
func PostMediaKey(userID, postID, mime string) string {
	return fmt.Sprintf("user_posts/%s/%s.%s", userID, postID, FormatForMIME(mime))
}

// New builds the media host selected by cfg.MediaDriver, wrapped with
// metrics and tracing.
func New(ctx context.Context, cfg *config.Config) (Uploader, error) {
	var (
		up  Uploader
		err error
	)
	switch cfg.MediaDriver {
	case config.MediaS3:
		up, err = NewS3Store(ctx, S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			PublicURL: cfg.MediaPublicURL,
		})
	case config.MediaLocal, "":
		up, err = NewLocalStore(cfg.MediaLocalDir, cfg.MediaPublicURL)
	default:
		err = fmt.Errorf("unsupported media driver %q", cfg.MediaDriver)
	}
	if err != nil {
		return nil, err
	}
	return Instrument(up), nil
}
