package server

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"snapgram/internal/models"
	"snapgram/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
)

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}

// bind decodes a JSON, urlencoded or multipart body into dst. Pointer fields
// stay nil when the client did not send the key. An empty body is not an error.
func bind(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return models.NewBadRequestError("Invalid request body")
	}
	return nil
}

// formUpload opens the multipart file sent as field. It returns nil when the
// request carries no such file. The caller must close the returned closer.
func formUpload(c *fiber.Ctx, field string) (*service.Upload, io.Closer, error) {
	if !isMultipart(c) {
		return nil, nil, nil
	}
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, fasthttp.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, models.NewBadRequestError("Invalid " + field + " upload")
	}
	return openUpload(fh)
}

func openUpload(fh *multipart.FileHeader) (*service.Upload, io.Closer, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, nil, models.NewInternalError(err)
	}
	return &service.Upload{
		ContentType: fh.Header.Get(fiber.HeaderContentType),
		Size:        fh.Size,
		Body:        f,
	}, f, nil
}

func closeQuietly(c io.Closer) {
	if c != nil {
		_ = c.Close()
	}
}

// formList reads a list-valued multipart field. Repeated keys and a JSON
// array are accepted; with splitComma a single comma-separated string is too.
// ok is false when the field was not sent.
func formList(c *fiber.Ctx, field string, splitComma bool) (values []string, ok bool) {
	if !isMultipart(c) {
		return nil, false
	}
	form, err := c.MultipartForm()
	if err != nil {
		return nil, false
	}
	raw, ok := form.Value[field]
	if !ok {
		raw, ok = form.Value[field+"[]"]
	}
	if !ok {
		return nil, false
	}
	return splitList(raw, splitComma), true
}

func splitList(raw []string, splitComma bool) []string {
	out := []string{}
	if len(raw) == 1 {
		v := strings.TrimSpace(raw[0])
		if strings.HasPrefix(v, "[") {
			var arr []string
			if err := json.Unmarshal([]byte(v), &arr); err == nil {
				return arr
			}
		}
		if v == "" {
			return out
		}
		if !splitComma {
			return append(out, raw[0])
		}
		for _, part := range strings.Split(v, ",") {
			out = append(out, strings.TrimSpace(part))
		}
		return out
	}
	return append(out, raw...)
}
