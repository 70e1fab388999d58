package middleware

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/bytes"
)

// DefaultBodyLimit caps request bodies when BODY_LIMIT is unset or unreadable.
const DefaultBodyLimit int64 = 1 << 20

// BodyLimit rejects request bodies larger than limit with 413. limit is a
// size such as "512K", "1M" or "1MiB"; a bare number is bytes.
func BodyLimit(limit string) echo.MiddlewareFunc {
	maxBytes := ParseBodyLimit(limit)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			if req.Body == nil || req.Body == http.NoBody {
				return next(c)
			}

			if req.ContentLength > maxBytes {
				return payloadTooLarge(maxBytes)
			}

			// Content-Length can be absent or wrong, so the reader enforces
			// the limit as well. Binders wrap read errors in a 400; the 413
			// is restored here.
			body := &limitedReadCloser{ReadCloser: req.Body, remaining: maxBytes, limit: maxBytes}
			req.Body = body
			err := next(c)
			if body.exceeded && !c.Response().Committed {
				return payloadTooLarge(maxBytes)
			}
			return err
		}
	}
}

type limitedReadCloser struct {
	io.ReadCloser
	remaining int64
	limit     int64
	exceeded  bool
}

func (r *limitedReadCloser) Read(p []byte) (int, error) {
	if r.exceeded {
		return 0, payloadTooLarge(r.limit)
	}

	// Read one byte past the limit to notice overflow.
	if int64(len(p)) > r.remaining+1 {
		p = p[:r.remaining+1]
	}
	n, err := r.ReadCloser.Read(p)
	r.remaining -= int64(n)
	if r.remaining < 0 {
		r.exceeded = true
		return 0, payloadTooLarge(r.limit)
	}
	return n, err
}

func payloadTooLarge(limit int64) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusRequestEntityTooLarge,
		fmt.Sprintf("request body exceeds %s", bytes.Format(limit)))
}

// ParseBodyLimit reads a size string, falling back to DefaultBodyLimit when
// it is empty, malformed or not positive.
func ParseBodyLimit(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultBodyLimit
	}
	n, err := bytes.Parse(s)
	if err != nil || n <= 0 {
		return DefaultBodyLimit
	}
	return n
}
