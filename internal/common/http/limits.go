package http

import (
	"io"
	"net/http"

	"github.com/AlibekovAA/gym-api/internal/common/constants"
)

type maxBytesReader struct {
	reader io.ReadCloser
	limit  int64
	read   int64
}

// Read never hands out bytes past the limit, so a decoder cannot complete a
// value from an oversized body.
func (r *maxBytesReader) Read(p []byte) (n int, err error) {
	if r.read >= r.limit {
		return 0, errRequestTooLarge
	}
	if remaining := r.limit - r.read; int64(len(p)) > remaining+1 {
		p = p[:remaining+1]
	}
	n, err = r.reader.Read(p)
	r.read += int64(n)
	if r.read > r.limit {
		over := r.read - r.limit
		r.read = r.limit
		return n - int(over), errRequestTooLarge
	}
	return n, err
}

func (r *maxBytesReader) Close() error {
	return r.reader.Close()
}

func MaxRequestSizeMiddleware(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = constants.DefaultMaxRequestSize
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, CodeRequestTooLarge, "request body too large", nil, TraceIDFromContext(r.Context()))
				return
			}

			r.Body = &maxBytesReader{
				reader: r.Body,
				limit:  maxBytes,
			}

			next.ServeHTTP(w, r)
		})
	}
}
