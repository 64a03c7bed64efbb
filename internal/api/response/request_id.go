package response

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RequestID returns the id assigned by the RequestID middleware, if any
func RequestID(r *http.Request) string {
	return middleware.GetReqID(r.Context())
}
