package layouts

import (
	"context"
	"net/http"

	"github.com/peterbourgon/mergemap"
)

type contextKey string

const (
	// responseKey is the context key for the request's *Response
	responseKey contextKey = "layouts_response"
)

// Middleware wraps an http.Handler so that every request carries an
// intercepted *Response:
// - Locals start from the data set with WithLocals
// - Renders go through the layout pipeline
// Handlers retrieve it with ResponseFrom.
func (l *Renderer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := ResponseFrom(r)
		if res == nil {
			res = NewResponse(w, r, l.views)
			mergemap.Merge(res.Locals, l.locals)
		}

		res = l.Intercept(res)

		ctx := context.WithValue(r.Context(), responseKey, res)
		r = r.WithContext(ctx)
		res.Request = r

		next.ServeHTTP(w, r)
	})
}

// ResponseFrom returns the *Response stored by Middleware, or nil.
func ResponseFrom(r *http.Request) *Response {
	res, _ := r.Context().Value(responseKey).(*Response)
	return res
}
