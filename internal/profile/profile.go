// Package profile carries the current profile identity through a request.
// There is no real authentication yet: the identity comes from the
// X-Profile-ID header when the caller sets one, otherwise from the
// configured default profile. Everything downstream reads the identity
// from the request context, so swapping in a session-based auth layer
// later only replaces this middleware.
package profile

import (
	"context"

	"github.com/labstack/echo/v4"
)

// ctxKey is the unexported context key type for the profile ID.
type ctxKey struct{}

// HeaderName is the request header that overrides the default profile.
const HeaderName = "X-Profile-ID"

// Middleware returns Echo middleware that resolves the profile ID for the
// request and stores it in the request context. defaultID must be non-empty.
func Middleware(defaultID string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id := c.Request().Header.Get(HeaderName)
			if id == "" {
				id = defaultID
			}

			ctx := WithID(c.Request().Context(), id)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// WithID returns a context carrying the given profile ID.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the profile ID stored in the context, or "" if the
// middleware did not run.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
