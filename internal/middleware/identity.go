package middleware

// identity.go holds helpers shared by the middleware in this package
// for reading the authenticated principal out of the Echo context.

import (
	"fmt"

	"github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user as a stable string for
// use in rate-limit keys.  JWTAuth stores the raw "sub" claim, which
// decodes as a string or a float64 depending on how the token was
// issued.  Unauthenticated requests map to "anon".
func currentUserID(c echo.Context) string {
	switch v := c.Get("user_id").(type) {
	case string:
		if v != "" {
			return v
		}
	case float64:
		return fmt.Sprintf("%.0f", v)
	}
	return "anon"
}
