package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// problemDetails mirrors handler.ProblemDetails; middleware cannot import handler
type problemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

const problemTypeBase = "https://spendwise.app/errors/"

var problemTitles = map[int]struct{ slug, title string }{
	http.StatusUnauthorized:    {"unauthorized", "Unauthorized"},
	http.StatusForbidden:       {"forbidden", "Forbidden"},
	http.StatusTooManyRequests: {"rate-limit", "Rate Limit Exceeded"},
}

func problem(c echo.Context, status int, detail string) error {
	kind := problemTitles[status]
	return c.JSON(status, problemDetails{
		Type:     problemTypeBase + kind.slug,
		Title:    kind.title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
	})
}

func unauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, detail)
}

func forbiddenError(c echo.Context, detail string) error {
	return problem(c, http.StatusForbidden, detail)
}

func rateLimitedError(c echo.Context, detail string) error {
	return problem(c, http.StatusTooManyRequests, detail)
}
