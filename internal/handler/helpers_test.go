package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

var testOwner = domain.Owner{UserID: uuid.New(), WorkspaceID: 1, Role: domain.RoleUser}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

// newRequest builds a context for method and target. A non-empty body is sent as JSON.
func newRequest(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// newOwnerRequest is newRequest with owner attached, as Authenticate would
func newOwnerRequest(e *echo.Echo, owner domain.Owner, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	c, rec := newRequest(e, method, target, body)
	middleware.WithOwner(c, owner)
	return c, rec
}

func setParam(c echo.Context, name, value string) {
	c.SetParamNames(name)
	c.SetParamValues(value)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("Failed to unmarshal response %q: %v", rec.Body.String(), err)
	}
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("Expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func expectProblem(t *testing.T, rec *httptest.ResponseRecorder, status int, errorType string) ProblemDetails {
	t.Helper()
	expectStatus(t, rec, status)
	var problem ProblemDetails
	decodeBody(t, rec, &problem)
	if problem.Type != errorType {
		t.Errorf("Expected error type %s, got %s", errorType, problem.Type)
	}
	return problem
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func int32Ptr(v int32) *int32 { return &v }

func stringPtr(s string) *string { return &s }
