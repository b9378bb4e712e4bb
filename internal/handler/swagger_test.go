package handler

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/swaggo/swag"
)

const sampleSwagger2 = `{
  "swagger": "2.0",
  "info": {"title": "Spendwise API", "version": "1.0"},
  "paths": {
    "/budgets": {
      "post": {
        "tags": ["budgets"],
        "parameters": [
          {"in": "body", "name": "request", "required": true, "description": "Budget", "schema": {"$ref": "#/definitions/handler.SetBudgetRequest"}}
        ],
        "responses": {
          "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.BudgetResponse"}},
          "400": {"schema": {"$ref": "#/definitions/handler.ProblemDetails"}}
        }
      }
    },
    "/reports/timeseries": {
      "get": {
        "produces": ["application/json"],
        "parameters": [
          {"in": "query", "name": "bucket", "type": "string", "enum": ["daily", "weekly"], "default": "daily"}
        ],
        "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/handler.PeriodTotalResponse"}}}}
      }
    },
    "/expenses/{id}/receipt": {
      "post": {
        "consumes": ["multipart/form-data"],
        "parameters": [
          {"in": "path", "name": "id", "type": "integer", "required": true},
          {"in": "formData", "name": "file", "type": "file", "required": true}
        ],
        "responses": {"200": {"description": "OK"}}
      }
    }
  },
  "definitions": {
    "handler.BudgetResponse": {"type": "object", "properties": {"category": {"$ref": "#/definitions/handler.CategoryResponse"}}}
  },
  "securityDefinitions": {"BearerAuth": {"type": "apiKey", "in": "header", "name": "Authorization"}}
}`

func lookup(t *testing.T, node any, keys ...string) any {
	t.Helper()
	for _, k := range keys {
		m, ok := node.(map[string]any)
		require.Truef(t, ok, "expected object before key %q", k)
		node, ok = m[k]
		require.Truef(t, ok, "missing key %q", k)
	}
	return node
}

func TestConvertSwagger2(t *testing.T) {
	spec, err := convertSwagger2([]byte(sampleSwagger2), apiServers)
	require.NoError(t, err)

	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "Spendwise API", spec.Info["title"])
	assert.Len(t, spec.Servers, 2)
	assert.Contains(t, spec.Components, "securitySchemes")

	t.Run("body parameter becomes requestBody", func(t *testing.T) {
		post := lookup(t, spec.Paths, "/budgets", "post")
		assert.NotContains(t, post, "parameters")
		assert.Equal(t, true, lookup(t, post, "requestBody", "required"))
		assert.Equal(t, "#/components/schemas/handler.SetBudgetRequest",
			lookup(t, post, "requestBody", "content", "application/json", "schema", "$ref"))
		assert.Equal(t, []any{"budgets"}, lookup(t, post, "tags"))
	})

	t.Run("response schema moves under content", func(t *testing.T) {
		post := lookup(t, spec.Paths, "/budgets", "post")
		assert.Equal(t, "#/components/schemas/handler.BudgetResponse",
			lookup(t, post, "responses", "201", "content", "application/json", "schema", "$ref"))
		assert.Equal(t, "Bad Request", lookup(t, post, "responses", "400", "description"))
	})

	t.Run("query parameter gets a schema", func(t *testing.T) {
		params := lookup(t, spec.Paths, "/reports/timeseries", "get", "parameters").([]any)
		require.Len(t, params, 1)
		p := params[0].(map[string]any)
		assert.Equal(t, "bucket", p["name"])
		assert.Equal(t, "daily", lookup(t, p, "schema", "default"))
		assert.NotContains(t, p, "type")
	})

	t.Run("formData file becomes multipart body", func(t *testing.T) {
		post := lookup(t, spec.Paths, "/expenses/{id}/receipt", "post")
		assert.Len(t, lookup(t, post, "parameters").([]any), 1)
		assert.Equal(t, "binary", lookup(t, post, "requestBody", "content", "multipart/form-data", "schema", "properties", "file", "format"))
		assert.Equal(t, []any{"file"}, lookup(t, post, "requestBody", "content", "multipart/form-data", "schema", "required"))
	})

	t.Run("refs inside definitions are rewritten", func(t *testing.T) {
		assert.Equal(t, "#/components/schemas/handler.CategoryResponse",
			lookup(t, spec.Components, "schemas", "handler.BudgetResponse", "properties", "category", "$ref"))
	})
}

func TestConvertSwagger2_InvalidJSON(t *testing.T) {
	_, err := convertSwagger2([]byte("{"), apiServers)
	assert.Error(t, err)
}

func TestServeOpenAPI3Spec(t *testing.T) {
	c, rec := newRequest(newTestEcho(), http.MethodGet, "/openapi.json", "")
	require.NoError(t, ServeOpenAPI3Spec(c))
	expectStatus(t, rec, http.StatusOK)

	var spec OpenAPI3Spec
	decodeBody(t, rec, &spec)
	assert.Equal(t, "3.0.3", spec.OpenAPI)
	assert.Equal(t, "Spendwise API", spec.Info["title"])
	assert.Contains(t, spec.Components, "securitySchemes")
}

var pathParam = regexp.MustCompile(`:(\w+)`)

// every API route registered on the router has a documented operation and
// the document lists nothing the router does not serve
func TestSwaggerDocumentsEveryRoute(t *testing.T) {
	e := echo.New()
	limiter := middleware.NewRateLimiter(middleware.Quota{PerMinute: 1, Burst: 1})
	defer limiter.Stop()
	RegisterRoutes(e, middleware.NewAuthMiddlewareWithValidator(nil, nil), limiter, Handlers{})

	registered := map[string]bool{}
	for _, r := range e.Routes() {
		if !strings.HasPrefix(r.Path, "/api/v1/") || !strings.Contains(r.Name, "/internal/handler.(*") {
			continue
		}
		path := pathParam.ReplaceAllString(strings.TrimPrefix(r.Path, "/api/v1"), "{$1}")
		registered[strings.ToLower(r.Method)+" "+path] = true
	}
	require.NotEmpty(t, registered)

	raw, err := swag.ReadDoc()
	require.NoError(t, err)
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(raw), &doc))

	documented := map[string]bool{}
	for path, ops := range doc.Paths {
		for method := range ops {
			documented[method+" "+path] = true
		}
	}
	assert.Equal(t, registered, documented)
}

func TestServeOpenAPI3Spec_ListsOperations(t *testing.T) {
	c, rec := newRequest(newTestEcho(), http.MethodGet, "/openapi.json", "")
	require.NoError(t, ServeOpenAPI3Spec(c))

	var spec OpenAPI3Spec
	decodeBody(t, rec, &spec)
	require.NotEmpty(t, spec.Paths)
	assert.Equal(t, "#/components/schemas/handler.CategoryResponse",
		lookup(t, spec.Paths, "/categories", "post", "responses", "201", "content", "application/json", "schema", "$ref"))
	assert.Contains(t, lookup(t, spec.Components, "schemas"), "handler.ProblemDetails")
}
