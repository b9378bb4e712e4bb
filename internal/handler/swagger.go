package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/dafibh/spendwise/spendwise-backend/docs"
	"github.com/labstack/echo/v4"
	"github.com/swaggo/swag"
)

// OpenAPI3Spec is the OpenAPI 3.0 rendering of the swag-generated document
type OpenAPI3Spec struct {
	OpenAPI    string         `json:"openapi"`
	Info       map[string]any `json:"info"`
	Servers    []Server       `json:"servers"`
	Paths      map[string]any `json:"paths"`
	Components map[string]any `json:"components,omitempty"`
}

// Server is an OpenAPI 3.0 server entry
type Server struct {
	URL         string `json:"url"`
	Description string `json:"description"`
}

var apiServers = []Server{
	{URL: "http://localhost:8080/api/v1", Description: "Local Development"},
	{URL: "https://api.spendwise.app/api/v1", Description: "Production"},
}

// schema keywords a Swagger 2.0 non-body parameter carries inline
var paramSchemaKeys = []string{"type", "format", "enum", "default", "minimum", "maximum", "items", "maxLength", "minLength"}

const swaggerRefPrefix = "#/definitions/"

func rewriteRefs(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			if ref, ok := val.(string); ok && k == "$ref" {
				out[k] = "#/components/schemas/" + strings.TrimPrefix(ref, swaggerRefPrefix)
				continue
			}
			out[k] = rewriteRefs(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = rewriteRefs(val)
		}
		return out
	default:
		return node
	}
}

func stringList(v any, fallback []string) []string {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return fallback
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func contentFor(mimes []string, schema any) map[string]any {
	content := make(map[string]any, len(mimes))
	for _, mime := range mimes {
		content[mime] = map[string]any{"schema": schema}
	}
	return content
}

// convertOperation rewrites one Swagger 2.0 operation. Body and formData
// parameters become a requestBody; response schemas move under content.
func convertOperation(op map[string]any, consumes, produces []string) map[string]any {
	out := make(map[string]any, len(op))
	for k, v := range op {
		switch k {
		case "parameters", "responses", "consumes", "produces":
		default:
			out[k] = rewriteRefs(v)
		}
	}
	consumes = stringList(op["consumes"], consumes)
	produces = stringList(op["produces"], produces)

	var params []any
	formProps := map[string]any{}
	var formRequired []any
	for _, raw := range asSlice(op["parameters"]) {
		p, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		switch p["in"] {
		case "body":
			body := map[string]any{"content": contentFor(consumes, rewriteRefs(p["schema"]))}
			if desc, ok := p["description"]; ok {
				body["description"] = desc
			}
			if req, ok := p["required"]; ok {
				body["required"] = req
			}
			out["requestBody"] = body
		case "formData":
			name, _ := p["name"].(string)
			prop := map[string]any{"type": p["type"]}
			if p["type"] == "file" {
				prop = map[string]any{"type": "string", "format": "binary"}
			}
			formProps[name] = prop
			if req, _ := p["required"].(bool); req {
				formRequired = append(formRequired, name)
			}
		default:
			params = append(params, convertParameter(p))
		}
	}
	if len(formProps) > 0 {
		schema := map[string]any{"type": "object", "properties": formProps}
		if len(formRequired) > 0 {
			schema["required"] = formRequired
		}
		out["requestBody"] = map[string]any{
			"required": len(formRequired) > 0,
			"content":  map[string]any{"multipart/form-data": map[string]any{"schema": schema}},
		}
	}
	if len(params) > 0 {
		out["parameters"] = params
	}

	if responses, ok := op["responses"].(map[string]any); ok {
		converted := make(map[string]any, len(responses))
		for code, raw := range responses {
			resp, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			r := map[string]any{"description": resp["description"]}
			if r["description"] == nil {
				status, _ := strconv.Atoi(code)
				r["description"] = http.StatusText(status)
			}
			if schema, ok := resp["schema"]; ok {
				r["content"] = contentFor(produces, rewriteRefs(schema))
			}
			converted[code] = r
		}
		out["responses"] = converted
	}
	return out
}

func convertParameter(p map[string]any) map[string]any {
	out := make(map[string]any, 5)
	for _, k := range []string{"name", "in", "description", "required"} {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	schema := make(map[string]any)
	for _, k := range paramSchemaKeys {
		if v, ok := p[k]; ok {
			schema[k] = rewriteRefs(v)
		}
	}
	if len(schema) > 0 {
		out["schema"] = schema
	}
	return out
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

// convertSwagger2 renders a Swagger 2.0 document as OpenAPI 3.0
func convertSwagger2(doc []byte, servers []Server) (*OpenAPI3Spec, error) {
	var swagger2 map[string]any
	if err := json.Unmarshal(doc, &swagger2); err != nil {
		return nil, err
	}

	consumes := stringList(swagger2["consumes"], []string{echo.MIMEApplicationJSON})
	produces := stringList(swagger2["produces"], []string{echo.MIMEApplicationJSON})

	paths := make(map[string]any)
	if rawPaths, ok := swagger2["paths"].(map[string]any); ok {
		for path, rawItem := range rawPaths {
			item, ok := rawItem.(map[string]any)
			if !ok {
				continue
			}
			converted := make(map[string]any, len(item))
			for method, rawOp := range item {
				if op, ok := rawOp.(map[string]any); ok {
					converted[method] = convertOperation(op, consumes, produces)
				} else {
					converted[method] = rawOp
				}
			}
			paths[path] = converted
		}
	}

	components := make(map[string]any)
	if sec, ok := swagger2["securityDefinitions"].(map[string]any); ok {
		components["securitySchemes"] = sec
	}
	if defs, ok := swagger2["definitions"].(map[string]any); ok {
		components["schemas"] = rewriteRefs(defs)
	}

	info, _ := swagger2["info"].(map[string]any)
	return &OpenAPI3Spec{
		OpenAPI:    "3.0.3",
		Info:       info,
		Servers:    servers,
		Paths:      paths,
		Components: components,
	}, nil
}

var openAPI3 struct {
	once sync.Once
	spec *OpenAPI3Spec
	err  error
}

// ServeOpenAPI3Spec serves GET /openapi.json. The document is converted once.
func ServeOpenAPI3Spec(c echo.Context) error {
	openAPI3.once.Do(func() {
		doc, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
		if err != nil {
			openAPI3.err = err
			return
		}
		openAPI3.spec, openAPI3.err = convertSwagger2([]byte(doc), apiServers)
	})
	if openAPI3.err != nil {
		return NewInternalError(c, "Failed to load API documentation")
	}
	return c.JSON(http.StatusOK, openAPI3.spec)
}
