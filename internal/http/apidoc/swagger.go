package apidoc

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/swaggo/swag"
)

// ginParamRE matches gin path parameters (":name").
var ginParamRE = regexp.MustCompile(`:([A-Za-z_]+)`)

// errorSchema mirrors handlers.ErrorResponse.
var errorSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"request_id": map[string]any{"type": "string"},
		"code":       map[string]any{"type": "string"},
		"msg":        map[string]any{"type": "string"},
	},
}

// SwaggerDoc renders the catalog as a Swagger 2.0 JSON document.
func SwaggerDoc(basePath, version string) ([]byte, error) {
	paths := map[string]map[string]any{}
	for _, e := range Catalog() {
		p := ginParamRE.ReplaceAllString(e.Path, "{$1}")
		if p == "" {
			p = "/"
		}
		if paths[p] == nil {
			paths[p] = map[string]any{}
		}
		paths[p][strings.ToLower(e.Method)] = operation(e)
	}

	if basePath == "" {
		basePath = "/"
	}
	doc := map[string]any{
		"swagger":  "2.0",
		"basePath": basePath,
		"info": map[string]any{
			"title":       "News API",
			"description": "Topics, articles, comments and users.",
			"version":     version,
		},
		"consumes": []string{"application/json"},
		"produces": []string{"application/json"},
		"paths":    paths,
		"definitions": map[string]any{
			"ErrorResponse": errorSchema,
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

func operation(e Endpoint) map[string]any {
	params := make([]map[string]any, 0, len(e.Params)+1)
	for _, p := range e.Params {
		m := map[string]any{
			"name":        p.Name,
			"in":          p.In,
			"type":        p.Type,
			"description": p.Description,
			"required":    p.In == "path",
		}
		if len(p.Enum) > 0 {
			m["enum"] = p.Enum
		}
		if p.Default != nil {
			m["default"] = p.Default
		}
		params = append(params, m)
	}
	if e.ExampleRequest != nil {
		params = append(params, map[string]any{
			"name":     "body",
			"in":       "body",
			"required": true,
			"schema":   map[string]any{"type": "object", "example": e.ExampleRequest},
		})
	}

	ok := map[string]any{"description": http.StatusText(e.Status)}
	if e.ExampleResponse != nil {
		ok["schema"] = map[string]any{"type": "object", "example": e.ExampleResponse}
	}
	errRef := map[string]any{"$ref": "#/definitions/ErrorResponse"}
	responses := map[string]any{
		strconv.Itoa(e.Status): ok,
		"500":                  map[string]any{"description": "Internal error", "schema": errRef},
	}
	if len(e.Params) > 0 || e.ExampleRequest != nil {
		responses["400"] = map[string]any{"description": "Invalid query or missing parameter", "schema": errRef}
	}
	if strings.Contains(e.Path, ":") || e.Method == http.MethodPost {
		responses["404"] = map[string]any{"description": "Not found", "schema": errRef}
	}

	return map[string]any{
		"tags":        []string{e.Tag},
		"summary":     e.Description,
		"parameters":  params,
		"responses":   responses,
		"operationId": operationID(e),
	}
}

func operationID(e Endpoint) string {
	parts := strings.FieldsFunc(e.Path, func(r rune) bool { return r == '/' || r == ':' || r == '_' })
	id := strings.ToLower(e.Method)
	for _, p := range parts {
		id += strings.ToUpper(p[:1]) + p[1:]
	}
	return id
}

// staticDoc satisfies swag.Swagger with a pre-rendered document.
type staticDoc struct{ doc string }

func (d staticDoc) ReadDoc() string { return d.doc }

var registerOnce sync.Once

// Register renders the document and registers it with swag under the default
// instance name so gin-swagger can serve it. Only the first call registers;
// swag panics on duplicate names.
func Register(basePath, version string) error {
	var err error
	registerOnce.Do(func() {
		var raw []byte
		raw, err = SwaggerDoc(basePath, version)
		if err != nil {
			return
		}
		swag.Register(swag.Name, staticDoc{doc: string(raw)})
	})
	return err
}
