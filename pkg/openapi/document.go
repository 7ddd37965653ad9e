package openapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Document is a parsed OpenAPI description.
type Document struct {
	source Source
	spec   *openapi3.T
}

// Location returns where the document was loaded from, if known.
func (d *Document) Location() string {
	if d == nil || d.source == nil {
		return ""
	}
	return d.source.Location()
}

// Spec exposes the underlying kin-openapi model.
func (d *Document) Spec() *openapi3.T {
	if d == nil {
		return nil
	}
	return d.spec
}

// Operation summarises one path operation.
type Operation struct {
	ID      string
	Method  string
	Path    string
	Summary string
	// HasBody reports whether the operation declares a request body.
	HasBody bool

	op *openapi3.Operation
}

// Operations lists every operation sorted by id. Operations without an
// operationId are keyed "method:path".
func (d *Document) Operations() []Operation {
	if d == nil || d.spec == nil || d.spec.Paths == nil {
		return nil
	}
	var out []Operation
	for path, item := range d.spec.Paths.Map() {
		if item == nil {
			continue
		}
		for method, op := range item.Operations() {
			if op == nil {
				continue
			}
			out = append(out, Operation{
				ID:      operationID(method, path, op),
				Method:  strings.ToUpper(method),
				Path:    path,
				Summary: op.Summary,
				HasBody: op.RequestBody != nil,
				op:      op,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Operation finds an operation by id.
func (d *Document) Operation(id string) (Operation, bool) {
	for _, op := range d.Operations() {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

func operationID(method, path string, op *openapi3.Operation) string {
	if op.OperationID != "" {
		return op.OperationID
	}
	return strings.ToLower(method) + ":" + path
}

var bodyMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// requestSchema picks the body schema, preferring the form-friendly media
// types in bodyMediaTypes order, then the first remaining type by name.
func (op Operation) requestSchema() *openapi3.Schema {
	if op.op == nil || op.op.RequestBody == nil || op.op.RequestBody.Value == nil {
		return nil
	}
	content := op.op.RequestBody.Value.Content
	for _, mediaType := range bodyMediaTypes {
		if mt := content.Get(mediaType); mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil && mt.Schema != nil {
			return mt.Schema.Value
		}
	}
	return nil
}

// FormMethod returns the HTTP method the generated form should submit with.
// Browsers only submit GET and POST, so anything else becomes POST.
func (op Operation) FormMethod() string {
	if op.Method == http.MethodGet {
		return http.MethodGet
	}
	return http.MethodPost
}
