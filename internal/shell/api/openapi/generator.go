// Package openapi builds the OpenAPI 3.0 document for the catalog API by
// reflecting on the registered resource models.
package openapi

import (
	"encoding/json"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	bearerScheme    = "bearerAuth"
	componentPrefix = "#/components/schemas/"
)

// =============================================================================
// Generator
// =============================================================================

// Generator produces OpenAPI 3.0 specifications by reflecting on registered resources.
type Generator struct {
	title       string
	version     string
	description string
	servers     []string
	resources   []ResourceInfo
	operations  []OperationInfo
	mu          sync.RWMutex
	cachedSpec  *openapi3.T
}

// ResourceInfo describes one REST collection for document generation.
type ResourceInfo struct {
	Name    string // Path segment under /api/v1 (e.g. "sub-categories")
	Parent  string // Optional parent collection for creation (e.g. "categories")
	Model   any    // Response model
	Request any    // Request body model for create and update
	List    any    // List response model; a bare array of Model when nil

	SupportsList   bool // GET /{name} or GET /{parent}/{id}/{name}
	SupportsGet    bool // GET /{name}/{id}
	SupportsCreate bool // POST /{name} or POST /{parent}/{id}/{name}
	SupportsUpdate bool // PUT /{name}/{id}
	SupportsDelete bool // DELETE /{name}/{id}
	Ordered        bool // PATCH /{name}/{id}/serial and POST .../normalize

	// Filters are optional string query parameters of the list operation.
	Filters []string

	// Scope is a required query parameter naming the ordering scope of a
	// top-level ordered collection (e.g. "section").
	Scope string

	// PublicWrite marks create as open to anonymous callers (inquiry forms).
	PublicWrite bool
}

// OperationInfo describes a route that does not follow the collection
// conventions of ResourceInfo. Path parameters are taken from the braces in
// Path.
type OperationInfo struct {
	Method      string
	Path        string // Full path (e.g. "/api/v1/auth/login")
	OperationID string
	Summary     string
	Tag         string
	Query       []string // Optional string query parameters

	Request  any    // JSON request body model
	Upload   string // Multipart form field carrying a file, instead of Request
	Response any // JSON response model; nil for an empty body
	Status   int // Success status

	// ContentType is the success body type when it is not JSON. The body is
	// documented as binary.
	ContentType string

	Failures []int
	Public   bool
}

// Option configures the generator.
type Option func(*Generator)

// WithTitle sets the API title.
func WithTitle(title string) Option {
	return func(g *Generator) {
		g.title = title
	}
}

// WithVersion sets the API version.
func WithVersion(version string) Option {
	return func(g *Generator) {
		g.version = version
	}
}

// WithDescription sets the API description.
func WithDescription(description string) Option {
	return func(g *Generator) {
		g.description = description
	}
}

// WithServer adds a server URL.
func WithServer(url string) Option {
	return func(g *Generator) {
		g.servers = append(g.servers, url)
	}
}

// NewGenerator creates a new OpenAPI generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		title:       "Catalog API",
		version:     "1.0.0",
		description: "Product catalog, content and inquiry management API",
		resources:   make([]ResourceInfo, 0),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// RegisterResource adds a resource to the generator for spec generation.
func (g *Generator) RegisterResource(info ResourceInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resources = append(g.resources, info)
	g.cachedSpec = nil // Invalidate cache
}

// RegisterOperation adds a single route to the generator.
func (g *Generator) RegisterOperation(info OperationInfo) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.operations = append(g.operations, info)
	g.cachedSpec = nil
}

// Generate produces the complete OpenAPI 3.0 specification.
func (g *Generator) Generate() *openapi3.T {
	g.mu.RLock()
	if g.cachedSpec != nil {
		spec := g.cachedSpec
		g.mu.RUnlock()
		return spec
	}
	g.mu.RUnlock()

	g.mu.Lock()
	defer g.mu.Unlock()

	// Double-check after acquiring write lock
	if g.cachedSpec != nil {
		return g.cachedSpec
	}

	spec := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       g.title,
			Version:     g.version,
			Description: g.description,
		},
		Servers: make(openapi3.Servers, 0, len(g.servers)),
		Paths:   &openapi3.Paths{},
		Components: &openapi3.Components{
			Schemas: make(openapi3.Schemas),
			SecuritySchemes: openapi3.SecuritySchemes{
				bearerScheme: &openapi3.SecuritySchemeRef{Value: openapi3.NewJWTSecurityScheme()},
			},
		},
	}

	for _, url := range g.servers {
		spec.Servers = append(spec.Servers, &openapi3.Server{URL: url})
	}

	g.addCommonSchemas(spec)

	for _, res := range g.resources {
		g.addResourceToSpec(spec, res)
	}
	for _, op := range g.operations {
		g.addOperationToSpec(spec, op)
	}

	linkSchemaRefs(spec)

	g.cachedSpec = spec
	return spec
}

// Handler returns an HTTP handler that serves the OpenAPI specification.
func (g *Generator) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spec := g.Generate()

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "*")

		if err := json.NewEncoder(w).Encode(spec); err != nil {
			http.Error(w, "Failed to encode OpenAPI spec", http.StatusInternalServerError)
		}
	}
}

// =============================================================================
// Schema Generation
// =============================================================================

func (g *Generator) addCommonSchemas(spec *openapi3.T) {
	spec.Components.Schemas["Error"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"error": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"code": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
				},
				"fields": &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						AdditionalProperties: openapi3.AdditionalProperties{
							Schema: &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
					},
				},
			},
			Required: []string{"error", "code"},
		},
	}

	spec.Components.Schemas["Move"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"serial_no": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Min: openapi3.Float64Ptr(1)},
				},
			},
			Required: []string{"serial_no"},
		},
	}

	spec.Components.Schemas["Normalize"] = &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type: &openapi3.Types{"object"},
			Properties: openapi3.Schemas{
				"updated": &openapi3.SchemaRef{
					Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}},
				},
			},
		},
	}
}

// addResourceToSpec adds paths and schemas for a resource. Resources with a
// Parent are listed, created and normalized under /{parent}/{id}/{name}; their
// items live at the top level.
func (g *Generator) addResourceToSpec(spec *openapi3.T, res ResourceInfo) {
	basePath := "/api/v1/" + res.Name
	schemaName := schemaNameFor(res.Name)

	spec.Components.Schemas[schemaName] = g.extractSchema(res.Model)
	if res.Request != nil {
		spec.Components.Schemas[schemaName+"Input"] = g.extractSchema(res.Request)
	}
	listSchema := &openapi3.SchemaRef{
		Value: &openapi3.Schema{
			Type:  &openapi3.Types{"array"},
			Items: schemaRef(schemaName),
		},
	}
	if res.List != nil {
		listName := "List" + pascalCase(res.Name)
		spec.Components.Schemas[listName] = g.extractSchema(res.List)
		listSchema = schemaRef(listName)
	}

	collectionPath := &openapi3.PathItem{}
	collection := basePath
	if res.Parent != "" {
		collection = "/api/v1/" + res.Parent + "/{id}/" + res.Name
		collectionPath.Parameters = openapi3.Parameters{pathParameter("id")}
	}
	if res.SupportsList {
		collectionPath.Get = g.createListOperation(res, schemaName, listSchema)
	}
	if res.SupportsCreate {
		collectionPath.Post = g.createCreateOperation(res, schemaName)
	}
	if collectionPath.Get != nil || collectionPath.Post != nil {
		spec.Paths.Set(collection, collectionPath)
	}

	itemPath := &openapi3.PathItem{
		Parameters: openapi3.Parameters{pathParameter("id")},
	}
	if res.SupportsGet {
		itemPath.Get = g.createGetOperation(res, schemaName)
	}
	if res.SupportsUpdate {
		itemPath.Put = g.createUpdateOperation(res, schemaName)
	}
	if res.SupportsDelete {
		itemPath.Delete = g.createDeleteOperation(res, schemaName)
	}
	if itemPath.Get != nil || itemPath.Put != nil || itemPath.Delete != nil {
		spec.Paths.Set(basePath+"/{id}", itemPath)
	}

	if res.Ordered {
		spec.Paths.Set(basePath+"/{id}/serial", &openapi3.PathItem{
			Parameters: openapi3.Parameters{pathParameter("id")},
			Patch:      g.createMoveOperation(res, schemaName),
		})

		normalize := &openapi3.PathItem{Post: g.createNormalizeOperation(res, schemaName)}
		if res.Parent != "" {
			normalize.Parameters = openapi3.Parameters{pathParameter("id")}
		}
		spec.Paths.Set(collection+"/normalize", normalize)
	}
}

// addOperationToSpec adds a single route, sharing the path item with any
// operation already registered on the same path.
func (g *Generator) addOperationToSpec(spec *openapi3.T, info OperationInfo) {
	op := &openapi3.Operation{
		OperationID: info.OperationID,
		Summary:     info.Summary,
		Tags:        []string{info.Tag},
	}
	for _, name := range info.Query {
		op.Parameters = append(op.Parameters, stringQueryParameter(name, false))
	}
	if info.Upload != "" {
		form := openapi3.NewObjectSchema().WithProperty(info.Upload, openapi3.NewStringSchema().WithFormat("binary"))
		form.Required = []string{info.Upload}
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).
				WithContent(openapi3.NewContentWithSchema(form, []string{"multipart/form-data"})),
		}
	} else if info.Request != nil {
		name := g.registerModel(spec, info.Request)
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemaRef(name)),
		}
	}

	status := info.Status
	if status == 0 {
		status = http.StatusOK
	}
	var body *openapi3.SchemaRef
	if info.Response != nil {
		body = schemaRef(g.registerModel(spec, info.Response))
	}
	op.Responses = responses(status, body, info.Failures...)
	if info.ContentType != "" {
		ok := openapi3.NewResponse().
			WithDescription(http.StatusText(status)).
			WithContent(openapi3.NewContentWithSchema(openapi3.NewStringSchema().WithFormat("binary"), []string{info.ContentType}))
		op.Responses.Set(strconv.Itoa(status), &openapi3.ResponseRef{Value: ok})
	}
	if !info.Public {
		op.Security = bearerRequirement()
	}

	item := spec.Paths.Value(info.Path)
	if item == nil {
		item = &openapi3.PathItem{}
		for _, name := range pathParameterNames(info.Path) {
			item.Parameters = append(item.Parameters, pathParameter(name))
		}
		spec.Paths.Set(info.Path, item)
	}
	item.SetOperation(strings.ToUpper(info.Method), op)
}

// registerModel adds the schema for model under its Go type name and
// returns that name.
func (g *Generator) registerModel(spec *openapi3.T, model any) string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	name := t.Name()
	if _, ok := spec.Components.Schemas[name]; !ok {
		spec.Components.Schemas[name] = g.extractSchema(model)
	}
	return name
}

// extractSchema extracts an OpenAPI schema from a Go struct. Embedded structs
// contribute their fields to the parent.
func (g *Generator) extractSchema(model any) *openapi3.SchemaRef {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	schema := &openapi3.Schema{
		Type:       &openapi3.Types{"object"},
		Properties: make(openapi3.Schemas),
	}
	g.collectFields(schema, t)
	return &openapi3.SchemaRef{Value: schema}
}

func (g *Generator) collectFields(schema *openapi3.Schema, t reflect.Type) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			g.collectFields(schema, field.Type)
			continue
		}
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		name := field.Name
		if jsonTag != "" {
			parts := strings.Split(jsonTag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
		}

		propSchema := g.goTypeToSchema(field.Type)
		if propSchema != nil {
			schema.Properties[name] = propSchema
		}

		if strings.Contains(field.Tag.Get("validate"), "required") {
			schema.Required = append(schema.Required, name)
		}
	}
}

// goTypeToSchema converts a Go type to an OpenAPI schema.
func (g *Generator) goTypeToSchema(t reflect.Type) *openapi3.SchemaRef {
	switch t.Kind() {
	case reflect.String:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int32"}}

	case reflect.Int64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Format: "int64"}}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}}

	case reflect.Float32:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "float"}}

	case reflect.Float64:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"number"}, Format: "double"}}

	case reflect.Bool:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"boolean"}}}

	case reflect.Slice, reflect.Array:
		elemSchema := g.goTypeToSchema(t.Elem())
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:  &openapi3.Types{"array"},
				Items: elemSchema,
			},
		}

	case reflect.Map:
		valueSchema := g.goTypeToSchema(t.Elem())
		return &openapi3.SchemaRef{
			Value: &openapi3.Schema{
				Type:                 &openapi3.Types{"object"},
				AdditionalProperties: openapi3.AdditionalProperties{Schema: valueSchema},
			},
		}

	case reflect.Ptr:
		schema := g.goTypeToSchema(t.Elem())
		if schema != nil && schema.Value != nil {
			schema.Value.Nullable = true
		}
		return schema

	case reflect.Struct:
		if t == reflect.TypeOf(time.Time{}) {
			return &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}, Format: "date-time"},
			}
		}
		return g.extractSchema(reflect.New(t).Interface())

	default:
		return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"object"}}}
	}
}

// =============================================================================
// Operation Generation
// =============================================================================

func (g *Generator) createListOperation(res ResourceInfo, schemaName string, body *openapi3.SchemaRef) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "list" + pascalCase(res.Name),
		Summary:     "List " + strings.ReplaceAll(res.Name, "-", " "),
		Tags:        []string{schemaName},
		Parameters: openapi3.Parameters{
			queryParameter("limit", 100),
			queryParameter("offset", 0),
		},
		Responses: responses(http.StatusOK, body),
	}
	for _, name := range res.Filters {
		op.Parameters = append(op.Parameters, stringQueryParameter(name, false))
	}
	return op
}

func (g *Generator) createGetOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		OperationID: "get" + schemaName,
		Summary:     "Get a " + singularize(res.Name),
		Tags:        []string{schemaName},
		Responses:   responses(http.StatusOK, schemaRef(schemaName), http.StatusNotFound),
	}
}

func (g *Generator) createCreateOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "create" + schemaName,
		Summary:     "Create a " + singularize(res.Name),
		Tags:        []string{schemaName},
		RequestBody: requestBody(res, schemaName),
		Responses:   responses(http.StatusCreated, schemaRef(schemaName), http.StatusBadRequest, http.StatusConflict),
	}
	if !res.PublicWrite {
		op.Security = bearerRequirement()
	}
	return op
}

func (g *Generator) createUpdateOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		OperationID: "update" + schemaName,
		Summary:     "Update a " + singularize(res.Name),
		Tags:        []string{schemaName},
		RequestBody: requestBody(res, schemaName),
		Responses:   responses(http.StatusOK, schemaRef(schemaName), http.StatusBadRequest, http.StatusNotFound, http.StatusConflict),
		Security:    bearerRequirement(),
	}
}

func (g *Generator) createDeleteOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		OperationID: "delete" + schemaName,
		Summary:     "Delete a " + singularize(res.Name),
		Tags:        []string{schemaName},
		Responses:   responses(http.StatusNoContent, nil, http.StatusNotFound),
		Security:    bearerRequirement(),
	}
}

func (g *Generator) createMoveOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	return &openapi3.Operation{
		OperationID: "move" + schemaName,
		Summary:     "Move a " + singularize(res.Name) + " to a new position",
		Tags:        []string{schemaName},
		RequestBody: &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(schemaRef("Move")),
		},
		Responses: responses(http.StatusOK, schemaRef(schemaName), http.StatusBadRequest, http.StatusNotFound),
		Security:  bearerRequirement(),
	}
}

func (g *Generator) createNormalizeOperation(res ResourceInfo, schemaName string) *openapi3.Operation {
	op := &openapi3.Operation{
		OperationID: "normalize" + pascalCase(res.Name),
		Summary:     "Renumber " + strings.ReplaceAll(res.Name, "-", " ") + " to contiguous serials",
		Tags:        []string{schemaName},
		Responses:   responses(http.StatusOK, schemaRef("Normalize"), http.StatusBadRequest, http.StatusNotFound),
		Security:    bearerRequirement(),
	}
	if res.Scope != "" {
		op.Parameters = openapi3.Parameters{stringQueryParameter(res.Scope, true)}
	}
	return op
}

// =============================================================================
// Helpers
// =============================================================================

func pathParameter(name string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     name,
			In:       "path",
			Required: true,
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
			},
		},
	}
}

func queryParameter(name string, def int) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name: name,
			In:   "query",
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}, Default: float64(def)},
			},
		},
	}
}

func stringQueryParameter(name string, required bool) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{
		Value: &openapi3.Parameter{
			Name:     name,
			In:       "query",
			Required: required,
			Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{Type: &openapi3.Types{"string"}},
			},
		},
	}
}

// pathParameterNames returns the names in braces in path, in order.
func pathParameterNames(path string) []string {
	var names []string
	for _, segment := range strings.Split(path, "/") {
		if strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
			names = append(names, segment[1:len(segment)-1])
		}
	}
	return names
}

// schemaRef points at a component schema. The value is attached by
// linkSchemaRefs once every component is registered.
func schemaRef(name string) *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Ref: componentPrefix + name}
}

// linkSchemaRefs attaches the component schema to every $ref used by an
// operation, so the document validates without a loader round trip.
func linkSchemaRefs(spec *openapi3.T) {
	var link func(ref *openapi3.SchemaRef)
	link = func(ref *openapi3.SchemaRef) {
		if ref == nil {
			return
		}
		if ref.Ref != "" {
			if target, ok := spec.Components.Schemas[strings.TrimPrefix(ref.Ref, componentPrefix)]; ok {
				ref.Value = target.Value
			}
			return
		}
		if ref.Value == nil {
			return
		}
		link(ref.Value.Items)
		for _, prop := range ref.Value.Properties {
			link(prop)
		}
		link(ref.Value.AdditionalProperties.Schema)
	}
	linkContent := func(content openapi3.Content) {
		for _, media := range content {
			link(media.Schema)
		}
	}

	for _, item := range spec.Paths.Map() {
		for _, op := range item.Operations() {
			if op.RequestBody != nil && op.RequestBody.Value != nil {
				linkContent(op.RequestBody.Value.Content)
			}
			if op.Responses == nil {
				continue
			}
			for _, resp := range op.Responses.Map() {
				if resp.Value != nil {
					linkContent(resp.Value.Content)
				}
			}
		}
	}
}

func requestBody(res ResourceInfo, schemaName string) *openapi3.RequestBodyRef {
	ref := schemaRef(schemaName)
	if res.Request != nil {
		ref = schemaRef(schemaName + "Input")
	}
	return &openapi3.RequestBodyRef{
		Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(ref),
	}
}

// responses builds a response set with one success response and an Error
// body for each listed failure status.
func responses(success int, body *openapi3.SchemaRef, failures ...int) *openapi3.Responses {
	out := &openapi3.Responses{}

	ok := openapi3.NewResponse().WithDescription(http.StatusText(success))
	if body != nil {
		ok = ok.WithJSONSchemaRef(body)
	}
	out.Set(strconv.Itoa(success), &openapi3.ResponseRef{Value: ok})

	for _, status := range failures {
		out.Set(strconv.Itoa(status), &openapi3.ResponseRef{
			Value: openapi3.NewResponse().
				WithDescription(http.StatusText(status)).
				WithJSONSchemaRef(schemaRef("Error")),
		})
	}
	return out
}

func bearerRequirement() *openapi3.SecurityRequirements {
	return &openapi3.SecurityRequirements{
		openapi3.SecurityRequirement{bearerScheme: []string{}},
	}
}

// schemaNameFor converts a collection name to a schema name
// ("sub-categories" becomes "SubCategory").
func schemaNameFor(name string) string {
	return pascalCase(singularize(name))
}

// pascalCase converts a collection name to a Go-style identifier
// ("info-requests" becomes "InfoRequests").
func pascalCase(name string) string {
	parts := strings.Split(name, "-")
	for i, p := range parts {
		parts[i] = capitalize(p)
	}
	return strings.Join(parts, "")
}

// capitalize returns the string with the first letter capitalized.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// singularize performs basic English singularization.
func singularize(s string) string {
	switch {
	case strings.HasSuffix(s, "ies"):
		return s[:len(s)-3] + "y"
	case strings.HasSuffix(s, "sses"), strings.HasSuffix(s, "xes"),
		strings.HasSuffix(s, "ches"), strings.HasSuffix(s, "shes"):
		return s[:len(s)-2]
	case strings.HasSuffix(s, "s"):
		return s[:len(s)-1]
	}
	return s
}
