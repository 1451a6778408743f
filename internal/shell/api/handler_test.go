package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/auth"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/core/domain"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/media"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/metrics"
	"github.com/Tarekrahman5500/generator-deploy-sub001/internal/shell/store"
)

// =============================================================================
// Test Helpers
// =============================================================================

const (
	testSecret   = "test-secret-with-at-least-32-bytes!!"
	testEmail    = "admin@example.com"
	testPassword = "correct horse"
)

// pngBytes starts with the PNG signature so content sniffing reports image/png.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type countingNotifier struct {
	calls atomic.Int32
}

func (n *countingNotifier) Notify() { n.calls.Add(1) }

type testEnv struct {
	t        *testing.T
	store    *store.SQLiteStore
	router   http.Handler
	notifier *countingNotifier
	token    string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	admin, err := domain.NewAdmin(testEmail, "Admin", hash)
	require.NoError(t, err)
	require.NoError(t, s.CreateAdmin(context.Background(), admin))

	tokens, err := auth.NewTokenIssuer(testSecret, "catalog-test", time.Hour)
	require.NoError(t, err)
	token, _, err := tokens.Issue(*admin)
	require.NoError(t, err)

	storage := media.NewStorage(afero.NewMemMapFs(), media.Config{MaxBytes: 1 << 10})
	notifier := &countingNotifier{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	h := NewHandler(s, storage, tokens, logger,
		WithMetrics(metrics.New()),
		WithNotifier(notifier),
		WithVersion("test"),
	)

	return &testEnv{
		t:        t,
		store:    s,
		router:   h.Routes(),
		notifier: notifier,
		token:    token,
	}
}

// do sends a JSON request. An empty token sends it anonymously.
func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) admin(method, path string, body any) *httptest.ResponseRecorder {
	return e.do(method, path, e.token, body)
}

func (e *testEnv) upload(name string, content []byte) *httptest.ResponseRecorder {
	e.t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(e.t, err)
	_, err = part.Write(content)
	require.NoError(e.t, err)
	require.NoError(e.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+e.token)

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (e *testEnv) createCategory(name string) domain.Category {
	e.t.Helper()
	rec := e.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Name: name})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.Category](e.t, rec)
}

func (e *testEnv) createGroup(categoryID, name string) domain.Group {
	e.t.Helper()
	rec := e.admin(http.MethodPost, "/api/v1/categories/"+categoryID+"/groups", GroupRequest{Name: name})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.Group](e.t, rec)
}

func (e *testEnv) createField(groupID string, req FieldRequest) domain.Field {
	e.t.Helper()
	rec := e.admin(http.MethodPost, "/api/v1/groups/"+groupID+"/fields", req)
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[domain.Field](e.t, rec)
}

// =============================================================================
// Health Tests
// =============================================================================

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody[HealthResponse](t, rec).Status)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = env.do(http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decodeBody[ReadyResponse](t, rec).Checks["database"])
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.do(http.MethodGet, "/api/v1/categories", "", nil)

	rec := env.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "/api/v1/categories")
}

func TestUnknownAPIRoute(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestOpenAPIDocument(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/v1/openapi.json", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	paths, ok := doc["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/categories")
	assert.Contains(t, paths, "/api/v1/categories/{id}/sub-categories")
	assert.Contains(t, paths, "/api/v1/groups/{id}/fields")
	assert.Contains(t, paths, "/api/v1/products/{id}")
	assert.Contains(t, paths, "/api/v1/backgrounds/{id}/serial")
	assert.Contains(t, paths, "/api/v1/auth/login")
	assert.Contains(t, paths, "/api/v1/categories/{id}/info")
	assert.Contains(t, paths, "/api/v1/categories/{id}/groups")
	assert.Contains(t, paths, "/api/v1/categories/normalize")
	assert.Contains(t, paths, "/api/v1/outbox/{id}/retry")
	assert.Contains(t, paths, "/media/{key}")
}

func TestAPIDocumentIsValid(t *testing.T) {
	spec := newAPIDocument("1.0").Generate()
	require.NoError(t, spec.Validate(context.Background()))

	groups := spec.Paths.Value("/api/v1/categories/{id}/groups")
	require.NotNil(t, groups)
	assert.NotNil(t, groups.Get, "groups are listed under their category")
	assert.NotNil(t, groups.Post)

	files := spec.Paths.Value("/api/v1/files")
	require.NotNil(t, files)
	assert.NotNil(t, files.Post.RequestBody.Value.Content.Get("multipart/form-data"))

	normalize := spec.Paths.Value("/api/v1/backgrounds/normalize")
	require.NotNil(t, normalize)
	require.Len(t, normalize.Post.Parameters, 1)
	assert.Equal(t, "section", normalize.Post.Parameters[0].Value.Name)
}

// =============================================================================
// Auth Tests
// =============================================================================

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	t.Run("valid credentials", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "ADMIN@example.com", Password: testPassword})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		resp := decodeBody[LoginResponse](t, rec)
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, testEmail, resp.Admin.Email)
		assert.NotContains(t, rec.Body.String(), "password")

		me := env.do(http.MethodGet, "/api/v1/auth/me", resp.Token, nil)
		assert.Equal(t, http.StatusOK, me.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: testEmail, Password: "wrong password"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", decodeBody[ErrorResponse](t, rec).Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: "nobody@example.com", Password: testPassword})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "invalid_credentials", decodeBody[ErrorResponse](t, rec).Code)

		wrong := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: testEmail, Password: "wrong password"})
		assert.Equal(t, wrong.Body.String(), rec.Body.String(), "unknown email and wrong password look the same")
	})

	t.Run("missing fields", func(t *testing.T) {
		rec := env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		resp := decodeBody[ErrorResponse](t, rec)
		assert.Contains(t, resp.Fields, "email")
		assert.Contains(t, resp.Fields, "password")
	})
}

func TestChangePassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPut, "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: "not the password",
		NewPassword:     "new password 1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "current_password")

	rec = env.admin(http.MethodPut, "/api/v1/auth/password", ChangePasswordRequest{
		CurrentPassword: testPassword,
		NewPassword:     "new password 1",
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Email: testEmail, Password: "new password 1"})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAdmins(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPost, "/api/v1/admins", CreateAdminRequest{Email: "second@example.com", Password: "password 2"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.admin(http.MethodPost, "/api/v1/admins", CreateAdminRequest{Email: "second@example.com", Password: "password 2"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "admin_exists", decodeBody[ErrorResponse](t, rec).Code)

	rec = env.admin(http.MethodGet, "/api/v1/admins", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decodeBody[ListAdminsResponse](t, rec).Total)

	rec = env.do(http.MethodGet, "/api/v1/admins", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestWriteRoutesRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/categories"},
		{http.MethodPut, "/api/v1/categories/cat_x"},
		{http.MethodDelete, "/api/v1/categories/cat_x"},
		{http.MethodPatch, "/api/v1/categories/cat_x/serial"},
		{http.MethodPost, "/api/v1/products"},
		{http.MethodPost, "/api/v1/backgrounds"},
		{http.MethodGet, "/api/v1/files"},
		{http.MethodGet, "/api/v1/contacts"},
		{http.MethodGet, "/api/v1/outbox"},
	}
	for _, rt := range routes {
		t.Run(rt.method+" "+rt.path, func(t *testing.T) {
			rec := env.do(rt.method, rt.path, "", map[string]string{})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}

	rec := env.do(http.MethodGet, "/api/v1/categories", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_token", decodeBody[ErrorResponse](t, rec).Code)
}

// =============================================================================
// Category Tests
// =============================================================================

func TestCategoryCRUD(t *testing.T) {
	env := newTestEnv(t)

	cat := env.createCategory("Diesel Generators")
	assert.Equal(t, "diesel-generators", cat.Slug)
	assert.Equal(t, 1, cat.SerialNo)

	rec := env.do(http.MethodGet, "/api/v1/categories/"+cat.ID, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeBody[CategoryResponse](t, rec)
	assert.Equal(t, "Diesel Generators", got.Name)
	assert.Empty(t, got.SubCategories)
	assert.Nil(t, got.Info)

	rec = env.do(http.MethodGet, "/api/v1/categories/by-slug/diesel-generators", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.admin(http.MethodPut, "/api/v1/categories/"+cat.ID, CategoryRequest{Name: "Gas Generators", Description: "Natural gas"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeBody[domain.Category](t, rec)
	assert.Equal(t, "Gas Generators", updated.Name)
	assert.Equal(t, "Natural gas", updated.Description)

	rec = env.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Other", Slug: "gas-generators"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "category_exists", decodeBody[ErrorResponse](t, rec).Code)

	rec = env.admin(http.MethodDelete, "/api/v1/categories/"+cat.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "category_not_found", decodeBody[ErrorResponse](t, rec).Code)
}

func TestCategoryValidation(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Slug: "Not A Slug"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", resp.Code)
	assert.Contains(t, resp.Fields, "name")
	assert.Contains(t, resp.Fields, "slug")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/categories", strings.NewReader("{"))
	req.Header.Set("Authorization", "Bearer "+env.token)
	out := httptest.NewRecorder()
	env.router.ServeHTTP(out, req)
	assert.Equal(t, http.StatusBadRequest, out.Code)
}

func TestCategoryWithUnknownFile(t *testing.T) {
	env := newTestEnv(t)

	rec := env.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Pumps", FileIDs: []string{"file_missing"}})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "invalid_reference", decodeBody[ErrorResponse](t, rec).Code)

	rec = env.do(http.MethodGet, "/api/v1/categories", "", nil)
	assert.Equal(t, 0, decodeBody[ListCategoriesResponse](t, rec).Total)
}

func TestCategorySerials(t *testing.T) {
	env := newTestEnv(t)

	a := env.createCategory("A")
	b := env.createCategory("B")
	c := env.createCategory("C")

	order := func() []string {
		rec := env.do(http.MethodGet, "/api/v1/categories", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var names []string
		for _, cat := range decodeBody[ListCategoriesResponse](t, rec).Categories {
			names = append(names, cat.Name)
		}
		return names
	}
	assert.Equal(t, []string{"A", "B", "C"}, order())

	rec := env.admin(http.MethodPatch, "/api/v1/categories/"+c.ID+"/serial", MoveRequest{SerialNo: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeBody[domain.Category](t, rec).SerialNo)
	assert.Equal(t, []string{"C", "A", "B"}, order())

	rec = env.admin(http.MethodPatch, "/api/v1/categories/"+c.ID+"/serial", MoveRequest{SerialNo: 99})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, decodeBody[domain.Category](t, rec).SerialNo)
	assert.Equal(t, []string{"A", "B", "C"}, order())

	rec = env.admin(http.MethodPatch, "/api/v1/categories/"+a.ID+"/serial", MoveRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "First", SerialNo: 1})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, []string{"First", "A", "B", "C"}, order())

	rec = env.admin(http.MethodDelete, "/api/v1/categories/"+b.ID, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/categories/normalize", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"First", "A", "C"}, order())

	rec = env.admin(http.MethodPatch, "/api/v1/categories/cat_missing/serial", MoveRequest{SerialNo: 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCategoryInfo(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Pumps")

	rec := env.do(http.MethodGet, "/api/v1/categories/"+cat.ID+"/info", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(http.MethodPut, "/api/v1/categories/"+cat.ID+"/info", CategoryInfoRequest{Title: "About pumps"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = env.admin(http.MethodPut, "/api/v1/categories/"+cat.ID+"/info", CategoryInfoRequest{Title: "All about pumps", Description: "Details"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "All about pumps", decodeBody[domain.CategoryInfo](t, rec).Title)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID, "", nil)
	got := decodeBody[CategoryResponse](t, rec)
	require.NotNil(t, got.Info)
	assert.Equal(t, "Details", got.Info.Description)

	rec = env.admin(http.MethodPut, "/api/v1/categories/cat_missing/info", CategoryInfoRequest{Title: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(http.MethodDelete, "/api/v1/categories/"+cat.ID+"/info", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestSubCategories(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Generators")

	rec := env.admin(http.MethodPost, "/api/v1/categories/"+cat.ID+"/sub-categories", SubCategoryRequest{Name: "Silent"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	silent := decodeBody[domain.SubCategory](t, rec)

	rec = env.admin(http.MethodPost, "/api/v1/categories/"+cat.ID+"/sub-categories", SubCategoryRequest{Name: "Open"})
	require.Equal(t, http.StatusCreated, rec.Code)
	open := decodeBody[domain.SubCategory](t, rec)
	assert.Equal(t, 2, open.SerialNo)

	rec = env.admin(http.MethodPatch, "/api/v1/sub-categories/"+open.ID+"/serial", MoveRequest{SerialNo: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID+"/sub-categories", "", nil)
	subs := decodeBody[ListSubCategoriesResponse](t, rec).SubCategories
	require.Len(t, subs, 2)
	assert.Equal(t, open.ID, subs[0].ID)
	assert.Equal(t, silent.ID, subs[1].ID)

	rec = env.admin(http.MethodPut, "/api/v1/sub-categories/"+silent.ID, SubCategoryRequest{Name: "Super Silent"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "super-silent", decodeBody[domain.SubCategory](t, rec).Slug)

	rec = env.admin(http.MethodPost, "/api/v1/categories/cat_missing/sub-categories", SubCategoryRequest{Name: "x"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(http.MethodDelete, "/api/v1/sub-categories/"+open.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// Schema and Product Tests
// =============================================================================

func TestGroupsAndFields(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Generators")

	electrical := env.createGroup(cat.ID, "Electrical")
	engine := env.createGroup(cat.ID, "Engine")

	power := env.createField(electrical.ID, FieldRequest{Name: "Power", Type: "number", Unit: "kVA", Required: true})
	env.createField(electrical.ID, FieldRequest{Name: "Phase", Type: "select", Options: []string{"single", "three"}})

	rec := env.admin(http.MethodPost, "/api/v1/groups/"+engine.ID+"/fields", FieldRequest{Name: "Fuel", Type: "select"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/groups/"+engine.ID+"/fields", FieldRequest{Name: "Fuel", Type: "colour"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "type")

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID+"/groups", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	groups := decodeBody[ListGroupsResponse](t, rec).Groups
	require.Len(t, groups, 2)
	assert.Equal(t, "Electrical", groups[0].Name)
	assert.Len(t, groups[0].Fields, 2)
	assert.Empty(t, groups[1].Fields)

	rec = env.admin(http.MethodPatch, "/api/v1/groups/"+engine.ID+"/serial", MoveRequest{SerialNo: 1})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[domain.Group](t, rec).SerialNo)

	rec = env.admin(http.MethodPut, "/api/v1/fields/"+power.ID, FieldRequest{Name: "Rated power", Type: "number", Unit: "kW"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "kW", decodeBody[domain.Field](t, rec).Unit)

	rec = env.do(http.MethodGet, "/api/v1/groups/"+electrical.ID+"/fields", "", nil)
	fields := decodeBody[ListFieldsResponse](t, rec).Fields
	require.Len(t, fields, 2)
	assert.Equal(t, "Rated power", fields[0].Name)

	rec = env.admin(http.MethodDelete, "/api/v1/groups/"+electrical.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/fields/"+power.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Generators")
	group := env.createGroup(cat.ID, "Electrical")
	power := env.createField(group.ID, FieldRequest{Name: "Power", Type: "number", Required: true})
	phase := env.createField(group.ID, FieldRequest{Name: "Phase", Type: "select", Options: []string{"single", "three"}})

	t.Run("missing required value", func(t *testing.T) {
		rec := env.admin(http.MethodPost, "/api/v1/products", ProductRequest{CategoryID: cat.ID, ModelName: "G-1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "values."+power.ID)
	})

	t.Run("invalid value", func(t *testing.T) {
		rec := env.admin(http.MethodPost, "/api/v1/products", ProductRequest{
			CategoryID: cat.ID,
			ModelName:  "G-1",
			Values:     map[string]string{power.ID: "lots", phase.ID: "four"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		fields := decodeBody[ErrorResponse](t, rec).Fields
		assert.Contains(t, fields, "values."+power.ID)
		assert.Contains(t, fields, "values."+phase.ID)
	})

	var product domain.Product
	t.Run("create", func(t *testing.T) {
		rec := env.admin(http.MethodPost, "/api/v1/products", ProductRequest{
			CategoryID: cat.ID,
			ModelName:  "G-100",
			Published:  true,
			Values:     map[string]string{power.ID: "100", phase.ID: "three"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		product = decodeBody[domain.Product](t, rec)
		assert.Equal(t, "g-100", product.Slug)

		rec = env.do(http.MethodGet, "/api/v1/products/"+product.ID, "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[domain.Product](t, rec).Values, 2)
	})

	t.Run("unpublished hidden from visitors", func(t *testing.T) {
		rec := env.admin(http.MethodPost, "/api/v1/products", ProductRequest{
			CategoryID: cat.ID,
			ModelName:  "G-Draft",
			Values:     map[string]string{power.ID: "50"},
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		draft := decodeBody[domain.Product](t, rec)

		rec = env.do(http.MethodGet, "/api/v1/products/"+draft.ID, "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		rec = env.admin(http.MethodGet, "/api/v1/products/"+draft.ID, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(http.MethodGet, "/api/v1/products", "", nil)
		assert.Equal(t, 1, decodeBody[ListProductsResponse](t, rec).Total)
		rec = env.admin(http.MethodGet, "/api/v1/products", nil)
		assert.Equal(t, 2, decodeBody[ListProductsResponse](t, rec).Total)
	})

	t.Run("filter by field value", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/v1/products?field["+phase.ID+"]=three", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeBody[ListProductsResponse](t, rec)
		require.Len(t, resp.Products, 1)
		assert.Equal(t, product.ID, resp.Products[0].ID)

		rec = env.do(http.MethodGet, "/api/v1/products?field["+phase.ID+"]=single", "", nil)
		assert.Empty(t, decodeBody[ListProductsResponse](t, rec).Products)
	})

	t.Run("filter values are canonicalized", func(t *testing.T) {
		for _, raw := range []string{"100", "100.0", "%201e2"} {
			rec := env.do(http.MethodGet, "/api/v1/products?field["+power.ID+"]="+raw, "", nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeBody[ListProductsResponse](t, rec)
			require.Len(t, resp.Products, 1, raw)
			assert.Equal(t, product.ID, resp.Products[0].ID)
		}
	})

	t.Run("invalid filter value", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/v1/products?field["+power.ID+"]=lots", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(http.MethodGet, "/api/v1/products?field["+phase.ID+"]=four", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		rec = env.do(http.MethodGet, "/api/v1/products?field[fld_missing]=x", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("search wildcards are literal", func(t *testing.T) {
		rec := env.do(http.MethodGet, "/api/v1/products?q=%25", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody[ListProductsResponse](t, rec).Products)
		rec = env.do(http.MethodGet, "/api/v1/products?q=G_100", "", nil)
		assert.Empty(t, decodeBody[ListProductsResponse](t, rec).Products)
	})

	t.Run("update keeps values when omitted", func(t *testing.T) {
		rec := env.admin(http.MethodPut, "/api/v1/products/"+product.ID, ProductRequest{ModelName: "G-100X", Published: true})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec = env.do(http.MethodGet, "/api/v1/products/by-slug/g-100x", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody[domain.Product](t, rec).Values, 2)
	})

	t.Run("category cannot change", func(t *testing.T) {
		other := env.createCategory("Pumps")
		rec := env.admin(http.MethodPut, "/api/v1/products/"+product.ID, ProductRequest{CategoryID: other.ID, ModelName: "G-100X"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("replace values", func(t *testing.T) {
		rec := env.admin(http.MethodPut, "/api/v1/products/"+product.ID+"/values", ProductValuesRequest{
			Values: map[string]string{power.ID: "120"},
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		values := decodeBody[domain.Product](t, rec).Values
		require.Len(t, values, 1)
		assert.Equal(t, "120", values[0].Value)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.admin(http.MethodDelete, "/api/v1/products/"+product.ID, nil)
		assert.Equal(t, http.StatusNoContent, rec.Code)
		rec = env.admin(http.MethodGet, "/api/v1/products/"+product.ID, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

// =============================================================================
// Content and File Tests
// =============================================================================

func TestFileUploadAndServe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload("logo.png", pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	file := decodeBody[FileResponse](t, rec)
	assert.Equal(t, "logo.png", file.OriginalName)
	assert.Equal(t, "image/png", file.MimeType)
	assert.Equal(t, "/media/"+file.StorageKey, file.URL)

	served := env.do(http.MethodGet, file.URL, "", nil)
	require.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, "image/png", served.Header().Get("Content-Type"))
	assert.Equal(t, pngBytes, served.Body.Bytes())

	rec = env.admin(http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Pumps", FileIDs: []string{file.ID}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	cat := decodeBody[domain.Category](t, rec)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID, "", nil)
	require.Len(t, decodeBody[CategoryResponse](t, rec).Files, 1)

	rec = env.admin(http.MethodGet, "/api/v1/files", nil)
	assert.Equal(t, 1, decodeBody[ListFilesResponse](t, rec).Total)

	rec = env.admin(http.MethodDelete, "/api/v1/files/"+file.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	served = env.do(http.MethodGet, file.URL, "", nil)
	assert.Equal(t, http.StatusNotFound, served.Code)

	rec = env.do(http.MethodGet, "/api/v1/categories/"+cat.ID, "", nil)
	assert.Empty(t, decodeBody[CategoryResponse](t, rec).Files)
}

func TestFileUploadRejections(t *testing.T) {
	env := newTestEnv(t)

	rec := env.upload("notes.txt", []byte("plain text is not allowed"))
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)

	rec = env.upload("big.png", append(pngBytes, bytes.Repeat([]byte{1}, 2<<10)...))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)

	rec = env.upload("empty.png", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/files", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	served := env.do(http.MethodGet, "/media/../etc/passwd", "", nil)
	assert.Equal(t, http.StatusNotFound, served.Code)
}

func TestBackgrounds(t *testing.T) {
	env := newTestEnv(t)

	create := func(title string, active bool) domain.Background {
		rec := env.admin(http.MethodPost, "/api/v1/backgrounds", BackgroundRequest{Section: "Home Hero", Title: title, Active: active})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		return decodeBody[domain.Background](t, rec)
	}
	first := create("First", true)
	second := create("Second", true)
	hidden := create("Hidden", false)
	assert.Equal(t, "home-hero", first.Section)
	assert.Equal(t, 2, second.SerialNo)

	rec := env.do(http.MethodGet, "/api/v1/backgrounds?section=home-hero", "", nil)
	assert.Equal(t, 2, decodeBody[ListBackgroundsResponse](t, rec).Total)
	rec = env.admin(http.MethodGet, "/api/v1/backgrounds?section=home-hero", nil)
	assert.Equal(t, 3, decodeBody[ListBackgroundsResponse](t, rec).Total)

	rec = env.do(http.MethodGet, "/api/v1/backgrounds/"+hidden.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(http.MethodPatch, "/api/v1/backgrounds/"+second.ID+"/serial", MoveRequest{SerialNo: 1})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/v1/backgrounds?section=home-hero", "", nil)
	list := decodeBody[ListBackgroundsResponse](t, rec).Backgrounds
	require.Len(t, list, 2)
	assert.Equal(t, "Second", list[0].Title)

	rec = env.admin(http.MethodPut, "/api/v1/backgrounds/"+hidden.ID, BackgroundRequest{Section: "home-hero", Title: "Shown", Active: true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decodeBody[domain.Background](t, rec).Active)

	rec = env.admin(http.MethodPost, "/api/v1/backgrounds/normalize", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.admin(http.MethodPost, "/api/v1/backgrounds/normalize?section=home-hero", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/backgrounds", BackgroundRequest{Section: "home", Title: "x", FileID: "file_missing"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.admin(http.MethodDelete, "/api/v1/backgrounds/"+first.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

// =============================================================================
// Inquiry Tests
// =============================================================================

func TestContactFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodPost, "/api/v1/contacts", "", ContactRequest{
		FullName: "Jane Doe",
		Email:    "Jane@Example.com",
		Phone:    "+1 555 0100",
		Message:  "Please call me",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contact := decodeBody[domain.Contact](t, rec)
	assert.Equal(t, "jane@example.com", contact.Email)
	assert.Equal(t, domain.InquiryNew, contact.Status)

	rec = env.do(http.MethodPost, "/api/v1/contacts", "", ContactRequest{FullName: "x", Email: "not-an-email", Message: "hi"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "email")

	rec = env.admin(http.MethodGet, "/api/v1/contacts?status=new", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decodeBody[ListContactsResponse](t, rec).Total)

	rec = env.admin(http.MethodGet, "/api/v1/contacts?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.admin(http.MethodPost, "/api/v1/contacts/"+contact.ID+"/replies", ReplyRequest{Subject: "Re: call", Body: "We will call you."})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	reply := decodeBody[domain.Reply](t, rec)
	assert.Equal(t, domain.ReplyPending, reply.Status)
	assert.Equal(t, "jane@example.com", reply.ToEmail)
	assert.Equal(t, int32(1), env.notifier.calls.Load())

	rec = env.admin(http.MethodGet, "/api/v1/contacts/"+contact.ID, nil)
	require.Len(t, decodeBody[domain.Contact](t, rec).Replies, 1)

	rec = env.admin(http.MethodGet, "/api/v1/outbox", nil)
	assert.Equal(t, OutboxResponse{Pending: 1}, decodeBody[OutboxResponse](t, rec))

	rec = env.admin(http.MethodPost, "/api/v1/contacts/con_missing/replies", ReplyRequest{Subject: "x", Body: "y"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.admin(http.MethodDelete, "/api/v1/contacts/"+contact.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestRetryReply(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	rec := env.do(http.MethodPost, "/api/v1/contacts", "", ContactRequest{FullName: "Jane", Email: "jane@example.com", Message: "Hi"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	contact := decodeBody[domain.Contact](t, rec)

	rec = env.admin(http.MethodPost, "/api/v1/contacts/"+contact.ID+"/replies", ReplyRequest{Subject: "Re", Body: "Hello"})
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	reply := decodeBody[domain.Reply](t, rec)

	rec = env.admin(http.MethodPost, "/api/v1/outbox/"+reply.ID+"/retry", nil)
	assert.Equal(t, http.StatusConflict, rec.Code, "pending replies are not retried")

	stored, err := env.store.GetReply(ctx, reply.ID)
	require.NoError(t, err)
	stored.MarkFailed(errors.New("smtp down"), 1, time.Now().UTC())
	require.Equal(t, domain.ReplyFailed, stored.Status)
	require.NoError(t, env.store.UpdateReply(ctx, stored))

	calls := env.notifier.calls.Load()
	rec = env.admin(http.MethodPost, "/api/v1/outbox/"+reply.ID+"/retry", nil)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, domain.ReplyPending, decodeBody[domain.Reply](t, rec).Status)
	assert.Equal(t, calls+1, env.notifier.calls.Load())

	rec = env.admin(http.MethodGet, "/api/v1/outbox", nil)
	assert.Equal(t, OutboxResponse{Pending: 1}, decodeBody[OutboxResponse](t, rec))

	rec = env.admin(http.MethodPost, "/api/v1/outbox/rpl_missing/retry", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodPost, "/api/v1/outbox/"+reply.ID+"/retry", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestInfoRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	cat := env.createCategory("Generators")
	rec := env.admin(http.MethodPost, "/api/v1/products", ProductRequest{CategoryID: cat.ID, ModelName: "G-1", Published: true})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	product := decodeBody[domain.Product](t, rec)

	rec = env.do(http.MethodPost, "/api/v1/info-requests", "", InfoRequestRequest{
		ProductID: product.ID,
		FullName:  "Sam",
		Email:     "sam@example.com",
		Message:   "Price please",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	info := decodeBody[domain.InfoRequest](t, rec)
	require.NotNil(t, info.ProductID)
	assert.Equal(t, product.ID, *info.ProductID)

	rec = env.do(http.MethodPost, "/api/v1/info-requests", "", InfoRequestRequest{
		ProductID: "prd_missing",
		FullName:  "Sam",
		Email:     "sam@example.com",
		Message:   "Price please",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[ErrorResponse](t, rec).Fields, "product_id")

	rec = env.admin(http.MethodPost, "/api/v1/info-requests/"+info.ID+"/replies", ReplyRequest{Subject: "Quote", Body: "Here it is."})
	assert.Equal(t, http.StatusAccepted, rec.Code)

	rec = env.admin(http.MethodGet, "/api/v1/info-requests", nil)
	assert.Equal(t, 1, decodeBody[ListInfoRequestsResponse](t, rec).Total)
}
