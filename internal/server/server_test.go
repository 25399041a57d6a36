package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tplx/internal/completion"
)

type gatedSource struct {
	release chan struct{}
	fields  []completion.CustomField
}

func (g gatedSource) Fetch(ctx context.Context) ([]completion.CustomField, error) {
	select {
	case <-g.release:
		return g.fields, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type fixedSource []completion.CustomField

func (f fixedSource) Fetch(context.Context) ([]completion.CustomField, error) { return f, nil }

func newTestServer(t *testing.T, src completion.FieldSource) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(completion.NewEngine(nil, src, logr.Discard()), Options{Logger: logr.Discard()})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		srv.Sessions().CloseAll()
	})
	return srv, ts
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestHealthz(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestCatalogETag(t *testing.T) {
	_, ts := newTestServer(t, fixedSource{{FieldName: "po_number", FieldLabel: "PO number"}})

	resp, err := http.Get(ts.URL + "/api/catalog")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	body := decode[catalogResponse](t, resp)
	assert.Equal(t, `"`+body.Version+`"`, etag)
	assert.Equal(t, completion.StaticCatalogVersion, body.StaticVersion)
	assert.Len(t, body.Tokens, len(completion.StaticCatalog())+1)
	last := body.Categories[len(body.Categories)-1]
	assert.Equal(t, categoryInfo{Name: completion.CategoryCustomFields, Count: 1}, last)

	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/catalog", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	cached, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cached.Body.Close()
	assert.Equal(t, http.StatusNotModified, cached.StatusCode)
}

func TestCatalogSearch(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/catalog?q=swift")
	require.NoError(t, err)
	defer resp.Body.Close()

	body := decode[catalogResponse](t, resp)
	require.Len(t, body.Tokens, 1)
	assert.Equal(t, "{{swift_code}}", body.Tokens[0].Value)
}

func TestCatalogIsCachedUntilTTL(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	now := time.Unix(1000, 0)
	srv.now = func() time.Time { return now }

	first := srv.currentCatalog(context.Background())
	assert.Same(t, first, srv.currentCatalog(context.Background()))

	now = now.Add(2 * defaultCatalogTTL)
	assert.NotSame(t, first, srv.currentCatalog(context.Background()))
}

func TestComplete(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/api/complete", map[string]any{"buffer": "Dear {{cli", "selectedIndex": 1})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[completeResponse](t, resp)
	assert.Equal(t, "matching", body.Phase)
	assert.True(t, body.State.Active)
	assert.Equal(t, completion.Trigger{Start: 5, Term: "cli"}, body.State.Trigger)
	require.NotEmpty(t, body.State.Filtered)
	assert.Equal(t, "{{client_name}}", body.State.Filtered[0].Value)
	assert.True(t, body.Dropdown.Visible)
	assert.Equal(t, 1, body.Dropdown.Selected)
	assert.Equal(t, 5, body.Dropdown.Anchor.Column)
}

func TestCompleteWithoutTrigger(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp := postJSON(t, ts.URL+"/api/complete", map[string]any{"buffer": "Dear {{client_name}}", "cursor": 3})
	body := decode[completeResponse](t, resp)
	assert.Equal(t, "idle", body.Phase)
	assert.False(t, body.Dropdown.Visible)
}

func TestCompleteRejectsBadJSON(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Post(ts.URL+"/api/complete", "application/json", strings.NewReader("{"))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "invalid JSON body")
}

func TestInsert(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/insert", map[string]any{"buffer": "Hi {{na", "token": "client_name"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, completion.Insertion{Buffer: "Hi {{client_name}}", Cursor: 18}, decode[completion.Insertion](t, resp))

	resp = postJSON(t, ts.URL+"/api/insert", map[string]any{
		"buffer": "Ref: {{inv, thanks", "cursor": 10, "triggerStart": 5, "token": "{{invoice_number}}",
	})
	assert.Equal(t, "Ref: {{invoice_number}}, thanks", decode[completion.Insertion](t, resp).Buffer)
}

func TestInsertErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/insert", map[string]any{"buffer": "{{", "token": "nope"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	resp = postJSON(t, ts.URL+"/api/insert", map[string]any{"buffer": "plain", "token": "client_name"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, decode[errorResponse](t, resp).Error, "no open placeholder")
}

func TestPreview(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/preview", map[string]any{
		"template": "Dear **{{client_name}}** {{nope}}",
		"data":     map[string]any{"client": map[string]any{"name": "Ada"}},
		"html":     true,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[previewResponse](t, resp)
	assert.Equal(t, "Dear **Ada** {{nope}}", body.Text)
	assert.Equal(t, 1, body.Replaced)
	assert.Equal(t, []string{"nope"}, body.Unknown)
	assert.Contains(t, body.HTML, "<strong>Ada</strong>")
}

func TestSessionLifecycle(t *testing.T) {
	srv, ts := newTestServer(t, nil)

	resp := postJSON(t, ts.URL+"/api/sessions", struct{}{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[createSessionResponse](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, "ready", created.CatalogStatus)
	assert.Equal(t, 1, srv.Sessions().Len())

	list, err := http.Get(ts.URL + "/api/sessions")
	require.NoError(t, err)
	defer list.Body.Close()
	infos := decode[[]SessionInfo](t, list)
	require.Len(t, infos, 1)
	assert.Equal(t, created.ID, infos[0].ID)

	del := func() int {
		req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/sessions/"+created.ID, nil)
		require.NoError(t, err)
		r, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		r.Body.Close()
		return r.StatusCode
	}
	assert.Equal(t, http.StatusNoContent, del())
	assert.Equal(t, http.StatusNotFound, del())
	assert.Equal(t, 0, srv.Sessions().Len())
}
