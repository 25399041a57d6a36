package customfields

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSourceArrayBody(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"fieldName":"po_number","fieldLabel":"PO number","isActive":true},{"fieldName":"cost_center","isActive":false}]`))
	}))
	defer srv.Close()

	src := &HTTPSource{BaseURL: srv.URL + "/", Token: "abc"}
	fields, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "/custom-fields", gotPath)
	require.Len(t, fields, 2)
	assert.Equal(t, "PO number", fields[0].FieldLabel)
	assert.False(t, fields[1].IsActive)
}

func TestHTTPSourceEnvelopeBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"data":[{"placeholder":"{{vat_id}}","fieldName":"vat","isActive":true}]}`))
	}))
	defer srv.Close()

	fields, err := (&HTTPSource{BaseURL: srv.URL}).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, fields, 1)
	assert.Equal(t, "{{vat_id}}", fields[0].Placeholder)
}

func TestHTTPSourceStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := (&HTTPSource{BaseURL: srv.URL}).Fetch(context.Background())
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestHTTPSourceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"fieldName":`))
	}))
	defer srv.Close()

	_, err := (&HTTPSource{BaseURL: srv.URL}).Fetch(context.Background())
	assert.ErrorContains(t, err, "decode custom fields")
}

func TestHTTPSourceTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := (&HTTPSource{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Fetch(context.Background())
	assert.Error(t, err)
}

func TestHTTPSourceRequiresURL(t *testing.T) {
	_, err := (&HTTPSource{}).Fetch(context.Background())
	assert.Error(t, err)
}
