package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/tplx/internal/completion"
)

func dialSession(t *testing.T, baseURL, id string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/sessions/" + id + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readReply(t *testing.T, conn *websocket.Conn) Reply {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var rep Reply
	require.NoError(t, conn.ReadJSON(&rep))
	return rep
}

func send(t *testing.T, conn *websocket.Conn, ev Event) Reply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(ev))
	return readReply(t, conn)
}

func createSession(t *testing.T, baseURL string) string {
	t.Helper()
	resp := postJSON(t, baseURL+"/api/sessions", struct{}{})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decode[createSessionResponse](t, resp).ID
}

func dialWithOrigin(baseURL, id, origin string) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(baseURL, "http") + "/api/sessions/" + id + "/ws"
	return websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{origin}})
}

func TestWSOriginCheck(t *testing.T) {
	srv := New(completion.NewEngine(nil, nil, logr.Discard()), Options{
		Logger:         logr.Discard(),
		AllowedOrigins: []string{"https://app.example.com/"},
	})
	ts := httptest.NewServer(srv.Routes())
	t.Cleanup(func() {
		ts.Close()
		srv.Sessions().CloseAll()
	})

	tests := []struct {
		name   string
		origin string
		ok     bool
	}{
		{name: "same host", origin: ts.URL, ok: true},
		{name: "allowed origin", origin: "https://app.example.com", ok: true},
		{name: "foreign origin", origin: "https://evil.example.com"},
		{name: "malformed origin", origin: "::"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conn, resp, err := dialWithOrigin(ts.URL, createSession(t, ts.URL), tt.origin)
			if resp != nil && resp.Body != nil {
				resp.Body.Close()
			}
			if !tt.ok {
				require.Error(t, err)
				require.NotNil(t, resp)
				assert.Equal(t, http.StatusForbidden, resp.StatusCode)
				return
			}
			require.NoError(t, err)
			defer conn.Close()
			assert.Equal(t, ReplyState, readReply(t, conn).Type)
		})
	}
}

func TestWSUnknownSession(t *testing.T) {
	_, ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/api/sessions/nope/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWSCompletionFlow(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialSession(t, ts.URL, createSession(t, ts.URL))

	hello := readReply(t, conn)
	assert.Equal(t, ReplyState, hello.Type)
	assert.Equal(t, "ready", hello.CatalogStatus)
	assert.Equal(t, "idle", hello.Phase)

	rep := send(t, conn, Event{Type: EventUpdate, Buffer: "Hi {{client", Cursor: 11})
	assert.Equal(t, ReplyState, rep.Type)
	assert.Equal(t, "matching", rep.Phase)
	require.NotNil(t, rep.Dropdown)
	assert.True(t, rep.Dropdown.Visible)
	assert.Equal(t, "client", rep.Dropdown.SearchTerm)

	rep = send(t, conn, Event{Type: EventDown})
	assert.True(t, rep.Changed)
	assert.Equal(t, 1, rep.State.Selected)

	rep = send(t, conn, Event{Type: EventCommit})
	assert.Equal(t, ReplyInsertion, rep.Type)
	require.NotNil(t, rep.Insertion)
	assert.Equal(t, completion.Insertion{Buffer: "Hi {{client_email}}", Cursor: 19}, *rep.Insertion)
	assert.Equal(t, "idle", rep.Phase)

	// Nothing is open any more, so a second commit is a no-op.
	rep = send(t, conn, Event{Type: EventCommit})
	assert.Equal(t, ReplyState, rep.Type)
	assert.Nil(t, rep.Insertion)
}

func TestWSPickAndCancel(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialSession(t, ts.URL, createSession(t, ts.URL))
	readReply(t, conn)

	send(t, conn, Event{Type: EventUpdate, Buffer: "{{bank", Cursor: 6})
	rep := send(t, conn, Event{Type: EventCancel})
	assert.True(t, rep.Changed)
	assert.False(t, rep.Dropdown.Visible)
	assert.Equal(t, "{{bank", rep.State.Buffer)

	send(t, conn, Event{Type: EventUpdate, Buffer: "{{bank", Cursor: 6})
	rep = send(t, conn, Event{Type: EventPick, Index: 0})
	require.Equal(t, ReplyInsertion, rep.Type)
	assert.Equal(t, "{{bank_name}}", rep.Insertion.Buffer)
}

func TestWSUnknownEvent(t *testing.T) {
	_, ts := newTestServer(t, nil)
	conn := dialSession(t, ts.URL, createSession(t, ts.URL))
	readReply(t, conn)

	rep := send(t, conn, Event{Type: "explode"})
	assert.Equal(t, ReplyError, rep.Type)
	assert.Contains(t, rep.Error, "explode")
}

func TestWSPushesCatalogWhenFetchResolves(t *testing.T) {
	src := gatedSource{
		release: make(chan struct{}),
		fields:  []completion.CustomField{{FieldName: "cost_center", FieldLabel: "Cost center", IsActive: true}},
	}
	_, ts := newTestServer(t, src)
	conn := dialSession(t, ts.URL, createSession(t, ts.URL))

	hello := readReply(t, conn)
	assert.Equal(t, "pending", hello.CatalogStatus)

	rep := send(t, conn, Event{Type: EventUpdate, Buffer: "{{cost", Cursor: 6})
	assert.Equal(t, "matching", rep.Phase)
	assert.False(t, rep.Dropdown.Visible)

	close(src.release)
	pushed := readReply(t, conn)
	assert.Equal(t, ReplyCatalog, pushed.Type)
	assert.Equal(t, "ready", pushed.CatalogStatus)
	require.True(t, pushed.Dropdown.Visible)
	require.Len(t, pushed.State.Filtered, 1)
	assert.Equal(t, "{{cost_center}}", pushed.State.Filtered[0].Value)

	rep = send(t, conn, Event{Type: EventCommit})
	require.Equal(t, ReplyInsertion, rep.Type)
	assert.Equal(t, completion.Insertion{Buffer: "{{cost_center}}", Cursor: 15}, *rep.Insertion)
}

func TestWSClosedWhenSessionDeleted(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	id := createSession(t, ts.URL)
	conn := dialSession(t, ts.URL, id)
	readReply(t, conn)

	require.NoError(t, srv.Sessions().Remove(id))
	assert.Equal(t, ReplyClosed, readReply(t, conn).Type)
}
