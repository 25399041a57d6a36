package server

import (
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/oakwood-commons/tplx/pkg/logger"
)

// checkOrigin accepts clients that send no Origin header, pages served from
// the same host, and the configured allowed origins ("*" allows any).
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	if strings.EqualFold(u.Host, r.Host) {
		return true
	}
	for _, allowed := range s.allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimSuffix(allowed, "/"), origin) {
			return true
		}
	}
	return false
}

// handleWS drives one editor session. Every client event gets exactly one
// reply; a catalog reply is pushed when the custom-field fetch resolves.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	es, err := s.sessions.Get(id)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error(err, "websocket upgrade failed", logger.SessionIDKey, id)
		return
	}
	defer conn.Close()
	lgr := s.log.WithValues(logger.SessionIDKey, id)

	// gorilla/websocket allows one concurrent writer.
	var writeMu sync.Mutex
	write := func(rep Reply) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(rep)
	}

	if err := write(es.Snapshot(ReplyState)); err != nil {
		return
	}

	connDone := make(chan struct{})
	defer close(connDone)
	go func() {
		for {
			select {
			case <-es.Changed():
				if err := write(es.Snapshot(ReplyCatalog)); err != nil {
					return
				}
			case <-es.Done():
				_ = write(Reply{Type: ReplyClosed})
				_ = conn.Close()
				return
			case <-connDone:
				return
			}
		}
	}()

	for {
		var ev Event
		if err := conn.ReadJSON(&ev); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lgr.V(1).Info("websocket closed", "error", err.Error())
			}
			return
		}
		if err := write(es.Apply(ev)); err != nil {
			lgr.V(1).Info("websocket write failed", "error", err.Error())
			return
		}
	}
}
