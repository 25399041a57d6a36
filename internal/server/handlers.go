package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakwood-commons/tplx/internal/completion"
	"github.com/oakwood-commons/tplx/internal/preview"
)

type categoryInfo struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type catalogResponse struct {
	Version       string             `json:"version"`
	StaticVersion string             `json:"staticVersion"`
	Categories    []categoryInfo     `json:"categories"`
	Tokens        []completion.Token `json:"tokens"`
}

type completeRequest struct {
	Buffer string `json:"buffer"`
	// Cursor defaults to the end of the buffer.
	Cursor   *int `json:"cursor"`
	Selected int  `json:"selectedIndex"`
}

type completeResponse struct {
	Phase    string              `json:"phase"`
	State    completion.State    `json:"state"`
	Dropdown completion.Dropdown `json:"dropdown"`
}

type insertRequest struct {
	Buffer       string `json:"buffer"`
	Cursor       *int   `json:"cursor"`
	TriggerStart *int   `json:"triggerStart"`
	// Token is a placeholder ("{{client_name}}") or bare identifier.
	Token string `json:"token"`
}

type previewRequest struct {
	Template string `json:"template"`
	Data     any    `json:"data"`
	HTML     bool   `json:"html"`
}

type previewResponse struct {
	preview.Result
	HTML string `json:"html,omitempty"`
}

type createSessionResponse struct {
	ID            string `json:"id"`
	CatalogStatus string `json:"catalogStatus"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	cat := s.currentCatalog(r.Context())
	etag := `"` + cat.Version() + `"`
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	resp := catalogResponse{
		Version:       cat.Version(),
		StaticVersion: completion.StaticCatalogVersion,
		Tokens:        cat.Tokens(),
	}
	if q := r.URL.Query().Get("q"); q != "" {
		resp.Tokens = cat.Search(q)
	}
	for _, c := range cat.Categories() {
		resp.Categories = append(resp.Categories, categoryInfo{Name: c, Count: cat.CategoryCount(c)})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	var req completeRequest
	if !decodeBody(w, r, &req) {
		return
	}
	cursor := len(req.Buffer)
	if req.Cursor != nil {
		cursor = *req.Cursor
	}

	sess := completion.NewReadySession(s.currentCatalog(r.Context()))
	sess.Update(req.Buffer, cursor)
	if req.Selected > 0 {
		sess.Hover(req.Selected)
	}
	writeJSON(w, http.StatusOK, completeResponse{
		Phase:    sess.Phase().String(),
		State:    sess.State(),
		Dropdown: sess.Dropdown(),
	})
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if !decodeBody(w, r, &req) {
		return
	}
	tok, ok := s.currentCatalog(r.Context()).Lookup(req.Token)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "unknown token "+req.Token)
		return
	}
	cursor := len(req.Buffer)
	if req.Cursor != nil {
		cursor = *req.Cursor
	}
	var start int
	if req.TriggerStart != nil {
		start = *req.TriggerStart
	} else {
		trig, open := completion.DetectTrigger(req.Buffer, cursor)
		if !open {
			writeError(w, http.StatusUnprocessableEntity, "no open placeholder before the cursor")
			return
		}
		start = trig.Start
	}
	writeJSON(w, http.StatusOK, completion.Insert(req.Buffer, cursor, start, tok))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if !decodeBody(w, r, &req) {
		return
	}
	data := req.Data
	if data == nil {
		data = s.sample
	}
	rnd, err := s.renderer(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	res, err := rnd.Render(req.Template, data)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	resp := previewResponse{Result: res}
	if req.HTML {
		resp.HTML = string(preview.ToHTML(res.Text))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.sessions.List())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	es := NewEditorSession(s.engine, s.log)
	s.sessions.Add(es)
	info := es.Info()
	es.log.V(1).Info("session created", "catalog", info.CatalogStatus)
	writeJSON(w, http.StatusCreated, createSessionResponse{ID: es.ID, CatalogStatus: info.CatalogStatus})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.sessions.Remove(id); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
