package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vovakirdan/gridfolio/internal/autosort"
	"github.com/vovakirdan/gridfolio/internal/board"
	"github.com/vovakirdan/gridfolio/internal/core"
	"github.com/vovakirdan/gridfolio/internal/registry"
)

type ctxKey struct{}

// maxBodyBytes bounds request bodies, including imported layouts.
const maxBodyBytes = 1 << 20

type pointBody struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type viewportBody struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

type layoutResponse struct {
	Widgets    []core.Widget `json:"widgets"`
	Center     pointBody     `json:"center"`
	Viewport   viewportBody  `json:"viewport"`
	Mobile     bool          `json:"mobile"`
	Dragging   bool          `json:"dragging"`
	Resizing   bool          `json:"resizing"`
	ActiveID   string        `json:"activeId,omitempty"`
	Rejected   string        `json:"rejected,omitempty"`
	SwapTarget string        `json:"swapTarget,omitempty"`
	Revision   uint64        `json:"revision"`
}

type pointerDownRequest struct {
	WidgetID    string  `json:"widgetId"`
	Handle      string  `json:"handle"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Interactive bool    `json:"interactive"`
}

type pointerDownResponse struct {
	Started bool           `json:"started"`
	Layout  layoutResponse `json:"layout"`
}

type addWidgetRequest struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

type placementBody struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type autosortResponse struct {
	Placements []placementBody `json:"placements"`
	Layout     layoutResponse  `json:"layout"`
}

type unitsBody struct {
	W int `json:"w"`
	H int `json:"h"`
}

type kindBody struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	MinUnits      unitsBody     `json:"minUnits"`
	DefaultUnits  unitsBody     `json:"defaultUnits"`
	ExpandedUnits *unitsBody    `json:"expandedUnits,omitempty"`
	Multiple      bool          `json:"multiple"`
	Settings      core.Settings `json:"settings,omitempty"`
}

// withSession attaches the caller's session, creating one (and its cookie)
// when the request carries none or an unknown one.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := s.cfg.Server.CookieName
		id := ""
		if c, err := r.Cookie(name); err == nil {
			if _, err := uuid.Parse(c.Value); err == nil {
				id = c.Value
			}
		}
		if id == "" {
			id = uuid.NewString()
			cookie := &http.Cookie{
				Name:     name,
				Value:    id,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			}
			if ttl := s.cfg.Storage.SessionTTL; ttl > 0 {
				cookie.MaxAge = int(ttl.Seconds())
			}
			http.SetCookie(w, cookie)
		}

		sess, err := s.session(r.Context(), id)
		if err != nil {
			s.logger.Error("cannot open session", "session", shortID(id), "err", err)
			writeError(w, http.StatusInternalServerError, codeInternal, "cannot open session")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, sess)))
	})
}

func sessionFrom(r *http.Request) *session {
	return r.Context().Value(ctxKey{}).(*session)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleKinds(w http.ResponseWriter, _ *http.Request) {
	list := registry.List()
	out := make([]kindBody, 0, len(list))
	for _, k := range list {
		def := k.Default()
		kb := kindBody{
			ID:           k.ID,
			Title:        k.Title,
			MinUnits:     unitsBody{W: k.MinUnits.W, H: k.MinUnits.H},
			DefaultUnits: unitsBody{W: def.W, H: def.H},
			Multiple:     k.Multiple,
			Settings:     k.DefaultSettings,
		}
		if k.Expandable() {
			kb.ExpandedUnits = &unitsBody{W: k.ExpandedUnits.W, H: k.ExpandedUnits.H}
		}
		out = append(out, kb)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, layoutOf(sessionFrom(r)))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="layout.json"`)
	if err := sessionFrom(r).store.Export(w); err != nil {
		s.logger.Error("export failed", "err", err)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.engine.Cancel()
	if err := sess.store.Import(http.MaxBytesReader(w, r.Body, maxBodyBytes)); err != nil {
		if errors.Is(err, board.ErrInvalidWidget) || errors.Is(err, board.ErrDuplicateID) {
			writeStoreError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, codeInvalidInput, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func (s *Server) handleViewport(w http.ResponseWriter, r *http.Request) {
	var body viewportBody
	if !decode(w, r, &body) {
		return
	}
	vp := core.Viewport{Width: body.Width, Height: body.Height}
	if !vp.Valid() {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "viewport width and height must be positive")
		return
	}
	sess := sessionFrom(r)
	sess.engine.Cancel()
	sess.store.SetViewport(vp)
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func (s *Server) handlePointerDown(w http.ResponseWriter, r *http.Request) {
	var body pointerDownRequest
	if !decode(w, r, &body) {
		return
	}
	sess := sessionFrom(r)
	started := sess.engine.PointerDown(core.PointerDown{
		WidgetID:    body.WidgetID,
		Handle:      core.ParseHandle(body.Handle),
		X:           body.X,
		Y:           body.Y,
		Interactive: body.Interactive,
	})
	writeJSON(w, http.StatusOK, pointerDownResponse{Started: started, Layout: layoutOf(sess)})
}

func (s *Server) handlePointerMove(w http.ResponseWriter, r *http.Request) {
	var body pointBody
	if !decode(w, r, &body) {
		return
	}
	sess := sessionFrom(r)
	sess.engine.PointerMove(body.X, body.Y)
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func (s *Server) handlePointerUp(w http.ResponseWriter, r *http.Request) {
	var body pointBody
	if !decode(w, r, &body) {
		return
	}
	sess := sessionFrom(r)
	sess.engine.PointerUp(body.X, body.Y)
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func (s *Server) handlePointerCancel(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.engine.Cancel()
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id := chi.URLParam(r, "id")
	if _, ok := sess.store.Get(id); !ok {
		writeStoreError(w, board.ErrUnknownWidget)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"suppress": sess.engine.ShouldSuppressClick(id)})
}

func (s *Server) handleAddWidget(w http.ResponseWriter, r *http.Request) {
	var body addWidgetRequest
	if !decode(w, r, &body) {
		return
	}
	sess := sessionFrom(r)
	sess.engine.Cancel()
	widget, err := sess.store.Add(body.Type, body.X, body.Y)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, widget)
}

func (s *Server) handleRemoveWidget(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.engine.Cancel()
	if err := sess.store.Remove(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var settings core.Settings
	if !decode(w, r, &settings) {
		return
	}
	sess := sessionFrom(r)
	id := chi.URLParam(r, "id")
	if err := sess.store.UpdateSettings(id, settings); err != nil {
		writeStoreError(w, err)
		return
	}
	widget, _ := sess.store.Get(id)
	writeJSON(w, http.StatusOK, widget)
}

func (s *Server) handleWidgetAction(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	id := chi.URLParam(r, "id")

	var apply func() error
	switch chi.URLParam(r, "action") {
	case "lock":
		apply = func() error { return sess.store.SetLocked(id, true) }
	case "unlock":
		apply = func() error { return sess.store.SetLocked(id, false) }
	case "pin":
		apply = func() error { return sess.store.SetPinned(id, true) }
	case "unpin":
		apply = func() error { return sess.store.SetPinned(id, false) }
	case "expand":
		apply = func() error {
			_, err := sess.store.ToggleExpanded(id)
			return err
		}
	default:
		writeError(w, http.StatusNotFound, codeNotFound, "unknown widget action")
		return
	}

	// A drag or resize in progress would commit against the old flags
	sess.engine.Cancel()
	if err := apply(); err != nil {
		writeStoreError(w, err)
		return
	}
	widget, _ := sess.store.Get(id)
	writeJSON(w, http.StatusOK, widget)
}

func (s *Server) handleAutosort(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.engine.Cancel()
	placements := sess.store.Autosort()
	writeJSON(w, http.StatusOK, autosortResponse{
		Placements: placementsOf(placements),
		Layout:     layoutOf(sess),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	sess.engine.Cancel()
	sess.store.ResetDefault()
	writeJSON(w, http.StatusOK, layoutOf(sess))
}

func layoutOf(sess *session) layoutResponse {
	e, st := sess.engine, sess.store
	center := st.Center()
	vp := st.Viewport()
	widgets := e.Widgets()
	if widgets == nil {
		widgets = []core.Widget{}
	}
	return layoutResponse{
		Widgets:    widgets,
		Center:     pointBody{X: center.X, Y: center.Y},
		Viewport:   viewportBody{Width: vp.Width, Height: vp.Height},
		Mobile:     st.Grid().IsMobile(),
		Dragging:   e.IsDragging(),
		Resizing:   e.IsResizing(),
		ActiveID:   e.ActiveID(),
		Rejected:   e.RejectedID(),
		SwapTarget: e.SwapTargetID(),
		Revision:   st.Revision(),
	}
}

func placementsOf(ps []autosort.Placement) []placementBody {
	out := make([]placementBody, len(ps))
	for i, p := range ps {
		out[i] = placementBody{ID: p.ID, Reason: p.Reason.String()}
	}
	return out
}

// decode reads a JSON body into v, writing a 400 response on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidInput, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}
