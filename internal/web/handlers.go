package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"oc-ticketing/internal/admin"
	"oc-ticketing/internal/app"
	"oc-ticketing/internal/logger"
	"oc-ticketing/internal/models"
)

var errBadRequest = errors.New("bad request")

type Handler struct {
	Logger *logger.Logger
}

// decode reads a JSON body into v. An empty body leaves v untouched.
func (h *Handler) decode(r *http.Request, v any) error {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	h.Logger.Warn("HTTP", fmt.Sprintf("%s %s: invalid request body: %v", r.Method, r.URL.Path, err))
	return fmt.Errorf("%w: invalid request body: %v", errBadRequest, err)
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid match id", errBadRequest)
	}
	return id, nil
}

func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	a := fromContext(r.Context())
	if err := a.EnsureStarted(r.Context()); err != nil {
		h.Logger.Warn("SESSION", fmt.Sprintf("Session %s failed to start: %v", a.ID, err))
	}
	ok(w, "state", a.State())
}

func (h *Handler) Navigate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page string `json:"page"`
		Role string `json:"role,omitempty"`
	}
	if err := h.decode(r, &req); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	var payload any
	if req.Role != "" {
		payload = req.Role
	}
	if err := a.Navigate(r.Context(), req.Page, payload); err != nil {
		fail(w, err, "Página no disponible")
		return
	}
	ok(w, "navigated", a.State())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var form app.LoginForm
	if err := h.decode(r, &form); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	if err := a.Login(r.Context(), form); err != nil {
		fail(w, err, "Completa correo y contraseña")
		return
	}
	ok(w, "logged in", a.State())
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var form app.RegisterForm
	if err := h.decode(r, &form); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	if err := a.Register(r.Context(), form); err != nil {
		fail(w, err, "Revisa los datos del registro")
		return
	}
	ok(w, "registered", a.State())
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	a := fromContext(r.Context())
	if err := a.Logout(r.Context()); err != nil {
		fail(w, err, "Error cerrando sesión")
		return
	}
	ok(w, "logged out", a.State())
}

func (h *Handler) SelectMatch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MatchID int64 `json:"matchId"`
	}
	if err := h.decode(r, &req); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	if err := a.SelectMatch(r.Context(), req.MatchID); err != nil {
		fail(w, err, "Partido no disponible")
		return
	}
	ok(w, "match selected", a.State().Purchase)
}

func (h *Handler) SelectSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SectionID int64 `json:"sectionId"`
	}
	if err := h.decode(r, &req); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	if err := a.SelectSection(req.SectionID); err != nil {
		fail(w, err, "Selecciona un partido primero")
		return
	}
	ok(w, "section selected", a.State().Purchase)
}

func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := h.decode(r, &req); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	a := fromContext(r.Context())
	data, err := a.Buy(r.Context(), req.Quantity)
	if err != nil {
		fail(w, err, "Error procesando la compra")
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse("purchase confirmed", data))
}

func (h *Handler) Confirmation(w http.ResponseWriter, r *http.Request) {
	v, err := fromContext(r.Context()).Confirmation()
	if err != nil {
		fail(w, err, "No hay información de compra")
		return
	}
	ok(w, "confirmation", v)
}

func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	png, err := fromContext(r.Context()).QRCode()
	if err != nil {
		fail(w, err, "No hay información de compra")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(png)
}

func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	doc, name, err := fromContext(r.Context()).Receipt(r.Context())
	if err != nil {
		fail(w, err, "Error descargando PDF")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Write(doc)
}

func (h *Handler) SaveReceipt(w http.ResponseWriter, r *http.Request) {
	path, err := fromContext(r.Context()).SaveReceipt(r.Context())
	if err != nil {
		fail(w, err, "Error descargando PDF")
		return
	}
	ok(w, "receipt saved", map[string]string{"path": path})
}

func panel(r *http.Request) *admin.Panel {
	return fromContext(r.Context()).Admin()
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ok(w, "matches", panel(r).Matches())
}

func (h *Handler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var in models.MatchInput
	if err := h.decode(r, &in); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	m, err := panel(r).Create(r.Context(), in)
	if err != nil {
		fail(w, err, "Error creando partido")
		return
	}
	writeJSON(w, http.StatusCreated, SuccessResponse("match created", m))
}

func (h *Handler) BeginEdit(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	d, err := panel(r).BeginEdit(id)
	if err != nil {
		fail(w, err, "Partido no encontrado")
		return
	}
	ok(w, "editing", d)
}

func (h *Handler) Draft(w http.ResponseWriter, r *http.Request) {
	d, pending := panel(r).Draft()
	if !pending {
		fail(w, admin.ErrNoEdit, "No hay edición en curso")
		return
	}
	ok(w, "draft", d)
}

func (h *Handler) SaveEdit(w http.ResponseWriter, r *http.Request) {
	var fields models.MatchUpdate
	if err := h.decode(r, &fields); err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	m, err := panel(r).SaveEdit(r.Context(), fields)
	if err != nil {
		fail(w, err, "Error actualizando partido")
		return
	}
	ok(w, "match updated", m)
}

func (h *Handler) CancelEdit(w http.ResponseWriter, r *http.Request) {
	panel(r).CancelEdit()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	if err := panel(r).Delete(r.Context(), id, confirmed); err != nil {
		fail(w, err, "Error eliminando partido")
		return
	}
	ok(w, "match deleted", panel(r).Matches())
}

func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		fail(w, err, "Solicitud inválida")
		return
	}
	res, err := panel(r).Simulate(id)
	if err != nil {
		fail(w, err, "Partido no encontrado")
		return
	}
	ok(w, "simulated", res)
}

func (h *Handler) Simulations(w http.ResponseWriter, r *http.Request) {
	ok(w, "simulations", panel(r).RecentSimulations())
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	ok(w, "stats", panel(r).Stats())
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ok(w, "report", panel(r).Report())
}

func (h *Handler) Teams(w http.ResponseWriter, r *http.Request) {
	ok(w, "teams", panel(r).Teams())
}

func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	p := panel(r)
	if err := p.Load(r.Context()); err != nil {
		fail(w, err, "Error cargando partidos")
		return
	}
	ok(w, "reloaded", p.Matches())
}
