package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/storopack-br/suporte/internal/ticket"
)

const adminCookie = "admin_token"

// randomToken mints the per-process admin session token. Logging in again
// after a restart is expected.
func randomToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing means the host is broken; refuse to start.
		log.Fatalf("web: random token: %v", err)
	}
	return hex.EncodeToString(b)
}

type loginRequest struct {
	Senha string `json:"senha"`
}

func (h *Handler) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Senha), []byte(h.adminSenha)) != 1 {
		writeError(w, http.StatusUnauthorized, "Senha incorreta")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookie,
		Value:    h.adminToken,
		Path:     "/admin",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(12 * time.Hour),
	})
	writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "token": h.adminToken})
}

// requireAdmin accepts the session token via cookie (browser dashboard) or
// the X-Admin-Token header (scripts).
func (h *Handler) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("X-Admin-Token")
		if token == "" {
			if c, err := r.Cookie(adminCookie); err == nil {
				token = c.Value
			}
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) != 1 {
			writeError(w, http.StatusUnauthorized, "Não autorizado")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.bot.Estatisticas(r.Context())
	if err != nil {
		writeStoreError(w, "admin stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) handleAdminListar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ticket.Filtro{
		Status:        ticket.Status(q.Get("status")),
		ModuloPrefixo: q.Get("modulo"),
		Cidade:        q.Get("cidade"),
		Limite:        parseIntParam(q.Get("per_page")),
		Offset:        parseIntParam(q.Get("offset")),
	}
	if f.Status != "" && !f.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Status inválido")
		return
	}
	var err error
	if f.De, err = parseDateParam(q.Get("de")); err != nil {
		writeError(w, http.StatusBadRequest, "Data 'de' inválida (use AAAA-MM-DD)")
		return
	}
	if f.Ate, err = parseDateParam(q.Get("ate")); err != nil {
		writeError(w, http.StatusBadRequest, "Data 'ate' inválida (use AAAA-MM-DD)")
		return
	}

	chamados, total, err := h.bot.ListarChamados(r.Context(), f)
	if err != nil {
		writeStoreError(w, "admin listar", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"chamados": chamados,
		"total":    total,
	})
}

func (h *Handler) handleAdminBuscar(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.bot.BuscarChamado(r.Context(), id)
	if err != nil {
		writeStoreError(w, "admin buscar", err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

type statusRequest struct {
	Status ticket.Status `json:"status"`
}

func (h *Handler) handleAdminStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Status inválido")
		return
	}

	c, err := h.bot.AlterarStatus(r.Context(), id, req.Status)
	if err != nil {
		writeStoreError(w, "admin status", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "chamado": c})
}

func (h *Handler) handleAdminAcionarTecnico(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	c, err := h.bot.AcionarTecnico(r.Context(), id)
	if err != nil {
		writeStoreError(w, "admin acionar técnico", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "chamado": c})
}

type resolverTecnicoRequest struct {
	Observacao string `json:"observacao"`
}

func (h *Handler) handleAdminResolverTecnico(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var req resolverTecnicoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	c, err := h.bot.ResolverPorTecnico(r.Context(), id, req.Observacao)
	if err != nil {
		writeStoreError(w, "admin resolver técnico", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "chamado": c})
}

func (h *Handler) handleAdminExcluir(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	if err := h.bot.ExcluirChamado(r.Context(), id); err != nil {
		writeStoreError(w, "admin excluir", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sucesso": true})
}

func (h *Handler) handleAdminPendentes(w http.ResponseWriter, r *http.Request) {
	chamados, err := h.bot.PendentesTecnico(r.Context())
	if err != nil {
		writeStoreError(w, "admin pendentes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"chamados": chamados})
}

func parseID(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id == 0 {
		writeError(w, http.StatusBadRequest, "ID inválido")
		return 0, false
	}
	return id, true
}

func parseIntParam(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseDateParam(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
