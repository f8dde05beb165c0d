// Package web is the HTTP surface: JSON endpoints for the customer chat
// frontend plus a password-gated admin API. It is thin glue over bot.Handler.
package web

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/storopack-br/suporte/internal/bot"
	"github.com/storopack-br/suporte/internal/ticket"
)

// maxUpload bounds how much of a video upload is read into memory. Uploads
// above the triage limit are rejected there with a friendly message, so this
// only needs to be slightly larger.
const maxUpload = 100<<20 + 1

type Handler struct {
	bot        *bot.Handler
	adminSenha string
	adminToken string
}

func NewHandler(b *bot.Handler, adminSenha string) *Handler {
	return &Handler{
		bot:        b,
		adminSenha: adminSenha,
		adminToken: randomToken(),
	}
}

// Router builds the chi router with all routes mounted.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.handleHealth)
	r.Post("/chat", h.handleChat)
	r.Post("/feedback", h.handleFeedback)
	r.Post("/analyze-video", h.handleAnalyzeVideo)
	r.Post("/registrar-contato", h.handleRegistrarContato)
	r.Post("/salvar-localizacao", h.handleSalvarLocalizacao)

	r.Post("/admin/login", h.handleAdminLogin)
	r.Group(func(r chi.Router) {
		r.Use(h.requireAdmin)
		r.Get("/admin/stats", h.handleAdminStats)
		r.Get("/admin/chamados", h.handleAdminListar)
		r.Get("/admin/chamados/{id}", h.handleAdminBuscar)
		r.Put("/admin/chamados/{id}/status", h.handleAdminStatus)
		r.Post("/admin/chamados/{id}/acionar-tecnico", h.handleAdminAcionarTecnico)
		r.Post("/admin/chamados/{id}/resolver-tecnico", h.handleAdminResolverTecnico)
		r.Delete("/admin/chamados/{id}", h.handleAdminExcluir)
		r.Get("/admin/pendentes-tecnico", h.handleAdminPendentes)
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "offline"
	if h.bot.AssistenteDisponivel() {
		status = "ok"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "ok",
		"assistente": status,
	})
}

type chatRequest struct {
	SessionID       string   `json:"session_id"`
	ChamadoID       uint64   `json:"chamado_id"`
	Mensagem        string   `json:"mensagem"`
	Modulo          string   `json:"modulo"`
	Cidade          string   `json:"cidade"`
	Latitude        *float64 `json:"latitude"`
	Longitude       *float64 `json:"longitude"`
	NomeCliente     string   `json:"nome_cliente"`
	TelefoneCliente string   `json:"telefone_cliente"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}

	res, err := h.bot.Conversar(r.Context(), bot.ChatRequest{
		SessionID:       req.SessionID,
		ChamadoID:       req.ChamadoID,
		Mensagem:        req.Mensagem,
		Modulo:          req.Modulo,
		Cidade:          req.Cidade,
		Latitude:        req.Latitude,
		Longitude:       req.Longitude,
		NomeCliente:     req.NomeCliente,
		TelefoneCliente: req.TelefoneCliente,
	})
	if err != nil {
		log.Printf("web: chat: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro ao processar mensagem")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"resposta":   res.Resposta,
		"chamado_id": res.ChamadoID,
	})
}

type feedbackRequest struct {
	ChamadoID  uint64 `json:"chamado_id"`
	Resolvido  bool   `json:"resolvido"`
	Comentario string `json:"comentario"`
}

func (h *Handler) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.ChamadoID == 0 {
		writeError(w, http.StatusBadRequest, "chamado_id obrigatório")
		return
	}

	c, err := h.bot.RegistrarFeedback(r.Context(), req.ChamadoID, req.Resolvido, req.Comentario)
	if err != nil {
		writeStoreError(w, "feedback", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sucesso": true, "chamado": c})
}

func (h *Handler) handleAnalyzeVideo(w http.ResponseWriter, r *http.Request) {
	// Cut oversized bodies at the transport before multipart parsing spools
	// them to disk; 1 MiB of slack covers the other form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge,
				"Vídeo muito grande (máximo 100MB).\n\nEnvie um vídeo menor ou descreva o problema por texto.")
			return
		}
		writeError(w, http.StatusBadRequest, "Formulário multipart inválido")
		return
	}

	file, _, err := r.FormFile("video")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Campo 'video' obrigatório")
		return
	}
	defer file.Close()

	// Triage rejects anything over its own ceiling; cap the read just above it.
	videoBytes, err := io.ReadAll(io.LimitReader(file, maxUpload))
	if err != nil {
		log.Printf("web: analyze-video: ler upload: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro ao ler o vídeo")
		return
	}

	modulo := r.FormValue("modulo")
	descricao := r.FormValue("descricao")

	resposta := h.bot.AnalisarVideo(r.Context(), videoBytes, modulo, descricao)
	writeJSON(w, http.StatusOK, map[string]string{"resposta": resposta})
}

type contatoRequest struct {
	SessionID string `json:"session_id"`
	Nome      string `json:"nome"`
	Telefone  string `json:"telefone"`
}

func (h *Handler) handleRegistrarContato(w http.ResponseWriter, r *http.Request) {
	var req contatoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id obrigatório")
		return
	}

	if err := h.bot.SalvarContato(r.Context(), req.SessionID, req.Nome, req.Telefone); err != nil {
		log.Printf("web: registrar-contato: %v", err)
		writeError(w, http.StatusInternalServerError, "Erro ao salvar contato")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sucesso": true})
}

type localizacaoRequest struct {
	SessionID string  `json:"session_id"`
	ChamadoID uint64  `json:"chamado_id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (h *Handler) handleSalvarLocalizacao(w http.ResponseWriter, r *http.Request) {
	var req localizacaoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "JSON inválido")
		return
	}
	if req.SessionID == "" && req.ChamadoID == 0 {
		writeError(w, http.StatusBadRequest, "session_id ou chamado_id obrigatório")
		return
	}

	if err := h.bot.SalvarLocalizacao(r.Context(), req.SessionID, req.ChamadoID, req.Latitude, req.Longitude); err != nil {
		writeStoreError(w, "salvar-localizacao", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"sucesso": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"erro": msg})
}

// writeStoreError maps store errors onto HTTP: unknown chamado is the
// caller's fault, anything else is ours.
func writeStoreError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, ticket.ErrChamadoNaoEncontrado) {
		writeError(w, http.StatusNotFound, "Chamado não encontrado")
		return
	}
	log.Printf("web: %s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "Erro interno")
}
