// Package bot orchestrates one support interaction end to end: ticket
// creation/continuation, answer production and persistence of both turns.
// It is transport-independent; the HTTP layer is thin glue over it.
package bot

import (
	"context"
	"fmt"

	"github.com/storopack-br/suporte/internal/knowledge"
	"github.com/storopack-br/suporte/internal/ticket"
	"github.com/storopack-br/suporte/internal/video"
)

type Handler struct {
	router *knowledge.Router
	triage *video.Triage
	store  *ticket.Store
}

func NewHandler(router *knowledge.Router, triage *video.Triage, store *ticket.Store) *Handler {
	return &Handler{router: router, triage: triage, store: store}
}

// ChatRequest is one inbound chat turn. ChamadoID zero means a new
// conversation; optional fields are empty/nil when the frontend did not
// collect them.
type ChatRequest struct {
	SessionID       string
	ChamadoID       uint64
	Mensagem        string
	Modulo          string
	Cidade          string
	Latitude        *float64
	Longitude       *float64
	NomeCliente     string
	TelefoneCliente string
}

type ChatResult struct {
	Resposta  string
	ChamadoID uint64
}

// Conversar runs one chat turn: create or continue the chamado, produce the
// answer, persist both turns. Persistence failures propagate — silently
// losing a support interaction is not acceptable. The answer itself never
// fails: the router degrades to curated fallbacks.
func (h *Handler) Conversar(ctx context.Context, req ChatRequest) (*ChatResult, error) {
	chamadoID := req.ChamadoID
	if chamadoID == 0 {
		c, err := h.store.Criar(ctx, ticket.NovoChamado{
			SessionID:       req.SessionID,
			NomeCliente:     req.NomeCliente,
			TelefoneCliente: req.TelefoneCliente,
			Modulo:          req.Modulo,
			Cidade:          req.Cidade,
			Latitude:        req.Latitude,
			Longitude:       req.Longitude,
		})
		if err != nil {
			return nil, fmt.Errorf("bot: abrir chamado: %w", err)
		}
		chamadoID = c.ID
	}

	if err := h.store.AnexarMensagem(ctx, chamadoID, ticket.MensagemUsuario, req.Mensagem); err != nil {
		return nil, fmt.Errorf("bot: gravar pergunta: %w", err)
	}

	resposta := h.router.Responder(ctx, req.Mensagem, req.Modulo, req.NomeCliente, req.TelefoneCliente)

	if err := h.store.AnexarMensagem(ctx, chamadoID, ticket.MensagemAssistente, resposta); err != nil {
		return nil, fmt.Errorf("bot: gravar resposta: %w", err)
	}

	return &ChatResult{Resposta: resposta, ChamadoID: chamadoID}, nil
}

// AnalisarVideo triages an uploaded video. The outcome is returned to the
// caller and not persisted here.
func (h *Handler) AnalisarVideo(ctx context.Context, videoBytes []byte, modulo, descricao string) string {
	return h.triage.Analisar(ctx, videoBytes, modulo, descricao)
}

func (h *Handler) RegistrarFeedback(ctx context.Context, chamadoID uint64, resolvido bool, comentario string) (*ticket.Chamado, error) {
	return h.store.RegistrarFeedback(ctx, chamadoID, resolvido, comentario)
}

func (h *Handler) AcionarTecnico(ctx context.Context, chamadoID uint64) (*ticket.Chamado, error) {
	return h.store.AcionarTecnico(ctx, chamadoID)
}

func (h *Handler) ResolverPorTecnico(ctx context.Context, chamadoID uint64, observacao string) (*ticket.Chamado, error) {
	return h.store.ResolverPorTecnico(ctx, chamadoID, observacao)
}

func (h *Handler) BuscarChamado(ctx context.Context, chamadoID uint64) (*ticket.Chamado, error) {
	return h.store.Buscar(ctx, chamadoID)
}

func (h *Handler) ListarChamados(ctx context.Context, f ticket.Filtro) ([]ticket.Chamado, int64, error) {
	return h.store.Listar(ctx, f)
}

func (h *Handler) Estatisticas(ctx context.Context) (*ticket.Estatisticas, error) {
	return h.store.Estatisticas(ctx)
}

func (h *Handler) PendentesTecnico(ctx context.Context) ([]ticket.Chamado, error) {
	return h.store.PendentesTecnico(ctx)
}

func (h *Handler) AlterarStatus(ctx context.Context, chamadoID uint64, status ticket.Status) (*ticket.Chamado, error) {
	return h.store.AlterarStatus(ctx, chamadoID, status)
}

func (h *Handler) ExcluirChamado(ctx context.Context, chamadoID uint64) error {
	return h.store.Excluir(ctx, chamadoID)
}

func (h *Handler) SalvarContato(ctx context.Context, sessionID, nome, telefone string) error {
	return h.store.SalvarContato(ctx, sessionID, nome, telefone)
}

// SalvarLocalizacao appends the sample to the session log and, when a chamado
// is given, writes the recomputed distance back to it.
func (h *Handler) SalvarLocalizacao(ctx context.Context, sessionID string, chamadoID uint64, lat, lng float64) error {
	if sessionID != "" {
		if err := h.store.RegistrarLocalizacao(ctx, sessionID, lat, lng); err != nil {
			return err
		}
	}
	if chamadoID != 0 {
		return h.store.AtualizarLocalizacao(ctx, chamadoID, lat, lng)
	}
	return nil
}

// AssistenteDisponivel feeds the health endpoint.
func (h *Handler) AssistenteDisponivel() bool {
	return h.router.Disponivel()
}
