package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/storopack-br/suporte/internal/assistant"
	"github.com/storopack-br/suporte/internal/equipment"
)

// Consultor is the AI collaborator boundary: one bounded question/answer
// round trip against an equipment-specific assistant.
type Consultor interface {
	Perguntar(ctx context.Context, assistantID, pergunta string) (string, error)
}

// Router decides between the AI-backed path and the offline table and
// post-processes whatever comes back. Stateless after construction.
type Router struct {
	registry  *equipment.Registry
	consultor Consultor // nil when the AI path is not configured
	pp        *PostProcessor
}

func NewRouter(registry *equipment.Registry, consultor Consultor, pp *PostProcessor) *Router {
	return &Router{registry: registry, consultor: consultor, pp: pp}
}

// Disponivel reports whether the AI path was configured at startup.
func (r *Router) Disponivel() bool {
	return r.consultor != nil
}

// Responder produces the reply for one chat turn. It never returns an error:
// every failure class has a curated user-facing message or routes to the
// offline table.
func (r *Router) Responder(ctx context.Context, pergunta, modulo, nomeCliente, telefoneCliente string) string {
	pergunta = strings.TrimSpace(pergunta)
	if pergunta == "" {
		saudacao := "Oi"
		if nomeCliente != "" {
			saudacao += " " + strings.Fields(nomeCliente)[0]
		}
		return saudacao + "!\n\nDescreva o problema do equipamento."
	}

	if modulo == "" {
		return "Por favor, selecione o equipamento no menu."
	}

	binding, ok := r.registry.Resolve(modulo)
	if !ok {
		log.Printf("router: modulo %q nao reconhecido", modulo)
		return fmt.Sprintf("Equipamento '%s' não reconhecido. Selecione um equipamento válido.", modulo)
	}

	if r.consultor == nil || !binding.Usable() {
		if r.consultor == nil {
			log.Printf("router: AI nao configurada, usando resposta offline")
		} else {
			log.Printf("router: %s sem assistente configurado, usando resposta offline", binding.Key)
		}
		return r.offline(pergunta, binding)
	}

	texto, err := r.consultor.Perguntar(ctx, binding.AssistantID, pergunta)
	if err != nil {
		if errors.Is(err, assistant.ErrRateLimited) {
			log.Printf("router: rate limit no assistente de %s", binding.Nome)
			return "Muitas requisições. Tente novamente em alguns segundos."
		}
		log.Printf("router: assistente de %s falhou, usando offline: %s", binding.Nome, truncate(err.Error(), 300))
		return r.offline(pergunta, binding)
	}

	// Inject before RewriteMarkers so an appended marker is still expanded
	// when inline mode is on.
	texto = Clean(texto)
	texto = InjectMarker(texto)
	return r.pp.RewriteMarkers(texto)
}

func (r *Router) offline(pergunta string, binding equipment.Binding) string {
	resposta := respostaOffline(pergunta, binding.Nome)
	return r.pp.RewriteMarkers(Clean(resposta))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
