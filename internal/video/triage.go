// Package video triages customer-uploaded equipment videos: it submits the
// video plus the family's visual-error catalog to the video-understanding
// collaborator and renders the structured verdict into a remediation reply.
// Results are handed back to the caller; this package never persists anything.
package video

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

const (
	maxVideoBytes = 100 << 20 // 100 MiB hard ceiling, checked before any collaborator call

	telefoneContato = "(11) 5677-4699"
)

const fallbackResposta = "⚠️ Não foi possível analisar o vídeo automaticamente.\n\n" +
	"Por favor, descreva o problema que está aparecendo:\n" +
	"- Erro no display?\n" +
	"- Problema de selagem?\n" +
	"- Travamento?\n\n" +
	"Ou ligue: " + telefoneContato

// Analisador is the video-understanding collaborator boundary.
type Analisador interface {
	Analisar(ctx context.Context, videoBytes []byte, prompt string) (Laudo, error)
}

// Triage matches collaborator verdicts against the visual-error catalog.
type Triage struct {
	analisador Analisador // nil when the video service is not configured
}

func NewTriage(a Analisador) *Triage {
	return &Triage{analisador: a}
}

// Disponivel reports whether the video collaborator was configured at startup.
func (t *Triage) Disponivel() bool {
	return t.analisador != nil
}

// Analisar runs one video through triage and returns the customer-facing
// reply. Every failure class maps to a curated message; collaborator
// internals never leak to the customer.
func (t *Triage) Analisar(ctx context.Context, videoBytes []byte, modulo, descricaoCliente string) string {
	if len(videoBytes) == 0 {
		return "Nenhum vídeo fornecido."
	}
	if len(videoBytes) > maxVideoBytes {
		log.Printf("video: recusado, %d bytes acima do limite", len(videoBytes))
		return "Vídeo muito grande (máximo 100MB).\n\nEnvie um vídeo menor ou descreva o problema por texto."
	}

	if t.analisador == nil {
		log.Printf("video: servico nao configurado, usando fallback")
		return fallbackResposta
	}

	erros := catalogoPara(modulo)
	laudo, err := t.analisador.Analisar(ctx, videoBytes, buildPrompt(modulo, erros, descricaoCliente))
	if err != nil {
		log.Printf("video: analise de %s falhou: %v", modulo, err)
		return fallbackResposta
	}

	return formatar(laudo, erros)
}

func buildPrompt(modulo string, erros map[string]ErroVisual, descricao string) string {
	var lista strings.Builder
	for _, codigo := range sortedCodes(erros) {
		e := erros[codigo]
		fmt.Fprintf(&lista, "- %s: %s (sinais: %s)\n", codigo, e.Nome, strings.Join(e.Sinais, ", "))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Você é um técnico especialista em equipamentos Storopack.\n")
	fmt.Fprintf(&b, "Analise este vídeo de um equipamento %s e identifique possíveis erros.\n\n", strings.ToUpper(modulo))
	fmt.Fprintf(&b, "ERROS CONHECIDOS:\n%s\n", lista.String())
	if descricao != "" {
		fmt.Fprintf(&b, "DESCRIÇÃO DO CLIENTE: %s\n\n", descricao)
	}
	b.WriteString(`INSTRUÇÕES:
1. Assista TODO o vídeo com atenção
2. Procure por LEDs acesos, displays com códigos de erro, peças travadas, vazamentos, etc
3. Compare com os erros conhecidos acima

Responda APENAS com JSON válido (sem markdown, sem ` + "```" + `):
{
    "erro_identificado": "codigo_do_erro ou null",
    "confianca": "alta/media/baixa",
    "sinais_detectados": ["sinal1", "sinal2"],
    "descricao": "breve descrição do que foi visto no vídeo"
}`)
	return b.String()
}

// formatar renders the verdict into the fixed reply template.
func formatar(laudo Laudo, erros map[string]ErroVisual) string {
	confianca := strings.ToUpper(laudo.Confianca)
	if confianca == "" {
		confianca = "BAIXA"
	}

	var b strings.Builder
	b.WriteString("ANÁLISE DO VÍDEO\n\n")
	fmt.Fprintf(&b, "Confiança: %s\n\n", confianca)

	if info, ok := erros[laudo.ErroIdentificado]; ok && laudo.ErroIdentificado != "" {
		fmt.Fprintf(&b, "Erro Identificado: %s\n\n", info.Nome)
		if len(laudo.SinaisDetectados) > 0 {
			b.WriteString("Sinais Detectados:\n")
			for _, sinal := range laudo.SinaisDetectados {
				fmt.Fprintf(&b, "- %s\n", sinal)
			}
			b.WriteString("\n")
		}
		b.WriteString("---\n\n")
		fmt.Fprintf(&b, "SOLUÇÃO:\n\n%s\n\n", info.Solucao)
		if info.Video != "" {
			fmt.Fprintf(&b, "Vídeo de apoio:\n%s\n\n", info.Video)
		}
	} else {
		fmt.Fprintf(&b, "Observação: %s\n\n", laudo.Descricao)
		b.WriteString("Não foi possível identificar um erro específico.\n")
		b.WriteString("Por favor, descreva o problema com mais detalhes.\n\n")
	}

	fmt.Fprintf(&b, "Se precisar de ajuda: %s", telefoneContato)
	return b.String()
}

func sortedCodes(erros map[string]ErroVisual) []string {
	codes := make([]string, 0, len(erros))
	for c := range erros {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}
