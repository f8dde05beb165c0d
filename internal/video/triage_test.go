package video

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeAnalisador struct {
	laudo   Laudo
	err     error
	chamado bool
	prompt  string
}

func (f *fakeAnalisador) Analisar(ctx context.Context, videoBytes []byte, prompt string) (Laudo, error) {
	f.chamado = true
	f.prompt = prompt
	return f.laudo, f.err
}

func TestAnalisarSemVideo(t *testing.T) {
	tr := NewTriage(&fakeAnalisador{})
	if got := tr.Analisar(context.Background(), nil, "airplus", ""); got != "Nenhum vídeo fornecido." {
		t.Fatalf("got %q", got)
	}
}

func TestAnalisarVideoGrande(t *testing.T) {
	fake := &fakeAnalisador{}
	tr := NewTriage(fake)

	got := tr.Analisar(context.Background(), make([]byte, maxVideoBytes+1), "airplus", "")
	if !strings.Contains(got, "muito grande") {
		t.Fatalf("oversized video should be refused, got %q", got)
	}
	if fake.chamado {
		t.Fatalf("oversized video must never reach the collaborator")
	}
}

func TestAnalisarSemServico(t *testing.T) {
	tr := NewTriage(nil)
	got := tr.Analisar(context.Background(), []byte("mp4"), "airplus", "")
	if got != fallbackResposta {
		t.Fatalf("missing collaborator should serve the fallback, got %q", got)
	}
	if tr.Disponivel() {
		t.Fatalf("triage without collaborator should report unavailable")
	}
}

func TestAnalisarErroDoServico(t *testing.T) {
	tr := NewTriage(&fakeAnalisador{err: errors.New("upload falhou")})
	got := tr.Analisar(context.Background(), []byte("mp4"), "airplus", "")
	if got != fallbackResposta {
		t.Fatalf("collaborator failure should serve the fallback, got %q", got)
	}
	if strings.Contains(got, "upload falhou") {
		t.Fatalf("internals leaked to the customer: %q", got)
	}
}

func TestAnalisarErroIdentificado(t *testing.T) {
	fake := &fakeAnalisador{laudo: Laudo{
		ErroIdentificado: "E1",
		Confianca:        "alta",
		SinaisDetectados: []string{"LED vermelho aceso", "display mostrando E1"},
	}}
	tr := NewTriage(fake)

	got := tr.Analisar(context.Background(), []byte("mp4"), "airplus_void", "a luz pisca")
	if !strings.Contains(got, "Confiança: ALTA") {
		t.Fatalf("confidence missing: %q", got)
	}
	if !strings.Contains(got, "Erro de Sensor de Filme") {
		t.Fatalf("matched error name missing: %q", got)
	}
	if !strings.Contains(got, "- LED vermelho aceso") {
		t.Fatalf("detected signals missing: %q", got)
	}
	if !strings.Contains(got, "SOLUÇÃO:") {
		t.Fatalf("remediation missing: %q", got)
	}
	if !strings.Contains(got, telefoneContato) {
		t.Fatalf("support phone missing: %q", got)
	}
	if !strings.Contains(fake.prompt, "DESCRIÇÃO DO CLIENTE: a luz pisca") {
		t.Fatalf("customer description should enter the prompt: %q", fake.prompt)
	}
}

func TestAnalisarSemCorrespondencia(t *testing.T) {
	fake := &fakeAnalisador{laudo: Laudo{
		Confianca: "baixa",
		Descricao: "vídeo escuro, nada visível",
	}}
	tr := NewTriage(fake)

	got := tr.Analisar(context.Background(), []byte("mp4"), "airplus", "")
	if !strings.Contains(got, "vídeo escuro, nada visível") {
		t.Fatalf("observation missing: %q", got)
	}
	if !strings.Contains(got, "Não foi possível identificar um erro específico.") {
		t.Fatalf("unmatched verdict text missing: %q", got)
	}
}

func TestCatalogoPara(t *testing.T) {
	if erros := catalogoPara("airplus_void"); erros == nil {
		t.Fatalf("compound key should resolve to the airplus family")
	}
	if erros := catalogoPara("PAPERPLUS_TRACK"); erros == nil {
		t.Fatalf("family lookup should be case-insensitive")
	}
	if erros := catalogoPara("coolpack"); erros != nil {
		t.Fatalf("unknown family should have no catalog")
	}
}

func TestParseLaudo(t *testing.T) {
	laudo := parseLaudo("```json\n{\"erro_identificado\": \"E3\", \"confianca\": \"media\"}\n```")
	if laudo.ErroIdentificado != "E3" || laudo.Confianca != "media" {
		t.Fatalf("fenced JSON should parse: %+v", laudo)
	}

	laudo = parseLaudo("{\"erro_identificado\": \"null\", \"confianca\": \"baixa\"}")
	if laudo.ErroIdentificado != "" {
		t.Fatalf("string null should normalize to empty, got %q", laudo.ErroIdentificado)
	}
}

func TestParseLaudoMalformado(t *testing.T) {
	laudo := parseLaudo("não consegui analisar o vídeo")
	if laudo.Confianca != "baixa" {
		t.Fatalf("malformed verdict should degrade to low confidence: %+v", laudo)
	}
	if laudo.Descricao != "não consegui analisar o vídeo" {
		t.Fatalf("raw text should be kept as description: %+v", laudo)
	}
	if laudo.ErroIdentificado != "" {
		t.Fatalf("malformed verdict should not match an error: %+v", laudo)
	}
}
