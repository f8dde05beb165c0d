package video

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

// ErrProcessamentoFalhou means the remote asset reached the FAILED state —
// a terminal failure, never retried.
var ErrProcessamentoFalhou = errors.New("video: falha no processamento remoto do vídeo")

const (
	geminiModel     = "gemini-2.5-flash"
	pollInterval    = time.Second
	maxPollAttempts = 120
)

// Laudo is the structured verdict contract with the video collaborator.
type Laudo struct {
	ErroIdentificado string   `json:"erro_identificado"`
	Confianca        string   `json:"confianca"`
	SinaisDetectados []string `json:"sinais_detectados"`
	Descricao        string   `json:"descricao"`
}

// Gemini implements the video-understanding collaborator. The multi-step
// remote-asset lifecycle (upload → poll until ready/failed → judge) is
// collapsed into a single blocking Analisar call.
type Gemini struct {
	client *genai.Client
}

// NewGemini returns nil when apiKey is blank — the triage then serves its
// offline fallback text.
func NewGemini(ctx context.Context, apiKey string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("video: gemini client: %w", err)
	}
	return &Gemini{client: client}, nil
}

func (g *Gemini) Analisar(ctx context.Context, videoBytes []byte, prompt string) (Laudo, error) {
	f, err := g.client.Files.Upload(ctx, bytes.NewReader(videoBytes), &genai.UploadFileConfig{
		MIMEType: "video/mp4",
	})
	if err != nil {
		return Laudo{}, fmt.Errorf("video: upload: %w", err)
	}
	defer func() {
		// Remote asset cleanup; survives caller cancellation.
		cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if _, err := g.client.Files.Delete(cleanupCtx, f.Name, nil); err != nil {
			log.Printf("video: delete remote file %s: %v", f.Name, err)
		}
	}()

	for attempt := 0; f.State == genai.FileStateProcessing; attempt++ {
		if attempt >= maxPollAttempts {
			return Laudo{}, fmt.Errorf("video: processamento remoto excedeu o tempo de espera")
		}
		select {
		case <-ctx.Done():
			return Laudo{}, fmt.Errorf("video: aguardando processamento: %w", ctx.Err())
		case <-time.After(pollInterval):
		}
		f, err = g.client.Files.Get(ctx, f.Name, nil)
		if err != nil {
			return Laudo{}, fmt.Errorf("video: get file: %w", err)
		}
	}
	if f.State == genai.FileStateFailed {
		return Laudo{}, ErrProcessamentoFalhou
	}

	parts := []*genai.Part{
		genai.NewPartFromURI(f.URI, f.MIMEType),
		genai.NewPartFromText(prompt),
	}
	resp, err := g.client.Models.GenerateContent(ctx, geminiModel,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil)
	if err != nil {
		return Laudo{}, fmt.Errorf("video: generate content: %w", err)
	}

	return parseLaudo(resp.Text()), nil
}

// parseLaudo decodes the model's JSON verdict. Malformed output degrades to a
// low-confidence unmatched verdict instead of failing the whole call.
func parseLaudo(texto string) Laudo {
	texto = strings.ReplaceAll(texto, "```json", "")
	texto = strings.ReplaceAll(texto, "```", "")
	texto = strings.TrimSpace(texto)

	var laudo Laudo
	if err := json.Unmarshal([]byte(texto), &laudo); err != nil {
		log.Printf("video: laudo fora do contrato, degradando: %v", err)
		return Laudo{Confianca: "baixa", Descricao: texto}
	}
	if laudo.ErroIdentificado == "null" {
		laudo.ErroIdentificado = ""
	}
	return laudo
}
