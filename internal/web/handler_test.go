package web

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/storopack-br/suporte/internal/bot"
	"github.com/storopack-br/suporte/internal/config"
	"github.com/storopack-br/suporte/internal/equipment"
	"github.com/storopack-br/suporte/internal/knowledge"
	"github.com/storopack-br/suporte/internal/ticket"
	"github.com/storopack-br/suporte/internal/video"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	db, err := ticket.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	store := ticket.NewStore(db, -23.67376, -46.69436)
	registry := equipment.NewRegistry(map[string]config.Equipment{
		"airplus": {Nome: "AIRplus Mini"},
	})
	router := knowledge.NewRouter(registry, nil, knowledge.NewPostProcessor(config.MarkerPassthrough))
	b := bot.NewHandler(router, video.NewTriage(nil), store)
	return NewHandler(b, "senha-teste").Router()
}

func postJSON(t *testing.T, srv http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["assistente"] != "offline" {
		t.Fatalf("assistente = %q, want offline", resp["assistente"])
	}
}

func TestChatEndpoint(t *testing.T) {
	srv := newTestServer(t)
	w := postJSON(t, srv, "/chat", map[string]any{
		"session_id": "s1",
		"mensagem":   "travou o filme",
		"modulo":     "airplus",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Resposta  string `json:"resposta"`
		ChamadoID uint64 `json:"chamado_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.ChamadoID == 0 {
		t.Fatalf("chat should open a chamado")
	}
	if !strings.Contains(resp.Resposta, "AIRplus Mini") {
		t.Fatalf("resposta = %q", resp.Resposta)
	}
}

func TestChatJSONInvalido(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader("{nope"))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestFeedbackChamadoInexistente(t *testing.T) {
	srv := newTestServer(t)
	w := postJSON(t, srv, "/feedback", map[string]any{"chamado_id": 999, "resolvido": true})
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestAnalyzeVideoSemServico(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("video", "v.mp4")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("mp4")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.WriteField("modulo", "airplus"); err != nil {
		t.Fatalf("write field: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/analyze-video", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Não foi possível analisar o vídeo") {
		t.Fatalf("unconfigured video service should serve the fallback: %s", w.Body.String())
	}
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

// An over-limit upload must be cut at the transport, not spooled to disk by
// the multipart parser. The body is streamed, never held in memory.
func TestAnalyzeVideoCorpoAcimaDoLimite(t *testing.T) {
	srv := newTestServer(t)

	head := "--b\r\nContent-Disposition: form-data; name=\"video\"; filename=\"v.mp4\"\r\nContent-Type: video/mp4\r\n\r\n"
	tail := "\r\n--b--\r\n"
	body := io.MultiReader(
		strings.NewReader(head),
		io.LimitReader(zeroReader{}, maxUpload+2<<20),
		strings.NewReader(tail),
	)
	req := httptest.NewRequest(http.MethodPost, "/analyze-video", body)
	req.Header.Set("Content-Type", "multipart/form-data; boundary=b")
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
	if !strings.Contains(w.Body.String(), "muito grande") {
		t.Fatalf("refusal should carry the friendly message: %s", w.Body.String())
	}
}

func TestAdminExigeAutenticacao(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}

func TestAdminLoginETokens(t *testing.T) {
	srv := newTestServer(t)

	w := postJSON(t, srv, "/admin/login", map[string]string{"senha": "errada"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", w.Code)
	}

	w = postJSON(t, srv, "/admin/login", map[string]string{"senha": "senha-teste"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Token == "" {
		t.Fatalf("login should return the session token")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	req.Header.Set("X-Admin-Token", resp.Token)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats with token: status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAdminListarFiltroInvalido(t *testing.T) {
	srv := newTestServer(t)
	token := adminToken(t, srv)

	req := httptest.NewRequest(http.MethodGet, "/admin/chamados?status=fechado", nil)
	req.Header.Set("X-Admin-Token", token)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("invalid status filter: status = %d, want 400", w.Code)
	}
}

func adminToken(t *testing.T, srv http.Handler) string {
	t.Helper()
	w := postJSON(t, srv, "/admin/login", map[string]string{"senha": "senha-teste"})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status = %d", w.Code)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp.Token
}
