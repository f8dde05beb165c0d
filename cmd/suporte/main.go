package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/storopack-br/suporte/internal/assistant"
	"github.com/storopack-br/suporte/internal/bot"
	"github.com/storopack-br/suporte/internal/config"
	"github.com/storopack-br/suporte/internal/equipment"
	"github.com/storopack-br/suporte/internal/knowledge"
	"github.com/storopack-br/suporte/internal/ticket"
	"github.com/storopack-br/suporte/internal/video"
	"github.com/storopack-br/suporte/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("data dir: %v", err)
	}
	db, err := ticket.Open(cfg.DBPath)
	if err != nil {
		log.Fatalf("ticket: %v", err)
	}
	store := ticket.NewStore(db, cfg.ReferenceLat, cfg.ReferenceLng)

	registry := equipment.NewRegistry(cfg.Equipamentos)

	// Assign into the interface only when configured: a typed nil would make
	// the router believe the AI path is up.
	var consultor knowledge.Consultor
	if c := assistant.New(cfg.OpenAIAPIKey); c != nil {
		consultor = c
	} else {
		log.Println("suporte: OPENAI_API_KEY ausente, respostas offline apenas")
	}

	pp := knowledge.NewPostProcessor(cfg.VideoMarkerMode)
	router := knowledge.NewRouter(registry, consultor, pp)

	var analisador video.Analisador
	gemini, err := video.NewGemini(context.Background(), cfg.GoogleAPIKey)
	if err != nil {
		log.Fatalf("gemini: %v", err)
	}
	if gemini != nil {
		analisador = gemini
	} else {
		log.Println("suporte: GOOGLE_API_KEY ausente, análise de vídeo em modo fallback")
	}
	triage := video.NewTriage(analisador)

	botHandler := bot.NewHandler(router, triage, store)
	webHandler := web.NewHandler(botHandler, cfg.AdminPassword)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: webHandler.Router(),
		// Video uploads are received and analyzed synchronously, so the
		// read/write bounds are generous; slow-header clients still get cut.
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("suporte: listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("suporte: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Println("suporte: stopped")
}
