package main

import (
	"log"
	"net/http"
	"time"

	"github.com/mshailja29/revisionAI/internal/api"
	"github.com/mshailja29/revisionAI/internal/config"
	"github.com/mshailja29/revisionAI/internal/services"
	"github.com/mshailja29/revisionAI/internal/session"
)

func main() {
	cfg := config.Load()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	pdfService := services.NewPDFService()
	scraperService := services.NewScraperService(httpClient, pdfService)
	resolverService := services.NewResolverService(pdfService, scraperService)
	aiService := services.NewAIService(
		cfg.OpenAIKey,
		cfg.OpenAIModel,
		cfg.LegacyModel,
		cfg.OpenAIEndpoint,
	)
	orchestrator := services.NewOrchestrator(resolverService, aiService, cfg.LegacyMode)

	server := api.NewServer(orchestrator, session.NewManager())
	mux := http.NewServeMux()
	mux.Handle("/api", server.Handler())
	mux.Handle("/api/", server.Handler())

	log.Printf("listening on :%s", cfg.Port)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server failed: %v", err)
	}
}
