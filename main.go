package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
)

func main() {
	configPath := flag.String("config", os.Getenv("XWORD_CONFIG"), "fichier de configuration TOML")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Configuration invalide : %v", err)
	}

	ctx := context.Background()

	backend, closeBackend, err := cfg.OpenStorage(ctx)
	if err != nil {
		log.Fatalf("Impossible d'ouvrir le stockage : %v", err)
	}
	defer closeBackend()
	cfg.logSummary()

	var gemini *GeminiClient
	if cfg.Gemini.ProjectID != "" {
		gemini, err = NewGeminiClient(ctx, cfg.Gemini.ProjectID, cfg.Gemini.Region, cfg.Gemini.Model)
		if err != nil {
			log.Fatalf("Impossible d'initialiser Gemini : %v", err)
		}
		defer gemini.Close()
		log.Printf("Client Gemini initialisé (projet: %s, modèle: %s)", cfg.Gemini.ProjectID, gemini.Model())
	} else {
		log.Println("GCP_PROJECT_ID non défini, import photo désactivé")
	}

	srv := NewServer(NewStore(backend, cfg.AllowNonSquare), gemini)
	defer srv.Close()

	log.Printf("Serveur démarré sur http://localhost:%s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, srv); err != nil {
		log.Fatal(err)
	}
}
