package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/sheasmith19/ezapp/internal/api"
	"github.com/sheasmith19/ezapp/internal/auth"
	"github.com/sheasmith19/ezapp/internal/config"
	"github.com/sheasmith19/ezapp/internal/library"
	"github.com/sheasmith19/ezapp/internal/storage"
	"github.com/sheasmith19/ezapp/internal/versioning"
)

func main() {
	cfg := config.MustLoad()
	logger := cfg.Log.NewLogger(os.Stdout)
	slog.SetDefault(logger)
	log.Printf("api bootstrapped with storage root=%s git=%t mirror=%q", cfg.Storage.Root, cfg.Git.Enabled, cfg.Storage.Mirror)

	store, err := storage.NewFileStore(cfg.Storage.Root)
	if err != nil {
		log.Fatalf("init file store: %v", err)
	}

	var committer versioning.Committer = versioning.NopCommitter{}
	if cfg.Git.Enabled {
		committer = versioning.NewGitCommitter(cfg.Git.AuthorName, cfg.Git.AuthorEmail)
	}

	var mirror storage.Mirror
	if strings.EqualFold(cfg.Storage.Mirror, config.MirrorMinIO) {
		m, err := storage.NewMinIOMirror(context.Background(), cfg.MinIO)
		if err != nil {
			log.Fatalf("init minio mirror: %v", err)
		}
		mirror = m
		log.Printf("minio mirror ready bucket=%s", cfg.MinIO.Bucket)
	}

	verifier, err := auth.NewVerifier(cfg.Auth)
	if err != nil {
		log.Fatalf("init token verifier: %v", err)
	}

	lib := library.NewService(store, committer, mirror, logger)

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, lib, verifier)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)
	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
