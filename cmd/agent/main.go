package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/storyreel/storyreel-agent/internal/api"
	"github.com/storyreel/storyreel-agent/internal/config"
	"github.com/storyreel/storyreel-agent/internal/db"
	"github.com/storyreel/storyreel-agent/internal/genai"
	"github.com/storyreel/storyreel-agent/internal/logging"
	"github.com/storyreel/storyreel-agent/internal/packaging"
	"github.com/storyreel/storyreel-agent/internal/store"
	"github.com/storyreel/storyreel-agent/internal/studio"
	"github.com/storyreel/storyreel-agent/internal/ui"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("fatal error: %v", err)
	}
}

func run() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting storyreel agent", "version", config.Version, "data_dir", cfg.DataDir())

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := store.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("║                   STORYREEL AGENT v0.1.0                  ║")
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    http://127.0.0.1:%-27d ║\n", cfg.Port())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Printf("║  Device ID:  %-45s ║\n", deviceID[:16]+"...")
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	var genClient genai.Client
	if cfg.GenBaseURL() != "" && cfg.GenAPIKey() != "" {
		genClient = genai.NewHTTPClient(cfg.GenBaseURL(), cfg.GenAPIKey(), cfg.GenModel(), logger)
		logger.Info("image generation enabled",
			"base_url", cfg.GenBaseURL(),
			"model", cfg.GenModel(),
			"api_key", logging.SanitizeToken(cfg.GenAPIKey()),
		)
	} else {
		genClient = genai.NewStubClient(logger)
		logger.Info("no generation backend configured, renders will use placeholder frames")
	}

	st := studio.New(repo, genClient, studio.Models{
		Standard: cfg.GenModel(),
		Pro:      cfg.GenModelPro(),
	}, logger)
	if err := st.Load(context.Background()); err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}

	packager := packaging.New(logger)

	apiServer := api.NewServer(api.ServerConfig{
		Port:       cfg.Port(),
		Studio:     st,
		Packager:   packager,
		Repository: repo,
		Logger:     logger,
		StartTime:  startTime,
		DeviceID:   deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Studio: st,
			Logger: logger,
			OnExportPackage: func() error {
				return exportPackageToDisk(st, packager, cfg.DataDir(), logger)
			},
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func exportPackageToDisk(st *studio.Studio, packager *packaging.Packager, dataDir string, logger *slog.Logger) error {
	seq := st.Snapshot()
	path := filepath.Join(dataDir, fmt.Sprintf("%s_package_%d.zip", seq.Name, time.Now().Unix()))

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create package file: %w", err)
	}
	defer f.Close()

	if err := packager.WritePackage(f, seq, seq.Name); err != nil {
		return err
	}
	logger.Info("package exported from tray", "path", path)
	return nil
}

func ensureDeviceID(repo store.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo store.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
