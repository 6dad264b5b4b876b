package config

import (
	"os"
	"strings"
	"testing"
)

func TestPort_Default(t *testing.T) {
	os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("default Port = %d, want %d", cfg.Port(), DefaultPort)
	}
}

func TestPort_FromEnv(t *testing.T) {
	os.Setenv(EnvPort, "9099")
	defer os.Unsetenv(EnvPort)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port() != 9099 {
		t.Errorf("Port = %d, want 9099", cfg.Port())
	}
}

func TestPort_Invalid(t *testing.T) {
	for _, v := range []string{"not-a-number", "0", "70000"} {
		os.Setenv(EnvPort, v)
		if _, err := New(); err == nil {
			t.Errorf("expected error for %s=%q", EnvPort, v)
		}
	}
	os.Unsetenv(EnvPort)
}

func TestDataDirAndDBPath(t *testing.T) {
	os.Setenv(EnvDataDir, "/tmp/storyreel-test")
	defer os.Unsetenv(EnvDataDir)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DataDir() != "/tmp/storyreel-test" {
		t.Errorf("DataDir = %q", cfg.DataDir())
	}
	if !strings.HasSuffix(cfg.DBPath(), DBFilename) {
		t.Errorf("DBPath = %q, want suffix %q", cfg.DBPath(), DBFilename)
	}
}

func TestHeadless(t *testing.T) {
	os.Unsetenv(EnvHeadless)
	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Headless() {
		t.Error("default Headless = true, want false")
	}

	os.Setenv(EnvHeadless, "true")
	defer os.Unsetenv(EnvHeadless)
	cfg, err = New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Headless() {
		t.Error("Headless = false, want true")
	}
}

func TestHeadless_Invalid(t *testing.T) {
	os.Setenv(EnvHeadless, "maybe")
	defer os.Unsetenv(EnvHeadless)

	if _, err := New(); err == nil {
		t.Errorf("expected error for %s=maybe", EnvHeadless)
	}
}

func TestGenBackend(t *testing.T) {
	os.Unsetenv(EnvGenBaseURL)
	os.Unsetenv(EnvGenAPIKey)
	os.Unsetenv(EnvGenModel)
	os.Unsetenv(EnvGenModelPro)

	cfg, err := New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GenBaseURL() != "" || cfg.GenAPIKey() != "" {
		t.Error("generation backend should default to unset")
	}
	if cfg.GenModel() != DefaultGenModel {
		t.Errorf("GenModel = %q, want %q", cfg.GenModel(), DefaultGenModel)
	}
	if cfg.GenModelPro() != DefaultGenModelPro {
		t.Errorf("GenModelPro = %q, want %q", cfg.GenModelPro(), DefaultGenModelPro)
	}

	os.Setenv(EnvGenBaseURL, "https://gen.example.com")
	os.Setenv(EnvGenAPIKey, "secret")
	os.Setenv(EnvGenModel, "frame-gen-custom")
	os.Setenv(EnvGenModelPro, "frame-gen-custom-pro")
	defer func() {
		os.Unsetenv(EnvGenBaseURL)
		os.Unsetenv(EnvGenAPIKey)
		os.Unsetenv(EnvGenModel)
		os.Unsetenv(EnvGenModelPro)
	}()

	cfg, err = New()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GenBaseURL() != "https://gen.example.com" || cfg.GenAPIKey() != "secret" || cfg.GenModel() != "frame-gen-custom" {
		t.Errorf("generation backend not read from env: %q %q %q", cfg.GenBaseURL(), cfg.GenAPIKey(), cfg.GenModel())
	}
	if cfg.GenModelPro() != "frame-gen-custom-pro" {
		t.Errorf("GenModelPro = %q, want override from env", cfg.GenModelPro())
	}
}
