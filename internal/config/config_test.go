package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VSP_MODE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Mode != ModeLocal {
		t.Errorf("Mode = %q, want %q", cfg.Mode, ModeLocal)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.Addr())
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %q, want memory", cfg.StorageBackend)
	}
	if !cfg.UseMockLLM {
		t.Error("UseMockLLM should default to true in local mode")
	}
	if cfg.SuspenseDelay != 4500*time.Millisecond {
		t.Errorf("SuspenseDelay = %v, want 4.5s", cfg.SuspenseDelay)
	}
	if cfg.GenerationTimeout != 30*time.Second {
		t.Errorf("GenerationTimeout = %v, want 30s", cfg.GenerationTimeout)
	}
	if cfg.GirlfriendName != "Khushbooo" {
		t.Errorf("GirlfriendName = %q", cfg.GirlfriendName)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	t.Setenv("VSP_PORT", "9090")
	t.Setenv("VSP_SUSPENSE_DELAY", "2s")
	t.Setenv("VSP_SENDER_NAME", "Someone")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr() != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.Addr())
	}
	if cfg.SuspenseDelay != 2*time.Second {
		t.Errorf("SuspenseDelay = %v, want 2s", cfg.SuspenseDelay)
	}
	if cfg.SenderName != "Someone" {
		t.Errorf("SenderName = %q", cfg.SenderName)
	}
}

func TestLoad_GCPModeRequiresProject(t *testing.T) {
	t.Setenv("VSP_MODE", "gcp")
	t.Setenv("VSP_GCP_PROJECT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when VSP_GCP_PROJECT is missing in gcp mode")
	}
}

func TestLoad_GCPModeDefaultsToRealLLM(t *testing.T) {
	t.Setenv("VSP_MODE", "gcp")
	t.Setenv("VSP_GCP_PROJECT", "demo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.UseMockLLM {
		t.Error("UseMockLLM should default to false in gcp mode")
	}
}

func TestLoad_FirestoreRequiresProject(t *testing.T) {
	t.Setenv("VSP_STORAGE_BACKEND", "firestore")
	t.Setenv("VSP_GCP_PROJECT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for firestore backend without project")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	t.Setenv("VSP_STORAGE_BACKEND", "postgres")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoad_RealLLMNeedsCredentials(t *testing.T) {
	t.Setenv("VSP_USE_MOCK_LLM", "false")
	t.Setenv("VSP_GENAI_API_KEY", "")
	t.Setenv("VSP_GCP_PROJECT", "")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when no LLM credentials are configured")
	}
}
