package config

import (
	"testing"
	"time"
)

func TestParseList(t *testing.T) {
	if got := parseList(""); got != nil {
		t.Fatalf("expected nil for empty input, got %v", got)
	}

	got := parseList(" http://a.test , ,http://b.test")
	if len(got) != 2 || got[0] != "http://a.test" || got[1] != "http://b.test" {
		t.Fatalf("unexpected origins: %v", got)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AUTH_PROVIDER", "")
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("JWT_EXPIRY_HOURS", "")
	t.Setenv("MAX_UPLOAD_SIZE_MB", "")
	t.Setenv("LLM_API_URL", "https://llm.test/v1/")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := Load()

	if cfg.AuthProvider != AuthProviderLocal {
		t.Errorf("AuthProvider = %q, want %q", cfg.AuthProvider, AuthProviderLocal)
	}
	if cfg.StorageDriver != StorageDriverGridFS {
		t.Errorf("StorageDriver = %q, want %q", cfg.StorageDriver, StorageDriverGridFS)
	}
	if cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("JWTExpiry = %v", cfg.JWTExpiry)
	}
	if cfg.MaxUploadBytes != 10*1024*1024 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.LLMAPIURL != "https://llm.test/v1" {
		t.Errorf("LLMAPIURL = %q, trailing slash should be trimmed", cfg.LLMAPIURL)
	}
	if cfg.TrustedProxies != nil {
		t.Errorf("TrustedProxies = %v, want none", cfg.TrustedProxies)
	}
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "Yes")
	if !getEnvBool("X_FLAG", false) {
		t.Error("expected true for Yes")
	}
	t.Setenv("X_FLAG", "nope")
	if getEnvBool("X_FLAG", true) {
		t.Error("expected false for unrecognised value")
	}
	t.Setenv("X_FLAG", "")
	if !getEnvBool("X_FLAG", true) {
		t.Error("expected fallback for empty value")
	}
}
