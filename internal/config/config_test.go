package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("STORAGE_BUCKET", "")
	t.Setenv("CORS_ORIGINS", "")

	cfg := Load()
	if cfg.Port != "8081" {
		t.Errorf("port: got %q, want %q", cfg.Port, "8081")
	}
	if cfg.Storage.Bucket != "shirts" {
		t.Errorf("bucket: got %q, want %q", cfg.Storage.Bucket, "shirts")
	}
	if len(cfg.CORSOrigins) != 1 {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("STORAGE_USE_SSL", "true")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("LOG_PRETTY", "not-a-bool")

	cfg := Load()
	if cfg.Port != "9000" {
		t.Errorf("port: got %q, want %q", cfg.Port, "9000")
	}
	if !cfg.Storage.UseSSL {
		t.Error("expected UseSSL true")
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("cors origins: got %v", cfg.CORSOrigins)
	}
	if cfg.LogPretty {
		t.Error("invalid bool should fall back to false")
	}
}
