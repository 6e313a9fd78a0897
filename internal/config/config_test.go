package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DATABASE_DSN", "PRINTER_TYPE", "PRINTER_WIDTH", "ALLOWED_ORIGINS", "SECRET"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseDSN != "western-data.db" {
		t.Errorf("expected default database file, got %s", cfg.DatabaseDSN)
	}
	if cfg.Printer.Type != "none" || cfg.Printer.Width != 32 {
		t.Errorf("unexpected printer defaults: %+v", cfg.Printer)
	}
	if len(cfg.AllowedOrigins) != 2 {
		t.Errorf("expected 2 default origins, got %v", cfg.AllowedOrigins)
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("HTTP_PORT", "eighty")
	t.Setenv("PRINTER_WIDTH", "-4")
	t.Setenv("ALLOWED_ORIGINS", " http://a , ,http://b")

	cfg := Load()
	if cfg.HTTPPort != "8080" {
		t.Errorf("expected port fallback 8080, got %s", cfg.HTTPPort)
	}
	if cfg.Printer.Width != 32 {
		t.Errorf("expected width fallback 32, got %d", cfg.Printer.Width)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a" || cfg.AllowedOrigins[1] != "http://b" {
		t.Errorf("unexpected origins %v", cfg.AllowedOrigins)
	}
}
