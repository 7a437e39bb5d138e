package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("REGION", "")
	t.Setenv("MAX_CONCURRENCY", "")

	cfg := Load()
	if cfg.Region != "Massachusetts" {
		t.Errorf("Region: got %q, want %q", cfg.Region, "Massachusetts")
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency: got %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.DataSource != SourceFile {
		t.Errorf("DataSource: got %q, want %q", cfg.DataSource, SourceFile)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("REGION", "Vermont")
	t.Setenv("MAX_CONCURRENCY", "9")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := Load()
	if cfg.Region != "Vermont" {
		t.Errorf("Region: got %q, want %q", cfg.Region, "Vermont")
	}
	if cfg.MaxConcurrency != 9 {
		t.Errorf("MaxConcurrency: got %d, want 9", cfg.MaxConcurrency)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("MaxRetries: got %d, want fallback 3", cfg.MaxRetries)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "shop", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=shop sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN: got %q, want %q", got, want)
	}
}
