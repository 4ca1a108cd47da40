package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.Port != 5432 {
		t.Fatalf("unexpected database port: %d", cfg.Database.Port)
	}
	if cfg.Store.ReviewCascade != "preserve" {
		t.Fatalf("unexpected review cascade default: %q", cfg.Store.ReviewCascade)
	}
}

func TestLoadReviewCascadeFromEnv(t *testing.T) {
	t.Setenv("REVIEW_CASCADE", "detach")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Store.ReviewCascade != "detach" {
		t.Fatalf("unexpected review cascade: %q", cfg.Store.ReviewCascade)
	}
}

func TestLoadRejectsUnknownReviewCascade(t *testing.T) {
	t.Setenv("REVIEW_CASCADE", "drop")

	if _, err := Load(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		Name:     "reviews",
		User:     "app",
		Password: "secret",
		SSLMode:  "require",
	}
	want := "host=db.internal port=5433 user=app password=secret dbname=reviews sslmode=require"
	if got := d.DSN(); got != want {
		t.Fatalf("unexpected dsn: %q", got)
	}
}
