package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadUsesDefaultsAndYAMLOverrides(t *testing.T) {
	clearConfigEnv(t)

	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")
	yaml := `
http:
  addr: ":9090"
moderation:
  auto_approve_emails:
    - trusted@example.com
notify:
  buffer_size: 128
limits:
  engage_per_minute: 30
cleanup:
  retention: 168h
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.HTTP.Addr != ":9090" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTP.Addr)
	}
	if len(cfg.Moderation.AutoApproveEmails) != 1 || cfg.Moderation.AutoApproveEmails[0] != "trusted@example.com" {
		t.Fatalf("unexpected auto approve emails: %v", cfg.Moderation.AutoApproveEmails)
	}
	if cfg.Notify.BufferSize != 128 {
		t.Fatalf("unexpected notify buffer size: %d", cfg.Notify.BufferSize)
	}
	if cfg.Limits.EngagePerMinute != 30 {
		t.Fatalf("unexpected engage_per_minute: %d", cfg.Limits.EngagePerMinute)
	}
	if cfg.Cleanup.Retention.String() != "168h0m0s" {
		t.Fatalf("unexpected cleanup retention: %s", cfg.Cleanup.Retention)
	}

	if cfg.Limits.EngagePer10Sec != 15 {
		t.Fatalf("engage_per_10sec default should stay 15, got %d", cfg.Limits.EngagePer10Sec)
	}
	if cfg.Notify.SendTimeout.String() != "10s" {
		t.Fatalf("notify send_timeout default should stay 10s, got %s", cfg.Notify.SendTimeout)
	}
}

func TestLoadDefaultsWhenFileMissing(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load config with missing file: %v", err)
	}

	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("unexpected default http addr: %s", cfg.HTTP.Addr)
	}
	if cfg.Limits.EngagePerMinute != 60 || cfg.Limits.EngagePer10Sec != 15 {
		t.Fatalf("unexpected limit defaults: %d/%d", cfg.Limits.EngagePerMinute, cfg.Limits.EngagePer10Sec)
	}
	if cfg.Cleanup.Interval.String() != "24h0m0s" {
		t.Fatalf("unexpected default cleanup interval: %s", cfg.Cleanup.Interval)
	}
	if len(cfg.Moderation.AutoApproveEmails) != 0 {
		t.Fatalf("auto approve list should default empty, got %v", cfg.Moderation.AutoApproveEmails)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearConfigEnv(t)
	t.Setenv("AUTO_APPROVE_EMAILS", "a@example.com, b@example.com")
	t.Setenv("ENGAGE_PER_MINUTE", "5")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Moderation.AutoApproveEmails) != 2 {
		t.Fatalf("unexpected auto approve emails: %v", cfg.Moderation.AutoApproveEmails)
	}
	if cfg.Moderation.AutoApproveEmails[1] != "b@example.com" {
		t.Fatalf("list entries should be trimmed, got %q", cfg.Moderation.AutoApproveEmails[1])
	}
	if cfg.Limits.EngagePerMinute != 5 {
		t.Fatalf("unexpected engage_per_minute override: %d", cfg.Limits.EngagePerMinute)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_ENV",
		"HTTP_ADDR",
		"HTTP_READ_TIMEOUT",
		"HTTP_WRITE_TIMEOUT",
		"HTTP_IDLE_TIMEOUT",
		"LOG_LEVEL",
		"POSTGRES_DSN",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"REDIS_DB",
		"S3_ENDPOINT",
		"S3_ACCESS_KEY",
		"S3_SECRET_KEY",
		"S3_BUCKET",
		"S3_USE_SSL",
		"JWT_SECRET",
		"JWT_ACCESS_TTL",
		"PUSH_CREDENTIALS_FILE",
		"AUTO_APPROVE_EMAILS",
		"NOTIFY_BUFFER_SIZE",
		"NOTIFY_SEND_TIMEOUT",
		"ENGAGE_PER_MINUTE",
		"ENGAGE_PER_10SEC",
		"CLEANUP_INTERVAL",
		"CLEANUP_RETENTION",
	} {
		t.Setenv(key, "")
	}
}
