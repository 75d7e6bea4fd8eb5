package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":8080" {
		t.Fatalf("http_addr=%s", cfg.Server.HTTPAddr)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("log level=%s", cfg.Log.Level)
	}
	if cfg.Directory.Timeout != 10*time.Second {
		t.Fatalf("directory timeout=%s", cfg.Directory.Timeout)
	}
	if cfg.Notify.RetainDelivered != 24*time.Hour {
		t.Fatalf("retain_delivered=%s", cfg.Notify.RetainDelivered)
	}
	if cfg.Notify.DispatchBatch != 100 {
		t.Fatalf("dispatch_batch=%d", cfg.Notify.DispatchBatch)
	}
	if len(cfg.Oracle.ResolverAccounts) != 0 {
		t.Fatalf("resolver_accounts=%v", cfg.Oracle.ResolverAccounts)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("ORACLE_SERVER_HTTP_ADDR", ":9090")
	t.Setenv("ORACLE_NOTIFY_WEBHOOK_URL", "http://hooks.local/oracle")

	cfg, err := Load("", true)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.HTTPAddr != ":9090" {
		t.Fatalf("http_addr=%s want env override", cfg.Server.HTTPAddr)
	}
	if cfg.Notify.WebhookURL != "http://hooks.local/oracle" {
		t.Fatalf("webhook_url=%s", cfg.Notify.WebhookURL)
	}
}
