package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("Expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.Environment != "development" {
		t.Errorf("Expected default environment development, got %s", cfg.Server.Environment)
	}
	if cfg.Database.Name != "ai_ops_inbox" {
		t.Errorf("Expected default db name ai_ops_inbox, got %s", cfg.Database.Name)
	}
	if cfg.Webhook.TaskURL != "" {
		t.Errorf("Expected task webhook URL to default empty, got %s", cfg.Webhook.TaskURL)
	}
	if cfg.Webhook.Timeout != 15*time.Second {
		t.Errorf("Expected default webhook timeout 15s, got %v", cfg.Webhook.Timeout)
	}
	if cfg.Webhook.MaxTries != 3 {
		t.Errorf("Expected default webhook max tries 3, got %d", cfg.Webhook.MaxTries)
	}
	if !cfg.RateLimit.Enabled {
		t.Error("Expected rate limiting enabled by default")
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	os.Setenv("PORT", "9090")
	os.Setenv("N8N_TASK_WEBHOOK_URL", "https://n8n.example.com/webhook/task")
	os.Setenv("N8N_CHAT_WEBHOOK_URL", "https://n8n.example.com/webhook/chat")
	os.Setenv("APP_BASE_URL", "https://inbox.example.com")
	os.Setenv("WEBHOOK_TIMEOUT", "5s")
	defer func() {
		os.Unsetenv("PORT")
		os.Unsetenv("N8N_TASK_WEBHOOK_URL")
		os.Unsetenv("N8N_CHAT_WEBHOOK_URL")
		os.Unsetenv("APP_BASE_URL")
		os.Unsetenv("WEBHOOK_TIMEOUT")
	}()

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("Expected port 9090, got %s", cfg.Server.Port)
	}
	if cfg.Webhook.TaskURL != "https://n8n.example.com/webhook/task" {
		t.Errorf("Unexpected task webhook URL: %s", cfg.Webhook.TaskURL)
	}
	if cfg.Webhook.ChatURL != "https://n8n.example.com/webhook/chat" {
		t.Errorf("Unexpected chat webhook URL: %s", cfg.Webhook.ChatURL)
	}
	if cfg.Webhook.AppBaseURL != "https://inbox.example.com" {
		t.Errorf("Unexpected app base URL: %s", cfg.Webhook.AppBaseURL)
	}
	if cfg.Webhook.Timeout != 5*time.Second {
		t.Errorf("Expected webhook timeout 5s, got %v", cfg.Webhook.Timeout)
	}
}

func TestLoadConfigProductionRequiresDBPassword(t *testing.T) {
	os.Setenv("ENVIRONMENT", "production")
	defer os.Unsetenv("ENVIRONMENT")

	if _, err := LoadConfig(); err == nil {
		t.Error("Expected error when production has no database password")
	}

	os.Setenv("DB_PASSWORD", "secret")
	defer os.Unsetenv("DB_PASSWORD")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed with password set: %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("Expected IsProduction to be true")
	}
}

func TestAddrHelpers(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.GetServerAddr() != "localhost:8080" {
		t.Errorf("Unexpected server addr: %s", cfg.GetServerAddr())
	}
	if cfg.GetRedisAddr() != "localhost:6379" {
		t.Errorf("Unexpected redis addr: %s", cfg.GetRedisAddr())
	}
}
