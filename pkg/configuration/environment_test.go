package configuration

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnv_FallsBackToGoModRoot(t *testing.T) {
	tmp := t.TempDir()

	requireWriteFile(t, filepath.Join(tmp, "go.mod"), "module example.com/test\n\ngo 1.24\n")
	requireWriteFile(t, filepath.Join(tmp, ".env.local"), "HR_ONTOLOGY_TEST_ENV_LOAD=ok\n")

	sub := filepath.Join(tmp, "modules", "lake")
	requireMkdirAll(t, sub)
	chdir(t, sub)

	_ = os.Unsetenv("HR_ONTOLOGY_TEST_ENV_LOAD")

	n, err := LoadEnv([]string{".env", ".env.local"})
	if err != nil {
		t.Fatalf("LoadEnv: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 env file loaded, got %d", n)
	}
	if got := os.Getenv("HR_ONTOLOGY_TEST_ENV_LOAD"); got != "ok" {
		t.Fatalf("expected env var loaded from repo root, got %q", got)
	}
}

func TestParse_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	c := &Configuration{}
	if err := c.parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Neo4j.URI != "bolt://localhost:7687" || c.Neo4j.Password != "hr-ontology-dev" {
		t.Errorf("unexpected neo4j defaults: %+v", c.Neo4j)
	}
	if c.Data.Seed != 42 || c.Data.RawDir != "data/raw" || c.Data.LakeDir != "data/lake" {
		t.Errorf("unexpected data defaults: %+v", c.Data)
	}
	if c.LLM.MaxTokens != 4096 || c.LLM.Model != "claude-sonnet-4-6" {
		t.Errorf("unexpected llm defaults: %+v", c.LLM)
	}
	if c.ChatCache.TTL != time.Hour {
		t.Errorf("expected 1h cache ttl, got %s", c.ChatCache.TTL)
	}
	if c.SocketAddress != "localhost:3200" {
		t.Errorf("unexpected socket address %q", c.SocketAddress)
	}
}

func TestParse_Overrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("SEED", "7")
	t.Setenv("NEO4J_URI", "neo4j://graph:7687")
	t.Setenv("GO_APP_ENV", Production)
	t.Setenv("PORT", "8080")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test")

	c := &Configuration{}
	if err := c.parse(nil); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Data.Seed != 7 {
		t.Errorf("expected seed 7, got %d", c.Data.Seed)
	}
	if c.SocketAddress != ":8080" {
		t.Errorf("expected :8080, got %q", c.SocketAddress)
	}
	if got := c.Origins(); len(got) != 2 || got[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", got)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(c *Configuration)
		wantErr bool
	}{
		{"valid", func(c *Configuration) {}, false},
		{"neo4j uri without scheme", func(c *Configuration) { c.Neo4j.URI = "localhost:7687" }, true},
		{"non positive max tokens", func(c *Configuration) { c.LLM.MaxTokens = 0 }, true},
		{"cache without redis", func(c *Configuration) { c.ChatCache.Enabled = true; c.RedisURL = "" }, true},
		{"bad port", func(c *Configuration) { c.ServerPort = 70000 }, true},
		{"redis rate limit without url", func(c *Configuration) { c.RateLimit.Storage = "redis" }, true},
		{"unknown rate limit storage", func(c *Configuration) { c.RateLimit.Storage = "disk" }, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := &Configuration{
				Neo4j:      Neo4jOptions{URI: "bolt://localhost:7687"},
				LLM:        LLMOptions{MaxTokens: 4096},
				RedisURL:   "localhost:6379",
				ServerPort: 3200,
				RateLimit:  RateLimitOptions{GlobalRPS: 50, Storage: "memory"},
			}
			tc.mutate(c)
			if err := c.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestLogrusLogLevel_UnknownFallsBackToError(t *testing.T) {
	c := &Configuration{LogLevel: "verbose"}
	if c.LogrusLogLevel().String() != "error" {
		t.Errorf("expected error level, got %s", c.LogrusLogLevel())
	}
}

func chdir(t *testing.T, dir string) {
	t.Helper()
	origWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(origWd) })
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
}

func requireWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func requireMkdirAll(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
