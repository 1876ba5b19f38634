package internal

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgconfig "github.com/starford/mediastore/pkg/config"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if !cfg.Provider().IsAuthorized(req).IsAuthorized {
		t.Error("disabled mode should authorize everything")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cfg.Provider().IsAuthorized(req).IsAuthorized {
		t.Error("token mode should reject requests without a token")
	}
	req.Header.Set("Authorization", "Bearer mysecret")
	if !cfg.Provider().IsAuthorized(req).IsAuthorized {
		t.Error("token mode should accept the configured token")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_JWTSecret(t *testing.T) {
	short := AuthConfig{Mode: "jwt", JWTSecret: "short"}
	if err := short.Validate(); err == nil {
		t.Error("short jwt secret should fail")
	}
	ok := AuthConfig{Mode: "jwt", JWTSecret: strings.Repeat("k", 32)}
	if err := ok.Validate(); err != nil {
		t.Errorf("jwt mode with long secret should pass: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestRepoConfig_RejectsEscapingSegments(t *testing.T) {
	tests := []RepoConfig{
		{RootPath: "", PublicFolder: "public", MediaRoot: "uploads"},
		{RootPath: ".", PublicFolder: "/abs", MediaRoot: "uploads"},
		{RootPath: ".", PublicFolder: "public", MediaRoot: "../secrets"},
	}
	for _, cfg := range tests {
		if err := cfg.Validate(); err == nil {
			t.Errorf("%+v should fail validation", cfg)
		}
	}
	good := RepoConfig{RootPath: ".", PublicFolder: "static", MediaRoot: ""}
	if err := good.Validate(); err != nil {
		t.Errorf("empty media root should pass: %v", err)
	}
}

func TestMediaConfig_BasePath(t *testing.T) {
	cfg := MediaConfig{BasePath: "api/media"}
	if err := cfg.Validate(); err == nil {
		t.Error("base path without leading slash should fail")
	}
	cfg.BasePath = "/api/media"
	cfg.MaxUploadBytes = -1
	if err := cfg.Validate(); err == nil {
		t.Error("negative upload limit should fail")
	}
}

func TestFullConfig_DefaultsValid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestLoadYAMLWithEnv(t *testing.T) {
	t.Setenv("MEDIASTORE_TEST_TOKEN", "from-env")
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
app:
  log_level: debug
  http:
    port: 9090
repo:
  root_path: /srv/site
  public_folder: static
  media_root: img
media:
  base_path: /media
journal:
  path: /tmp/journal.db
auth:
  mode: token
  token: ${MEDIASTORE_TEST_TOKEN}
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := NewDefaultConfig()
	if err := pkgconfig.Load(path, cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTP.Port != 9090 || cfg.App.LogLevel.String() != "DEBUG" {
		t.Errorf("app = %+v", cfg.App)
	}
	if cfg.Repo.RootPath != "/srv/site" || cfg.Repo.MediaRoot != "img" {
		t.Errorf("repo = %+v", cfg.Repo)
	}
	if cfg.Auth.Token != "from-env" {
		t.Errorf("token = %q", cfg.Auth.Token)
	}
	if cfg.Media.MaxUploadBytes != 50<<20 || !cfg.Watch.Enabled {
		t.Errorf("defaults lost: media = %+v, watch = %+v", cfg.Media, cfg.Watch)
	}
}
