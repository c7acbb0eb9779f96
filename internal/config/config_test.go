package config

import (
	"strings"
	"testing"
)

func TestResolveLiteral(t *testing.T) {
	got, err := Resolve("wx2421b1c4370ec43b")
	if err != nil {
		t.Fatalf("resolve literal: %v", err)
	}
	if got != "wx2421b1c4370ec43b" {
		t.Fatalf("expected literal passthrough, got %q", got)
	}
}

func TestResolveIndirection(t *testing.T) {
	t.Setenv("WXGATE_TEST_SECRET", "192006250b4c09247ec02edce69f6a2d")

	got, err := Resolve("$WXGATE_TEST_SECRET")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "192006250b4c09247ec02edce69f6a2d" {
		t.Fatalf("expected env value, got %q", got)
	}

	got, err = Resolve("${WXGATE_TEST_SECRET}")
	if err != nil {
		t.Fatalf("resolve braced: %v", err)
	}
	if got != "192006250b4c09247ec02edce69f6a2d" {
		t.Fatalf("expected env value, got %q", got)
	}
}

func TestResolveFallbackDefault(t *testing.T) {
	got, err := Resolve("$WXGATE_TEST_UNSET:-sandbox-key")
	if err != nil {
		t.Fatalf("resolve with default: %v", err)
	}
	if got != "sandbox-key" {
		t.Fatalf("expected fallback default, got %q", got)
	}

	t.Setenv("WXGATE_TEST_SET", "real-key")
	got, err = Resolve("$WXGATE_TEST_SET:-sandbox-key")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got != "real-key" {
		t.Fatalf("expected env value over default, got %q", got)
	}
}

func TestResolveMissingWithoutDefault(t *testing.T) {
	if _, err := Resolve("$WXGATE_TEST_DEFINITELY_UNSET"); err == nil {
		t.Fatalf("expected unresolved indirection to fail")
	}
}

func TestLoadMissingCredentials(t *testing.T) {
	t.Setenv("WXGATE_APPID", "")
	t.Setenv("WXGATE_MCH_ID", "")
	t.Setenv("WXGATE_API_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatalf("expected missing credentials to fail startup")
	}
	for _, name := range []string{"appid", "mch_id", "apikey"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("expected %q in error, got %v", name, err)
		}
	}
}

func TestLoadResolvesIndirectCredentials(t *testing.T) {
	t.Setenv("PROD_APPID", "wx2421b1c4370ec43b")
	t.Setenv("WXGATE_APPID", "$PROD_APPID")
	t.Setenv("WXGATE_MCH_ID", "10000100")
	t.Setenv("WXGATE_API_KEY", "$PROD_API_KEY:-192006250b4c09247ec02edce69f6a2d")
	t.Setenv("WXGATE_ENV", "sandbox")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.AppID != "wx2421b1c4370ec43b" {
		t.Fatalf("expected indirect appid, got %q", cfg.AppID)
	}
	if cfg.APIKey != "192006250b4c09247ec02edce69f6a2d" {
		t.Fatalf("expected defaulted apikey, got %q", cfg.APIKey)
	}
	if !cfg.IsSandbox() {
		t.Fatalf("expected sandbox environment")
	}
}

func TestLoadRejectsUnknownEnvironment(t *testing.T) {
	t.Setenv("WXGATE_APPID", "wx2421b1c4370ec43b")
	t.Setenv("WXGATE_MCH_ID", "10000100")
	t.Setenv("WXGATE_API_KEY", "192006250b4c09247ec02edce69f6a2d")
	t.Setenv("WXGATE_ENV", "staging")

	if _, err := Load(); err == nil {
		t.Fatalf("expected unknown environment to fail")
	}
}
