package config

import (
	"os"
	"strings"
	"testing"
)

// writeTempConfig creates a minimal configuration file required for LoadConfig
// and returns its path.
func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

const minimalYAML = `premiumflow:
  name: "TestApp"
  version: "1.0"
server:
  address: ":3000"
source:
  nse:
    page_url: "https://www.nseindia.com/option-chain"
    api_url: "https://www.nseindia.com/api/option-chain-indices"
    symbol: "NIFTY"
    timeout_ms: 10000
logging:
  level: info
  format: json
  output: stdout
`

func TestLoadConfig(t *testing.T) {
	t.Setenv("NSE_SYMBOL", "")

	path := writeTempConfig(t, minimalYAML)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Premiumflow.Name != "TestApp" {
		t.Errorf("unexpected name: %s", cfg.Premiumflow.Name)
	}
	if cfg.Source.NSE.Symbol != "NIFTY" {
		t.Errorf("unexpected symbol: %s", cfg.Source.NSE.Symbol)
	}
	if cfg.Source.NSE.TimeoutMs != 10000 {
		t.Errorf("unexpected timeout: %d", cfg.Source.NSE.TimeoutMs)
	}
	if cfg.Server.ShutdownTimeoutMs != 5000 {
		t.Errorf("expected default shutdown timeout, got %d", cfg.Server.ShutdownTimeoutMs)
	}
}

func TestLoadConfigSymbolOverride(t *testing.T) {
	t.Setenv("NSE_SYMBOL", "BANKNIFTY")

	path := writeTempConfig(t, minimalYAML)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Source.NSE.Symbol != "BANKNIFTY" {
		t.Errorf("env override not applied: %s", cfg.Source.NSE.Symbol)
	}
}

func TestLoadConfigMissingSymbol(t *testing.T) {
	t.Setenv("NSE_SYMBOL", "")

	content := strings.Replace(minimalYAML, `    symbol: "NIFTY"`+"\n", "", 1)
	path := writeTempConfig(t, content)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing symbol")
	}
}

func TestLoadConfigInvalidURL(t *testing.T) {
	t.Setenv("NSE_SYMBOL", "")

	content := strings.Replace(minimalYAML, "https://www.nseindia.com/option-chain", "not a url", 1)
	path := writeTempConfig(t, content)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid page_url")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does-not-exist.yml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigCloudWatchRegionRequired(t *testing.T) {
	t.Setenv("NSE_SYMBOL", "")
	t.Setenv("AWS_REGION", "")

	content := minimalYAML + `metrics:
  cloudwatch:
    enabled: true
`
	path := writeTempConfig(t, content)
	defer os.Remove(path)

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for missing cloudwatch region")
	}
}
