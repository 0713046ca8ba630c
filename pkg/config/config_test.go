package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type testSettings struct {
	Name  string `default:"whatsup"`
	Port  string `default:"5000" env:"PORT"`
	Debug bool

	Source struct {
		Location string        `default:"data/events.csv"`
		Timeout  time.Duration `default:"10s"`
	}

	Limiter struct {
		Max int `default:"20"`
	}
}

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func newTestConfig(env map[string]string) *Config {
	return New(&Settings{
		Environment: "test",
		ENVPrefix:   "WHATSUP",
		Lookup:      lookupFrom(env),
	})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	var cfg testSettings
	if err := newTestConfig(nil).Load(&cfg, filepath.Join(t.TempDir(), "missing.yml")); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "whatsup" || cfg.Port != "5000" || cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
	if cfg.Source.Location != "data/events.csv" || cfg.Source.Timeout != 10*time.Second {
		t.Fatalf("Source = %+v", cfg.Source)
	}
	if cfg.Limiter.Max != 20 {
		t.Fatalf("Limiter.Max = %d, want 20", cfg.Limiter.Max)
	}
}

func TestLoadYAMLFileWithEnvironmentVariant(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := writeFile(t, dir, "config.yml", "port: \"8080\"\nsource:\n  location: https://example.com/events.csv\n")
	writeFile(t, dir, "config.test.yml", "source:\n  timeout: 3s\n")

	var cfg testSettings
	if err := newTestConfig(nil).Load(&cfg, file); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Source.Location != "https://example.com/events.csv" {
		t.Fatalf("Source.Location = %q", cfg.Source.Location)
	}
	if cfg.Source.Timeout != 3*time.Second {
		t.Fatalf("Source.Timeout = %v, want 3s", cfg.Source.Timeout)
	}
	if cfg.Name != "whatsup" {
		t.Fatalf("Name = %q, default lost", cfg.Name)
	}
}

func TestLoadTOMLAndJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tomlFile := writeFile(t, dir, "config.toml", "Port = \"7000\"\n[Limiter]\nMax = 5\n")
	jsonFile := writeFile(t, dir, "config.json", `{"Name": "from-json"}`)

	var cfg testSettings
	if err := newTestConfig(nil).Load(&cfg, tomlFile, jsonFile); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "7000" || cfg.Limiter.Max != 5 || cfg.Name != "from-json" {
		t.Fatalf("cfg = %+v", cfg)
	}
}

func TestLoadExtensionlessFile(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "whatsuprc", "Name = \"toml-without-extension\"\n")

	var cfg testSettings
	if err := newTestConfig(nil).Load(&cfg, file); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "toml-without-extension" {
		t.Fatalf("Name = %q", cfg.Name)
	}
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "config.yml", "port: \"8080\"\n")
	env := map[string]string{
		"PORT":                    "9090",
		"WHATSUP_DEBUG":           "true",
		"WHATSUP_SOURCE_LOCATION": "/srv/events.csv",
		"WHATSUP_Source_Timeout":  "1m",
		"WHATSUP_LIMITER_MAX":     "100",
	}

	var cfg testSettings
	if err := newTestConfig(env).Load(&cfg, file); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != "9090" {
		t.Fatalf("Port = %q, want 9090", cfg.Port)
	}
	if !cfg.Debug {
		t.Fatal("Debug = false, want true")
	}
	if cfg.Source.Location != "/srv/events.csv" || cfg.Source.Timeout != time.Minute {
		t.Fatalf("Source = %+v", cfg.Source)
	}
	if cfg.Limiter.Max != 100 {
		t.Fatalf("Limiter.Max = %d, want 100", cfg.Limiter.Max)
	}
}

func TestLoadDisabledPrefix(t *testing.T) {
	t.Parallel()

	c := New(&Settings{ENVPrefix: "-", Lookup: lookupFrom(map[string]string{"NAME": "bare"})})

	var cfg testSettings
	if err := c.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "bare" {
		t.Fatalf("Name = %q, want bare", cfg.Name)
	}
}

func TestLoadRequired(t *testing.T) {
	t.Parallel()

	var cfg struct {
		Token string `required:"true"`
	}
	err := newTestConfig(nil).Load(&cfg)
	if err == nil || !strings.Contains(err.Error(), "Token is required") {
		t.Fatalf("Load() error = %v, want required error", err)
	}

	if err := newTestConfig(map[string]string{"WHATSUP_TOKEN": "secret"}).Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Token != "secret" {
		t.Fatalf("Token = %q", cfg.Token)
	}
}

func TestLoadUnmatchedKeys(t *testing.T) {
	t.Parallel()

	file := writeFile(t, t.TempDir(), "config.toml", "Port = \"1\"\nUnknown = true\n")
	c := New(&Settings{ENVPrefix: "WHATSUP", ErrorOnUnmatchedKeys: true, Lookup: lookupFrom(nil)})

	var cfg testSettings
	err := c.Load(&cfg, file)
	var unmatched *UnmatchedTomlKeysError
	if !errors.As(err, &unmatched) {
		t.Fatalf("Load() error = %v, want UnmatchedTomlKeysError", err)
	}
	if len(unmatched.Keys) != 1 || unmatched.Keys[0].String() != "Unknown" {
		t.Fatalf("Keys = %v", unmatched.Keys)
	}
}

func TestLoadRejectsNonPointer(t *testing.T) {
	t.Parallel()

	if err := newTestConfig(nil).Load(testSettings{}); err == nil {
		t.Fatal("Load() error = nil, want error")
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Parallel()

	if got := New(&Settings{Environment: "production"}).GetEnvironment(); got != "production" {
		t.Fatalf("GetEnvironment() = %q, want production", got)
	}
	c := New(&Settings{Lookup: lookupFrom(map[string]string{"CONFIG_ENV": "staging"})})
	if got := c.GetEnvironment(); got != "staging" {
		t.Fatalf("GetEnvironment() = %q, want staging", got)
	}
	c = New(&Settings{Lookup: lookupFrom(nil)})
	if got := c.GetEnvironment(); got != "test" {
		t.Fatalf("GetEnvironment() = %q, want test under go test", got)
	}
}

func TestEnvFileName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"config.yml":    "config.production.yml",
		"dir/app.toml":  "dir/app.production.toml",
		"configuration": "configuration.production",
	}
	for in, want := range tests {
		if got := envFileName(in, "production"); got != want {
			t.Errorf("envFileName(%q) = %q, want %q", in, got, want)
		}
	}
}
