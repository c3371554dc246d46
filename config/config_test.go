package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/caarlos0/env/v11"
)

func loadFrom(t *testing.T, dir string, environ map[string]string) (*Config, error) {
	t.Helper()
	if environ == nil {
		environ = map[string]string{}
	}
	return load(dir, env.Options{Prefix: EnvPrefix, Environment: environ})
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := loadFrom(t, t.TempDir(), nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SourceLang != "en" || cfg.TargetLang != "" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.MaxInputBytes != DefaultMaxInputBytes || cfg.Path != "" || cfg.Format() != "" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".transkit.yaml", `source_lang: en_US
target_lang: pt_br
default_format: po
log_level: DEBUG
max_input_bytes: 1024
`)
	cfg, err := loadFrom(t, dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SourceLang != "en-US" || cfg.TargetLang != "pt-BR" {
		t.Errorf("languages = %q, %q", cfg.SourceLang, cfg.TargetLang)
	}
	if cfg.Format() != "gettext" || cfg.LogLevel != "debug" || cfg.MaxInputBytes != 1024 {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.Path != filepath.Join(dir, ".transkit.yaml") {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".transkit.toml", `source_lang = "de"
default_format = "yml"
ui_lang = "ru"
`)
	cfg, err := loadFrom(t, dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SourceLang != "de" || cfg.Format() != "yaml" || cfg.UILang != "ru" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_YAMLWinsOverTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".transkit.yaml", "source_lang: fr\n")
	writeFile(t, dir, ".transkit.toml", "source_lang = \"de\"\n")
	cfg, err := loadFrom(t, dir, nil)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SourceLang != "fr" {
		t.Errorf("SourceLang = %q, want fr", cfg.SourceLang)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".transkit.yaml", "target_lang: fr\nlog_level: warn\n")
	cfg, err := loadFrom(t, dir, map[string]string{
		"TRANSKIT_TARGET_LANG":     "de",
		"TRANSKIT_MAX_INPUT_BYTES": "2048",
	})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.TargetLang != "de" || cfg.LogLevel != "warn" || cfg.MaxInputBytes != 2048 {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := []struct {
		name    string
		file    string
		environ map[string]string
		want    string
	}{
		{name: "bad yaml", file: "source_lang: [\n", want: "parsing"},
		{name: "bad language", file: "target_lang: not a language\n", want: "target_lang"},
		{name: "bad format", file: "default_format: docx\n", want: "default_format"},
		{name: "bad level", file: "log_level: loud\n", want: "log_level"},
		{name: "bad size", file: "max_input_bytes: -1\n", want: "max_input_bytes"},
		{name: "bad env", environ: map[string]string{"TRANSKIT_MAX_INPUT_BYTES": "lots"}, want: "environment"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			if tc.file != "" {
				writeFile(t, dir, ".transkit.yaml", tc.file)
			}
			_, err := loadFrom(t, dir, tc.environ)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err = %v, want mention of %q", err, tc.want)
			}
		})
	}
}
