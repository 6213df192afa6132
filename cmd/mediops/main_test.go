package main

import (
	"os"
	"path/filepath"
	"testing"

	"mediops/internal/infra/config"
)

func TestParseFlags(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	tests := []struct {
		name string
		args []string
		want cliFlags
	}{
		{
			name: "separated values",
			args: []string{"mediops", "--config", "/tmp/c.yaml", "--model", "gemini-2.5-flash", "--key", "k"},
			want: cliFlags{ConfigPath: "/tmp/c.yaml", Model: "gemini-2.5-flash", APIKey: "k"},
		},
		{
			name: "equals form",
			args: []string{"mediops", "--model=g", "--key=k2"},
			want: cliFlags{Model: "g", APIKey: "k2"},
		},
		{
			name: "no flags",
			args: []string{"mediops"},
			want: cliFlags{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			if got := parseFlags(); got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestBuildAuditSink(t *testing.T) {
	if sink, err := buildAuditSink(config.AuditConfig{Sink: "none"}); err != nil || sink != nil {
		t.Errorf("none sink = %v, %v", sink, err)
	}
	if _, err := buildAuditSink(config.AuditConfig{Sink: "bogus"}); err == nil {
		t.Error("unknown sink name must fail")
	}

	path := filepath.Join(t.TempDir(), "audit.jsonl")
	sink, err := buildAuditSink(config.AuditConfig{Sink: "file", Path: path})
	if err != nil {
		t.Fatalf("file sink: %v", err)
	}
	defer sink.Close()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file sink did not create %s: %v", path, err)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()
	os.Args = []string{"mediops"}

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("MEDIOPS_API_KEY", "")

	if _, err := loadConfig(parseFlags()); err == nil {
		t.Error("missing API key must fail")
	}

	if _, err := loadConfig(cliFlags{APIKey: "k"}); err != nil {
		t.Errorf("key via flag: %v", err)
	}
}
