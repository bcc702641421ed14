package setup

import (
	"bufio"
	"reflect"
	"strings"
	"testing"

	"github.com/Guliveer/w1logger/internal/config"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    InstallMode
		wantErr bool
	}{
		{"system", ModeSystem, false},
		{"user", ModeUser, false},
		{"invalid", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestResolveMode_Interactive(t *testing.T) {
	got, err := resolveMode("", bufio.NewReader(strings.NewReader("2\n")))
	if err != nil {
		t.Fatal(err)
	}
	if got != ModeUser {
		t.Errorf("resolveMode() = %v, want user", got)
	}
	if _, err := resolveMode("", bufio.NewReader(strings.NewReader("3\n"))); err == nil {
		t.Error("expected error for invalid choice")
	}
}

func TestResolvePaths_UserMode(t *testing.T) {
	p := ResolvePaths(ModeUser)
	if p.BinPath == "" {
		t.Error("BinPath should not be empty")
	}
	if p.ConfigPath == "" {
		t.Error("ConfigPath should not be empty")
	}
	if p.DataDir == "" {
		t.Error("DataDir should not be empty")
	}
}

func TestResolvePaths_SystemMode(t *testing.T) {
	p := ResolvePaths(ModeSystem)
	if p.BinPath != "/usr/local/bin/w1logger" {
		t.Errorf("BinPath = %q", p.BinPath)
	}
	if p.ConfigPath != "/etc/w1logger/config.yaml" {
		t.Errorf("ConfigPath = %q", p.ConfigPath)
	}
}

func TestInstallConfig_AnchorsRelativeStorePaths(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.File = "./w1logger.log"

	got := installConfig(cfg, "/var/lib/w1logger")

	want := []string{"/var/lib/w1logger/temp.sqlite3", "/tmp/fallback.sqlite3"}
	if !reflect.DeepEqual(got.Store.Paths, want) {
		t.Errorf("Store.Paths = %v, want %v", got.Store.Paths, want)
	}
	if got.Logging.File != "" {
		t.Errorf("Logging.File = %q, want empty", got.Logging.File)
	}
	if cfg.Store.Paths[0] != "temp.sqlite3" {
		t.Errorf("input config was modified: %v", cfg.Store.Paths)
	}
}
