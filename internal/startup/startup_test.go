package startup

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	base := t.TempDir()
	t.Setenv(EnvHome, base)
	t.Setenv(EnvStatusAddr, "")
	t.Setenv(EnvPlaybackFPS, "")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.BaseDir != base {
		t.Errorf("BaseDir = %q, want %q", config.BaseDir, base)
	}
	if config.StatusAddr != "127.0.0.1:8099" {
		t.Errorf("StatusAddr = %q, want default", config.StatusAddr)
	}
	if !config.StatusEnabled {
		t.Error("StatusEnabled = false, want default true")
	}
	if !config.HistoryEnabled {
		t.Error("HistoryEnabled = false, want default true")
	}
	if config.PlaybackFPS != 60 {
		t.Errorf("PlaybackFPS = %d, want 60", config.PlaybackFPS)
	}

	wantConfigDir := filepath.Join(base, ".peekingduck")
	if config.ConfigDir != wantConfigDir {
		t.Errorf("ConfigDir = %q, want %q", config.ConfigDir, wantConfigDir)
	}
	if config.PlaylistPath != filepath.Join(wantConfigDir, "playlist.yaml") {
		t.Errorf("PlaylistPath = %q, want under %q", config.PlaylistPath, wantConfigDir)
	}
	if config.HistoryPath != filepath.Join(wantConfigDir, "history.db") {
		t.Errorf("HistoryPath = %q, want under %q", config.HistoryPath, wantConfigDir)
	}

	// LoadConfig must have created the config directory.
	info, err := os.Stat(wantConfigDir)
	if err != nil {
		t.Fatalf("config directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("config path is not a directory")
	}

	// The write probe must not leave droppings behind.
	entries, err := os.ReadDir(wantConfigDir)
	if err != nil {
		t.Fatalf("reading config dir: %v", err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".write-test") {
			t.Errorf("write probe file left behind: %s", e.Name())
		}
	}
}

func TestLoadConfigFPSClamp(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want int
	}{
		{
			name: "valid value kept",
			env:  "30",
			want: 30,
		},
		{
			name: "zero replaced with default",
			env:  "0",
			want: 60,
		},
		{
			name: "too large replaced with default",
			env:  "1000",
			want: 60,
		},
		{
			name: "garbage replaced with default",
			env:  "sixty",
			want: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvHome, t.TempDir())
			t.Setenv(EnvPlaybackFPS, tt.env)

			config, err := LoadConfig()
			if err != nil {
				t.Fatalf("LoadConfig() error: %v", err)
			}
			if config.PlaybackFPS != tt.want {
				t.Errorf("PlaybackFPS = %d, want %d", config.PlaybackFPS, tt.want)
			}
		})
	}
}

func TestLoadConfigUnwritableConfigDir(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("running as root, permission checks are not enforced")
	}

	base := t.TempDir()
	configDir := filepath.Join(base, ".peekingduck")
	if err := os.MkdirAll(configDir, 0o555); err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Setenv(EnvHome, base)

	if _, err := LoadConfig(); err == nil {
		t.Error("LoadConfig() succeeded with unwritable config dir, want error")
	}
}

func TestRouteGroup(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/healthz", "healthz"},
		{"/api/status", "api/status"},
		{"/api/playlist", "api/playlist"},
		{"/metrics", "metrics"},
		{"/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := routeGroup(tt.path); got != tt.want {
				t.Errorf("routeGroup(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
