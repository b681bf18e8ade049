package startup

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_PLAYER_UNSET",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_PLAYER_SET",
			envValue:     "custom",
			defaultValue: "default",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var set but empty",
			key:          "TEST_PLAYER_EMPTY",
			envValue:     "",
			defaultValue: "default",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := getEnv(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_PLAYER_BOOL_UNSET",
			defaultValue: true,
			want:         true,
			setEnv:       false,
		},
		{
			name:         "Returns true when env var is 'true'",
			key:          "TEST_PLAYER_BOOL_TRUE",
			envValue:     "true",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns false when env var is 'false'",
			key:          "TEST_PLAYER_BOOL_FALSE",
			envValue:     "false",
			defaultValue: true,
			want:         false,
			setEnv:       true,
		},
		{
			name:         "Accepts numeric true",
			key:          "TEST_PLAYER_BOOL_ONE",
			envValue:     "1",
			defaultValue: false,
			want:         true,
			setEnv:       true,
		},
		{
			name:         "Returns default on unparseable value",
			key:          "TEST_PLAYER_BOOL_BAD",
			envValue:     "maybe",
			defaultValue: true,
			want:         true,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := getEnvBool(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		envValue     string
		defaultValue int
		want         int
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_PLAYER_INT_UNSET",
			defaultValue: 42,
			want:         42,
			setEnv:       false,
		},
		{
			name:         "Parses valid integer",
			key:          "TEST_PLAYER_INT_SET",
			envValue:     "30",
			defaultValue: 42,
			want:         30,
			setEnv:       true,
		},
		{
			name:         "Returns default on unparseable value",
			key:          "TEST_PLAYER_INT_BAD",
			envValue:     "thirty",
			defaultValue: 42,
			want:         42,
			setEnv:       true,
		},
		{
			name:         "Parses negative integer",
			key:          "TEST_PLAYER_INT_NEG",
			envValue:     "-1",
			defaultValue: 42,
			want:         -1,
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			}
			if got := getEnvInt(tt.key, tt.defaultValue); got != tt.want {
				t.Errorf("getEnvInt(%q, %d) = %d, want %d", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestEnsureDirectory(t *testing.T) {
	t.Run("creates missing directory", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "sub", "dir")
		if err := ensureDirectory(path, "test"); err != nil {
			t.Fatalf("ensureDirectory() error: %v", err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat after create: %v", err)
		}
		if !info.IsDir() {
			t.Error("created path is not a directory")
		}
	})

	t.Run("accepts existing directory", func(t *testing.T) {
		path := t.TempDir()
		if err := ensureDirectory(path, "test"); err != nil {
			t.Errorf("ensureDirectory() error on existing dir: %v", err)
		}
	})

	t.Run("rejects file at path", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("setup: %v", err)
		}
		if err := ensureDirectory(path, "test"); err == nil {
			t.Error("ensureDirectory() accepted a regular file, want error")
		}
	})
}

func TestTestWriteAccess(t *testing.T) {
	dir := t.TempDir()
	if err := testWriteAccess(dir); err != nil {
		t.Errorf("testWriteAccess() error on writable dir: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("reading dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("write probe left %d entries behind", len(entries))
	}
}
