package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"pipeline-player/internal/logging"
	"pipeline-player/internal/playlist"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

// Config holds all application configuration
type Config struct {
	BaseDir         string
	StatusAddr      string
	StatusEnabled   bool
	HistoryEnabled  bool
	PlaybackFPS     int
	LogHealthChecks bool

	// Derived paths
	ConfigDir    string
	PlaylistPath string
	HistoryPath  string
}

// Environment variable names understood by LoadConfig.
const (
	EnvHome            = "PLAYER_HOME"
	EnvStatusAddr      = "STATUS_ADDR"
	EnvStatusEnabled   = "STATUS_ENABLED"
	EnvHistoryEnabled  = "HISTORY_ENABLED"
	EnvPlaybackFPS     = "PLAYBACK_FPS"
	EnvLogHealthChecks = "LOG_HEALTH_CHECKS"
)

// LoadConfig loads and validates configuration from environment variables
func LoadConfig() (*Config, error) {
	printBanner()
	logSystemInfo()

	logging.Info("------------------------------------------------------------")
	logging.Info("CONFIGURATION")
	logging.Info("------------------------------------------------------------")

	baseDir := os.Getenv(EnvHome)
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("%s not set and user home directory unavailable: %w", EnvHome, err)
		}
		baseDir = home
	}

	statusAddr := getEnv(EnvStatusAddr, "127.0.0.1:8099")
	statusEnabled := getEnvBool(EnvStatusEnabled, true)
	historyEnabled := getEnvBool(EnvHistoryEnabled, true)
	playbackFPS := getEnvInt(EnvPlaybackFPS, 60)
	logHealthChecks := getEnvBool(EnvLogHealthChecks, true)

	logging.Info("  PLAYER_HOME:         %s", baseDir)
	logging.Info("  STATUS_ADDR:         %s", statusAddr)
	logging.Info("  STATUS_ENABLED:      %v", statusEnabled)
	logging.Info("  HISTORY_ENABLED:     %v", historyEnabled)
	logging.Info("  PLAYBACK_FPS:        %d", playbackFPS)
	logging.Info("  LOG_HEALTH_CHECKS:   %v", logHealthChecks)
	logging.Info("  LOG_LEVEL:           %s", logging.GetLevel())

	if playbackFPS < 1 || playbackFPS > 240 {
		logging.Warn("  PLAYBACK_FPS out of range [1,240], using default: 60")
		playbackFPS = 60
	}

	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("DIRECTORY SETUP")
	logging.Info("------------------------------------------------------------")

	baseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory path: %w", err)
	}
	logging.Info("  Base directory (absolute): %s", baseDir)

	configDir := filepath.Join(baseDir, playlist.ConfigDirName)

	config := &Config{
		BaseDir:         baseDir,
		StatusAddr:      statusAddr,
		StatusEnabled:   statusEnabled,
		HistoryEnabled:  historyEnabled,
		PlaybackFPS:     playbackFPS,
		LogHealthChecks: logHealthChecks,
		ConfigDir:       configDir,
		PlaylistPath:    playlist.ConfigPath(baseDir),
		HistoryPath:     filepath.Join(configDir, "history.db"),
	}

	// The playlist file and the run history live here; it must be writable.
	if err := ensureDirectory(configDir, "config"); err != nil {
		return nil, fmt.Errorf("config directory error: %w", err)
	}

	logging.Debug("  Testing config directory write access...")
	if err := testWriteAccess(configDir); err != nil {
		return nil, fmt.Errorf("config directory is not writable (required for playlist persistence): %w", err)
	}
	logging.Info("  [OK] Config directory is writable")
	logging.Info("  Playlist file: %s", config.PlaylistPath)

	logging.Info("")
	logging.Info("  Feature availability:")
	logging.Info("    Playlist:    ENABLED (required)")
	logging.Info("    History:     %s", enabledString(config.HistoryEnabled))
	logging.Info("    Status API:  %s", enabledString(config.StatusEnabled))

	return config, nil
}

func enabledString(enabled bool) string {
	if enabled {
		return "ENABLED"
	}
	return "DISABLED"
}

// LogPlaylistInit logs playlist store initialization
func LogPlaylistInit(entries int, duration time.Duration) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLAYLIST INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  [OK] Playlist loaded in %v (%d entries)", duration, entries)
}

// LogHistoryInit logs run history store initialization
func LogHistoryInit(enabled bool, path string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("HISTORY INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	if !enabled {
		logging.Info("  Run history disabled")
		return
	}
	logging.Info("  History database: %s", path)
}

// LogSessionInit logs playback session initialization
func LogSessionInit(fps int, iterations int) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SESSION INITIALIZATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Tick rate:       %d fps", fps)
	if iterations > 0 {
		logging.Info("  Iteration limit: %d", iterations)
	} else {
		logging.Info("  Iteration limit: none (run until source completes)")
	}
}

// GetRoutes extracts all registered routes from a mux.Router
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		pathTemplate, err := route.GetPathTemplate()
		if err != nil {
			return err
		}

		methods, err := route.GetMethods()
		if err != nil {
			// Route might not have methods specified
			methods = []string{"*"}
		}

		name := route.GetName()

		for _, method := range methods {
			routes = append(routes, RouteInfo{
				Method: method,
				Path:   pathTemplate,
				Name:   name,
			})
		}

		return nil
	})

	return routes, err
}

// LogHTTPRoutes logs all registered HTTP routes dynamically
func LogHTTPRoutes(router *mux.Router, logHealthChecks bool) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("STATUS SERVER SETUP")
	logging.Info("------------------------------------------------------------")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}

		logging.Debug("  Registered routes (%d total):", len(routes))

		grouped := make(map[string][]RouteInfo)
		for _, route := range routes {
			grouped[routeGroup(route.Path)] = append(grouped[routeGroup(route.Path)], route)
		}

		keys := make([]string, 0, len(grouped))
		for k := range grouped {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, group := range keys {
			if group != "" {
				logging.Debug("  [%s]", group)
			} else {
				logging.Debug("  [root]")
			}
			for _, route := range grouped[group] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	if logHealthChecks {
		logging.Info("  Health check logging: ON")
	} else {
		logging.Info("  Health check logging: OFF (set LOG_HEALTH_CHECKS=true to enable)")
	}
}

// routeGroup extracts a group name from a route path
func routeGroup(path string) string {
	path = strings.TrimPrefix(path, "/")

	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 {
		return ""
	}

	first := parts[0]

	if first == "api" && len(parts) > 1 {
		subParts := strings.SplitN(parts[1], "/", 2)
		return "api/" + subParts[0]
	}

	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	StatusAddr      string
	StatusEnabled   bool
	StartupDuration time.Duration
}

// LogServerStarted logs successful startup with endpoint information
func LogServerStarted(config ServerConfig) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("PLAYER STARTED")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("")
	if config.StatusEnabled {
		logging.Info("  Status API:      http://%s/api/status", config.StatusAddr)
		logging.Info("  Metrics:         http://%s/metrics", config.StatusAddr)
	} else {
		logging.Info("  Status API:      DISABLED")
	}
	logging.Info("")
	logging.Info("  Press Ctrl+C to stop")
	logging.Info("------------------------------------------------------------")
	logging.Info("")
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	logging.Info("")
	logging.Info("------------------------------------------------------------")
	logging.Info("SHUTDOWN INITIATED (received %s)", signal)
	logging.Info("------------------------------------------------------------")
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// Helper functions

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  _            ___                ____  __
   / __ \(_)___  ___  / (_)___  ___      / __ \/ /___ ___  _____  _____
  / /_/ / / __ \/ _ \/ / / __ \/ _ \    / /_/ / / __ '/ / / / _ \/ ___|
 / ____/ / /_/ /  __/ / / / / /  __/   / ____/ / /_/ / /_/ /  __/ |
/_/     /_/ .___/\___/_/_/ /_/\___/   /_/     /_/\__,_/\__, /\___/|_|
         /_/                                          /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	logging.Info("------------------------------------------------------------")
	logging.Info("SYSTEM INFORMATION")
	logging.Info("------------------------------------------------------------")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}

	logging.Info("")
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("path exists but is not a directory")
	}

	logging.Debug("    [OK] Directory exists")
	return nil
}

func testWriteAccess(dir string) error {
	testFile := filepath.Join(dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o644); err != nil {
		return err
	}
	if err := os.Remove(testFile); err != nil {
		logging.Warn("failed to remove write test file %s: %v", testFile, err)
		// Write access was confirmed regardless
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		logging.Warn("Invalid boolean value for %s: %q, using default: %v", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		logging.Warn("Invalid integer value for %s: %q, using default: %d", key, value, defaultValue)
		return defaultValue
	}
	return parsed
}
