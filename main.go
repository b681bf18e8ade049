package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"pipeline-player/internal/history"
	"pipeline-player/internal/logging"
	"pipeline-player/internal/metrics"
	"pipeline-player/internal/middleware"
	"pipeline-player/internal/pipeline"
	"pipeline-player/internal/player"
	"pipeline-player/internal/playlist"
	"pipeline-player/internal/startup"
	"pipeline-player/internal/status"

	"golang.org/x/sync/errgroup"
)

func main() {
	startTime := time.Now()

	iterations := flag.Int("iterations", 0, "stop a run after N frames (0 = until the source completes)")
	fps := flag.Int("fps", 0, "playback frame rate, 1-240 (overrides PLAYBACK_FPS)")
	home := flag.String("home", "", "base directory for the .peekingduck store (overrides PLAYER_HOME)")
	frames := flag.Int("frames", 0, "synthetic source length in frames (0 = unbounded)")
	size := flag.String("size", "", "synthetic frame size as WxH (default 640x480)")
	noStatus := flag.Bool("no-status", false, "disable the status HTTP server")
	showVersion := flag.Bool("version", false, "print build information and exit")
	flag.Parse()

	if *showVersion {
		build := startup.GetBuildInfo()
		fmt.Printf("pipeline-player %s (commit %s, built %s, %s %s/%s)\n",
			build.Version, build.Commit, build.BuildTime, build.GoVersion, build.OS, build.Arch)
		return
	}

	// Flags map onto the environment keys so LoadConfig stays the single
	// place configuration is resolved and logged.
	if *home != "" {
		os.Setenv(startup.EnvHome, *home)
	}
	if *fps > 0 {
		os.Setenv(startup.EnvPlaybackFPS, strconv.Itoa(*fps))
	}
	if *noStatus {
		os.Setenv(startup.EnvStatusEnabled, "false")
	}

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		logging.Fatal("Configuration error: %v", err)
	}

	// Register Prometheus collectors
	metrics.InitializeMetrics()
	build := startup.GetBuildInfo()
	metrics.SetAppInfo(build.Version, build.Commit, build.GoVersion)

	// Load playlist store
	playlistStart := time.Now()
	store, err := playlist.New(config.BaseDir)
	if err != nil {
		logging.Fatal("Failed to load playlist: %v", err)
	}
	startup.LogPlaylistInit(store.Len(), time.Since(playlistStart))

	// Open run history
	startup.LogHistoryInit(config.HistoryEnabled, config.HistoryPath)
	var ledger *history.Ledger
	if config.HistoryEnabled {
		ledger, err = history.Open(context.Background(), config.HistoryPath)
		if err != nil {
			logging.Fatal("Failed to open run history: %v", err)
		}
	}

	// Build the frame source
	width, height, err := parseSize(*size)
	if err != nil {
		logging.Fatal("Invalid -size: %v", err)
	}
	loader := &pipeline.SyntheticLoader{Width: width, Height: height, FrameCount: *frames}

	// Create playback session
	startup.LogSessionInit(config.PlaybackFPS, *iterations)
	sessionConfig := player.Config{
		Loader:        loader,
		Playlist:      store,
		Pipeline:      flag.Arg(0),
		FPS:           config.PlaybackFPS,
		MaxIterations: *iterations,
	}
	if ledger != nil {
		// Assigning a nil *Ledger directly would produce a non-nil
		// interface and defeat the recorder check in the session.
		sessionConfig.Recorder = ledger
	}
	sess, err := player.New(sessionConfig)
	if err != nil {
		logging.Fatal("Failed to create playback session: %v", err)
	}

	// Remember the launched pipeline for future sessions
	if ref := flag.Arg(0); ref != "" {
		if err := sess.AddPipeline(ref); err != nil && !errors.Is(err, playlist.ErrDuplicatePipeline) {
			logging.Warn("Could not add %s to the playlist: %v", ref, err)
		}
	}

	// Start the session gauge collector
	collector := metrics.NewCollector(sess, 15*time.Second)
	collector.Start()

	// Status server
	var srv *http.Server
	if config.StatusEnabled {
		srv = setupStatusServer(config, sess, ledger)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	g, ctx := errgroup.WithContext(runCtx)

	// Playback loop
	g.Go(func() error {
		return sess.Run(ctx)
	})

	if srv != nil {
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return fmt.Errorf("status server: %w", err)
			}
			return nil
		})

		// Stop accepting requests once the group winds down
		g.Go(func() error {
			<-ctx.Done()

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			startup.LogShutdownStep("Shutting down HTTP server")
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logging.Warn("Server shutdown error: %v", err)
			} else {
				startup.LogShutdownStepComplete("HTTP server stopped")
			}
			return nil
		})
	}

	// Signal watcher: the first SIGINT or SIGTERM stops the group
	g.Go(func() error {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		select {
		case sig := <-sigChan:
			startup.LogShutdownInitiated(sig.String())
			cancel()
		case <-ctx.Done():
		}
		return nil
	})

	startup.LogServerStarted(startup.ServerConfig{
		StatusAddr:      config.StatusAddr,
		StatusEnabled:   config.StatusEnabled,
		StartupDuration: time.Since(startTime),
	})

	if err := g.Wait(); err != nil {
		logging.Error("Player error: %v", err)
	}

	handleShutdown(sess, collector, ledger)
}

// setupStatusServer wires the status router behind the middleware chain.
func setupStatusServer(config *startup.Config, sess *player.Session, ledger *history.Ledger) *http.Server {
	// Same typed-nil hazard as the session recorder: only a live ledger
	// may reach the interface field.
	var reader status.HistoryReader
	if ledger != nil {
		reader = ledger
	}

	handlers := status.New(sess, sess, reader)
	router := status.Router(handlers)

	// Log routes dynamically
	startup.LogHTTPRoutes(router, config.LogHealthChecks)

	// Apply metrics middleware
	measured := middleware.Metrics(middleware.DefaultMetricsConfig())(router)

	// Apply logging middleware
	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	logged := middleware.Logger(loggingConfig)(measured)

	// Apply compression middleware
	handler := middleware.Compression(middleware.DefaultCompressionConfig())(logged)

	return &http.Server{
		Addr:         config.StatusAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}
}

// handleShutdown runs the teardown steps after the run group has drained.
func handleShutdown(sess *player.Session, collector *metrics.Collector, ledger *history.Ledger) {
	startup.LogShutdownStep("Stopping metrics collector")
	collector.Stop()
	startup.LogShutdownStepComplete("Metrics collector stopped")

	startup.LogShutdownStep("Saving playlist")
	if err := sess.SavePlaylist(); err != nil {
		logging.Warn("Playlist save error: %v", err)
	} else {
		startup.LogShutdownStepComplete("Playlist saved")
	}

	if ledger != nil {
		startup.LogShutdownStep("Closing run history")
		if err := ledger.Close(); err != nil {
			logging.Warn("Run history close error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Run history closed")
		}
	}

	startup.LogShutdownComplete()
}

// parseSize parses a WxH frame size. An empty value selects the synthetic
// source defaults.
func parseSize(value string) (width, height int, err error) {
	if value == "" {
		return pipeline.DefaultWidth, pipeline.DefaultHeight, nil
	}
	if _, err := fmt.Sscanf(value, "%dx%d", &width, &height); err != nil {
		return 0, 0, fmt.Errorf("%q is not WxH", value)
	}
	if width <= 0 || height <= 0 {
		return 0, 0, fmt.Errorf("%q has a non-positive dimension", value)
	}
	return width, height, nil
}
