package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"pipeline-player/internal/history"
	"pipeline-player/internal/logging"
	"pipeline-player/internal/playlist"
	"pipeline-player/internal/startup"

	"golang.org/x/term"
)

const (
	// Default timeout for history queries
	defaultTimeout = 30 * time.Second
	// Rows shown by the history command
	historyLimit = 20
)

func main() {
	homeDir := flag.String("home", "", "base directory for the .peekingduck store (overrides PLAYER_HOME)")
	assumeYes := flag.Bool("y", false, "skip confirmation prompts")
	flag.Parse()

	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	command := flag.Arg(0)
	args := flag.Args()[1:]

	// Library Info lines would interleave with command output. An explicit
	// LOG_LEVEL or DEBUG request still wins.
	if os.Getenv("LOG_LEVEL") == "" && os.Getenv("DEBUG") == "" {
		logging.SetLevel(logging.LevelWarn)
	}

	if command == "version" {
		printVersion()
		return
	}

	// Create a context that cancels on interrupt signals
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	baseDir, err := resolveBaseDir(*homeDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := playlist.New(baseDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to load playlist: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure %s is set correctly (current: %s)\n", startup.EnvHome, baseDir)
		os.Exit(1)
	}

	ok := true
	switch command {
	case "list":
		listEntries(store)
	case "add":
		ok = addEntries(store, args)
	case "remove":
		ok = removeEntry(store, args, *assumeYes)
	case "stats":
		ok = showStats(store, args)
	case "history":
		ok = showHistory(ctx, baseDir, args)
	default:
		// Sanitize command input using allowlist to break taint chain
		sanitized := sanitizeCommand(command)
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", sanitized) //nolint:gosec // G705 - input is sanitized via allowlist in sanitizeCommand; only [a-zA-Z0-9_-] characters pass through
		printUsage()
		os.Exit(1)
	}
	if !ok {
		os.Exit(1)
	}
}

// resolveBaseDir picks the base directory: the -home flag, then PLAYER_HOME,
// then the user home directory.
func resolveBaseDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(startup.EnvHome); env != "" {
		return env, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("%s not set and user home directory unavailable: %w", startup.EnvHome, err)
	}
	return home, nil
}

// sanitizeCommand returns a safe representation of a command string for display.
// It uses an allowlist approach, replacing any character that is not alphanumeric,
// a hyphen, or an underscore with '_'.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

func printUsage() {
	fmt.Println("Pipeline Player Playlist Management")
	fmt.Println("")
	fmt.Println("Usage: playlistctl [flags] <command> [args]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list                    - Show playlist entries")
	fmt.Println("  add <pipeline.yml>...   - Add pipeline files and save")
	fmt.Println("  remove <pipeline.yml>   - Remove a pipeline file and save")
	fmt.Println("  stats <pipeline.yml>    - Show cached stats for one entry")
	fmt.Println("  history [pipeline.yml]  - Show recent runs, optionally for one pipeline")
	fmt.Println("  version                 - Print build information")
	fmt.Println("")
	fmt.Println("Flags:")
	fmt.Println("  -home DIR - Base directory for the .peekingduck store")
	fmt.Println("  -y        - Skip confirmation prompts")
	fmt.Println("")
	fmt.Println("Environment:")
	fmt.Printf("  %s - Base directory (default: the user home directory)\n", startup.EnvHome)
}

func printVersion() {
	build := startup.GetBuildInfo()
	fmt.Printf("playlistctl %s (commit %s, built %s, %s %s/%s)\n",
		build.Version, build.Commit, build.BuildTime, build.GoVersion, build.OS, build.Arch)
}

func listEntries(store *playlist.Store) {
	entries := store.Entries()
	if len(entries) == 0 {
		fmt.Println("Playlist is empty.")
		fmt.Printf("File: %s\n", store.Path())
		return
	}

	fmt.Printf("Playlist (%d entries) at %s\n", len(entries), store.Path())
	fmt.Println("")
	for _, entry := range entries {
		marker := " "
		modified := "missing"
		if entry.Exists {
			marker = "*"
			modified = entry.ModifiedAt.Format("2006-01-02 15:04")
		}
		fmt.Printf("  [%s] %-28s %-17s %s\n", marker, entry.Name, modified, entry.Pipeline)
	}
}

func addEntries(store *playlist.Store, refs []string) bool {
	if len(refs) == 0 {
		fmt.Fprintln(os.Stderr, "Error: add requires at least one pipeline file")
		return false
	}

	added := 0
	for _, ref := range refs {
		switch err := store.Add(ref); {
		case errors.Is(err, playlist.ErrDuplicatePipeline):
			fmt.Fprintf(os.Stderr, "Skipped %s: already in playlist\n", ref)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error: Failed to add %s: %v\n", ref, err)
			return false
		default:
			if st, err := store.StatsFor(ref); err == nil && !st.Exists {
				fmt.Fprintf(os.Stderr, "Warning: %s does not exist on disk\n", ref)
			}
			added++
		}
	}
	if added == 0 {
		return true
	}

	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save playlist: %v\n", err)
		return false
	}
	fmt.Printf("Playlist saved with %d entries.\n", store.Len())
	return true
}

func removeEntry(store *playlist.Store, args []string, assumeYes bool) bool {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: remove requires exactly one pipeline file")
		return false
	}
	ref := args[0]

	if !store.Contains(ref) {
		fmt.Fprintf(os.Stderr, "Error: %s is not in the playlist\n", ref)
		return false
	}

	if !assumeYes && term.IsTerminal(syscall.Stdin) {
		fmt.Printf("Remove %s from the playlist? [y/N]: ", ref)
		answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading confirmation: %v\n", err)
			return false
		}
		answer = strings.ToLower(strings.TrimSpace(answer))
		if answer != "y" && answer != "yes" {
			fmt.Println("Aborted.")
			return true
		}
	}

	if err := store.Remove(ref); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to remove %s: %v\n", ref, err)
		return false
	}
	if err := store.Save(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to save playlist: %v\n", err)
		return false
	}
	fmt.Printf("Removed %s (%d entries remain).\n", ref, store.Len())
	return true
}

func showStats(store *playlist.Store, args []string) bool {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "Error: stats requires exactly one pipeline file")
		return false
	}

	st, err := store.StatsFor(args[0])
	if err != nil {
		if errors.Is(err, playlist.ErrPipelineNotFound) {
			fmt.Fprintf(os.Stderr, "Error: %s is not in the playlist\n", args[0])
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return false
	}

	fmt.Printf("Pipeline:  %s\n", st.Pipeline)
	fmt.Printf("Name:      %s\n", st.Name)
	fmt.Printf("Exists:    %v\n", st.Exists)
	if st.Exists {
		fmt.Printf("Modified:  %s\n", st.ModifiedAt.Format("2006-01-02 15:04:05"))
	}
	return true
}

func showHistory(ctx context.Context, baseDir string, args []string) bool {
	// Add timeout to context for database operations
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	dbPath := filepath.Join(baseDir, playlist.ConfigDirName, "history.db")
	ledger, err := history.Open(ctx, dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to open run history: %v\n", err)
		return false
	}
	defer func() {
		if err := ledger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close run history: %v\n", err)
		}
	}()

	var runs []history.Run
	if len(args) > 0 {
		runs, err = ledger.RunsFor(ctx, args[0], historyLimit)
	} else {
		runs, err = ledger.RecentRuns(ctx, historyLimit)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: History query failed: %v\n", err)
		return false
	}

	if len(runs) == 0 {
		fmt.Println("No runs recorded.")
		return true
	}

	for _, run := range runs {
		line := fmt.Sprintf("%s  %-9s  %6d frames  %s",
			run.StartedAt.Format("2006-01-02 15:04:05"), run.Status, run.Frames, run.Pipeline)
		if run.Error != "" {
			line += "  (" + run.Error + ")"
		}
		fmt.Println(line)
	}
	return true
}
