package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/handiism/twitch-clips/internal/config"
	"github.com/handiism/twitch-clips/internal/download"
	"github.com/handiism/twitch-clips/internal/history"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1 // config, ledger or token failure
	exitPartial   = 2 // run finished with failed channels or clips
	exitCancelled = 130
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9146FF"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

func main() {
	os.Exit(run())
}

func run() int {
	// Command line flags
	var (
		envFlag      = flag.String("env", ".env", "Path to the settings file")
		channelsFlag = flag.String("channels", "", "Channels to process, comma-separated (overrides CHANNEL_NAMES)")
		outputFlag   = flag.String("output", "", "Clips directory (overrides CLIPS_DIR)")
		historyFlag  = flag.String("history", "", "History ledger file (overrides HISTORY_FILE)")
		parallelFlag = flag.Int("parallel", 0, "Channels processed in parallel (overrides MAX_CONCURRENT_CHANNELS)")
		verboseFlag  = flag.Bool("verbose", false, "Show verbose output")
		dryRunFlag   = flag.Bool("dry-run", false, "Resolve and list clips without downloading")
		initFlag     = flag.Bool("init", false, "Write a settings template to the -env path and exit")
	)

	flag.Parse()

	if *initFlag {
		return writeTemplate(*envFlag)
	}

	settings, err := config.Load(*envFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error loading settings: %v", err)))
		fmt.Fprintln(os.Stderr, dimStyle.Render("Run with -init to create a settings template."))
		return exitFailure
	}

	// Apply flags
	if *channelsFlag != "" {
		settings.Channels = config.ParseChannels(*channelsFlag)
	}
	if *outputFlag != "" {
		settings.ClipsDir = *outputFlag
	}
	if *historyFlag != "" {
		settings.HistoryFile = *historyFlag
	}
	if *parallelFlag > 0 {
		settings.MaxConcurrentChannels = *parallelFlag
	}
	if err := settings.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error in settings: %v", err)))
		return exitFailure
	}

	store, err := history.Open(settings.HistoryFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error opening history: %v", err)))
		return exitFailure
	}
	defer store.Close()
	if *verboseFlag {
		fmt.Println(dimStyle.Render(fmt.Sprintf("History %s: %d entries", store.Path(), store.Len())))
	}
	if n := store.Skipped(); n > 0 {
		fmt.Println(warningStyle.Render(fmt.Sprintf("! Ignored %d malformed history line(s) in %s", n, store.Path())))
	}

	// Handle interrupts
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := download.NewManager(settings, store, func(event download.ProgressEvent) {
		if event.Level == download.LevelVerbose && !*verboseFlag {
			return
		}
		printEvent(event)
	}, download.WithDryRun(*dryRunFlag))

	fmt.Println(titleStyle.Render("Twitch Clips"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("%d channel(s), last %d day(s), up to %d clip(s) each",
		len(settings.Channels), settings.LookBackDays, settings.ClipCount)))
	fmt.Println()

	report, err := manager.Run(ctx, settings.Channels)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Println("\nRun cancelled.")
			return exitCancelled
		}
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s: %v", download.Kind(err), err)))
		return exitFailure
	}

	printReport(report)

	switch {
	case ctx.Err() != nil:
		fmt.Println("\nRun cancelled.")
		return exitCancelled
	case !report.OK():
		return exitPartial
	}
	return exitOK
}

func printEvent(event download.ProgressEvent) {
	var style lipgloss.Style
	prefix := "  "
	switch event.Level {
	case download.LevelError:
		style, prefix = errorStyle, "✗ "
	case download.LevelWarning:
		style, prefix = warningStyle, "! "
	case download.LevelSuccess:
		style, prefix = successStyle, "✓ "
	case download.LevelInfo:
		style, prefix = infoStyle, "› "
	default:
		style = dimStyle
	}

	msg := event.Message
	if event.Channel != "" {
		msg = fmt.Sprintf("[%s] %s", event.Channel, msg)
	}
	fmt.Println(style.Render(prefix + msg))
}

func printReport(report *download.Report) {
	fmt.Println()
	fmt.Println(titleStyle.Render("Summary"))
	fmt.Println(dimStyle.Render(fmt.Sprintf("Run %s, %s", report.RunID, report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))))

	for _, ch := range report.Channels {
		line := fmt.Sprintf("%-20s", ch.Channel)
		switch {
		case ch.Err != nil:
			fmt.Println(errorStyle.Render(fmt.Sprintf("%s %s: %v", line, download.Kind(ch.Err), ch.Err)))
		case report.DryRun:
			fmt.Println(infoStyle.Render(fmt.Sprintf("%s %d to download, %d skipped, %d failed",
				line, ch.Count(download.ClipPlanned), ch.Count(download.ClipSkipped), ch.Count(download.ClipFailed))))
		default:
			style := successStyle
			if !ch.OK() {
				style = warningStyle
			}
			fmt.Println(style.Render(fmt.Sprintf("%s %d new, %d skipped, %d failed",
				line, ch.Count(download.ClipDownloaded), ch.Count(download.ClipSkipped), ch.Count(download.ClipFailed))))
		}

		for _, clip := range ch.Clips {
			if clip.Status == download.ClipFailed {
				fmt.Println(errorStyle.Render(fmt.Sprintf("    %s %s: %v", clip.Clip.ID, download.Kind(clip.Err), clip.Err)))
			}
		}
		if ch.LastClip != nil {
			fmt.Println(dimStyle.Render(fmt.Sprintf("    last clip %s at %s",
				ch.LastClip.ClipID, ch.LastClip.DownloadedAt.Local().Format(time.DateTime))))
		}
	}

	totals := report.Totals()
	fmt.Println()
	if report.DryRun {
		fmt.Printf("Dry run: %d clip(s) would be downloaded, %d already downloaded\n", totals.Planned, totals.Skipped)
		return
	}
	fmt.Printf("Downloaded %d clip(s) (%.2f MB), skipped %d, failed %d, %d/%d channel(s) failed\n",
		totals.Downloaded, float64(totals.Bytes)/1024/1024, totals.Skipped, totals.Failed,
		totals.FailedChannels, totals.Channels)
}

// writeTemplate writes default settings with placeholder credentials.
func writeTemplate(path string) int {
	if _, err := os.Stat(path); err == nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("%s already exists", path)))
		return exitFailure
	}

	settings := config.DefaultSettings()
	settings.ClientID = "your_client_id"
	settings.ClientSecret = "your_client_secret"
	settings.Channels = config.ParseChannels("channel_one,channel_two")
	settings.ClipCount = 20
	settings.LookBackDays = 7

	if err := settings.Save(path); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error writing %s: %v", path, err)))
		return exitFailure
	}
	fmt.Println(successStyle.Render("✓ Wrote " + path))
	return exitOK
}
