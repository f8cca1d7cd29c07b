// Package main provides the entry point for GTerm.
// GTerm is an SSH terminal manager; this binary exposes its state layer
// from the command line: user preferences, supported languages and the
// translated backend messages.
//
// Usage:
//
//	gterm [options]
//
// Configuration is read from ~/.config/gterm/config.yaml and created with
// defaults on first run.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yllada/gterm/app"
	"github.com/yllada/gterm/cli"
	"github.com/yllada/gterm/common"
	"github.com/yllada/gterm/config"
)

// Build-time variables injected via ldflags (-X main.appVersion=x.y.z)
var (
	appVersion = "dev"
	buildTime  = "unknown"
	commitSHA  = "unknown"
)

var (
	showVersion = flag.Bool("version", false, "Show version and exit")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
	showHelp    = flag.Bool("help", false, "Show help message")

	showPrefs     = flag.Bool("show", false, "Show current preferences")
	themeMode     = flag.String("theme", "", "Set the theme: light, dark or auto")
	language      = flag.String("language", "", "Set the UI language, or auto")
	sidebarWidth  = flag.Int("sidebar-width", 0, "Set the sidebar width in pixels")
	resetSidebar  = flag.Bool("reset-sidebar", false, "Restore the default sidebar width")
	listLanguages = flag.Bool("languages", false, "List supported languages")
	listMessages  = flag.Bool("messages", false, "List backend message codes")
)

func main() {
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	if *showHelp {
		cli.PrintHelp(os.Stdout)
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s v%s\n", common.AppName, appVersion)
		if buildTime != "unknown" {
			fmt.Printf("  Build:  %s\n", buildTime)
			fmt.Printf("  Commit: %s\n", commitSHA)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using defaults\n", err)
		cfg = config.DefaultConfig()
	}

	// Command output owns stdout.
	common.GetLogger().SetOutput(os.Stderr)
	logLevel := common.ParseLogLevel(cfg.LogLevel)
	if *verbose {
		logLevel = common.LevelDebug
	}
	if err := common.InitLogger(common.LogConfig{
		Level:      logLevel,
		EnableFile: cfg.LogToFile,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not initialize file logging: %v\n", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	setupSignalHandler(cancel)

	code := run(ctx, cfg)
	cancel()
	common.CloseLogger()
	os.Exit(code)
}

// run applies the requested changes in a fixed order and returns the exit
// code.
func run(ctx context.Context, cfg *config.Config) int {
	common.LogDebug("Starting %s v%s", common.AppName, appVersion)

	a, err := app.New(app.Options{Config: cfg})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer a.Close()

	c := cli.New(a, os.Stdout)

	var steps []func() error
	if *themeMode != "" {
		steps = append(steps, func() error { return c.SetTheme(*themeMode) })
	}
	if *language != "" {
		steps = append(steps, func() error { return c.SetLanguage(*language) })
	}
	if flagSet("sidebar-width") {
		steps = append(steps, func() error { return c.SetSidebarWidth(*sidebarWidth) })
	}
	if *resetSidebar {
		steps = append(steps, c.ResetSidebarWidth)
	}
	if *listLanguages {
		steps = append(steps, c.ListLanguages)
	}
	if *listMessages {
		steps = append(steps, c.ListMessages)
	}
	if *showPrefs || len(steps) == 0 {
		steps = append(steps, c.ShowPreferences)
	}

	for _, step := range steps {
		select {
		case <-ctx.Done():
			common.LogInfo("Operation cancelled")
			return 130
		default:
		}
		if err := step(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// setupSignalHandler cancels the context on SIGINT/SIGTERM.
func setupSignalHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		common.LogInfo("Received signal %v, shutting down", sig)
		cancel()
	}()
}
