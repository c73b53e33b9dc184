package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"fyne.io/fyne/v2/app"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/tartampluch/go-wedding/internal/api"
	"github.com/tartampluch/go-wedding/internal/config"
	"github.com/tartampluch/go-wedding/internal/engine"
	"github.com/tartampluch/go-wedding/internal/server"
	"github.com/tartampluch/go-wedding/internal/session"
	"github.com/tartampluch/go-wedding/internal/store"
	"github.com/tartampluch/go-wedding/internal/ui"
)

// main delegates to runMain so deferred calls run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle and returns the exit code.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close()
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	settings, err := config.LoadSettings()
	if err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	if err := run(ctx, settings); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run wires the services and blocks in the UI loop.
func run(ctx context.Context, settings config.Settings) error {
	a := app.NewWithID(config.AppID)
	prefs := a.Preferences()
	prefs.SetString(config.PrefLastRun, config.Version)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// saved preferences win over the environment
	client := api.NewClient(prefs.StringWithFallback(config.PrefAPIURL, settings.APIURL))
	client.HTTP.Timeout = settings.HTTPTimeout
	client.CSRFEndpoint = settings.CSRFEndpoint
	client.Metrics = api.NewMetrics(reg)

	creds := session.NewKeyringCredentials(settings.KeyringService)
	sess := session.NewStore(client, creds)
	client.Tokens = sess

	port := prefs.StringWithFallback(config.PrefServerPort, settings.FeedPort)

	fetcher := engine.NewHTTPFetcher()
	fetcher.Client.Timeout = settings.HTTPTimeout

	gui := ui.NewWeddingApp(a, ctx, ui.Services{
		Client:   client,
		Session:  sess,
		Data:     store.New(client),
		Feed:     server.NewFeedServer(port, reg, reg),
		Importer: &engine.GuestImporter{Fetcher: fetcher},
		Secrets:  creds,
	})

	go func() {
		<-ctx.Done()
		slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
		a.Quit()
	}()

	gui.Run()
	return nil
}

func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging installs the default logger. Debug mode logs colored text to
// stderr; otherwise JSON goes to stdout and to a log file truncated on start.
func setupLogging(debugMode bool) io.Closer {
	if debugMode {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		})))
		return nil
	}

	writers := []io.Writer{os.Stdout}
	var logFile *os.File

	if logPath, err := getLogFilePath(); err == nil {
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath returns the log file location in the user cache dir.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
