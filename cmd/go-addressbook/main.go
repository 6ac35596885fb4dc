package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/tartampluch/go-addressbook/internal/book"
	"github.com/tartampluch/go-addressbook/internal/config"
	"github.com/tartampluch/go-addressbook/internal/i18n"
	"github.com/tartampluch/go-addressbook/internal/storage"
)

// CLI is the top-level command structure for go-addressbook.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Debug   bool             `help:"Enable debug logging."`
	Lang    string           `help:"Output language (en, fr)." default:"${default_lang}"`
	File    string           `help:"Path to the address book file (defaults to the user config dir)." type:"path"`

	Add         AddCmd         `cmd:"" help:"Add a new contact."`
	Delete      DeleteCmd      `cmd:"" help:"Delete a contact."`
	Show        ShowCmd        `cmd:"" help:"Show a single contact."`
	List        ListCmd        `cmd:"" help:"List all contacts."`
	AddPhone    AddPhoneCmd    `cmd:"" name:"add-phone" help:"Add a phone number to a contact."`
	RemovePhone RemovePhoneCmd `cmd:"" name:"remove-phone" help:"Remove a phone number from a contact."`
	EditPhone   EditPhoneCmd   `cmd:"" name:"edit-phone" help:"Replace a phone number on a contact."`
	SetBirthday SetBirthdayCmd `cmd:"" name:"set-birthday" help:"Set a contact's birthday (DD.MM.YYYY)."`
	Birthdays   BirthdaysCmd   `cmd:"" help:"Show birthdays due within the next week."`
	Import      ImportCmd      `cmd:"" help:"Import contacts from a local or remote vCard file."`
	Serve       ServeCmd       `cmd:"" help:"Serve the birthday calendar as an ICS feed over HTTP."`
}

// main delegates execution to runMain so that deferred function calls (like
// closing log files) are executed before the process terminates. os.Exit()
// does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("go-addressbook"),
		kong.Description(config.AppName+": a contact book with birthday reminders."),
		kong.Vars{
			"version": fmt.Sprintf(config.MsgVersionOutput,
				config.AppName, config.Version, runtime.GOOS, runtime.GOARCH),
			"default_port": config.DefaultPort,
			"default_lang": config.DefaultLanguage,
		},
	)

	// Configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(cli.Debug)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// Root context cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	path, err := bookPath(cli.File)
	if err != nil {
		slog.Error(config.ErrAppFailed, config.LogKeyComponent, config.CompMain, config.LogKeyError, err)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return config.ExitCodeError
	}

	app := &appContext{
		ctx:        ctx,
		store:      storage.NewFileStore(path),
		translator: i18n.New(cli.Lang),
		clock:      book.RealClock{},
	}

	if err := kctx.Run(app); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// bookPath resolves the snapshot location, defaulting to a per-user config
// directory created with restricted permissions.
func bookPath(override string) (string, error) {
	if override != "" {
		return override, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrDataDir, err)
	}

	appDir := filepath.Join(configDir, config.AppID)
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.BookFileName), nil
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

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// CLI output goes to stdout, logs to stderr.
	writers = append(writers, os.Stderr)

	// Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
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
