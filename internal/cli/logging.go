package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/tartampluch/go-register/internal/config"
)

// setupLogging installs the default JSON logger. Logs always go to the app
// log file; the terminal only gets them with --debug so command output stays
// clean. When override is set it receives everything instead.
func setupLogging(debugMode bool, override, stderr io.Writer) io.Closer {
	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	if override != nil {
		slog.SetDefault(slog.New(slog.NewJSONHandler(override, opts)))
		return nil
	}

	var writers []io.Writer
	var logFile *os.File

	if debugMode {
		writers = append(writers, stderr)
	}

	if logPath, err := logFilePath(); err == nil {
		// O_TRUNC resets logs on each run to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			_, _ = fmt.Fprintf(stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts)))

	if logFile == nil {
		return nil
	}
	return logFile
}

// logFilePath returns <UserCacheDir>/<AppID>/app.log, creating the directory.
func logFilePath() (string, error) {
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

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo(command string) {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		config.LogKeyArgs, command,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyCommit, config.Commit),
			slog.String(config.LogKeyBuilt, config.Date),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}
