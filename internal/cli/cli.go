package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/vk/bootgraph/internal/app"
)

// Environment variables that provide flag defaults. They may also be set
// in the env file.
const (
	EnvLogLevel  = "BOOTGRAPH_LOG_LEVEL"
	EnvLogFormat = "BOOTGRAPH_LOG_FORMAT"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("bootgraph", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
bootgraph - Compiles startup manifests into cohort-ordered init listings.

Usage:
  bootgraph [options] MANIFEST_PATH...

Arguments:
  MANIFEST_PATH
    Path to a single .hcl file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	outFlag := flagSet.String("out", "", "Write the listing to this file instead of stdout.")
	replayFlag := flagSet.Bool("replay", false, "Replay the compiled image against the built-in modules.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'. Default from "+EnvLogFormat+".")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'. Default from "+EnvLogLevel+".")
	envFileFlag := flagSet.String("env-file", ".env", "Env file with flag defaults. A missing file is ignored.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	if flagSet.NArg() == 0 {
		slog.Debug("No manifest path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	fileEnv, err := readEnvFile(*envFileFlag)
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	explicit := make(map[string]bool)
	flagSet.Visit(func(f *flag.Flag) { explicit[f.Name] = true })

	logLevel := *logLevelFlag
	if !explicit["log-level"] {
		logLevel = envDefault(fileEnv, EnvLogLevel, logLevel)
	}
	logFormat := *logFormatFlag
	if !explicit["log-format"] {
		logFormat = envDefault(fileEnv, EnvLogFormat, logFormat)
	}

	config, err := app.NewConfig(app.Config{
		ManifestPaths: flagSet.Args(),
		OutPath:       *outFlag,
		Replay:        *replayFlag,
		LogFormat:     logFormat,
		LogLevel:      logLevel,
	})
	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}

// readEnvFile reads path without touching the process environment.
func readEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	env, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return env, nil
}

// envDefault prefers the process environment over the env file, which
// matches what godotenv.Load would do.
func envDefault(fileEnv map[string]string, key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if v := fileEnv[key]; v != "" {
		return v
	}
	return fallback
}
