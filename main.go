package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/atomicstack/quicklaunch/internal/app"
	"github.com/atomicstack/quicklaunch/internal/config"
	"github.com/atomicstack/quicklaunch/internal/i18n"
	"github.com/atomicstack/quicklaunch/internal/logging"
	"github.com/atomicstack/quicklaunch/internal/logging/events"
	"github.com/atomicstack/quicklaunch/internal/menu"
	"golang.org/x/term"
)

func main() {
	runtimeCfg := config.MustLoad()
	if err := config.Validate(runtimeCfg); err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	logging.Configure(runtimeCfg.Logging.FilePath)
	logging.SetTraceEnabled(runtimeCfg.Logging.Trace)

	traceStartup(runtimeCfg)

	text := i18n.MustNew(runtimeCfg.Lang)
	programs, err := loadPrograms(runtimeCfg, text)
	if err != nil {
		exit(err)
	}
	if err := app.Run(runtimeCfg, programs, text); err != nil {
		exit(fmt.Errorf("%s: %w", text.Text("Error"), err))
	}
	logging.Close()
}

func exit(err error) {
	logging.Error(err)
	logging.Close()
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

// loadPrograms reads the programs file. Browse mode shows a single folder and
// does not need it.
func loadPrograms(cfg config.Config, text menu.Localizer) ([]config.Program, error) {
	if cfg.Mode == config.ModeBrowse {
		return nil, nil
	}
	programs, err := config.LoadPrograms(cfg.ProgramsFile)
	if err != nil {
		return nil, &configError{msg: configErrorMessage(err, cfg.ProgramsFile, text), err: err}
	}
	return programs, nil
}

type configError struct {
	msg string
	err error
}

func (e *configError) Error() string { return e.msg }
func (e *configError) Unwrap() error { return e.err }

// configErrorMessage maps a programs-file failure to the message shown to
// the user.
func configErrorMessage(err error, file string, text menu.Localizer) string {
	var missing *config.PathNotExistError
	switch {
	case errors.As(err, &missing):
		return text.Text("PathNotExist", missing.Path)
	case errors.Is(err, fs.ErrNotExist):
		return text.Text("ConfigFileNotFound", file)
	case errors.Is(err, config.ErrNoPrograms):
		return text.Text("NoProgramInfo")
	case errors.Is(err, config.ErrEmptyPath):
		return text.Text("EmptyPath")
	default:
		return text.Text("ConfigReadError")
	}
}

func traceStartup(cfg config.Config) {
	events.App.Start(startupTracePayload(cfg))
}

// startupTracePayload bundles runtime context for trace logging.
func startupTracePayload(cfg config.Config) map[string]interface{} {
	flags := make(map[string]interface{}, len(cfg.Flags))
	for k, v := range cfg.Flags {
		flags[k] = v
	}
	flags["trace"] = cfg.Logging.Trace
	flags["logFile"] = cfg.Logging.FilePath
	payload := map[string]interface{}{
		"argv":   cfg.Args,
		"flags":  flags,
		"config": cfg,
		"mode":   cfg.Mode.String(),
	}
	if exe, err := os.Executable(); err == nil {
		payload["executable"] = exe
	} else {
		payload["executableError"] = err.Error()
	}
	if cwd, err := os.Getwd(); err == nil {
		payload["cwd"] = cwd
	} else {
		payload["cwdError"] = err.Error()
	}
	payload["tty"] = collectTTYDetails()
	return payload
}

type ttyDetails struct {
	Detected *ttyDetected     `json:"detected,omitempty"`
	Probes   []ttyProbeResult `json:"probes"`
}

type ttyDetected struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

type ttyProbeResult struct {
	Name       string `json:"name"`
	IsTerminal bool   `json:"is_terminal"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	Error      string `json:"error,omitempty"`
}

// collectTTYDetails inspects standard descriptors for terminal support and dimensions.
func collectTTYDetails() ttyDetails {
	probes := []struct {
		name string
		fd   uintptr
	}{
		{"stdin", os.Stdin.Fd()},
		{"stdout", os.Stdout.Fd()},
		{"stderr", os.Stderr.Fd()},
	}
	results := make([]ttyProbeResult, 0, len(probes))
	var detected *ttyDetected
	for _, probe := range probes {
		entry := ttyProbeResult{Name: probe.name}
		fd := int(probe.fd)
		if fd >= 0 && term.IsTerminal(fd) {
			entry.IsTerminal = true
			if width, height, err := term.GetSize(fd); err == nil {
				entry.Width = width
				entry.Height = height
				if detected == nil {
					detected = &ttyDetected{Source: probe.name, Width: width, Height: height}
				}
			} else {
				entry.Error = err.Error()
			}
		} else {
			entry.IsTerminal = false
		}
		results = append(results, entry)
	}
	return ttyDetails{Detected: detected, Probes: results}
}
