package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the application.
type Config struct {
	ProgramsFile string
	Mode         Mode
	BrowsePath   string
	UI           UI
	Logging      Logging
	Lang         string
	FolderTTL    time.Duration
	PopupCommand []string
	MetricsAddr  string
	Flags        map[string]string
	Args         []string
}

// Mode selects what the binary does.
type Mode int

const (
	ModePopup Mode = iota
	ModeBrowse
	ModeTray
)

func (m Mode) String() string {
	switch m {
	case ModeBrowse:
		return "browse"
	case ModeTray:
		return "tray"
	default:
		return "popup"
	}
}

type UI struct {
	Width      int
	Height     int
	ShowFooter bool
}

type Logging struct {
	FilePath string
	Trace    bool
}

const (
	envConfig      = "QUICKLAUNCH_CONFIG"
	envWidth       = "QUICKLAUNCH_WIDTH"
	envHeight      = "QUICKLAUNCH_HEIGHT"
	envShowFooter  = "QUICKLAUNCH_FOOTER"
	envTrace       = "QUICKLAUNCH_TRACE"
	envLogFile     = "QUICKLAUNCH_LOG_FILE"
	envLang        = "QUICKLAUNCH_LANG"
	envTTL         = "QUICKLAUNCH_TTL"
	envPopupCmd    = "QUICKLAUNCH_POPUP_CMD"
	envMetricsAddr = "QUICKLAUNCH_METRICS_ADDR"
)

const (
	defaultTTL      = 30 * time.Second
	defaultPopupCmd = "tmux display-popup -E"
)

var (
	defaultExecutable = os.Executable
	executablePath    = defaultExecutable
)

// Load parses configuration from CLI arguments and environment variables.
func Load() (Config, error) {
	return LoadArgs(os.Args[1:], os.Environ())
}

// LoadArgs allows tests to supply specific args/environment.
func LoadArgs(args []string, environ []string) (Config, error) {
	env := parseEnv(environ)

	fs := flag.NewFlagSet("quicklaunch", flag.ContinueOnError)
	fs.SetOutput(new(strings.Builder))

	programs := fs.String("config", envOrDefault(env, envConfig, defaultProgramsFile()), "path to the programs ini file")
	browse := fs.String("browse", "", "open the folder menu for this directory")
	tray := fs.Bool("tray", false, "run as a system tray icon")
	width := fs.Int("width", envOrInt(env, envWidth, 0), "desired viewport width in cells (0 uses terminal width)")
	height := fs.Int("height", envOrInt(env, envHeight, 0), "desired viewport height in rows (0 uses terminal height)")
	footer := fs.Bool("footer", envOrBool(env, envShowFooter, false), "enable footer hint row (disabled by default)")
	trace := fs.Bool("trace", envOrBool(env, envTrace, false), "enable verbose JSON trace logging")
	logFile := fs.String("log-file", envOrDefault(env, envLogFile, ""), "path to the log file")
	lang := fs.String("lang", envOrDefault(env, envLang, ""), "override the system language (e.g. en, ko)")
	ttl := fs.Duration("ttl", envOrDuration(env, envTTL, defaultTTL), "how long folder listings are reused")
	popupCmd := fs.String("popup-cmd", envOrDefault(env, envPopupCmd, defaultPopupCmd), "command prefix used by the tray to open a folder popup")
	metricsAddr := fs.String("metrics-addr", envOrDefault(env, envMetricsAddr, ""), "serve Prometheus metrics on this address")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if *width < 0 {
		return Config{}, fmt.Errorf("width must be >= 0 (got %d)", *width)
	}
	if *height < 0 {
		return Config{}, fmt.Errorf("height must be >= 0 (got %d)", *height)
	}
	if *ttl <= 0 {
		return Config{}, fmt.Errorf("ttl must be > 0 (got %s)", *ttl)
	}

	mode := ModePopup
	switch {
	case *tray:
		mode = ModeTray
	case strings.TrimSpace(*browse) != "":
		mode = ModeBrowse
	}

	cfg := Config{
		ProgramsFile: *programs,
		Mode:         mode,
		BrowsePath:   strings.TrimSpace(*browse),
		UI: UI{
			Width:      *width,
			Height:     *height,
			ShowFooter: *footer,
		},
		Logging: Logging{
			FilePath: *logFile,
			Trace:    *trace,
		},
		Lang:         *lang,
		FolderTTL:    *ttl,
		PopupCommand: strings.Fields(*popupCmd),
		MetricsAddr:  *metricsAddr,
		Flags: map[string]string{
			"config":      *programs,
			"browse":      *browse,
			"tray":        strconv.FormatBool(*tray),
			"width":       strconv.Itoa(*width),
			"height":      strconv.Itoa(*height),
			"footer":      strconv.FormatBool(*footer),
			"trace":       strconv.FormatBool(*trace),
			"logFile":     *logFile,
			"lang":        *lang,
			"ttl":         ttl.String(),
			"popupCmd":    *popupCmd,
			"metricsAddr": *metricsAddr,
		},
		Args: append([]string(nil), args...),
	}

	return cfg, nil
}

func defaultProgramsFile() string {
	exe, err := executablePath()
	if err != nil {
		return "config.ini"
	}
	return filepath.Join(filepath.Dir(exe), "config.ini")
}

func parseEnv(environ []string) map[string]string {
	values := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "=", 2)
		if len(parts) != 2 {
			continue
		}
		values[parts[0]] = parts[1]
	}
	return values
}

func envOrDefault(env map[string]string, key, fallback string) string {
	if v, ok := env[key]; ok {
		return v
	}
	return fallback
}

func envOrInt(env map[string]string, key string, fallback int) int {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrBool(env map[string]string, key string, fallback bool) bool {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func envOrDuration(env map[string]string, key string, fallback time.Duration) time.Duration {
	v, ok := env[key]
	if !ok || strings.TrimSpace(v) == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return parsed
}

// MustLoad returns configuration or exits.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(2)
	}
	return cfg
}

// Validate checks flag combinations that the parser alone cannot reject.
func Validate(cfg Config) error {
	if cfg.Mode == ModeTray && cfg.BrowsePath != "" {
		return errors.New("-tray and -browse are mutually exclusive")
	}
	if cfg.Mode == ModeTray && len(cfg.PopupCommand) == 0 {
		return errors.New("-popup-cmd must not be empty in tray mode")
	}
	return nil
}
