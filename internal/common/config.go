package common

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. INVOICE_EXTRACTOR_DATA_PATH.
const EnvPrefix = "INVOICE_EXTRACTOR"

// Default values
const (
	DefaultRulesPath     = "config_file.yaml"
	DefaultOutputPath    = "output/output.xlsx"
	DefaultPattern       = "*.pdf"
	DefaultRequiredField = "invoice_number"
	DefaultMethod        = "native"
	DefaultTimeout       = 60 * time.Second
	DefaultWorkers       = 1
	DefaultLogLevel      = "info"
)

// Config holds all application configuration
type Config struct {
	Input    InputConfig
	Rules    RulesConfig
	Output   OutputConfig
	PDF      PDFConfig
	Pipeline PipelineConfig
	Ledger   LedgerConfig
	LogLevel string
}

// InputConfig describes where documents are discovered.
type InputConfig struct {
	DataPath   string
	Pattern    string
	SkipHidden bool
}

// RulesConfig points at the field_extractors file.
type RulesConfig struct {
	Path          string
	RequiredField string // overrides required_field from the rules file when set
}

// OutputConfig holds result table settings.
type OutputConfig struct {
	Path          string
	IncludeSource bool
}

// PDFConfig holds text acquisition settings.
type PDFConfig struct {
	Method    string // native | pdftotext | auto
	Pdftotext string
	Timeout   time.Duration
	Preflight bool
	MaxPages  int
}

// PipelineConfig holds batch execution settings.
type PipelineConfig struct {
	Workers int
}

// LedgerConfig holds the optional run ledger settings; an empty DSN disables it.
type LedgerConfig struct {
	DSN         string
	DialTimeout time.Duration
}

// NewFlagSet defines every command line flag with its default. Underscores in flag
// names are accepted as dashes, so --data_path and --data-path are the same flag.
func NewFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, n string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(n, "_", "-"))
	})

	fs.String("data-path", "", "folder containing the invoice PDFs (required)")
	fs.String("pattern", DefaultPattern, "glob matched against files under data-path, e.g. '**/*.pdf'")
	fs.Bool("skip-hidden", true, "skip dot-files and dot-directories")
	fs.String("config", DefaultRulesPath, "YAML file holding field_extractors")
	fs.String("required-field", "", "field that must be present for a row to be kept (default from config file, else invoice_number)")
	fs.String("output", DefaultOutputPath, "result table path (.xlsx or .csv); overwritten if it exists")
	fs.Bool("include-source", false, "add a source_file column to the result table")
	fs.String("method", DefaultMethod, "text extraction method: native, pdftotext or auto")
	fs.String("pdftotext", "pdftotext", "pdftotext binary used by the pdftotext and auto methods")
	fs.Duration("timeout", DefaultTimeout, "maximum time spent reading one document (0 disables)")
	fs.Bool("preflight", false, "validate PDF structure before text extraction")
	fs.Int("max-pages", 0, "read at most this many pages per document (0 = all)")
	fs.Int("workers", DefaultWorkers, "number of documents read concurrently")
	fs.String("ledger-dsn", "", "record runs in sqlite (path or sqlite://) or postgres (postgres://); empty disables")
	fs.Duration("ledger-dial-timeout", 3*time.Second, "ledger connection timeout")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	return fs
}

// LoadConfig parses args against fs, layering flags over INVOICE_EXTRACTOR_* environment
// variables over defaults. It returns pflag.ErrHelp when help was requested.
func LoadConfig(fs *pflag.FlagSet, args []string) (*Config, error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, err
		}
		return nil, NewAppError(CodeInvalidInput, "parse flags", joinCause(ErrInvalidInput, err))
	}

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, ConfigError("bind flags", err)
	}

	cfg := &Config{
		Input: InputConfig{
			DataPath:   v.GetString("data-path"),
			Pattern:    v.GetString("pattern"),
			SkipHidden: v.GetBool("skip-hidden"),
		},
		Rules: RulesConfig{
			Path:          v.GetString("config"),
			RequiredField: strings.TrimSpace(v.GetString("required-field")),
		},
		Output: OutputConfig{
			Path:          v.GetString("output"),
			IncludeSource: v.GetBool("include-source"),
		},
		PDF: PDFConfig{
			Method:    strings.ToLower(v.GetString("method")),
			Pdftotext: v.GetString("pdftotext"),
			Timeout:   v.GetDuration("timeout"),
			Preflight: v.GetBool("preflight"),
			MaxPages:  v.GetInt("max-pages"),
		},
		Pipeline: PipelineConfig{
			Workers: v.GetInt("workers"),
		},
		Ledger: LedgerConfig{
			DSN:         v.GetString("ledger-dsn"),
			DialTimeout: v.GetDuration("ledger-dial-timeout"),
		},
		LogLevel: v.GetString("log-level"),
	}

	// a positional argument is accepted as the data path
	if cfg.Input.DataPath == "" && fs.NArg() > 0 {
		cfg.Input.DataPath = fs.Arg(0)
	}
	if cfg.Input.DataPath != "" {
		if abs, err := filepath.Abs(cfg.Input.DataPath); err == nil {
			cfg.Input.DataPath = abs
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator().
		Field("data-path", c.Input.DataPath, Required).
		Field("pattern", c.Input.Pattern, Required).
		Field("config", c.Rules.Path, Required).
		Field("output", c.Output.Path, Required).
		Field("method", c.PDF.Method, OneOf("native", "pdftotext", "auto")).
		Field("timeout", c.PDF.Timeout, NonNegative).
		Field("max-pages", c.PDF.MaxPages, NonNegative).
		Field("workers", c.Pipeline.Workers, Positive).
		Field("log-level", c.LogLevel, OneOf("debug", "info", "warn", "error"))
	if v.HasErrors() {
		return ConfigError("invalid configuration", v.Error())
	}
	return nil
}

// SlogLevel maps LogLevel onto a slog.Level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// NewLogger builds the JSON logger used by every command.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// Usage writes a short usage text for fs to w.
func Usage(w io.Writer, name string, fs *pflag.FlagSet) {
	fmt.Fprintf(w, "Usage: %s --data-path <folder> [options]\n\n", name)
	fmt.Fprintf(w, "Extracts invoice fields from every PDF in <folder> and writes one table row per invoice.\n\n")
	fmt.Fprintf(w, "Options:\n")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintf(w, "\nEvery option can also be set as %s_<OPTION>, e.g. %s_DATA_PATH.\n", EnvPrefix, EnvPrefix)
}
