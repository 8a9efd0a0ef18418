// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jonathan/resume-typeset/internal/compile"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Template  string `json:"template,omitempty"`   // Path to LaTeX template
	OutputDir string `json:"output_dir,omitempty"` // Root directory for generated files
	BaseName  string `json:"base_name,omitempty"`  // Base name for output files

	// Compilation
	Compiler    string `json:"compiler,omitempty"`      // LaTeX engine: pdflatex, latex, xelatex, lualatex
	StopOnError bool   `json:"stop_on_error,omitempty"` // Halt the compiler at the first error
	Cleanup     bool   `json:"cleanup,omitempty"`       // Remove auxiliary files after compilation
	OpenPDF     bool   `json:"open_pdf,omitempty"`      // Open the PDF after a successful compile

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.Compiler != "" {
		switch compile.Compiler(c.Compiler) {
		case compile.PDFLaTeX, compile.LaTeX, compile.XeLaTeX, compile.LuaLaTeX:
		default:
			return fmt.Errorf("config error: unknown compiler %q (expected pdflatex, latex, xelatex, or lualatex)", c.Compiler)
		}
	}

	// Validate file paths exist (if specified)
	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.BaseName == "" {
		result.BaseName = defaults.BaseName
	}
	if result.Compiler == "" {
		result.Compiler = defaults.Compiler
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
