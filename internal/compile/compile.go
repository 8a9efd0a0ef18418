// Package compile runs the external LaTeX toolchain to turn generated markup
// into a PDF artifact. Success is judged by artifact existence on disk, not
// by the compiler's exit code.
package compile

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// DefaultTimeout bounds a single compiler invocation. Callers may override
// it by passing their own context deadline.
const DefaultTimeout = 30 * time.Second

// Compiler selects the LaTeX engine latexmk drives.
type Compiler string

// Supported compiler back-ends.
const (
	PDFLaTeX Compiler = "pdflatex"
	LaTeX    Compiler = "latex"
	XeLaTeX  Compiler = "xelatex"
	LuaLaTeX Compiler = "lualatex"
)

// engineFlag maps the compiler selection to its latexmk flag. Unknown values
// fall back to pdflatex.
func (c Compiler) engineFlag() string {
	switch c {
	case LaTeX:
		return "-dvi"
	case XeLaTeX:
		return "-xelatex"
	case LuaLaTeX:
		return "-lualatex"
	default:
		return "-pdf"
	}
}

// auxExtensions lists intermediate artifacts removed by cleanup. The final
// PDF is never on this list.
var auxExtensions = []string{
	".aux", ".log", ".out", ".toc", ".lof", ".lot",
	".bbl", ".blg", ".fls", ".fdb_latexmk", ".synctex.gz",
	".nav", ".snm", ".vrb", ".run.xml", ".bcf", ".dvi",
}

// Options configures a single compilation.
type Options struct {
	Compiler    Compiler
	OutputDir   string // defaults to the directory of the .tex file
	StopOnError bool   // errorstopmode instead of nonstopmode
	Verbose     bool   // stream compiler output instead of capturing it
	OpenPDF     bool   // open the artifact with the platform viewer
	Cleanup     bool   // delete intermediate artifacts afterward
}

// CompilationError represents a failed compilation: the toolchain was
// missing, could not run, or produced no artifact.
type CompilationError struct {
	Message   string
	LogOutput string
	Cause     error
}

func (e *CompilationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("compilation error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("compilation error: %s", e.Message)
}

func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// Compile compiles texPath and returns the path of the produced PDF. The
// exit code alone proves nothing: a zero exit without an artifact is a
// failure, and a nonzero exit with an artifact on disk is a success.
func Compile(ctx context.Context, texPath string, opts Options) (string, error) {
	info, err := os.Stat(texPath)
	if err != nil || info.IsDir() {
		return "", &CompilationError{
			Message: fmt.Sprintf("input file not found: %s", texPath),
			Cause:   err,
		}
	}

	texAbs, err := filepath.Abs(texPath)
	if err != nil {
		return "", &CompilationError{Message: "failed to resolve input path", Cause: err}
	}
	baseName := strings.TrimSuffix(filepath.Base(texAbs), filepath.Ext(texAbs))

	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = filepath.Dir(texAbs)
	} else {
		if outputDir, err = filepath.Abs(outputDir); err != nil {
			return "", &CompilationError{Message: "failed to resolve output directory", Cause: err}
		}
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", &CompilationError{
			Message: fmt.Sprintf("failed to create output directory: %s", outputDir),
			Cause:   err,
		}
	}

	if _, err := exec.LookPath("latexmk"); err != nil {
		return "", &CompilationError{
			Message: "latexmk not found in PATH. Please install a LaTeX distribution (e.g., TeX Live, MiKTeX)",
			Cause:   err,
		}
	}

	interaction := "nonstopmode"
	if opts.StopOnError {
		interaction = "errorstopmode"
	}

	args := []string{
		opts.Compiler.engineFlag(),
		"-interaction=" + interaction,
		"-file-line-error",
		"-output-directory=" + outputDir,
	}
	if !opts.Verbose {
		args = append(args, "-silent")
	}
	args = append(args, texAbs)

	cmd := exec.CommandContext(ctx, "latexmk", args...)

	var captured strings.Builder
	if opts.Verbose {
		fmt.Fprintf(os.Stdout, "Running: latexmk %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	} else {
		cmd.Stdout = &captured
		cmd.Stderr = &captured
	}

	runErr := cmd.Run()

	pdfPath := filepath.Join(outputDir, baseName+".pdf")
	if _, err := os.Stat(pdfPath); err != nil {
		return "", &CompilationError{
			Message:   "compilation produced no PDF artifact",
			LogOutput: summarizeErrors(captured.String()),
			Cause:     runErr,
		}
	}

	// Artifact exists: success, but surface an error summary when the
	// compiler complained and output was being captured.
	if runErr != nil && !opts.Verbose {
		if summary := summarizeErrors(captured.String()); summary != "" {
			fmt.Fprintf(os.Stderr, "Compilation finished with errors:\n%s\n", summary)
		}
	}

	if opts.Cleanup {
		cleanupArtifacts(outputDir, baseName, opts.Verbose)
	}

	if opts.OpenPDF {
		openArtifact(pdfPath, opts.Verbose)
	}

	return pdfPath, nil
}

// summarizeErrors keeps only error-level lines from raw compiler output so
// the real cause is not buried in the full log.
func summarizeErrors(logOutput string) string {
	var lines []string
	for _, line := range strings.Split(logOutput, "\n") {
		if strings.Contains(line, "Error:") || strings.Contains(line, "Fatal error:") ||
			strings.Contains(line, "! ") {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// cleanupArtifacts removes known intermediate files for the compiled job.
// Individual deletion failures never fail the compilation; they are logged
// only in verbose mode.
func cleanupArtifacts(outputDir, baseName string, verbose bool) {
	for _, ext := range auxExtensions {
		path := filepath.Join(outputDir, baseName+ext)
		if err := os.Remove(path); err != nil {
			if verbose && !os.IsNotExist(err) {
				fmt.Fprintf(os.Stderr, "failed to remove %s: %v\n", path, err)
			}
			continue
		}
		if verbose {
			fmt.Fprintf(os.Stdout, "Removed: %s\n", path)
		}
	}
}

// openArtifact launches the platform viewer for the PDF. Failures are
// non-fatal.
func openArtifact(pdfPath string, verbose bool) {
	var opener string
	switch runtime.GOOS {
	case "darwin":
		opener = "open"
	case "windows":
		opener = "explorer"
	default:
		opener = "xdg-open"
	}
	if err := exec.Command(opener, pdfPath).Start(); err != nil && verbose {
		fmt.Fprintf(os.Stderr, "failed to open PDF: %v\n", err)
	}
}
