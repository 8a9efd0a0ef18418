// Package generate orchestrates a full rendering request: populate the
// template with a resume record, persist the LaTeX, and optionally compile
// it to a PDF artifact. The package holds no state between calls; output
// directories are created idempotently under an explicit root.
package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/jonathan/resume-typeset/internal/compile"
	"github.com/jonathan/resume-typeset/internal/rendering"
	"github.com/jonathan/resume-typeset/internal/resume"
)

// Default locations, relative to the working directory.
const (
	DefaultTemplatePath = "templates/resume.tex"
	DefaultOutputRoot   = "output"
)

// Subdirectories under the output root.
const (
	latexSubdir = "latex"
	pdfSubdir   = "pdfs"
	jsonSubdir  = "json"
)

// Options configures a single generation request.
type Options struct {
	TemplatePath string // defaults to DefaultTemplatePath
	OutputRoot   string // defaults to DefaultOutputRoot
	BaseName     string // output base name; sanitized, generated when empty
	Compile      bool   // compile the LaTeX to PDF
	CompileOpts  compile.Options
	Verbose      bool
}

// Result reports where a generation request landed on disk.
type Result struct {
	TexPath  string
	PDFPath  string
	Compiled bool
}

// Generate renders rec through the template and writes the LaTeX under
// <root>/latex. With Compile set it also invokes the toolchain, placing the
// artifact under <root>/pdfs; the returned Result carries the tex path even
// when compilation fails.
func Generate(ctx context.Context, rec *resume.Record, opts Options) (*Result, error) {
	templatePath := opts.TemplatePath
	if templatePath == "" {
		templatePath = DefaultTemplatePath
	}
	outputRoot := opts.OutputRoot
	if outputRoot == "" {
		outputRoot = DefaultOutputRoot
	}

	template, err := rendering.ReadTemplate(templatePath)
	if err != nil {
		return nil, err
	}
	content := rendering.Populate(template, rec)

	latexDir := filepath.Join(outputRoot, latexSubdir)
	if err := os.MkdirAll(latexDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", latexDir, err)
	}

	base := SanitizeBaseName(opts.BaseName)
	if base == "" {
		base = generatedBaseName()
	}

	texPath := filepath.Join(latexDir, base+".tex")
	if err := os.WriteFile(texPath, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("failed to write LaTeX output: %w", err)
	}
	if opts.Verbose {
		fmt.Fprintf(os.Stdout, "LaTeX resume generated: %s\n", texPath)
	}

	result := &Result{TexPath: texPath}
	if !opts.Compile {
		return result, nil
	}

	pdfDir := filepath.Join(outputRoot, pdfSubdir)
	compileOpts := opts.CompileOpts
	compileOpts.OutputDir = pdfDir
	if opts.Verbose {
		compileOpts.Verbose = true
	}

	// Bound the compiler unless the caller already did.
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, compile.DefaultTimeout)
		defer cancel()
	}

	pdfPath, err := compile.Compile(ctx, texPath, compileOpts)
	if err != nil {
		return result, err
	}
	result.PDFPath = pdfPath
	result.Compiled = true
	return result, nil
}

// SaveDocument writes the raw resume JSON next to the generated outputs,
// under <root>/json, and returns the written path.
func SaveDocument(data []byte, outputRoot, baseName string) (string, error) {
	if outputRoot == "" {
		outputRoot = DefaultOutputRoot
	}
	jsonDir := filepath.Join(outputRoot, jsonSubdir)
	if err := os.MkdirAll(jsonDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", jsonDir, err)
	}

	base := SanitizeBaseName(baseName)
	if base == "" {
		base = generatedBaseName()
	}

	path := filepath.Join(jsonDir, base+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save resume JSON: %w", err)
	}
	return path, nil
}

// SanitizeBaseName reduces a caller-supplied file name to alphanumeric
// characters. Path components and any extension are dropped first. Returns
// "" when nothing usable remains.
func SanitizeBaseName(name string) string {
	name = filepath.Base(name)
	if idx := strings.IndexByte(name, '.'); idx >= 0 {
		name = name[:idx]
	}
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// generatedBaseName builds a unique output name from a timestamp and a
// random suffix, so concurrent requests never collide on the filesystem.
func generatedBaseName() string {
	return fmt.Sprintf("resume_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8])
}
