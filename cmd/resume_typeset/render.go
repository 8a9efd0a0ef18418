package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/resume-typeset/internal/compile"
	"github.com/jonathan/resume-typeset/internal/config"
	"github.com/jonathan/resume-typeset/internal/generate"
	"github.com/jonathan/resume-typeset/internal/resume"
	"github.com/jonathan/resume-typeset/internal/schemas"
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a resume JSON document to LaTeX",
	Long:  "Populates the LaTeX template with the sections of a resume JSON document and writes the result under the output directory, optionally compiling it to PDF.",
	RunE:  runRender,
}

var (
	renderJSONFile    string
	renderBatchDir    string
	renderTemplate    string
	renderOutputName  string
	renderOutputDir   string
	renderConfigFile  string
	renderCompiler    string
	renderConcurrency int
	renderCompile     bool
	renderStopOnError bool
	renderCleanup     bool
	renderOpenPDF     bool
	renderSaveJSON    bool
	renderSkipSchema  bool
	renderVerbose     bool
)

func init() {
	renderCmd.Flags().StringVarP(&renderJSONFile, "json", "j", "", "Path to resume JSON file")
	renderCmd.Flags().StringVar(&renderBatchDir, "batch", "", "Directory of resume JSON files to render in one run")
	renderCmd.Flags().StringVarP(&renderTemplate, "template", "t", generate.DefaultTemplatePath, "Path to LaTeX template file")
	renderCmd.Flags().StringVarP(&renderOutputName, "out", "o", "", "Base name for output files (generated when empty)")
	renderCmd.Flags().StringVar(&renderOutputDir, "output-dir", generate.DefaultOutputRoot, "Root directory for generated files")
	renderCmd.Flags().StringVar(&renderConfigFile, "config", "", "Path to JSON config file")
	renderCmd.Flags().StringVar(&renderCompiler, "compiler", string(compile.PDFLaTeX), "LaTeX engine: pdflatex, latex, xelatex, lualatex")
	renderCmd.Flags().IntVar(&renderConcurrency, "concurrency", 4, "Parallel renders in batch mode")
	renderCmd.Flags().BoolVar(&renderCompile, "compile", false, "Compile the generated LaTeX to PDF")
	renderCmd.Flags().BoolVar(&renderStopOnError, "stop-on-error", false, "Halt the compiler at the first error")
	renderCmd.Flags().BoolVar(&renderCleanup, "cleanup", false, "Remove auxiliary files after compilation")
	renderCmd.Flags().BoolVar(&renderOpenPDF, "open", false, "Open the PDF after a successful compile")
	renderCmd.Flags().BoolVar(&renderSaveJSON, "save-json", false, "Save a copy of the input JSON under the output directory")
	renderCmd.Flags().BoolVar(&renderSkipSchema, "skip-validation", false, "Skip JSON Schema validation of the input")
	renderCmd.Flags().BoolVarP(&renderVerbose, "verbose", "v", false, "Print detailed progress information")

	rootCmd.AddCommand(renderCmd)
}

// applyRenderConfig fills flag values from the config file for flags the
// user did not set explicitly.
func applyRenderConfig(cmd *cobra.Command) error {
	if renderConfigFile == "" {
		return nil
	}

	cfg, err := config.LoadConfig(renderConfigFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	flags := cmd.Flags()
	if !flags.Changed("template") && cfg.Template != "" {
		renderTemplate = cfg.Template
	}
	if !flags.Changed("output-dir") && cfg.OutputDir != "" {
		renderOutputDir = cfg.OutputDir
	}
	if !flags.Changed("out") && cfg.BaseName != "" {
		renderOutputName = cfg.BaseName
	}
	if !flags.Changed("compiler") && cfg.Compiler != "" {
		renderCompiler = cfg.Compiler
	}
	if !flags.Changed("stop-on-error") {
		renderStopOnError = cfg.StopOnError
	}
	if !flags.Changed("cleanup") {
		renderCleanup = cfg.Cleanup
	}
	if !flags.Changed("open") {
		renderOpenPDF = cfg.OpenPDF
	}
	if !flags.Changed("verbose") && cfg.Verbose {
		renderVerbose = true
	}
	return nil
}

func runRender(cmd *cobra.Command, _ []string) error {
	if renderJSONFile == "" && renderBatchDir == "" {
		return fmt.Errorf("must provide --json or --batch")
	}
	if renderJSONFile != "" && renderBatchDir != "" {
		return fmt.Errorf("--json and --batch are mutually exclusive")
	}

	if err := applyRenderConfig(cmd); err != nil {
		return err
	}

	ctx := context.Background()

	if renderBatchDir != "" {
		return renderBatch(ctx, renderBatchDir)
	}
	return renderOne(ctx, renderJSONFile, renderOutputName)
}

func renderOne(ctx context.Context, jsonPath, baseName string) error {
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to read resume JSON %s: %w", jsonPath, err)
	}

	if !renderSkipSchema {
		if err := schemas.ValidateResumeDocument(data); err != nil {
			return fmt.Errorf("resume document %s is invalid: %w", jsonPath, err)
		}
	}

	rec, err := resume.ParseDocument(data)
	if err != nil {
		return fmt.Errorf("failed to parse resume JSON %s: %w", jsonPath, err)
	}

	opts := generate.Options{
		TemplatePath: renderTemplate,
		OutputRoot:   renderOutputDir,
		BaseName:     baseName,
		Compile:      renderCompile,
		CompileOpts: compile.Options{
			Compiler:    compile.Compiler(renderCompiler),
			StopOnError: renderStopOnError,
			Cleanup:     renderCleanup,
			OpenPDF:     renderOpenPDF,
			Verbose:     renderVerbose,
		},
		Verbose: renderVerbose,
	}

	result, err := generate.Generate(ctx, rec, opts)
	if err != nil {
		return err
	}

	if renderSaveJSON {
		base := strings.TrimSuffix(filepath.Base(result.TexPath), ".tex")
		savedPath, err := generate.SaveDocument(data, renderOutputDir, base)
		if err != nil {
			return err
		}
		if renderVerbose {
			fmt.Fprintf(os.Stdout, "Resume JSON saved: %s\n", savedPath)
		}
	}

	fmt.Fprintf(os.Stdout, "LaTeX output: %s\n", result.TexPath)
	if result.Compiled {
		fmt.Fprintf(os.Stdout, "PDF output: %s\n", result.PDFPath)
	}
	return nil
}

func renderBatch(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read batch directory %s: %w", dir, err)
	}

	var jsonFiles []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		jsonFiles = append(jsonFiles, filepath.Join(dir, entry.Name()))
	}
	if len(jsonFiles) == 0 {
		return fmt.Errorf("no .json files found in %s", dir)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(renderConcurrency)

	for _, path := range jsonFiles {
		path := path
		g.Go(func() error {
			base := strings.TrimSuffix(filepath.Base(path), ".json")
			if err := renderOne(ctx, path, base); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Rendered %d resumes from %s\n", len(jsonFiles), dir)
	return nil
}
