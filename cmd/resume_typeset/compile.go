package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-typeset/internal/compile"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile an existing LaTeX file to PDF",
	Long:  "Runs latexmk against a LaTeX file and reports whether a PDF artifact was produced. Compiler warnings do not fail the run as long as the PDF exists.",
	RunE:  runCompile,
}

var (
	compileTexFile     string
	compileOutputDir   string
	compileCompiler    string
	compileTimeout     time.Duration
	compileStopOnError bool
	compileCleanup     bool
	compileOpenPDF     bool
	compileVerbose     bool
)

func init() {
	compileCmd.Flags().StringVarP(&compileTexFile, "tex", "f", "", "Path to LaTeX file (required)")
	compileCmd.Flags().StringVar(&compileOutputDir, "output-dir", "", "Directory for the PDF and auxiliary files (defaults to the LaTeX file's directory)")
	compileCmd.Flags().StringVar(&compileCompiler, "compiler", string(compile.PDFLaTeX), "LaTeX engine: pdflatex, latex, xelatex, lualatex")
	compileCmd.Flags().DurationVar(&compileTimeout, "timeout", compile.DefaultTimeout, "Maximum time to wait for the compiler")
	compileCmd.Flags().BoolVar(&compileStopOnError, "stop-on-error", false, "Halt the compiler at the first error")
	compileCmd.Flags().BoolVar(&compileCleanup, "cleanup", false, "Remove auxiliary files after compilation")
	compileCmd.Flags().BoolVar(&compileOpenPDF, "open", false, "Open the PDF after a successful compile")
	compileCmd.Flags().BoolVarP(&compileVerbose, "verbose", "v", false, "Stream compiler output")

	_ = compileCmd.MarkFlagRequired("tex")

	rootCmd.AddCommand(compileCmd)
}

func runCompile(_ *cobra.Command, _ []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), compileTimeout)
	defer cancel()

	pdfPath, err := compile.Compile(ctx, compileTexFile, compile.Options{
		Compiler:    compile.Compiler(compileCompiler),
		OutputDir:   compileOutputDir,
		StopOnError: compileStopOnError,
		Cleanup:     compileCleanup,
		OpenPDF:     compileOpenPDF,
		Verbose:     compileVerbose,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "PDF output: %s\n", pdfPath)
	return nil
}
