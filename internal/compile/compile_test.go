package compile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLatexmk installs a fake latexmk script at the front of PATH so tests
// control both the exit code and whether an artifact appears.
func stubLatexmk(t *testing.T, script string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "latexmk")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755))
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}

func writeTexFile(t *testing.T, dir string) string {
	t.Helper()
	texPath := filepath.Join(dir, "resume.tex")
	require.NoError(t, os.WriteFile(texPath, []byte(`\documentclass{article}\begin{document}x\end{document}`), 0644))
	return texPath
}

func TestCompile_ZeroExitWithoutArtifactFails(t *testing.T) {
	// Exit 0 alone is not proof of success.
	stubLatexmk(t, "exit 0")
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)

	_, err := Compile(context.Background(), texPath, Options{OutputDir: tmpDir})
	require.Error(t, err)
	var compErr *CompilationError
	assert.ErrorAs(t, err, &compErr)
	assert.Contains(t, err.Error(), "no PDF artifact")
}

func TestCompile_NonzeroExitWithArtifactSucceeds(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	stubLatexmk(t, fmt.Sprintf("echo data > %s\nexit 1", pdfPath))

	got, err := Compile(context.Background(), texPath, Options{OutputDir: tmpDir})
	require.NoError(t, err)
	assert.Equal(t, pdfPath, got)
}

func TestCompile_ArtifactInDefaultOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	stubLatexmk(t, fmt.Sprintf("echo data > %s\nexit 0", pdfPath))

	// No OutputDir: artifact lands next to the .tex file.
	got, err := Compile(context.Background(), texPath, Options{})
	require.NoError(t, err)
	assert.Equal(t, pdfPath, got)
}

func TestCompile_InputFileMissing(t *testing.T) {
	stubLatexmk(t, "exit 0")
	_, err := Compile(context.Background(), "/nonexistent/resume.tex", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input file not found")
}

func TestCompile_LatexmkMissing(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	t.Setenv("PATH", t.TempDir())

	_, err := Compile(context.Background(), texPath, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latexmk not found")
}

func TestCompile_CleanupRemovesAuxButKeepsPDF(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	auxPath := filepath.Join(tmpDir, "resume.aux")
	logPath := filepath.Join(tmpDir, "resume.log")
	stubLatexmk(t, fmt.Sprintf("echo d > %s\necho d > %s\necho d > %s\nexit 0", pdfPath, auxPath, logPath))

	_, err := Compile(context.Background(), texPath, Options{OutputDir: tmpDir, Cleanup: true})
	require.NoError(t, err)

	_, err = os.Stat(pdfPath)
	assert.NoError(t, err, "PDF must survive cleanup")
	_, err = os.Stat(auxPath)
	assert.True(t, os.IsNotExist(err), "aux file should be removed")
	_, err = os.Stat(logPath)
	assert.True(t, os.IsNotExist(err), "log file should be removed")
}

func TestCompile_CreatesOutputDir(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	outDir := filepath.Join(tmpDir, "nested", "out")
	pdfPath := filepath.Join(outDir, "resume.pdf")
	stubLatexmk(t, fmt.Sprintf("mkdir -p %s\necho d > %s\nexit 0", outDir, pdfPath))

	got, err := Compile(context.Background(), texPath, Options{OutputDir: outDir})
	require.NoError(t, err)
	assert.Equal(t, pdfPath, got)
}

func TestCompilerEngineFlags(t *testing.T) {
	assert.Equal(t, "-pdf", PDFLaTeX.engineFlag())
	assert.Equal(t, "-dvi", LaTeX.engineFlag())
	assert.Equal(t, "-xelatex", XeLaTeX.engineFlag())
	assert.Equal(t, "-lualatex", LuaLaTeX.engineFlag())
	assert.Equal(t, "-pdf", Compiler("unknown").engineFlag())
}

func TestSummarizeErrors(t *testing.T) {
	log := "This is latexmk\nsome chatter\n./resume.tex:10: Error: Undefined control sequence\nmore chatter\nFatal error: emergency stop"
	summary := summarizeErrors(log)
	assert.Contains(t, summary, "Undefined control sequence")
	assert.Contains(t, summary, "emergency stop")
	assert.NotContains(t, summary, "chatter")
}

func TestCompile_StopOnErrorPassesInteractionFlag(t *testing.T) {
	tmpDir := t.TempDir()
	texPath := writeTexFile(t, tmpDir)
	pdfPath := filepath.Join(tmpDir, "resume.pdf")
	argsFile := filepath.Join(tmpDir, "args.txt")
	stubLatexmk(t, fmt.Sprintf("echo \"$@\" > %s\necho d > %s\nexit 0", argsFile, pdfPath))

	_, err := Compile(context.Background(), texPath, Options{OutputDir: tmpDir, StopOnError: true})
	require.NoError(t, err)

	args, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(args), "-interaction=errorstopmode")
	assert.Contains(t, string(args), "-file-line-error")
}
