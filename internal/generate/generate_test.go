package generate

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-typeset/internal/resume"
)

const testTemplate = `\documentclass{article}
\begin{document}
\begin{center}
\textbf{\Huge \scshape Sample Name} \\ \vspace{1pt}
\small sample
\end{center}
\end{document}
`

func writeTemplate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.tex")
	require.NoError(t, os.WriteFile(path, []byte(testTemplate), 0644))
	return path
}

func janeDoe() *resume.Record {
	return &resume.Record{
		PersonalInfo: resume.PersonalInfo{
			Present:    true,
			Kind:       resume.ShapeStructured,
			Structured: resume.PersonalDetails{Name: "Jane Doe", Email: "jane@x.com"},
		},
	}
}

func TestGenerate_WritesPopulatedLaTeX(t *testing.T) {
	root := t.TempDir()
	result, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: writeTemplate(t),
		OutputRoot:   root,
		BaseName:     "jane",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "latex", "jane.tex"), result.TexPath)
	assert.False(t, result.Compiled)

	content, err := os.ReadFile(result.TexPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Jane Doe")
	assert.NotContains(t, string(content), "Sample Name")
}

func TestGenerate_BaseNameSanitized(t *testing.T) {
	root := t.TempDir()
	result, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: writeTemplate(t),
		OutputRoot:   root,
		BaseName:     "../jane doe!.tex",
	})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "latex", "janedoe.tex"), result.TexPath)
}

func TestGenerate_GeneratedNameWhenBaseEmpty(t *testing.T) {
	root := t.TempDir()
	result, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: writeTemplate(t),
		OutputRoot:   root,
	})
	require.NoError(t, err)

	base := strings.TrimSuffix(filepath.Base(result.TexPath), ".tex")
	assert.Regexp(t, regexp.MustCompile(`^resume_\d{8}_\d{6}_[0-9a-f]{8}$`), base)
}

func TestGenerate_TemplateMissing(t *testing.T) {
	_, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: "/nonexistent/resume.tex",
		OutputRoot:   t.TempDir(),
	})
	assert.Error(t, err)
}

func TestGenerate_CompileProducesArtifact(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}
	root := t.TempDir()
	pdfPath := filepath.Join(root, "pdfs", "jane.pdf")

	stubDir := t.TempDir()
	script := fmt.Sprintf("#!/bin/sh\nmkdir -p %s\necho d > %s\nexit 0\n", filepath.Dir(pdfPath), pdfPath)
	require.NoError(t, os.WriteFile(filepath.Join(stubDir, "latexmk"), []byte(script), 0755))
	t.Setenv("PATH", stubDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	result, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: writeTemplate(t),
		OutputRoot:   root,
		BaseName:     "jane",
		Compile:      true,
	})
	require.NoError(t, err)
	assert.True(t, result.Compiled)
	assert.Equal(t, pdfPath, result.PDFPath)
}

func TestGenerate_CompileFailureStillReturnsTexPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stub compiler scripts require a POSIX shell")
	}
	stubDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(stubDir, "latexmk"), []byte("#!/bin/sh\nexit 0\n"), 0755))
	t.Setenv("PATH", stubDir+string(os.PathListSeparator)+os.Getenv("PATH"))

	root := t.TempDir()
	result, err := Generate(context.Background(), janeDoe(), Options{
		TemplatePath: writeTemplate(t),
		OutputRoot:   root,
		BaseName:     "jane",
		Compile:      true,
	})
	require.Error(t, err)
	require.NotNil(t, result)
	assert.Equal(t, filepath.Join(root, "latex", "jane.tex"), result.TexPath)
	assert.False(t, result.Compiled)
}

func TestSaveDocument(t *testing.T) {
	root := t.TempDir()
	path, err := SaveDocument([]byte(`{"personal_info": {"name": "Jane"}}`), root, "jane")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "json", "jane.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jane")
}

func TestSanitizeBaseName(t *testing.T) {
	assert.Equal(t, "resume1", SanitizeBaseName("resume1"))
	assert.Equal(t, "resume", SanitizeBaseName("resume.tex"))
	assert.Equal(t, "janedoe", SanitizeBaseName("jane doe!"))
	assert.Equal(t, "", SanitizeBaseName("../../"))
	assert.Equal(t, "", SanitizeBaseName(""))
}

func TestSanitizeBaseName_DropsEverythingAfterFirstDot(t *testing.T) {
	assert.Equal(t, "archive", SanitizeBaseName("archive.tar.gz"))
}
