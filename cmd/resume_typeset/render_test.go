package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliTestTemplate = `\documentclass{article}
\begin{document}
\begin{center}
\textbf{\Huge \scshape Sample Name} \\ \vspace{1pt}
\small sample
\end{center}
\end{document}
`

// resetRenderFlags restores the package-level flag state after a test so
// tests can run in any order.
func resetRenderFlags(t *testing.T) {
	t.Helper()
	savedJSON, savedBatch := renderJSONFile, renderBatchDir
	savedTemplate, savedOut, savedDir := renderTemplate, renderOutputName, renderOutputDir
	savedSkip, savedSave, savedCompile := renderSkipSchema, renderSaveJSON, renderCompile
	savedConcurrency := renderConcurrency
	t.Cleanup(func() {
		renderJSONFile, renderBatchDir = savedJSON, savedBatch
		renderTemplate, renderOutputName, renderOutputDir = savedTemplate, savedOut, savedDir
		renderSkipSchema, renderSaveJSON, renderCompile = savedSkip, savedSave, savedCompile
		renderConcurrency = savedConcurrency
	})
}

func writeCLIFixtures(t *testing.T) (templatePath, jsonPath string) {
	t.Helper()
	dir := t.TempDir()
	templatePath = filepath.Join(dir, "resume.tex")
	require.NoError(t, os.WriteFile(templatePath, []byte(cliTestTemplate), 0644))
	jsonPath = filepath.Join(dir, "jane.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"personal_info": {"name": "Jane Doe", "email": "jane@x.com"}}`), 0644))
	return templatePath, jsonPath
}

func TestRenderOne_WritesLaTeX(t *testing.T) {
	resetRenderFlags(t)
	templatePath, jsonPath := writeCLIFixtures(t)

	root := t.TempDir()
	renderTemplate = templatePath
	renderOutputDir = root
	renderSkipSchema = true
	renderCompile = false

	require.NoError(t, renderOne(context.Background(), jsonPath, "jane"))

	content, err := os.ReadFile(filepath.Join(root, "latex", "jane.tex"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "Jane Doe")
}

func TestRenderOne_SaveJSON(t *testing.T) {
	resetRenderFlags(t)
	templatePath, jsonPath := writeCLIFixtures(t)

	root := t.TempDir()
	renderTemplate = templatePath
	renderOutputDir = root
	renderSkipSchema = true
	renderSaveJSON = true

	require.NoError(t, renderOne(context.Background(), jsonPath, "jane"))

	data, err := os.ReadFile(filepath.Join(root, "json", "jane.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Jane Doe")
}

func TestRenderOne_InvalidJSON(t *testing.T) {
	resetRenderFlags(t)
	templatePath, _ := writeCLIFixtures(t)

	jsonPath := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`not json at all []`), 0644))

	renderTemplate = templatePath
	renderOutputDir = t.TempDir()
	renderSkipSchema = true

	assert.Error(t, renderOne(context.Background(), jsonPath, "bad"))
}

func TestRenderBatch_RendersEveryFile(t *testing.T) {
	resetRenderFlags(t)
	templatePath, _ := writeCLIFixtures(t)

	batchDir := t.TempDir()
	for _, name := range []string{"alice", "bob", "carol"} {
		doc := `{"personal_info": {"name": "` + name + `"}}`
		require.NoError(t, os.WriteFile(filepath.Join(batchDir, name+".json"), []byte(doc), 0644))
	}

	root := t.TempDir()
	renderTemplate = templatePath
	renderOutputDir = root
	renderSkipSchema = true
	renderConcurrency = 2

	require.NoError(t, renderBatch(context.Background(), batchDir))

	for _, name := range []string{"alice", "bob", "carol"} {
		_, err := os.Stat(filepath.Join(root, "latex", name+".tex"))
		assert.NoError(t, err, name)
	}
}

func TestRenderBatch_EmptyDir(t *testing.T) {
	resetRenderFlags(t)
	assert.Error(t, renderBatch(context.Background(), t.TempDir()))
}
