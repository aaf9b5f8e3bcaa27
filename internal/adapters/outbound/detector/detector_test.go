package detector_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ch1kim0n1/HackSentinel/internal/adapters/outbound/detector"
	"github.com/ch1kim0n1/HackSentinel/internal/domain"
)

const fixtureRoot = "../../../../testdata"

func TestDetect_NodeProject(t *testing.T) {
	det, err := detector.New().Detect(filepath.Join(fixtureRoot, "node-project"))
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectNodeJS, det.Type)
	assert.Equal(t, filepath.Join(fixtureRoot, "node-project", "package.json"), det.MarkerPath)
}

func TestDetect_GoProject(t *testing.T) {
	det, err := detector.New().Detect(filepath.Join(fixtureRoot, "go-project"))
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectGo, det.Type)
}

func TestDetect_MakefileProject(t *testing.T) {
	det, err := detector.New().Detect(filepath.Join(fixtureRoot, "make-project"))
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectMakefile, det.Type)
}

func TestDetect_PythonShebangWithoutRequirements(t *testing.T) {
	det, err := detector.New().Detect(filepath.Join(fixtureRoot, "python-project"))
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectPython, det.Type)
}

func TestDetect_GenericFallback(t *testing.T) {
	det, err := detector.New().Detect(filepath.Join(fixtureRoot, "generic-project"))
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectGeneric, det.Type)
	assert.Empty(t, det.MarkerPath)
}

func TestDetect_PriorityNodeBeatsMakefile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Makefile"), []byte("all:\n"), 0o644))

	det, err := detector.New().Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectNodeJS, det.Type)
}

func TestDetect_PriorityRequirementsBeatsGoMod(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "requirements.txt"), []byte("flask\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module x\n"), 0o644))

	det, err := detector.New().Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectPython, det.Type)
}

func TestDetect_MarkerInSubdirectoryIsIgnored(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sub, "package.json"), []byte("{}"), 0o644))

	det, err := detector.New().Detect(dir)
	require.NoError(t, err)
	assert.Equal(t, domain.ProjectGeneric, det.Type)
}

func TestDetect_MissingDirectory(t *testing.T) {
	_, err := detector.New().Detect(filepath.Join(fixtureRoot, "does-not-exist"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestDetect_FileInsteadOfDirectory(t *testing.T) {
	_, err := detector.New().Detect(filepath.Join(fixtureRoot, "node-project", "package.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDirectoryNotFound)
}

func TestHasPythonShebang(t *testing.T) {
	dir := t.TempDir()

	withShebang := filepath.Join(dir, "tool.py")
	require.NoError(t, os.WriteFile(withShebang, []byte("#!/usr/bin/env python3\nprint('x')\n"), 0o755))
	assert.True(t, detector.HasPythonShebang(withShebang))

	plain := filepath.Join(dir, "plain.py")
	require.NoError(t, os.WriteFile(plain, []byte("print('x')\n"), 0o644))
	assert.False(t, detector.HasPythonShebang(plain))
}
