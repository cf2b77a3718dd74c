package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/born-ml/stacklstm/internal/nn"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestTrainThenSample(t *testing.T) {
	dir := t.TempDir()
	corpus := writeFile(t, dir, "input.txt", "the quick brown fox jumps over the lazy dog")
	cfgPath := writeFile(t, dir, "config.yaml", "model:\n  hidden: 8\ntraining:\n  epochs: 3\n  sample_every: 0\n")
	out := filepath.Join(dir, "model.safetensors")

	err := runTrain([]string{"-config", cfgPath, "-corpus", corpus, "-out", out, "-layers", "1"}, quietLogger())
	require.NoError(t, err)

	checkpoint, err := nn.LoadCheckpoint(out, nn.LayerConfig{})
	require.NoError(t, err)
	assert.Equal(t, 1, checkpoint.Model.Len())
	assert.Equal(t, 8, checkpoint.Model.HiddenSize())
	assert.Equal(t, 3, checkpoint.Epoch)
	assert.Equal(t, int64(6), checkpoint.Step)

	var buf bytes.Buffer
	err = runSample([]string{"-model", out, "-length", "10", "-start", "t"}, &buf, quietLogger())
	require.NoError(t, err)

	text := strings.TrimSuffix(buf.String(), "\n")
	assert.Len(t, []rune(text), 11)
	assert.True(t, strings.HasPrefix(text, "t"))

	buf.Reset()
	err = runSample([]string{"-model", out, "-length", "5", "-n", "3", "-seed", "2"}, &buf, quietLogger())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	for _, line := range lines {
		assert.Len(t, []rune(line), 6)
	}

	// Resuming continues the step count with the saved vocabulary.
	err = runTrain([]string{"-corpus", corpus, "-out", out, "-resume", out, "-epochs", "1"}, quietLogger())
	require.NoError(t, err)
	checkpoint, err = nn.LoadCheckpoint(out, nn.LayerConfig{})
	require.NoError(t, err)
	assert.Equal(t, 4, checkpoint.Epoch)
	assert.Equal(t, int64(8), checkpoint.Step)
}

func TestTrainErrors(t *testing.T) {
	dir := t.TempDir()
	corpus := writeFile(t, dir, "input.txt", "abcabc")

	tests := []struct {
		name string
		args []string
	}{
		{"no corpus", []string{"-out", filepath.Join(dir, "m.safetensors")}},
		{"missing corpus file", []string{"-corpus", filepath.Join(dir, "missing.txt")}},
		{"invalid window", []string{"-corpus", corpus, "-window", "1"}},
		{"missing config", []string{"-config", filepath.Join(dir, "missing.yaml")}},
		{"bad log level", []string{"-corpus", corpus, "-log-level", "loud"}},
		{"unknown flag", []string{"-frobnicate"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, runTrain(tt.args, quietLogger()))
		})
	}
}

func TestSampleMissingModel(t *testing.T) {
	var buf bytes.Buffer
	err := runSample([]string{"-model", filepath.Join(t.TempDir(), "missing.safetensors")}, &buf, quietLogger())
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}

func TestSampleRejectsInvalidCounts(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.safetensors")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"negative count", []string{"-n", "-1"}, "-n must be at least 1"},
		{"zero count", []string{"-n", "0"}, "-n must be at least 1"},
		{"negative length", []string{"-length", "-1"}, "-length must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			var err error
			assert.NotPanics(t, func() {
				err = runSample(append([]string{"-model", missing}, tt.args...), &buf, quietLogger())
			})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Empty(t, buf.String())
		})
	}
}

func TestUsage(t *testing.T) {
	var buf bytes.Buffer
	usage(&buf)
	assert.Contains(t, buf.String(), "train")
	assert.Contains(t, buf.String(), "sample")
	assert.Contains(t, buf.String(), version)
}
