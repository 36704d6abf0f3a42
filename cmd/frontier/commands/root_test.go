package commands

import (
	"bytes"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/frontier/internal/analysisconfig"
)

func TestRootCommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"analyze", "presets", "serve", "warmup"} {
		assert.Contains(t, names, want)
	}
}

func TestAnalyzeFlags(t *testing.T) {
	for _, name := range []string{"preset", "tickers", "weights", "from", "to", "benchmark", "risk-free", "method", "chart-dir", "offline", "json"} {
		assert.NotNil(t, analyzeCmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("verbose"))
}

func TestFormatHelpers(t *testing.T) {
	var buf bytes.Buffer
	printHeader(&buf, "Title", []string{"A", "B", "C"}, map[string]string{"A": "1", "C": "3"})
	printSuccess(&buf, "done")
	printList(&buf, []string{"x", "y"})

	out := buf.String()
	assert.Contains(t, out, "  Title\n")
	assert.Contains(t, out, "  A         : 1\n")
	assert.NotContains(t, out, "  B ")
	assert.Contains(t, out, "✅ done\n")
	assert.Contains(t, out, "   • y\n")
}

func TestPresetHint(t *testing.T) {
	require.Equal(t, "available presets: A, B", presetHint([]string{"A", "B"}))
}

func TestHelpExamplesUseEmbeddedPresets(t *testing.T) {
	cfg, _, err := analysisconfig.Default()
	require.NoError(t, err)

	re := regexp.MustCompile(`--preset "([^"]+)"`)
	var found int
	for _, c := range []string{rootCmd.Long, analyzeCmd.Long} {
		for _, m := range re.FindAllStringSubmatch(c, -1) {
			found++
			_, ok := cfg.Preset(m[1])
			assert.True(t, ok, "unknown preset in help: %q", m[1])
		}
	}
	assert.Positive(t, found)
}
