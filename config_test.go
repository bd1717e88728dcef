package shapeinfer

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigPolicyReflectsFlagOverrides(t *testing.T) {
	cfg := NewConfig()

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	cfg.RegisterFlags(flags)

	require.NoError(t, flags.Parse([]string{
		"--" + cfg.Flags.MaxNumLits, "4",
		"--" + cfg.Flags.StringEnum, "2",
	}))

	p := cfg.Policy()
	assert.Equal(t, 4, p.MaxNumLits)
	assert.Equal(t, 2, p.StringEnumMax)
	// Untouched knobs still come from DefaultPolicy.
	assert.Equal(t, DefaultPolicy().TupleMinSamples, p.TupleMinSamples)
}

func TestConfigNewGeneratorAppliesStrictSetting(t *testing.T) {
	cfg := NewConfig()
	cfg.Strict = false

	gen := cfg.NewGenerator()

	assert.False(t, gen.StrictCodegen())
}

// TestLoadConfigAppliesOverridesAndReturnsLiteralHints confirms a YAML
// config file's scalar fields land on Config and its hints: list comes
// back for the caller to wrap in a StaticHints; there is no hintSources:
// named-lookup path to resolve (see the Config doc comment).
func TestLoadConfigAppliesOverridesAndReturnsLiteralHints(t *testing.T) {
	cfg := NewConfig()

	doc := `
emit: go
maxNumLiterals: 8
strict: false
hints:
  - path: "$.count"
    preferInteger: true
`

	hints, err := LoadConfig(cfg, strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "go", cfg.Emit)
	assert.Equal(t, 8, cfg.MaxNumLits)
	assert.False(t, cfg.Strict)

	require.Len(t, hints, 1)
	assert.Equal(t, "$.count", hints[0].Path)
	require.NotNil(t, hints[0].PreferInteger)
	assert.True(t, *hints[0].PreferInteger)
}

func TestLoadConfigLeavesUnsetFieldsUntouched(t *testing.T) {
	cfg := NewConfig()
	cfg.Emit = "schema"
	cfg.MaxStrLits = 99

	hints, err := LoadConfig(cfg, strings.NewReader(`strict: false`))
	require.NoError(t, err)
	assert.Empty(t, hints)

	assert.Equal(t, "schema", cfg.Emit)
	assert.Equal(t, 99, cfg.MaxStrLits)
	assert.False(t, cfg.Strict)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	cfg := NewConfig()

	_, err := LoadConfig(cfg, strings.NewReader("not: [valid"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOption)
}
