package shapeinfer

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Flags holds CLI flag names for inference configuration, allowing
// callers to customize flag names while keeping sensible defaults.
type Flags struct {
	Output       string
	Emit         string
	MaxNumLits   string
	MaxStrLits   string
	StringEnum   string
	TupleSamples string
	AuditLog     string
	Strict       string
}

// Config holds CLI flag values plus what RegisterFlags and NewGenerator
// need. Create instances with NewConfig, register CLI flags with
// Config.RegisterFlags, and build a Generator with Config.NewGenerator.
//
// The teacher's analogous Config carries a Registry mapping a named
// --annotators source to a constructor (four Helm-ecosystem comment-style
// parsers). That indirection exists because YAML documents can carry
// embedded annotation comments in several competing conventions, each
// needing its own parser. JSON samples have no comments to detect a
// convention from, so there is nothing for a named, pluggable source to
// parse; the only Hints this package can ever produce come from a caller
// supplying them directly. Hint overrides are loaded exclusively via a
// config file's literal hints: list (see fileConfig.Hints, LoadConfigFile),
// wrapped in a StaticHints by the caller.
type Config struct {
	Flags Flags

	Output       string
	Emit         string
	AuditLog     string
	Strict       bool
	MaxNumLits   int
	MaxStrLits   int
	StringEnum   int
	TupleSamples int
}

// NewConfig returns a new Config with default flag names and the
// DefaultPolicy's numeric defaults pre-filled.
func NewConfig() *Config {
	p := DefaultPolicy()

	return &Config{
		Flags: Flags{
			Output:       "output",
			Emit:         "emit",
			MaxNumLits:   "max-num-literals",
			MaxStrLits:   "max-str-literals",
			StringEnum:   "string-enum-max",
			TupleSamples: "tuple-min-samples",
			AuditLog:     "audit-log",
			Strict:       "strict",
		},
		Emit:         "schema",
		MaxNumLits:   p.MaxNumLits,
		MaxStrLits:   p.MaxStrLits,
		StringEnum:   p.StringEnumMax,
		TupleSamples: p.TupleMinSamples,
	}
}

// RegisterFlags adds inference flags to flags.
func (c *Config) RegisterFlags(flags *pflag.FlagSet) {
	flags.StringVarP(&c.Output, c.Flags.Output, "o", "-",
		"output file path (- for stdout)")
	flags.StringVarP(&c.Emit, c.Flags.Emit, "e", c.Emit,
		"output kind: schema or go")
	flags.IntVar(&c.MaxNumLits, c.Flags.MaxNumLits, c.MaxNumLits,
		"cap on distinct numeric literals retained per node")
	flags.IntVar(&c.MaxStrLits, c.Flags.MaxStrLits, c.MaxStrLits,
		"cap on distinct string literals retained per node")
	flags.IntVar(&c.StringEnum, c.Flags.StringEnum, c.StringEnum,
		"max distinct string literals before falling back to a pattern")
	flags.IntVar(&c.TupleSamples, c.Flags.TupleSamples, c.TupleSamples,
		"minimum observed arrays before the tuple hypothesis is considered")
	flags.StringVar(&c.AuditLog, c.Flags.AuditLog, "",
		"path to a JSON-lines audit log of per-run decisions (disabled if empty)")
	flags.BoolVar(&c.Strict, c.Flags.Strict, true,
		"reject unknown object fields in generated Go deserializers")
}

// RegisterCompletions registers shell completions for inference flags on
// cmd.
func (c *Config) RegisterCompletions(cmd *cobra.Command) error {
	err := cmd.RegisterFlagCompletionFunc(c.Flags.Emit,
		cobra.FixedCompletions([]string{"schema", "go"}, cobra.ShellCompDirectiveNoFileComp))
	if err != nil {
		return fmt.Errorf("registering %s completion: %w", c.Flags.Emit, err)
	}

	noFileComp := func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	for _, flag := range []string{c.Flags.MaxNumLits, c.Flags.MaxStrLits, c.Flags.StringEnum, c.Flags.TupleSamples} {
		regErr := cmd.RegisterFlagCompletionFunc(flag, noFileComp)
		if regErr != nil {
			return fmt.Errorf("registering %s completion: %w", flag, regErr)
		}
	}

	return nil
}

// Policy builds the *Policy this Config's flag values describe, leaving
// every other knob at DefaultPolicy.
func (c *Config) Policy() *Policy {
	p := DefaultPolicy()
	p.MaxNumLits = c.MaxNumLits
	p.MaxStrLits = c.MaxStrLits
	p.StringEnumMax = c.StringEnum
	p.TupleMinSamples = c.TupleSamples

	return p
}

// NewGenerator builds a Generator from this Config. Hint sources are not
// this Config's concern (see the Config doc comment); callers that have
// resolved Hints of their own pass them through shapeinfer.WithHinters
// alongside this Generator's Policy and strict-codegen setting.
func (c *Config) NewGenerator() *Generator {
	return NewGenerator(WithPolicy(c.Policy()), WithStrictCodegen(c.Strict))
}

// fileConfig is the on-disk shape LoadConfigFile parses; it mirrors
// Config's flag-settable fields plus a literal hints list.
type fileConfig struct {
	Emit         string `yaml:"emit"`
	MaxNumLits   int    `yaml:"maxNumLiterals"`
	MaxStrLits   int    `yaml:"maxStrLiterals"`
	StringEnum   int    `yaml:"stringEnumMax"`
	TupleSamples int    `yaml:"tupleMinSamples"`
	AuditLog     string `yaml:"auditLog"`
	Strict       *bool  `yaml:"strict"`
	Hints        []Hint `yaml:"hints"`
}

// LoadConfigFile reads a YAML config file and applies every field it sets
// onto c, leaving fields the file omits untouched. Returns the literal
// Hint list the file declared directly (if any), for the caller to wrap
// in a StaticHints.
func LoadConfigFile(c *Config, path string) ([]Hint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}
	defer f.Close()

	return LoadConfig(c, f)
}

// LoadConfig is LoadConfigFile reading from an already-open r.
func LoadConfig(c *Config, r io.Reader) ([]Hint, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadInput, err)
	}

	var fc fileConfig

	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOption, err)
	}

	if fc.Emit != "" {
		c.Emit = fc.Emit
	}

	if fc.MaxNumLits != 0 {
		c.MaxNumLits = fc.MaxNumLits
	}

	if fc.MaxStrLits != 0 {
		c.MaxStrLits = fc.MaxStrLits
	}

	if fc.StringEnum != 0 {
		c.StringEnum = fc.StringEnum
	}

	if fc.TupleSamples != 0 {
		c.TupleSamples = fc.TupleSamples
	}

	if fc.AuditLog != "" {
		c.AuditLog = fc.AuditLog
	}

	if fc.Strict != nil {
		c.Strict = *fc.Strict
	}

	return fc.Hints, nil
}
