// Package qwery ties together the Tokenizer, Statement Compiler, and
// Scope/Executable runtime (packages tokenizer, compiler, scope, exec)
// into a single entry point, plus the ambient configuration that governs
// a run: strict-function policy and namespace constant files.
package qwery

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/qwery-sql/qwery/scope"
)

// Config is qwery's run configuration (spec.md §4.6, SPEC_FULL.md §4.6):
// whether a missing scalar function raises ResolutionError or returns
// NULL, and which constant files feed `$name` Scope bindings.
type Config struct {
	StrictFunctions bool     `yaml:"strict_functions"`
	ConstantFiles   []string `yaml:"constant_files"`
}

// LoadConfig reads configPath's YAML, defaulting to a zero-value Config
// (StrictFunctions false, no constant files) if the file doesn't exist —
// mirroring the teacher's LoadConfig fallback-to-defaults behavior. A
// `.env` file in the working directory is loaded first, the same order
// the teacher's LoadConfig uses, so constant-file paths and any `$VAR`
// references inside them can draw on it.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFile(); err != nil {
		return nil, err
	}

	if !fileExists(configPath) {
		return &Config{}, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %q: %v", ErrConfigValidation, configPath, err)
	}

	var cfg Config

	if err := yaml.UnmarshalWithOptions(data, &cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: parsing %q: %v", ErrConfigValidation, configPath, err)
	}

	for i, file := range cfg.ConstantFiles {
		cfg.ConstantFiles[i] = expandEnvVars(file)
	}

	return &cfg, nil
}

// BindConstants reads each of c.ConstantFiles (a YAML map of name to
// literal or `${{ cel-expression }}` string) and binds the results into
// root (spec.md §8's testable scenario 10: a constant file declaring
// `ceiling: "${{ 1.0 + 0.1 }}"` makes `$ceiling` expand to "1.1"). Files
// are processed in order, and each file's keys in sorted order, so a
// later constant's CEL expression can reference an earlier one already
// bound into root.
func (c *Config) BindConstants(ctx context.Context, root *scope.Scope) error {
	for _, path := range c.ConstantFiles {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("%w: reading %q: %v", ErrConstantFile, path, err)
		}

		var values map[string]any
		if err := yaml.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("%w: parsing %q: %v", ErrConstantFile, path, err)
		}

		names := make([]string, 0, len(values))
		for name := range values {
			names = append(names, name)
		}

		sort.Strings(names)

		for _, name := range names {
			resolved, err := resolveConstant(ctx, root, values[name])
			if err != nil {
				return fmt.Errorf("%w: constant %q in %q: %v", ErrConstantFile, name, path, err)
			}

			root.Bind(name, resolved)
		}
	}

	return nil
}

// resolveConstant passes a string value through Scope.Expand so a
// `${{ cel-expression }}` constant is computed once at bind time rather
// than re-evaluated on every reference; any other value (or a plain
// string with no interpolation) is bound verbatim.
func resolveConstant(ctx context.Context, root *scope.Scope, v any) (any, error) {
	s, ok := v.(string)
	if !ok || !strings.Contains(s, "${{") {
		return v, nil
	}

	return root.Expand(ctx, s)
}

func loadEnvFile() error {
	if !fileExists(".env") {
		return nil
	}

	if err := godotenv.Load(".env"); err != nil {
		return fmt.Errorf("%w: loading .env: %v", ErrConfigValidation, err)
	}

	return nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$([A-Za-z_][A-Za-z0-9_]*)`)

// expandEnvVars expands `${VAR}`/`$VAR` references against the process
// environment, the same two forms the teacher's expandEnvVars supports.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if groups[1] != "" {
			return os.Getenv(groups[1])
		}

		return os.Getenv(groups[2])
	})
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
