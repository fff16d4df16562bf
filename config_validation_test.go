package qwery_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	qwery "github.com/qwery-sql/qwery"
	"github.com/qwery-sql/qwery/scope"
)

func TestBindConstantsResolvesCELExpression(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "consts.yaml")

	require.NoError(t, os.WriteFile(path, []byte(`ceiling: "${{ 1.0 + 0.1 }}"`+"\n"), 0o644))

	cfg := &qwery.Config{ConstantFiles: []string{path}}
	root := scope.New()

	require.NoError(t, cfg.BindConstants(context.Background(), root))

	v, ok, err := root.Lookup(context.Background(), "ceiling")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.1", v)
}

func TestBindConstantsLeavesPlainValuesAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "consts.yaml")

	require.NoError(t, os.WriteFile(path, []byte("region: US\n"), 0o644))

	cfg := &qwery.Config{ConstantFiles: []string{path}}
	root := scope.New()

	require.NoError(t, cfg.BindConstants(context.Background(), root))

	v, ok, err := root.Lookup(context.Background(), "region")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "US", v)
}

func TestBindConstantsReportsMissingFile(t *testing.T) {
	cfg := &qwery.Config{ConstantFiles: []string{filepath.Join(t.TempDir(), "missing.yaml")}}

	err := cfg.BindConstants(context.Background(), scope.New())
	assert.ErrorIs(t, err, qwery.ErrConstantFile)
}
