package discover_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	shapeinfer "go.shapeinfer.dev/shapeinfer"
	"go.shapeinfer.dev/shapeinfer/discover"
	"go.shapeinfer.dev/shapeinfer/filter"
)

func writeSamples(t *testing.T, dir string, samples []string) []string {
	t.Helper()

	paths := make([]string, len(samples))

	for i, s := range samples {
		path := filepath.Join(dir, filepathName(i))
		require.NoError(t, os.WriteFile(path, []byte(s), 0o644))
		paths[i] = path
	}

	return paths
}

func filepathName(i int) string {
	return string(rune('a'+i)) + ".json"
}

// TestShardingIsJoinInvariant folds the same set of files under several
// different shard counts and asserts the final lowered type is identical
// regardless of how the files were split across workers. This is the
// test SPEC_FULL.md's driver section calls for: Run's result must not
// depend on sharding because Join is commutative and associative.
func TestShardingIsJoinInvariant(t *testing.T) {
	dir := t.TempDir()

	samples := []string{
		`{"id": 1, "tags": ["a", "b"]}`,
		`{"id": 2, "tags": ["a"], "note": "x"}`,
		`{"id": 3, "tags": [], "note": null}`,
		`{"id": 4, "tags": ["a", "b", "c"]}`,
		`{"id": 5, "tags": ["a"], "extra": true}`,
	}

	paths := writeSamples(t, dir, samples)

	var results []*discover.Result

	for _, shards := range []int{1, 2, 3, 7} {
		result, err := discover.Run(context.Background(), paths, discover.WithShards(shards))
		require.NoError(t, err)
		assert.Empty(t, result.Errors)
		results = append(results, result)
	}

	for i := 1; i < len(results); i++ {
		assert.Equal(t, results[0].Ty, results[i].Ty, "sharding must not change the folded result")
	}
}

// TestRunSkipsBadFilesWithoutAbortingTheRest confirms one file's decode
// failure is reported in Result.Errors but doesn't stop the rest of the
// run from folding.
func TestRunSkipsBadFilesWithoutAbortingTheRest(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(good, []byte(`{"a": 1}`), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte(`not json`), 0o644))

	result, err := discover.Run(context.Background(), []string{good, bad}, discover.WithShards(2))
	require.NoError(t, err)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, bad, result.Errors[0].Path)
	assert.Equal(t, []string{good}, result.Files)
}

// TestRunGlobExpandsMatches confirms a glob argument expands to every
// matching file.
func TestRunGlobExpandsMatches(t *testing.T) {
	dir := t.TempDir()
	writeSamples(t, dir, []string{`{"a": 1}`, `{"a": 2}`, `{"a": 3}`})

	result, err := discover.Run(context.Background(), []string{filepath.Join(dir, "*.json")})
	require.NoError(t, err)
	assert.Len(t, result.Files, 3)
	assert.Empty(t, result.Errors)
}

// TestRunEmptyInputYieldsNull confirms an empty file list carries no
// evidence of any kind, matching Generator.Infer's zero-sample contract.
func TestRunEmptyInputYieldsNull(t *testing.T) {
	result, err := discover.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, shapeinfer.KindTyNull, result.Ty.Kind)
}

// TestRunFilterSelectsSubValue confirms a WithFilter expression is applied
// to each sample before folding, so the result describes the selected
// sub-value's shape rather than the whole document's.
func TestRunFilterSelectsSubValue(t *testing.T) {
	dir := t.TempDir()
	writeSamples(t, dir, []string{
		`{"id": 1, "name": "a"}`,
		`{"id": 2, "name": "b"}`,
	})

	expr, err := filter.Parse(".id")
	require.NoError(t, err)

	result, err := discover.Run(context.Background(), []string{filepath.Join(dir, "*.json")}, discover.WithFilter(expr))
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, shapeinfer.KindTyInteger, result.Ty.Kind)
}

// TestRunFilterIteratesArrayAsIndependentSamples confirms a "[]" iteration
// step re-folds every matched element as if it were its own top-level
// sample, rather than folding the array itself.
func TestRunFilterIteratesArrayAsIndependentSamples(t *testing.T) {
	dir := t.TempDir()
	writeSamples(t, dir, []string{
		`{"items": [{"price": 1}, {"price": 2.5}]}`,
		`{"items": [{"price": 3}]}`,
	})

	expr, err := filter.Parse(".items[].price")
	require.NoError(t, err)

	result, err := discover.Run(context.Background(), []string{filepath.Join(dir, "*.json")}, discover.WithFilter(expr))
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, shapeinfer.KindTyNumber, result.Ty.Kind)
}

// TestRunFilterResolvingToNothingSkipsFile confirms a sample where the
// filter resolves to zero values contributes no evidence and is left out
// of Result.Files.
func TestRunFilterResolvingToNothingSkipsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"other": 1}`), 0o644))

	expr, err := filter.Parse(".missing")
	require.NoError(t, err)

	result, err := discover.Run(context.Background(), []string{path}, discover.WithFilter(expr))
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Files)
}
