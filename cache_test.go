package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thiremani/exprlower/compiler"
)

func TestDefaultCacheDirFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(cacheEnv, dir)
	assert.Equal(t, dir, defaultCacheDir())

	t.Setenv(cacheEnv, "")
	assert.Contains(t, defaultCacheDir(), cacheDirName)
}

func TestIsHashDir(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"0123abcd", true},
		{"0123abc", false},
		{"0123abcdef", false},
		{"0123abcg", false},
		{".lock", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isHashDir(tt.name), tt.name)
	}
}

func TestOutputKey(t *testing.T) {
	short, full := outputKey(compiler.Options{BoundsCheck: true}, []string{"arith"})
	require.True(t, isHashDir(short))
	require.Equal(t, full[:len(short)], short)

	again, _ := outputKey(compiler.Options{BoundsCheck: true}, []string{"arith"})
	assert.Equal(t, short, again)

	other, _ := outputKey(compiler.Options{}, []string{"arith"})
	assert.NotEqual(t, short, other)
	other, _ = outputKey(compiler.Options{BoundsCheck: true}, []string{"arith", "index"})
	assert.NotEqual(t, short, other)
}

func TestWriteOutputs(t *testing.T) {
	cache := t.TempDir()
	files := map[string][]byte{
		"a.ir": []byte("(add x y)\n"),
		"m.ll": []byte("define i32 @f()\n"),
	}
	short, full := outputKey(compiler.Options{}, []string{"a"})

	dir, reused, err := writeOutputs(cache, short, full, files)
	require.NoError(t, err)
	require.False(t, reused)
	require.Equal(t, filepath.Join(cache, OUT_DIR, short), dir)
	for name, data := range files {
		got, err := os.ReadFile(filepath.Join(dir, name))
		require.NoError(t, err)
		assert.Equal(t, data, got)
	}
	stored, err := os.ReadFile(filepath.Join(dir, HASH_FILE))
	require.NoError(t, err)
	assert.Equal(t, full, string(stored))

	_, reused, err = writeOutputs(cache, short, full, files)
	require.NoError(t, err)
	assert.True(t, reused)

	// changed content under the same key is rewritten
	files["a.ir"] = []byte("(sub x y)\n")
	_, reused, err = writeOutputs(cache, short, full, files)
	require.NoError(t, err)
	assert.False(t, reused)
	got, err := os.ReadFile(filepath.Join(dir, "a.ir"))
	require.NoError(t, err)
	assert.Equal(t, "(sub x y)\n", string(got))
}

func TestCleanupOldOutputs(t *testing.T) {
	root := t.TempDir()
	old := time.Now().Add(-30 * 24 * time.Hour)
	names := []string{"00000001", "00000002", "00000003", "00000004"}
	for i, name := range names {
		path := filepath.Join(root, name)
		require.NoError(t, os.Mkdir(path, 0755))
		mtime := old.Add(time.Duration(i) * time.Hour)
		if i == len(names)-1 {
			mtime = time.Now()
		}
		require.NoError(t, os.Chtimes(path, mtime, mtime))
	}
	require.NoError(t, os.Mkdir(filepath.Join(root, "keepme"), 0755))

	cleanupOldOutputs(root, 2, minOutputAge)

	for i, name := range names {
		_, err := os.Stat(filepath.Join(root, name))
		if i < 2 {
			assert.True(t, os.IsNotExist(err), name)
		} else {
			assert.NoError(t, err, name)
		}
	}
	_, err := os.Stat(filepath.Join(root, "keepme"))
	assert.NoError(t, err)
}
