package resolver

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap(t *testing.T) {
	r := Map(map[string]string{"a.jslt": "def f() 1"})

	src, err := ReadAll(r, "a.jslt")
	require.NoError(t, err)
	assert.Equal(t, "def f() 1", src)

	_, err = ReadAll(r, "b.jslt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "lib"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lib", "util.jslt"), []byte(". + 1"), 0o644))

	r := Dir(dir)
	src, err := ReadAll(r, "lib/util.jslt")
	require.NoError(t, err)
	assert.Equal(t, ". + 1", src)

	abs, err := ReadAll(Dir("/nowhere"), filepath.Join(dir, "lib", "util.jslt"))
	require.NoError(t, err)
	assert.Equal(t, ". + 1", abs)

	_, err = ReadAll(r, "missing.jslt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFS(t *testing.T) {
	fsys := fstest.MapFS{
		"mods/x.jslt": &fstest.MapFile{Data: []byte("let x = 1")},
	}
	r := FS(fsys)

	src, err := ReadAll(r, "/mods/x.jslt")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1", src)

	_, err = r.Resolve("mods/y.jslt")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestChain(t *testing.T) {
	broken := Func(func(name string) (io.ReadCloser, error) {
		if name == "bad" {
			return nil, errors.New("disk on fire")
		}
		return nil, ErrNotFound
	})
	r := Chain(broken, Map(map[string]string{"a": "1"}), Map(map[string]string{"a": "2", "b": "3"}))

	tests := []struct {
		name    string
		want    string
		wantErr string
	}{
		{name: "a", want: "1"},
		{name: "b", want: "3"},
		{name: "bad", wantErr: "disk on fire"},
		{name: "c", wantErr: "resource not found: c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := ReadAll(r, tt.name)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, src)
		})
	}
}
