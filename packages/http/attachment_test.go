package http

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestParseMultipartSpec(t *testing.T) {
	spec, err := ParseMultipartSpec(" file = /tmp/test.txt \r\n")

	require.NoError(t, err)
	assert.Equal(t, MultipartSpec{FieldName: "file", FilePath: "/tmp/test.txt"}, spec)
}

func TestParseMultipartSpec_Malformed(t *testing.T) {
	for _, raw := range []string{"file", "=/tmp/x", "file=", "a=b=c", ""} {
		t.Run(raw, func(t *testing.T) {
			_, err := ParseMultipartSpec(raw)
			assert.Equal(t, KindMalformedMultipartSpec, KindOf(err))
		})
	}
}

func TestLoadAttachment(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "test.txt", "hello")

	part, err := LoadAttachment(MultipartSpec{FieldName: "file", FilePath: path}, "")

	require.NoError(t, err)
	assert.Equal(t, &Part{FieldName: "file", FileName: "test.txt", Content: []byte("hello")}, part)
}

func TestLoadAttachment_Failures(t *testing.T) {
	dir := t.TempDir()
	empty := writeFile(t, dir, "empty.txt", "")

	tests := []struct {
		name string
		path string
		want ErrorKind
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.txt"), want: KindFileNotFound},
		{name: "directory", path: dir, want: KindNotAFile},
		{name: "zero bytes", path: empty, want: KindEmptyFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			part, err := LoadAttachment(MultipartSpec{FieldName: "file", FilePath: tt.path}, "")

			assert.Nil(t, part)
			assert.Equal(t, tt.want, KindOf(err))
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

func TestLoadAttachment_BaseDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "fixtures"), 0o755))
	writeFile(t, filepath.Join(dir, "fixtures"), "avatar.png", "\x89PNG")

	part, err := LoadAttachment(MultipartSpec{FieldName: "avatar", FilePath: "fixtures/avatar.png"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "avatar.png", part.FileName)

	_, err = LoadAttachment(MultipartSpec{FieldName: "avatar", FilePath: "../../etc/passwd"}, dir)
	assert.Equal(t, KindPathOutsideBase, KindOf(err))
}

func TestValidatePathWithinBase(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		baseDir string
		wantErr bool
	}{
		{
			name:    "path within base",
			path:    "/home/user/project/file.txt",
			baseDir: "/home/user/project",
			wantErr: false,
		},
		{
			name:    "path traversal attempt",
			path:    "/home/user/project/../../../etc/passwd",
			baseDir: "/home/user/project",
			wantErr: true,
		},
		{
			name:    "sibling with shared prefix",
			path:    "/home/user/project-other/file.txt",
			baseDir: "/home/user/project",
			wantErr: true,
		},
		{
			name:    "empty base dir",
			path:    "/any/path",
			baseDir: "",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePathWithinBase(tt.path, tt.baseDir)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "path traversal")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
