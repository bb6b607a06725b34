package http

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// MultipartSpec names the form field and the file to upload in it.
type MultipartSpec struct {
	FieldName string
	FilePath  string
}

// Part is a loaded file ready to be sent as a multipart form part.
type Part struct {
	FieldName string
	FileName  string
	Content   []byte
}

// ParseMultipartSpec parses "field=/path/to/file". Whitespace is stripped and
// exactly one "=" is allowed.
func ParseMultipartSpec(raw string) (MultipartSpec, error) {
	cleaned := strings.NewReplacer(" ", "", "\r", "", "\n", "").Replace(raw)

	parts := strings.Split(cleaned, "=")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return MultipartSpec{}, newError(KindMalformedMultipartSpec, quote(raw), nil)
	}

	return MultipartSpec{FieldName: parts[0], FilePath: parts[1]}, nil
}

// LoadAttachment validates spec.FilePath and reads it into memory. Relative
// paths are resolved against baseDir when it is set.
func LoadAttachment(spec MultipartSpec, baseDir string) (*Part, error) {
	path := spec.FilePath
	if !filepath.IsAbs(path) && baseDir != "" {
		path = filepath.Join(baseDir, path)
	}

	if err := validatePathWithinBase(path, baseDir); err != nil {
		return nil, newError(KindPathOutsideBase, path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, newError(KindFileNotFound, path, nil)
		}
		return nil, newError(KindFileUnreadable, path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(KindNotAFile, path, nil)
	}

	content, err := readAll(path)
	if err != nil {
		return nil, newError(KindFileUnreadable, path, err)
	}
	if len(content) == 0 {
		return nil, newError(KindEmptyFile, path, nil)
	}

	return &Part{
		FieldName: spec.FieldName,
		FileName:  filepath.Base(path),
		Content:   content,
	}, nil
}

func readAll(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

// validatePathWithinBase checks that the resolved path stays within the base directory
// to prevent path traversal attacks
func validatePathWithinBase(path, baseDir string) error {
	if baseDir == "" {
		return nil
	}

	cleanBase, err := filepath.Abs(baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base directory: %w", err)
	}

	cleanPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	if !strings.HasPrefix(cleanPath, cleanBase+string(filepath.Separator)) && cleanPath != cleanBase {
		return fmt.Errorf("path traversal detected: %s is outside allowed directory %s", path, baseDir)
	}

	return nil
}
