// Package fabricate produces the working tree changes that back each commit.
package fabricate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/huangsam/cadence/schema"
)

// ErrUnsafePath is returned for mutations that would write outside the repository.
var ErrUnsafePath = errors.New("unsafe mutation path")

// Apply writes mutations under root and returns the touched paths, relative
// and slash separated, in mutation order.
func Apply(root string, mutations []schema.FileMutation) ([]string, error) {
	paths := make([]string, 0, len(mutations))
	for _, m := range mutations {
		rel, err := cleanRelative(m.Path)
		if err != nil {
			return paths, err
		}
		full := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			return paths, fmt.Errorf("create directory for %s: %w", rel, err)
		}
		if m.Append {
			err = appendFile(full, m.Content)
		} else {
			err = os.WriteFile(full, []byte(m.Content), 0o644)
		}
		if err != nil {
			return paths, fmt.Errorf("write %s: %w", rel, err)
		}
		paths = append(paths, filepath.ToSlash(rel))
	}
	return paths, nil
}

func appendFile(path, content string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// cleanRelative rejects empty, absolute and escaping paths.
func cleanRelative(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", ErrUnsafePath)
	}
	if filepath.IsAbs(p) || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: %s is absolute", ErrUnsafePath, p)
	}
	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s escapes the repository", ErrUnsafePath, p)
	}
	if first, _, _ := strings.Cut(filepath.ToSlash(clean), "/"); first == ".git" {
		return "", fmt.Errorf("%w: %s is inside the git directory", ErrUnsafePath, p)
	}
	return clean, nil
}

// withHeader prefixes content with header when the file does not exist yet.
func withHeader(root, path, header, content string) string {
	if header == "" {
		return content
	}
	if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(path))); err == nil {
		return content
	}
	return header + content
}
