package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// resolveInput splits a file or directory path into a filesystem rooted at
// its parent and the name to read from it.
func resolveInput(path string) (fs.FS, string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, "", fmt.Errorf("an input path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, "", err
	}
	dir, name := filepath.Split(abs)
	if name == "" {
		return nil, "", fmt.Errorf("invalid input path: %q", path)
	}
	return os.DirFS(dir), name, nil
}

// resolveOutput cleans path and creates its parent directory.
func resolveOutput(path string) (string, error) {
	out := filepath.Clean(strings.TrimSpace(path))
	if out == "." || out == string(filepath.Separator) {
		return "", fmt.Errorf("invalid output path: %q", path)
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return "", err
	}
	return out, nil
}

// readProgramFile returns the lines of a program file. Comments and blank
// lines are kept so that error messages point at the right line.
func readProgramFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines, sc.Err()
}
