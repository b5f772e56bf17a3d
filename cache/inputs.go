// Package cache provides the local persistent state for the driver.
//
// Two stores live here, mirroring their different shapes:
//
//  1. Puzzle inputs are plain text files under <root>/<year>/<day>.txt.
//     An input for a fixed account and day never changes, so an entry is
//     written once and never re-fetched or overwritten.
//  2. Submission records are JSON values in a BoltDB bucket keyed by
//     (year, day, part). They remember which parts are solved and the
//     outcome of every answer already tried, so repeat runs never bother
//     the judge with a submission whose result is already known.
package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// FetchError wraps a failure to resolve puzzle input, either the network
// fetch itself or persisting the result.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to resolve puzzle input: %v", e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher retrieves input text from the judge on a cache miss.
type Fetcher func(ctx context.Context, year, day int) (string, error)

// Inputs is the read-through file cache for puzzle inputs.
type Inputs struct {
	root string
}

// NewInputs creates an input cache rooted at dir. The directory is
// created lazily on first write.
func NewInputs(dir string) *Inputs {
	return &Inputs{root: dir}
}

// Path returns the cache file location for (year, day).
func (i *Inputs) Path(year, day int) string {
	return filepath.Join(i.root, strconv.Itoa(year), strconv.Itoa(day)+".txt")
}

// Get returns the cached input for (year, day), fetching and persisting
// it on a miss. A cached entry is returned verbatim with no network
// traffic. The write is atomic (temp file then rename) so a failed fetch
// or interrupted write never leaves a partial entry behind.
func (i *Inputs) Get(ctx context.Context, year, day int, fetch Fetcher) (string, error) {
	path := i.Path(year, day)

	if data, err := os.ReadFile(path); err == nil {
		return string(data), nil
	}

	body, err := fetch(ctx, year, day)
	if err != nil {
		return "", &FetchError{Err: err}
	}

	input := strings.TrimRight(body, "\n")

	if err := writeAtomic(path, input); err != nil {
		return "", &FetchError{Err: err}
	}

	return input, nil
}

// writeAtomic writes content to path via a temp file in the same
// directory, creating parent directories as needed.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write cache entry: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close cache entry: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to finalize cache entry: %w", err)
	}

	return nil
}
