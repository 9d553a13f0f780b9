package types

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	ErrUnknownSource = errors.New("unknown source")
	ErrNoSources     = errors.New("no sources configured")
	ErrNoRecords     = errors.New("no records to write")
)

// FetchError wraps errors that occur while retrieving a page.
// A FetchError aborts the remaining pages of the current source only;
// a multi-source run continues with the next source.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s (status %d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ParseError wraps block-level extraction failures. One bad candidate
// block is skipped and logged; it never fails the page.
type ParseError struct {
	URL   string
	Block string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Block != "" {
		return fmt.Sprintf("parse error for %s (block %s): %v", e.URL, e.Block, e.Err)
	}
	return fmt.Sprintf("parse error for %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// CacheError wraps cache read/write failures. Loads fall back to an
// empty set (more duplicates possible, never fewer); saves are
// best-effort and the in-memory run result is still returned.
type CacheError struct {
	Path string
	Err  error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache error (%s): %v", e.Path, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }

// StorageError wraps errors from the record sinks (CSV, database).
type StorageError struct {
	Backend string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error (%s): %v", e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
