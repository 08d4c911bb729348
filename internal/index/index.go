// Package index stores the known repository records as a sorted,
// newline-delimited text buffer.
//
// The buffer is the file format: Save writes it verbatim and Load reads it
// back without parsing. Every operation scans the buffer linearly, which is
// fine for the hundreds to low thousands of records a projects directory
// holds.
package index

import (
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"os"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/cespare/xxhash/v2"

	"gorg/internal/fuzzy"
)

var (
	// ErrNotFound is returned by Load when the index file does not exist.
	ErrNotFound = errors.New("index not found")

	// ErrInvalidRecord is returned by Add for records that contain a newline.
	ErrInvalidRecord = errors.New("invalid record")
)

// Index is a sorted, deduplicated set of records joined by newlines.
type Index struct {
	data string
}

// Empty returns an index without records.
func Empty() *Index {
	return &Index{}
}

// Load reads the index file at path. A missing file yields ErrNotFound.
func Load(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read index file: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("failed to read index file %s: content is not valid UTF-8", path)
	}
	return &Index{data: string(data)}, nil
}

// FromEntries builds an index from the given records, replacing any previous
// content. Records are trimmed, sorted and deduplicated; empty records are
// dropped.
func FromEntries(entries iter.Seq[string]) *Index {
	var records []string
	for entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" || strings.Contains(entry, "\n") {
			continue
		}
		records = append(records, entry)
	}
	slices.Sort(records)
	records = slices.Compact(records)

	var b strings.Builder
	for _, record := range records {
		b.WriteString(record)
		b.WriteByte('\n')
	}
	return &Index{data: b.String()}
}

// Save overwrites the file at path with the index content. The write is not
// atomic.
func (idx *Index) Save(path string) error {
	if err := os.WriteFile(path, []byte(idx.data), 0o644); err != nil {
		return fmt.Errorf("failed to write index file: %w", err)
	}
	return nil
}

// Add inserts record at its sorted position. Adding a record that is already
// present does nothing.
func (idx *Index) Add(record string) error {
	record = strings.TrimSpace(record)
	if strings.Contains(record, "\n") {
		return fmt.Errorf("%w: cannot insert records that contain new lines: %q", ErrInvalidRecord, record)
	}
	if record == "" {
		return nil
	}
	idx.data = sortedInsert(idx.data, record)
	return nil
}

// sortedInsert places record in front of the first line that sorts after it.
func sortedInsert(data, record string) string {
	offset := 0
	for line := range strings.SplitSeq(data, "\n") {
		if line == record {
			return data
		}
		if line > record {
			break
		}
		offset += len(line) + 1
	}

	if offset < len(data) {
		return data[:offset] + record + "\n" + data[offset:]
	}
	if data == "" || strings.HasSuffix(data, "\n") {
		return data + record + "\n"
	}
	return data + "\n" + record
}

// Records returns every record in sorted order.
func (idx *Index) Records() []string {
	return slices.Collect(idx.lines())
}

// Len returns the number of records.
func (idx *Index) Len() int {
	n := 0
	for range idx.lines() {
		n++
	}
	return n
}

// Checksum returns a hash of the index content.
func (idx *Index) Checksum() uint64 {
	return xxhash.Sum64String(idx.data)
}

// String returns the raw index content.
func (idx *Index) String() string {
	return idx.data
}

// FindMatches yields the records matching query in index order. An empty
// query yields every record.
func (idx *Index) FindMatches(query string) iter.Seq[string] {
	kws := fuzzy.NewKeywords(query)
	return func(yield func(string) bool) {
		for line := range idx.lines() {
			if !kws.IsEmpty() && kws.Score(line) == 0 {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// FindByPrefix yields the records starting with prefix. An empty prefix
// yields every record.
func (idx *Index) FindByPrefix(prefix string) iter.Seq[string] {
	prefix = strings.TrimSpace(prefix)
	return func(yield func(string) bool) {
		for line := range idx.lines() {
			if !strings.HasPrefix(line, prefix) {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}

// lines yields the trimmed, non-empty lines of the buffer.
func (idx *Index) lines() iter.Seq[string] {
	return func(yield func(string) bool) {
		for line := range strings.SplitSeq(idx.data, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}
}
