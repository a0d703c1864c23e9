// Package listing turns flat pages of object keys into a one-level directory view.
//
// The store returns keys like "a/b.txt", "a/c/d.txt" and "e.txt". Classify scopes
// them to an optional prefix and folds every key that still contains a '/' into
// its first path segment, so the page above reads as directory "a" and file "e.txt".
package listing

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"Ossctl/internal/errs"
)

const Delimiter = "/"

// ErrPrefixMismatch is reported when the store returns a key outside the requested prefix.
var ErrPrefixMismatch = errors.New("key does not start with prefix")

// ObjectEntry is one key of a listing response.
type ObjectEntry struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// RelativeEntry is an ObjectEntry whose key has the listing prefix stripped.
type RelativeEntry struct {
	Key          string
	LastModified time.Time
	Size         int64
}

type fileKey struct {
	key  string
	sec  int64
	nsec int
}

func keyOf(e RelativeEntry) fileKey {
	return fileKey{key: e.Key, sec: e.LastModified.Unix(), nsec: e.LastModified.Nanosecond()}
}

// ClassifiedPage is the directory view of one or more listing pages.
// The zero value is an empty page.
type ClassifiedPage struct {
	prefix  string
	dirs    map[string]struct{}
	files   map[fileKey]RelativeEntry
	skipped []string
}

// NormalizePrefix appends the delimiter to a non-empty prefix that lacks one,
// so "a" and "a/" scope a listing identically.
func NormalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, Delimiter) {
		return prefix
	}
	return prefix + Delimiter
}

// Relative strips the normalized prefix from key. It reports false, and never
// slices, when key does not start with the prefix.
func Relative(prefix, key string) (string, bool) {
	prefix = NormalizePrefix(prefix)
	if prefix == "" {
		return key, true
	}
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	return key[len(prefix):], true
}

// Classify builds the directory view of entries under prefix. An empty prefix
// means the bucket root.
func Classify(entries []ObjectEntry, prefix string) ClassifiedPage {
	page := ClassifiedPage{
		prefix: NormalizePrefix(prefix),
		dirs:   make(map[string]struct{}),
		files:  make(map[fileKey]RelativeEntry),
	}
	for _, e := range entries {
		rel, ok := Relative(prefix, e.Key)
		if !ok {
			page.skipped = append(page.skipped, e.Key)
			continue
		}
		if rel == "" {
			continue
		}
		if i := strings.Index(rel, Delimiter); i >= 0 {
			page.dirs[rel[:i]] = struct{}{}
			continue
		}
		f := RelativeEntry{Key: rel, LastModified: e.LastModified, Size: e.Size}
		page.files[keyOf(f)] = f
	}
	return page
}

// Prefix returns the normalized prefix the page was classified under.
func (p ClassifiedPage) Prefix() string {
	return p.prefix
}

// Directories returns the immediate subdirectory names, sorted.
func (p ClassifiedPage) Directories() []string {
	out := make([]string, 0, len(p.dirs))
	for d := range p.dirs {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Files returns the leaf entries sorted by key, then by modification time.
func (p ClassifiedPage) Files() []RelativeEntry {
	out := make([]RelativeEntry, 0, len(p.files))
	for _, f := range p.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Key != out[j].Key {
			return out[i].Key < out[j].Key
		}
		return out[i].LastModified.Before(out[j].LastModified)
	})
	return out
}

// Skipped returns the raw keys that did not match the prefix, in input order.
func (p ClassifiedPage) Skipped() []string {
	return append([]string(nil), p.skipped...)
}

// Len is the number of directories plus files.
func (p ClassifiedPage) Len() int {
	return len(p.dirs) + len(p.files)
}

// Err returns an INVALID_INPUT error wrapping ErrPrefixMismatch when keys were skipped.
func (p ClassifiedPage) Err() error {
	if len(p.skipped) == 0 {
		return nil
	}
	return errs.Input("classify", fmt.Errorf("%w %q: %d key(s), first %q",
		ErrPrefixMismatch, p.prefix, len(p.skipped), p.skipped[0]))
}

// Merge returns the union of p and other. Both must share a prefix.
func (p ClassifiedPage) Merge(other ClassifiedPage) ClassifiedPage {
	out := ClassifiedPage{
		prefix: p.prefix,
		dirs:   make(map[string]struct{}, len(p.dirs)+len(other.dirs)),
		files:  make(map[fileKey]RelativeEntry, len(p.files)+len(other.files)),
	}
	if out.prefix == "" {
		out.prefix = other.prefix
	}
	for _, src := range []ClassifiedPage{p, other} {
		for d := range src.dirs {
			out.dirs[d] = struct{}{}
		}
		for k, f := range src.files {
			out.files[k] = f
		}
		out.skipped = append(out.skipped, src.skipped...)
	}
	return out
}
