// Package source owns file contents for a compilation: it maps byte
// offsets to (line, col), interns identifier strings, and keeps every
// Srcfile alive for the program's lifetime.
package source

import (
	"fmt"
	"os"
	"sync"
)

// Span is a half-open byte range inside a single Srcfile.
type Span struct {
	File  *Srcfile
	Start int
	End   int
}

// Pos is a human-facing (line, column) location, 1-indexed.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Col) }

// Srcfile owns one input file's immutable contents for the
// compilation's lifetime. The lexer's token sequence and the
// parser's top-level AST nodes are attached to it by ast.File, which
// wraps a Srcfile alongside those derived sequences (kept out of this
// package to avoid internal/source depending on internal/token and
// internal/ast).
type Srcfile struct {
	Path     string
	Contents []byte

	// lineStarts[i] is the byte offset of the first byte of line i+1.
	// Computed lazily on first Pos() call.
	mu         sync.Mutex
	lineStarts []int
}

// New loads path's contents into a Srcfile. Tabs are not rejected
// here (that is a lexer diagnostic, §6 "Tab characters are rejected
// with a fatal diagnostic") — New only owns byte storage.
func New(path string) (*Srcfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return &Srcfile{Path: path, Contents: data}, nil
}

// NewFromBytes builds a Srcfile directly from in-memory contents,
// used by tests and by any future embedding of the compiler that does
// not read from a filesystem.
func NewFromBytes(path string, contents []byte) *Srcfile {
	return &Srcfile{Path: path, Contents: contents}
}

func (s *Srcfile) ensureLineStarts() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lineStarts != nil {
		return
	}
	starts := []int{0}
	for i, b := range s.Contents {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	s.lineStarts = starts
}

// Pos computes the 1-indexed (line, col) of byte offset off. Tabs
// render as four columns, matching the diagnostic engine's rendering
// rule so carets line up under rendered source.
func (s *Srcfile) Pos(off int) Pos {
	s.ensureLineStarts()
	// binary search for the last line start <= off
	lo, hi := 0, len(s.lineStarts)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if s.lineStarts[mid] <= off {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	lineStart := s.lineStarts[lo]
	col := 1
	for i := lineStart; i < off && i < len(s.Contents); i++ {
		if s.Contents[i] == '\t' {
			col += 4
		} else {
			col++
		}
	}
	return Pos{Line: lo + 1, Col: col}
}

// Line returns the raw bytes of the line containing byte offset off,
// without the trailing newline.
func (s *Srcfile) Line(off int) []byte {
	s.ensureLineStarts()
	p := s.Pos(off)
	start := s.lineStarts[p.Line-1]
	end := len(s.Contents)
	if p.Line < len(s.lineStarts) {
		end = s.lineStarts[p.Line] - 1
	}
	if end > len(s.Contents) {
		end = len(s.Contents)
	}
	if end < start {
		end = start
	}
	line := s.Contents[start:end]
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// Text returns the raw bytes covered by sp. sp.File must be s.
func (s *Srcfile) Text(sp Span) []byte {
	end := sp.End
	if end > len(s.Contents) {
		end = len(s.Contents)
	}
	if sp.Start > end {
		return nil
	}
	return s.Contents[sp.Start:end]
}

// NewSpan is a convenience constructor tying a span to this file.
func (s *Srcfile) NewSpan(start, end int) Span {
	return Span{File: s, Start: start, End: end}
}

// Interner is an append-only pool of identifier/keyword strings,
// shared process-wide for the lifetime of a compile context. Append
// only: once interned, a string's identity never changes, matching
// §5's "intern pool for identifiers is append-only".
type Interner struct {
	mu   sync.Mutex
	ids  map[string]int
	strs []string
}

// NewInterner returns an empty interner.
func NewInterner() *Interner {
	return &Interner{ids: make(map[string]int)}
}

// Intern returns a stable small integer identity for s, allocating a
// new one if s was never seen before.
func (in *Interner) Intern(s string) int {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.ids[s]; ok {
		return id
	}
	id := len(in.strs)
	in.strs = append(in.strs, s)
	in.ids[s] = id
	return id
}

// String returns the string previously interned as id.
func (in *Interner) String(id int) string {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.strs[id]
}
