// Package lex extracts the longest accepted prefix of a live input stream
// using automata from package automata, and builds multi-rule tokenizers on
// top of that.
//
// Every unit a scan reads but does not return is pushed back onto the
// source, so the next scan sees it again:
//
//	src := lex.NewPushback(lex.FromString("aaab"))
//	sc, _ := lex.NewScanner[rune](src)
//	match, ok := sc.Next(aRepeating) // "aaa", true
//	r, _ := src.Next()               // 'b'
package lex

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"unicode/utf8"
)

// Source yields input units one at a time. ok is false once the source is
// exhausted; an exhausted source stays exhausted.
type Source[U any] interface {
	Next() (unit U, ok bool)
}

// SourceFunc adapts a function to Source.
type SourceFunc[U any] func() (U, bool)

// Next calls f.
func (f SourceFunc[U]) Next() (U, bool) { return f() }

// FromSlice returns a source over units. The slice is not copied.
func FromSlice[U any](units []U) Source[U] {
	i := 0
	return SourceFunc[U](func() (U, bool) {
		if i >= len(units) {
			var zero U
			return zero, false
		}
		u := units[i]
		i++
		return u, true
	})
}

// FromString returns a source over the runes of s. Invalid UTF-8 bytes are
// yielded as utf8.RuneError.
func FromString(s string) Source[rune] {
	return SourceFunc[rune](func() (rune, bool) {
		if len(s) == 0 {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		return r, true
	})
}

// SeqSource pulls units from an iterator. Call Stop when abandoning the
// source before it is exhausted.
type SeqSource[U any] struct {
	next func() (U, bool)
	stop func()
}

// FromSeq returns a source that pulls from seq.
func FromSeq[U any](seq iter.Seq[U]) *SeqSource[U] {
	next, stop := iter.Pull(seq)
	return &SeqSource[U]{next: next, stop: stop}
}

// Next implements Source.
func (s *SeqSource[U]) Next() (U, bool) { return s.next() }

// Stop releases the underlying iterator.
func (s *SeqSource[U]) Stop() { s.stop() }

// ReaderSource yields the runes of an io.Reader.
//
// A read error other than io.EOF ends the stream; Err reports it.
type ReaderSource struct {
	r   *bufio.Reader
	err error
}

// FromReader returns a rune source over r.
func FromReader(r io.Reader) *ReaderSource {
	return &ReaderSource{r: bufio.NewReader(r)}
}

// Next implements Source.
func (s *ReaderSource) Next() (rune, bool) {
	if s.err != nil {
		return 0, false
	}
	r, _, err := s.r.ReadRune()
	if err != nil {
		s.err = err
		return 0, false
	}
	return r, true
}

// Err returns the first read error, or nil if the reader ended cleanly.
func (s *ReaderSource) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}
