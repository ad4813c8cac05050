package lex

import "slices"

// Pushback is a Source with a FIFO buffer of re-injected units ahead of the
// wrapped source.
//
// Next drains the buffer before pulling from the underlying source. A
// Pushback is owned by a single reader; it is not safe for concurrent use.
type Pushback[U any] struct {
	src Source[U]
	buf []U
}

// NewPushback wraps src. If src is already a *Pushback it is returned as-is,
// so repeated wrapping never nests buffers.
func NewPushback[U any](src Source[U]) *Pushback[U] {
	if p, ok := src.(*Pushback[U]); ok {
		return p
	}
	return &Pushback[U]{src: src}
}

// Next returns the oldest buffered unit, or the next unit of the wrapped
// source when the buffer is empty.
func (p *Pushback[U]) Next() (U, bool) {
	if len(p.buf) > 0 {
		u := p.buf[0]
		p.buf = p.buf[1:]
		return u, true
	}
	if p.src == nil {
		var zero U
		return zero, false
	}
	return p.src.Next()
}

// Push re-injects units so that they are read next, in the given order,
// ahead of anything already buffered.
func (p *Pushback[U]) Push(units ...U) {
	if len(units) == 0 {
		return
	}
	buf := make([]U, 0, len(units)+len(p.buf))
	buf = append(buf, units...)
	p.buf = append(buf, p.buf...)
}

// Peek returns the next unit without consuming it.
func (p *Pushback[U]) Peek() (U, bool) {
	u, ok := p.Next()
	if ok {
		p.Push(u)
	}
	return u, ok
}

// Buffered returns a copy of the units waiting in the buffer.
func (p *Pushback[U]) Buffered() []U {
	return slices.Clone(p.buf)
}

// Len returns the number of buffered units.
func (p *Pushback[U]) Len() int { return len(p.buf) }
