// Package edit queues text edits against an immutable source buffer and
// applies them in one step.
package edit

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrOverlap is returned by Bytes when two queued edits touch the same text.
	ErrOverlap = errors.New("overlapping edits")
	// ErrNotRemovable is returned by Delete for ranges that are already gone
	// or that intersect another queued edit.
	ErrNotRemovable = errors.New("range cannot be removed")
)

type op struct {
	start, end int
	text       string
	seq        int // queue order, used to keep same-position inserts stable
	top        bool
}

// Buffer is a queue of edits over a source text. Offsets always refer to the
// original text.
type Buffer struct {
	old []byte
	ops []op
	seq int
}

// NewBuffer returns an empty edit queue over src.
func NewBuffer(src []byte) *Buffer {
	return &Buffer{old: src}
}

// Len returns the number of queued edits.
func (b *Buffer) Len() int {
	return len(b.ops)
}

func (b *Buffer) push(o op) {
	o.seq = b.seq
	b.seq++
	b.ops = append(b.ops, o)
}

func (b *Buffer) check(start, end int) error {
	if start < 0 || end < start || end > len(b.old) {
		return fmt.Errorf("edit range [%d,%d) outside source of %d bytes", start, end, len(b.old))
	}
	return nil
}

// Insert queues text at pos. Inserts at the same position appear in queue order.
func (b *Buffer) Insert(pos int, text string) error {
	if err := b.check(pos, pos); err != nil {
		return err
	}
	b.push(op{start: pos, end: pos, text: text})
	return nil
}

// InsertTop queues text directly after the anchor at pos: it ends up before
// every earlier insert at the same position, so the last InsertTop at an
// anchor is the first in the result.
func (b *Buffer) InsertTop(pos int, text string) error {
	if err := b.check(pos, pos); err != nil {
		return err
	}
	b.push(op{start: pos, end: pos, text: text, top: true})
	return nil
}

// Replace queues the replacement of [start,end) with text.
func (b *Buffer) Replace(start, end int, text string) error {
	if err := b.check(start, end); err != nil {
		return err
	}
	b.push(op{start: start, end: end, text: text})
	return nil
}

// Delete queues the removal of [start,end). Removing text that another
// queued edit already deletes or replaces fails with ErrNotRemovable and
// leaves the queue unchanged.
func (b *Buffer) Delete(start, end int) error {
	if err := b.check(start, end); err != nil {
		return err
	}
	if start == end {
		return fmt.Errorf("empty range at %d: %w", start, ErrNotRemovable)
	}
	for _, o := range b.ops {
		if o.start == o.end {
			continue
		}
		if start < o.end && o.start < end {
			return fmt.Errorf("range [%d,%d) intersects queued edit [%d,%d): %w", start, end, o.start, o.end, ErrNotRemovable)
		}
	}
	b.push(op{start: start, end: end})
	return nil
}

// sorted returns the queued edits ordered by position. At one position,
// top inserts come first (latest first), then plain inserts in queue order,
// then the range edit starting there.
func (b *Buffer) sorted() []op {
	ops := make([]op, len(b.ops))
	copy(ops, b.ops)
	rank := func(o op) int {
		switch {
		case o.start == o.end && o.top:
			return 0
		case o.start == o.end:
			return 1
		default:
			return 2
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		a, c := ops[i], ops[j]
		if a.start != c.start {
			return a.start < c.start
		}
		ra, rc := rank(a), rank(c)
		if ra != rc {
			return ra < rc
		}
		if ra == 0 {
			return a.seq > c.seq
		}
		return a.seq < c.seq
	})
	return ops
}

// Bytes applies every queued edit and returns the new text. The buffer is
// left untouched on error.
func (b *Buffer) Bytes() ([]byte, error) {
	ops := b.sorted()
	var sb strings.Builder
	sb.Grow(len(b.old))
	pos := 0
	for _, o := range ops {
		if o.start < pos {
			return nil, fmt.Errorf("edit at [%d,%d) starts inside edited text ending at %d: %w", o.start, o.end, pos, ErrOverlap)
		}
		sb.Write(b.old[pos:o.start])
		sb.WriteString(o.text)
		pos = o.end
	}
	sb.Write(b.old[pos:])
	return []byte(sb.String()), nil
}
