package rag

import (
	"fmt"
	"iter"

	"GoRAGWorkshop/app/faults"
)

type Splitter struct {
	size    int
	overlap int
}

func NewSplitter(size, overlap int) (*Splitter, error) {
	if size <= 0 {
		return nil, faults.Configuration("new splitter", fmt.Errorf("segment size must be positive, got %d", size))
	}
	if overlap < 0 || overlap >= size {
		return nil, faults.Configuration("new splitter",
			fmt.Errorf("overlap must be in [0, %d), got %d", size, overlap))
	}
	return &Splitter{size: size, overlap: overlap}, nil
}

func (s *Splitter) Size() int    { return s.size }
func (s *Splitter) Overlap() int { return s.overlap }

// Segments returns a one-shot cursor over the document. Windows are measured in
// runes; consecutive windows share exactly overlap runes.
func (s *Splitter) Segments(doc Document) *Segments {
	return &Segments{
		source: doc.Source,
		runes:  []rune(doc.Text),
		size:   s.size,
		step:   s.size - s.overlap,
	}
}

func (s *Splitter) Split(doc Document) []Segment {
	var out []Segment
	for seg := range s.Segments(doc).All() {
		out = append(out, seg)
	}
	return out
}

type Segments struct {
	source string
	runes  []rune
	size   int
	step   int
	start  int
	index  int
	done   bool
}

func (it *Segments) Next() (Segment, bool) {
	if it.done || len(it.runes) == 0 {
		it.done = true
		return Segment{}, false
	}

	end := it.start + it.size
	if end >= len(it.runes) {
		end = len(it.runes)
		it.done = true
	}
	seg := Segment{
		Text:   string(it.runes[it.start:end]),
		Source: it.source,
		Index:  it.index,
		Offset: it.start,
	}
	it.start += it.step
	it.index++
	return seg, true
}

// All drains the cursor; iterating a second time yields nothing.
func (it *Segments) All() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for {
			seg, ok := it.Next()
			if !ok || !yield(seg) {
				return
			}
		}
	}
}
