// Package xmlstream walks a large XML document incrementally and yields only the
// completed subtrees the caller asked for.
package xmlstream

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"iter"

	"example.com/healthingest/internal/domain"
)

// Reader pulls tokens from an XML document and assembles root elements of interest.
// Elements outside those roots are never materialised, so memory stays bounded by
// the largest single root subtree.
type Reader struct {
	dec   *xml.Decoder
	roots map[string]struct{}
	used  bool
}

// NewReader constructs a Reader that yields elements whose local name is one of roots.
func NewReader(r io.Reader, roots ...string) *Reader {
	set := make(map[string]struct{}, len(roots))
	for _, name := range roots {
		set[name] = struct{}{}
	}
	return &Reader{dec: xml.NewDecoder(r), roots: set}
}

// ErrConsumed is returned when Elements is ranged over a second time.
var ErrConsumed = errors.New("xmlstream: reader already consumed")

// Elements returns a single-pass sequence of completed root elements in document
// order. Once a subtree has been yielded the reader drops its reference to it.
// Breaking out of the loop stops reading; the sequence cannot be restarted.
func (r *Reader) Elements() iter.Seq2[*domain.Element, error] {
	return func(yield func(*domain.Element, error) bool) {
		if r.used {
			yield(nil, ErrConsumed)
			return
		}
		r.used = true

		var stack []*domain.Element
		for {
			tok, err := r.dec.Token()
			if err == io.EOF {
				if len(stack) > 0 {
					yield(nil, fmt.Errorf("xmlstream: unexpected end of document inside <%s>", stack[0].Name))
				}
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("xmlstream: %w", err))
				return
			}

			switch t := tok.(type) {
			case xml.StartElement:
				name := qualified(t.Name)
				if len(stack) == 0 {
					if _, ok := r.roots[name]; !ok {
						continue
					}
				}
				el := &domain.Element{Name: name, Attrs: attrs(t.Attr)}
				if len(stack) > 0 {
					parent := stack[len(stack)-1]
					parent.Children = append(parent.Children, el)
				}
				stack = append(stack, el)
			case xml.EndElement:
				if len(stack) == 0 {
					continue
				}
				done := stack[len(stack)-1]
				stack[len(stack)-1] = nil
				stack = stack[:len(stack)-1]
				if len(stack) == 0 {
					if !yield(done, nil) {
						return
					}
				}
			}
		}
	}
}

// InputOffset reports how many bytes of the document have been consumed.
func (r *Reader) InputOffset() int64 {
	return r.dec.InputOffset()
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

func attrs(in []xml.Attr) []domain.Attr {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Attr, len(in))
	for i, a := range in {
		out[i] = domain.Attr{Name: qualified(a.Name), Value: a.Value}
	}
	return out
}
