// Package domain defines the row shapes and element model used by the health export loader.
package domain

// Attr is a single XML attribute in document order.
type Attr struct {
	Name  string
	Value string
}

// Element is a completed XML element together with its retained children.
// Elements are produced by the streaming reader and discarded once folded into a row.
type Element struct {
	Name     string
	Attrs    []Attr
	Children []*Element
}

// Attr returns the attribute value and whether it was present.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// AttrPtr returns the attribute value or nil when absent.
func (e *Element) AttrPtr(name string) *string {
	v, ok := e.Attr(name)
	if !ok {
		return nil
	}
	return &v
}

// AttrMap copies the attributes into a map. The result is never nil.
func (e *Element) AttrMap() map[string]string {
	out := make(map[string]string, len(e.Attrs))
	for _, a := range e.Attrs {
		out[a.Name] = a.Value
	}
	return out
}
