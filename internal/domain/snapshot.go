package domain

// Snapshot is the generic capture of an element that no normalizer interprets:
// tag, attributes and, when present, children in document order.
type Snapshot struct {
	Tag        string
	Attributes []Attr
	Children   []Snapshot
}

// NewSnapshot serializes e and its whole subtree.
func NewSnapshot(e *Element) Snapshot {
	s := Snapshot{Tag: e.Name, Attributes: e.Attrs}
	if len(e.Children) > 0 {
		s.Children = make([]Snapshot, 0, len(e.Children))
		for _, child := range e.Children {
			s.Children = append(s.Children, NewSnapshot(child))
		}
	}
	return s
}

type snapshotJSON struct {
	Attributes map[string]string `json:"attributes"`
	Children   []Snapshot        `json:"children,omitempty"`
	Tag        string            `json:"tag"`
}

// MarshalJSON emits the canonical {"attributes","children","tag"} object.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	attrs := make(map[string]string, len(s.Attributes))
	for _, a := range s.Attributes {
		attrs[a.Name] = a.Value
	}
	return CanonicalJSON(snapshotJSON{Attributes: attrs, Children: s.Children, Tag: s.Tag})
}
