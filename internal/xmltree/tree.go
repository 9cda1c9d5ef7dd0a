// Package xmltree defines the tagged-tree contract the core exchanges with
// the XML parsing/serialization collaborator (spec §6.1). The core never
// parses or serializes XML itself; it only walks and builds Element trees.
package xmltree

// Element is a generic tagged tree node, the lossless wire format between
// an external XML library and the item model. Attribute order is
// significant and preserved for round-tripping.
type Element struct {
	Tag        string
	Attributes []Attr
	Text       string
	Children   []*Element
}

// Attr is one ordered key/value pair of an Element's attribute map.
type Attr struct {
	Name  string
	Value string
}

// NewElement creates an empty element with the given tag.
func NewElement(tag string) *Element {
	return &Element{Tag: tag}
}

// Attribute returns the value and presence of a named attribute.
func (e *Element) Attribute(name string) (string, bool) {
	for _, a := range e.Attributes {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttribute inserts or overwrites a named attribute, preserving the
// position of the first occurrence.
func (e *Element) SetAttribute(name, value string) {
	for i := range e.Attributes {
		if e.Attributes[i].Name == name {
			e.Attributes[i].Value = value
			return
		}
	}
	e.Attributes = append(e.Attributes, Attr{Name: name, Value: value})
}

// AddChild appends a child element.
func (e *Element) AddChild(c *Element) {
	e.Children = append(e.Children, c)
}

// ChildrenByTag returns every direct child whose tag matches.
func (e *Element) ChildrenByTag(tag string) []*Element {
	var out []*Element
	for _, c := range e.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildByTag returns the first direct child with the given tag, or nil.
func (e *Element) FirstChildByTag(tag string) *Element {
	for _, c := range e.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// AttributeNames returns attribute keys in declaration order.
func (e *Element) AttributeNames() []string {
	names := make([]string, len(e.Attributes))
	for i, a := range e.Attributes {
		names[i] = a.Name
	}
	return names
}

// Equal reports structural equality used by the construct-emit-construct
// round-trip law (spec §8.2): attribute maps equal (ignoring order is NOT
// allowed — order is part of the contract) and children equal and ordered
// identically, text compared after trimming leading and trailing
// whitespace.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if e.Tag != o.Tag || len(e.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range e.Attributes {
		if e.Attributes[i] != o.Attributes[i] {
			return false
		}
	}
	if trimSpace(e.Text) != trimSpace(o.Text) {
		return false
	}
	if len(e.Children) != len(o.Children) {
		return false
	}
	for i := range e.Children {
		if !e.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

func trimSpace(s string) string {
	start, end := 0, len(s)
	for start < end && isSpace(s[start]) {
		start++
	}
	for end > start && isSpace(s[end-1]) {
		end--
	}
	return s[start:end]
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
