// Package item implements the L0 item tree of spec §3.1/§4.1: a generic
// typed tree of XML-backed nodes with an ordered attribute map, a parent
// back-reference, lazy ID construction and polymorphic child creation.
//
// The teacher's dynamic-dispatch equivalent (create_child(tag) overridden
// per subclass) is replaced per spec §9's design note with a tagged-variant
// approach: a Factory maps tag -> constructor, and higher layers (condition,
// device, pack) register their tags against one shared Factory instead of
// subclassing Item.
package item

import (
	"fmt"

	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/types"
	"github.com/cmsis-rte/rtecore/internal/xmltree"
)

// IDFunc computes an Item's lazy id from its own state; registered per tag
// by the owning layer (e.g. components derive Cvendor::Cclass:Cgroup,
// conditions use their "id" attribute verbatim).
type IDFunc func(*Item) string

// ConstructFunc runs subclass-specific post-processing after children are
// attached and the generic Construct() has recursed into them. It is where
// a layer reads typed attributes out of the generic AttributeMap.
type ConstructFunc func(*Item) []diag.Diagnostic

// ValidateFunc runs subclass-specific validation, appending to the
// returned diagnostics; the generic Validate() still recurses into children
// regardless.
type ValidateFunc func(*Item) []diag.Diagnostic

// Factory dispatches tag -> behavior, replacing the teacher's virtual
// CreateItem(tag). One Factory is shared by every item tree in a given
// layer (conditions share one, pack containers share another, etc).
type Factory struct {
	idFuncs        map[string]IDFunc
	constructFuncs map[string]ConstructFunc
	validateFuncs  map[string]ValidateFunc
	defaultID      IDFunc
}

// NewFactory returns an empty Factory. defaultID is used for tags with no
// registered IDFunc; pass nil to fall back to DefaultID.
func NewFactory(defaultID IDFunc) *Factory {
	if defaultID == nil {
		defaultID = DefaultID
	}
	return &Factory{
		idFuncs:        make(map[string]IDFunc),
		constructFuncs: make(map[string]ConstructFunc),
		validateFuncs:  make(map[string]ValidateFunc),
		defaultID:      defaultID,
	}
}

// Register binds behavior for one tag.
func (f *Factory) Register(tag string, idFn IDFunc, constructFn ConstructFunc, validateFn ValidateFunc) {
	if idFn != nil {
		f.idFuncs[tag] = idFn
	}
	if constructFn != nil {
		f.constructFuncs[tag] = constructFn
	}
	if validateFn != nil {
		f.validateFuncs[tag] = validateFn
	}
}

// DefaultID returns the non-empty "id" attribute, else the non-empty
// "name" attribute, else the tag itself; most container tags (<components>,
// <conditions>, ...) never need a more specific id.
func DefaultID(i *Item) string {
	for _, key := range []string{"id", "name"} {
		if v, ok := i.Attrs.Get(key); ok && v != "" {
			return v
		}
	}
	return i.Tag
}

// Item is a node in the model tree (spec §3.1).
type Item struct {
	Tag      string
	Attrs    *types.AttributeMap
	Text     string
	Parent   *Item
	Children []*Item

	factory *Factory
	id      string
	idValid bool
	valid   bool
	Errors  []diag.Diagnostic
}

// New creates a detached item of the given tag, owned by factory for id and
// construct/validate dispatch.
func New(tag string, factory *Factory) *Item {
	return &Item{Tag: tag, Attrs: types.NewAttributeMap(), factory: factory}
}

// AddChild appends child, sets its parent and invalidates this item's id —
// matching spec §4.1's add_child invariant that parent.children contains
// child after the call.
func (i *Item) AddChild(child *Item) {
	child.Parent = i
	i.Children = append(i.Children, child)
	i.idValid = false
}

// CreateChild dispatches to the factory the way the teacher's virtual
// create_child(tag) would, returning a new detached child of the right
// tag-specific behavior without attaching it (mirrors RteItem::CreateItem,
// which callers then Construct() and AddChild()).
func (i *Item) CreateChild(tag string) *Item {
	return New(tag, i.factory)
}

// GetAttribute returns an attribute's value and presence.
func (i *Item) GetAttribute(name string) (string, bool) {
	return i.Attrs.Get(name)
}

// AddAttribute sets an attribute, defaulting to overwrite semantics per
// spec §4.1.
func (i *Item) AddAttribute(name, value string, overwrite bool) {
	i.Attrs.Set(name, value, overwrite)
	i.idValid = false
}

// ID returns the lazily-computed, per-tag id. It is stable once Construct()
// has returned (spec §3.1 invariant).
func (i *Item) ID() string {
	if !i.idValid {
		i.recomputeID()
	}
	return i.id
}

func (i *Item) recomputeID() {
	fn := i.factory.defaultID
	if custom, ok := i.factory.idFuncs[i.Tag]; ok {
		fn = custom
	}
	i.id = fn(i)
	i.idValid = true
}

// IsValid reports whether the last Validate() pass found this item sound.
func (i *Item) IsValid() bool { return i.valid }

// ForceInvalid marks the item invalid outside of a Validate() pass, used by
// the condition engine's recursion guard (spec §4.2, "re-entry yields
// R_ERROR and the item is invalidated").
func (i *Item) ForceInvalid(d diag.Diagnostic) {
	i.valid = false
	i.Errors = append(i.Errors, d)
}

// FromElement walks an xmltree.Element and builds the corresponding Item
// subtree, attaching attributes and text verbatim (the inbound half of the
// spec §6.1 contract). It does not call Construct(); callers Construct()
// the root once the whole tree is attached, per spec §5's bottom-up
// ordering guarantee.
func FromElement(el *xmltree.Element, factory *Factory) *Item {
	it := New(el.Tag, factory)
	for _, a := range el.Attributes {
		it.Attrs.Set(a.Name, a.Value, true)
	}
	it.Text = el.Text
	for _, c := range el.Children {
		child := FromElement(c, factory)
		it.AddChild(child)
	}
	return it
}

// ToElement is the inverse conversion used by generators that must emit XML
// (spec §6.1, "generators invoke create_tree_element ... for artifacts that
// are XML").
func (i *Item) ToElement() *xmltree.Element {
	el := xmltree.NewElement(i.Tag)
	for _, k := range i.Attrs.Keys() {
		v, _ := i.Attrs.Get(k)
		el.SetAttribute(k, v)
	}
	el.Text = i.Text
	for _, c := range i.Children {
		el.AddChild(c.ToElement())
	}
	return el
}

// Construct recurses bottom-up: children are constructed and their ids
// finalized before this item's own ConstructFunc runs and this item's id is
// computed (spec §5's ordering guarantee, §4.1's Construct() invariant).
// It is idempotent and safe to re-run after subtree edits, as required by
// spec §4.1.
func (i *Item) Construct() []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, c := range i.Children {
		diags = append(diags, c.Construct()...)
	}
	if fn, ok := i.factory.constructFuncs[i.Tag]; ok {
		diags = append(diags, fn(i)...)
	}
	i.idValid = false
	i.ID()
	return diags
}

// Validate recurses into children unconditionally, then runs this item's
// own ValidateFunc; valid is the conjunction of this item's own check and
// every child's (spec §4.1, §7 "parent containers propagate invalidity
// lazily only at validate() time").
func (i *Item) Validate() []diag.Diagnostic {
	var diags []diag.Diagnostic
	ok := true
	for _, c := range i.Children {
		childDiags := c.Validate()
		diags = append(diags, childDiags...)
		if !c.valid {
			ok = false
		}
	}
	if fn, ok2 := i.factory.validateFuncs[i.Tag]; ok2 {
		own := fn(i)
		diags = append(diags, own...)
		for _, d := range own {
			if d.Severity == diag.SeverityError {
				ok = false
			}
		}
	}
	i.valid = ok
	i.Errors = diags
	return diags
}

// GetChildByTagAndAttribute mirrors RteItem::GetChildByTagAndAttribute.
func (i *Item) GetChildByTagAndAttribute(tag, attribute, value string) *Item {
	for _, c := range i.Children {
		if c.Tag != tag {
			continue
		}
		if v, ok := c.GetAttribute(attribute); ok && v == value {
			return c
		}
	}
	return nil
}

// ChildrenByTag returns every direct child with the given tag.
func (i *Item) ChildrenByTag(tag string) []*Item {
	var out []*Item
	for _, c := range i.Children {
		if c.Tag == tag {
			out = append(out, c)
		}
	}
	return out
}

// FirstChildByTag returns the first direct child with the given tag.
func (i *Item) FirstChildByTag(tag string) *Item {
	for _, c := range i.Children {
		if c.Tag == tag {
			return c
		}
	}
	return nil
}

// GetItem finds a descendant by id using a depth-first search, mirroring
// RteItem::GetItem.
func (i *Item) GetItem(id string) *Item {
	if i.ID() == id {
		return i
	}
	for _, c := range i.Children {
		if found := c.GetItem(id); found != nil {
			return found
		}
	}
	return nil
}

// HasItem reports whether item appears among i's direct children.
func (i *Item) HasItem(other *Item) bool {
	for _, c := range i.Children {
		if c == other {
			return true
		}
	}
	return false
}

// Visit walks the subtree depth-first, pre-order.
func (i *Item) Visit(fn func(*Item) bool) {
	if !fn(i) {
		return
	}
	for _, c := range i.Children {
		c.Visit(fn)
	}
}

// String renders a debug path using ids, handy in diagnostics and tests.
func (i *Item) String() string {
	if i.Parent == nil {
		return fmt.Sprintf("<%s %s>", i.Tag, i.ID())
	}
	return fmt.Sprintf("%s/<%s %s>", i.Parent.String(), i.Tag, i.ID())
}
