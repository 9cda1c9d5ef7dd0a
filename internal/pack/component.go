package pack

import (
	"github.com/cmsis-rte/rtecore/internal/condition"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// Component is a single <component> item (spec §3.3): a selectable unit
// identified by an AggregateID (the Cvendor::Cclass[&Cbundle]:Cgroup[:Csub]
// selection key shared by every version) and a UniqueID (that plus version,
// condition and owning pack).
type Component struct {
	Item        *item.Item
	Pack        *Package
	Bundle      *Bundle // nil for unbundled components
	Vendor      string
	Class       string
	Group       string
	Sub         string
	Version     string
	ConditionID string
	APIVersion  string

	AggregateID types.AggregateID
	UniqueID    types.UniqueID
	ApiID       types.ApiID
}

// NewComponent builds a Component from a constructed <component> item.
func NewComponent(it *item.Item, p *Package) *Component {
	c := &Component{Item: it, Pack: p}
	c.Vendor = firstNonEmpty(attr(it, "Cvendor"), p.Vendor)
	c.Class, _ = it.GetAttribute("Cclass")
	c.Group, _ = it.GetAttribute("Cgroup")
	c.Sub, _ = it.GetAttribute("Csub")
	c.Version, _ = it.GetAttribute("Cversion")
	c.ConditionID, _ = it.GetAttribute("condition")
	c.APIVersion, _ = it.GetAttribute("Capiversion")

	bundleName := ""
	if c.Bundle != nil {
		bundleName = c.Bundle.Name
	}
	c.AggregateID = types.BuildAggregateID(c.Vendor, c.Class, bundleName, c.Group, c.Sub)
	c.UniqueID = types.UniqueID(string(c.AggregateID) + "." + c.Version + "(" + c.ConditionID + ")[" + string(p.ID) + "]")
	c.ApiID = types.BuildApiID(c.Class, c.Group, c.APIVersion)
	return c
}

// Condition returns the component's governing condition, if any.
func (c *Component) Condition() (*condition.Condition, bool) {
	if c.ConditionID == "" {
		return nil, false
	}
	return c.Pack.Condition(c.ConditionID)
}

func attr(it *item.Item, name string) string {
	v, _ := it.GetAttribute(name)
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// API is a single <api> item (spec §3.3): the unversioned contract a
// Component may implement, and against which a component expression's
// Capiversion constraint is checked.
type API struct {
	Item    *item.Item
	Pack    *Package
	Class   string
	Group   string
	Version string
	ApiID   types.ApiID
}

// NewAPI builds an API from a constructed <api> item.
func NewAPI(it *item.Item, p *Package) *API {
	a := &API{Item: it, Pack: p}
	a.Class, _ = it.GetAttribute("Cclass")
	a.Group, _ = it.GetAttribute("Cgroup")
	a.Version, _ = it.GetAttribute("Capiversion")
	a.ApiID = types.BuildApiID(a.Class, a.Group, a.Version)
	return a
}

// Bundle is a <bundle> item (spec §3.3): a named, version-scoped group of
// mutually exclusive component alternatives (only one member of a bundle
// may be selected for a given aggregate).
type Bundle struct {
	Item       *item.Item
	Pack       *Package
	Name       string
	Components []*Component
}

// NewBundle builds a Bundle from a constructed <bundle> item, constructing
// each nested <component> with Bundle set so AggregateID includes "&Cbundle".
func NewBundle(it *item.Item, p *Package) *Bundle {
	b := &Bundle{Item: it, Pack: p}
	b.Name, _ = it.GetAttribute("Cbundle")
	for _, c := range it.ChildrenByTag("component") {
		comp := NewComponent(c, p)
		comp.Bundle = b
		comp.AggregateID = types.BuildAggregateID(comp.Vendor, comp.Class, b.Name, comp.Group, comp.Sub)
		comp.UniqueID = types.UniqueID(string(comp.AggregateID) + "." + comp.Version + "(" + comp.ConditionID + ")[" + string(p.ID) + "]")
		b.Components = append(b.Components, comp)
	}
	return b
}
