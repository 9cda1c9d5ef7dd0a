// Package model implements the L2 global model of spec §4.5: the
// in-memory index over every loaded pack's packages, components, APIs,
// bundles, boards and devices, plus the package filter that scopes
// resolution to a subset of installed packs.
//
// Grounded on original_source/libs/rtemodel/include/RteModel.h (RteModel,
// RteGlobalModel) and RtePackage.h's RtePackageFilter.
package model

import (
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cmsis-rte/rtecore/internal/device"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// Filter scopes which installed packs are visible to resolution (spec
// §3.8): either every installed pack, an explicit selection, or only the
// latest version of each common ID. Grounded on RtePackage.h's
// RtePackageFilter, which offers the same three knobs.
type Filter struct {
	UseAllPacks  bool
	SelectedGlob []string // doublestar glob patterns matched against PackID
	LatestOnly   bool
}

// Matches reports whether id passes the filter.
func (f *Filter) Matches(id types.PackID) bool {
	if f == nil || f.UseAllPacks {
		return true
	}
	if len(f.SelectedGlob) == 0 {
		return false
	}
	for _, pattern := range f.SelectedGlob {
		if ok, _ := doublestar.Match(pattern, string(id)); ok {
			return true
		}
	}
	return false
}

// Global is the root model: every loaded package plus the derived indexes
// resolution and code generation query against (spec §4.5's global model).
type Global struct {
	Packages       map[types.PackID]*pack.Package
	LatestPackages map[types.CommonID]types.PackID

	componentIndex map[types.AggregateID][]*pack.Component
	apiIndex       map[types.ApiID][]*pack.API
	bundleIndex    map[string][]*pack.Bundle
	boardIndex     map[string]*pack.Board
	deviceRoots    []*item.Item

	Filter *Filter
}

// NewGlobal returns an empty model; packages are added with AddPackage and
// then indexed with Reindex once every pack for a resolution run is loaded.
func NewGlobal() *Global {
	return &Global{
		Packages:       make(map[types.PackID]*pack.Package),
		LatestPackages: make(map[types.CommonID]types.PackID),
		componentIndex: make(map[types.AggregateID][]*pack.Component),
		apiIndex:       make(map[types.ApiID][]*pack.API),
		bundleIndex:    make(map[string][]*pack.Bundle),
		boardIndex:     make(map[string]*pack.Board),
		Filter:         &Filter{UseAllPacks: true},
	}
}

// AddPackage registers p in the model. Call Reindex after the last
// AddPackage of a batch.
func (g *Global) AddPackage(p *pack.Package) {
	g.Packages[p.ID] = p
}

// AddDeviceRoot registers a device-hierarchy root (typically one per pack's
// <devices> container) to be walked for aggregates during Reindex.
func (g *Global) AddDeviceRoot(root *item.Item) {
	g.deviceRoots = append(g.deviceRoots, root)
}

// Reindex rebuilds LatestPackages and the component/API/bundle/board
// indexes from the currently registered packages, honoring Filter (spec
// §4.5's "rebuilding the index is explicit, never implicit on mutation").
func (g *Global) Reindex() {
	g.LatestPackages = make(map[types.CommonID]types.PackID)
	g.componentIndex = make(map[types.AggregateID][]*pack.Component)
	g.apiIndex = make(map[types.ApiID][]*pack.API)
	g.bundleIndex = make(map[string][]*pack.Bundle)
	g.boardIndex = make(map[string]*pack.Board)

	ids := g.visiblePackIDs()
	byCommon := make(map[types.CommonID][]types.PackID)
	for _, id := range ids {
		common := types.CommonIDOf(id)
		byCommon[common] = append(byCommon[common], id)
	}
	for common, group := range byCommon {
		sort.Slice(group, func(i, j int) bool { return pack.ComparePackIDs(group[i], group[j]) < 0 })
		g.LatestPackages[common] = group[0]
	}

	for _, id := range ids {
		if g.Filter.LatestOnly && g.LatestPackages[types.CommonIDOf(id)] != id {
			continue
		}
		p := g.Packages[id]
		for _, c := range p.Components() {
			g.componentIndex[c.AggregateID] = append(g.componentIndex[c.AggregateID], c)
		}
		for _, a := range p.APIs() {
			g.apiIndex[a.ApiID] = append(g.apiIndex[a.ApiID], a)
		}
		for _, b := range p.Bundles() {
			g.bundleIndex[b.Name] = append(g.bundleIndex[b.Name], b)
		}
		for _, b := range p.Boards() {
			g.boardIndex[b.Vendor+"::"+b.Name] = b
		}
	}
}

func (g *Global) visiblePackIDs() []types.PackID {
	var ids []types.PackID
	for id := range g.Packages {
		if g.Filter.Matches(id) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return pack.ComparePackIDs(ids[i], ids[j]) < 0 })
	return ids
}

// ComponentsByAggregate returns every version of the component identified
// by aggID across every visible pack, best version first.
func (g *Global) ComponentsByAggregate(aggID types.AggregateID) []*pack.Component {
	comps := g.componentIndex[aggID]
	out := make([]*pack.Component, len(comps))
	copy(out, comps)
	sort.Slice(out, func(i, j int) bool {
		return pack.ComparePackIDs(out[i].Pack.ID, out[j].Pack.ID) < 0
	})
	return out
}

// ComponentQuery is a partial component-expression match: empty fields are
// wildcards. Used by the solver to find candidate components for a 'C'
// domain expression that does not fully specify an AggregateID (spec §4.2,
// "an expression may constrain only some of Cvendor/Cclass/Cbundle/Cgroup/
// Csub").
type ComponentQuery struct {
	Vendor, Class, Bundle, Group, Sub string
}

// FindComponents returns every indexed component matching q, wildcarding
// any field left empty.
func (g *Global) FindComponents(q ComponentQuery) []*pack.Component {
	var out []*pack.Component
	for _, comps := range g.componentIndex {
		for _, c := range comps {
			if q.Vendor != "" && c.Vendor != q.Vendor {
				continue
			}
			if q.Class != "" && c.Class != q.Class {
				continue
			}
			if q.Group != "" && c.Group != q.Group {
				continue
			}
			if q.Sub != "" && c.Sub != q.Sub {
				continue
			}
			if q.Bundle != "" && (c.Bundle == nil || c.Bundle.Name != q.Bundle) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}

// APIByID returns every pack's definition of an API id.
func (g *Global) APIByID(id types.ApiID) []*pack.API {
	return g.apiIndex[id]
}

// Board looks up a board by "vendor::name".
func (g *Global) Board(vendor, name string) (*pack.Board, bool) {
	b, ok := g.boardIndex[vendor+"::"+name]
	return b, ok
}

// DeviceAggregates returns every DEVICE/VARIANT/PROCESSOR aggregate across
// every registered device-hierarchy root.
func (g *Global) DeviceAggregates() []*device.Aggregate {
	var out []*device.Aggregate
	for _, root := range g.deviceRoots {
		out = append(out, device.BuildAggregates(root)...)
	}
	return out
}
