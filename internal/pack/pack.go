// Package pack implements the L2 pack model of spec §3.6/§3.7: packages,
// components, APIs, bundles, boards, and pack ordering/filtering.
//
// Grounded on original_source/libs/rtemodel/include/RtePackage.h
// (RtePackage, RtePackageComparator, RtePackageFilter) and RteItem.h's
// PackageState enum.
package pack

import (
	"strings"

	"github.com/blang/semver/v4"

	"github.com/cmsis-rte/rtecore/internal/condition"
	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// State mirrors original_source's PackageState enum (spec §3.6).
type State int

const (
	StateInstalled State = iota
	StateAvailable
	StateDownloaded
	StateUnknown
	StateExplicitPath
	StateGenerated
)

// Package is one pack release: a <package> item plus its parsed id parts,
// condition registry and component/API/bundle indexes (spec §3.6).
type Package struct {
	Item     *item.Item
	ID       types.PackID
	CommonID types.CommonID
	Vendor   string
	Name     string
	Version  string
	State    State

	conditions map[string]*condition.Condition
	components []*Component
	apis       []*API
	bundles    []*Bundle
}

// NewPackage builds a Package from a constructed <package> item, indexing
// its <conditions>, <components> and <apis> subtrees.
func NewPackage(it *item.Item, state State) *Package {
	vendor, _ := it.GetAttribute("vendor")
	if v := it.FirstChildByTag("vendor"); vendor == "" && v != nil {
		vendor = strings.TrimSpace(v.Text)
	}
	name, _ := it.GetAttribute("name")
	if n := it.FirstChildByTag("name"); name == "" && n != nil {
		name = strings.TrimSpace(n.Text)
	}
	version := ""
	if rel := it.FirstChildByTag("releases"); rel != nil {
		if first := rel.FirstChildByTag("release"); first != nil {
			version, _ = first.GetAttribute("version")
		}
	}
	id := types.BuildPackID(vendor, name, version)
	p := &Package{
		Item:       it,
		ID:         id,
		CommonID:   types.CommonIDOf(id),
		Vendor:     vendor,
		Name:       name,
		Version:    version,
		State:      state,
		conditions: make(map[string]*condition.Condition),
	}
	p.indexConditions()
	p.indexComponentsAndAPIs()
	return p
}

func (p *Package) indexConditions() {
	condContainer := p.Item.FirstChildByTag("conditions")
	if condContainer == nil {
		return
	}
	for _, c := range condContainer.ChildrenByTag("condition") {
		if _, dup := p.conditions[c.ID()]; dup {
			continue // first definition wins, as DetectDuplicateConditions reports
		}
		p.conditions[c.ID()] = condition.NewCondition(c)
	}
}

// Condition implements condition.Registry, scoped to this package's own
// <conditions> (spec §4.4: condition references never cross pack
// boundaries).
func (p *Package) Condition(id string) (*condition.Condition, bool) {
	c, ok := p.conditions[id]
	return c, ok
}

func (p *Package) indexComponentsAndAPIs() {
	if apisContainer := p.Item.FirstChildByTag("apis"); apisContainer != nil {
		for _, a := range apisContainer.ChildrenByTag("api") {
			p.apis = append(p.apis, NewAPI(a, p))
		}
	}
	componentsContainer := p.Item.FirstChildByTag("components")
	if componentsContainer == nil {
		return
	}
	for _, c := range componentsContainer.Children {
		switch c.Tag {
		case "component":
			p.components = append(p.components, NewComponent(c, p))
		case "bundle":
			bundle := NewBundle(c, p)
			p.bundles = append(p.bundles, bundle)
			p.components = append(p.components, bundle.Components...)
		}
	}
}

// Components returns every component defined by this pack, including those
// nested inside bundles.
func (p *Package) Components() []*Component { return p.components }

// APIs returns every API defined by this pack.
func (p *Package) APIs() []*API { return p.apis }

// Bundles returns every bundle defined by this pack.
func (p *Package) Bundles() []*Bundle { return p.bundles }

// semVersion parses a pack's version for comparison, tolerating CMSIS's
// common non-strict-semver suffixes (e.g. "1.2.3-rc1" is fine, but a bare
// "1.2" needs a patch appended for blang/semver to accept it).
func semVersion(v string) (semver.Version, error) {
	parts := strings.SplitN(v, ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return semver.Parse(strings.Join(parts, "."))
}

// ComparePackIDs orders two pack IDs the way original_source's
// RtePackageComparator does: common-ID ascending alphabetically, except a
// common ID that is a case-sensitive prefix match against "Keil" always
// sorts last (Keil packs are the fallback/default choice and historically
// listed after third-party vendors), then version descending within the
// same common ID so index [0] is the latest.
func ComparePackIDs(a, b types.PackID) int {
	pa, pb := splitPackID(a), splitPackID(b)
	aKeil := strings.HasPrefix(pa.commonID, "Keil")
	bKeil := strings.HasPrefix(pb.commonID, "Keil")
	if aKeil != bKeil {
		if aKeil {
			return 1
		}
		return -1
	}
	if pa.commonID != pb.commonID {
		if pa.commonID < pb.commonID {
			return -1
		}
		return 1
	}
	va, errA := semVersion(pa.version)
	vb, errB := semVersion(pb.version)
	switch {
	case errA != nil && errB != nil:
		return strings.Compare(pb.version, pa.version)
	case errA != nil:
		return 1
	case errB != nil:
		return -1
	}
	switch va.Compare(vb) {
	case 1:
		return -1
	case -1:
		return 1
	default:
		return 0
	}
}

type packIDParts struct {
	vendor   string
	name     string
	commonID string
	version  string
}

func splitPackID(id types.PackID) packIDParts {
	parts := strings.Split(string(id), ".")
	p := packIDParts{}
	if len(parts) >= 1 {
		p.vendor = parts[0]
	}
	if len(parts) >= 2 {
		p.name = parts[1]
	}
	p.commonID = p.vendor + "." + p.name
	if len(parts) >= 3 {
		p.version = strings.Join(parts[2:], ".")
	}
	return p
}

// DetectDuplicateConditions raises diag.CodeDuplicateCondition (M521) for
// every condition id defined more than once within a package, reporting
// the first definition as authoritative ("first wins") per spec §6.6.
func DetectDuplicateConditions(it *item.Item, packID types.PackID) []diag.Diagnostic {
	condContainer := it.FirstChildByTag("conditions")
	if condContainer == nil {
		return nil
	}
	seen := make(map[string]bool)
	var diags []diag.Diagnostic
	for _, c := range condContainer.ChildrenByTag("condition") {
		id := c.ID()
		if seen[id] {
			diags = append(diags, diag.New(diag.CodeDuplicateCondition, string(packID), id,
				"duplicate condition id, first definition wins"))
			continue
		}
		seen[id] = true
	}
	return diags
}
