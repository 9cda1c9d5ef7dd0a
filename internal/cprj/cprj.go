// Package cprj implements the L4 CPRJ binder of spec §4.9: resolving the
// named components of a *.cprj project file against a loaded Global model,
// pinning each to a concrete resolved version, and reporting packs the
// project needs but that are not currently installed.
//
// Grounded on original_source/tools/buildmgr/cbuild/src/CbuildModel.cpp's
// CheckPackRequirements / cpinstall-file generation flow, and
// original_source/libs/rtemodel/include/CprjFile.h for the *.cprj element
// shape.
package cprj

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/model"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/target"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// RequiredPack is one <package> reference inside a *.cprj's
// <packages> section: the set of packs the project author pinned or
// constrained, independent of whether they resolved to an installed pack.
type RequiredPack struct {
	Vendor  string
	Name    string
	Version string // may be empty (any version acceptable)
}

// PackID renders the CmBuild-style "Vendor::Name@Version" identity used in
// .cpinstall reports (CbuildModel.cpp's packList entries).
func (r RequiredPack) PackID() string {
	id := r.Vendor + "::" + r.Name
	if r.Version != "" {
		id += "@" + r.Version
	}
	return id
}

// RequiredComponent is one <component> reference inside a *.cprj project,
// named the way CPRJ expresses it (Cclass/Cgroup/Csub plus an optional
// Cvendor/Cbundle/Cversion pin).
type RequiredComponent struct {
	Vendor  string
	Bundle  string
	Class   string
	Group   string
	Sub     string
	Version string
}

// Binder resolves a *.cprj project's named packages and components against
// a Global model.
type Binder struct {
	Global *model.Global
}

// NewBinder returns a Binder bound to g.
func NewBinder(g *model.Global) *Binder {
	return &Binder{Global: g}
}

// ParseRequiredPacks reads a *.cprj's <packages> container.
func ParseRequiredPacks(cprjRoot *item.Item) []RequiredPack {
	container := cprjRoot.FirstChildByTag("packages")
	if container == nil {
		return nil
	}
	var out []RequiredPack
	for _, p := range container.ChildrenByTag("package") {
		vendor, _ := p.GetAttribute("vendor")
		name, _ := p.GetAttribute("name")
		version, _ := p.GetAttribute("version")
		out = append(out, RequiredPack{Vendor: vendor, Name: name, Version: version})
	}
	return out
}

// ParseRequiredComponents reads a *.cprj's <components> container.
func ParseRequiredComponents(cprjRoot *item.Item) []RequiredComponent {
	container := cprjRoot.FirstChildByTag("components")
	if container == nil {
		return nil
	}
	var out []RequiredComponent
	for _, c := range container.ChildrenByTag("component") {
		out = append(out, RequiredComponent{
			Vendor:  attrOf(c, "Cvendor"),
			Bundle:  attrOf(c, "Cbundle"),
			Class:   attrOf(c, "Cclass"),
			Group:   attrOf(c, "Cgroup"),
			Sub:     attrOf(c, "Csub"),
			Version: attrOf(c, "Cversion"),
		})
	}
	return out
}

func attrOf(it *item.Item, name string) string {
	v, _ := it.GetAttribute(name)
	return v
}

// CheckPackRequirements reports every RequiredPack with no installed
// CommonID match in the Global model, the check
// original_source/CbuildModel.cpp::CheckPackRequirements performs before
// attempting to resolve a *.cprj.
func (b *Binder) CheckPackRequirements(required []RequiredPack) []RequiredPack {
	var missing []RequiredPack
	for _, req := range required {
		common := types.CommonID(req.Vendor + "." + req.Name)
		if _, ok := b.Global.LatestPackages[common]; !ok {
			missing = append(missing, req)
		}
	}
	return missing
}

// WriteCpinstall renders the plain-text ".cpinstall" report: one
// "Vendor::Name[@Version]" line per missing pack, matching CbuildModel.cpp's
// format exactly (it is parsed by downstream pack-installation tooling).
func WriteCpinstall(missing []RequiredPack) string {
	var b strings.Builder
	for _, m := range missing {
		b.WriteString(m.PackID())
		b.WriteByte('\n')
	}
	return b.String()
}

// cpinstallEntry is the JSON shape of one ".cpinstall.json" pack entry,
// matching CbuildUtils::GenerateJsonPackList's field names.
type cpinstallEntry struct {
	Vendor  string `json:"vendor"`
	Pack    string `json:"pack"`
	Version string `json:"version,omitempty"`
}

// WriteCpinstallJSON renders the ".cpinstall.json" report.
func WriteCpinstallJSON(missing []RequiredPack) ([]byte, error) {
	entries := make([]cpinstallEntry, 0, len(missing))
	for _, m := range missing {
		entries = append(entries, cpinstallEntry{Vendor: m.Vendor, Pack: m.Name, Version: m.Version})
	}
	return json.MarshalIndent(entries, "", "  ")
}

// Resolution is the outcome of pinning one RequiredComponent to a concrete
// installed component.
type Resolution struct {
	Required  RequiredComponent
	Component *pack.Component // nil if unresolved
}

// Resolve pins every required component to the best matching installed
// component (highest version passing the vendor/class/group/sub/bundle/
// version constraints), selecting it into tgt, and returns one Resolution
// per requirement, in the requirements' original order. Diagnostics are
// appended to diags for anything left unresolved (M511).
func (b *Binder) Resolve(required []RequiredComponent, tgt *target.Target, diags *diag.Collector) []Resolution {
	out := make([]Resolution, 0, len(required))
	for _, req := range required {
		q := model.ComponentQuery{Vendor: req.Vendor, Bundle: req.Bundle, Class: req.Class, Group: req.Group, Sub: req.Sub}
		candidates := b.Global.FindComponents(q)
		best := pickBest(candidates, req.Version)
		if best == nil {
			diags.Emit(diag.New(diag.CodeMissingComponent, "", componentLabel(req),
				fmt.Sprintf("no installed component satisfies %s", componentLabel(req))))
			out = append(out, Resolution{Required: req})
			continue
		}
		tgt.SelectComponent(best)
		out = append(out, Resolution{Required: req, Component: best})
	}
	return out
}

func pickBest(candidates []*pack.Component, pinnedVersion string) *pack.Component {
	if pinnedVersion != "" {
		for _, c := range candidates {
			if c.Version == pinnedVersion {
				return c
			}
		}
		return nil
	}
	var best *pack.Component
	for _, c := range candidates {
		if best == nil || pack.ComparePackIDs(c.Pack.ID, best.Pack.ID) < 0 {
			best = c
		}
	}
	return best
}

func componentLabel(req RequiredComponent) string {
	label := req.Class + ":" + req.Group
	if req.Sub != "" {
		label += ":" + req.Sub
	}
	if req.Version != "" {
		label += "@" + req.Version
	}
	return label
}
