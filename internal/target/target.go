// Package target implements the L3 project/target model of spec §4.7: a
// named build target (device/board/toolchain selection plus component and
// file instances) that the solver resolves against and the generators
// render from.
//
// Grounded on original_source/libs/rtemodel/include/RteCprjTarget.h
// (RteCprjTarget : RteTarget) and RteCprjModel.h, simplified since the
// original's RteTarget/RteProject split exists to share state across
// multiple targets of one *.cprj project — this module always resolves
// one target at a time (spec §4.7's Non-goals exclude multi-target IDE
// session state).
package target

import (
	"github.com/bmatcuk/doublestar/v4"

	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/solver"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// ComponentInstance is one selected component bound into a project, plus
// the files it contributes (spec §4.7's "component instance").
type ComponentInstance struct {
	Component *pack.Component
	Files     []*FileInstance
}

// FileInstance is one file a component contributes to the build, with its
// project-relative output path resolved (spec §4.7's "file instance";
// CMSIS config files get copied into the project and thereafter tracked by
// version separately from the pack's own copy).
type FileInstance struct {
	SourcePath  string // path within the owning pack
	ProjectPath string // path relative to the project root
	Category    string // "source", "header", "linkerScript", "doc", ...
	IsConfig    bool   // copied into the project and user-editable (spec §4.7)
	Version     string // version of the config file instance currently in the project
}

// Project is a named collection of targets sharing one set of component
// selections' source files but potentially different device/toolchain
// attributes per target (spec §4.7).
type Project struct {
	Name    string
	Targets map[string]*Target
}

// NewProject returns an empty, named project.
func NewProject(name string) *Project {
	return &Project{Name: name, Targets: make(map[string]*Target)}
}

// Target is one build configuration: effective attributes, the solver
// view of its selections, and the realized component/file instances (spec
// §4.7).
type Target struct {
	Name       string
	Attrs      *types.AttributeMap
	Solver     *solver.Target
	Components map[types.AggregateID]*ComponentInstance
}

// NewTarget returns an empty target bound to attrs.
func NewTarget(name string, attrs *types.AttributeMap) *Target {
	return &Target{
		Name:       name,
		Attrs:      attrs,
		Solver:     solver.NewTarget(attrs),
		Components: make(map[types.AggregateID]*ComponentInstance),
	}
}

// SelectComponent adds or replaces comp as the selection for its aggregate,
// enforcing the single-aggregate rule (spec §4.6: a later call for the
// same AggregateID replaces, it never accumulates two instances).
func (t *Target) SelectComponent(comp *pack.Component) *ComponentInstance {
	inst := &ComponentInstance{Component: comp}
	t.Components[comp.AggregateID] = inst
	t.Solver.Selections[comp.AggregateID] = comp
	return inst
}

// AddFiles populates inst.Files from comp's <files> children, resolving
// each file's project path (spec §4.7: non-config files are referenced in
// place inside the pack; config files are copied into the project
// directory namespaced by component).
func AddFiles(inst *ComponentInstance, projectDir string) {
	for _, f := range inst.Component.Item.ChildrenByTag("file") {
		name, _ := f.GetAttribute("name")
		category, _ := f.GetAttribute("category")
		isConfig := false
		if attr, ok := f.GetAttribute("attr"); ok && attr == "config" {
			isConfig = true
		}
		version, _ := f.GetAttribute("version")
		fi := &FileInstance{
			SourcePath: name,
			Category:   category,
			IsConfig:   isConfig,
			Version:    version,
		}
		if isConfig {
			fi.ProjectPath = projectDir + "/RTE/" + inst.Component.Class + "/" + baseName(name)
		} else {
			fi.ProjectPath = name
		}
		inst.Files = append(inst.Files, fi)
	}
}

// FileInstanceSet is a glob-filtered view of a target's file instances
// (e.g. "only linker scripts" or "only this component's config files"),
// mirroring the
// same project-relative-path matching config.PackageFilter.MatchesCommonID
// applies to pack common IDs.
type FileInstanceSet struct {
	Files []*FileInstance
}

// AllFileInstances flattens every component instance's files into one set.
func AllFileInstances(t *Target) *FileInstanceSet {
	var all []*FileInstance
	for _, inst := range t.Components {
		all = append(all, inst.Files...)
	}
	return &FileInstanceSet{Files: all}
}

// Matching returns the subset of the set whose ProjectPath matches pattern
// (a doublestar glob, e.g. "**/*.ld" or "RTE/Device/**").
func (s *FileInstanceSet) Matching(pattern string) []*FileInstance {
	var matched []*FileInstance
	for _, f := range s.Files {
		ok, err := doublestar.Match(pattern, f.ProjectPath)
		if err == nil && ok {
			matched = append(matched, f)
		}
	}
	return matched
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			return path[i+1:]
		}
	}
	return path
}
