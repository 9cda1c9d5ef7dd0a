package solver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/condition"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/model"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/types"
)

func buildPkgWithComponents(t *testing.T) *pack.Package {
	t.Helper()
	f := item.NewFactory(nil)
	root := item.New("package", f)
	root.AddAttribute("vendor", "ARM", true)
	root.AddAttribute("name", "CMSIS", true)

	releases := root.CreateChild("releases")
	root.AddChild(releases)
	release := releases.CreateChild("release")
	release.AddAttribute("version", "5.9.0", true)
	releases.AddChild(release)

	conditions := root.CreateChild("conditions")
	root.AddChild(conditions)
	needsRTOS := conditions.CreateChild("condition")
	needsRTOS.AddAttribute("id", "NeedsRTOS", true)
	req := needsRTOS.CreateChild("require")
	req.AddAttribute("Cclass", "CMSIS")
	req.AddAttribute("Cgroup", "RTOS2")
	needsRTOS.AddChild(req)
	conditions.AddChild(needsRTOS)

	components := root.CreateChild("components")
	root.AddChild(components)

	core := components.CreateChild("component")
	core.AddAttribute("Cclass", "CMSIS", true)
	core.AddAttribute("Cgroup", "CORE", true)
	core.AddAttribute("Cversion", "5.6.0", true)
	core.AddAttribute("condition", "NeedsRTOS", true)
	components.AddChild(core)

	rtos := components.CreateChild("component")
	rtos.AddAttribute("Cclass", "CMSIS", true)
	rtos.AddAttribute("Cgroup", "RTOS2", true)
	rtos.AddAttribute("Cversion", "1.0.0", true)
	components.AddChild(rtos)

	root.Construct()
	return pack.NewPackage(root, pack.StateInstalled)
}

func newGlobal(t *testing.T) (*model.Global, *pack.Package) {
	t.Helper()
	p := buildPkgWithComponents(t)
	g := model.NewGlobal()
	g.AddPackage(p)
	g.Reindex()
	return g, p
}

func TestResolve_ComponentDependencySatisfiedWhenBothSelected(t *testing.T) {
	g, p := newGlobal(t)
	target := NewTarget(types.NewAttributeMap())

	var core, rtos *pack.Component
	for _, c := range p.Components() {
		if c.Group == "CORE" {
			core = c
		} else if c.Group == "RTOS2" {
			rtos = c
		}
	}
	require.NotNil(t, core)
	require.NotNil(t, rtos)

	target.Selections[core.AggregateID] = core
	target.Selections[rtos.AggregateID] = rtos

	s := New(g, target, nil)
	results := s.Resolve()

	assert.Equal(t, condition.Fulfilled, results[core.AggregateID])
	assert.Empty(t, s.Diagnostics)
}

func TestResolve_ComponentDependencyAutoSelectsSingleCandidate(t *testing.T) {
	g, p := newGlobal(t)
	target := NewTarget(types.NewAttributeMap())

	var core *pack.Component
	for _, c := range p.Components() {
		if c.Group == "CORE" {
			core = c
		}
	}
	require.NotNil(t, core)
	target.Selections[core.AggregateID] = core

	s := New(g, target, nil)
	results := s.Resolve()

	assert.Equal(t, condition.Fulfilled, results[core.AggregateID])
	require.Len(t, target.Selections, 2)
	assert.Contains(t, target.Selections, types.BuildAggregateID("ARM", "CMSIS", "", "RTOS2", ""))
	assert.Empty(t, s.Diagnostics)
}
