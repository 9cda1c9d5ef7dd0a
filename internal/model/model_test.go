package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/types"
)

func buildPkg(t *testing.T, vendor, name, version, compClass, compGroup string) *pack.Package {
	t.Helper()
	f := item.NewFactory(nil)
	root := item.New("package", f)
	root.AddAttribute("vendor", vendor, true)
	root.AddAttribute("name", name, true)

	releases := root.CreateChild("releases")
	root.AddChild(releases)
	release := releases.CreateChild("release")
	release.AddAttribute("version", version, true)
	releases.AddChild(release)

	components := root.CreateChild("components")
	root.AddChild(components)
	comp := components.CreateChild("component")
	comp.AddAttribute("Cclass", compClass, true)
	comp.AddAttribute("Cgroup", compGroup, true)
	comp.AddAttribute("Cversion", version, true)
	components.AddChild(comp)

	root.Construct()
	return pack.NewPackage(root, pack.StateInstalled)
}

func TestReindex_LatestPackagesPicksHighestVersion(t *testing.T) {
	g := NewGlobal()
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.8.0", "CMSIS", "CORE"))
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.9.0", "CMSIS", "CORE"))
	g.Reindex()

	latest, ok := g.LatestPackages["ARM.CMSIS"]
	require.True(t, ok)
	assert.Equal(t, types.PackID("ARM.CMSIS.5.9.0"), latest)
}

func TestReindex_ComponentsByAggregateAcrossPacks(t *testing.T) {
	g := NewGlobal()
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.8.0", "CMSIS", "CORE"))
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.9.0", "CMSIS", "CORE"))
	g.Reindex()

	aggID := types.BuildAggregateID("ARM", "CMSIS", "", "CORE", "")
	comps := g.ComponentsByAggregate(aggID)
	require.Len(t, comps, 2)
	assert.Equal(t, types.PackID("ARM.CMSIS.5.9.0"), comps[0].Pack.ID)
}

func TestFilter_SelectedGlobRestrictsVisibility(t *testing.T) {
	g := NewGlobal()
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.9.0", "CMSIS", "CORE"))
	g.AddPackage(buildPkg(t, "NXP", "MIMXRT1064_DFP", "1.0.0", "Device", "Startup"))
	g.Filter = &Filter{SelectedGlob: []string{"ARM.*"}}
	g.Reindex()

	_, armOK := g.LatestPackages["ARM.CMSIS"]
	_, nxpOK := g.LatestPackages["NXP.MIMXRT1064_DFP"]
	assert.True(t, armOK)
	assert.False(t, nxpOK)
}

func TestFilter_LatestOnlyExcludesOlderVersions(t *testing.T) {
	g := NewGlobal()
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.8.0", "CMSIS", "CORE"))
	g.AddPackage(buildPkg(t, "ARM", "CMSIS", "5.9.0", "CMSIS", "CORE"))
	g.Filter = &Filter{UseAllPacks: true, LatestOnly: true}
	g.Reindex()

	aggID := types.BuildAggregateID("ARM", "CMSIS", "", "CORE", "")
	comps := g.ComponentsByAggregate(aggID)
	require.Len(t, comps, 1)
	assert.Equal(t, types.PackID("ARM.CMSIS.5.9.0"), comps[0].Pack.ID)
}
