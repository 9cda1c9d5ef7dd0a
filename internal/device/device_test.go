package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/item"
)

func buildTree(t *testing.T) (*item.Item, *item.Item) {
	t.Helper()
	f := NewFactory()

	vendor := item.New("vendor", f)
	vendor.AddAttribute("Dvendor", "STMicroelectronics", true)
	vendor.AddAttribute("Dfpu", "0", true)

	family := vendor.CreateChild("family")
	family.AddAttribute("Dfamily", "STM32H7", true)
	family.AddAttribute("Dcore", "Cortex-M7", true)
	vendor.AddChild(family)

	mem := family.CreateChild("memory")
	mem.AddAttribute("id", "IROM1", true)
	mem.AddAttribute("start", "0x08000000", true)
	mem.AddAttribute("size", "0x200000", true)
	family.AddChild(mem)

	dev := family.CreateChild("device")
	dev.AddAttribute("Dname", "STM32H743ZI", true)
	dev.AddAttribute("Dfpu", "1", true)
	family.AddChild(dev)

	vendor.Construct()
	return vendor, dev
}

func TestEffectiveAttribute_ChildOverridesParent(t *testing.T) {
	_, dev := buildTree(t)
	v, ok := EffectiveAttribute(dev, "Dfpu")
	require.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestEffectiveAttribute_InheritedFromAncestor(t *testing.T) {
	_, dev := buildTree(t)
	v, ok := EffectiveAttribute(dev, "Dcore")
	require.True(t, ok)
	assert.Equal(t, "Cortex-M7", v)
}

func TestEffectiveAttributes_MergesWholeChain(t *testing.T) {
	_, dev := buildTree(t)
	merged := EffectiveAttributes(dev)
	v, ok := merged.Get("Dvendor")
	require.True(t, ok)
	assert.Equal(t, "STMicroelectronics", v)
	v, ok = merged.Get("Dname")
	require.True(t, ok)
	assert.Equal(t, "STM32H743ZI", v)
}

func TestBuildAggregates_FindsDeviceLevel(t *testing.T) {
	vendor, dev := buildTree(t)
	aggs := BuildAggregates(vendor)
	require.Len(t, aggs, 1)
	assert.Equal(t, dev, aggs[0].Item)
	assert.Equal(t, LevelDevice, aggs[0].Level)
}

func TestBuildFlashInfo_InheritsFromFamily(t *testing.T) {
	_, dev := buildTree(t)
	regions := BuildFlashInfo(dev)
	require.Len(t, regions, 1)
	assert.Equal(t, "IROM1", regions[0].ID)
	assert.Equal(t, uint64(0x08000000), regions[0].Start)
	assert.Equal(t, uint64(0x200000), regions[0].Size)
}
