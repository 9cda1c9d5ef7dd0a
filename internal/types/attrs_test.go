package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeMap_SetGetPreservesInsertionOrder(t *testing.T) {
	m := NewAttributeMap()
	m.Set("Cclass", "CMSIS", true)
	m.Set("Cgroup", "CORE", true)
	m.Set("Cversion", "5.6.0", true)

	assert.Equal(t, []string{"Cclass", "Cgroup", "Cversion"}, m.Keys())
	assert.Equal(t, 3, m.Len())

	v, ok := m.Get("Cgroup")
	assert.True(t, ok)
	assert.Equal(t, "CORE", v)
}

func TestAttributeMap_SetWithoutOverwriteKeepsExistingValue(t *testing.T) {
	m := NewAttributeMap()
	m.Set("Dvendor", "ARM", true)
	m.Set("Dvendor", "STMicroelectronics", false)

	v, _ := m.Get("Dvendor")
	assert.Equal(t, "ARM", v)
	assert.Equal(t, 1, m.Len())
}

func TestAttributeMap_GetDefaultFallsBackWhenAbsent(t *testing.T) {
	m := NewAttributeMap()
	assert.Equal(t, "fallback", m.GetDefault("missing", "fallback"))
	m.Set("present", "value", true)
	assert.Equal(t, "value", m.GetDefault("present", "fallback"))
}

func TestAttributeMap_GetUint64ParsesDecimalAndHex(t *testing.T) {
	m := NewAttributeMap()
	m.Set("size", "1024", true)
	m.Set("base", "0x40001000", true)
	m.Set("garbage", "not-a-number", true)

	v, ok := m.GetUint64("size")
	assert.True(t, ok)
	assert.Equal(t, uint64(1024), v)

	v, ok = m.GetUint64("base")
	assert.True(t, ok)
	assert.Equal(t, uint64(0x40001000), v)

	_, ok = m.GetUint64("garbage")
	assert.False(t, ok)

	_, ok = m.GetUint64("missing")
	assert.False(t, ok)
}

func TestAttributeMap_GetBoolRecognizesCmsisTruthySpellings(t *testing.T) {
	m := NewAttributeMap()
	m.Set("a", "1", true)
	m.Set("b", "true", true)
	m.Set("c", "0", true)
	m.Set("d", "anything-else", true)

	assert.True(t, m.GetBool("a"))
	assert.True(t, m.GetBool("b"))
	assert.False(t, m.GetBool("c"))
	assert.False(t, m.GetBool("d"))
	assert.False(t, m.GetBool("missing"))
}

func TestAttributeMap_CloneIsIndependentCopy(t *testing.T) {
	m := NewAttributeMap()
	m.Set("Dname", "STM32H743ZI", true)

	clone := m.Clone()
	clone.Set("Dname", "STM32F407VG", true)

	original, _ := m.Get("Dname")
	cloned, _ := clone.Get("Dname")
	assert.Equal(t, "STM32H743ZI", original)
	assert.Equal(t, "STM32F407VG", cloned)
}

func TestAttributeMap_MergeChildOverridesParentOnEqualKey(t *testing.T) {
	parent := NewAttributeMap()
	parent.Set("Dvendor", "STMicroelectronics", true)
	parent.Set("Dfpu", "FPU", true)

	child := NewAttributeMap()
	child.Set("Dvendor", "OverriddenVendor", true)
	child.Set("Dcore", "Cortex-M7", true)

	merged := parent.Merge(child)

	vendor, _ := merged.Get("Dvendor")
	fpu, _ := merged.Get("Dfpu")
	core, _ := merged.Get("Dcore")
	assert.Equal(t, "OverriddenVendor", vendor)
	assert.Equal(t, "FPU", fpu)
	assert.Equal(t, "Cortex-M7", core)
}

func TestAttributeMap_MergeWithNilOtherReturnsClone(t *testing.T) {
	m := NewAttributeMap()
	m.Set("Dname", "STM32H743ZI", true)

	merged := m.Merge(nil)
	v, ok := merged.Get("Dname")
	assert.True(t, ok)
	assert.Equal(t, "STM32H743ZI", v)
}

func TestAttributeMap_NilReceiverGetReturnsZeroValue(t *testing.T) {
	var m *AttributeMap
	v, ok := m.Get("anything")
	assert.False(t, ok)
	assert.Equal(t, "", v)
}
