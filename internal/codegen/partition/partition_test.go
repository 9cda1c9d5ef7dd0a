package partition

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildDevice() Device {
	return Device{
		Name:          "CM33F",
		MaxSAURegions: 8,
		SAURegions: []SAURegion{
			{Number: 1, BaseAddr: 0x00000000, LimitAddr: 0x0FFFFFFF, NonSecure: true},
			{Number: 0, BaseAddr: 0x10000000, LimitAddr: 0x1FFFFFFF, NonSecure: false},
		},
		Interrupts: []Interrupt{
			{Number: 33, Name: "WDT_IRQn"},
			{Number: 0, Name: "TIMER0_IRQn"},
		},
	}
}

func TestGenerate_EmitsConfigWizardMarkers(t *testing.T) {
	out := Generate(buildDevice())
	assert.Contains(t, out, cfgBegin)
	assert.Contains(t, out, cfgEnd)
}

func TestGenerate_SAURegionsSortedByNumber(t *testing.T) {
	out := Generate(buildDevice())
	idx0 := strings.Index(out, "SAU_INIT_START0")
	idx1 := strings.Index(out, "SAU_INIT_START1")
	assert.Greater(t, idx1, idx0)
}

func TestGenerate_IncludesMaxSAURegions(t *testing.T) {
	out := Generate(buildDevice())
	assert.Contains(t, out, "SAU_REGIONS_MAX  8")
}

func TestGenerate_InterruptTargetsSortedByNumber(t *testing.T) {
	out := Generate(buildDevice())
	idxTimer := strings.Index(out, "TIMER0_IRQn_ITNS")
	idxWdt := strings.Index(out, "WDT_IRQn_ITNS")
	assert.Greater(t, idxWdt, idxTimer)
}
