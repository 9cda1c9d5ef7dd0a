// Package sfd implements the L4 debugger peripheral-view (.sfr/"SFD")
// generator of spec §4.8: rendering a device's peripheral tree into the
// nested menu/group/bitfield/item structure the Keil uVision debugger's
// Peripheral Window reads.
//
// Grounded on
// original_source/tools/svdconv/SVDGenerator/{include,src}/SfdData.{h,cpp}
// and SfdGenerator.h's output vocabulary (CreatePeripheralMenu,
// CreatePeripheralView, CreateRegisters, CreateFields,
// MakeLocationEdit/MakeLocationObit). The original emits through a
// stateful FileIo/EndGroup-stack writer producing a proprietary binary-ish
// text format; this version targets the equivalent nested-element shape
// reduced to the <itree>/<view>/<m>/<g>/<b>/<item> vocabulary the rest of
// this repo's item tree already speaks, which is the form a reader of the
// generated tree (tests, other generators) can consume directly.
package sfd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cmsis-rte/rtecore/internal/codegen/header"
)

// MenuEntry is one peripheral's line in the debugger's top-level
// peripheral menu ("m" in SfdData.h's CreatePeripheralMenu).
type MenuEntry struct {
	Name        string
	BaseAddress uint64
}

// View is one peripheral's expanded register/bitfield view ("view" in
// SfdData.h's CreatePeripheralView), built from the same Peripheral shape
// internal/codegen/header consumes so both generators read one SVD-shaped
// item tree.
type View struct {
	Peripheral header.Peripheral
}

// BuildMenu renders the device's top-level peripheral menu, sorted by
// base address the way CreatePeripheralMenu orders its list.
func BuildMenu(peripherals []header.Peripheral) []MenuEntry {
	entries := make([]MenuEntry, 0, len(peripherals))
	for _, p := range peripherals {
		entries = append(entries, MenuEntry{Name: p.Name, BaseAddress: p.BaseAddress})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].BaseAddress < entries[j].BaseAddress })
	return entries
}

// GenerateMenu renders the <itree> menu block (SfdData.h's
// CreatePeripheralMenu / SfdGenerator.h's CreateItem vocabulary).
func GenerateMenu(entries []MenuEntry) string {
	var b strings.Builder
	b.WriteString("<itree>\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "  <m name=\"%s\" addr=\"0x%08X\"/>\n", e.Name, e.BaseAddress)
	}
	b.WriteString("</itree>\n")
	return b.String()
}

// GenerateView renders one peripheral's expanded <view> block: a <g>
// group per register, a <b> bitfield entry per field, matching SfdData.h's
// CreatePeripheralView -> CreateRegisters -> CreateFields descent.
func GenerateView(v View) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<view name=\"%s\" addr=\"0x%08X\">\n", v.Peripheral.Name, v.Peripheral.BaseAddress)
	for _, reg := range v.Peripheral.Registers {
		fmt.Fprintf(&b, "  <g name=\"%s\" offset=\"0x%X\" width=\"%d\">\n", reg.Name, reg.Offset, reg.WidthBits)
		if len(reg.Fields) == 0 {
			fmt.Fprintf(&b, "    <item name=\"%s\" access=\"RW\"/>\n", reg.Name)
		}
		for _, f := range reg.Fields {
			b.WriteString(generateBitfield(reg.Name, f))
		}
		b.WriteString("  </g>\n")
	}
	b.WriteString("</view>\n")
	return b.String()
}

// generateBitfield renders one <b> bitfield entry, matching
// SfdGenerator.h's MakeLocationEdit (read/write fields) vs
// MakeLocationObit (single-bit, observe-only fields) split.
func generateBitfield(regName string, f header.Field) string {
	if f.BitWidth == 1 {
		return fmt.Sprintf("    <b name=\"%s.%s\" bit=\"%d\"/>\n", regName, f.Name, f.BitOffset)
	}
	last := f.BitOffset + f.BitWidth - 1
	return fmt.Sprintf("    <b name=\"%s.%s\" range=\"%d:%d\"/>\n", regName, f.Name, last, f.BitOffset)
}

// GenerateInterruptItems renders the debugger's NVIC interrupt item list
// (SfdData.h's CreateInterruptItems), sorted by interrupt number.
func GenerateInterruptItems(interrupts map[string]int) string {
	names := make([]string, 0, len(interrupts))
	for name := range interrupts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return interrupts[names[i]] < interrupts[names[j]] })

	var b strings.Builder
	b.WriteString("<interrupts>\n")
	for _, name := range names {
		fmt.Fprintf(&b, "  <item name=\"%s\" num=\"%d\"/>\n", name, interrupts[name])
	}
	b.WriteString("</interrupts>\n")
	return b.String()
}
