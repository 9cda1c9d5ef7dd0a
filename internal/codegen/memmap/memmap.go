// Package memmap implements the L4 memory-map report generator of spec
// §4.8: a flat, address-ordered listing of a device's peripherals at one
// of three levels of detail.
//
// Grounded on
// original_source/tools/svdconv/SVDGenerator/include/MemoryMap.h's
// MapLevel enum (MAPLEVEL_PERIPHERAL/REGISTER/FIELD) and its
// IteratePeripherals -> IterateRegisters -> IterateFields descent, which
// stops descending once it reaches the requested level.
package memmap

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cmsis-rte/rtecore/internal/codegen/header"
)

// Level is how deep the report descends into a peripheral's structure,
// mirroring SvdGenerator.h's MapLevel enum.
type Level int

const (
	LevelPeripheral Level = iota
	LevelRegister
	LevelField
)

// Generate renders the address-ordered memory map report at the given
// level of detail (MemoryMap.h's CreateMap / IteratePeripherals).
func Generate(peripherals []header.Peripheral, level Level) string {
	sorted := make([]header.Peripheral, len(peripherals))
	copy(sorted, peripherals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].BaseAddress < sorted[j].BaseAddress })

	var b strings.Builder
	for _, p := range sorted {
		fmt.Fprintf(&b, "0x%08X  %-16s  %s\n", p.BaseAddress, p.Name, p.Description)
		if level == LevelPeripheral {
			continue
		}
		for _, r := range p.Registers {
			addr := p.BaseAddress + r.Offset
			fmt.Fprintf(&b, "  0x%08X  %-14s  %-16s  %d-bit\n", addr, "+"+offsetHex(r.Offset), r.Name, r.WidthBits)
			if level == LevelField {
				for _, f := range r.Fields {
					fmt.Fprintf(&b, "    %-20s  bit %d..%d\n", f.Name, f.BitOffset, f.BitOffset+f.BitWidth-1)
				}
			}
		}
	}
	return b.String()
}

func offsetHex(offset uint64) string {
	return fmt.Sprintf("0x%X", offset)
}
