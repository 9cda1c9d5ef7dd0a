// Package header implements the L4 CMSIS device header generator of spec
// §4.8: rendering a peripheral's <register>/<cluster> SVD description into
// a packed C struct, bucketing registers by offset and width, inserting
// RESERVED padding for gaps, and wrapping each peripheral in a Doxygen
// "@addtogroup" block.
//
// Grounded on
// original_source/tools/svdconv/SVDGenerator/src/HeaderData_Peripheral.cpp
// and HeaderData_RegStructure.cpp's struct/union nesting algorithm, and
// HeaderGenAPI.h's token vocabulary (DOXY_COMMENT, STRUCT/UNION, TYPEDEF).
// The original renders through an intermediate token stream written by a
// virtual visitor; this version renders directly to a string builder,
// which is the idiomatic Go shape for a single-pass text generator.
package header

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/cmsis-rte/rtecore/internal/item"
)

// Field is one bitfield of a register.
type Field struct {
	Name        string
	Description string
	BitOffset   int
	BitWidth    int
}

// Register is one SVD <register>, resolved to an absolute byte offset
// within its peripheral.
type Register struct {
	Name        string
	Description string
	Offset      uint64
	WidthBits   int // 8, 16 or 32
	Fields      []Field
}

// Peripheral is one SVD <peripheral>, the unit HeaderData_Peripheral.cpp
// renders as one struct plus one set of base-address #defines.
type Peripheral struct {
	Name        string
	Description string
	BaseAddress uint64
	Registers   []Register
}

// FromItems builds Peripherals from a tree of <peripheral>/<register>/
// <field> items (the shape internal/xmltree.FromElement produces when
// parsing an SVD document), sorting registers by offset the way
// HeaderData_RegStructure.cpp requires before bucketing.
func FromItems(peripherals []*item.Item) []Peripheral {
	out := make([]Peripheral, 0, len(peripherals))
	for _, p := range peripherals {
		name, _ := p.GetAttribute("name")
		desc := textOf(p, "description")
		base, _ := p.Attrs.GetUint64("baseAddress")
		periph := Peripheral{Name: name, Description: desc, BaseAddress: base}

		regsContainer := p.FirstChildByTag("registers")
		if regsContainer != nil {
			for _, r := range regsContainer.ChildrenByTag("register") {
				periph.Registers = append(periph.Registers, buildRegister(r))
			}
		}
		sort.Slice(periph.Registers, func(i, j int) bool { return periph.Registers[i].Offset < periph.Registers[j].Offset })
		out = append(out, periph)
	}
	return out
}

func buildRegister(r *item.Item) Register {
	name, _ := r.GetAttribute("name")
	offset, _ := r.Attrs.GetUint64("addressOffset")
	width, ok := r.Attrs.GetUint64("size")
	if !ok {
		width = 32
	}
	reg := Register{Name: name, Description: textOf(r, "description"), Offset: offset, WidthBits: int(width)}
	if fieldsContainer := r.FirstChildByTag("fields"); fieldsContainer != nil {
		for _, f := range fieldsContainer.ChildrenByTag("field") {
			fname, _ := f.GetAttribute("name")
			bitOffset, _ := f.Attrs.GetUint64("bitOffset")
			bitWidth, _ := f.Attrs.GetUint64("bitWidth")
			reg.Fields = append(reg.Fields, Field{
				Name:        fname,
				Description: textOf(f, "description"),
				BitOffset:   int(bitOffset),
				BitWidth:    int(bitWidth),
			})
		}
	}
	return reg
}

func textOf(it *item.Item, tag string) string {
	if c := it.FirstChildByTag(tag); c != nil {
		return strings.TrimSpace(c.Text)
	}
	return ""
}

// widthType maps a register's bit width to its CMSIS-standard integer
// typedef, matching HeaderData_RegStructure.cpp's type selection.
func widthType(bits int) string {
	switch bits {
	case 8:
		return "__IM  uint8_t "
	case 16:
		return "__IM  uint16_t"
	default:
		return "__IM  uint32_t"
	}
}

func byteWidth(bits int) uint64 {
	switch bits {
	case 8:
		return 1
	case 16:
		return 2
	default:
		return 4
	}
}

// GenerateStruct renders one peripheral's register layout struct,
// bucketing registers by ascending offset and inserting RESERVED padding
// arrays for any gap, matching HeaderData_RegStructure.cpp's algorithm.
func GenerateStruct(p Peripheral) string {
	var b strings.Builder

	fmt.Fprintf(&b, "/**\n  \\brief %s (%s)\n*/\n", p.Description, p.Name)
	fmt.Fprintf(&b, "typedef struct {\n")

	var cursor uint64
	reservedIndex := 0
	for _, reg := range p.Registers {
		if reg.Offset > cursor {
			gap := reg.Offset - cursor
			fmt.Fprintf(&b, "  __IM  uint8_t  RESERVED%d[%d];\n", reservedIndex, gap)
			reservedIndex++
			cursor = reg.Offset
		}
		fmt.Fprintf(&b, "  %s %-20s /*!< (@ 0x%08X) %s */\n", widthType(reg.WidthBits), reg.Name+";", reg.Offset, reg.Description)
		cursor = reg.Offset + byteWidth(reg.WidthBits)
	}
	fmt.Fprintf(&b, "} %s_Type;\n", strings.ToUpper(p.Name))
	return b.String()
}

// GenerateFieldMasks renders the _Pos/_Msk #define pairs for every field of
// every register in p, matching HeaderData_Field.cpp's output shape.
func GenerateFieldMasks(p Peripheral) string {
	var b strings.Builder
	for _, reg := range p.Registers {
		for _, f := range reg.Fields {
			mask := fieldMask(f)
			fmt.Fprintf(&b, "#define %s_%s_%s_Pos%s(%d)\n", p.Name, reg.Name, f.Name, padTo(p.Name, reg.Name, f.Name, "_Pos"), f.BitOffset)
			fmt.Fprintf(&b, "#define %s_%s_%s_Msk%s(%#xUL)\n", p.Name, reg.Name, f.Name, padTo(p.Name, reg.Name, f.Name, "_Msk"), mask)
		}
	}
	return b.String()
}

func fieldMask(f Field) uint64 {
	var mask uint64
	for i := 0; i < f.BitWidth; i++ {
		mask |= 1 << uint(i)
	}
	return mask << uint(f.BitOffset)
}

func padTo(parts ...string) string {
	total := 0
	for _, p := range parts[:len(parts)-1] {
		total += len(p) + 1
	}
	pad := 24 - total
	if pad < 1 {
		pad = 1
	}
	return strings.Repeat(" ", pad)
}

// StableHash returns a content hash of a generated header body, used by the
// L4 generation pipeline (spec §4.8) to decide whether a regenerated header
// actually changed before rewriting it to disk and disturbing the file's
// mtime-dependent incremental build state. xxhash rather than a
// cryptographic hash because this hash only needs to detect accidental
// collisions between successive regenerations of the same file, not resist
// a deliberate attacker.
func StableHash(body string) uint64 {
	return xxhash.Sum64String(body)
}

// GenerateAddtogroup wraps body in a Doxygen "@addtogroup <name>_Peripheral"
// block, the convention HeaderData_Peripheral.cpp applies to every
// generated peripheral section.
func GenerateAddtogroup(name, description, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "/** @addtogroup %s_Peripheral %s\n  @{\n*/\n", name, description)
	b.WriteString(body)
	fmt.Fprintf(&b, "/** @} */ /* End of group %s_Peripheral */\n", name)
	return b.String()
}
