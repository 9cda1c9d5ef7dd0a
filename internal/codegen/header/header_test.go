package header

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmsis-rte/rtecore/internal/item"
)

func buildPeripheralItem(t *testing.T) *item.Item {
	t.Helper()
	f := item.NewFactory(nil)
	p := item.New("peripheral", f)
	p.AddAttribute("name", "GPIOA", true)
	p.AddAttribute("baseAddress", "0x40020000", true)

	desc := p.CreateChild("description")
	desc.Text = "General purpose I/O"
	p.AddChild(desc)

	registers := p.CreateChild("registers")
	p.AddChild(registers)

	moder := registers.CreateChild("register")
	moder.AddAttribute("name", "MODER", true)
	moder.AddAttribute("addressOffset", "0x00", true)
	moder.AddAttribute("size", "32", true)
	registers.AddChild(moder)

	odr := registers.CreateChild("register")
	odr.AddAttribute("name", "ODR", true)
	odr.AddAttribute("addressOffset", "0x14", true)
	odr.AddAttribute("size", "32", true)
	fields := odr.CreateChild("fields")
	odr.AddChild(fields)
	field := fields.CreateChild("field")
	field.AddAttribute("name", "ODR0", true)
	field.AddAttribute("bitOffset", "0", true)
	field.AddAttribute("bitWidth", "1", true)
	fields.AddChild(field)
	registers.AddChild(odr)

	p.Construct()
	return p
}

func TestFromItems_SortsRegistersByOffset(t *testing.T) {
	p := buildPeripheralItem(t)
	peripherals := FromItems([]*item.Item{p})
	require.Len(t, peripherals, 1)
	require.Len(t, peripherals[0].Registers, 2)
	assert.Equal(t, "MODER", peripherals[0].Registers[0].Name)
	assert.Equal(t, "ODR", peripherals[0].Registers[1].Name)
}

func TestGenerateStruct_InsertsReservedPadding(t *testing.T) {
	p := buildPeripheralItem(t)
	peripherals := FromItems([]*item.Item{p})
	out := GenerateStruct(peripherals[0])

	assert.Contains(t, out, "RESERVED0")
	assert.Contains(t, out, "MODER")
	assert.Contains(t, out, "ODR")
	assert.Contains(t, out, "GPIOA_Type")
}

func TestStableHash_SameBodySameHash(t *testing.T) {
	p := buildPeripheralItem(t)
	peripherals := FromItems([]*item.Item{p})
	out := GenerateStruct(peripherals[0])
	assert.Equal(t, StableHash(out), StableHash(out))
}

func TestStableHash_DifferentBodyDifferentHash(t *testing.T) {
	assert.NotEqual(t, StableHash("a"), StableHash("b"))
}

func TestGenerateFieldMasks_ProducesPosAndMsk(t *testing.T) {
	p := buildPeripheralItem(t)
	peripherals := FromItems([]*item.Item{p})
	out := GenerateFieldMasks(peripherals[0])

	assert.True(t, strings.Contains(out, "GPIOA_ODR_ODR0_Pos"))
	assert.True(t, strings.Contains(out, "GPIOA_ODR_ODR0_Msk"))
}
