package pack

import (
	"github.com/cmsis-rte/rtecore/internal/item"
)

// Board is a <board> item (spec §3.6's supplementary board model), grounded
// on original_source/libs/rtemodel/include/RteBoard.h.
type Board struct {
	Item           *item.Item
	Pack           *Package
	Vendor         string
	Name           string
	Version        string
	MountedDevices []MountedDevice
}

// MountedDevice is one <mountedDevice> entry: the Dname[,Dvendor] pair
// RteBoard.h's GetMountedDevices documents a board as carrying.
type MountedDevice struct {
	Name   string
	Vendor string
}

// NewBoard builds a Board from a constructed <board> item.
func NewBoard(it *item.Item, p *Package) *Board {
	b := &Board{
		Item:    it,
		Pack:    p,
		Vendor:  attr(it, "vendor"),
		Name:    attr(it, "name"),
		Version: attr(it, "revision"),
	}
	for _, md := range it.ChildrenByTag("mountedDevice") {
		b.MountedDevices = append(b.MountedDevices, MountedDevice{
			Name:   attr(md, "Dname"),
			Vendor: attr(md, "Dvendor"),
		})
	}
	return b
}

// Boards returns every board defined by this pack.
func (p *Package) Boards() []*Board {
	container := p.Item.FirstChildByTag("boards")
	if container == nil {
		return nil
	}
	var out []*Board
	for _, b := range container.ChildrenByTag("board") {
		out = append(out, NewBoard(b, p))
	}
	return out
}
