package device

import (
	"strconv"
	"strings"

	"github.com/cmsis-rte/rtecore/internal/item"
)

// FlashInfo is the cumulative, offset-resolved memory region computed for a
// device/variant/processor aggregate: its own <memory> elements plus every
// ancestor's, with later (more specific) entries able to shift start
// addresses expressed as "+offset" relative to the previous cumulative end
// (original_source's RteDeviceItem flash-layout caching, referenced from
// RteDevice.h's RteDeviceMemory).
type FlashInfo struct {
	ID        string
	Start     uint64
	Size      uint64
	Access    string
	Algorithm string
}

// flashCache memoizes BuildFlashInfo per aggregate item, since the same
// device node is consulted repeatedly during resolution and code
// generation (header generator memory-map derivation, memmap generator).
var flashCache = make(map[*item.Item][]FlashInfo)

// BuildFlashInfo computes the cumulative flash/ram layout for agg's item by
// walking its ancestor chain root-to-leaf, accumulating <memory> children in
// order and resolving "+N" start offsets against the running end address of
// the previous region in the same chain. Results are cached per item since
// the tree is immutable once Construct() has run (spec §5's bottom-up
// finalization guarantee).
func BuildFlashInfo(agg *item.Item) []FlashInfo {
	if cached, ok := flashCache[agg]; ok {
		return cached
	}

	var chain []*item.Item
	for n := agg; n != nil; n = n.Parent {
		if _, ok := LevelOf(n); ok {
			chain = append(chain, n)
		}
	}

	var regions []FlashInfo
	var runningEnd uint64
	for i := len(chain) - 1; i >= 0; i-- {
		for _, mem := range chain[i].ChildrenByTag("memory") {
			start, hasStart := mem.Attrs.GetUint64("start")
			if !hasStart {
				start = runningEnd
				if raw, _ := mem.GetAttribute("start"); strings.HasPrefix(raw, "+") {
					if off, err := strconv.ParseUint(raw[1:], 0, 64); err == nil {
						start += off
					}
				}
			}
			size, _ := mem.Attrs.GetUint64("size")
			id, _ := mem.GetAttribute("id")
			access, _ := mem.GetAttribute("access")
			alg, _ := mem.GetAttribute("algorithm")
			region := FlashInfo{ID: id, Start: start, Size: size, Access: access, Algorithm: alg}
			regions = replaceOrAppend(regions, region)
			runningEnd = start + size
		}
	}
	flashCache[agg] = regions
	return regions
}

// replaceOrAppend overrides an inherited region of the same id with a more
// specific descendant's redefinition, matching the child-overrides-parent
// rule the rest of the hierarchy follows (spec §3.4).
func replaceOrAppend(regions []FlashInfo, next FlashInfo) []FlashInfo {
	if next.ID == "" {
		return append(regions, next)
	}
	for i, r := range regions {
		if r.ID == next.ID {
			regions[i] = next
			return regions
		}
	}
	return append(regions, next)
}
