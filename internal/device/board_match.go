package device

import (
	"strings"

	"github.com/cmsis-rte/rtecore/internal/canonvendor"
	"github.com/cmsis-rte/rtecore/internal/pack"
)

// BoardMatchesDevice reports whether board carries a <mountedDevice> entry
// naming agg, vendor-canonicalized through canon so "ST"/"STMicroelectronics"
// spelling variants between a board's PDSC and a device pack's PDSC don't
// produce a false negative (Open Question #1, original_source's
// RteBoard::GetMountedDevices feeding RteModel's board-to-device lookup). A
// nil canon falls back to case-insensitive exact comparison.
func BoardMatchesDevice(board *pack.Board, agg *Aggregate, canon *canonvendor.Table) bool {
	deviceName, _ := EffectiveAttribute(agg.Item, "Dname")
	if deviceName == "" {
		deviceName, _ = EffectiveAttribute(agg.Item, "Dvariant")
	}
	deviceVendor, _ := EffectiveAttribute(agg.Item, "Dvendor")

	for _, md := range board.MountedDevices {
		if !strings.EqualFold(md.Name, deviceName) {
			continue
		}
		if md.Vendor == "" || deviceVendor == "" {
			return true
		}
		if canon != nil {
			if canon.Canonical(md.Vendor) == canon.Canonical(deviceVendor) {
				return true
			}
			continue
		}
		if strings.EqualFold(md.Vendor, deviceVendor) {
			return true
		}
	}
	return false
}
