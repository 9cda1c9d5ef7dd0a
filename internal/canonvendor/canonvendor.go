// Package canonvendor resolves the handful of vendor-name spellings that
// CMSIS packs and device/board descriptions disagree on (Open Question #1
// of spec §4.2's D/B domain attribute matching) to one canonical form, so
// condition and device-hierarchy comparisons don't treat "STMicroelectronics"
// and "STM" as different vendors.
package canonvendor

import (
	"strings"

	"github.com/hbollon/go-edlib"
)

// synonyms maps a lowercased known spelling to its canonical form. Small and
// hand-curated: CMSIS's vendor list (the "Dvendor" enumeration in the
// ARM.CMSIS pack's PDSC schema) is a closed, slow-changing set, so a static
// table covers the overwhelming majority of real packs. Matched against
// go-edlib's fuzzy distance only as a fallback.
var synonyms = map[string]string{
	"st":                      "STMicroelectronics",
	"stm":                     "STMicroelectronics",
	"stmicroelectronics":      "STMicroelectronics",
	"nxp":                     "NXP Semiconductors",
	"nxp semiconductors":      "NXP Semiconductors",
	"freescale":               "NXP Semiconductors",
	"freescale semiconductor": "NXP Semiconductors",
	"ti":                      "Texas Instruments",
	"texas instruments":       "Texas Instruments",
	"silicon labs":            "Silicon Labs",
	"silicon laboratories":    "Silicon Labs",
	"nordic":                  "Nordic Semiconductor",
	"nordic semiconductor":    "Nordic Semiconductor",
	"microchip":               "Microchip",
	"atmel":                   "Microchip",
	"infineon":                "Infineon",
	"cypress":                 "Infineon",
	"renesas":                 "Renesas",
	"arm":                     "ARM",
}

// fuzzyThreshold is the minimum go-edlib Jaro-Winkler similarity (0..1) two
// vendor strings must reach to be folded together when neither appears in
// the static table.
const fuzzyThreshold = 0.92

// Table implements condition.VendorCanon (internal/condition), backed by the static synonym table plus a fuzzy fallback.
type Table struct {
	known []string // canonical forms, for fuzzy matching against unknown input
}

// NewTable builds a Table seeded with the built-in synonym set.
func NewTable() *Table {
	seen := make(map[string]bool)
	var known []string
	for _, canon := range synonyms {
		if !seen[canon] {
			seen[canon] = true
			known = append(known, canon)
		}
	}
	return &Table{known: known}
}

// Canonical returns vendor's canonical spelling. Exact table hits are cheap
// and exact; anything else is fuzzy-matched against the known canonical
// forms and only folded together above fuzzyThreshold, else returned
// unchanged (two truly distinct vendors must never be merged).
func (t *Table) Canonical(vendor string) string {
	trimmed := strings.TrimSpace(vendor)
	if trimmed == "" {
		return vendor
	}
	if canon, ok := synonyms[strings.ToLower(trimmed)]; ok {
		return canon
	}
	best := trimmed
	bestScore := 0.0
	for _, canon := range t.known {
		score, err := edlib.StringsSimilarity(trimmed, canon, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if float64(score) > bestScore {
			bestScore = float64(score)
			best = canon
		}
	}
	if bestScore >= fuzzyThreshold {
		return best
	}
	return trimmed
}

// Canonicalize is Canonical under the name the rest of the domain-stack
// wiring (device.BoardMatchesDevice callers, config's canonical_vendors
// table) refers to this operation by.
func (t *Table) Canonicalize(vendor string) string {
	return t.Canonical(vendor)
}
