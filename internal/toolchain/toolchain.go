// Package toolchain implements the small toolchain registry spec §3.5/§4.2
// needs to evaluate 'T' domain expressions and CPRJ <toolchain> elements: a
// compiler family name plus a semver range a pack's Tcompiler constraint is
// checked against (e.g. a component requiring "AC6 >=6.16.0").
package toolchain

import (
	"strings"

	"github.com/blang/semver/v4"
)

// Registry maps a compiler family name ("AC6", "GCC", "IAR", ...) to the
// installed version available for it. A project's <toolchain> element
// names exactly one family/version pair; the registry lets the condition
// engine and the generators resolve per-toolchain build flags without
// re-parsing versions at each lookup site.
type Registry struct {
	installed map[string]semver.Version
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{installed: make(map[string]semver.Version)}
}

// Install registers one toolchain family/version pair. version must parse
// as semver after padding to three components (spec §3.5 tolerates
// "6.16" as a valid toolchain version).
func (r *Registry) Install(family, version string) error {
	v, err := parseLenient(version)
	if err != nil {
		return err
	}
	r.installed[normalizeFamily(family)] = v
	return nil
}

// Satisfies reports whether the installed version of family satisfies
// rangeExpr (a semver range such as ">=6.16.0 <7.0.0"). A family with no
// installed toolchain never satisfies any range.
func (r *Registry) Satisfies(family, rangeExpr string) bool {
	v, ok := r.installed[normalizeFamily(family)]
	if !ok {
		return false
	}
	if strings.TrimSpace(rangeExpr) == "" {
		return true
	}
	rng, err := semver.ParseRange(rangeExpr)
	if err != nil {
		return false
	}
	return rng(v)
}

// Version returns the installed version for family, if any.
func (r *Registry) Version(family string) (semver.Version, bool) {
	v, ok := r.installed[normalizeFamily(family)]
	return v, ok
}

// Resolve reports the installed version for family if it satisfies
// rangeExpr, the form the CLI's check-packs report and the CPRJ binder
// need: "is there a usable toolchain for this constraint, and which
// version is it". It is Satisfies plus Version collapsed into one call
// for call sites that want both the bool and the resolved version.
func (r *Registry) Resolve(family, rangeExpr string) (semver.Version, bool) {
	v, ok := r.installed[normalizeFamily(family)]
	if !ok {
		return semver.Version{}, false
	}
	if !r.Satisfies(family, rangeExpr) {
		return semver.Version{}, false
	}
	return v, true
}

func normalizeFamily(family string) string {
	return strings.ToUpper(strings.TrimSpace(family))
}

// parseLenient pads a dotted version string to three components before
// handing it to semver.Parse, since CPRJ/PDSC toolchain versions are
// commonly expressed as "6.16" rather than strict semver "6.16.0".
func parseLenient(version string) (semver.Version, error) {
	parts := strings.SplitN(version, ".", 3)
	for len(parts) < 3 {
		parts = append(parts, "0")
	}
	return semver.Parse(strings.Join(parts, "."))
}
