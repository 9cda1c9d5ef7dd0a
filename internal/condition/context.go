package condition

import (
	"github.com/cespare/xxhash/v2"

	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/item"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// Mode selects which of spec §4.2's two evaluation contexts a Context
// implements: plain filtering (used when listing selectable components) or
// full dependency resolution (used by the solver's fixed-point loop).
type Mode int

const (
	ModeFilter Mode = iota
	ModeDependency
)

// VendorCanon resolves board/device vendor name variants to a canonical
// form before D/B domain attribute comparison (Open Question #1, resolved
// in internal/canonvendor). A nil VendorCanon falls back to case-insensitive
// string comparison.
type VendorCanon interface {
	Canonical(vendor string) string
}

// Context carries everything one evaluation pass over a condition tree
// needs: the mode, the attributes being matched against, the lookup
// collaborators, and the per-pass cache/recursion-guard state (spec §4.2,
// "evaluation context").
//
// A Context is single-use per resolve pass: construct one, evaluate one or
// more conditions against it, then discard it. The cache is keyed by
// cacheKey (condition id plus mode) and the visiting set by *item.Item;
// both maps belong to one Context, so two Contexts never share state.
type Context struct {
	Mode        Mode
	TargetAttrs *types.AttributeMap
	Registry    Registry
	Resolver    ComponentExprResolver
	VendorCanon VendorCanon

	// FilterContext, set only for ModeDependency contexts, is the sibling
	// Filter-mode context evaluated against the same target. Spec §4.2's
	// short-circuit rule consults it before evaluating a condition's own
	// dependency-mode expressions.
	FilterContext *Context

	Diagnostics []diag.Diagnostic

	cache    map[uint64]Result
	visiting map[*item.Item]bool
}

// cacheKey derives a condition's per-pass cache key from its id and the
// evaluating context's mode, using xxhash rather than the *item.Item
// pointer itself so the cache could, in principle, be serialized or shared
// across Context instances evaluating the same target attributes (the
// fixed-point solver constructs a fresh Context per iteration; a pointer
// key would force a full cache miss on every one of them).
func cacheKey(id string, mode Mode) uint64 {
	h := xxhash.New()
	h.WriteString(id)
	h.Write([]byte{byte(mode)})
	return h.Sum64()
}

// NewContext builds an evaluation context. registry and resolver may be nil
// for contexts that never need to resolve 'c' or 'C' domain expressions
// (e.g. a pure device-filter pass over a condition with only D domain
// children).
func NewContext(mode Mode, targetAttrs *types.AttributeMap, registry Registry, resolver ComponentExprResolver, vendorCanon VendorCanon) *Context {
	return &Context{
		Mode:        mode,
		TargetAttrs: targetAttrs,
		Registry:    registry,
		Resolver:    resolver,
		VendorCanon: vendorCanon,
		cache:       make(map[uint64]Result),
		visiting:    make(map[*item.Item]bool),
	}
}

// WithFilterContext attaches the sibling Filter-mode context used by the
// Dependency-mode short-circuit rule and returns the receiver for chaining.
func (c *Context) WithFilterContext(filter *Context) *Context {
	c.FilterContext = filter
	return c
}

func (c *Context) emit(d diag.Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

func (c *Context) canonVendor(v string) string {
	if c.VendorCanon == nil {
		return v
	}
	return c.VendorCanon.Canonical(v)
}
