// Package solver implements the L3 dependency solver of spec §4.6: a
// fixed-point loop over a target's selected components that resolves
// component-domain condition expressions, enforces the single-aggregate
// rule, and detects unresolved/conflicting dependencies.
//
// Grounded on original_source/libs/rtemodel/include/RteCondition.h's
// RteDependencyResult (the per-item evaluation-result tree the original
// accumulates while resolving) and RteCprjTarget.h's ResolveDependencies
// entry point, adapted into an explicit iterate-to-fixpoint loop instead of
// a recursive accumulator.
package solver

import (
	"sort"

	"github.com/cmsis-rte/rtecore/internal/condition"
	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/model"
	"github.com/cmsis-rte/rtecore/internal/pack"
	"github.com/cmsis-rte/rtecore/internal/types"
)

// maxIterations bounds the fixed-point loop (spec §4.6's "hard iteration
// cap" guarding against a pathological dependency cycle that never
// converges). original_source has no literal constant for this — the C++
// resolver relies on recursion depth and per-run re-evaluation instead —
// but spec §5 mandates a deterministic, terminating single-threaded loop,
// so an explicit cap is required here.
const maxIterations = 64

// Selection is one resolved aggregate's chosen component for a target.
type Selection struct {
	AggregateID types.AggregateID
	Component   *pack.Component
}

// Target is the minimal view the solver needs of a project target: its
// effective device/board/toolchain attributes and its current component
// selections, keyed by aggregate id so the single-aggregate rule (spec
// §4.6, "at most one component per aggregate may be selected") is
// structural rather than enforced by scanning.
type Target struct {
	Attrs      *types.AttributeMap
	Selections map[types.AggregateID]*pack.Component
}

// NewTarget returns an empty target with the given effective attributes.
func NewTarget(attrs *types.AttributeMap) *Target {
	return &Target{Attrs: attrs, Selections: make(map[types.AggregateID]*pack.Component)}
}

// Solver runs the fixed-point dependency resolution loop for one Target
// against one Global model.
type Solver struct {
	Global      *model.Global
	Target      *Target
	VendorCanon condition.VendorCanon
	Diagnostics []diag.Diagnostic

	// pendingSelectable accumulates, for the iteration in progress, the
	// candidate set behind every component-domain expression that
	// evaluated Selectable, so Resolve can auto-select single-aggregate
	// dependencies once the iteration's evaluations are all in.
	pendingSelectable [][]*pack.Component
}

// New returns a Solver bound to a target and model.
func New(g *model.Global, t *Target, vendorCanon condition.VendorCanon) *Solver {
	return &Solver{Global: g, Target: t, VendorCanon: vendorCanon}
}

// EvaluateComponentExpr implements condition.ComponentExprResolver: a 'C'
// domain expression is satisfied when at least one currently selected
// component matches the expression's Cvendor/Cclass/Cgroup/Csub/Cversion
// constraints (exact string equality; Cbundle and Capiversion are not
// compared). DENY fails the moment ANY
// selected component matches (spec §4.2's deny-any-match semantics), which
// is why this logic lives here rather than in the condition package: only
// the solver knows the full selection set.
func (s *Solver) EvaluateComponentExpr(expr *condition.Expression, kind condition.ExprKind) condition.Result {
	matchesAny := false
	for _, comp := range s.Target.Selections {
		if componentExprMatches(expr, comp) {
			matchesAny = true
			break
		}
	}
	switch kind {
	case condition.ExprDeny:
		if matchesAny {
			return condition.Incompatible
		}
		return condition.Fulfilled
	default: // Accept, Require
		if matchesAny {
			return condition.Fulfilled
		}
		candidates := s.Global.FindComponents(queryFromExpr(expr))
		if len(candidates) > 0 {
			s.pendingSelectable = append(s.pendingSelectable, candidates)
			return condition.Selectable
		}
		return condition.Missing
	}
}

func queryFromExpr(expr *condition.Expression) model.ComponentQuery {
	q := model.ComponentQuery{}
	q.Vendor, _ = expr.Item.GetAttribute("Cvendor")
	q.Class, _ = expr.Item.GetAttribute("Cclass")
	q.Bundle, _ = expr.Item.GetAttribute("Cbundle")
	q.Group, _ = expr.Item.GetAttribute("Cgroup")
	q.Sub, _ = expr.Item.GetAttribute("Csub")
	return q
}

func componentExprMatches(expr *condition.Expression, comp *pack.Component) bool {
	for _, pair := range []struct {
		key  string
		have string
	}{
		{"Cvendor", comp.Vendor},
		{"Cclass", comp.Class},
		{"Cgroup", comp.Group},
		{"Csub", comp.Sub},
		{"Cversion", comp.Version},
	} {
		want, ok := expr.Item.GetAttribute(pair.key)
		if ok && want != "" && want != pair.have {
			return false
		}
	}
	return true
}

// Resolve runs the fixed-point loop: repeatedly re-evaluate every selected
// component's condition under a fresh Dependency-mode context, auto-select
// any Selectable dependency with exactly one candidate aggregate, and
// repeat until no selection's evaluated result changes and nothing new was
// auto-selected, or maxIterations is hit (spec §4.6's
// resolve_dependencies pseudocode). It returns the final per-aggregate
// results.
func (s *Solver) Resolve() map[types.AggregateID]condition.Result {
	results := make(map[types.AggregateID]condition.Result)
	var iterDiags []diag.Diagnostic
	for iter := 0; iter < maxIterations; iter++ {
		filterCtx := condition.NewContext(condition.ModeFilter, s.Target.Attrs, nil, nil, s.VendorCanon)
		depCtx := condition.NewContext(condition.ModeDependency, s.Target.Attrs, nil, s, s.VendorCanon).WithFilterContext(filterCtx)

		s.pendingSelectable = nil
		changed := false
		newResults := make(map[types.AggregateID]condition.Result, len(s.Target.Selections))
		for aggID, comp := range s.Target.Selections {
			depCtx.Registry = comp.Pack
			filterCtx.Registry = comp.Pack
			var r condition.Result
			if cond, ok := comp.Condition(); ok {
				r = condition.EvaluateCondition(cond, depCtx)
			} else {
				r = condition.Fulfilled
			}
			newResults[aggID] = r
			if prev, ok := results[aggID]; !ok || prev != r {
				changed = true
			}
		}
		iterDiags = append(filterCtx.Diagnostics, depCtx.Diagnostics...)
		results = newResults
		if s.autoSelectSingleCandidates() {
			changed = true
		}
		if !changed {
			break
		}
	}
	s.Diagnostics = append(s.Diagnostics, iterDiags...)
	s.reportUnresolved(results)
	return results
}

// autoSelectSingleCandidates implements spec §4.6's auto-resolve step: a
// Selectable dependency whose candidates all belong to one aggregate is
// selected automatically (highest version via Global.ComponentsByAggregate)
// instead of being left unresolved, so the next iteration re-evaluates the
// dependent condition against the new selection. A Selectable dependency
// whose candidates span more than one aggregate is left for
// reportUnresolved to flag as M317 — the caller must disambiguate.
func (s *Solver) autoSelectSingleCandidates() bool {
	selected := false
	for _, candidates := range s.pendingSelectable {
		aggIDs := make(map[types.AggregateID]bool, 1)
		for _, c := range candidates {
			aggIDs[c.AggregateID] = true
		}
		if len(aggIDs) != 1 {
			continue
		}
		var aggID types.AggregateID
		for id := range aggIDs {
			aggID = id
		}
		if _, already := s.Target.Selections[aggID]; already {
			continue
		}
		best := s.Global.ComponentsByAggregate(aggID)
		if len(best) == 0 {
			continue
		}
		s.Target.Selections[aggID] = best[0]
		selected = true
	}
	s.pendingSelectable = nil
	return selected
}

func (s *Solver) reportUnresolved(results map[types.AggregateID]condition.Result) {
	ids := make([]types.AggregateID, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		r := results[id]
		comp := s.Target.Selections[id]
		switch r {
		case condition.Missing, condition.MissingAPI, condition.MissingAPIVersion:
			s.Diagnostics = append(s.Diagnostics, diag.New(diag.CodeMissingComponent, string(comp.Pack.ID), string(id),
				"component dependency not satisfied: "+r.String()))
		case condition.Selectable:
			s.Diagnostics = append(s.Diagnostics, diag.New(diag.CodeDependencyNoCandidate, string(comp.Pack.ID), string(id),
				"dependency ambiguous: candidate components span more than one aggregate"))
		case condition.Conflict:
			s.Diagnostics = append(s.Diagnostics, diag.New(diag.CodeConflict, string(comp.Pack.ID), string(id),
				"conflicting component selection"))
		case condition.Incompatible, condition.IncompatibleVersion, condition.IncompatibleVariant:
			s.Diagnostics = append(s.Diagnostics, diag.New(diag.CodeIncompatible, string(comp.Pack.ID), string(id),
				"component is incompatible with current selection: "+r.String()))
		}
	}
}
