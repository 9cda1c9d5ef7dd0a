package condition

import (
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/cmsis-rte/rtecore/internal/diag"
	"github.com/cmsis-rte/rtecore/internal/item"
)

// Condition wraps a <condition> item together with its parsed child
// expressions (spec §4.2's "condition" type: an id plus an ordered list of
// accept/require/deny expressions).
type Condition struct {
	ID          string
	Item        *item.Item
	Expressions []*Expression
}

// NewCondition builds a Condition from a constructed <condition> item,
// skipping any child that does not parse as a valid expression (an
// undefined-domain child is reported separately by the pack layer's
// validation pass, spec §6.6 M332).
func NewCondition(it *item.Item) *Condition {
	c := &Condition{ID: it.ID(), Item: it}
	for _, child := range it.Children {
		if expr, ok := NewExpression(child); ok {
			c.Expressions = append(c.Expressions, expr)
		}
	}
	return c
}

// EvaluateCondition runs spec §4.2's algorithm: cache lookup, recursion
// guard, the Dependency-mode short-circuit against ctx.FilterContext, then
// per-expression evaluation combined via combine().
func EvaluateCondition(cond *Condition, ctx *Context) Result {
	key := cacheKey(cond.ID, ctx.Mode)
	if r, ok := ctx.cache[key]; ok {
		return r
	}
	if ctx.visiting[cond.Item] {
		d := diag.New(diag.CodeRecursion, "", cond.ID, "condition recursion detected")
		cond.Item.ForceInvalid(d)
		ctx.emit(d)
		return RError
	}
	ctx.visiting[cond.Item] = true
	defer delete(ctx.visiting, cond.Item)

	if ctx.Mode == ModeDependency && ctx.FilterContext != nil {
		filterResult := EvaluateCondition(cond, ctx.FilterContext)
		switch filterResult {
		case RError:
			ctx.cache[key] = RError
			return RError
		case Failed:
			ctx.cache[key] = Ignored
			return Ignored
		}
	}

	var reqDeny, accept []Result
	for _, expr := range cond.Expressions {
		r := evaluateExpression(expr, ctx)
		if expr.Kind == ExprAccept {
			accept = append(accept, r)
		} else {
			reqDeny = append(reqDeny, r)
		}
	}
	result := combine(reqDeny, accept)
	ctx.cache[key] = result
	return result
}

func evaluateExpression(expr *Expression, ctx *Context) Result {
	switch expr.Domain {
	case DomainConditionRef:
		return evaluateConditionRef(expr, ctx)
	case DomainDevice, DomainBoard, DomainToolchain, DomainHost:
		return evaluateAttrDomain(expr, ctx)
	case DomainComponent:
		return evaluateComponentDomain(expr, ctx)
	default:
		d := diag.New(diag.CodeUndefinedCondition, "", expr.Item.ID(), "expression has no recognizable domain")
		ctx.emit(d)
		return RError
	}
}

func evaluateConditionRef(expr *Expression, ctx *Context) Result {
	if ctx.Registry == nil {
		d := diag.New(diag.CodeUndefinedCondition, "", expr.ConditionRef, "no condition registry available to resolve condition reference")
		ctx.emit(d)
		return RError
	}
	refCond, ok := ctx.Registry.Condition(expr.ConditionRef)
	if !ok {
		d := diag.New(diag.CodeUndefinedCondition, "", expr.ConditionRef, "referenced condition not found")
		ctx.emit(d)
		return RError
	}
	result := EvaluateCondition(refCond, ctx)
	if expr.Kind != ExprDeny {
		return result
	}
	switch result {
	case Fulfilled:
		if ctx.Mode == ModeDependency {
			return Incompatible
		}
		return Failed
	case Failed:
		return Fulfilled
	default:
		return result
	}
}

func evaluateComponentDomain(expr *Expression, ctx *Context) Result {
	if ctx.Mode == ModeFilter {
		return Ignored
	}
	if ctx.Resolver == nil {
		d := diag.New(diag.CodeDependencyNoCandidate, "", expr.Item.ID(), "no component resolver available to evaluate component expression")
		ctx.emit(d)
		return RError
	}
	return ctx.Resolver.EvaluateComponentExpr(expr, expr.Kind)
}

func evaluateAttrDomain(expr *Expression, ctx *Context) Result {
	matched, missingKey := matchDomainAttrs(expr, ctx)
	switch expr.Kind {
	case ExprDeny:
		switch {
		case missingKey:
			return Fulfilled
		case matched:
			if ctx.Mode == ModeDependency {
				return Incompatible
			}
			return Failed
		default:
			return Fulfilled
		}
	default: // ExprAccept, ExprRequire
		switch {
		case missingKey:
			return Failed
		case matched:
			return Fulfilled
		default:
			return Failed
		}
	}
}

// matchDomainAttrs compares every domain key present on expr.Item against
// ctx.TargetAttrs. missingKey is true when the target has no value at all
// for a key the expression constrains (spec §4.2, "an expression referring
// to an attribute the target does not define cannot be satisfied"). An
// expression with none of its domain's keys set matches vacuously. All
// keys besides the vendor keys and Dcdecp are wildcard-equal (spec §4.2),
// grounded on original_source/libs/rtemodel/src/RteCondition.cpp:238's
// `WildCards::Match(va, v)` — the target's actual value matched against
// the expression's declared value used as a glob pattern.
func matchDomainAttrs(expr *Expression, ctx *Context) (matched, missingKey bool) {
	keys := domainAttrKeys[expr.Domain]
	anySet := false
	for _, key := range keys {
		want, ok := expr.Item.GetAttribute(key)
		if !ok || want == "" {
			continue
		}
		anySet = true
		have, ok := ctx.TargetAttrs.Get(key)
		if !ok {
			return false, true
		}
		switch {
		case key == "Dcdecp":
			if !matchBitmask(want, have) {
				return false, false
			}
		case isVendorKey(key):
			if !strings.EqualFold(ctx.canonVendor(want), ctx.canonVendor(have)) {
				return false, false
			}
		default:
			if ok, _ := doublestar.Match(want, have); !ok {
				return false, false
			}
		}
	}
	if !anySet {
		return true, false
	}
	return true, false
}

// matchBitmask implements spec §4.2's Dcdecp bitmask AND-nonzero test,
// grounded on RteCondition.cpp:230-235: both values parse as unsigned
// integers (decimal or 0x-prefixed hex) and match if their bitwise AND is
// nonzero. An unparseable value never matches.
func matchBitmask(want, have string) bool {
	w, err := strconv.ParseUint(want, 0, 64)
	if err != nil {
		return false
	}
	h, err := strconv.ParseUint(have, 0, 64)
	if err != nil {
		return false
	}
	return w&h != 0
}

func isVendorKey(key string) bool {
	switch key {
	case "Dvendor", "Bvendor", "Tvendor":
		return true
	default:
		return false
	}
}
