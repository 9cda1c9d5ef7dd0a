package condition

import "github.com/cmsis-rte/rtecore/internal/item"

// Domain is one of the expression domains of spec §4.2.
type Domain byte

const (
	DomainBoard        Domain = 'B'
	DomainDevice       Domain = 'D'
	DomainToolchain    Domain = 'T'
	DomainHost         Domain = 'H'
	DomainComponent    Domain = 'C'
	DomainConditionRef Domain = 'c'
	domainUnknown      Domain = 0
)

// ExprKind is the ACCEPT/REQUIRE/DENY kind of an expression (spec §4.2).
type ExprKind int

const (
	ExprAccept ExprKind = iota
	ExprRequire
	ExprDeny
)

func parseExprKind(tag string) (ExprKind, bool) {
	switch tag {
	case "accept":
		return ExprAccept, true
	case "require":
		return ExprRequire, true
	case "deny":
		return ExprDeny, true
	default:
		return 0, false
	}
}

func parseDomain(it *item.Item) Domain {
	if _, ok := it.GetAttribute("condition"); ok {
		return DomainConditionRef
	}
	for _, key := range it.Attrs.Keys() {
		if key == "" {
			continue
		}
		switch d := Domain(key[0]); d {
		case DomainComponent, DomainToolchain, DomainHost, DomainBoard, DomainDevice:
			return d
		}
	}
	return domainUnknown
}

// Expression wraps an <accept>/<require>/<deny> item with its resolved kind
// and domain (spec §4.2's "expression" type).
type Expression struct {
	Item         *item.Item
	Kind         ExprKind
	Domain       Domain
	ConditionRef string // id referenced by a 'c' domain expression, else ""
}

// NewExpression classifies a raw item. ok is false if the tag is not one of
// accept/require/deny, or the domain cannot be determined from its
// attributes.
func NewExpression(it *item.Item) (*Expression, bool) {
	kind, ok := parseExprKind(it.Tag)
	if !ok {
		return nil, false
	}
	dom := parseDomain(it)
	if dom == domainUnknown {
		return nil, false
	}
	ref, _ := it.GetAttribute("condition")
	return &Expression{Item: it, Kind: kind, Domain: dom, ConditionRef: ref}, true
}

// domainAttrKeys lists the attribute names matched for the D/B/T/H domains,
// in the order the original RteCondition::Evaluate walks them: any key
// present on the expression must also be present and equal on the target,
// save for the keys the domain doesn't define (absent keys on the
// expression are simply not checked).
var domainAttrKeys = map[Domain][]string{
	DomainDevice:    {"Dvendor", "Dname", "Dfamily", "Dsubfamily", "Dvariant", "DcoreVersion", "Dcore", "Dfpu", "Dmve", "Dsecure", "Dtz", "Dendian", "Dcdecp"},
	DomainBoard:     {"Bvendor", "Bname", "Bversion"},
	DomainToolchain: {"Tcompiler", "Tvendor"},
	DomainHost:      {"Hname", "Hos"},
}
