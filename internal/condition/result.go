// Package condition implements the L1 condition engine of spec §4.2: a
// three-valued boolean evaluator over device/board/toolchain/component
// attributes with recursion detection, result caching, and the two
// evaluation contexts (filtering vs. dependency-resolution).
package condition

// Result is one value of the 15-entry ordered lattice of spec §4.2,
// worst-to-best. Int comparison directly implements "the minimum"/"the
// maximum" combining rules.
type Result int

const (
	RError Result = iota
	Failed
	Missing
	MissingAPI
	MissingAPIVersion
	Unavailable
	UnavailablePack
	Incompatible
	IncompatibleVersion
	IncompatibleVariant
	Conflict
	Installed
	Selectable
	Fulfilled
	Ignored
)

var resultNames = [...]string{
	RError:               "R_ERROR",
	Failed:               "FAILED",
	Missing:              "MISSING",
	MissingAPI:           "MISSING_API",
	MissingAPIVersion:    "MISSING_API_VERSION",
	Unavailable:          "UNAVAILABLE",
	UnavailablePack:      "UNAVAILABLE_PACK",
	Incompatible:         "INCOMPATIBLE",
	IncompatibleVersion:  "INCOMPATIBLE_VERSION",
	IncompatibleVariant:  "INCOMPATIBLE_VARIANT",
	Conflict:             "CONFLICT",
	Installed:            "INSTALLED",
	Selectable:           "SELECTABLE",
	Fulfilled:            "FULFILLED",
	Ignored:              "IGNORED",
}

// String implements RteItem::ConditionResultToString (original_source
// libs/rtemodel), kept as a stable lookup table.
func (r Result) String() string {
	if r < 0 || int(r) >= len(resultNames) {
		return "UNDEFINED"
	}
	return resultNames[r]
}

func minResult(a, b Result) Result {
	if a < b {
		return a
	}
	return b
}

func maxResult(a, b Result) Result {
	if a > b {
		return a
	}
	return b
}

func minOf(rs []Result) Result {
	m := rs[0]
	for _, r := range rs[1:] {
		m = minResult(m, r)
	}
	return m
}

func maxOf(rs []Result) Result {
	m := rs[0]
	for _, r := range rs[1:] {
		m = maxResult(m, r)
	}
	return m
}

// combine implements spec §4.2's combining rule. The spec text states the
// accept-overrides-require comparison two different ways ("its max < the
// require/deny min" in the main rule vs. the worked example "if the require
// result is ... < accept... then result = accept"); this implementation
// follows the worked §8.3 examples, which are the binding test oracle: an
// ACCEPT rescues a result only when it is strictly better than the combined
// REQUIRE/DENY result. See DESIGN.md for the full resolution note.
func combine(reqDeny, accept []Result) Result {
	hasReqDeny := len(reqDeny) > 0
	hasAccept := len(accept) > 0
	switch {
	case !hasReqDeny && !hasAccept:
		return Ignored
	case !hasReqDeny:
		return maxOf(accept)
	case !hasAccept:
		return minOf(reqDeny)
	}
	reqDenyMin := minOf(reqDeny)
	acceptMax := maxOf(accept)
	if reqDenyMin < acceptMax {
		return acceptMax
	}
	return reqDenyMin
}
