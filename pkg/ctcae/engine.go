package ctcae

import (
	"fmt"
	"strconv"
)

// Fallback reasons for grade 0 results that do not come from the lab table.
const (
	ReasonInvalidReference = "reference value invalid"
	ReasonOutOfRange       = "out of configured range"
	ReasonUnsupported      = "unsupported method"
)

// Evaluate grades value against def. refs must already have the per-call
// overrides applied. Evaluate never fails: configuration problems surface as
// grade 0 with an explanatory reason.
func Evaluate(def LabDefinition, value float64, refs References, sex Sex) GradeResult {
	switch def.Method {
	case MethodRatioULN:
		return evaluateRatio(def, value, refs)
	case MethodAbsoluteHbVsLLN:
		return evaluateBelowLLN(def, value, refs, HbReference(sex))
	case MethodAbsoluteKVsLLN:
		return evaluateBelowLLN(def, value, refs, RefLLNK)
	default:
		return GradeResult{Grade: 0, Reason: fmt.Sprintf("%s: %q", ReasonUnsupported, def.Method)}
	}
}

func evaluateRatio(def LabDefinition, value float64, refs References) GradeResult {
	key := def.Reference
	uln, ok := refs.Get(key)
	if !ok {
		return invalidReference(key)
	}

	if value <= uln {
		return GradeResult{Grade: 0, Reason: def.NormalReason}
	}

	ratio := value / uln
	if r, ok := firstMatch(def, ratio); ok {
		return r
	}
	return GradeResult{Grade: 0, Reason: fmt.Sprintf("%s (%.2f x ULN)", ReasonOutOfRange, ratio)}
}

func evaluateBelowLLN(def LabDefinition, value float64, refs References, defaultKey string) GradeResult {
	key := def.Reference
	if key == "" {
		key = defaultKey
	}

	lln, ok := refs.Get(key)
	if !ok {
		return invalidReference(key)
	}

	if value >= lln {
		return GradeResult{Grade: 0, Reason: def.NormalReason}
	}

	if r, ok := firstMatch(def, value); ok {
		return r
	}
	return GradeResult{Grade: 0, Reason: fmt.Sprintf("%s (%s)", ReasonOutOfRange, formatNumber(value))}
}

// firstMatch returns the first cutpoint, in declared order, containing x.
func firstMatch(def LabDefinition, x float64) (GradeResult, bool) {
	for _, cp := range def.Cutpoints {
		if def.Interval.Contains(x, cp.Min, cp.Max) {
			return GradeResult{Grade: cp.Grade, Reason: cp.Reason}, true
		}
	}
	return GradeResult{}, false
}

func invalidReference(key string) GradeResult {
	if key == "" {
		key = "unset"
	}
	return GradeResult{Grade: 0, Reason: fmt.Sprintf("%s (%s)", ReasonInvalidReference, key)}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
