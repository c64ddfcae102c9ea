package statsig

import (
	"strconv"
	"strings"
	"time"
)

const maxPassGateDepth = 20

// evaluator is the condition/operator interpreter. It holds no mutable
// state of its own beyond the store reference: evalSpec/evalRule/
// evalCondition are fully synchronous and safe for concurrent use.
type evaluator struct {
	store *specStore
}

func newEvaluator(store *specStore) *evaluator {
	return &evaluator{store: store}
}

// checkGate resolves gateName against the current catalog and evaluates it.
// An unrecognized gate name is a clean fail, never a server fallback.
func (e *evaluator) checkGate(user User, gateName string) EvalResult {
	spec, ok := e.store.getGate(gateName)
	if !ok {
		return EvalResult{Pass: false, ID: ruleIDDefault, EvaluationDetails: e.evaluationDetails()}
	}
	result := e.evalSpec(user, spec, 0)
	if !result.FetchFromServer {
		result.EvaluationDetails = e.evaluationDetails()
	}
	return result
}

func (e *evaluator) getConfig(user User, configName string) (EvalResult, bool) {
	spec, ok := e.store.getConfig(configName)
	if !ok {
		return EvalResult{Pass: false, ID: ruleIDDefault, EvaluationDetails: e.evaluationDetails()}, false
	}
	result := e.evalSpec(user, spec, 0)
	if !result.FetchFromServer {
		result.EvaluationDetails = e.evaluationDetails()
	}
	return result, true
}

// evaluationDetails reports whether the store has ever been populated: an
// evaluation against an empty, never-refreshed catalog is Uninitialized,
// otherwise Network (this system has no bootstrap/data-adapter source).
func (e *evaluator) evaluationDetails() *EvaluationDetails {
	if !e.store.initialized() {
		return newEvaluationDetails(SourceUninitialized, 0, 0)
	}
	return newEvaluationDetails(SourceNetwork, e.store.lastUpdateTime(), e.store.initTime)
}

// evalSpec implements spec.md §4.4's evalSpec. depth guards against a
// malformed (cyclic) catalog; the catalog is assumed acyclic and depth is a
// defensive backstop only, not a documented contract.
func (e *evaluator) evalSpec(user User, spec Spec, depth int) EvalResult {
	if !spec.Enabled {
		return EvalResult{
			Pass:        false,
			ID:          ruleIDDisabled,
			RuleID:      ruleIDDisabled,
			ConfigValue: coerceDefault(spec),
		}
	}

	var accumulated []SecondaryExposure
	for _, rule := range spec.Rules {
		ruleResult := e.evalRule(user, rule, spec, depth)
		if ruleResult.FetchFromServer {
			return EvalResult{FetchFromServer: true}
		}
		accumulated = append(accumulated, ruleResult.SecondaryExposures...)

		if !ruleResult.Pass {
			continue
		}

		if passesPercentage(bucketHash(spec, rule, user), rule.PassPercentage) {
			if spec.Type == specTypeUnknown {
				return EvalResult{FetchFromServer: true}
			}
			return EvalResult{
				Pass:               true,
				ID:                 rule.ID,
				RuleID:             rule.ID,
				Group:              rule.Name,
				GroupName:          rule.GroupName,
				ConfigValue:        coerceRuleValue(spec, rule),
				SecondaryExposures: accumulated,
			}
		}
		return EvalResult{
			Pass:               false,
			ID:                 rule.ID,
			RuleID:             ruleIDDefault,
			Group:              ruleIDDefault,
			GroupName:          ruleIDDefault,
			ConfigValue:        coerceDefault(spec),
			SecondaryExposures: accumulated,
		}
	}

	return EvalResult{
		Pass:               false,
		ID:                 ruleIDDefault,
		ConfigValue:        coerceDefault(spec),
		SecondaryExposures: accumulated,
	}
}

func coerceDefault(spec Spec) interface{} {
	if spec.Type == specTypeDynamicConfig {
		return spec.DefaultValue
	}
	return nil
}

func coerceRuleValue(spec Spec, rule Rule) interface{} {
	if spec.Type == specTypeDynamicConfig {
		return rule.ReturnValue
	}
	return nil
}

// bucketHash computes the bucket input string from spec.md §4.1:
// "{specSalt}.{ruleSalt or ruleId}.{user.unitId(rule.idType)}".
func bucketHash(spec Spec, rule Rule, user User) uint64 {
	input := spec.Salt + "." + rule.bucketSalt() + "." + user.unitID(rule.IDType)
	return hash64(input)
}

// ruleEvalResult is evalRule's private return shape; it never escapes the
// evaluator package boundary the way EvalResult does.
type ruleEvalResult struct {
	Pass               bool
	FetchFromServer    bool
	SecondaryExposures []SecondaryExposure
}

// evalRule evaluates every condition without short-circuiting: exposures
// from passGate/failGate sub-evaluations must be collected even when an
// earlier condition already failed.
func (e *evaluator) evalRule(user User, rule Rule, spec Spec, depth int) ruleEvalResult {
	pass := true
	fetchFromServer := false
	var exposures []SecondaryExposure

	for _, cond := range rule.Conditions {
		condResult := e.evalCondition(user, cond, spec, depth)
		if condResult.FetchFromServer {
			fetchFromServer = true
		}
		if !condResult.Pass {
			pass = false
		}
		exposures = append(exposures, condResult.SecondaryExposures...)
	}

	return ruleEvalResult{Pass: pass, FetchFromServer: fetchFromServer, SecondaryExposures: exposures}
}

type conditionEvalResult struct {
	Pass               bool
	FetchFromServer    bool
	SecondaryExposures []SecondaryExposure
}

func fetchFromServerResult() conditionEvalResult {
	return conditionEvalResult{FetchFromServer: true}
}

// evalCondition implements the condition/operator tables of spec.md §4.2.
func (e *evaluator) evalCondition(user User, cond Condition, spec Spec, depth int) conditionEvalResult {
	switch cond.Type {
	case ConditionPublic:
		return conditionEvalResult{Pass: true}

	case ConditionPassGate, ConditionFailGate:
		return e.evalGateCondition(user, cond, depth)

	case ConditionUserField:
		val, ok := user.getField(cond.Field)
		if !ok {
			return e.evalOperator(cond.Operator, nil, cond.TargetValue)
		}
		return e.evalOperator(cond.Operator, val, cond.TargetValue)

	case ConditionEnvironmentField:
		val, ok := user.getEnvironmentField(cond.Field)
		if !ok {
			return e.evalOperator(cond.Operator, nil, cond.TargetValue)
		}
		return e.evalOperator(cond.Operator, val, cond.TargetValue)

	case ConditionCurrentTime:
		return e.evalOperator(cond.Operator, now().Unix(), cond.TargetValue)

	case ConditionUserBucket:
		input := cond.salt() + "." + user.unitID(cond.IDType)
		h := hash64(input) % 1000
		return e.evalOperator(cond.Operator, float64(h), cond.TargetValue)

	case ConditionUnitID:
		return e.evalOperator(cond.Operator, user.unitID(cond.IDType), cond.TargetValue)

	case ConditionIPBased, ConditionUABased:
		return fetchFromServerResult()

	default:
		return fetchFromServerResult()
	}
}

// evalGateCondition implements passGate/failGate recursion: a missing
// target gate is a clean fail (never server fallback), a sub-result
// requesting fallback propagates, and otherwise a synthesized exposure is
// appended after the sub-result's own secondary exposures.
func (e *evaluator) evalGateCondition(user User, cond Condition, depth int) conditionEvalResult {
	targetName := toStringValue(cond.TargetValue)

	var sub EvalResult
	if depth >= maxPassGateDepth {
		sub = EvalResult{Pass: false, ID: ruleIDDefault}
	} else if spec, ok := e.store.getGate(targetName); ok {
		sub = e.evalSpec(user, spec, depth+1)
	} else {
		sub = EvalResult{Pass: false, ID: ruleIDDefault}
	}

	if sub.FetchFromServer {
		return fetchFromServerResult()
	}

	exposures := append([]SecondaryExposure{}, sub.SecondaryExposures...)
	exposures = append(exposures, SecondaryExposure{
		Gate:      targetName,
		GateValue: strconv.FormatBool(sub.Pass),
		RuleID:    sub.ID,
	})

	pass := sub.Pass
	if cond.Type == ConditionFailGate {
		pass = !sub.Pass
	}

	return conditionEvalResult{Pass: pass, SecondaryExposures: exposures}
}

// evalOperator implements the operator table of spec.md §4.2.
func (e *evaluator) evalOperator(op Operator, value interface{}, target interface{}) conditionEvalResult {
	switch op {
	case OpGt, OpGte, OpLt, OpLte:
		return numericCompare(op, value, target)

	case OpVersionGt, OpVersionGte, OpVersionLt, OpVersionLte, OpVersionEq, OpVersionNeq:
		return versionCompare(op, value, target)

	case OpAny, OpNone, OpAnyCaseSensitive, OpNoneCaseSensitive:
		return arrayMembership(op, value, target)

	case OpEq:
		return conditionEvalResult{Pass: eqCompare(value, target)}
	case OpNeq:
		return conditionEvalResult{Pass: !eqCompare(value, target)}

	case OpBefore:
		return conditionEvalResult{Pass: toEpochSeconds(value) < toEpochSeconds(target)}
	case OpAfter:
		return conditionEvalResult{Pass: toEpochSeconds(value) > toEpochSeconds(target)}
	case OpOn:
		return conditionEvalResult{Pass: sameUTCDate(toEpochSeconds(value), toEpochSeconds(target))}

	case OpStrStartsWithAny, OpStrEndsWithAny, OpStrContainsAny, OpStrContainsNone,
		OpStrMatches, OpInSegmentList, OpNotInSegmentList:
		return fetchFromServerResult()

	default:
		return fetchFromServerResult()
	}
}

func numericCompare(op Operator, value, target interface{}) conditionEvalResult {
	v, vOk := toNumber(value)
	t, tOk := toNumber(target)
	if !vOk || !tOk {
		return conditionEvalResult{Pass: false}
	}
	switch op {
	case OpGt:
		return conditionEvalResult{Pass: v > t}
	case OpGte:
		return conditionEvalResult{Pass: v >= t}
	case OpLt:
		return conditionEvalResult{Pass: v < t}
	default: // OpLte
		return conditionEvalResult{Pass: v <= t}
	}
}

// versionParts strips everything from the first '-' inclusive, then splits
// on '.'. Non-numeric components parse to 0.
func versionParts(v string) []int {
	if idx := strings.IndexByte(v, '-'); idx >= 0 {
		v = v[:idx]
	}
	parts := strings.Split(v, ".")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out[i] = n
	}
	return out
}

func versionCompare(op Operator, value, target interface{}) conditionEvalResult {
	a := versionParts(toStringValue(value))
	b := versionParts(toStringValue(target))
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	cmp := 0
	for i := 0; i < n; i++ {
		var av, bv int
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			if av < bv {
				cmp = -1
			} else {
				cmp = 1
			}
			break
		}
	}
	switch op {
	case OpVersionGt:
		return conditionEvalResult{Pass: cmp > 0}
	case OpVersionGte:
		return conditionEvalResult{Pass: cmp >= 0}
	case OpVersionLt:
		return conditionEvalResult{Pass: cmp < 0}
	case OpVersionLte:
		return conditionEvalResult{Pass: cmp <= 0}
	case OpVersionEq:
		return conditionEvalResult{Pass: cmp == 0}
	default: // OpVersionNeq
		return conditionEvalResult{Pass: cmp != 0}
	}
}

func arrayMembership(op Operator, value, target interface{}) conditionEvalResult {
	items, ok := target.([]interface{})
	if !ok {
		// spec.md §4.2: none is vacuously true when target is not an array.
		return conditionEvalResult{Pass: op == OpNone || op == OpNoneCaseSensitive}
	}

	caseSensitive := op == OpAnyCaseSensitive || op == OpNoneCaseSensitive
	valStr := toStringValue(value)
	if !caseSensitive {
		valStr = strings.ToLower(valStr)
	}

	matched := false
	for _, item := range items {
		itemStr := toStringValue(item)
		if !caseSensitive {
			itemStr = strings.ToLower(itemStr)
		}
		if itemStr == valStr {
			matched = true
			break
		}
	}

	switch op {
	case OpAny, OpAnyCaseSensitive:
		return conditionEvalResult{Pass: matched}
	default: // OpNone, OpNoneCaseSensitive
		return conditionEvalResult{Pass: !matched}
	}
}

// eqCompare implements spec.md §4.2's eq: a string target compares exactly
// against the raw value; an absent/non-string target passes iff value is
// nil or the empty string.
func eqCompare(value, target interface{}) bool {
	if targetStr, ok := target.(string); ok {
		valueStr, ok := value.(string)
		return ok && valueStr == targetStr
	}
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}

func sameUTCDate(a, b int64) bool {
	ta := time.Unix(a, 0).UTC()
	tb := time.Unix(b, 0).UTC()
	ay, am, ad := ta.Date()
	by, bm, bd := tb.Date()
	return ay == by && am == bm && ad == bd
}
