package statsig

// SpecType distinguishes the three catalog kinds. A Spec of type
// specTypeUnknown forces fetchFromServer on any match.
type SpecType string

const (
	specTypeFeatureGate   SpecType = "feature_gate"
	specTypeDynamicConfig SpecType = "dynamic_config"
	specTypeUnknown       SpecType = "unknown"
)

// Spec is a gate or dynamic config definition as downloaded from the
// control plane. Names are unique within their kind.
type Spec struct {
	Name         string      `json:"name"`
	Type         SpecType    `json:"type"`
	Salt         string      `json:"salt"`
	Enabled      bool        `json:"enabled"`
	DefaultValue interface{} `json:"defaultValue"`
	IDType       string      `json:"idType"`
	Rules        []Rule      `json:"rules"`
}

// Rule is one ordered clause of a Spec. The first rule whose conditions all
// pass decides the result: it passes if its bucket lands under
// PassPercentage and fails otherwise; later rules are not evaluated.
type Rule struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	GroupName      string      `json:"groupName,omitempty"`
	Salt           string      `json:"salt,omitempty"`
	PassPercentage float64     `json:"passPercentage"`
	IDType         string      `json:"idType"`
	ReturnValue    interface{} `json:"returnValue"`
	Conditions     []Condition `json:"conditions"`
}

// bucketSalt is the rule salt used in the bucket hash input: the rule's own
// Salt if set, else its ID.
func (r Rule) bucketSalt() string {
	if r.Salt != "" {
		return r.Salt
	}
	return r.ID
}

// ConditionType enumerates the recognized condition kinds (spec.md §4.2).
type ConditionType string

const (
	ConditionPublic           ConditionType = "public"
	ConditionPassGate         ConditionType = "pass_gate"
	ConditionFailGate         ConditionType = "fail_gate"
	ConditionUserField        ConditionType = "user_field"
	ConditionEnvironmentField ConditionType = "environment_field"
	ConditionCurrentTime      ConditionType = "current_time"
	ConditionUserBucket       ConditionType = "user_bucket"
	ConditionUnitID           ConditionType = "unit_id"
	ConditionIPBased          ConditionType = "ip_based"
	ConditionUABased          ConditionType = "ua_based"
)

// Operator enumerates the recognized comparison operators (spec.md §4.2).
type Operator string

const (
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"

	OpVersionGt  Operator = "version_gt"
	OpVersionGte Operator = "version_gte"
	OpVersionLt  Operator = "version_lt"
	OpVersionLte Operator = "version_lte"
	OpVersionEq  Operator = "version_eq"
	OpVersionNeq Operator = "version_neq"

	OpAny               Operator = "any"
	OpNone              Operator = "none"
	OpAnyCaseSensitive  Operator = "any_case_sensitive"
	OpNoneCaseSensitive Operator = "none_case_sensitive"

	OpEq  Operator = "eq"
	OpNeq Operator = "neq"

	OpBefore Operator = "before"
	OpAfter  Operator = "after"
	OpOn     Operator = "on"

	// Forced server-fallback operators: these are recognized only so they
	// can be routed to fetchFromServer rather than treated as "unknown".
	OpStrStartsWithAny Operator = "str_starts_with_any"
	OpStrEndsWithAny   Operator = "str_ends_with_any"
	OpStrContainsAny   Operator = "str_contains_any"
	OpStrContainsNone  Operator = "str_contains_none"
	OpStrMatches       Operator = "str_matches"
	OpInSegmentList    Operator = "in_segment_list"
	OpNotInSegmentList Operator = "not_in_segment_list"
)

// Condition is one clause of a Rule's implicit AND.
type Condition struct {
	Type             ConditionType          `json:"type"`
	Operator         Operator               `json:"operator,omitempty"`
	Field            string                 `json:"field,omitempty"`
	TargetValue      interface{}            `json:"targetValue,omitempty"`
	IDType           string                 `json:"idType,omitempty"`
	AdditionalValues map[string]interface{} `json:"additionalValues,omitempty"`
}

func (c Condition) salt() string {
	if v, ok := c.AdditionalValues["salt"]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// SecondaryExposure records a gate evaluated as a sub-condition of another
// evaluation, in traversal order.
type SecondaryExposure struct {
	Gate      string `json:"gate"`
	GateValue string `json:"gateValue"`
	RuleID    string `json:"ruleID"`
}

// EvalResult is the outcome of evalSpec. If FetchFromServer is true every
// other field is unspecified and must be ignored by callers.
type EvalResult struct {
	Pass               bool
	FetchFromServer    bool
	ID                 string
	RuleID             string
	Group              string
	GroupName          string
	ConfigValue        interface{}
	SecondaryExposures []SecondaryExposure
	EvaluationDetails  *EvaluationDetails
}

const (
	ruleIDDisabled = "disabled"
	ruleIDDefault  = "default"
)
