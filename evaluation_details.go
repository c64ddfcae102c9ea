package statsig

// EvaluationSource reports which layer produced an EvalResult.
type EvaluationSource string

const (
	SourceUninitialized      EvaluationSource = "Uninitialized"
	SourceNetwork            EvaluationSource = "Network"
	SourceNetworkNotModified EvaluationSource = "NetworkNotModified"
	SourceBootstrap          EvaluationSource = "Bootstrap"
)

// EvaluationDetails is attached, purely for observability, to every
// EvalResult that checkGate/getConfig return on the local-evaluation path
// (not to server-fallback results); it participates in no invariant.
type EvaluationDetails struct {
	Source         EvaluationSource
	ConfigSyncTime int64
	InitTime       int64
	ServerTime     int64
}

func newEvaluationDetails(source EvaluationSource, configSyncTime, initTime int64) *EvaluationDetails {
	return &EvaluationDetails{
		Source:         source,
		ConfigSyncTime: configSyncTime,
		InitTime:       initTime,
		ServerTime:     getUnixMilli(),
	}
}
