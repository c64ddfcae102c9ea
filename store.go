package statsig

import (
	"sync"
	"sync/atomic"
)

// catalogSnapshot is the immutable set of specs returned by one successful
// downloadSpecs response. layerConfigs is carried but never consulted by
// the evaluator; layer evaluation semantics are not defined by the control
// plane documentation available to this SDK.
type catalogSnapshot struct {
	gates          map[string]Spec
	dynamicConfigs map[string]Spec
	layerConfigs   map[string]Spec
	lastUpdateTime int64
}

func emptySnapshot() *catalogSnapshot {
	return &catalogSnapshot{
		gates:          map[string]Spec{},
		dynamicConfigs: map[string]Spec{},
		layerConfigs:   map[string]Spec{},
	}
}

// specStore is a lock-free reader / atomic-writer catalog. replaceAll swaps
// the entire snapshot pointer; a reader observes either the whole old
// catalog or the whole new one, never a torn mix, and never blocks a writer
// or another reader.
type specStore struct {
	snapshot atomic.Pointer[catalogSnapshot]

	initOnce sync.Once
	initTime int64
}

func newSpecStore() *specStore {
	s := &specStore{}
	s.snapshot.Store(emptySnapshot())
	return s
}

func (s *specStore) current() *catalogSnapshot {
	return s.snapshot.Load()
}

func (s *specStore) getGate(name string) (Spec, bool) {
	spec, ok := s.current().gates[name]
	return spec, ok
}

func (s *specStore) getConfig(name string) (Spec, bool) {
	spec, ok := s.current().dynamicConfigs[name]
	return spec, ok
}

func (s *specStore) replaceAll(next *catalogSnapshot) {
	s.initOnce.Do(func() { s.initTime = getUnixMilli() })
	s.snapshot.Store(next)
}

func (s *specStore) lastUpdateTime() int64 {
	return s.current().lastUpdateTime
}

// initialized reports whether the current snapshot carries a non-zero
// lastUpdateTime; before the first successful downloadSpecs, evaluations are
// against an empty catalog.
func (s *specStore) initialized() bool {
	return s.current().lastUpdateTime != 0
}

// downloadSpecsResponse is the wire shape returned by the CDN/control-plane
// catalog endpoint. Top-level fields are snake_case; Spec internals are
// camelCase (see Spec's own json tags).
type downloadSpecsResponse struct {
	FeatureGates   []Spec `json:"feature_gates"`
	DynamicConfigs []Spec `json:"dynamic_configs"`
	LayerConfigs   []Spec `json:"layer_configs"`
	HasUpdates     bool   `json:"has_updates"`
	Time           int64  `json:"time"`
}

func snapshotFromResponse(resp *downloadSpecsResponse) *catalogSnapshot {
	snap := emptySnapshot()
	for _, spec := range resp.FeatureGates {
		snap.gates[spec.Name] = spec
	}
	for _, spec := range resp.DynamicConfigs {
		snap.dynamicConfigs[spec.Name] = spec
	}
	for _, spec := range resp.LayerConfigs {
		snap.layerConfigs[spec.Name] = spec
	}
	snap.lastUpdateTime = resp.Time
	return snap
}
