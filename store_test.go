package statsig

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecStoreGetGateMissing(t *testing.T) {
	store := newSpecStore()
	_, ok := store.getGate("nope")
	assert.False(t, ok)
}

func TestSpecStoreReplaceAllIsVisibleToReaders(t *testing.T) {
	store := newSpecStore()
	snap := emptySnapshot()
	snap.gates["g1"] = Spec{Name: "g1", Enabled: true}
	snap.lastUpdateTime = 42

	store.replaceAll(snap)

	spec, ok := store.getGate("g1")
	require.True(t, ok)
	assert.Equal(t, "g1", spec.Name)
	assert.Equal(t, int64(42), store.lastUpdateTime())
}

// TestSpecStoreAtomicSwap exercises the invariant from spec.md §8: a
// concurrent reader never observes a torn mix of two snapshots. Every read
// during the race must belong entirely to one of the two known snapshots.
func TestSpecStoreAtomicSwap(t *testing.T) {
	store := newSpecStore()

	snapA := emptySnapshot()
	snapA.gates["g"] = Spec{Name: "g", Salt: "A"}
	snapB := emptySnapshot()
	snapB.gates["g"] = Spec{Name: "g", Salt: "B"}
	store.replaceAll(snapA)

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				spec, ok := store.getGate("g")
				if ok && spec.Salt != "A" && spec.Salt != "B" {
					t.Errorf("observed torn snapshot: salt=%q", spec.Salt)
				}
			}
		}
	}()

	for i := 0; i < 1000; i++ {
		if i%2 == 0 {
			store.replaceAll(snapA)
		} else {
			store.replaceAll(snapB)
		}
	}
	close(stop)
	wg.Wait()
}

func TestSnapshotFromResponse(t *testing.T) {
	resp := &downloadSpecsResponse{
		FeatureGates:   []Spec{{Name: "g1"}},
		DynamicConfigs: []Spec{{Name: "c1"}},
		LayerConfigs:   []Spec{{Name: "l1"}},
		HasUpdates:     true,
		Time:           100,
	}
	snap := snapshotFromResponse(resp)
	assert.Contains(t, snap.gates, "g1")
	assert.Contains(t, snap.dynamicConfigs, "c1")
	assert.Contains(t, snap.layerConfigs, "l1")
	assert.Equal(t, int64(100), snap.lastUpdateTime)
}
