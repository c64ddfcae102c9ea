package statsig

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTransport struct {
	mu               sync.Mutex
	downloadResponse *downloadSpecsResponse
	downloadErr      error
	gateResult       serverGateResult
	configResult     serverConfigResult
	loggedBatches    [][]ExposureEvent
	customBatches    [][]ExposureEvent
}

func (f *fakeTransport) DownloadSpecs(ctx context.Context, sinceTime int64) (*downloadSpecsResponse, bool, error) {
	if f.downloadErr != nil {
		return nil, false, f.downloadErr
	}
	resp := f.downloadResponse
	if resp == nil {
		resp = &downloadSpecsResponse{}
	}
	return resp, true, nil
}

func (f *fakeTransport) CheckGate(ctx context.Context, user User, gateName string) (serverGateResult, error) {
	return f.gateResult, nil
}

func (f *fakeTransport) GetConfig(ctx context.Context, user User, configName string) (serverConfigResult, error) {
	return f.configResult, nil
}

func (f *fakeTransport) LogEvents(ctx context.Context, events []ExposureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loggedBatches = append(f.loggedBatches, events)
	return nil
}

func (f *fakeTransport) LogCustomExposure(ctx context.Context, events []ExposureEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customBatches = append(f.customBatches, events)
	return nil
}

func newTestClient(t *testing.T, transport Transport, gates ...Spec) *Client {
	t.Helper()
	store := newSpecStore()
	snap := emptySnapshot()
	for _, g := range gates {
		snap.gates[g.Name] = g
	}
	store.replaceAll(snap)

	options := &Options{DisableCache: false}
	options.applyDefaults()
	log := &outputLogger{}

	return &Client{
		apiKey:      "secret-test",
		options:     options,
		transport:   transport,
		store:       store,
		evaluator:   newEvaluator(store),
		queue:       newExposureQueue(transport, log, options.ExposureQueueThreshold),
		logger:      log,
		stopRefresh: make(chan struct{}),
		stopFlush:   make(chan struct{}),
	}
}

func TestCheckGateRejectsEmptyUserID(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	_, err := c.CheckGate(context.Background(), User{}, "G")
	require.Error(t, err)
	var invalidArg *InvalidArgumentError
	assert.ErrorAs(t, err, &invalidArg)
}

func TestCheckGateLocalEvaluationEnqueuesExposure(t *testing.T) {
	gate := Spec{
		Name:    "G",
		Enabled: true,
		Rules: []Rule{
			{ID: "r1", PassPercentage: 100, Conditions: []Condition{{Type: ConditionPublic}}},
		},
	}
	c := newTestClient(t, &fakeTransport{}, gate)

	pass, err := c.CheckGate(context.Background(), User{UserID: "u1"}, "G")
	require.NoError(t, err)
	assert.True(t, pass)

	c.queue.mu.Lock()
	n := len(c.queue.events)
	c.queue.mu.Unlock()
	assert.Equal(t, 1, n)
}

func TestCheckGateServerFallbackSkipsLocalExposure(t *testing.T) {
	gate := Spec{
		Name:    "G",
		Enabled: true,
		Rules: []Rule{
			{ID: "r1", PassPercentage: 100, Conditions: []Condition{{Type: ConditionIPBased}}},
		},
	}
	ft := &fakeTransport{gateResult: serverGateResult{Name: "G", Value: true}}
	c := newTestClient(t, ft, gate)

	pass, err := c.CheckGate(context.Background(), User{UserID: "u1"}, "G")
	require.NoError(t, err)
	assert.True(t, pass)

	c.queue.mu.Lock()
	n := len(c.queue.events)
	c.queue.mu.Unlock()
	assert.Equal(t, 0, n, "server fallback must not record a local exposure")
}

func TestCheckGateCacheDisabledDelegatesToTransport(t *testing.T) {
	ft := &fakeTransport{gateResult: serverGateResult{Name: "G", Value: true}}
	c := newTestClient(t, ft)
	c.options.DisableCache = true

	pass, err := c.CheckGate(context.Background(), User{UserID: "u1"}, "G")
	require.NoError(t, err)
	assert.True(t, pass)
}

func TestGetConfigReturnsEnvelopeAndGetDynamicConfigReturnsBareValue(t *testing.T) {
	cfg := Spec{
		Name:         "cfg",
		Type:         specTypeDynamicConfig,
		Enabled:      true,
		DefaultValue: map[string]interface{}{},
		Rules: []Rule{
			{ID: "r1", PassPercentage: 100, ReturnValue: map[string]interface{}{"color": "red"},
				Conditions: []Condition{{Type: ConditionPublic}}},
		},
	}
	c := newTestClient(t, &fakeTransport{}, cfg)

	envelope, err := c.GetConfig(context.Background(), User{UserID: "u1"}, "cfg")
	require.NoError(t, err)
	assert.Equal(t, "cfg", envelope.Name)
	assert.Equal(t, "r1", envelope.RuleID)
	assert.Equal(t, "red", envelope.GetString("color", ""))

	value, err := c.GetDynamicConfig(context.Background(), User{UserID: "u1"}, "cfg")
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"color": "red"}, value)
}

func TestCheckGateRejectsUserWithOnlyCustomIDs(t *testing.T) {
	c := newTestClient(t, &fakeTransport{})
	_, err := c.CheckGate(context.Background(), User{CustomIDs: map[string]string{"stableID": "abc"}}, "G")
	require.Error(t, err)
	var invalidArg *InvalidArgumentError
	assert.ErrorAs(t, err, &invalidArg)
}

func TestGetExperimentLogsViaCustomExposureEndpoint(t *testing.T) {
	cfg := Spec{
		Name:         "exp",
		Type:         specTypeDynamicConfig,
		Enabled:      true,
		DefaultValue: map[string]interface{}{},
		Rules: []Rule{
			{ID: "r1", PassPercentage: 100, ReturnValue: map[string]interface{}{"v": 1.0},
				Conditions: []Condition{{Type: ConditionPublic}}},
		},
	}
	ft := &fakeTransport{}
	c := newTestClient(t, ft, cfg)

	experiment, err := c.GetExperiment(context.Background(), User{UserID: "u1"}, "exp")
	require.NoError(t, err)
	assert.Equal(t, float64(1), experiment.GetNumber("v", 0))

	ft.mu.Lock()
	defer ft.mu.Unlock()
	assert.Len(t, ft.customBatches, 1)
	assert.Empty(t, ft.loggedBatches, "experiment exposures must not go through the batched queue")
}

func TestExposureQueueFlushThresholdTriggersInlineFlush(t *testing.T) {
	ft := &fakeTransport{}
	log := &outputLogger{}
	q := newExposureQueue(ft, log, 5)

	for i := 0; i < 5; i++ {
		over := q.enqueue(ExposureEvent{EventName: "x"})
		if i == 4 {
			assert.True(t, over)
		} else {
			assert.False(t, over)
		}
	}
	q.flush(context.Background())

	ft.mu.Lock()
	defer ft.mu.Unlock()
	require.Len(t, ft.loggedBatches, 1)
	assert.Len(t, ft.loggedBatches[0], 5)
}

func TestShutdownFlushesExactlyOnce(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestClient(t, ft)
	c.queue.enqueue(ExposureEvent{EventName: "x"})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Shutdown()
		}()
	}
	wg.Wait()

	ft.mu.Lock()
	defer ft.mu.Unlock()
	assert.Len(t, ft.loggedBatches, 1)
}

func TestOptionsApplyDefaults(t *testing.T) {
	o := &Options{}
	o.applyDefaults()
	assert.Equal(t, 20*time.Second, o.ConfigSyncInterval)
	assert.Equal(t, 60*time.Second, o.FlushInterval)
	assert.Equal(t, 950, o.ExposureQueueThreshold)
	assert.NotEmpty(t, o.APIUrl)
}
