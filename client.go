package statsig

import (
	"context"
	"sync"
	"time"
)

// DynamicConfig is the typed accessor returned by GetConfig/GetExperiment.
type DynamicConfig struct {
	Name      string
	Value     map[string]interface{}
	RuleID    string
	Group     string
	GroupName string
}

func newDynamicConfig(name string, value interface{}, ruleID, group, groupName string) DynamicConfig {
	asMap, _ := value.(map[string]interface{})
	if asMap == nil {
		asMap = map[string]interface{}{}
	}
	return DynamicConfig{Name: name, Value: asMap, RuleID: ruleID, Group: group, GroupName: groupName}
}

func (d DynamicConfig) GetString(key, fallback string) string {
	if v, ok := d.Value[key].(string); ok {
		return v
	}
	return fallback
}

func (d DynamicConfig) GetNumber(key string, fallback float64) float64 {
	if v, ok := d.Value[key].(float64); ok {
		return v
	}
	return fallback
}

func (d DynamicConfig) GetBool(key string, fallback bool) bool {
	if v, ok := d.Value[key].(bool); ok {
		return v
	}
	return fallback
}

func (d DynamicConfig) GetSlice(key string, fallback []interface{}) []interface{} {
	if v, ok := d.Value[key].([]interface{}); ok {
		return v
	}
	return fallback
}

func (d DynamicConfig) GetMap(key string, fallback map[string]interface{}) map[string]interface{} {
	if v, ok := d.Value[key].(map[string]interface{}); ok {
		return v
	}
	return fallback
}

// Experiment additionally surfaces the secondary exposures collected while
// evaluating the experiment, for callers who need to propagate them.
type Experiment struct {
	DynamicConfig
	SecondaryExposures []SecondaryExposure
}

// Client is the SDK's lifecycle owner: it wires the transport, evaluator,
// and exposure queue together, and runs the background refresh and flush
// loops. Using any method after Shutdown has been called is undefined.
type Client struct {
	apiKey    string
	options   *Options
	transport Transport
	store     *specStore
	evaluator *evaluator
	queue     *exposureQueue
	logger    *outputLogger

	mu           sync.Mutex
	shutdown     bool
	stopRefresh  chan struct{}
	stopFlush    chan struct{}
	shutdownOnce sync.Once
}

// NewClient constructs a Client with default options.
func NewClient(apiKey string) (*Client, error) {
	return NewClientWithOptions(apiKey, &Options{})
}

// NewClientWithOptions constructs a Client, eagerly fetching the initial
// catalog synchronously unless caching is disabled. A failure on that
// initial fetch is fatal and returned to the caller.
func NewClientWithOptions(apiKey string, options *Options) (*Client, error) {
	options.applyDefaults()
	initializeGlobalOutputLogger(options.OutputLoggerOptions)

	transport := newHTTPTransport(apiKey, options)
	store := newSpecStore()
	log := logger()

	c := &Client{
		apiKey:      apiKey,
		options:     options,
		transport:   transport,
		store:       store,
		evaluator:   newEvaluator(store),
		queue:       newExposureQueue(transport, log, options.ExposureQueueThreshold),
		logger:      log,
		stopRefresh: make(chan struct{}),
		stopFlush:   make(chan struct{}),
	}

	if options.DisableCache {
		return c, nil
	}

	resp, _, err := transport.DownloadSpecs(context.Background(), 0)
	if err != nil {
		return nil, err
	}
	store.replaceAll(snapshotFromResponse(resp))
	log.debug("initial catalog loaded: %d gates, %d configs", len(resp.FeatureGates), len(resp.DynamicConfigs))

	go c.runRefreshLoop()
	go c.runFlushLoop()

	return c, nil
}

func (c *Client) verifyUser(user User) error {
	if user.UserID == "" {
		return &InvalidArgumentError{Message: "user.UserID must not be empty"}
	}
	return nil
}

// CheckGate evaluates a feature gate for user.
func (c *Client) CheckGate(ctx context.Context, user User, gateName string) (bool, error) {
	if err := c.verifyUser(user); err != nil {
		return false, err
	}

	if c.options.DisableCache {
		result, err := c.transport.CheckGate(ctx, user, gateName)
		if err != nil {
			return false, err
		}
		return result.Value, nil
	}

	result := c.evaluator.checkGate(user, gateName)
	if result.FetchFromServer {
		serverResult, err := c.transport.CheckGate(ctx, user, gateName)
		if err != nil {
			return false, err
		}
		return serverResult.Value, nil
	}

	c.enqueueExposure(newGateExposure(user, gateName, result))
	return result.Pass, nil
}

// GetConfig decodes configValue into a DynamicConfig envelope (value, name,
// group, groupName, ruleID) for a config.
func (c *Client) GetConfig(ctx context.Context, user User, configName string) (DynamicConfig, error) {
	cfg, _, err := c.getConfigImpl(ctx, user, configName, false)
	return cfg, err
}

// GetDynamicConfig returns just the decoded config value, with no envelope.
func (c *Client) GetDynamicConfig(ctx context.Context, user User, configName string) (map[string]interface{}, error) {
	cfg, err := c.GetConfig(ctx, user, configName)
	if err != nil {
		return nil, err
	}
	return cfg.Value, nil
}

// GetExperiment behaves like GetConfig but additionally returns
// secondary exposures and logs via the dedicated log_custom_exposure path
// rather than the batched event queue.
func (c *Client) GetExperiment(ctx context.Context, user User, experimentName string) (Experiment, error) {
	cfg, secondary, err := c.getConfigImpl(ctx, user, experimentName, true)
	return Experiment{DynamicConfig: cfg, SecondaryExposures: secondary}, err
}

func (c *Client) getConfigImpl(ctx context.Context, user User, name string, isExperiment bool) (DynamicConfig, []SecondaryExposure, error) {
	if err := c.verifyUser(user); err != nil {
		return DynamicConfig{}, nil, err
	}

	if c.options.DisableCache {
		result, err := c.transport.GetConfig(ctx, user, name)
		if err != nil {
			return DynamicConfig{}, nil, err
		}
		return newDynamicConfig(name, result.Value, result.RuleID, result.Group, result.GroupName), nil, nil
	}

	result, found := c.evaluator.getConfig(user, name)
	if !found {
		return newDynamicConfig(name, nil, ruleIDDefault, "", ""), nil, nil
	}

	if result.FetchFromServer {
		serverResult, err := c.transport.GetConfig(ctx, user, name)
		if err != nil {
			return DynamicConfig{}, nil, err
		}
		return newDynamicConfig(name, serverResult.Value, serverResult.RuleID, serverResult.Group, serverResult.GroupName), nil, nil
	}

	cfg := newDynamicConfig(name, result.ConfigValue, result.ID, result.Group, result.GroupName)

	if isExperiment {
		c.logCustomExposure(newConfigExposure(user, name, result))
	} else {
		c.enqueueExposure(newConfigExposure(user, name, result))
	}

	return cfg, result.SecondaryExposures, nil
}

// LogEvent passes an arbitrary analytics event straight through to the
// batched exposure queue.
func (c *Client) LogEvent(event ExposureEvent) {
	c.enqueueExposure(event)
}

func (c *Client) enqueueExposure(evt ExposureEvent) {
	if c.queue.enqueue(evt) {
		go c.queue.flush(context.Background())
	}
}

// logCustomExposure is awaited but its failure does not fail the caller's
// get — it is only logged.
func (c *Client) logCustomExposure(evt ExposureEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.transport.LogCustomExposure(ctx, []ExposureEvent{evt}); err != nil {
		c.logger.logError("failed to log custom exposure for %s: %s", evt.Metadata["config"], err)
	}
}

func (c *Client) runRefreshLoop() {
	ticker := time.NewTicker(c.options.ConfigSyncInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopRefresh:
			return
		case <-ticker.C:
			c.refreshOnce()
		}
	}
}

func (c *Client) refreshOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resp, hasUpdates, err := c.transport.DownloadSpecs(ctx, c.store.lastUpdateTime())
	if err != nil {
		c.logger.logError("failed to refresh spec catalog: %s", err)
		return
	}
	if !hasUpdates {
		c.logger.debug("spec catalog refresh: no updates since %d", c.store.lastUpdateTime())
		return
	}
	c.store.replaceAll(snapshotFromResponse(resp))
	c.logger.debug("spec catalog refreshed: %d gates, %d configs", len(resp.FeatureGates), len(resp.DynamicConfigs))
}

func (c *Client) runFlushLoop() {
	ticker := time.NewTicker(c.options.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopFlush:
			return
		case <-ticker.C:
			c.queue.flush(context.Background())
		}
	}
}

// Shutdown flushes the exposure queue exactly once and stops both
// background loops. Calling public operations afterward is undefined.
func (c *Client) Shutdown() {
	c.shutdownOnce.Do(func() {
		c.mu.Lock()
		c.shutdown = true
		c.mu.Unlock()

		if !c.options.DisableCache {
			close(c.stopRefresh)
			close(c.stopFlush)
		}
		c.queue.flush(context.Background())
	})
}
