package statsig

import (
	"context"
	"strconv"
	"sync"
)

const (
	gateExposureEvent   = "statsig::gate_exposure"
	configExposureEvent = "statsig::config_exposure"

	// defaultExposureQueueThreshold is the soft trigger for an inline flush;
	// it is not a hard bound and producers are never blocked by it.
	defaultExposureQueueThreshold = 950
)

// ExposureEvent is the wire shape logged to /log_event and
// /log_custom_exposure.
type ExposureEvent struct {
	EventName string            `json:"eventName"`
	Value     string            `json:"value,omitempty"`
	Time      string            `json:"time"`
	User      User              `json:"user"`
	Metadata  map[string]string `json:"metadata"`
}

func newGateExposure(user User, gateName string, result EvalResult) ExposureEvent {
	value := strconv.FormatBool(result.Pass)
	return ExposureEvent{
		EventName: gateExposureEvent,
		Value:     value,
		Time:      strconv.FormatInt(getUnixMilli()/1000, 10),
		User:      user.sanitizedForLogging(),
		Metadata: map[string]string{
			"gate":      gateName,
			"gateValue": value,
			"ruleID":    result.ID,
		},
	}
}

func newConfigExposure(user User, configName string, result EvalResult) ExposureEvent {
	return ExposureEvent{
		EventName: configExposureEvent,
		Time:      strconv.FormatInt(getUnixMilli()/1000, 10),
		User:      user.sanitizedForLogging(),
		Metadata: map[string]string{
			"config": configName,
			"ruleID": result.ID,
		},
	}
}

// exposureQueue is a mutex-guarded list with a single drain point.
// Producers append under the lock; the flusher swaps the slice out in one
// critical section and performs I/O outside the lock, so a flush never
// blocks a producer and a producer never blocks on network I/O.
type exposureQueue struct {
	mu        sync.Mutex
	events    []ExposureEvent
	transport Transport
	logger    *outputLogger
	flushing  sync.Mutex
	threshold int
}

func newExposureQueue(transport Transport, logger *outputLogger, threshold int) *exposureQueue {
	return &exposureQueue{
		transport: transport,
		logger:    logger,
		threshold: defaultInt(threshold, defaultExposureQueueThreshold),
	}
}

// enqueue appends evt and reports whether the soft threshold was crossed,
// so the caller can trigger an inline flush without holding any lock.
func (q *exposureQueue) enqueue(evt ExposureEvent) (overThreshold bool) {
	q.mu.Lock()
	q.events = append(q.events, evt)
	overThreshold = len(q.events) >= q.threshold
	q.mu.Unlock()
	return overThreshold
}

func (q *exposureQueue) drain() []ExposureEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.events) == 0 {
		return nil
	}
	drained := q.events
	q.events = nil
	return drained
}

// flush drains the queue and ships the batch. At most one flush is ever in
// flight: a second concurrent call (timer racing the threshold trigger)
// returns immediately rather than blocking. Events enqueued after the
// in-flight call's drain stay queued until the next flush.
func (q *exposureQueue) flush(ctx context.Context) {
	if !q.flushing.TryLock() {
		return
	}
	defer q.flushing.Unlock()

	batch := q.drain()
	if len(batch) == 0 {
		return
	}
	if err := q.transport.LogEvents(ctx, batch); err != nil {
		q.logger.logError("failed to flush %d exposure events: %s", len(batch), err)
	}
}
