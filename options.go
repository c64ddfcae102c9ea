package statsig

import "time"

const (
	defaultAPI           = "https://statsigapi.net/v1"
	defaultCdnURL        = "https://api.statsigcdn.com/v1"
	defaultEventsURL     = "https://events.statsigapi.net/v1"
	defaultSyncInterval  = 20 * time.Second
	defaultFlushInterval = 60 * time.Second
)

// Options configures a Client. Zero-valued fields are populated with
// defaults by NewClientWithOptions.
type Options struct {
	APIUrl                 string
	CdnUrl                 string
	EventsUrl              string
	DisableCache           bool
	ConfigSyncInterval     time.Duration
	FlushInterval          time.Duration
	ExposureQueueThreshold int
	OutputLoggerOptions    OutputLoggerOptions
}

func (o *Options) applyDefaults() {
	o.APIUrl = defaultString(o.APIUrl, defaultAPI)
	o.CdnUrl = defaultString(o.CdnUrl, defaultCdnURL)
	o.EventsUrl = defaultString(o.EventsUrl, defaultEventsURL)
	o.ConfigSyncInterval = defaultDuration(o.ConfigSyncInterval, defaultSyncInterval)
	o.FlushInterval = defaultDuration(o.FlushInterval, defaultFlushInterval)
	o.ExposureQueueThreshold = defaultInt(o.ExposureQueueThreshold, defaultExposureQueueThreshold)
}
