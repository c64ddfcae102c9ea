package statsig

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	downloadSpecsMaxAttempts = 5
	downloadSpecsTimeout     = 10 * time.Second
)

// serverGateResult and serverConfigResult are the decoded shapes of the
// /check_gate and /get_config server-fallback responses.
type serverGateResult struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

type serverConfigResult struct {
	Name      string                 `json:"name"`
	Value     map[string]interface{} `json:"value"`
	Group     string                 `json:"group"`
	GroupName string                 `json:"group_name"`
	RuleID    string                 `json:"rule_id"`
}

// Transport is the network collaborator the evaluator core depends on. The
// default implementation below uses net/http + encoding/json; it is a
// pluggable seam, not a forced choice.
type Transport interface {
	DownloadSpecs(ctx context.Context, sinceTime int64) (*downloadSpecsResponse, bool, error)
	CheckGate(ctx context.Context, user User, gateName string) (serverGateResult, error)
	GetConfig(ctx context.Context, user User, configName string) (serverConfigResult, error)
	LogEvents(ctx context.Context, events []ExposureEvent) error
	LogCustomExposure(ctx context.Context, events []ExposureEvent) error
}

type logEventInput struct {
	Events          []ExposureEvent `json:"events"`
	StatsigMetadata statsigMetadata `json:"statsigMetadata"`
}

type checkGateInput struct {
	User     User   `json:"user"`
	GateName string `json:"gateName"`
}

type getConfigInput struct {
	User       User   `json:"user"`
	ConfigName string `json:"configName"`
}

type httpTransport struct {
	apiKey    string
	apiURL    string
	cdnURL    string
	eventsURL string
	metadata  statsigMetadata
	client    *http.Client
}

func newHTTPTransport(apiKey string, options *Options) *httpTransport {
	return &httpTransport{
		apiKey:    apiKey,
		apiURL:    options.APIUrl,
		cdnURL:    options.CdnUrl,
		eventsURL: options.EventsUrl,
		metadata:  getStatsigMetadata(),
		client: &http.Client{
			Timeout: requestTimeout(),
			Transport: &http.Transport{
				DialContext:       (&net.Dialer{KeepAlive: 30 * time.Second}).DialContext,
				IdleConnTimeout:   60 * time.Second,
				DisableKeepAlives: false,
			},
		},
	}
}

// requestTimeout reads STATSIG_TIMEOUT_MS once at transport construction,
// falling back to a 3 second default.
func requestTimeout() time.Duration {
	if raw := os.Getenv("STATSIG_TIMEOUT_MS"); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return 3 * time.Second
}

func (t *httpTransport) DownloadSpecs(ctx context.Context, sinceTime int64) (*downloadSpecsResponse, bool, error) {
	url := fmt.Sprintf("%s/download_config_specs/%s.json?sinceTime=%d", t.cdnURL, t.apiKey, sinceTime)

	ctx, cancel := context.WithTimeout(ctx, downloadSpecsTimeout)
	defer cancel()

	var resp downloadSpecsResponse
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Millisecond
	policy.Multiplier = 5
	policy.MaxInterval = 10 * time.Second

	err := backoff.Retry(func() error {
		return t.doRequest(ctx, http.MethodGet, url, nil, &resp)
	}, backoff.WithMaxRetries(backoff.WithContext(policy, ctx), downloadSpecsMaxAttempts-1))

	if err != nil {
		return nil, false, &TransportError{
			RequestMetadata: &RequestMetadata{Endpoint: "download_config_specs", Retries: downloadSpecsMaxAttempts - 1},
			Err:             err,
		}
	}
	return &resp, resp.HasUpdates, nil
}

func (t *httpTransport) CheckGate(ctx context.Context, user User, gateName string) (serverGateResult, error) {
	var result serverGateResult
	url := t.apiURL + "/check_gate"
	body := checkGateInput{User: user, GateName: gateName}
	if err := t.doRequest(ctx, http.MethodPost, url, body, &result); err != nil {
		return result, &TransportError{RequestMetadata: &RequestMetadata{Endpoint: "check_gate"}, Err: err}
	}
	return result, nil
}

func (t *httpTransport) GetConfig(ctx context.Context, user User, configName string) (serverConfigResult, error) {
	var result serverConfigResult
	url := t.apiURL + "/get_config"
	body := getConfigInput{User: user, ConfigName: configName}
	if err := t.doRequest(ctx, http.MethodPost, url, body, &result); err != nil {
		return result, &TransportError{RequestMetadata: &RequestMetadata{Endpoint: "get_config"}, Err: err}
	}
	return result, nil
}

func (t *httpTransport) LogEvents(ctx context.Context, events []ExposureEvent) error {
	return t.logBatch(ctx, events, "/log_event")
}

func (t *httpTransport) LogCustomExposure(ctx context.Context, events []ExposureEvent) error {
	return t.logBatch(ctx, events, "/log_custom_exposure")
}

func (t *httpTransport) logBatch(ctx context.Context, events []ExposureEvent, path string) error {
	url := t.eventsURL + path
	body := logEventInput{Events: events, StatsigMetadata: t.metadata}
	if err := t.doRequest(ctx, http.MethodPost, url, body, nil); err != nil {
		return &TransportError{RequestMetadata: &RequestMetadata{Endpoint: path}, Err: err}
	}
	return nil
}

func (t *httpTransport) doRequest(ctx context.Context, method, url string, in interface{}, out interface{}) error {
	var bodyReader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("STATSIG-API-KEY", t.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("STATSIG-SERVER-SESSION-ID", t.metadata.SessionID)
	req.Header.Set("STATSIG-SDK-TYPE", t.metadata.SDKType)
	req.Header.Set("STATSIG-SDK-VERSION", t.metadata.SDKVersion)

	resp, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Endpoint: url, Err: err}
	}
	return nil
}
