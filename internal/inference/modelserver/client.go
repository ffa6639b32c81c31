// Package modelserver provides a client for the model-serving sidecar that
// hosts the pre-trained ETA and delay artifacts.
package modelserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dishpatch/dishpatch/internal/features"
	"github.com/dishpatch/dishpatch/internal/inference"
	"github.com/dishpatch/dishpatch/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the model server.
	DefaultBaseURL = "http://localhost:8501"

	// EtaEndpointName and DelayEndpointName identify the two model circuits
	// in the resilience registry.
	EtaEndpointName   = "model-eta"
	DelayEndpointName = "model-delay"
)

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientConfig holds configuration for the model server client.
type ClientConfig struct {
	// BaseURL is the model server base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient overrides the HTTP client; if nil, one resilient client is
	// created per model endpoint so a dead classifier cannot trip the ETA
	// circuit.
	HTTPClient HTTPDoer

	// Timeout for individual inference requests (default: 5s).
	Timeout time.Duration

	// Registry receives per-endpoint health; optional.
	Registry *resilience.Registry
}

// Client scores feature records against the model server. It implements both
// inference.EtaPredictor and inference.DelayPredictor.
type Client struct {
	baseURL     string
	etaClient   HTTPDoer
	delayClient HTTPDoer
	registry    *resilience.Registry
}

// NewClient creates a new model server client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	etaClient := cfg.HTTPClient
	delayClient := cfg.HTTPClient
	if cfg.HTTPClient == nil {
		etaClient = resilience.NewClient(resilience.ClientConfig{
			Name:    EtaEndpointName,
			Timeout: timeout,
		})
		delayClient = resilience.NewClient(resilience.ClientConfig{
			Name:    DelayEndpointName,
			Timeout: timeout,
		})
	}

	if cfg.Registry != nil {
		if rc, ok := etaClient.(*resilience.Client); ok {
			cfg.Registry.Register(EtaEndpointName, rc)
		}
		if rc, ok := delayClient.(*resilience.Client); ok {
			cfg.Registry.Register(DelayEndpointName, rc)
		}
	}

	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		etaClient:   etaClient,
		delayClient: delayClient,
		registry:    cfg.Registry,
	}
}

// Wire types for the model server API.

type predictRequest struct {
	Features *features.FeatureRecord `json:"features"`
}

type etaResponse struct {
	EtaMinutes float64 `json:"eta_minutes"`
}

type delayResponse struct {
	DelayProbability float64 `json:"delay_probability"`
}

// PredictETA scores the regression model.
func (c *Client) PredictETA(ctx context.Context, record *features.FeatureRecord) (float64, error) {
	var result etaResponse
	if err := c.predict(ctx, c.etaClient, EtaEndpointName, "/models/eta:predict", record, &result); err != nil {
		return 0, err
	}
	return result.EtaMinutes, nil
}

// PredictDelayProbability scores the classification model.
func (c *Client) PredictDelayProbability(ctx context.Context, record *features.FeatureRecord) (float64, error) {
	var result delayResponse
	if err := c.predict(ctx, c.delayClient, DelayEndpointName, "/models/delay:predict_proba", record, &result); err != nil {
		return 0, err
	}
	if result.DelayProbability < 0 || result.DelayProbability > 1 {
		err := fmt.Errorf("%w: delay probability %g outside [0,1]", inference.ErrBadModelResponse, result.DelayProbability)
		c.recordFailure(DelayEndpointName, err)
		return 0, err
	}
	return result.DelayProbability, nil
}

// predict posts a feature record to a model endpoint and decodes the result.
func (c *Client) predict(ctx context.Context, httpClient HTTPDoer, endpoint, path string, record *features.FeatureRecord, out interface{}) error {
	body, err := json.Marshal(predictRequest{Features: record})
	if err != nil {
		return fmt.Errorf("encode feature record: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		c.recordFailure(endpoint, err)
		return fmt.Errorf("%w: %s: %s", inference.ErrModelUnavailable, endpoint, err.Error())
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// fall through to decode
	case resp.StatusCode >= 500:
		err := fmt.Errorf("%w: %s returned status %d", inference.ErrModelUnavailable, endpoint, resp.StatusCode)
		c.recordFailure(endpoint, err)
		return err
	default:
		// 4xx means the record was rejected; surface it as a bad response so
		// the caller doesn't retry an identical payload.
		err := fmt.Errorf("%w: %s rejected record with status %d", inference.ErrBadModelResponse, endpoint, resp.StatusCode)
		c.recordFailure(endpoint, err)
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		err = fmt.Errorf("%w: decode %s response: %s", inference.ErrBadModelResponse, endpoint, err.Error())
		c.recordFailure(endpoint, err)
		return err
	}

	c.recordSuccess(endpoint)
	return nil
}

func (c *Client) recordSuccess(endpoint string) {
	if c.registry != nil {
		c.registry.RecordSuccess(endpoint)
	}
}

func (c *Client) recordFailure(endpoint string, err error) {
	if c.registry != nil {
		c.registry.RecordFailure(endpoint, err)
	}
}

// Ensure Client implements both predictor interfaces.
var (
	_ inference.EtaPredictor   = (*Client)(nil)
	_ inference.DelayPredictor = (*Client)(nil)
)
