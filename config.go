package hastauth

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/hast-app/hastauth/api"
	"github.com/hast-app/hastauth/messages"
)

// Config defines a public type used by hastauth APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Environment api.Environment
	API         APIConfig
	Endpoints   api.Endpoints
	RoleGate    RoleGateConfig
	// Messages overrides individual user-facing texts; empty fields fall
	// back to the Vietnamese catalog.
	Messages messages.Catalog
	Audit    AuditConfig
	Metrics  MetricsConfig
	// Debug lowers the client logger to debug level.
	Debug bool
}

/*
====================================
API CONFIG
====================================
*/

// APIConfig defines a public type used by hastauth APIs.
//
// APIConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type APIConfig struct {
	BaseURL      string
	Timeout      time.Duration
	ProbeTimeout time.Duration
	UserAgent    string
	// Headers are added to every request, probe included.
	Headers map[string]string
}

/*
====================================
ROLE GATE CONFIG
====================================
*/

// RoleGateConfig controls which accounts may keep a session after an
// explicit login success. Nil key and token slices use the teacher-account
// defaults of the permission package.
type RoleGateConfig struct {
	Enabled    bool
	FlagKeys   []string
	RoleKeys   []string
	RoleTokens []string
}

/*
====================================
AUDIT CONFIG
====================================
*/

// AuditConfig defines a public type used by hastauth APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

/*
====================================
METRICS CONFIG
====================================
*/

// MetricsConfig defines a public type used by hastauth APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the development preset.
func DefaultConfig() Config {
	return defaultConfig()
}

// ConfigForEnvironment returns the default config pointed at env's base URL
// with env's debug default.
func ConfigForEnvironment(env api.Environment) (Config, error) {
	target, err := api.TargetFor(env)
	if err != nil {
		return Config{}, err
	}
	cfg := defaultConfig()
	cfg.Environment = env
	cfg.API.BaseURL = target.BaseURL
	cfg.Debug = target.Debug
	return cfg, nil
}

func defaultConfig() Config {
	target, _ := api.TargetFor(api.Development)
	return Config{
		Environment: api.Development,
		API: APIConfig{
			BaseURL:      target.BaseURL,
			Timeout:      10 * time.Second,
			ProbeTimeout: 5 * time.Second,
			UserAgent:    "hastauth/1",
		},
		Endpoints: api.DefaultEndpoints(),
		RoleGate: RoleGateConfig{
			Enabled: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Debug: target.Debug,
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.API.Headers = maps.Clone(cfg.API.Headers)
	out.RoleGate.FlagKeys = slices.Clone(cfg.RoleGate.FlagKeys)
	out.RoleGate.RoleKeys = slices.Clone(cfg.RoleGate.RoleKeys)
	out.RoleGate.RoleTokens = slices.Clone(cfg.RoleGate.RoleTokens)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when a field is out of range or the base URL cannot be used.
// Validate does not mutate the receiver.
func (c *Config) Validate() error {
	// API
	if strings.TrimSpace(c.API.BaseURL) == "" {
		return errors.New("API BaseURL must be set")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("API BaseURL is invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return errors.New("API BaseURL must be http or https")
	}
	if u.Host == "" {
		return errors.New("API BaseURL must include a host")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API Timeout must be > 0")
	}
	if c.API.ProbeTimeout <= 0 {
		return errors.New("API ProbeTimeout must be > 0")
	}
	for k := range c.API.Headers {
		if strings.EqualFold(k, "Authorization") {
			return errors.New("API Headers must not set Authorization")
		}
	}

	// Environment
	if c.Environment != "" {
		if _, err := api.TargetFor(c.Environment); err != nil {
			return err
		}
	}

	// Endpoints
	if err := c.Endpoints.Validate(); err != nil {
		return err
	}

	// Role gate
	if c.RoleGate.Enabled && c.RoleGate.FlagKeys != nil && c.RoleGate.RoleKeys != nil &&
		len(c.RoleGate.FlagKeys) == 0 && len(c.RoleGate.RoleKeys) == 0 {
		return errors.New("RoleGate enabled with no flag keys and no role keys rejects every login")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	// Messages
	if c.Messages.HTTPStatus != "" && !strings.Contains(c.Messages.HTTPStatus, "%d") {
		return errors.New("Messages HTTPStatus must contain %d")
	}

	return nil
}

/*
====================================
LINT
====================================
*/

// LintWarning is a non-fatal observation about a Config.
type LintWarning struct {
	Code    string
	Message string
}

// LintResult is the list of warnings produced by [Config.Lint].
type LintResult []LintWarning

// Codes returns the warning codes in order.
func (r LintResult) Codes() []string {
	out := make([]string, 0, len(r))
	for _, w := range r {
		out = append(out, w.Code)
	}
	return out
}

// Lint reports settings that are valid but unusual for the configured
// environment.
func (c *Config) Lint() LintResult {
	var ws LintResult
	prod := c.Environment == api.Production

	if u, err := url.Parse(c.API.BaseURL); err == nil && u.Scheme == "http" {
		ws = append(ws, LintWarning{Code: "plaintext_base_url", Message: "bearer tokens are sent over plain HTTP"})
	}
	if prod && c.Debug {
		ws = append(ws, LintWarning{Code: "debug_in_production", Message: "debug logging is enabled in production"})
	}
	if !c.RoleGate.Enabled {
		ws = append(ws, LintWarning{Code: "role_gate_disabled", Message: "any account that signs in keeps a session"})
	}
	if c.API.Timeout > time.Minute {
		ws = append(ws, LintWarning{Code: "timeout_long", Message: "API Timeout above one minute"})
	}
	if c.API.ProbeTimeout > c.API.Timeout {
		ws = append(ws, LintWarning{Code: "probe_slower_than_api", Message: "ProbeTimeout exceeds the API Timeout"})
	}
	if c.Audit.Enabled && !c.Audit.DropIfFull {
		ws = append(ws, LintWarning{Code: "audit_may_block", Message: "a full audit buffer blocks operations"})
	}
	return ws
}
