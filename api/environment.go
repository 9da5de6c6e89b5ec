package api

import (
	"fmt"
	"strings"
)

// Environment names a backend deployment.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Target is the base URL and debug default of one environment.
type Target struct {
	BaseURL string
	Debug   bool
}

var targets = map[Environment]Target{
	Development: {BaseURL: "https://api.hast-app.online", Debug: true},
	Staging:     {BaseURL: "https://staging-api.hast-app.online", Debug: true},
	Production:  {BaseURL: "https://api.hast-app.online", Debug: false},
}

// TargetFor returns the preset for env.
func TargetFor(env Environment) (Target, error) {
	t, ok := targets[env]
	if !ok {
		return Target{}, fmt.Errorf("unknown environment %q", env)
	}
	return t, nil
}

// ParseEnvironment accepts the environment names case-insensitively, plus
// the short forms dev, stage and prod. An empty string is Development.
func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dev", "development":
		return Development, nil
	case "stage", "staging":
		return Staging, nil
	case "prod", "production":
		return Production, nil
	default:
		return "", fmt.Errorf("unknown environment %q", s)
	}
}
