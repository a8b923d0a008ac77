// Package ratelimit implements the request-rate governor: fixed-window
// counting keyed by (client identity, endpoint class), backed by a pluggable
// counter store so the locking discipline is testable apart from transport.
package ratelimit

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sacm-project/sacm-api/pkg/config"
)

// Class is one endpoint bucket of the rate table.
type Class struct {
	Name   string
	Prefix string
	Limit  int
	Window time.Duration
}

// Classifier maps request paths to their configured endpoint class using
// longest-prefix matching, falling back to the global default class.
type Classifier struct {
	classes      []Class
	defaultClass Class
}

// NewClassifier builds a classifier from the fixed configuration contract.
// Invalid configuration is rejected here, at startup, never per request.
func NewClassifier(cfg config.RateLimitConfig) (*Classifier, error) {
	if cfg.DefaultLimit <= 0 || cfg.DefaultWindow <= 0 {
		return nil, fmt.Errorf("ratelimit: default class needs positive limit and window")
	}

	classes := make([]Class, 0, len(cfg.Endpoints))
	for _, ep := range cfg.Endpoints {
		if ep.Prefix == "" {
			return nil, fmt.Errorf("ratelimit: endpoint class with empty prefix")
		}
		if ep.Limit <= 0 || ep.Window <= 0 {
			return nil, fmt.Errorf("ratelimit: class %q needs positive limit and window", ep.Prefix)
		}
		classes = append(classes, Class{
			Name:   ep.Prefix,
			Prefix: ep.Prefix,
			Limit:  ep.Limit,
			Window: ep.Window,
		})
	}

	// Longest prefix first so the most specific class wins.
	sort.SliceStable(classes, func(i, j int) bool {
		return len(classes[i].Prefix) > len(classes[j].Prefix)
	})

	return &Classifier{
		classes: classes,
		defaultClass: Class{
			Name:   "default",
			Limit:  cfg.DefaultLimit,
			Window: cfg.DefaultWindow,
		},
	}, nil
}

// Classify returns the most specific class configured for the path.
func (c *Classifier) Classify(path string) Class {
	for _, class := range c.classes {
		if strings.HasPrefix(path, class.Prefix) {
			return class
		}
	}
	return c.defaultClass
}
