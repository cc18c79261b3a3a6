// Copyright © 2018 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package api submits destination metrics to a running circonus-agent
// through its /write endpoint.
package api

import (
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Client defines the circonus-agent api client configuration.
type Client struct {
	agentURL    *url.URL
	groupVal    *regexp.Regexp
	retryClient *retryablehttp.Client
	logger      zerolog.Logger
}

var (
	errInvalidAgentURL   = errors.New("invalid agent URL (empty)")
	errInvalidGroupID    = errors.New("invalid group id")
	errInvalidMetrics    = errors.New("invalid metrics (nil)")
	errInvalidMetricList = errors.New("invalid metrics (none)")
)

// agentLogshim is used to satisfy retryablehttp's Logger interface (avoiding ptr receiver issue)
type agentLogshim struct {
	logh zerolog.Logger
}

// New creates a new circonus-agent api client.
func New(parentLogger zerolog.Logger, agentURL string, timeout time.Duration) (*Client, error) {
	if agentURL == "" {
		return nil, errInvalidAgentURL
	}

	u, err := url.Parse(agentURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing agent url")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Errorf("invalid agent url scheme (%s)", u.Scheme)
	}

	c := &Client{
		agentURL: u,
		groupVal: regexp.MustCompile("^[a-zA-Z0-9_-]+$"),
		logger:   parentLogger.With().Str("pkg", "api").Logger(),
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Timeout: timeout}
	rc.Logger = agentLogshim{logh: c.logger.With().Str("pkg", "retryablehttp").Logger()}
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.RetryMax = 2
	rc.RequestLogHook = func(l retryablehttp.Logger, r *http.Request, attempt int) {
		if attempt > 0 {
			c.logger.Warn().Str("url", r.URL.String()).Int("retry", attempt).Msg("retrying...")
		}
	}
	c.retryClient = rc

	return c, nil
}

func (l agentLogshim) Printf(fmt string, v ...interface{}) {
	if strings.HasPrefix(fmt, "[DEBUG]") {
		if e := l.logh.Debug(); !e.Enabled() {
			return
		}
	}

	l.logh.Printf(fmt, v...)
}
