// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package jolokia is a jmx.Connection over the Jolokia HTTP/JSON bridge
// bundled with the ActiveMQ web console.
package jolokia

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"io/ioutil"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/circonus-labs/activemq-plugin/internal/release"
	"github.com/hashicorp/go-retryablehttp"
	appstats "github.com/maier/go-appstats"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrConnection the Jolokia endpoint could not be reached or refused the request
var ErrConnection = errors.New("unable to connect to jolokia")

// Options configures a Client.
type Options struct {
	URL             string
	User            string
	Pass            string
	Timeout         time.Duration
	Retries         int
	MaxResponseSize int64
	Insecure        bool
}

// Client talks to a single Jolokia agent.
type Client struct {
	url             string
	user            string
	pass            string
	maxResponseSize int64
	retryClient     *retryablehttp.Client
	logger          zerolog.Logger
}

// request is a single Jolokia operation
type request struct {
	Type      string                 `json:"type"`
	MBean     string                 `json:"mbean,omitempty"`
	Attribute []string               `json:"attribute,omitempty"`
	Config    map[string]interface{} `json:"config,omitempty"`
}

// response is the envelope of every Jolokia answer
type response struct {
	Value     json.RawMessage `json:"value"`
	Status    int             `json:"status"`
	ErrorType string          `json:"error_type"`
	Error     string          `json:"error"`
}

// retryLogshim is used to satisfy retryablehttp's Logger interface (avoiding ptr receiver issue)
type retryLogshim struct {
	logh zerolog.Logger
}

var _ jmx.Connection = (*Client)(nil)

// New returns a client for the Jolokia agent at opts.URL.
func New(parentLogger zerolog.Logger, opts Options) (*Client, error) {
	if opts.URL == "" {
		return nil, errors.New("invalid jolokia url (empty)")
	}
	if opts.Timeout <= 0 {
		return nil, errors.Errorf("invalid timeout (%s)", opts.Timeout)
	}
	if opts.Retries < 0 {
		return nil, errors.Errorf("invalid retries (%d)", opts.Retries)
	}

	c := &Client{
		url:             opts.URL,
		user:            opts.User,
		pass:            opts.Pass,
		maxResponseSize: opts.MaxResponseSize,
		logger:          parentLogger.With().Str("pkg", "jolokia").Logger(),
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:       opts.Timeout,
			KeepAlive:     3 * time.Second,
			FallbackDelay: -1 * time.Millisecond,
		}).DialContext,
		TLSHandshakeTimeout: opts.Timeout,
		DisableCompression:  false,
		MaxIdleConns:        1,
		MaxIdleConnsPerHost: 1,
	}
	if opts.Insecure {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = &http.Client{Transport: transport, Timeout: opts.Timeout}
	rc.Logger = retryLogshim{logh: c.logger.With().Str("pkg", "retryablehttp").Logger()}
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 1 * time.Second
	rc.RetryMax = opts.Retries
	rc.RequestLogHook = func(l retryablehttp.Logger, r *http.Request, attempt int) {
		_ = appstats.IncrementInt("jolokia.requests")
		if attempt > 0 {
			_ = appstats.IncrementInt("jolokia.retries")
			c.logger.Warn().Str("url", r.URL.String()).Int("retry", attempt).Msg("retrying...")
		}
	}
	rc.ResponseLogHook = func(l retryablehttp.Logger, r *http.Response) {
		if r.StatusCode != http.StatusOK {
			c.logger.Warn().Str("url", r.Request.URL.String()).Str("status", r.Status).Msg("non-200 response...")
		}
	}
	c.retryClient = rc

	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.retryClient.HTTPClient.CloseIdleConnections()
}

// Ping verifies the agent answers. Any failure is an ErrConnection.
func (c *Client) Ping(ctx context.Context) error {
	var version struct {
		Agent    string `json:"agent"`
		Protocol string `json:"protocol"`
	}
	if err := c.call(ctx, request{Type: "version"}, &version); err != nil {
		if errors.Is(err, ErrConnection) {
			return err
		}
		return errors.Wrapf(ErrConnection, "version request: %s", err)
	}
	c.logger.Debug().Str("agent", version.Agent).Str("protocol", version.Protocol).Msg("connected")
	return nil
}

// IsRegistered reports whether an object with the given name exists.
func (c *Client) IsRegistered(ctx context.Context, name jmx.ObjectName) (bool, error) {
	var found []interface{}
	if err := c.call(ctx, request{Type: "search", MBean: name.String()}, &found); err != nil {
		return false, err
	}
	return len(found) > 0, nil
}

// GetAttributes reads attrs of the named object. Attributes the server
// cannot read are omitted or null in the result.
func (c *Client) GetAttributes(ctx context.Context, name jmx.ObjectName, attrs []string) (map[string]interface{}, error) {
	if len(attrs) == 0 {
		return map[string]interface{}{}, nil
	}

	req := request{
		Type:      "read",
		MBean:     name.String(),
		Attribute: attrs,
		Config:    map[string]interface{}{"ignoreErrors": true},
	}

	var value interface{}
	if err := c.call(ctx, req, &value); err != nil {
		return nil, err
	}

	if m, ok := value.(map[string]interface{}); ok {
		return m, nil
	}
	// older agents answer a single attribute read with the bare value
	if len(attrs) == 1 {
		return map[string]interface{}{attrs[0]: value}, nil
	}

	return nil, errors.Wrapf(jmx.ErrRemoteQuery, "unexpected read value (%T) for %s", value, name)
}

// call posts req and decodes the response value into v.
func (c *Client) call(ctx context.Context, req request, v interface{}) error {
	body, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "encoding jolokia request")
	}

	r, err := retryablehttp.NewRequest("POST", c.url, body)
	if err != nil {
		return errors.Wrap(err, "creating jolokia request")
	}
	r = r.WithContext(ctx)
	r.Header.Set("User-Agent", release.UserAgent())
	r.Header.Set("Content-Type", "application/json")
	r.Header.Set("Accept", "application/json")
	if c.user != "" {
		r.SetBasicAuth(c.user, c.pass)
	}

	resp, err := c.retryClient.Do(r)
	if resp != nil {
		defer resp.Body.Close()
	}
	if err != nil {
		_ = appstats.IncrementInt("jolokia.errors")
		return errors.Wrapf(ErrConnection, "%s: %s", c.url, err)
	}

	data, err := c.readBody(resp.Body)
	if err != nil {
		_ = appstats.IncrementInt("jolokia.errors")
		return errors.Wrapf(ErrConnection, "reading response: %s", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = appstats.IncrementInt("jolokia.errors")
		return errors.Wrapf(ErrConnection, "%s %s", c.url, resp.Status)
	}

	var result response
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&result); err != nil {
		_ = appstats.IncrementInt("jolokia.errors")
		return errors.Wrapf(ErrConnection, "parsing response: %s", err)
	}

	if result.Status != http.StatusOK {
		_ = appstats.IncrementInt("jolokia.errors")
		c.logger.Debug().Int("status", result.Status).Str("type", result.ErrorType).Str("mbean", req.MBean).Msg(result.Error)
		return errors.Wrapf(jmx.ErrRemoteQuery, "%s %s: %s (%d)", req.Type, req.MBean, result.Error, result.Status)
	}

	if len(result.Value) == 0 {
		return nil
	}
	dec = json.NewDecoder(bytes.NewReader(result.Value))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(jmx.ErrRemoteQuery, "decoding %s value: %s", req.Type, err)
	}

	return nil
}

// readBody reads at most maxResponseSize bytes, more is an error.
func (c *Client) readBody(body io.Reader) ([]byte, error) {
	if c.maxResponseSize <= 0 {
		return ioutil.ReadAll(body)
	}
	data, err := ioutil.ReadAll(io.LimitReader(body, c.maxResponseSize+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > c.maxResponseSize {
		return nil, errors.Errorf("response exceeds %d bytes", c.maxResponseSize)
	}
	return data, nil
}

func (l retryLogshim) Printf(fmt string, v ...interface{}) {
	if strings.HasPrefix(fmt, "[DEBUG]") {
		if e := l.logh.Debug(); !e.Enabled() {
			return
		}
	}

	l.logh.Printf(fmt, v...)
}
