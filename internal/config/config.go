// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package config defines options
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/units"
	"github.com/circonus-labs/activemq-plugin/internal/tags"
	toml "github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
	yaml "gopkg.in/yaml.v2"
)

// Log defines the running config.log structure.
type Log struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Pretty bool   `json:"pretty" yaml:"pretty" toml:"pretty"`
}

// Broker defines the running config.broker structure.
type Broker struct {
	Name string `json:"name" yaml:"name" toml:"name"`
}

// Jolokia defines the running config.jolokia structure.
type Jolokia struct {
	Host            string `json:"host" yaml:"host" toml:"host"`
	Path            string `json:"path" yaml:"path" toml:"path"`
	URL             string `json:"url" yaml:"url" toml:"url"`
	User            string `json:"user" yaml:"user" toml:"user"`
	Pass            string `json:"pass" yaml:"pass" toml:"pass"`
	Timeout         string `json:"timeout" yaml:"timeout" toml:"timeout"`
	MaxResponseSize string `mapstructure:"max_response_size" json:"max_response_size" yaml:"max_response_size" toml:"max_response_size"`
	Port            int    `json:"port" yaml:"port" toml:"port"`
	Retries         int    `json:"retries" yaml:"retries" toml:"retries"`
	Insecure        bool   `json:"insecure" yaml:"insecure" toml:"insecure"`
}

// Output defines the running config.output structure.
type Output struct {
	Format string `json:"format" yaml:"format" toml:"format"`
	Tags   string `json:"tags" yaml:"tags" toml:"tags"`
}

// Agent defines the running config.agent structure.
type Agent struct {
	URL   string `json:"url" yaml:"url" toml:"url"`
	Group string `json:"group" yaml:"group" toml:"group"`
}

// Thresholds defines the munin warning/critical ranges added to every field.
type Thresholds struct {
	Warning  string `json:"warning" yaml:"warning" toml:"warning"`
	Critical string `json:"critical" yaml:"critical" toml:"critical"`
}

// Config defines the running config structure.
type Config struct {
	Broker     Broker     `json:"broker" yaml:"broker" toml:"broker"`
	Jolokia    Jolokia    `json:"jolokia" yaml:"jolokia" toml:"jolokia"`
	Output     Output     `json:"output" yaml:"output" toml:"output"`
	Thresholds Thresholds `json:"thresholds" yaml:"thresholds" toml:"thresholds"`
	Agent      Agent      `json:"agent" yaml:"agent" toml:"agent"`
	Log        Log        `json:"log" yaml:"log" toml:"log"`
	Debug      bool       `json:"debug" yaml:"debug" toml:"debug"`
}

// NOTE: adding a Key* MUST be reflected in the Config structures above.
const (
	// KeyBrokerName name of the broker, used to build management object names.
	KeyBrokerName = "broker.name"

	// KeyJolokiaHost host running the broker web console.
	KeyJolokiaHost = "jolokia.host"

	// KeyJolokiaPort port of the broker web console.
	KeyJolokiaPort = "jolokia.port"

	// KeyJolokiaPath path of the jolokia agent within the web console.
	KeyJolokiaPath = "jolokia.path"

	// KeyJolokiaURL full jolokia agent url, overrides host, port and path.
	KeyJolokiaURL = "jolokia.url"

	// KeyJolokiaUser user for basic authentication.
	KeyJolokiaUser = "jolokia.user"

	// KeyJolokiaPass password for basic authentication.
	KeyJolokiaPass = "jolokia.pass"

	// KeyJolokiaTimeout per request timeout (duration).
	KeyJolokiaTimeout = "jolokia.timeout"

	// KeyJolokiaRetries number of retries for a failing request.
	KeyJolokiaRetries = "jolokia.retries"

	// KeyJolokiaMaxResponseSize upper bound on the size of a response body (e.g. 10MiB).
	KeyJolokiaMaxResponseSize = "jolokia.max_response_size"

	// KeyJolokiaInsecure skip tls certificate verification.
	KeyJolokiaInsecure = "jolokia.insecure"

	// KeyOutputFormat format used when printing fetched values.
	KeyOutputFormat = "output.format"

	// KeyOutputTags stream tags (cat:val,...) added to every circonus metric.
	KeyOutputTags = "output.tags"

	// KeyAgentURL circonus-agent to submit fetched metrics to (e.g. http://127.0.0.1:2609).
	KeyAgentURL = "agent.url"

	// KeyAgentGroup plugin name the submitted metrics appear under in the agent.
	KeyAgentGroup = "agent.group"

	// KeyThresholdWarning munin warning range applied to all fields.
	KeyThresholdWarning = "thresholds.warning"

	// KeyThresholdCritical munin critical range applied to all fields.
	KeyThresholdCritical = "thresholds.critical"

	// KeyDebug enables debug messages.
	KeyDebug = "debug"

	// KeyLogLevel logging level (panic, fatal, error, warn, info, debug, disabled).
	KeyLogLevel = "log.level"

	// KeyLogPretty output formatted log lines.
	KeyLogPretty = "log.pretty"

	// KeyShowConfig - show configuration and exit.
	KeyShowConfig = "show-config"

	// KeyShowVersion - show version information and exit.
	KeyShowVersion = "version"
)

// Output formats.
const (
	FormatMunin      = "munin"
	FormatCirconus   = "circonus"
	FormatPrometheus = "prometheus"
)

var agentGroupRx = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// Validate verifies the required portions of the configuration.
func Validate() error {
	if viper.GetString(KeyBrokerName) == "" {
		return errors.New("broker name is required")
	}

	if err := validateJolokiaOptions(); err != nil {
		return errors.Wrap(err, "jolokia config")
	}

	switch viper.GetString(KeyOutputFormat) {
	case FormatMunin, FormatCirconus, FormatPrometheus:
	default:
		return errors.Errorf("unknown output format (%s)", viper.GetString(KeyOutputFormat))
	}

	if _, err := tags.FromString(viper.GetString(KeyOutputTags)); err != nil {
		return errors.Wrap(err, "output tags")
	}

	if u := viper.GetString(KeyAgentURL); u != "" {
		pu, err := url.Parse(u)
		if err != nil {
			return errors.Wrap(err, "invalid agent url")
		}
		if pu.Scheme != "http" && pu.Scheme != "https" {
			return errors.Errorf("invalid agent url scheme (%s)", pu.Scheme)
		}
		if !agentGroupRx.MatchString(viper.GetString(KeyAgentGroup)) {
			return errors.Errorf("invalid agent group (%s)", viper.GetString(KeyAgentGroup))
		}
	}

	for _, key := range []string{KeyThresholdWarning, KeyThresholdCritical} {
		if err := validateThreshold(viper.GetString(key)); err != nil {
			return errors.Wrap(err, key)
		}
	}

	return nil
}

func validateJolokiaOptions() error {
	if u := viper.GetString(KeyJolokiaURL); u != "" {
		pu, err := url.Parse(u)
		if err != nil {
			return errors.Wrap(err, "invalid url")
		}
		if pu.Scheme != "http" && pu.Scheme != "https" {
			return errors.Errorf("invalid url scheme (%s)", pu.Scheme)
		}
	} else {
		if viper.GetString(KeyJolokiaHost) == "" {
			return errors.New("host is required")
		}
		port := viper.GetInt(KeyJolokiaPort)
		if port <= 0 || port > 65535 {
			return errors.Errorf("invalid port (%d)", port)
		}
	}

	if _, err := time.ParseDuration(viper.GetString(KeyJolokiaTimeout)); err != nil {
		return errors.Wrap(err, "invalid timeout")
	}

	if viper.GetInt(KeyJolokiaRetries) < 0 {
		return errors.Errorf("invalid retries (%d)", viper.GetInt(KeyJolokiaRetries))
	}

	if _, err := units.ParseStrictBytes(viper.GetString(KeyJolokiaMaxResponseSize)); err != nil {
		return errors.Wrap(err, "invalid max response size")
	}

	return nil
}

// validateThreshold accepts munin ranges: "", "max", "min:", ":max" and "min:max".
func validateThreshold(r string) error {
	if r == "" {
		return nil
	}
	parts := strings.Split(r, ":")
	if len(parts) > 2 {
		return errors.Errorf("invalid range (%s)", r)
	}
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			return errors.Errorf("invalid range (%s)", r)
		}
	}
	if len(parts) == 2 && parts[0] == "" && parts[1] == "" {
		return errors.Errorf("invalid range (%s)", r)
	}
	return nil
}

// JolokiaURL returns the configured jolokia agent url, derived from host, port and path
// when not explicitly set.
func JolokiaURL() string {
	if u := viper.GetString(KeyJolokiaURL); u != "" {
		return u
	}
	p := viper.GetString(KeyJolokiaPath)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return fmt.Sprintf("http://%s:%d%s", viper.GetString(KeyJolokiaHost), viper.GetInt(KeyJolokiaPort), p)
}

// getConfig dumps the current configuration and returns it.
func getConfig() (*Config, error) {
	var cfg *Config

	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing config")
	}

	return cfg, nil
}

// ShowConfig prints the running configuration.
func ShowConfig(w io.Writer) error {
	var cfg *Config
	var err error
	var data []byte

	cfg, err = getConfig()
	if err != nil {
		return err
	}

	if cfg.Jolokia.Pass != "" {
		cfg.Jolokia.Pass = "..."
	}

	format := viper.GetString(KeyShowConfig)

	switch format {
	case "json":
		data, err = json.MarshalIndent(cfg, " ", "  ")
	case "yaml":
		data, err = yaml.Marshal(cfg)
	case "toml":
		data, err = toml.Marshal(*cfg)
	default:
		return errors.Errorf("unknown config format '%s'", format)
	}

	if err != nil {
		return errors.Wrapf(err, "formatting config (%s)", format)
	}

	fmt.Fprintln(w, string(data))
	return nil
}
