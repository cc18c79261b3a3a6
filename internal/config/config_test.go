// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package config

import (
	"bytes"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/circonus-labs/activemq-plugin/internal/config/defaults"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func setDefaults() {
	viper.Reset()
	viper.Set(KeyBrokerName, defaults.BrokerName)
	viper.Set(KeyJolokiaHost, defaults.JolokiaHost)
	viper.Set(KeyJolokiaPort, defaults.JolokiaPort)
	viper.Set(KeyJolokiaPath, defaults.JolokiaPath)
	viper.Set(KeyJolokiaTimeout, defaults.JolokiaTimeout)
	viper.Set(KeyJolokiaRetries, defaults.JolokiaRetries)
	viper.Set(KeyJolokiaMaxResponseSize, defaults.JolokiaMaxResponseSize)
	viper.Set(KeyOutputFormat, defaults.OutputFormat)
	viper.Set(KeyAgentGroup, defaults.AgentGroup)
}

func TestValidate(t *testing.T) {
	t.Log("Testing Validate")

	zerolog.SetGlobalLevel(zerolog.Disabled)

	t.Log("defaults")
	{
		setDefaults()
		if err := Validate(); err != nil {
			t.Fatalf("expected NO error, got (%s)", err)
		}
	}

	t.Log("no broker name")
	{
		setDefaults()
		viper.Set(KeyBrokerName, "")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("invalid port")
	{
		setDefaults()
		viper.Set(KeyJolokiaPort, 70000)
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("explicit url ignores port")
	{
		setDefaults()
		viper.Set(KeyJolokiaPort, 0)
		viper.Set(KeyJolokiaURL, "https://amq.example.com/api/jolokia")
		if err := Validate(); err != nil {
			t.Fatalf("expected NO error, got (%s)", err)
		}
	}

	t.Log("invalid url scheme")
	{
		setDefaults()
		viper.Set(KeyJolokiaURL, "service:jmx:rmi:///jndi/rmi://localhost:1099/jmxrmi")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("invalid timeout")
	{
		setDefaults()
		viper.Set(KeyJolokiaTimeout, "ten")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("invalid max response size")
	{
		setDefaults()
		viper.Set(KeyJolokiaMaxResponseSize, "lots")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("invalid format")
	{
		setDefaults()
		viper.Set(KeyOutputFormat, "xml")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("output tags")
	{
		setDefaults()
		viper.Set(KeyOutputTags, "env:prod,dc:east")
		if err := Validate(); err != nil {
			t.Fatalf("expected NO error, got (%s)", err)
		}
		viper.Set(KeyOutputTags, "env")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("agent")
	{
		setDefaults()
		viper.Set(KeyAgentURL, "http://127.0.0.1:2609")
		if err := Validate(); err != nil {
			t.Fatalf("expected NO error, got (%s)", err)
		}
		viper.Set(KeyAgentGroup, "a/b")
		if err := Validate(); err == nil {
			t.Fatal("expected error, bad group")
		}
		viper.Set(KeyAgentGroup, defaults.AgentGroup)
		viper.Set(KeyAgentURL, "unix:///tmp/agent.sock")
		if err := Validate(); err == nil {
			t.Fatal("expected error, bad scheme")
		}
	}

	t.Log("thresholds")
	{
		setDefaults()
		viper.Set(KeyThresholdWarning, "10")
		viper.Set(KeyThresholdCritical, "5:100")
		if err := Validate(); err != nil {
			t.Fatalf("expected NO error, got (%s)", err)
		}
		viper.Set(KeyThresholdCritical, "a:b")
		if err := Validate(); err == nil {
			t.Fatal("expected error")
		}
	}
}

func TestValidateThreshold(t *testing.T) {
	t.Log("Testing validateThreshold")

	tt := []struct {
		r           string
		expectError bool
	}{
		{"", false},
		{"10", false},
		{"10:", false},
		{":10", false},
		{"-5:5.5", false},
		{":", true},
		{"1:2:3", true},
		{"x", true},
	}

	for _, tst := range tt {
		err := validateThreshold(tst.r)
		if tst.expectError && err == nil {
			t.Fatalf("expected error for %q", tst.r)
		}
		if !tst.expectError && err != nil {
			t.Fatalf("expected no error for %q, got (%s)", tst.r, err)
		}
	}
}

func TestJolokiaURL(t *testing.T) {
	t.Log("Testing JolokiaURL")

	t.Log("derived")
	{
		setDefaults()
		viper.Set(KeyJolokiaHost, "amq01")
		viper.Set(KeyJolokiaPath, "api/jolokia")
		expect := "http://amq01:8161/api/jolokia"
		if u := JolokiaURL(); u != expect {
			t.Fatalf("expected %q, got %q", expect, u)
		}
	}

	t.Log("explicit")
	{
		setDefaults()
		expect := "https://amq.example.com:8443/jolokia"
		viper.Set(KeyJolokiaURL, expect)
		if u := JolokiaURL(); u != expect {
			t.Fatalf("expected %q, got %q", expect, u)
		}
	}
}

func TestShowConfig(t *testing.T) {
	t.Log("Testing ShowConfig")
	zerolog.SetGlobalLevel(zerolog.Disabled)

	setDefaults()
	viper.Set(KeyJolokiaPass, "secret")

	for _, format := range []string{"yaml", "toml", "json"} {
		t.Logf("\t%s", format)
		viper.Set(KeyShowConfig, format)
		var buf bytes.Buffer
		if err := ShowConfig(&buf); err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
		if strings.Contains(buf.String(), "secret") {
			t.Fatalf("expected password to be masked, got %s", buf.String())
		}
	}

	t.Log("unknown format")
	{
		viper.Set(KeyShowConfig, "xml")
		if err := ShowConfig(ioutil.Discard); err == nil {
			t.Fatal("expected error")
		}
	}
}

func TestGetConfig(t *testing.T) {
	t.Log("Testing getConfig")
	zerolog.SetGlobalLevel(zerolog.Disabled)

	setDefaults()
	cfg, err := getConfig()
	if err != nil {
		t.Fatalf("expected no error, got %s", err)
	}
	if cfg == nil {
		t.Fatal("expected not nil")
	}
	if cfg.Broker.Name != defaults.BrokerName {
		t.Fatalf("expected broker %q, got %q", defaults.BrokerName, cfg.Broker.Name)
	}
	if cfg.Jolokia.MaxResponseSize != defaults.JolokiaMaxResponseSize {
		t.Fatalf("expected max response size %q, got %q", defaults.JolokiaMaxResponseSize, cfg.Jolokia.MaxResponseSize)
	}
}
