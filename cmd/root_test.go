// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/circonus-labs/activemq-plugin/internal/config"
	"github.com/circonus-labs/activemq-plugin/internal/config/defaults"
	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

func TestInitConfig(t *testing.T) {
	t.Log("Testing initConfig")
	zerolog.SetGlobalLevel(zerolog.Disabled)

	initConfig()
	if configErr != nil {
		t.Fatalf("expected no error, got (%s)", configErr)
	}

	t.Log("\tunparseable config file")
	{
		f, err := ioutil.TempFile("", "amq*.json")
		if err != nil {
			t.Fatalf("creating temp file (%s)", err)
		}
		defer os.Remove(f.Name())
		if _, err := f.WriteString("{"); err != nil {
			t.Fatalf("writing temp file (%s)", err)
		}
		f.Close()

		cfgFile = f.Name()
		initConfig()
		cfgFile = ""
		if configErr == nil {
			t.Fatal("expected error")
		}
		viper.Reset()
		configErr = nil
	}
}

func TestInitLogging(t *testing.T) {
	t.Log("Testing initLogging")
	zerolog.SetGlobalLevel(zerolog.Disabled)

	logLevels := []string{
		"panic",
		"fatal",
		"error",
		"warn",
		"info",
		"debug",
		"disabled",
	}

	for _, level := range logLevels {
		t.Logf("level %s", level)
		viper.Set(config.KeyLogLevel, level)
		err := initLogging(nil, []string{})
		if err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
		viper.Reset()
	}

	t.Log("level invalid")
	{
		viper.Set(config.KeyLogLevel, "invalid")
		expect := "Unknown log level (invalid)"
		err := initLogging(nil, []string{})
		if err == nil {
			t.Fatal("expected error")
		}
		if err.Error() != expect {
			t.Fatalf("expected (%s) got (%s)", expect, err)
		}
		viper.Reset()
	}

	t.Log("debug")
	{
		viper.Set(config.KeyDebug, true)
		if err := initLogging(nil, []string{}); err != nil {
			t.Fatalf("expected no error, got %s", err)
		}
		if viper.GetString(config.KeyLogLevel) != "debug" {
			t.Fatalf("expected debug log level, got %s", viper.GetString(config.KeyLogLevel))
		}
		viper.Reset()
	}

	zerolog.SetGlobalLevel(zerolog.Disabled)
}

func TestPortFlag(t *testing.T) {
	t.Log("Testing --port env var")

	f := RootCmd.PersistentFlags().Lookup("port")
	if f == nil {
		t.Fatal("expected port flag")
	}
	if !strings.Contains(f.Usage, "[ENV: JOLOKIA_PORT]") {
		t.Fatalf("expected JOLOKIA_PORT, got %q", f.Usage)
	}
	// JMX_PORT names the RMI port in existing munin plugin configs
	if strings.Contains(f.Usage, "JMX_PORT") {
		t.Fatalf("unexpected JMX_PORT in %q", f.Usage)
	}
	if f.DefValue != fmt.Sprintf("%d", defaults.JolokiaPort) {
		t.Fatalf("expected default %d, got %s", defaults.JolokiaPort, f.DefValue)
	}
}

// fakeJolokia is a modern naming scheme broker with two queues
func fakeJolokia(t *testing.T) *httptest.Server {
	brokerID := jmx.Modern.BrokerIdentifier("localhost")
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Type  string `json:"type"`
			MBean string `json:"mbean"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %s", err)
			return
		}
		switch {
		case req.Type == "version":
			fmt.Fprint(w, `{"value":{"agent":"1.6.2","protocol":"7.2"},"status":200}`)
		case req.Type == "search" && req.MBean == brokerID:
			fmt.Fprintf(w, `{"value":["%s"],"status":200}`, brokerID)
		case req.Type == "search" && strings.Contains(req.MBean, "destinationName=orders"):
			fmt.Fprintf(w, `{"value":["%s"],"status":200}`, req.MBean)
		case req.Type == "search":
			fmt.Fprint(w, `{"value":[],"status":200}`)
		case req.Type == "read" && req.MBean == brokerID:
			fmt.Fprintf(w, `{"value":{"Queues":[{"objectName":"%s"},{"objectName":"%s"}],"Topics":[]},"status":200}`,
				jmx.Modern.DestinationIdentifier("localhost", "Queue", "orders"),
				jmx.Modern.DestinationIdentifier("localhost", "Queue", "orders.dlq"))
		case req.Type == "read" && strings.HasSuffix(req.MBean, "destinationName=orders"):
			fmt.Fprint(w, `{"value":{"QueueSize":5,"ConsumerCount":1,"ProducerCount":2},"status":200}`)
		default:
			fmt.Fprintf(w, `{"error_type":"javax.management.InstanceNotFoundException","error":"%s","status":404}`, req.MBean)
		}
	}))
}

func setTestConfig(url string) {
	viper.Reset()
	viper.Set(config.KeyBrokerName, defaults.BrokerName)
	viper.Set(config.KeyJolokiaURL, url)
	viper.Set(config.KeyJolokiaTimeout, "2s")
	viper.Set(config.KeyJolokiaRetries, 0)
	viper.Set(config.KeyJolokiaMaxResponseSize, defaults.JolokiaMaxResponseSize)
	viper.Set(config.KeyOutputFormat, config.FormatMunin)
	viper.Set(config.KeyLogLevel, "disabled")
}

func run(t *testing.T, args ...string) (string, error) {
	var buf bytes.Buffer
	RootCmd.SetOutput(&buf)
	RootCmd.SetArgs(args)
	err := execute()
	return buf.String(), err
}

func TestCommands(t *testing.T) {
	t.Log("Testing commands")
	zerolog.SetGlobalLevel(zerolog.Disabled)

	ts := fakeJolokia(t)
	defer ts.Close()

	tt := []struct {
		name   string
		args   []string
		expect string
	}{
		{"suggest", []string{"suggest"}, "size\nsubscribers\ntraffic\n"},
		{"list", []string{"list"}, "queue:orders\nqueue:orders.dlq\n"},
		{"fetch", []string{"fetch", "size", "orders", "+orders\\..*"}, "Queue_orders_QueueSize.value 5\nQueue_orders_dlq_QueueSize.value U\n"},
		{"values alias", []string{"values", "SUBSCRIBERS", "queue:orders"}, "Queue_orders_ConsumerCount.value 1\nQueue_orders_ProducerCount.value 2\n"},
		{"config", []string{"config", "size", "orders"}, `graph_title Queue Size
graph_category ActiveMQ
graph_info The number of messages currently waiting on the queue.
graph_vlabel Messages

Queue_orders_QueueSize.label Queue: orders
Queue_orders_QueueSize.type GAUGE
Queue_orders_QueueSize.min 0
`},
		{"autoconf", []string{"autoconf", "orders"}, "yes\n"},
		{"autoconf failed", []string{"autoconf", "orders", "queue:gone"}, "no (failed destinations:\nqueue:gone\n)\n"},
	}

	for _, tst := range tt {
		t.Logf("\t%s", tst.name)
		setTestConfig(ts.URL)
		out, err := run(t, tst.args...)
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if out != tst.expect {
			t.Fatalf("expected %q, got %q", tst.expect, out)
		}
	}

	t.Log("\tfetch, submit to agent")
	{
		var received map[string]interface{}
		agent := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/write/amq" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		}))
		setTestConfig(ts.URL)
		viper.Set(config.KeyAgentURL, agent.URL)
		viper.Set(config.KeyAgentGroup, "amq")
		out, err := run(t, "fetch", "size", "orders")
		agent.Close()
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if out != "Queue_orders_QueueSize.value 5\n" {
			t.Fatalf("unexpected %q", out)
		}
		if len(received) != 1 {
			t.Fatalf("expected 1 metric submitted, got %v", received)
		}
	}

	t.Log("\tunknown mode")
	{
		setTestConfig(ts.URL)
		if _, err := run(t, "fetch", "latency", "orders"); err == nil {
			t.Fatal("expected error")
		}
	}

	t.Log("\tautoconf, nothing listening")
	{
		setTestConfig("http://127.0.0.1:1/api/jolokia")
		out, err := run(t, "autoconf")
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if out != "no (unable to connect)\n" {
			t.Fatalf("unexpected %q", out)
		}
	}

	t.Log("\tautoconf, invalid log level")
	{
		setTestConfig(ts.URL)
		viper.Set(config.KeyLogLevel, "bogus")
		out, err := run(t, "autoconf", "--log-level=bogus", "orders")
		if ferr := RootCmd.PersistentFlags().Set("log-level", defaults.LogLevel); ferr != nil {
			t.Fatalf("resetting flag (%s)", ferr)
		}
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if out != "no (Unknown log level (bogus))\n" {
			t.Fatalf("unexpected %q", out)
		}
	}

	t.Log("\tconfig file errors")
	{
		f, err := ioutil.TempFile("", "amq*.yaml")
		if err != nil {
			t.Fatalf("creating temp file (%s)", err)
		}
		defer os.Remove(f.Name())
		if _, err := f.WriteString("broker: [\n"); err != nil {
			t.Fatalf("writing temp file (%s)", err)
		}
		f.Close()

		setTestConfig(ts.URL)
		out, err := run(t, "autoconf", "--config", f.Name(), "orders")
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if !strings.HasPrefix(out, "no (loading config file") {
			t.Fatalf("unexpected %q", out)
		}

		setTestConfig(ts.URL)
		if _, err := run(t, "fetch", "--config", f.Name(), "size", "orders"); err == nil {
			t.Fatal("expected error")
		}
		cfgFile = ""
		configErr = nil
	}

	t.Log("\tautoconf, unknown flag")
	{
		setTestConfig(ts.URL)
		out, err := run(t, "autoconf", "--bogus")
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if !strings.HasPrefix(out, "no (unknown flag") {
			t.Fatalf("unexpected %q", out)
		}
	}

	t.Log("\tfetch, nothing listening")
	{
		setTestConfig("http://127.0.0.1:1/api/jolokia")
		if _, err := run(t, "fetch", "size", "orders"); err == nil {
			t.Fatal("expected error")
		}
	}

	viper.Reset()
}
