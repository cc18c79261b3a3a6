// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package defaults

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// BrokerName is the ActiveMQ broker name used in management object names
	BrokerName = "localhost"

	// JolokiaHost is the host running the broker's web console
	JolokiaHost = "localhost"

	// JolokiaPort is the port of the broker's web console (jetty)
	JolokiaPort = 8161

	// JolokiaPath is where the broker's web console exposes the jolokia agent
	JolokiaPath = "/api/jolokia"

	// JolokiaTimeout bounds each request to the jolokia agent
	JolokiaTimeout = "10s"

	// JolokiaRetries is the number of times a failed request is retried
	JolokiaRetries = 2

	// JolokiaMaxResponseSize limits how much of a response body is read
	JolokiaMaxResponseSize = "10MiB"

	// JolokiaInsecure disables TLS certificate verification
	JolokiaInsecure = false

	// OutputFormat for fetched values (munin|circonus|prometheus)
	OutputFormat = "munin"

	// AgentGroup is the plugin name fetched metrics are submitted under
	AgentGroup = "activemq"

	// Debug is false by default
	Debug = false

	// LogLevel set to warn by default, stdout belongs to the plugin protocol
	LogLevel = "warn"

	// LogPretty colored/formatted output to stderr
	LogPretty = false
)

var (
	// BasePath is the "base" directory
	//
	// expected installation structure:
	// base        (e.g. /opt/circonus/activemq)
	//   /bin      (e.g. /opt/circonus/activemq/bin)
	//   /etc      (e.g. /opt/circonus/activemq/etc)
	BasePath = ""

	// EtcPath returns the default etc directory within base directory
	EtcPath = "" // (e.g. /opt/circonus/activemq/etc)

	// MuninConfPath is searched for a configuration file after EtcPath
	MuninConfPath = "/etc/munin/plugin-conf.d"

	// PathError is set when the path to the binary could not be determined,
	// BasePath and EtcPath are empty in that case
	PathError error
)

func init() {
	var exePath string
	var resolvedExePath string
	var err error

	exePath, err = os.Executable()
	if err == nil {
		resolvedExePath, err = filepath.EvalSymlinks(exePath)
		if err == nil {
			BasePath = filepath.Clean(filepath.Join(filepath.Dir(resolvedExePath), "..")) // e.g. /opt/circonus/activemq
		}
	}

	if err != nil {
		PathError = fmt.Errorf("unable to determine path to binary: %v", err)
		return
	}

	EtcPath = filepath.Join(BasePath, "etc")
}
