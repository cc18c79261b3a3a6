// Copyright © 2017 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package release holds the build metadata of the plugin
package release

import (
	"expvar"
	"fmt"
	"runtime"
)

const (
	// NAME is the name of this application, also the base name of its config file
	NAME = "activemq-plugin"
	// ENVPREFIX is the environment variable prefix
	ENVPREFIX = "AMQ"
)

// set with -ldflags "-X" at build time
var (
	COMMIT  = "none"
	DATE    = "unknown"
	TAG     = ""
	VERSION = "dev"
)

// Info describes the running build
type Info struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	Tag       string `json:"tag,omitempty"`
	Platform  string `json:"platform"`
}

func init() {
	expvar.Publish("release", expvar.Func(func() interface{} { return Get() }))
}

// Get returns the build metadata
func Get() Info {
	return Info{
		Name:      NAME,
		Version:   VERSION,
		Commit:    COMMIT,
		BuildDate: DATE,
		Tag:       TAG,
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String is the --version line
func (i Info) String() string {
	s := fmt.Sprintf("%s v%s - commit: %s, date: %s", i.Name, i.Version, i.Commit, i.BuildDate)
	if i.Tag != "" {
		s += ", tag: " + i.Tag
	}
	return s + " (" + i.Platform + ")"
}

// UserAgent is sent with requests to jolokia and the agent
func UserAgent() string {
	return NAME + "/" + VERSION + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}
