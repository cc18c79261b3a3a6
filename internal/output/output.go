// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package output renders query results for munin, circonus, and prometheus.
package output

import (
	"fmt"
	"io"

	"github.com/circonus-labs/activemq-plugin/internal/config"
	"github.com/circonus-labs/activemq-plugin/internal/query"
	"github.com/circonus-labs/activemq-plugin/internal/tags"
	"github.com/pkg/errors"
)

// Options are the rendering settings shared by all formats.
type Options struct {
	Broker   string
	BaseTags tags.Tags
}

// Values writes samples in the requested format.
func Values(w io.Writer, format string, mode query.Mode, samples []query.Sample, opts Options) error {
	switch format {
	case config.FormatMunin:
		return MuninValues(w, samples)
	case config.FormatCirconus:
		return CirconusValues(w, mode, samples, opts)
	case config.FormatPrometheus:
		return PrometheusValues(w, mode, samples, opts)
	default:
		return errors.Errorf("unknown output format (%s)", format)
	}
}

// Lines writes one item per line.
func Lines(w io.Writer, items []string) error {
	for _, item := range items {
		if _, err := fmt.Fprintln(w, item); err != nil {
			return err
		}
	}
	return nil
}
