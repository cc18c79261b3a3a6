// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package output

import (
	"encoding/json"
	"io"
	"math"

	"github.com/circonus-labs/activemq-plugin/internal/query"
	"github.com/circonus-labs/activemq-plugin/internal/tags"
	cgm "github.com/circonus-labs/circonus-gometrics/v3"
	"github.com/pkg/errors"
)

// circonus metric types
const (
	typeUint64 = "L"
	typeDouble = "n"
)

// CirconusMetrics converts samples into stream tagged circonus metrics.
// Unknown values are null.
func CirconusMetrics(samples []query.Sample, opts Options) cgm.Metrics {
	metrics := make(cgm.Metrics, len(samples))
	for _, s := range samples {
		d := s.Destination
		mtags := tags.ForDestination(opts.Broker, d.Kind.Prefix(), d.Name, opts.BaseTags)
		name := tags.MetricNameWithStreamTags(s.Key, mtags)

		switch {
		case !s.Known:
			metrics[name] = cgm.Metric{Type: typeDouble, Value: nil}
		case s.Value >= 0 && s.Value == math.Trunc(s.Value) && s.Value < math.MaxInt64:
			metrics[name] = cgm.Metric{Type: typeUint64, Value: uint64(s.Value)}
		default:
			metrics[name] = cgm.Metric{Type: typeDouble, Value: s.Value}
		}
	}
	return metrics
}

// CirconusValues writes samples as circonus agent plugin JSON.
func CirconusValues(w io.Writer, mode query.Mode, samples []query.Sample, opts Options) error {
	if err := json.NewEncoder(w).Encode(CirconusMetrics(samples, opts)); err != nil {
		return errors.Wrapf(err, "encoding %s metrics", mode)
	}
	return nil
}
