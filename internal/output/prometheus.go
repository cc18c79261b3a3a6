// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package output

import (
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/circonus-labs/activemq-plugin/internal/query"
	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// PrometheusPrefix is prepended to every metric family name.
const PrometheusPrefix = "activemq_"

// PrometheusFamilies groups samples into one metric family per attribute, in
// the order the attributes are queried. Unknown values are NaN.
func PrometheusFamilies(mode query.Mode, samples []query.Sample, opts Options) []*dto.MetricFamily {
	mtype := dto.MetricType_GAUGE
	if mode.Counter() {
		mtype = dto.MetricType_COUNTER
	}

	families := make(map[string]*dto.MetricFamily)
	attrs := mode.Attributes()
	for _, attr := range attrs {
		families[attr] = &dto.MetricFamily{
			Name: proto.String(PrometheusPrefix + snakeCase(attr)),
			Help: proto.String(attr + " of ActiveMQ destinations"),
			Type: mtype.Enum(),
		}
	}

	for _, s := range samples {
		mf, ok := families[s.Attribute]
		if !ok {
			continue
		}

		v := math.NaN()
		if s.Known {
			v = s.Value
		}

		m := &dto.Metric{
			Label: []*dto.LabelPair{
				{Name: proto.String("broker"), Value: proto.String(opts.Broker)},
				{Name: proto.String("destination"), Value: proto.String(s.Destination.Name)},
				{Name: proto.String("type"), Value: proto.String(s.Destination.Kind.Prefix())},
			},
		}
		if mode.Counter() {
			m.Counter = &dto.Counter{Value: proto.Float64(v)}
		} else {
			m.Gauge = &dto.Gauge{Value: proto.Float64(v)}
		}
		mf.Metric = append(mf.Metric, m)
	}

	list := make([]*dto.MetricFamily, 0, len(attrs))
	for _, attr := range attrs {
		if len(families[attr].Metric) > 0 {
			list = append(list, families[attr])
		}
	}
	return list
}

// PrometheusValues writes samples in the prometheus text exposition format.
func PrometheusValues(w io.Writer, mode query.Mode, samples []query.Sample, opts Options) error {
	for _, mf := range PrometheusFamilies(mode, samples, opts) {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrapf(err, "writing %s", mf.GetName())
		}
	}
	return nil
}

// snakeCase converts an attribute name, QueueSize becomes queue_size.
func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]) && unicode.IsUpper(runes[i-1]))) {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
