// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package output

import (
	"bufio"
	"io"
	"strconv"

	"github.com/circonus-labs/activemq-plugin/internal/query"
)

// MuninUnknown is the munin value of a sample which could not be read.
const MuninUnknown = "U"

// MuninValues writes `<key>.value <v>` lines.
func MuninValues(w io.Writer, samples []query.Sample) error {
	bw := bufio.NewWriter(w)
	for _, s := range samples {
		v := MuninUnknown
		if s.Known {
			v = strconv.FormatFloat(s.Value, 'f', -1, 64)
		}
		_, _ = bw.WriteString(s.Key + ".value " + v + "\n")
	}
	return bw.Flush()
}

// MuninConfig writes the graph and field configuration of g.
func MuninConfig(w io.Writer, g *query.Graph) error {
	bw := bufio.NewWriter(w)
	line := func(s string) {
		_, _ = bw.WriteString(s + "\n")
	}

	line("graph_title " + g.Title)
	line("graph_category " + g.Category)
	line("graph_info " + g.Info)
	line("graph_vlabel " + g.VLabel)

	for _, f := range g.Fields {
		line("")
		line(f.Key + ".label " + f.Label)
		line(f.Key + ".type " + f.Type)
		line(f.Key + ".min " + strconv.Itoa(f.Min))
		if f.Warning != "" {
			line(f.Key + ".warning " + f.Warning)
		}
		if f.Critical != "" {
			line(f.Key + ".critical " + f.Critical)
		}
	}

	return bw.Flush()
}
