// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package query

import (
	"strings"

	"github.com/circonus-labs/activemq-plugin/internal/destination"
	"github.com/pkg/errors"
)

// ErrUnknownMode the query mode is not one of size, subscribers, traffic
var ErrUnknownMode = errors.New("unknown query mode")

// Mode selects which destination attributes are queried.
type Mode int

const (
	// Size is the number of messages waiting
	Size Mode = iota
	// Subscribers is the number of consumers and producers
	Subscribers
	// Traffic is the number of messages enqueued and dequeued
	Traffic
)

// Modes lists every mode, in the order they are suggested.
var Modes = []Mode{Size, Subscribers, Traffic}

// Munin field types
const (
	Gauge  = "GAUGE"
	Derive = "DERIVE"
)

// GraphCategory groups every graph of the plugin.
const GraphCategory = "ActiveMQ"

type modeDef struct {
	name       string
	attributes []string
	fieldType  string
	title      string
	vlabel     string
	info       string
	suffix     bool
}

var modeDefs = map[Mode]modeDef{
	Size: {
		name:       "size",
		attributes: []string{"QueueSize"},
		fieldType:  Gauge,
		title:      "Queue Size",
		vlabel:     "Messages",
		info:       "The number of messages currently waiting on the queue.",
	},
	Subscribers: {
		name:       "subscribers",
		attributes: []string{"ConsumerCount", "ProducerCount"},
		fieldType:  Gauge,
		title:      "Subscribers",
		vlabel:     "Clients",
		info:       "The number of producers and consumers on a destination.",
		suffix:     true,
	},
	Traffic: {
		name:       "traffic",
		attributes: []string{"EnqueueCount", "DequeueCount"},
		fieldType:  Derive,
		title:      "Traffic",
		vlabel:     "Messages",
		info:       "The number of messages that are written to and read from the destination.",
		suffix:     true,
	},
}

// ParseMode parses a mode name, ignoring case.
func ParseMode(s string) (Mode, error) {
	for _, m := range Modes {
		if strings.EqualFold(s, modeDefs[m].name) {
			return m, nil
		}
	}
	return Size, errors.Wrapf(ErrUnknownMode, "'%s'", s)
}

func (m Mode) String() string {
	if d, ok := modeDefs[m]; ok {
		return d.name
	}
	return "unknown"
}

// Attributes returns the destination attributes queried in mode m.
func (m Mode) Attributes() []string {
	return append([]string(nil), modeDefs[m].attributes...)
}

// FieldType returns the munin field type of the mode's values.
func (m Mode) FieldType() string {
	return modeDefs[m].fieldType
}

// Counter reports whether the mode's values only ever increase.
func (m Mode) Counter() bool {
	return modeDefs[m].fieldType == Derive
}

// FieldLabel returns the label of attribute attr of d. Modes with more than
// one attribute append the attribute name, minus its Count suffix.
func (m Mode) FieldLabel(d *destination.Destination, attr string) string {
	label := d.DisplayName()
	if modeDefs[m].suffix {
		label += " " + strings.TrimSuffix(attr, "Count")
	}
	return label
}

// Suggest returns the names of all modes.
func Suggest() []string {
	names := make([]string, 0, len(Modes))
	for _, m := range Modes {
		names = append(names, m.String())
	}
	return names
}
