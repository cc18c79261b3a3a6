// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package destination parses, resolves, and expands ActiveMQ destination
// specifiers of the form [+][type:]name.
package destination

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/pkg/errors"
)

var (
	// type defaults to queue, only the name is required
	specifierRx = regexp.MustCompile(`(?s)^(?:(\w+):)?(.*)$`)
	// runs of characters not allowed in series keys
	seriesKeyRx = regexp.MustCompile(`[^a-zA-Z0-9]+`)
)

// Destination is a resolved queue or topic.
type Destination struct {
	Kind       Kind
	Name       string
	Identifier jmx.ObjectName
}

// Parse splits a literal specifier into its kind and name.
func Parse(spec string) (Kind, string, error) {
	m := specifierRx.FindStringSubmatch(spec)
	if m == nil {
		return Queue, "", errors.Wrapf(ErrInvalidSpecifier, "invalid destination (%s)", spec)
	}

	kind := Queue
	if m[1] != "" {
		k, err := ParseKind(m[1])
		if err != nil {
			return Queue, "", errors.Wrapf(err, "destination (%s)", spec)
		}
		kind = k
	}

	name := strings.TrimSpace(m[2])
	if name == "" {
		return Queue, "", errors.Wrapf(ErrInvalidSpecifier, "no destination name given (%s)", spec)
	}

	return kind, name, nil
}

// Resolve parses spec and binds it to the management object of the
// destination on broker, using naming scheme ns.
func Resolve(spec string, ns *jmx.NamingScheme, broker string) (*Destination, error) {
	kind, name, err := Parse(spec)
	if err != nil {
		return nil, err
	}

	id, err := jmx.ParseObjectName(ns.DestinationIdentifier(broker, kind.String(), name))
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidSpecifier, "unable to create object name for destination (%s): %s", spec, err)
	}

	return &Destination{Kind: kind, Name: name, Identifier: id}, nil
}

// Specifier returns the literal specifier of d (type:name).
func (d *Destination) Specifier() string {
	return d.Kind.Prefix() + ":" + d.Name
}

// SeriesKey returns the metric series key for attribute attr of d. Every run
// of non alphanumeric characters in the name is collapsed to one underscore.
func (d *Destination) SeriesKey(attr string) string {
	return fmt.Sprintf("%s_%s_%s", d.Kind, sanitize(d.Name), attr)
}

// DisplayName returns a human readable label for d.
func (d *Destination) DisplayName() string {
	return fmt.Sprintf("%s: %s", d.Kind, d.Name)
}

func sanitize(s string) string {
	return seriesKeyRx.ReplaceAllString(s, "_")
}
