// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package query runs the plugin actions against a broker.
package query

import (
	"context"
	"encoding/json"
	"math"

	"github.com/circonus-labs/activemq-plugin/internal/destination"
	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	appstats "github.com/maier/go-appstats"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Options configures a Session.
type Options struct {
	Broker   string
	Warning  string
	Critical string
}

// Pinger is implemented by connections which can verify the remote end is
// reachable before any query is made.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Session queries a single broker. The naming scheme is detected on first
// use and kept for the lifetime of the session.
type Session struct {
	conn   jmx.Connection
	opts   Options
	scheme *jmx.NamingScheme
	logger zerolog.Logger
}

// Sample is one attribute value of one destination.
type Sample struct {
	Destination *destination.Destination
	Attribute   string
	Key         string
	Value       float64
	Known       bool
}

// Field describes one series of a graph.
type Field struct {
	Key      string
	Label    string
	Type     string
	Min      int
	Warning  string
	Critical string
}

// Graph describes the graph of a mode.
type Graph struct {
	Title    string
	Category string
	Info     string
	VLabel   string
	Fields   []Field
}

// NewSession returns a session querying opts.Broker over conn.
func NewSession(conn jmx.Connection, opts Options) (*Session, error) {
	if conn == nil {
		return nil, errors.New("invalid connection (nil)")
	}
	if opts.Broker == "" {
		return nil, errors.New("invalid broker name (empty)")
	}

	return &Session{
		conn:   conn,
		opts:   opts,
		logger: log.With().Str("pkg", "query").Str("broker", opts.Broker).Logger(),
	}, nil
}

// Connect verifies the connection and detects the naming scheme. Calling it
// again after a successful detection does nothing.
func (s *Session) Connect(ctx context.Context) error {
	if s.scheme != nil {
		return nil
	}

	if p, ok := s.conn.(Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return err
		}
	}

	ns, err := jmx.Detect(ctx, s.conn, s.opts.Broker)
	if err != nil {
		return err
	}
	s.scheme = ns
	s.logger.Debug().Str("scheme", ns.String()).Msg("using naming scheme")

	return nil
}

// Scheme returns the detected naming scheme, nil before Connect.
func (s *Session) Scheme() *jmx.NamingScheme {
	return s.scheme
}

// Inventory lists the destinations known to the broker.
func (s *Session) Inventory(ctx context.Context) (map[destination.Kind][]string, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	return destination.Inventory(ctx, s.conn, s.scheme, s.opts.Broker), nil
}

// Destinations expands and resolves specs. Invalid specifiers are logged and
// skipped. A destination whose series keys collide with an earlier one is
// logged and skipped.
func (s *Session) Destinations(ctx context.Context, specs []string) ([]*destination.Destination, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}

	literals, errs := s.expand(ctx, specs)
	for _, err := range errs {
		s.logger.Error().Err(err).Msg("expanding destinations")
	}

	dests := make([]*destination.Destination, 0, len(literals))
	seen := make(map[string]*destination.Destination, len(literals))
	for _, spec := range literals {
		d, err := destination.Resolve(spec, s.scheme, s.opts.Broker)
		if err != nil {
			s.logger.Error().Err(err).Str("destination", spec).Msg("invalid destination")
			continue
		}

		// keys of a destination only differ by attribute, the prefix is enough
		prefix := d.SeriesKey("")
		if prev, ok := seen[prefix]; ok {
			if prev.Kind == d.Kind && prev.Name == d.Name {
				s.logger.Debug().Str("destination", spec).Msg("duplicate, skipping")
			} else {
				s.logger.Warn().Str("destination", spec).Str("conflicts_with", prev.Specifier()).Msg("series key collision, skipping")
				_ = appstats.IncrementInt("query.collisions")
			}
			continue
		}
		seen[prefix] = d
		dests = append(dests, d)
	}

	return dests, nil
}

// Fetch returns the current values of mode's attributes for every destination
// in specs. A destination which cannot be read yields unknown values for all
// its attributes without affecting the others.
func (s *Session) Fetch(ctx context.Context, mode Mode, specs []string) ([]Sample, error) {
	dests, err := s.Destinations(ctx, specs)
	if err != nil {
		return nil, err
	}

	attrs := mode.Attributes()
	samples := make([]Sample, 0, len(dests)*len(attrs))
	for _, d := range dests {
		_ = appstats.IncrementInt("query.destinations")
		values, err := s.conn.GetAttributes(ctx, d.Identifier, attrs)
		if err != nil {
			s.logger.Error().Err(err).Str("destination", d.Specifier()).Msg("reading attributes")
			values = nil
		}
		for _, attr := range attrs {
			sample := Sample{Destination: d, Attribute: attr, Key: d.SeriesKey(attr)}
			if raw, ok := values[attr]; ok {
				sample.Value, sample.Known = toFloat(raw)
				if !sample.Known {
					s.logger.Warn().Str("destination", d.Specifier()).Str("attribute", attr).Interface("value", raw).Msg("value is not a number")
				}
			}
			samples = append(samples, sample)
		}
	}

	return samples, nil
}

// Config returns the graph configuration of mode for every destination in specs.
func (s *Session) Config(ctx context.Context, mode Mode, specs []string) (*Graph, error) {
	dests, err := s.Destinations(ctx, specs)
	if err != nil {
		return nil, err
	}

	def := modeDefs[mode]
	g := &Graph{
		Title:    def.title,
		Category: GraphCategory,
		Info:     def.info,
		VLabel:   def.vlabel,
	}
	for _, d := range dests {
		for _, attr := range def.attributes {
			g.Fields = append(g.Fields, Field{
				Key:      d.SeriesKey(attr),
				Label:    mode.FieldLabel(d, attr),
				Type:     def.fieldType,
				Min:      0,
				Warning:  s.opts.Warning,
				Critical: s.opts.Critical,
			})
		}
	}

	return g, nil
}

// List returns the literal specifier of every destination on the broker.
func (s *Session) List(ctx context.Context) ([]string, error) {
	inventory, err := s.Inventory(ctx)
	if err != nil {
		return nil, err
	}

	var list []string
	for _, kind := range destination.Kinds {
		for _, name := range inventory[kind] {
			list = append(list, kind.Prefix()+":"+name)
		}
	}
	return list, nil
}

func (s *Session) expand(ctx context.Context, specs []string) ([]string, []error) {
	e := &destination.Expander{
		Inventory: func() map[destination.Kind][]string {
			return destination.Inventory(ctx, s.conn, s.scheme, s.opts.Broker)
		},
	}
	return e.Expand(specs)
}

// toFloat converts a numeric attribute value.
func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, !math.IsNaN(t)
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint64:
		return float64(t), true
	default:
		return 0, false
	}
}
