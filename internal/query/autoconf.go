// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package query

import (
	"context"
	"fmt"
	"io"

	"github.com/circonus-labs/activemq-plugin/internal/destination"
	"github.com/pkg/errors"
)

// AutoConfResult is the outcome of an autoconf probe.
type AutoConfResult struct {
	Connected bool
	Checked   int
	Failed    []string
}

// AutoConf reports whether every destination in specs exists on the broker.
// Destinations which are invalid (wildcards included) or not registered are
// listed as failed.
// It never returns an error, an unreachable broker is reported as not
// connected.
func (s *Session) AutoConf(ctx context.Context, specs []string) AutoConfResult {
	if err := s.Connect(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("autoconf")
		return AutoConfResult{}
	}

	literals, errs := s.expand(ctx, specs)

	result := AutoConfResult{Connected: true, Checked: len(literals) + len(errs)}
	for _, err := range errs {
		s.logger.Error().Err(err).Msg("expanding destinations")
		var se *destination.SpecifierError
		if errors.As(err, &se) {
			result.Failed = append(result.Failed, se.Spec)
			continue
		}
		result.Failed = append(result.Failed, err.Error())
	}
	for _, spec := range literals {
		d, err := destination.Resolve(spec, s.scheme, s.opts.Broker)
		if err != nil {
			s.logger.Error().Err(err).Str("destination", spec).Msg("invalid destination")
			result.Failed = append(result.Failed, spec)
			continue
		}
		ok, err := s.conn.IsRegistered(ctx, d.Identifier)
		if err != nil {
			s.logger.Error().Err(err).Str("destination", spec).Msg("checking destination")
		}
		if !ok {
			result.Failed = append(result.Failed, spec)
		}
	}

	return result
}

// WriteTo writes the munin autoconf answer.
func (r AutoConfResult) WriteTo(w io.Writer) (int64, error) {
	var n int
	var err error
	switch {
	case !r.Connected:
		n, err = fmt.Fprintln(w, "no (unable to connect)")
	case r.Checked == 0:
		n, err = fmt.Fprintln(w, "yes (no destinations checked)")
	case len(r.Failed) == 0:
		n, err = fmt.Fprintln(w, "yes")
	default:
		n, err = fmt.Fprintln(w, "no (failed destinations:")
		total := int64(n)
		for _, spec := range r.Failed {
			if err != nil {
				return total, err
			}
			n, err = fmt.Fprintln(w, spec)
			total += int64(n)
		}
		if err != nil {
			return total, err
		}
		n, err = fmt.Fprintln(w, ")")
		return total + int64(n), err
	}
	return int64(n), err
}
