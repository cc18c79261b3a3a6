// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package destination

import (
	"strings"

	"github.com/pkg/errors"
)

// Kind is the type of a destination.
type Kind int

const (
	// Queue point-to-point destination
	Queue Kind = iota
	// Topic publish/subscribe destination
	Topic
)

// Kinds lists every destination kind in presentation order.
var Kinds = []Kind{Queue, Topic}

// ParseKind parses "queue" or "topic", ignoring case.
func ParseKind(s string) (Kind, error) {
	switch {
	case strings.EqualFold(s, "queue"):
		return Queue, nil
	case strings.EqualFold(s, "topic"):
		return Topic, nil
	default:
		return Queue, errors.Wrapf(ErrInvalidSpecifier, "unknown destination type '%s'", s)
	}
}

// String returns the form used in management object names (Queue, Topic).
func (k Kind) String() string {
	if k == Topic {
		return "Topic"
	}
	return "Queue"
}

// Prefix returns the form used in destination specifiers (queue, topic).
func (k Kind) Prefix() string {
	return strings.ToLower(k.String())
}
