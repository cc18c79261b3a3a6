// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package destination

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// WildcardMarker prefixes specifiers whose name is a regular expression.
const WildcardMarker = "+"

// InventoryFunc returns the destinations known to the broker, by kind.
type InventoryFunc func() map[Kind][]string

// Expander turns wildcard specifiers into literal ones.
type Expander struct {
	Inventory InventoryFunc
}

// Expand returns specs with every wildcard specifier replaced by the literal
// specifiers of the matching destinations. Literal specifiers pass through
// unchanged and in order. A wildcard which cannot be expanded is dropped and
// reported in the returned errors as a *SpecifierError, the remaining
// specifiers are unaffected.
// The inventory is fetched at most once, and only when a wildcard is present.
func (e *Expander) Expand(specs []string) ([]string, []error) {
	var (
		inventory map[Kind][]string
		fetched   bool
		errs      []error
	)

	result := make([]string, 0, len(specs))
	for _, spec := range specs {
		if !strings.HasPrefix(spec, WildcardMarker) {
			result = append(result, spec)
			continue
		}

		kind, rx, err := parseWildcard(spec)
		if err != nil {
			errs = append(errs, &SpecifierError{Spec: spec, Err: err})
			continue
		}

		if !fetched {
			if e.Inventory != nil {
				inventory = e.Inventory()
			}
			fetched = true
		}

		for _, name := range normalize(inventory[kind]) {
			if rx.MatchString(name) {
				result = append(result, kind.Prefix()+":"+name)
			}
		}
	}

	return result, errs
}

// parseWildcard splits a wildcard specifier into its kind and a case
// insensitive, fully anchored pattern.
func parseWildcard(spec string) (Kind, *regexp.Regexp, error) {
	pattern := strings.TrimPrefix(spec, WildcardMarker)
	if strings.HasPrefix(pattern, "!") {
		return Queue, nil, errors.Wrapf(ErrInvalidSpecifier, "%s (%s)", ErrInversionUnsupported, spec)
	}

	kind := Queue
	for _, k := range Kinds {
		prefix := k.Prefix() + ":"
		if len(pattern) >= len(prefix) && strings.EqualFold(pattern[:len(prefix)], prefix) {
			kind = k
			pattern = pattern[len(prefix):]
			break
		}
	}

	// compile alone first, an unbalanced group could otherwise escape the anchors
	if _, err := regexp.Compile(pattern); err != nil {
		return Queue, nil, errors.Wrapf(ErrInvalidSpecifier, "invalid wildcard (%s): %s", spec, err)
	}
	rx, err := regexp.Compile(`(?i)^(?:` + pattern + `)$`)
	if err != nil {
		return Queue, nil, errors.Wrapf(ErrInvalidSpecifier, "invalid wildcard (%s): %s", spec, err)
	}

	return kind, rx, nil
}

// normalize returns names without case-insensitive duplicates (first
// occurrence kept), sorted case-insensitively.
func normalize(names []string) []string {
	if len(names) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(names))
	list := make([]string, 0, len(names))
	for _, name := range names {
		k := strings.ToLower(name)
		if seen[k] {
			continue
		}
		seen[k] = true
		list = append(list, name)
	}

	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i]) < strings.ToLower(list[j])
	})

	return list
}
