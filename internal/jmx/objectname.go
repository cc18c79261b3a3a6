// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx

import (
	"strings"

	"github.com/pkg/errors"
)

// ObjectName is a parsed management object identifier of the form
// domain:key=value[,key=value...]. Key order is preserved as given.
type ObjectName struct {
	domain string
	props  []keyProperty
}

type keyProperty struct {
	key    string
	value  string // raw value, quoted values keep their quotes
	quoted bool
}

const (
	keyIllegalChars      = ":,=*?\n"
	unquotedIllegalChars = ":,=\"*?\n"
)

// ParseObjectName parses s into an ObjectName. Patterns (wildcards) are not
// accepted, every name must identify exactly one object.
func ParseObjectName(s string) (ObjectName, error) {
	var on ObjectName

	idx := strings.Index(s, ":")
	if idx < 0 {
		return on, errors.Wrapf(ErrMalformedObjectName, "missing domain separator (%s)", s)
	}

	on.domain = s[:idx]
	if strings.ContainsAny(on.domain, "*?\n") {
		return on, errors.Wrapf(ErrMalformedObjectName, "invalid domain (%s)", s)
	}

	rest := s[idx+1:]
	if rest == "" {
		return on, errors.Wrapf(ErrMalformedObjectName, "no key properties (%s)", s)
	}

	seen := make(map[string]bool)
	for len(rest) > 0 {
		eq := strings.Index(rest, "=")
		if eq < 0 {
			return on, errors.Wrapf(ErrMalformedObjectName, "key without value (%s)", s)
		}
		key := rest[:eq]
		if key == "" || strings.ContainsAny(key, keyIllegalChars) {
			return on, errors.Wrapf(ErrMalformedObjectName, "invalid key (%s)", s)
		}
		if seen[key] {
			return on, errors.Wrapf(ErrMalformedObjectName, "duplicate key %q (%s)", key, s)
		}
		seen[key] = true
		rest = rest[eq+1:]

		prop := keyProperty{key: key}
		if strings.HasPrefix(rest, `"`) {
			end, err := quotedEnd(rest)
			if err != nil {
				return on, errors.Wrapf(err, "key %q (%s)", key, s)
			}
			prop.value = rest[:end]
			prop.quoted = true
			rest = rest[end:]
			if rest != "" && rest[0] != ',' {
				return on, errors.Wrapf(ErrMalformedObjectName, "trailing characters after quoted value of %q (%s)", key, s)
			}
		} else {
			end := strings.Index(rest, ",")
			if end < 0 {
				end = len(rest)
			}
			prop.value = rest[:end]
			if prop.value == "" || strings.ContainsAny(prop.value, unquotedIllegalChars) {
				return on, errors.Wrapf(ErrMalformedObjectName, "invalid value for key %q (%s)", key, s)
			}
			rest = rest[end:]
		}
		on.props = append(on.props, prop)

		if rest != "" {
			rest = rest[1:] // skip ','
			if rest == "" {
				return on, errors.Wrapf(ErrMalformedObjectName, "trailing separator (%s)", s)
			}
		}
	}

	return on, nil
}

// quotedEnd returns the index just past the closing quote of the quoted
// value at the start of s.
func quotedEnd(s string) (int, error) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if i+1 >= len(s) {
				return 0, errors.Wrap(ErrMalformedObjectName, "unterminated escape in quoted value")
			}
			switch s[i+1] {
			case '\\', '"', '*', '?', 'n':
			default:
				return 0, errors.Wrap(ErrMalformedObjectName, "invalid escape in quoted value")
			}
			i++
		case '\n':
			return 0, errors.Wrap(ErrMalformedObjectName, "newline in quoted value")
		case '"':
			return i + 1, nil
		}
	}
	return 0, errors.Wrap(ErrMalformedObjectName, "unterminated quoted value")
}

func unquote(v string) string {
	v = v[1 : len(v)-1]
	var sb strings.Builder
	for i := 0; i < len(v); i++ {
		if v[i] == '\\' && i+1 < len(v) {
			i++
			if v[i] == 'n' {
				sb.WriteByte('\n')
				continue
			}
		}
		sb.WriteByte(v[i])
	}
	return sb.String()
}

// MustParseObjectName is like ParseObjectName but panics on error.
func MustParseObjectName(s string) ObjectName {
	on, err := ParseObjectName(s)
	if err != nil {
		panic(err)
	}
	return on
}

// Domain returns the domain part of the name.
func (on ObjectName) Domain() string {
	return on.domain
}

// KeyProperty returns the value of key, unquoted, or "" if the key is absent.
func (on ObjectName) KeyProperty(key string) string {
	for _, p := range on.props {
		if p.key == key {
			if p.quoted {
				return unquote(p.value)
			}
			return p.value
		}
	}
	return ""
}

// Keys returns the property keys in their original order.
func (on ObjectName) Keys() []string {
	keys := make([]string, len(on.props))
	for i, p := range on.props {
		keys[i] = p.key
	}
	return keys
}

// IsZero reports whether on is the zero ObjectName.
func (on ObjectName) IsZero() bool {
	return on.domain == "" && len(on.props) == 0
}

func (on ObjectName) String() string {
	if on.IsZero() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(on.domain)
	sb.WriteByte(':')
	for i, p := range on.props {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(p.key)
		sb.WriteByte('=')
		sb.WriteString(p.value)
	}
	return sb.String()
}
