// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package destination

import "errors"

var (
	// ErrInvalidSpecifier a destination specifier is malformed or names an unknown type
	ErrInvalidSpecifier = errors.New("invalid destination specifier")

	// ErrInversionUnsupported the +! wildcard prefix is reserved
	ErrInversionUnsupported = errors.New("wildcard inversion (+!) is not supported")
)

// SpecifierError ties an error to the specifier which caused it.
type SpecifierError struct {
	Spec string
	Err  error
}

func (e *SpecifierError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *SpecifierError) Unwrap() error {
	return e.Err
}
