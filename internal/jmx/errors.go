// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx

import "errors"

var (
	// ErrMalformedObjectName the identifier does not follow the domain:key=value[,key=value] syntax
	ErrMalformedObjectName = errors.New("malformed object name")

	// ErrSchemeUndetermined no naming scheme's broker object is registered
	ErrSchemeUndetermined = errors.New("unable to determine naming scheme, no broker registered")
)

// ErrRemoteQuery the management server answered a request with an error
var ErrRemoteQuery = errors.New("remote query failed")
