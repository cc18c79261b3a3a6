// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx

import "context"

// Connection is an established, authenticated management session with a broker.
type Connection interface {
	// IsRegistered reports whether an object with the given name exists.
	IsRegistered(ctx context.Context, name ObjectName) (bool, error)
	// GetAttributes returns the values of the requested attributes. Attributes
	// the object does not expose are absent from the result.
	GetAttributes(ctx context.Context, name ObjectName, attributes []string) (map[string]interface{}, error)
}
