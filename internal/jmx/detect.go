// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx

import (
	"context"

	"github.com/rs/zerolog/log"
)

// detectionOrder is the order in which schemes are probed, first match wins.
var detectionOrder = []*NamingScheme{Legacy, Modern}

// Detect determines the naming scheme of the broker behind conn by probing
// for the broker object under each scheme. A failing probe counts as not
// registered. Returns ErrSchemeUndetermined if no broker object is found.
func Detect(ctx context.Context, conn Connection, broker string) (*NamingScheme, error) {
	logger := log.With().Str("pkg", "jmx").Str("broker", broker).Logger()

	for _, ns := range detectionOrder {
		name, err := ParseObjectName(ns.BrokerIdentifier(broker))
		if err != nil {
			logger.Warn().Err(err).Str("scheme", ns.String()).Msg("broker identifier")
			continue
		}

		registered, err := conn.IsRegistered(ctx, name)
		if err != nil {
			logger.Warn().Err(err).Str("scheme", ns.String()).Str("mbean", name.String()).Msg("probing broker object")
			continue
		}
		if registered {
			logger.Debug().Str("scheme", ns.String()).Msg("naming scheme detected")
			return ns, nil
		}
	}

	return nil, ErrSchemeUndetermined
}
