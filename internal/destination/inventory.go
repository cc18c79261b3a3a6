// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package destination

import (
	"context"

	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/rs/zerolog/log"
)

// broker attributes listing the destination objects
var inventoryAttributes = []string{"Queues", "Topics"}

// Inventory lists the destinations registered on broker, by kind. Names are
// deduplicated and sorted case-insensitively. A failed query is logged and
// yields an empty inventory.
func Inventory(ctx context.Context, conn jmx.Connection, ns *jmx.NamingScheme, broker string) map[Kind][]string {
	logger := log.With().Str("pkg", "destination").Str("broker", broker).Logger()
	inventory := make(map[Kind][]string)

	brokerID, err := jmx.ParseObjectName(ns.BrokerIdentifier(broker))
	if err != nil {
		logger.Warn().Err(err).Msg("broker identifier")
		return inventory
	}

	attrs, err := conn.GetAttributes(ctx, brokerID, inventoryAttributes)
	if err != nil {
		logger.Warn().Err(err).Str("mbean", brokerID.String()).Msg("listing destinations")
		return inventory
	}

	for _, attr := range inventoryAttributes {
		for _, name := range objectNames(attrs[attr]) {
			kind, err := ParseKind(name.KeyProperty(ns.DestinationTypeKey()))
			if err != nil {
				logger.Debug().Str("mbean", name.String()).Msg("skipping, not a queue or topic")
				continue
			}
			dest := name.KeyProperty(ns.DestinationNameKey())
			if dest == "" {
				continue
			}
			inventory[kind] = append(inventory[kind], dest)
		}
	}

	for kind, names := range inventory {
		inventory[kind] = normalize(names)
	}

	return inventory
}

// objectNames extracts the object names from an attribute value. Elements
// may be object names, strings, or {"objectName": "..."} maps.
func objectNames(v interface{}) []jmx.ObjectName {
	var items []interface{}
	switch t := v.(type) {
	case []jmx.ObjectName:
		return t
	case []string:
		for _, s := range t {
			items = append(items, s)
		}
	case []interface{}:
		items = t
	default:
		return nil
	}

	names := make([]jmx.ObjectName, 0, len(items))
	for _, item := range items {
		var raw string
		switch t := item.(type) {
		case jmx.ObjectName:
			names = append(names, t)
			continue
		case string:
			raw = t
		case map[string]interface{}:
			s, ok := t["objectName"].(string)
			if !ok {
				continue
			}
			raw = s
		default:
			continue
		}
		name, err := jmx.ParseObjectName(raw)
		if err != nil {
			log.Debug().Err(err).Str("pkg", "destination").Str("mbean", raw).Msg("skipping unparsable object name")
			continue
		}
		names = append(names, name)
	}

	return names
}
