// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package jmx maps ActiveMQ's management object naming conventions onto a
// single addressing scheme and detects which convention a broker uses.
package jmx

import "fmt"

// Domain is the management domain ActiveMQ registers its objects under.
const Domain = "org.apache.activemq"

type schemeVariant int

const (
	legacyVariant schemeVariant = iota + 1
	modernVariant
)

// NamingScheme is the management object naming convention of a broker.
// ActiveMQ changed the convention in 5.8; Legacy and Modern are the only
// values.
type NamingScheme struct {
	variant schemeVariant
}

var (
	// Legacy is the naming scheme used by ActiveMQ up to 5.8.
	Legacy = &NamingScheme{variant: legacyVariant}
	// Modern is the naming scheme used by ActiveMQ since 5.8.
	Modern = &NamingScheme{variant: modernVariant}
)

// BrokerIdentifier returns the name of the broker's management object.
func (ns *NamingScheme) BrokerIdentifier(broker string) string {
	switch ns.variant {
	case legacyVariant:
		return fmt.Sprintf("%s:BrokerName=%s,Type=Broker", Domain, broker)
	case modernVariant:
		return fmt.Sprintf("%s:type=Broker,brokerName=%s", Domain, broker)
	default:
		panic(fmt.Sprintf("jmx: invalid naming scheme (%d)", ns.variant))
	}
}

// DestinationIdentifier returns the name of a destination's management object.
// typ is the identifier form of the destination type (Queue or Topic).
func (ns *NamingScheme) DestinationIdentifier(broker, typ, name string) string {
	switch ns.variant {
	case legacyVariant:
		return fmt.Sprintf("%s:BrokerName=%s,Type=%s,Destination=%s", Domain, broker, typ, name)
	case modernVariant:
		return fmt.Sprintf("%s:type=Broker,brokerName=%s,destinationType=%s,destinationName=%s", Domain, broker, typ, name)
	default:
		panic(fmt.Sprintf("jmx: invalid naming scheme (%d)", ns.variant))
	}
}

// DestinationTypeKey is the key property carrying the destination type.
func (ns *NamingScheme) DestinationTypeKey() string {
	switch ns.variant {
	case legacyVariant:
		return "Type"
	case modernVariant:
		return "destinationType"
	default:
		panic(fmt.Sprintf("jmx: invalid naming scheme (%d)", ns.variant))
	}
}

// DestinationNameKey is the key property carrying the destination name.
func (ns *NamingScheme) DestinationNameKey() string {
	switch ns.variant {
	case legacyVariant:
		return "Destination"
	case modernVariant:
		return "destinationName"
	default:
		panic(fmt.Sprintf("jmx: invalid naming scheme (%d)", ns.variant))
	}
}

func (ns *NamingScheme) String() string {
	switch ns.variant {
	case legacyVariant:
		return "legacy"
	case modernVariant:
		return "modern"
	default:
		return "unknown"
	}
}
