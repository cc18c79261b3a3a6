// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx

import "testing"

func TestBrokerIdentifier(t *testing.T) {
	t.Log("Testing BrokerIdentifier")

	tt := []struct {
		name   string
		scheme *NamingScheme
		expect string
	}{
		{"legacy", Legacy, "org.apache.activemq:BrokerName=localhost,Type=Broker"},
		{"modern", Modern, "org.apache.activemq:type=Broker,brokerName=localhost"},
	}

	for _, tst := range tt {
		t.Logf("\t%s", tst.name)
		if id := tst.scheme.BrokerIdentifier("localhost"); id != tst.expect {
			t.Fatalf("expected %q, got %q", tst.expect, id)
		}
		if _, err := ParseObjectName(tst.scheme.BrokerIdentifier("localhost")); err != nil {
			t.Fatalf("expected parsable identifier, got (%s)", err)
		}
	}
}

func TestDestinationIdentifier(t *testing.T) {
	t.Log("Testing DestinationIdentifier")

	tt := []struct {
		name   string
		scheme *NamingScheme
		expect string
	}{
		{"legacy", Legacy, "org.apache.activemq:BrokerName=localhost,Type=Queue,Destination=orders"},
		{"modern", Modern, "org.apache.activemq:type=Broker,brokerName=localhost,destinationType=Queue,destinationName=orders"},
	}

	for _, tst := range tt {
		t.Logf("\t%s", tst.name)
		id := tst.scheme.DestinationIdentifier("localhost", "Queue", "orders")
		if id != tst.expect {
			t.Fatalf("expected %q, got %q", tst.expect, id)
		}

		on, err := ParseObjectName(id)
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if v := on.KeyProperty(tst.scheme.DestinationTypeKey()); v != "Queue" {
			t.Fatalf("expected type Queue via %s, got %q", tst.scheme.DestinationTypeKey(), v)
		}
		if v := on.KeyProperty(tst.scheme.DestinationNameKey()); v != "orders" {
			t.Fatalf("expected name orders via %s, got %q", tst.scheme.DestinationNameKey(), v)
		}
	}
}

func TestKeys(t *testing.T) {
	t.Log("Testing DestinationTypeKey/DestinationNameKey")

	if Legacy.DestinationTypeKey() != "Type" || Legacy.DestinationNameKey() != "Destination" {
		t.Fatalf("unexpected legacy keys %s/%s", Legacy.DestinationTypeKey(), Legacy.DestinationNameKey())
	}
	if Modern.DestinationTypeKey() != "destinationType" || Modern.DestinationNameKey() != "destinationName" {
		t.Fatalf("unexpected modern keys %s/%s", Modern.DestinationTypeKey(), Modern.DestinationNameKey())
	}
}

func TestSchemeString(t *testing.T) {
	t.Log("Testing String")

	if Legacy.String() != "legacy" {
		t.Fatalf("expected legacy, got %s", Legacy.String())
	}
	if Modern.String() != "modern" {
		t.Fatalf("expected modern, got %s", Modern.String())
	}
	if (&NamingScheme{}).String() != "unknown" {
		t.Fatal("expected unknown for zero scheme")
	}
}
