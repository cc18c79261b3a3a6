// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package jmx_test

import (
	"context"
	"errors"
	"testing"

	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/circonus-labs/activemq-plugin/internal/jmx/jmxtest"
	"github.com/gojuno/minimock/v3"
	"github.com/rs/zerolog"
)

// registry answers IsRegistered for a fixed set of object names.
func registry(names ...string) func(context.Context, jmx.ObjectName) (bool, error) {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return func(_ context.Context, name jmx.ObjectName) (bool, error) {
		return known[name.String()], nil
	}
}

func TestDetect(t *testing.T) {
	t.Log("Testing Detect")

	zerolog.SetGlobalLevel(zerolog.Disabled)

	const broker = "localhost"
	legacy := jmx.Legacy.BrokerIdentifier(broker)
	modern := jmx.Modern.BrokerIdentifier(broker)

	tt := []struct {
		name        string
		registered  []string
		expect      *jmx.NamingScheme
		expectCalls uint64
	}{
		{"legacy only", []string{legacy}, jmx.Legacy, 1},
		{"modern only", []string{modern}, jmx.Modern, 2},
		{"both, legacy wins", []string{legacy, modern}, jmx.Legacy, 1},
		{"neither", nil, nil, 2},
	}

	for _, tst := range tt {
		t.Logf("\t%s", tst.name)

		mc := minimock.NewController(t)
		conn := jmxtest.NewConnectionMock(mc).IsRegisteredMock.Set(registry(tst.registered...))

		ns, err := jmx.Detect(context.Background(), conn, broker)
		if tst.expect == nil {
			if !errors.Is(err, jmx.ErrSchemeUndetermined) {
				t.Fatalf("expected ErrSchemeUndetermined, got (%v)", err)
			}
			if ns != nil {
				t.Fatalf("expected no scheme, got %s", ns)
			}
		} else {
			if err != nil {
				t.Fatalf("expected no error, got (%s)", err)
			}
			if ns != tst.expect {
				t.Fatalf("expected %s, got %s", tst.expect, ns)
			}
		}

		if calls := conn.IsRegisteredAfterCounter(); calls != tst.expectCalls {
			t.Fatalf("expected %d probes, got %d", tst.expectCalls, calls)
		}

		mc.Finish()
	}
}

func TestDetectProbeError(t *testing.T) {
	t.Log("Testing Detect with failing probe")

	zerolog.SetGlobalLevel(zerolog.Disabled)

	modern := jmx.Modern.BrokerIdentifier("localhost")

	t.Log("error on legacy probe, modern registered")
	{
		mc := minimock.NewController(t)
		conn := jmxtest.NewConnectionMock(mc).IsRegisteredMock.Set(func(_ context.Context, name jmx.ObjectName) (bool, error) {
			if name.String() == modern {
				return true, nil
			}
			return false, errors.New("connection reset")
		})

		ns, err := jmx.Detect(context.Background(), conn, "localhost")
		if err != nil {
			t.Fatalf("expected no error, got (%s)", err)
		}
		if ns != jmx.Modern {
			t.Fatalf("expected modern, got %s", ns)
		}
	}

	t.Log("error on every probe")
	{
		mc := minimock.NewController(t)
		conn := jmxtest.NewConnectionMock(mc).IsRegisteredMock.Return(false, errors.New("connection refused"))

		_, err := jmx.Detect(context.Background(), conn, "localhost")
		if !errors.Is(err, jmx.ErrSchemeUndetermined) {
			t.Fatalf("expected ErrSchemeUndetermined, got (%v)", err)
		}
		if calls := conn.IsRegisteredAfterCounter(); calls != 2 {
			t.Fatalf("expected 2 probes, got %d", calls)
		}
	}
}
