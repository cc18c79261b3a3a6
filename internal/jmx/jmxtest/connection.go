// Copyright © 2019 Circonus, Inc. <support@circonus.com>
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

// Package jmxtest provides a minimock based jmx.Connection for tests.
package jmxtest

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/circonus-labs/activemq-plugin/internal/jmx"
	"github.com/gojuno/minimock/v3"
)

// ConnectionMock implements jmx.Connection
type ConnectionMock struct {
	t minimock.Tester

	IsRegisteredMock  mConnectionMockIsRegistered
	GetAttributesMock mConnectionMockGetAttributes
}

// NewConnectionMock returns a mock for jmx.Connection
func NewConnectionMock(t minimock.Tester) *ConnectionMock {
	m := &ConnectionMock{t: t}
	if controller, ok := t.(minimock.MockController); ok {
		controller.RegisterMocker(m)
	}

	m.IsRegisteredMock = mConnectionMockIsRegistered{mock: m}
	m.GetAttributesMock = mConnectionMockGetAttributes{mock: m}

	return m
}

var _ jmx.Connection = (*ConnectionMock)(nil)

type mConnectionMockIsRegistered struct {
	mock    *ConnectionMock
	fn      func(ctx context.Context, name jmx.ObjectName) (bool, error)
	counter uint64
}

// Set uses given function f to mock the Connection.IsRegistered method
func (mmIsRegistered *mConnectionMockIsRegistered) Set(f func(ctx context.Context, name jmx.ObjectName) (bool, error)) *ConnectionMock {
	mmIsRegistered.fn = f
	return mmIsRegistered.mock
}

// Return sets up the mock to return the given values regardless of arguments
func (mmIsRegistered *mConnectionMockIsRegistered) Return(b bool, err error) *ConnectionMock {
	return mmIsRegistered.Set(func(context.Context, jmx.ObjectName) (bool, error) {
		return b, err
	})
}

// IsRegistered implements jmx.Connection
func (mmIsRegistered *ConnectionMock) IsRegistered(ctx context.Context, name jmx.ObjectName) (bool, error) {
	atomic.AddUint64(&mmIsRegistered.IsRegisteredMock.counter, 1)

	if mmIsRegistered.IsRegisteredMock.fn == nil {
		mmIsRegistered.t.Fatalf("Unexpected call to ConnectionMock.IsRegistered. %v", name)
		return false, nil
	}

	return mmIsRegistered.IsRegisteredMock.fn(ctx, name)
}

// IsRegisteredAfterCounter returns a count of finished ConnectionMock.IsRegistered invocations
func (mmIsRegistered *ConnectionMock) IsRegisteredAfterCounter() uint64 {
	return atomic.LoadUint64(&mmIsRegistered.IsRegisteredMock.counter)
}

type mConnectionMockGetAttributes struct {
	mock    *ConnectionMock
	fn      func(ctx context.Context, name jmx.ObjectName, attributes []string) (map[string]interface{}, error)
	counter uint64
}

// Set uses given function f to mock the Connection.GetAttributes method
func (mmGetAttributes *mConnectionMockGetAttributes) Set(f func(ctx context.Context, name jmx.ObjectName, attributes []string) (map[string]interface{}, error)) *ConnectionMock {
	mmGetAttributes.fn = f
	return mmGetAttributes.mock
}

// Return sets up the mock to return the given values regardless of arguments
func (mmGetAttributes *mConnectionMockGetAttributes) Return(m map[string]interface{}, err error) *ConnectionMock {
	return mmGetAttributes.Set(func(context.Context, jmx.ObjectName, []string) (map[string]interface{}, error) {
		return m, err
	})
}

// GetAttributes implements jmx.Connection
func (mmGetAttributes *ConnectionMock) GetAttributes(ctx context.Context, name jmx.ObjectName, attributes []string) (map[string]interface{}, error) {
	atomic.AddUint64(&mmGetAttributes.GetAttributesMock.counter, 1)

	if mmGetAttributes.GetAttributesMock.fn == nil {
		mmGetAttributes.t.Fatalf("Unexpected call to ConnectionMock.GetAttributes. %v %v", name, attributes)
		return nil, nil
	}

	return mmGetAttributes.GetAttributesMock.fn(ctx, name, attributes)
}

// GetAttributesAfterCounter returns a count of finished ConnectionMock.GetAttributes invocations
func (mmGetAttributes *ConnectionMock) GetAttributesAfterCounter() uint64 {
	return atomic.LoadUint64(&mmGetAttributes.GetAttributesMock.counter)
}

// MinimockFinish checks that every mocked method was called at least once
func (m *ConnectionMock) MinimockFinish() {
	if !m.minimockDone() {
		if m.IsRegisteredMock.fn != nil && m.IsRegisteredAfterCounter() < 1 {
			m.t.Error("Expected call to ConnectionMock.IsRegistered")
		}
		if m.GetAttributesMock.fn != nil && m.GetAttributesAfterCounter() < 1 {
			m.t.Error("Expected call to ConnectionMock.GetAttributes")
		}
	}
}

// MinimockWait waits for all mocked methods to be called the expected number of times
func (m *ConnectionMock) MinimockWait(timeout time.Duration) {
	timeoutCh := time.After(timeout)
	for {
		if m.minimockDone() {
			return
		}
		select {
		case <-timeoutCh:
			m.MinimockFinish()
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func (m *ConnectionMock) minimockDone() bool {
	done := true
	if m.IsRegisteredMock.fn != nil && m.IsRegisteredAfterCounter() < 1 {
		done = false
	}
	if m.GetAttributesMock.fn != nil && m.GetAttributesAfterCounter() < 1 {
		done = false
	}
	return done
}
