/*
Copyright (c) The wisun-br-linux Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rpl

import (
	"net/netip"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type fakeRouter struct {
	mu      sync.Mutex
	added   []netip.Prefix
	removed []netip.Prefix
	failAdd bool
}

func (f *fakeRouter) AddRoute(prefix netip.Prefix, via netip.Addr) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAdd {
		return assert.AnError
	}
	f.added = append(f.added, prefix)
	return nil
}

func (f *fakeRouter) DelRoute(prefix netip.Prefix) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, prefix)
	return nil
}

func mustPrefix(t *testing.T, s string) netip.Prefix {
	p, err := netip.ParsePrefix(s)
	require.NoError(t, err)
	return p
}

func mustAddr(t *testing.T, s string) netip.Addr {
	a, err := netip.ParseAddr(s)
	require.NoError(t, err)
	return a
}

func TestDODAGIngestTargetInsertsNewTargetAndInjectsRoute(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	parent := mustAddr(t, "fe80::1")

	d.IngestTarget(prefix, parent, 60, 1, time.Now())

	tgt, ok := d.Target(prefix)
	require.True(t, ok)
	require.Len(t, tgt.Transits, 1)
	assert.Equal(t, parent, tgt.Transits[0].Parent)
	assert.Equal(t, []netip.Prefix{prefix}, router.added)
}

func TestDODAGIngestTargetReplacesOnNewerPathSequence(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	parent := mustAddr(t, "fe80::1")
	now := time.Now()

	d.IngestTarget(prefix, parent, 60, 5, now)
	d.IngestTarget(prefix, parent, 120, 6, now.Add(time.Second))

	tgt, ok := d.Target(prefix)
	require.True(t, ok)
	require.Len(t, tgt.Transits, 1)
	assert.Equal(t, uint8(6), tgt.Transits[0].PathSequence)
}

func TestDODAGIngestTargetDropsOnStalePathSequence(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	parent := mustAddr(t, "fe80::1")
	now := time.Now()

	d.IngestTarget(prefix, parent, 60, 10, now)
	d.IngestTarget(prefix, parent, 120, 9, now.Add(time.Second))

	tgt, ok := d.Target(prefix)
	require.True(t, ok)
	require.Len(t, tgt.Transits, 1)
	assert.Equal(t, uint8(10), tgt.Transits[0].PathSequence, "a stale path sequence must not overwrite the newer one")
}

func TestDODAGIngestTargetAddsSecondTransitFromDifferentParent(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	now := time.Now()

	d.IngestTarget(prefix, mustAddr(t, "fe80::1"), 60, 1, now)
	d.IngestTarget(prefix, mustAddr(t, "fe80::2"), 60, 1, now)

	tgt, ok := d.Target(prefix)
	require.True(t, ok)
	assert.Len(t, tgt.Transits, 2)
}

func TestDODAGGCExpiresTransitAndRemovesTargetWhenEmpty(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	now := time.Now()

	d.IngestTarget(prefix, mustAddr(t, "fe80::1"), 10, 1, now)
	require.Equal(t, 1, d.Len())

	d.GC(now.Add(11 * time.Second))

	_, ok := d.Target(prefix)
	assert.False(t, ok)
	assert.Equal(t, 0, d.Len())
	assert.Equal(t, []netip.Prefix{prefix}, router.removed)
}

func TestDODAGIngestTargetInjectsRouteViaMockRouteInjector(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewMockRouteInjector(ctrl)
	prefix := mustPrefix(t, "2001:db8::1/128")
	parent := mustAddr(t, "fe80::1")
	router.EXPECT().AddRoute(prefix, parent).Return(nil)

	d := NewDODAG(router, time.Second)
	d.IngestTarget(prefix, parent, 60, 1, time.Now())

	_, ok := d.Target(prefix)
	assert.True(t, ok)
}

func TestDODAGGCRemovesRouteViaMockRouteInjector(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	router := NewMockRouteInjector(ctrl)
	prefix := mustPrefix(t, "2001:db8::1/128")
	parent := mustAddr(t, "fe80::1")
	now := time.Now()
	router.EXPECT().AddRoute(prefix, parent).Return(nil)
	router.EXPECT().DelRoute(prefix).Return(nil)

	d := NewDODAG(router, time.Second)
	d.IngestTarget(prefix, parent, 10, 1, now)
	d.GC(now.Add(11 * time.Second))

	_, ok := d.Target(prefix)
	assert.False(t, ok)
}

func TestDODAGGCKeepsUnexpiredTransits(t *testing.T) {
	router := &fakeRouter{}
	d := NewDODAG(router, time.Second)
	prefix := mustPrefix(t, "2001:db8::1/128")
	now := time.Now()

	d.IngestTarget(prefix, mustAddr(t, "fe80::1"), 100, 1, now)
	d.GC(now.Add(5 * time.Second))

	tgt, ok := d.Target(prefix)
	require.True(t, ok)
	assert.Len(t, tgt.Transits, 1)
	assert.Empty(t, router.removed)
}
