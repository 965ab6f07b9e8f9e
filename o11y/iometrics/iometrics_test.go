// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package iometrics

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestIOMetrics(t *testing.T) {
	m := New("srctree")
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.OpsDone(nil)
			m.ReadDone(100, nil)
		}()
	}
	wg.Wait()
	m.OpsDone(errors.New("stat failed"))
	m.ReadDone(0, errors.New("mmap failed"))
	m.WriteDone(42, nil)

	want := Stats{
		Ops:     11,
		OpsErrs: 1,
		ROps:    11,
		RBytes:  1000,
		RErrs:   1,
		WOps:    1,
		WBytes:  42,
	}
	if diff := cmp.Diff(want, m.Stats()); diff != "" {
		t.Errorf("Stats diff -want +got:\n%s", diff)
	}
}

func TestNil(t *testing.T) {
	var m *IOMetrics
	m.OpsDone(nil)
	m.ReadDone(1, nil)
	m.WriteDone(1, nil)
	if got := m.Stats(); got != (Stats{}) {
		t.Errorf("nil Stats()=%v; want zero", got)
	}
	if got := m.Name(); got != "<nil>" {
		t.Errorf("nil Name()=%q; want %q", got, "<nil>")
	}
}
