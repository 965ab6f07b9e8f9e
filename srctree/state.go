// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package srctree

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"time"

	"github.com/klauspost/compress/zstd"
	"google.golang.org/protobuf/encoding/protowire"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
	"go.chromium.org/infra/build/incdeps/scandeps"
)

const defaultStateFile = ".incdeps_state"

// State is the cached scan result of a tree, keyed by slash separated
// path relative to the tree root.
//
// It is stored as zstd compressed protobuf wire format:
//
//	message State { repeated Entry entries = 1; }
//	message Entry {
//	  string name = 1;
//	  int64 size = 2;
//	  int64 mtime = 3; // unix nano
//	  repeated Include includes = 4;
//	}
//	message Include { string text = 1; bool angle = 2; }
type State struct {
	entries map[string]stateEntry
}

type stateEntry struct {
	size     int64
	mtime    time.Time
	includes []scandeps.Include
}

// NewState returns an empty state.
func NewState() *State {
	return &State{entries: make(map[string]stateEntry)}
}

// Len returns the number of entries.
func (s *State) Len() int {
	return len(s.entries)
}

// Includes returns cached includes of name if size and mtime match.
func (s *State) Includes(name string, size int64, mtime time.Time) ([]scandeps.Include, bool) {
	e, ok := s.entries[name]
	if !ok || e.size != size || !e.mtime.Equal(mtime) {
		return nil, false
	}
	return e.includes, true
}

func (s *State) get(name string) []scandeps.Include {
	return s.entries[name].includes
}

// Set records includes of name.
func (s *State) Set(name string, size int64, mtime time.Time, includes []scandeps.Include) {
	s.entries[name] = stateEntry{
		size:     size,
		mtime:    mtime,
		includes: includes,
	}
}

// LoadState loads state from fname.
// It returns an error wrapping fs.ErrNotExist if fname doesn't exist.
func LoadState(ctx context.Context, fname string) (*State, error) {
	f, err := os.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", fname, err)
	}
	defer r.Close()
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read state %s: %w", fname, err)
	}
	s, err := unmarshalState(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse state %s: %w", fname, err)
	}
	clog.Infof(ctx, "load state %s: %d entries", fname, s.Len())
	return s, nil
}

// Save persists state in fname.
func (s *State) Save(ctx context.Context, fname string) error {
	tmpname := fname + ".tmp"
	f, err := os.Create(tmpname)
	if err != nil {
		return err
	}
	w, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return err
	}
	if _, err := w.Write(s.marshal()); err != nil {
		w.Close()
		f.Close()
		return err
	}
	if err := w.Close(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpname, fname); err != nil {
		return err
	}
	clog.Infof(ctx, "save state %s: %d entries", fname, s.Len())
	return nil
}

func (s *State) marshal() []byte {
	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	var b []byte
	for _, name := range names {
		e := s.entries[name]
		var eb []byte
		eb = protowire.AppendTag(eb, 1, protowire.BytesType)
		eb = protowire.AppendString(eb, name)
		eb = protowire.AppendTag(eb, 2, protowire.VarintType)
		eb = protowire.AppendVarint(eb, uint64(e.size))
		eb = protowire.AppendTag(eb, 3, protowire.VarintType)
		eb = protowire.AppendVarint(eb, uint64(e.mtime.UnixNano()))
		for _, inc := range e.includes {
			var ib []byte
			ib = protowire.AppendTag(ib, 1, protowire.BytesType)
			ib = protowire.AppendString(ib, inc.Text)
			if inc.Angle {
				ib = protowire.AppendTag(ib, 2, protowire.VarintType)
				ib = protowire.AppendVarint(ib, protowire.EncodeBool(true))
			}
			eb = protowire.AppendTag(eb, 4, protowire.BytesType)
			eb = protowire.AppendBytes(eb, ib)
		}
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, eb)
	}
	return b
}

var errWireType = errors.New("unexpected wire type")

// fields calls fn for each field of a message in b.
// fn returns the number of bytes consumed from v, or a negative value
// to skip the field.
func fields(b []byte, fn func(num protowire.Number, typ protowire.Type, v []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
		}
		b = b[n:]
	}
	return nil
}

func consumeBytes(typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, errWireType
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeVarint(typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, errWireType
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func unmarshalState(b []byte) (*State, error) {
	s := NewState()
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		if num != 1 {
			return -1, nil
		}
		eb, n, err := consumeBytes(typ, v)
		if err != nil {
			return 0, err
		}
		name, e, err := unmarshalEntry(eb)
		if err != nil {
			return 0, err
		}
		s.entries[name] = e
		return n, nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func unmarshalEntry(b []byte) (string, stateEntry, error) {
	var name string
	var e stateEntry
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n, err := consumeBytes(typ, v)
			name = string(s)
			return n, err
		case 2:
			x, n, err := consumeVarint(typ, v)
			e.size = int64(x)
			return n, err
		case 3:
			x, n, err := consumeVarint(typ, v)
			e.mtime = time.Unix(0, int64(x))
			return n, err
		case 4:
			ib, n, err := consumeBytes(typ, v)
			if err != nil {
				return 0, err
			}
			inc, err := unmarshalInclude(ib)
			if err != nil {
				return 0, err
			}
			e.includes = append(e.includes, inc)
			return n, nil
		}
		return -1, nil
	})
	if err != nil {
		return "", stateEntry{}, err
	}
	if name == "" {
		return "", stateEntry{}, fmt.Errorf("entry without name: %w", fs.ErrInvalid)
	}
	return name, e, nil
}

func unmarshalInclude(b []byte) (scandeps.Include, error) {
	var inc scandeps.Include
	err := fields(b, func(num protowire.Number, typ protowire.Type, v []byte) (int, error) {
		switch num {
		case 1:
			s, n, err := consumeBytes(typ, v)
			inc.Text = string(s)
			return n, err
		case 2:
			x, n, err := consumeVarint(typ, v)
			inc.Angle = protowire.DecodeBool(x)
			return n, err
		}
		return -1, nil
	})
	return inc, err
}

// loadState loads state from fname, or returns an empty state
// if fname is missing or broken.
func loadState(ctx context.Context, fname string) *State {
	s, err := LoadState(ctx, fname)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return NewState()
	case err != nil:
		clog.Warningf(ctx, "ignore scan state: %v", err)
		return NewState()
	}
	return s
}
