// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
)

// ComponentModel is a snapshot of a component.
type ComponentModel struct {
	Root       string   `json:"root,omitempty"`
	Name       string   `json:"name,omitempty"`
	Type       string   `json:"type"`
	Files      []string `json:"files,omitempty"`
	PubDeps    []string `json:"pub_deps,omitempty"`
	PrivDeps   []string `json:"priv_deps,omitempty"`
	PubIncl    []string `json:"pub_incl,omitempty"`
	PrivIncl   []string `json:"priv_incl,omitempty"`
	Predefined bool     `json:"predefined,omitempty"`
}

// Model is a snapshot of the project, suitable for JSON encoding.
type Model struct {
	Components []ComponentModel    `json:"components"`
	Pipeline   []string            `json:"pipeline"`
	Unknown    []string            `json:"unknown,omitempty"`
	Ambiguous  map[string][]string `json:"ambiguous,omitempty"`
	Outside    []string            `json:"outside,omitempty"`
	Cycles     [][]string          `json:"cycles,omitempty"`
}

func (p *Project) labels(ids Set[ComponentID]) []string {
	var labels []string
	for id := range ids {
		labels = append(labels, p.components[id].Label())
	}
	slices.Sort(labels)
	return labels
}

func (p *Project) componentModel(id ComponentID) ComponentModel {
	c := &p.components[id]
	m := ComponentModel{
		Root:       c.Root,
		Name:       c.Name,
		Type:       c.Type.String(),
		PubDeps:    p.labels(c.PubDeps),
		PrivDeps:   p.labels(c.PrivDeps),
		PubIncl:    c.PubIncl.Sorted(),
		PrivIncl:   c.PrivIncl.Sorted(),
		Predefined: c.Predefined,
	}
	for _, fid := range c.Files {
		m.Files = append(m.Files, p.files[fid].Path)
	}
	slices.Sort(m.Files)
	return m
}

// Model returns a snapshot of the project.
func (p *Project) Model() Model {
	m := Model{
		Unknown: p.Unknown.Sorted(),
		Outside: slices.Clone(p.Outside),
		Cycles:  p.Cycles,
	}
	for _, id := range p.sortedComponents() {
		m.Components = append(m.Components, p.componentModel(id))
	}
	for _, id := range p.Pipeline {
		m.Pipeline = append(m.Pipeline, p.components[id].Root)
	}
	if len(p.Ambiguous) > 0 {
		m.Ambiguous = make(map[string][]string, len(p.Ambiguous))
		for k, v := range p.Ambiguous {
			m.Ambiguous[k] = slices.Clone(v)
		}
	}
	return m
}

// String returns a text dump of the component.
func (m ComponentModel) String() string {
	var sb strings.Builder
	label := m.Root
	if m.Predefined {
		label = "@" + m.Name
	}
	fmt.Fprintf(&sb, "%s (%s)", label, m.Type)
	if !m.Predefined {
		fmt.Fprintf(&sb, " %d files", len(m.Files))
	}
	for _, l := range []struct {
		name   string
		values []string
	}{
		{"pub_deps", m.PubDeps},
		{"priv_deps", m.PrivDeps},
		{"pub_incl", m.PubIncl},
		{"priv_incl", m.PrivIncl},
	} {
		if len(l.values) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n  %s: %s", l.name, strings.Join(l.values, " "))
	}
	return sb.String()
}

// WriteText writes each component and the pipeline to w.
func (p *Project) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	m := p.Model()
	for _, c := range m.Components {
		fmt.Fprintf(bw, "%s\n", c)
	}
	fmt.Fprintf(bw, "Pipeline:\n")
	for _, root := range m.Pipeline {
		fmt.Fprintf(bw, "%s\n", root)
	}
	return bw.Flush()
}

// WriteDigraph writes one line per component: the component followed by
// its dependencies, for https://pkg.go.dev/golang.org/x/tools/cmd/digraph
func (p *Project) WriteDigraph(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, id := range p.sortedComponents() {
		c := &p.components[id]
		deps := append(p.labels(c.PubDeps), p.labels(c.PrivDeps)...)
		slices.Sort(deps)
		fmt.Fprintln(bw, strings.Join(append([]string{c.Label()}, deps...), " "))
	}
	return bw.Flush()
}

// WriteDOT writes the component graph in Graphviz DOT language.
// Vertices are component ids labeled with Label. Edges go from
// a consumer to its dependency; private dependencies are dashed.
func (p *Project) WriteDOT(w io.Writer) error {
	g := graph.New(func(id ComponentID) ComponentID { return id }, graph.Directed())
	for _, id := range p.sortedComponents() {
		c := &p.components[id]
		shape := "box"
		switch {
		case c.Predefined:
			shape = "ellipse"
		case c.Type == Executable:
			shape = "doubleoctagon"
		case c.Type == UnitTest:
			shape = "note"
		}
		err := g.AddVertex(id,
			graph.VertexAttribute("label", c.Label()),
			graph.VertexAttribute("shape", shape))
		if err != nil {
			return fmt.Errorf("add %s: %w", c.Label(), err)
		}
	}
	for _, id := range p.sortedComponents() {
		c := &p.components[id]
		for _, dep := range c.PubDeps.Sorted() {
			if err := g.AddEdge(id, dep); err != nil {
				return fmt.Errorf("add %s -> %s: %w", c.Label(), p.components[dep].Label(), err)
			}
		}
		for _, dep := range c.PrivDeps.Sorted() {
			if err := g.AddEdge(id, dep, graph.EdgeAttribute("style", "dashed")); err != nil {
				return fmt.Errorf("add %s -> %s: %w", c.Label(), p.components[dep].Label(), err)
			}
		}
	}
	return draw.DOT(g, w)
}
