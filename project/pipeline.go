// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package project

import (
	"context"
	"slices"
	"sort"

	"github.com/dominikbraun/graph"

	"go.chromium.org/infra/build/incdeps/o11y/clog"
)

// dependencyGraph returns a graph of non-predefined component roots
// with an edge from each dependency to its consumer.
func (p *Project) dependencyGraph() graph.Graph[string, string] {
	g := graph.New(graph.StringHash, graph.Directed())
	for _, cid := range p.sortedComponents() {
		c := &p.components[cid]
		if c.Predefined {
			continue
		}
		// vertices are unique roots.
		_ = g.AddVertex(c.Root)
	}
	for i := range p.components {
		c := &p.components[i]
		if c.Predefined {
			continue
		}
		for _, deps := range []Set[ComponentID]{c.PubDeps, c.PrivDeps} {
			for dep := range deps {
				dc := &p.components[dep]
				if dc.Predefined {
					continue
				}
				// both vertices exist, so the only error is
				// graph.ErrEdgeAlreadyExists.
				_ = g.AddEdge(dc.Root, c.Root)
			}
		}
	}
	return g
}

// buildPipeline orders components so that each comes after
// all of its dependencies.
func (p *Project) buildPipeline(ctx context.Context) {
	g := p.dependencyGraph()
	order, err := graph.StableTopologicalSort(g, func(a, b string) bool { return a < b })
	if err == nil {
		p.Pipeline = make([]ComponentID, 0, len(order))
		for _, root := range order {
			p.Pipeline = append(p.Pipeline, p.compIndex[root])
		}
		return
	}
	clog.Warningf(ctx, "no pipeline: %v", err)
	sccs, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		clog.Errorf(ctx, "failed to find cycles: %v", err)
		return
	}
	for _, scc := range sccs {
		if len(scc) < 2 {
			continue
		}
		slices.Sort(scc)
		p.Cycles = append(p.Cycles, scc)
	}
	sort.Slice(p.Cycles, func(i, j int) bool {
		return p.Cycles[i][0] < p.Cycles[j][0]
	})
	for _, c := range p.Cycles {
		clog.Warningf(ctx, "dependency cycle: %q", c)
	}
}
