// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package graph is graph subcommand to show the component dependency
// graph of a source tree.
package graph

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incdeps/subcmd/scan"
	"go.chromium.org/infra/build/incdeps/subcmd/treeopts"
)

const usage = `show component dependency graph

 $ incdeps graph -C <dir> [-format dot|digraph]

prints the component dependency graph of <dir>.

With -format dot (default), it prints Graphviz DOT. Public dependencies
are solid edges and private dependencies are dashed edges.
 $ incdeps graph -C <dir> | dot -Tsvg > deps.svg

With -format digraph, each line contains one or more components, and
the first component depends on the rest of the components on the same
line. This output can be passed to digraph command, installed by
 $ go install golang.org/x/tools/cmd/digraph@latest

See https://pkg.go.dev/golang.org/x/tools/cmd/digraph
for digraph command.
`

// Cmd returns the Command for the `graph` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "graph [-C <dir>] [-format dot|digraph]",
		ShortDesc: "show component dependency graph",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			c := &run{}
			c.init()
			return c
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	opts   treeopts.Options
	format string
	output string
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.format, "format", "dot", `output format. "dot" or "digraph"`)
	c.Flags.StringVar(&c.output, "o", "", "output filename. stdout if empty")
}

func (c *run) Run(a subcommands.Application, args []string, env subcommands.Env) int {
	ctx := cli.GetContext(a, c, env)
	err := c.run(ctx, args)
	if err != nil {
		switch {
		case errors.Is(err, flag.ErrHelp):
			fmt.Fprintf(os.Stderr, "%v\n%s\n", err, usage)
		default:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func (c *run) run(ctx context.Context, args []string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer signals.HandleInterrupt(cancel)()

	if len(args) > 0 {
		return fmt.Errorf("unexpected arguments %q: %w", args, flag.ErrHelp)
	}
	switch c.format {
	case "dot", "digraph":
	default:
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
	}
	loaded, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	p := loaded.Project
	return scan.Output(c.output, func(w io.Writer) error {
		if c.format == "digraph" {
			return p.WriteDigraph(w)
		}
		return p.WriteDOT(w)
	})
}
