// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lookup is lookup subcommand to show how include texts resolve.
package lookup

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"

	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/subcmd/treeopts"
)

const usage = `show how include texts resolve

 $ incdeps lookup -C <dir> <include>...

prints the file or predefined component each <include> resolves to,
as an include without a match relative to the including file.
An ambiguous include prints all candidates.

It fails if some <include> is neither resolved nor a known header.
`

// Cmd returns the Command for the `lookup` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "lookup [-C <dir>] <include>...",
		ShortDesc: "show how include texts resolve",
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

	opts treeopts.Options
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
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
	if len(args) == 0 {
		return fmt.Errorf("no include given: %w", flag.ErrHelp)
	}
	loaded, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	n := printResults(os.Stdout, loaded.Project, args)
	if n > 0 {
		return fmt.Errorf("%d includes not resolved", n)
	}
	return nil
}

// printResults prints lookup results of texts, and returns the number
// of texts neither resolved nor known.
func printResults(w io.Writer, p *project.Project, texts []string) int {
	n := 0
	for _, text := range texts {
		r := p.Lookup(text)
		switch {
		case r.Ambiguous():
			fmt.Fprintf(w, "%s: ambiguous: %s\n", text, strings.Join(r.Candidates, " "))
			n++
		case r.Predefined != "":
			fmt.Fprintf(w, "%s: component %s\n", text, r.Predefined)
		case r.Path != "":
			var root string
			if id, ok := p.FileByPath(r.Path); ok {
				root = p.ComponentOf(id).Root
			}
			fmt.Fprintf(w, "%s: %s (%s)\n", text, r.Path, root)
		case r.Known:
			fmt.Fprintf(w, "%s: known header\n", text)
		default:
			fmt.Fprintf(w, "%s: not found\n", text)
			n++
		}
	}
	return n
}
