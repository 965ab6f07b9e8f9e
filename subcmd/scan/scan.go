// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package scan is scan subcommand to print the dependency model of
// a source tree.
package scan

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/subcmd/treeopts"
	"go.chromium.org/infra/build/incdeps/ui"
)

const usage = `scan source tree and print its dependency model

 $ incdeps scan -C <dir>

walks <dir>, finds components (directories with include/ or src/,
and their test/ directories), resolves includes of every C/C++ file
and prints each component with its type, public/private dependencies
and public/private include paths, followed by the build pipeline.

Ambiguous includes, unknown includes, files outside of any component
and dependency cycles are reported on stderr.
`

// Cmd returns the Command for the `scan` subcommand provided by this package.
func Cmd() *subcommands.Command {
	return &subcommands.Command{
		UsageLine: "scan [-C <dir>] [-format text|json] [-o <file>]",
		ShortDesc: "scan source tree and print dependency model",
		LongDesc:  usage,
		CommandRun: func() subcommands.CommandRun {
			r := &run{}
			r.init()
			return r
		},
	}
}

type run struct {
	subcommands.CommandRunBase

	opts            treeopts.Options
	format          string
	output          string
	failOnAmbiguous bool
	failOnUnknown   bool
}

func (c *run) init() {
	c.opts.RegisterFlags(&c.Flags)
	c.Flags.StringVar(&c.format, "format", "text", `output format. "text" or "json"`)
	c.Flags.StringVar(&c.output, "o", "", "output filename. stdout if empty")
	c.Flags.BoolVar(&c.failOnAmbiguous, "fail_on_ambiguous", false, "fail if there are ambiguous includes")
	c.Flags.BoolVar(&c.failOnUnknown, "fail_on_unknown", false, "fail if there are unknown includes")
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
	var write func(io.Writer, *project.Project) error
	switch c.format {
	case "text":
		write = func(w io.Writer, p *project.Project) error {
			return p.WriteText(w)
		}
	case "json":
		write = writeJSON
	default:
		return fmt.Errorf("unknown format %q: %w", c.format, flag.ErrHelp)
	}

	loaded, err := c.opts.Load(ctx)
	if err != nil {
		return err
	}
	p := loaded.Project
	Report(ui.Default, p)

	err = Output(c.output, func(w io.Writer) error {
		return write(w, p)
	})
	if err != nil {
		return err
	}
	return c.check(p)
}

func (c *run) check(p *project.Project) error {
	var errs []error
	if c.failOnAmbiguous && len(p.Ambiguous) > 0 {
		errs = append(errs, fmt.Errorf("%d ambiguous includes", len(p.Ambiguous)))
	}
	if c.failOnUnknown && len(p.Unknown) > 0 {
		errs = append(errs, fmt.Errorf("%d unknown includes", len(p.Unknown)))
	}
	return errors.Join(errs...)
}

func writeJSON(w io.Writer, p *project.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(p.Model())
}

// Output calls fn with a writer for fname, or stdout if fname is empty.
func Output(fname string, fn func(io.Writer) error) error {
	if fname == "" {
		w := bufio.NewWriter(os.Stdout)
		if err := fn(w); err != nil {
			return err
		}
		return w.Flush()
	}
	f, err := os.Create(fname)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Report prints diagnostics of p to u.
func Report(u ui.UI, p *project.Project) {
	collisions := p.Collisions()
	keys := make([]string, 0, len(p.Ambiguous))
	for k := range p.Ambiguous {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		u.Warningf("ambiguous include %s could point to %s; included from %s",
			ui.SGR(ui.Bold, k), strings.Join(collisions[k], " "), strings.Join(p.Ambiguous[k], " "))
	}
	for _, text := range p.Unknown.Sorted() {
		u.Warningf("unknown include %s", ui.SGR(ui.Bold, text))
	}
	for _, fname := range p.Outside {
		u.Warningf("found file %s outside of any component", fname)
	}
	for _, cycle := range p.Cycles {
		u.Errorf("dependency cycle: %s", strings.Join(cycle, " "))
	}
}
