// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// incdeps reconstructs the build structure of a C/C++ source tree
// from its include directives.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"runtime"
	"runtime/debug"
	"strings"

	log "github.com/golang/glog"
	"github.com/maruel/subcommands"
	"go.chromium.org/luci/common/cli"
	"go.chromium.org/luci/common/system/signals"

	"go.chromium.org/infra/build/incdeps/subcmd/graph"
	"go.chromium.org/infra/build/incdeps/subcmd/help"
	"go.chromium.org/infra/build/incdeps/subcmd/lookup"
	"go.chromium.org/infra/build/incdeps/subcmd/scan"
	"go.chromium.org/infra/build/incdeps/subcmd/version"
)

const incdepsVersion = "v0.1.0"

func main() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(out, "global flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	os.Exit(incdepsMain(flag.Args()))
}

func getApplication(ctx context.Context) *cli.Application {
	return &cli.Application{
		Name:  "incdeps",
		Title: "C/C++ include dependency analyzer",
		Context: func(context.Context) context.Context {
			return ctx
		},
		Commands: []*subcommands.Command{
			scan.Cmd(),
			graph.Cmd(),
			lookup.Cmd(),

			help.Cmd(),
			version.Cmd(fmt.Sprintf("incdeps %s", incdepsVersion)),
		},
	}
}

func incdepsMain(args []string) int {
	ctx, cancel := context.WithCancel(context.Background())
	defer signals.HandleInterrupt(cancel)()

	// Flush the log on exit to not lose any messages.
	defer log.Flush()

	// Print a stack trace when a panic occurs.
	defer func() {
		if r := recover(); r != nil {
			const size = 64 << 10
			buf := make([]byte, size)
			buf = buf[:runtime.Stack(buf, false)]
			log.Fatalf("panic: %v\n%s", r, buf)
		}
	}()

	// Print build information to the log.
	buildinfo, ok := debug.ReadBuildInfo()
	if ok {
		log.Infof("main module: %s %s", moduleInfo(&buildinfo.Main), vcsInfo(buildinfo))
		if log.V(1) {
			for _, m := range buildinfo.Deps {
				log.Infof("deps module: %s", moduleInfo(m))
			}
		}
	}
	return subcommands.Run(getApplication(ctx), args)
}

func moduleInfo(m *debug.Module) string {
	if m == nil {
		return "<nil>"
	}
	return fmt.Sprintf("path:%s version:%s sum:%s replace:%s", m.Path, m.Version, m.Sum, moduleInfo(m.Replace))
}

func vcsInfo(buildinfo *debug.BuildInfo) string {
	m := make(map[string]string)
	for _, bs := range buildinfo.Settings {
		if strings.HasPrefix(bs.Key, "vcs.") {
			m[bs.Key] = bs.Value
		}
	}
	return fmt.Sprintf("vcs[revision=%s time=%s modified=%s]", m["vcs.revision"], m["vcs.time"], m["vcs.modified"])
}
