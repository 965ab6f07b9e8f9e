// Copyright 2023 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package treeopts provides flags shared by subcommands that load a
// source tree.
package treeopts

import (
	"context"
	"flag"
	"fmt"
	"path/filepath"

	"go.chromium.org/luci/common/flag/stringmapflag"

	"go.chromium.org/infra/build/incdeps/config"
	"go.chromium.org/infra/build/incdeps/project"
	"go.chromium.org/infra/build/incdeps/scandeps"
	"go.chromium.org/infra/build/incdeps/srctree"
	"go.chromium.org/infra/build/incdeps/ui"
)

// Options are options to load a project.
type Options struct {
	Dir         string
	ConfigFile  string
	ConfigFlags stringmapflag.Value
	Tree        srctree.Option
}

// RegisterFlags registers flags for the options.
func (o *Options) RegisterFlags(flagSet *flag.FlagSet) {
	flagSet.StringVar(&o.Dir, "C", ".", "root directory of the source tree")
	flagSet.StringVar(&o.ConfigFile, "config", config.DefaultFilename, "config filename (relative to -C)")
	if o.ConfigFlags == nil {
		o.ConfigFlags = stringmapflag.Value{}
	}
	flagSet.Var(&o.ConfigFlags, "config_flag", "key=value passed to the config as ctx.flags. can be repeated")
	o.Tree.RegisterFlags(flagSet)
}

// Loaded is a loaded project with its tree and config.
type Loaded struct {
	Config  *config.Config
	Tree    *srctree.Tree
	Project *project.Project
}

// Load loads the config and the tree, and builds the project model.
func (o *Options) Load(ctx context.Context) (*Loaded, error) {
	configFile := o.ConfigFile
	if !filepath.IsAbs(configFile) {
		configFile = filepath.Join(o.Dir, configFile)
	}
	spin := ui.Default.NewSpinner()
	spin.Start("loading config %s", o.ConfigFile)
	cfg, err := config.Load(ctx, configFile, o.ConfigFlags)
	spin.Stop(err)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	tree, err := srctree.New(o.Dir, cfg, o.Tree)
	if err != nil {
		return nil, err
	}
	known := scandeps.NewKnownHeaders(cfg.KnownHeaders...)
	spin = ui.Default.NewSpinner()
	spin.Start("scanning %s", tree.Root())
	p, err := project.New(ctx, tree, project.Options{
		PredefinedComponents: cfg.PredefinedComponents,
		IsKnownHeader:        known.IsKnown,
		IsPackage:            cfg.IsPackage,
	})
	if err != nil {
		spin.Stop(err)
		return nil, err
	}
	st := tree.Stats()
	spin.Done("%d components %d files (%d scanned, %d cached)", st.Components, st.Files, st.Scanned, st.Cached)
	return &Loaded{
		Config:  cfg,
		Tree:    tree,
		Project: p,
	}, nil
}
