/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/repoquery/dialect"
	"github.com/suparena/repoquery/namedquery"
	"github.com/suparena/repoquery/processor"
	"github.com/suparena/repoquery/storagemodels"
)

var rootCmd = &cobra.Command{
	Use:           "repoquery",
	Short:         "Inspect repository query definitions",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// definitionFlags are shared by validate and explain.
type definitionFlags struct {
	file    string
	dialect string
	named   string
	bucket  string
	scope   string
}

func (f *definitionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "repository definition file (YAML)")
	cmd.Flags().StringVar(&f.dialect, "dialect", "sqlite", "statement dialect: sqlite or partiql")
	cmd.Flags().StringVar(&f.named, "named", "", "named queries file (YAML)")
	cmd.Flags().StringVar(&f.bucket, "bucket", "", "bucket of the target keyspace")
	cmd.Flags().StringVar(&f.scope, "scope", "", "scope of the target keyspace")
	_ = cmd.MarkFlagRequired("file")
}

func (f *definitionFlags) load() (*processor.Definition, dialect.Dialect, storagemodels.Keyspace, *namedquery.Registry, error) {
	ks := storagemodels.Keyspace{Bucket: f.bucket, Scope: f.scope}
	def, err := processor.LoadFile(f.file)
	if err != nil {
		return nil, nil, ks, nil, err
	}
	dia, err := dialect.ForName(f.dialect)
	if err != nil {
		return nil, nil, ks, nil, err
	}
	var named *namedquery.Registry
	if f.named != "" {
		if named, err = namedquery.LoadFile(f.named); err != nil {
			return nil, nil, ks, nil, err
		}
	}
	return def, dia, ks, named, nil
}
