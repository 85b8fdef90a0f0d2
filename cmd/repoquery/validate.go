/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"github.com/spf13/cobra"

	"github.com/suparena/repoquery/processor"
)

var validateFlags definitionFlags

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Derive and compile every method of a repository definition",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		def, dia, ks, named, err := validateFlags.load()
		if err != nil {
			return err
		}
		if err := processor.Validate(def, dia, ks, named); err != nil {
			return err
		}
		cmd.Printf("%s: %d methods ok (%s)\n", def.Repository, len(def.Methods), dia.Name())
		return nil
	},
}

func init() {
	validateFlags.register(validateCmd)
	rootCmd.AddCommand(validateCmd)
}
