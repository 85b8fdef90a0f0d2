/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/suparena/repoquery/processor"
)

var explainFlags definitionFlags

var explainCmd = &cobra.Command{
	Use:   "explain",
	Short: "Print the strategy and statement of every repository method",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		def, dia, ks, named, err := explainFlags.load()
		if err != nil {
			return err
		}
		reports, err := processor.Analyze(def, dia, ks, named)
		if err != nil {
			return err
		}

		failed := 0
		for _, r := range reports {
			cmd.Println(r.Signature.Key().String())
			if r.Err != nil {
				failed++
				cmd.Printf("  error:     %v\n", r.Err)
				continue
			}
			cmd.Printf("  shape:     %s\n", r.Descriptor.Shape())
			cmd.Printf("  strategy:  %s\n", r.Plan.Strategy)
			cmd.Printf("  statement: %s\n", r.Plan.Text())
			if r.Plan.Tally {
				cmd.Println("  count:     tallied from rows")
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d methods failed", failed, len(reports))
		}
		return nil
	},
}

func init() {
	explainFlags.register(explainCmd)
	rootCmd.AddCommand(explainCmd)
}
