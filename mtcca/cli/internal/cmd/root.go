// Package cmd implements the CLI commands for the mtc certification
// authority.
package cmd

import (
	"github.com/mtc-sys/mtc-go/cli"
	"github.com/mtc-sys/mtc-go/codec"
	"github.com/spf13/cobra"
)

// RootCmd represents the base "mtcca" command when called without any
// subcommands.
var RootCmd = cli.NewRootCommand("mtcca",
	"Merkle Tree Certificate CA reference implementation in Go",
	`mtcca runs a Merkle Tree Certificate CA: it commits assertion
batches into Merkle trees, signs sliding validity windows over the
recent tree heads, and emits compact inclusion-proof certificates.`)

// Execute runs RootCmd with the subcommands registered by this
// package's init functions.
func Execute() {
	cli.ExecuteRoot(RootCmd)
}

func init() {
	RootCmd.PersistentFlags().Bool("no-validation", false,
		"Disable object validation during construction")
	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noValidation, _ := cmd.Flags().GetBool("no-validation"); noValidation {
			codec.SetValidation(false)
		}
	}
}
