package cmd

import (
	"github.com/mtc-sys/mtc-go/cli"
)

func init() {
	RootCmd.AddCommand(cli.NewVersionCommand("mtcca"))
}
