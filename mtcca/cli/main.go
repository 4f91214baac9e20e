// Executable mtcca is the Merkle Tree Certificate CA: it issues
// batches, emits certificates and verifies them.
package main

import (
	"github.com/mtc-sys/mtc-go/mtcca/cli/internal/cmd"
)

func main() {
	cmd.Execute()
}
