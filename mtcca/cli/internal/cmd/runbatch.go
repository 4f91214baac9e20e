package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/mtc-sys/mtc-go/application"
	"github.com/mtc-sys/mtc-go/codec"
	"github.com/mtc-sys/mtc-go/mtc"
	"github.com/mtc-sys/mtc-go/storage/kv/leveldbkv"
	"github.com/spf13/cobra"
)

// runBatchCmd represents the run-batch command
var runBatchCmd = &cobra.Command{
	Use:   "run-batch",
	Short: "Commit an assertion batch and sign the rotated validity window",
	Long: `Run one issuance batch as a CA: read the JSON assertion list, build
the batch's Merkle tree, rotate and sign the validity window, and
publish the batch under the publication root.

Without --batch-number the number after the latest published batch is
used.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := cmd.Flag("config").Value.String()
		assertionsPath := cmd.Flag("assertions").Value.String()
		repeat, _ := cmd.Flags().GetInt("repeat")
		runBatch(config, assertionsPath, cmd.Flag("batch-number").Value.String(), repeat)
	},
}

func init() {
	RootCmd.AddCommand(runBatchCmd)
	runBatchCmd.Flags().StringP("config", "c", "config.toml", "Path to the CA configuration file")
	runBatchCmd.Flags().StringP("assertions", "a", "", "Path to the JSON file for the assertion list")
	runBatchCmd.Flags().StringP("batch-number", "b", "",
		"Batch number to generate; leave blank to continue from the latest batch")
	runBatchCmd.Flags().IntP("repeat", "r", 1,
		"Duplicate the assertion list this many times before issuing (stress testing)")
	runBatchCmd.MarkFlagRequired("assertions")
}

func runBatch(confPath, assertionsPath, batchFlag string, repeat int) {
	conf, err := application.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}
	if !conf.Validation {
		codec.SetValidation(false)
	}

	key, err := application.LoadSigningKey(conf.SigningKeyPath)
	if err != nil {
		log.Fatal(err)
	}

	assertions, err := application.ReadAssertionsInput(assertionsPath)
	if err != nil {
		log.Fatal(err)
	}
	if repeat > 1 {
		repeated := make([]mtc.Assertion, 0, len(assertions)*repeat)
		for i := 0; i < repeat; i++ {
			repeated = append(repeated, assertions...)
		}
		assertions = repeated
	}

	iss := application.NewIssuer(conf, key)

	db, err := leveldbkv.OpenDB(conf.DatabasePath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()
	iss.Store = application.NewStore(db)

	var batchNumber uint32
	if batchFlag == "" {
		if batchNumber, err = iss.NextBatchNumber(); err != nil {
			log.Fatal(err)
		}
	} else {
		n, err := strconv.ParseUint(batchFlag, 10, 32)
		if err != nil {
			log.Fatalf("Invalid batch number %q: %v", batchFlag, err)
		}
		batchNumber = uint32(n)
	}

	window, err := iss.IssueBatch(assertions, batchNumber)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Issued batch %d with %d assertions covering batches %d-%d\n",
		batchNumber, len(assertions), window.Window.Oldest(), window.Window.BatchNumber)
}
