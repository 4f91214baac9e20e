package cmd

import (
	"fmt"
	"log"
	"strconv"

	"github.com/mtc-sys/mtc-go/application"
	"github.com/mtc-sys/mtc-go/utils"
	"github.com/spf13/cobra"
)

// certCmd represents the cert command
var certCmd = &cobra.Command{
	Use:   "cert",
	Short: "Generate a certificate for an assertion within a published batch",
	Long: `Generate the inclusion-proof certificate for one assertion of an
already-published batch and write it as a .mtc file.`,
	Run: func(cmd *cobra.Command, args []string) {
		config := cmd.Flag("config").Value.String()
		out := cmd.Flag("out").Value.String()

		batchNumber, err := strconv.ParseUint(cmd.Flag("batch-number").Value.String(), 10, 32)
		if err != nil {
			log.Fatalf("Invalid batch number: %v", err)
		}
		index, err := strconv.ParseUint(cmd.Flag("index").Value.String(), 10, 64)
		if err != nil {
			log.Fatalf("Invalid index: %v", err)
		}
		generateCertificate(config, uint32(batchNumber), index, out)
	},
}

func init() {
	RootCmd.AddCommand(certCmd)
	certCmd.Flags().StringP("config", "c", "config.toml", "Path to the CA configuration file")
	certCmd.Flags().StringP("batch-number", "b", "", "Batch number of the assertion")
	certCmd.Flags().StringP("index", "n", "", "The index of the assertion within the batch")
	certCmd.Flags().StringP("out", "o", "", "The path to save the generated certificate to")
	certCmd.MarkFlagRequired("batch-number")
	certCmd.MarkFlagRequired("index")
	certCmd.MarkFlagRequired("out")
}

func generateCertificate(confPath string, batchNumber uint32, index uint64, out string) {
	conf, err := application.LoadConfig(confPath)
	if err != nil {
		log.Fatal(err)
	}

	iss := application.NewIssuer(conf, nil) // no signing key needed to emit proofs
	cert, err := iss.Certificate(batchNumber, index)
	if err != nil {
		log.Fatal(err)
	}

	if err := utils.WriteFile(out, cert.Bytes(), 0644); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Wrote certificate for batch %d index %d to %s\n", batchNumber, index, out)
}
