package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/mtc-sys/mtc-go/application"
	"github.com/mtc-sys/mtc-go/mtc"
	"github.com/spf13/cobra"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a certificate against a signed validity window",
	Long: `Verify a .mtc certificate against a published signed validity window
and the issuer's PEM-encoded public key.`,
	Run: func(cmd *cobra.Command, args []string) {
		verifyCertificate(
			cmd.Flag("certificate").Value.String(),
			cmd.Flag("validity-window").Value.String(),
			cmd.Flag("public-key").Value.String(),
			cmd.Flag("issuer-id").Value.String(),
		)
	},
}

func init() {
	RootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringP("certificate", "c", "", "Path to the certificate")
	verifyCmd.Flags().StringP("validity-window", "w", "", "Path to the signed validity window")
	verifyCmd.Flags().StringP("public-key", "k", "", "Path to the expected issuer's public key, PEM encoded")
	verifyCmd.Flags().StringP("issuer-id", "i", "", "The expected issuer ID for the certificate")
	verifyCmd.MarkFlagRequired("certificate")
	verifyCmd.MarkFlagRequired("validity-window")
	verifyCmd.MarkFlagRequired("public-key")
	verifyCmd.MarkFlagRequired("issuer-id")
}

func verifyCertificate(certPath, windowPath, pubKeyPath, issuerID string) {
	certBytes, err := os.ReadFile(certPath)
	if err != nil {
		log.Fatal(err)
	}
	cert, _, err := mtc.ParseBikeshedCertificate(certBytes)
	if err != nil {
		log.Fatalf("Cannot parse certificate: %v", err)
	}

	windowBytes, err := os.ReadFile(windowPath)
	if err != nil {
		log.Fatal(err)
	}
	window, _, err := mtc.ParseSignedValidityWindow(windowBytes)
	if err != nil {
		log.Fatalf("Cannot parse validity window: %v", err)
	}

	pubKey, err := application.LoadSigningPubKey(pubKeyPath)
	if err != nil {
		log.Fatal(err)
	}

	if err := mtc.VerifyCertificate(cert, window, pubKey, mtc.IssuerID(issuerID)); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Certificate is valid")
}
