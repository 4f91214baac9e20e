package cmd

import (
	"log"
	"path"

	"github.com/mtc-sys/mtc-go/application"
	"github.com/mtc-sys/mtc-go/crypto/sign"
	"github.com/mtc-sys/mtc-go/utils"
	"github.com/spf13/cobra"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a configuration file and generate the signing key pair",
	Long: `Create a configuration file and generate the Ed25519 key pair the
CA signs validity windows with. Keys are written PEM encoded.`,
	Run: func(cmd *cobra.Command, args []string) {
		dir := cmd.Flag("dir").Value.String()
		issuerID := cmd.Flag("issuer-id").Value.String()
		mkConfig(dir, issuerID)
		mkSigningKey(dir)
	},
}

func init() {
	RootCmd.AddCommand(initCmd)
	initCmd.Flags().StringP("dir", "d", ".", "Location of directory for storing generated files")
	initCmd.Flags().StringP("issuer-id", "i", "mtc.example", "The issuer ID for the CA")
}

func mkConfig(dir, issuerID string) {
	conf := application.NewConfig(issuerID)
	if err := conf.Save(path.Join(dir, "config.toml")); err != nil {
		log.Println(err)
	}
}

func mkSigningKey(dir string) {
	sk, err := sign.GenerateKey()
	if err != nil {
		log.Print(err)
		return
	}
	pk, _ := sk.Public()

	skPEM, err := sign.MarshalPrivateKeyPEM(sk)
	if err != nil {
		log.Println(err)
		return
	}
	pkPEM, err := sign.MarshalPublicKeyPEM(pk)
	if err != nil {
		log.Println(err)
		return
	}
	if err := utils.WriteFile(path.Join(dir, "sign.priv.pem"), skPEM, 0600); err != nil {
		log.Println(err)
		return
	}
	if err := utils.WriteFile(path.Join(dir, "sign.pub.pem"), pkPEM, 0644); err != nil {
		log.Println(err)
		return
	}
}
