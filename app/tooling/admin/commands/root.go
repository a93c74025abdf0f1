// Package commands contains the admin commands.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
)

var publicKeyHex string

func init() {
	rootCmd.PersistentFlags().StringVarP(&publicKeyHex, "public-key", "k", "", "Farmer public key in hex.")
}

var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Administrative tasks for the subspace archival node",
	SilenceUsage: true,
}

// Execute runs the admin command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func publicKey() (crypto.PublicKey, error) {
	if publicKeyHex == "" {
		return crypto.PublicKey{}, fmt.Errorf("--public-key is required")
	}

	pk, err := crypto.ParsePublicKey(publicKeyHex)
	if err != nil {
		return crypto.PublicKey{}, fmt.Errorf("parsing public key: %w", err)
	}

	return pk, nil
}
