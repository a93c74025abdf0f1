package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"lukechampine.com/frand"
)

var keyFile string

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate a random development farmer public key",
	Long: "Generate a random 32 byte farmer public key for development networks. " +
		"The key carries no secret, signing keys are managed outside of the node.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var pk crypto.PublicKey
		frand.Read(pk[:])

		fmt.Fprintln(cmd.OutOrStdout(), pk)

		if keyFile == "" {
			return nil
		}

		if err := os.WriteFile(keyFile, []byte(pk.String()+"\n"), 0600); err != nil {
			return fmt.Errorf("writing key file: %w", err)
		}

		return nil
	},
}

func init() {
	keygenCmd.Flags().StringVarP(&keyFile, "out", "o", "", "Also write the key to this file.")
	rootCmd.AddCommand(keygenCmd)
}
