package commands

import (
	"encoding/json"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/solution"
)

var rewardAddressHex string

var genesisCmd = &cobra.Command{
	Use:   "genesis-solution",
	Short: "Print the genesis solution of a farmer in SCALE hex and JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := publicKey()
		if err != nil {
			return err
		}

		reward := pk
		if rewardAddressHex != "" {
			if reward, err = crypto.ParsePublicKey(rewardAddressHex); err != nil {
				return fmt.Errorf("--reward-address: %w", err)
			}
		}

		sol := solution.GenesisSolution(pk, reward)

		data, err := codec.Encode(sol)
		if err != nil {
			return fmt.Errorf("encoding solution: %w", err)
		}

		doc, err := json.MarshalIndent(sol, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling solution: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "SCALE: %s\n\n%s\n", hexutil.Encode(data), doc)
		return nil
	},
}

func init() {
	genesisCmd.Flags().StringVarP(&rewardAddressHex, "reward-address", "r", "", "Reward address in hex, the public key when empty.")
	rootCmd.AddCommand(genesisCmd)
}
