package commands

import (
	"fmt"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
)

var (
	sectorIndex uint64
	totalPieces uint64
	pieceOffset uint64
	pieceCount  uint64
	globalHex   string
)

var sectorCmd = &cobra.Command{
	Use:   "sector",
	Short: "Derive the sector id, the pieces and the local challenge of a sector",
	RunE: func(cmd *cobra.Command, args []string) error {
		pk, err := publicKey()
		if err != nil {
			return err
		}

		total, err := pieces.NewNonZeroU64(totalPieces)
		if err != nil {
			return fmt.Errorf("--total: %w", err)
		}

		id := sector.NewLegacySectorID(pk, sector.SectorIndex(sectorIndex))
		fmt.Fprintf(cmd.OutOrStdout(), "Sector ID: %s\n\n", id)

		tbl := table.New("Piece Offset", "Piece Index", "Piece Index Hash").WithWriter(cmd.OutOrStdout())
		for offset := pieceOffset; offset < pieceOffset+pieceCount; offset++ {
			idx := id.DerivePieceIndex(pieces.PieceIndex(offset), total)
			tbl.AddRow(offset, idx, idx.Hash())
		}
		tbl.Print()

		if globalHex == "" {
			return nil
		}

		var global crypto.Blake2b256Hash
		if err := global.UnmarshalText([]byte(globalHex)); err != nil {
			return fmt.Errorf("--global: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\nLocal Challenge: %d\n", id.DeriveLocalChallenge(global))
		return nil
	},
}

func init() {
	sectorCmd.Flags().Uint64VarP(&sectorIndex, "sector", "s", 0, "Sector index.")
	sectorCmd.Flags().Uint64VarP(&totalPieces, "total", "t", 1, "Number of pieces in history.")
	sectorCmd.Flags().Uint64VarP(&pieceOffset, "offset", "o", 0, "First piece offset to derive.")
	sectorCmd.Flags().Uint64VarP(&pieceCount, "count", "c", 1, "Number of piece offsets to derive.")
	sectorCmd.Flags().StringVarP(&globalHex, "global", "g", "", "Global challenge as 0x prefixed hex.")
	rootCmd.AddCommand(sectorCmd)
}
