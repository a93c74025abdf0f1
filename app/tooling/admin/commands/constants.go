package commands

import (
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

var constantsCmd = &cobra.Command{
	Use:   "constants",
	Short: "Print the protocol constants of archived history",
	Run: func(cmd *cobra.Command, args []string) {
		tbl := table.New("Constant", "Value").WithWriter(cmd.OutOrStdout())
		tbl.AddRow("RawRecordSize", pieces.RawRecordSize)
		tbl.AddRow("RecordSize", pieces.RecordSize)
		tbl.AddRow("PieceSize", pieces.PieceSize)
		tbl.AddRow("NumRawRecords", segments.NumRawRecords)
		tbl.AddRow("ErasureCodingRate", segments.ErasureCodingRate)
		tbl.AddRow("NumPieces", segments.NumPieces)
		tbl.AddRow("RecordedHistorySegmentSize", segments.RecordedHistorySegmentSize)
		tbl.AddRow("PlotSectorSize", sector.PlotSectorSize)
		tbl.AddRow("PiecesInSector", sector.PiecesInSector)
		tbl.Print()
	},
}

func init() {
	rootCmd.AddCommand(constantsCmd)
}
