package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

var verifyHeadersCmd = &cobra.Command{
	Use:   "verify-headers <file>",
	Short: "Verify the linkage of a JSON list of segment headers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading headers: %w", err)
		}

		var headers []segments.SegmentHeader
		if err := json.Unmarshal(data, &headers); err != nil {
			return fmt.Errorf("decoding headers: %w", err)
		}

		tbl := table.New("Segment", "Hash", "Prev Hash", "Last Block").WithWriter(cmd.OutOrStdout())
		for _, h := range headers {
			lab := h.LastArchivedBlock()
			last := fmt.Sprintf("%d", lab.Number)
			if n, partial := lab.PartialArchived(); partial {
				last = fmt.Sprintf("%d (%d bytes)", lab.Number, n)
			}
			tbl.AddRow(h.SegmentIndex(), h.Hash(), h.PrevSegmentHeaderHash(), last)
		}
		tbl.Print()

		if err := segments.VerifyChain(headers); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "\n%d headers linked\n", len(headers))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(verifyHeadersCmd)
}
