package commitment_test

import (
	"errors"
	"testing"

	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"lukechampine.com/frand"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_HashCommitter(t *testing.T) {
	t.Log("Given the need to commit to the records of a segment.")
	{
		records := make([]pieces.Record, 4)
		for i := range records {
			records[i] = pieces.Record(frand.Bytes(pieces.RecordSize))
		}

		var c commitment.Committer = commitment.NewHashCommitter()

		sc, err := c.Commit(records)
		if err != nil {
			t.Fatalf("\t%s\tShould commit to the records: %v", failed, err)
		}
		if len(sc.Records) != 4 || len(sc.Witness) != 4 {
			t.Fatalf("\t%s\tShould produce one commitment and witness per record.", failed)
		}
		t.Logf("\t%s\tShould produce one commitment and witness per record.", success)

		again, _ := c.Commit(records)
		if again.Segment != sc.Segment {
			t.Fatalf("\t%s\tShould be deterministic.", failed)
		}
		t.Logf("\t%s\tShould be deterministic.", success)

		for i, r := range records {
			if !c.VerifyRecord(sc.Segment, r, uint32(i), sc.Witness[i]) {
				t.Fatalf("\t%s\tShould verify record %d.", failed, i)
			}
		}
		t.Logf("\t%s\tShould verify every record.", success)

		if c.VerifyRecord(sc.Segment, records[0], 1, sc.Witness[0]) {
			t.Fatalf("\t%s\tShould bind the witness to the position.", failed)
		}
		t.Logf("\t%s\tShould bind the witness to the position.", success)

		tampered := append(pieces.Record(nil), records[2]...)
		tampered[0] ^= 1
		if c.VerifyRecord(sc.Segment, tampered, 2, sc.Witness[2]) {
			t.Fatalf("\t%s\tShould reject a tampered record.", failed)
		}
		t.Logf("\t%s\tShould reject a tampered record.", success)

		hc := commitment.NewHashCommitter()
		hash := commitment.RecordCommitmentHash(sc.Records[3])
		if !hc.VerifyRecordInclusion(sc.Segment, hash, sc.Witness[3], 3) {
			t.Fatalf("\t%s\tShould verify the inclusion of a record commitment hash.", failed)
		}
		t.Logf("\t%s\tShould verify the inclusion of a record commitment hash.", success)

		records[1][0] ^= 1
		changed, _ := c.Commit(records)
		if changed.Segment == sc.Segment {
			t.Fatalf("\t%s\tShould change the segment commitment with any record.", failed)
		}
		t.Logf("\t%s\tShould change the segment commitment with any record.", success)

		if _, err := c.Commit(nil); !errors.Is(err, commitment.ErrNoRecords) {
			t.Fatalf("\t%s\tShould reject an empty segment: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an empty segment.", success)
	}
}
