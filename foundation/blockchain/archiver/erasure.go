package archiver

import (
	"fmt"

	"github.com/klauspost/reedsolomon"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// erasure extends the raw records of a segment with parity records. Source
// record i is archived at position 2i and parity record i at 2i+1.
type erasure struct {
	enc     reedsolomon.Encoder
	records int
}

func newErasure(records int) (*erasure, error) {
	enc, err := reedsolomon.New(records, records*(segments.ErasureCodingRate-1))
	if err != nil {
		return nil, fmt.Errorf("constructing erasure coder: %w", err)
	}

	return &erasure{enc: enc, records: records}, nil
}

// extend returns the raw records of every position of the archived segment.
func (e *erasure) extend(source []pieces.RawRecord) ([]pieces.RawRecord, error) {
	if len(source) != e.records {
		return nil, fmt.Errorf("erasure coding: got %d records, exp %d", len(source), e.records)
	}

	shards := make([][]byte, 2*e.records)
	for i, r := range source {
		shards[i] = r
		shards[e.records+i] = pieces.NewRawRecord()
	}

	if err := e.enc.Encode(shards); err != nil {
		return nil, fmt.Errorf("erasure coding: %w", err)
	}

	out := make([]pieces.RawRecord, 2*e.records)
	for i := 0; i < e.records; i++ {
		out[2*i] = shards[i]
		out[2*i+1] = shards[e.records+i]
	}

	return out, nil
}

// recover fills in the missing source records. The input holds one raw
// record per archived position, nil when missing.
func (e *erasure) recover(positions []pieces.RawRecord) ([]pieces.RawRecord, error) {
	if len(positions) != 2*e.records {
		return nil, fmt.Errorf("erasure recovery: got %d positions, exp %d", len(positions), 2*e.records)
	}

	shards := make([][]byte, 2*e.records)
	for i := 0; i < e.records; i++ {
		shards[i] = positions[2*i]
		shards[e.records+i] = positions[2*i+1]
	}

	if err := e.enc.ReconstructData(shards); err != nil {
		return nil, fmt.Errorf("erasure recovery: %w", err)
	}

	out := make([]pieces.RawRecord, e.records)
	for i := range out {
		out[i] = shards[i]
	}

	return out, nil
}
