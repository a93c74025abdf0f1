// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/solution"
)

// Genesis represents the genesis file.
type Genesis struct {
	Date              time.Time            `json:"date"`
	ChainID           uint16               `json:"chain_id"`            // The chain id represents an unique id for this running instance.
	RecordsPerSegment int                  `json:"records_per_segment"` // Zero selects the protocol geometry.
	SolutionRange     sector.SolutionRange `json:"solution_range"`      // Initial solution range of the chain.
	Farmer            crypto.PublicKey     `json:"farmer"`              // Farmer of the genesis block.
	RewardAddress     *crypto.PublicKey    `json:"reward_address,omitempty"`
}

// =============================================================================

// Load opens and consumes the genesis file.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	var genesis Genesis
	err = json.Unmarshal(content, &genesis)
	if err != nil {
		return Genesis{}, err
	}

	if genesis.RecordsPerSegment < 0 {
		return Genesis{}, fmt.Errorf("records per segment must not be negative: %d", genesis.RecordsPerSegment)
	}

	if genesis.SolutionRange == 0 {
		return Genesis{}, errors.New("solution range must not be zero")
	}

	return genesis, nil
}

// Geometry returns the shape of the segments archived by the chain.
func (g Genesis) Geometry() archiver.Geometry {
	if g.RecordsPerSegment == 0 {
		return archiver.ProtocolGeometry()
	}
	return archiver.Geometry{RecordsPerSegment: g.RecordsPerSegment}
}

// Solution returns the solution of the genesis block.
func (g Genesis) Solution() solution.Solution[crypto.PublicKey, crypto.PublicKey] {
	reward := g.Farmer
	if g.RewardAddress != nil {
		reward = *g.RewardAddress
	}
	return solution.GenesisSolution(g.Farmer, reward)
}

// Block returns block zero of the chain, the encoded genesis solution
// followed by the chain id.
func (g Genesis) Block() (archiver.Block, error) {
	data, err := codec.Encode(g.Solution())
	if err != nil {
		return archiver.Block{}, fmt.Errorf("encoding genesis solution: %w", err)
	}

	data = append(data, byte(g.ChainID), byte(g.ChainID>>8))

	return archiver.Block{Number: 0, Data: data}, nil
}
