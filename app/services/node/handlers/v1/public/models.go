package public

import (
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
)

type submitBlock struct {
	Number uint32 `json:"number"`
	Data   []byte `json:"data" validate:"required"`
}

type submitted struct {
	Status string `json:"status"`
	Number uint32 `json:"number"`
}

type sectorPiece struct {
	Farmer         string                `json:"farmer"`
	SectorID       sector.LegacySectorID `json:"sectorId"`
	PieceOffset    pieces.PieceIndex     `json:"pieceOffset"`
	TotalPieces    pieces.NonZeroU64     `json:"totalPieces"`
	PieceIndex     pieces.PieceIndex     `json:"pieceIndex"`
	PieceIndexHash string                `json:"pieceIndexHash"`
}

type localChallenge struct {
	Farmer          string                `json:"farmer"`
	SectorID        sector.LegacySectorID `json:"sectorId"`
	GlobalChallenge crypto.Blake2b256Hash `json:"globalChallenge"`
	LocalChallenge  sector.SolutionRange  `json:"localChallenge"`
}
