// Copyright 2017 Cameron Bergoon
// https://github.com/cbergoon/merkletree
// Licensed under the MIT License, see LICENCE file for details.
// This code has been cleaned up, refactored, and turned into generics.

// Package merkle provides a generic merkle tree used to aggregate the record
// commitments of a segment into a single segment commitment.
package merkle

import (
	"bytes"
	"errors"
	"hash"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// ErrNotFound is returned when a value is not a leaf of the tree.
var ErrNotFound = errors.New("value not found in tree")

// Hashable represents the behavior concrete data must exhibit to be used in
// the merkle tree.
type Hashable[T any] interface {
	Hash() ([]byte, error)
	Equals(other T) bool
}

// Blake2b256 is the BLAKE2b-256 hash strategy, the default of a new tree.
func Blake2b256() hash.Hash {
	h, _ := blake2b.New256(nil)
	return h
}

// Blake2b384 is the BLAKE2b-384 hash strategy, its 48 byte root matches the
// size of a segment commitment.
func Blake2b384() hash.Hash {
	h, _ := blake2b.New384(nil)
	return h
}

// =============================================================================

// Tree represents a merkle tree that uses data of some type T that exhibits the
// behavior defined by the Hashable constraint.
type Tree[T Hashable[T]] struct {
	Root         *Node[T]
	Leafs        []*Node[T]
	MerkleRoot   []byte
	hashStrategy func() hash.Hash
}

// WithHashStrategy is used to change the default hash strategy of using
// BLAKE2b-256 when constructing a new tree.
func WithHashStrategy[T Hashable[T]](hashStrategy func() hash.Hash) func(t *Tree[T]) {
	return func(t *Tree[T]) {
		t.hashStrategy = hashStrategy
	}
}

// NewTree constructs a new merkle tree that uses data of some type T that
// exhibits the behavior defined by the Hashable interface.
func NewTree[T Hashable[T]](values []T, options ...func(t *Tree[T])) (*Tree[T], error) {
	t := Tree[T]{
		hashStrategy: Blake2b256,
	}

	for _, option := range options {
		option(&t)
	}

	if err := t.generate(values); err != nil {
		return nil, err
	}

	return &t, nil
}

// generate constructs the leafs and nodes of the tree. An odd leaf count is
// padded by duplicating the last leaf.
func (t *Tree[T]) generate(values []T) error {
	if len(values) == 0 {
		return errors.New("cannot construct tree with no content")
	}

	leafs := make([]*Node[T], 0, len(values)+1)
	for _, value := range values {
		hash, err := value.Hash()
		if err != nil {
			return err
		}

		leafs = append(leafs, &Node[T]{
			Hash:  hash,
			Value: value,
			leaf:  true,
			Tree:  t,
		})
	}

	if len(leafs)%2 == 1 {
		last := leafs[len(leafs)-1]
		leafs = append(leafs, &Node[T]{
			Hash:  last.Hash,
			Value: last.Value,
			leaf:  true,
			dup:   true,
			Tree:  t,
		})
	}

	root, err := buildIntermediate(leafs, t)
	if err != nil {
		return err
	}

	t.Root = root
	t.Leafs = leafs
	t.MerkleRoot = root.Hash

	return nil
}

// ProofOrder says on which side a proof hash is concatenated.
type ProofOrder uint8

// Set of proof orders.
const (
	ProofLeft  ProofOrder = 0
	ProofRight ProofOrder = 1
)

// Proof is the path of sibling hashes from a leaf to the root.
type Proof struct {
	Hashes [][]byte
	Order  []ProofOrder
}

// Proof returns the path proving the value is a leaf of the tree.
func (t *Tree[T]) Proof(data T) (Proof, error) {
	for _, node := range t.Leafs {
		if node.dup || !node.Value.Equals(data) {
			continue
		}

		var proof Proof
		parent := node.Parent

		for parent != nil {
			if parent.Left == node {
				proof.Hashes = append(proof.Hashes, parent.Right.Hash)
				proof.Order = append(proof.Order, ProofRight)
			} else {
				proof.Hashes = append(proof.Hashes, parent.Left.Hash)
				proof.Order = append(proof.Order, ProofLeft)
			}
			node = parent
			parent = parent.Parent
		}

		return proof, nil
	}

	return Proof{}, ErrNotFound
}

// VerifyProof recomputes the root from a leaf hash and its proof.
func VerifyProof(root []byte, leafHash []byte, proof Proof, hashStrategy func() hash.Hash) bool {
	if len(proof.Hashes) != len(proof.Order) {
		return false
	}

	current := leafHash
	for i, sibling := range proof.Hashes {
		h := hashStrategy()
		switch proof.Order[i] {
		case ProofLeft:
			h.Write(sibling)
			h.Write(current)
		default:
			h.Write(current)
			h.Write(sibling)
		}
		current = h.Sum(nil)
	}

	return bytes.Equal(current, root)
}

// Verify validates the hashes at each level of the tree against the root.
func (t *Tree[T]) Verify() error {
	calculated, err := t.Root.verify()
	if err != nil {
		return err
	}

	if !bytes.Equal(t.MerkleRoot, calculated) {
		return errors.New("root hash invalid")
	}

	return nil
}

// VerifyData checks the value is in the tree and the hashes on its path to
// the root are valid.
func (t *Tree[T]) VerifyData(data T) error {
	proof, err := t.Proof(data)
	if err != nil {
		return err
	}

	leafHash, err := data.Hash()
	if err != nil {
		return err
	}

	if !VerifyProof(t.MerkleRoot, leafHash, proof, t.hashStrategy) {
		return errors.New("merkle root is not equivalent to the merkle root calculated on the critical path")
	}

	return nil
}

// Values returns the values stored in the tree without the padding leaf.
func (t *Tree[T]) Values() []T {
	values := make([]T, 0, len(t.Leafs))
	for _, leaf := range t.Leafs {
		if leaf.dup {
			continue
		}
		values = append(values, leaf.Value)
	}

	return values
}

// RootHex converts the merkle root byte hash to a hex encoded string.
func (t *Tree[T]) RootHex() string {
	return hexutil.Encode(t.MerkleRoot)
}

// =============================================================================

// Node represents a node, root, or leaf in the tree. It stores pointers to its
// immediate relationships, a hash, the data if it is a leaf, and other metadata.
type Node[T Hashable[T]] struct {
	Tree   *Tree[T]
	Parent *Node[T]
	Left   *Node[T]
	Right  *Node[T]
	Hash   []byte
	Value  T
	leaf   bool
	dup    bool
}

// verify walks down the tree until hitting a leaf, calculating the hash at
// each level and returning the resulting hash of the node.
func (n *Node[T]) verify() ([]byte, error) {
	if n.leaf {
		return n.Value.Hash()
	}

	left, err := n.Left.verify()
	if err != nil {
		return nil, err
	}

	right, err := n.Right.verify()
	if err != nil {
		return nil, err
	}

	h := n.Tree.hashStrategy()
	h.Write(left)
	h.Write(right)

	return h.Sum(nil), nil
}

// =============================================================================

// buildIntermediate constructs the intermediate and root levels of the tree
// for a level of nodes and returns the root.
func buildIntermediate[T Hashable[T]](nl []*Node[T], t *Tree[T]) (*Node[T], error) {
	nodes := make([]*Node[T], 0, (len(nl)+1)/2)

	for i := 0; i < len(nl); i += 2 {
		left, right := i, i+1
		if right == len(nl) {
			right = i
		}

		h := t.hashStrategy()
		h.Write(nl[left].Hash)
		h.Write(nl[right].Hash)

		n := Node[T]{
			Left:  nl[left],
			Right: nl[right],
			Hash:  h.Sum(nil),
			Tree:  t,
		}

		nodes = append(nodes, &n)
		nl[left].Parent = &n
		nl[right].Parent = &n

		if len(nl) == 2 {
			return &n, nil
		}
	}

	return buildIntermediate(nodes, t)
}
