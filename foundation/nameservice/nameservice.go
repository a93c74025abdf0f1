// Package nameservice reads the zblock/farmers folder and creates a name
// service lookup for the farmer public keys.
package nameservice

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
)

// KeyExtension is the extension of the files holding a farmer public key.
const KeyExtension = ".pub"

// NameService maintains a map of farmer public keys for name lookup.
type NameService struct {
	farmers map[crypto.PublicKey]string
}

// New constructs a name service with the farmers from the folder. Every
// file with the key extension holds one hex encoded public key and is
// named after its farmer. A missing folder gives an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		farmers: make(map[crypto.PublicKey]string),
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != KeyExtension {
			return nil
		}

		content, err := os.ReadFile(fileName)
		if err != nil {
			return err
		}

		pk, err := crypto.ParsePublicKey(strings.TrimSpace(string(content)))
		if err != nil {
			return fmt.Errorf("%s: %w", fileName, err)
		}

		ns.farmers[pk] = strings.TrimSuffix(path.Base(fileName), KeyExtension)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified farmer, the hex key when the
// farmer is unknown.
func (ns *NameService) Lookup(pk crypto.PublicKey) string {
	name, exists := ns.farmers[pk]
	if !exists {
		return pk.String()
	}
	return name
}

// Copy returns a copy of the map of names and farmers.
func (ns *NameService) Copy() map[crypto.PublicKey]string {
	cpy := make(map[crypto.PublicKey]string, len(ns.farmers))
	for pk, name := range ns.farmers {
		cpy[pk] = name
	}
	return cpy
}
