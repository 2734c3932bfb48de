/*
Package contracts provides access to compiled BatchTransfer contract.

Contracts are compiled with

	neo-go contract compile -i contracts/batchtransfer -c contracts/batchtransfer/config.yml \
		-m contracts/batchtransfer/manifest.json -o contracts/batchtransfer/contract.nef

into contract.nef and manifest.json files placed in the contract source
directory.
*/
package contracts

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"

	"github.com/nspcc-dev/neo-go/pkg/io"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/manifest"
	"github.com/nspcc-dev/neo-go/pkg/smartcontract/nef"
)

const (
	// BatchTransferDir is a directory of BatchTransfer contract relative to
	// the repository root.
	BatchTransferDir = "contracts/batchtransfer"

	nefName      = "contract.nef"
	manifestName = "manifest.json"
)

// Contract groups information about compiled Neo contract.
type Contract struct {
	NEF      nef.File
	Manifest manifest.Manifest
}

var (
	// ErrInvalidNEF is returned when NEF file can't be decoded.
	ErrInvalidNEF = errors.New("invalid NEF")
	// ErrInvalidManifest is returned when manifest file can't be decoded.
	ErrInvalidManifest = errors.New("invalid manifest")
)

// ReadDir reads compiled contract from the directory in the local file system.
func ReadDir(dir string) (Contract, error) {
	c, err := Read(os.DirFS(dir), ".")
	if err != nil {
		return c, fmt.Errorf("read contract %s: %w", dir, err)
	}

	return c, nil
}

// Read reads compiled contract from the dir of the given file system.
func Read(fsys fs.FS, dir string) (Contract, error) {
	var c Contract

	// fs.FS paths are slash-separated and unrooted, filepath.Join() is not
	// applicable.
	fNEF, err := fsys.Open(path.Join(dir, nefName))
	if err != nil {
		return c, fmt.Errorf("open NEF: %w", err)
	}
	defer fNEF.Close()

	fManifest, err := fsys.Open(path.Join(dir, manifestName))
	if err != nil {
		return c, fmt.Errorf("open manifest: %w", err)
	}
	defer fManifest.Close()

	bReader := io.NewBinReaderFromIO(fNEF)
	c.NEF.DecodeBinary(bReader)
	if bReader.Err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidNEF, bReader.Err)
	}

	err = json.NewDecoder(fManifest).Decode(&c.Manifest)
	if err != nil {
		return c, fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if c.Manifest.Name == "" {
		return c, fmt.Errorf("%w: empty name", ErrInvalidManifest)
	}

	return c, nil
}

// Bytes returns binary NEF and JSON manifest of the contract in the form
// expected by `update` contract methods.
func (c Contract) Bytes() ([]byte, []byte, error) {
	bNEF, err := c.NEF.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("encode NEF: %w", err)
	}

	jManifest, err := json.Marshal(c.Manifest)
	if err != nil {
		return nil, nil, fmt.Errorf("encode manifest: %w", err)
	}

	return bNEF, jManifest, nil
}
