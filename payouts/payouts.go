/*
Package payouts provides lists of payouts to be sent through BatchTransfer
contract.

Lists are read from CSV or YAML files. CSV files have `address,amount` records
with an optional header, YAML files look like

	payouts:
	  - address: NbrUYaZgyhSkNoRo9ugRyEMdUZxrhkNaWB
	    amount: "1.5"

Amounts are decimal strings converted to integers using the number of decimals
of the asset being paid.
*/
package payouts

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/encoding/fixedn"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"gopkg.in/yaml.v3"
)

// Entry is a single payout.
type Entry struct {
	Recipient util.Uint160
	Amount    *big.Int
}

// List is an ordered list of payouts.
type List []Entry

// ErrEmptyList is returned by readers when the source has no payouts.
var ErrEmptyList = errors.New("empty payout list")

// Recipients returns recipients of the list in order.
func (l List) Recipients() []util.Uint160 {
	res := make([]util.Uint160, len(l))
	for i := range l {
		res[i] = l[i].Recipient
	}
	return res
}

// Amounts returns amounts of the list in order.
func (l List) Amounts() []*big.Int {
	res := make([]*big.Int, len(l))
	for i := range l {
		res[i] = l[i].Amount
	}
	return res
}

// Total returns the sum of all amounts.
func (l List) Total() *big.Int {
	res := new(big.Int)
	for i := range l {
		res.Add(res, l[i].Amount)
	}
	return res
}

// EqualAmount returns the amount paid to every recipient if all the amounts
// are the same. The second value is false for an empty or mixed list.
func (l List) EqualAmount() (*big.Int, bool) {
	if len(l) == 0 {
		return nil, false
	}

	for i := 1; i < len(l); i++ {
		if l[i].Amount.Cmp(l[0].Amount) != 0 {
			return nil, false
		}
	}

	return new(big.Int).Set(l[0].Amount), true
}

// Split splits the list into consecutive chunks of at most n entries. Each
// chunk is sent as a separate batch. It panics if n is not positive.
func (l List) Split(n int) []List {
	if n <= 0 {
		panic(fmt.Sprintf("invalid chunk size %d", n))
	}

	res := make([]List, 0, (len(l)+n-1)/n)
	for len(l) > n {
		res = append(res, l[:n:n])
		l = l[n:]
	}

	if len(l) > 0 {
		res = append(res, l)
	}

	return res
}

// ReadFile reads payout list from the file choosing the format by its
// extension: .yml and .yaml are YAML, anything else is CSV.
func ReadFile(path string, decimals int) (List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open payout file: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ReadYAML(f, decimals)
	default:
		return ReadCSV(f, decimals)
	}
}

// ReadCSV reads `address,amount` records. The first record is skipped if it is
// a header, lines starting with '#' are ignored.
func ReadCSV(r io.Reader, decimals int) (List, error) {
	_csv := csv.NewReader(r)
	_csv.FieldsPerRecord = 2
	_csv.Comment = '#'
	_csv.TrimLeadingSpace = true

	var res List

	for line := 0; ; line++ {
		rec, err := _csv.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("read next CSV record: %w", err)
		}

		if line == 0 && strings.EqualFold(rec[0], "address") {
			continue
		}

		// out-of-range safety guaranteed by csv settings
		e, err := parseEntry(rec[0], rec[1], decimals)
		if err != nil {
			return nil, fmt.Errorf("record #%d: %w", line, err)
		}

		res = append(res, e)
	}

	if len(res) == 0 {
		return nil, ErrEmptyList
	}

	return res, nil
}

type yamlList struct {
	Payouts []struct {
		Address string `yaml:"address"`
		Amount  string `yaml:"amount"`
	} `yaml:"payouts"`
}

// ReadYAML reads payout list in YAML format.
func ReadYAML(r io.Reader, decimals int) (List, error) {
	var l yamlList

	err := yaml.NewDecoder(r).Decode(&l)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode YAML: %w", err)
	}

	if len(l.Payouts) == 0 {
		return nil, ErrEmptyList
	}

	res := make(List, len(l.Payouts))
	for i := range l.Payouts {
		res[i], err = parseEntry(l.Payouts[i].Address, l.Payouts[i].Amount, decimals)
		if err != nil {
			return nil, fmt.Errorf("payout #%d: %w", i, err)
		}
	}

	return res, nil
}

func parseEntry(addr, amount string, decimals int) (Entry, error) {
	var (
		e   Entry
		err error
	)

	e.Recipient, err = ParseAddress(strings.TrimSpace(addr))
	if err != nil {
		return e, err
	}

	e.Amount, err = fixedn.FromString(strings.TrimSpace(amount), decimals)
	if err != nil {
		return e, fmt.Errorf("invalid amount %q: %w", amount, err)
	}

	if e.Amount.Sign() < 0 {
		return e, fmt.Errorf("negative amount %q", amount)
	}

	return e, nil
}

// ParseAddress parses Neo address or 0x-prefixed LE script hash. Errors for
// malformed addresses tell what exactly is wrong with them.
func ParseAddress(s string) (util.Uint160, error) {
	if strings.HasPrefix(s, "0x") {
		u, err := util.Uint160DecodeStringLE(s[2:])
		if err != nil {
			return u, fmt.Errorf("invalid script hash %q: %w", s, err)
		}
		return u, nil
	}

	u, err := address.StringToUint160(s)
	if err == nil {
		return u, nil
	}

	b, decErr := base58.Decode(s)
	switch {
	case decErr != nil:
		return u, fmt.Errorf("invalid address %q: not a base58 string", s)
	case len(b) != 1+util.Uint160Size+4:
		return u, fmt.Errorf("invalid address %q: wrong length %d", s, len(b))
	case b[0] != address.Prefix:
		return u, fmt.Errorf("invalid address %q: unexpected version byte 0x%02x", s, b[0])
	}

	sum := hash.Checksum(b[:1+util.Uint160Size])
	if string(sum) != string(b[1+util.Uint160Size:]) {
		return u, fmt.Errorf("invalid address %q: checksum mismatch", s)
	}

	return u, fmt.Errorf("invalid address %q: %w", s, err)
}
