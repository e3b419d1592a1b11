// Package codec decodes the text encodings used for public key material in
// verification methods: base58btc, multibase and multicodec-prefixed keys.
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
	"github.com/multiformats/go-multicodec"
)

var (
	// ErrInvalidBase58 is returned for text containing characters outside the base58btc alphabet.
	ErrInvalidBase58 = errors.New("invalid base58 encoding")
	// ErrInvalidMultibase is returned for an unknown prefix or undecodable multibase payload.
	ErrInvalidMultibase = errors.New("invalid multibase encoding")
	// ErrInvalidMulticodec is returned when data does not start with a multicodec varint.
	ErrInvalidMulticodec = errors.New("invalid multicodec prefix")
)

// Base58Decode decodes base58btc text.
func Base58Decode(s string) ([]byte, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty string", ErrInvalidBase58)
	}
	b, err := base58.Decode(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidBase58, err.Error())
	}
	return b, nil
}

func Base58Encode(b []byte) string {
	return base58.Encode(b)
}

// MultibaseDecode decodes multibase text. The first character selects the base.
func MultibaseDecode(s string) ([]byte, multibase.Encoding, error) {
	if s == "" {
		return nil, 0, fmt.Errorf("%w: empty string", ErrInvalidMultibase)
	}
	enc, b, err := multibase.Decode(s)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidMultibase, err.Error())
	}
	return b, enc, nil
}

// MultibaseEncode encodes b as base58btc multibase text ('z' prefix).
func MultibaseEncode(b []byte) string {
	s, _ := multibase.Encode(multibase.Base58BTC, b)
	return s
}

// SplitMulticodec reads the multicodec varint that prefixes data and returns
// it together with the remaining bytes.
func SplitMulticodec(data []byte) (multicodec.Code, []byte, error) {
	code, n := binary.Uvarint(data)
	if n <= 0 {
		return 0, nil, ErrInvalidMulticodec
	}
	return multicodec.Code(code), data[n:], nil
}

// PrefixMulticodec prepends the varint of code to key.
func PrefixMulticodec(code multicodec.Code, key []byte) []byte {
	out := binary.AppendUvarint(make([]byte, 0, binary.MaxVarintLen64+len(key)), uint64(code))
	return append(out, key...)
}
