// Package credentialstatus checks credentialStatus entries against status list
// credentials (StatusList2021 and BitstringStatusList).
package credentialstatus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pilacorp/go-did-sdk/credential/common/codec"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
	"github.com/pilacorp/go-did-sdk/credential/vc"
)

// SubjectFromCredential reads the status list subject of a parsed status list credential.
func SubjectFromCredential(listVC *vc.Credential) (StatusListCredentialSubject, error) {
	if listVC == nil {
		return StatusListCredentialSubject{}, parseerr.New(parseerr.ErrInvalidArgument, "status list credential is nil")
	}
	subjects := listVC.Subjects()
	if len(subjects) != 1 {
		return StatusListCredentialSubject{}, parseerr.New(parseerr.ErrInvalidShape, "status list credential must have exactly one subject, got %d", len(subjects))
	}

	claims := subjects[0].Claims
	subject := StatusListCredentialSubject{ID: subjects[0].ID}
	for key, dst := range map[string]*string{
		"encodedList":   &subject.EncodedList,
		"statusPurpose": &subject.StatusPurpose,
		"type":          &subject.Type,
	} {
		v, ok := claims.Get(key)
		if !ok {
			continue
		}
		s, ok := v.AsString()
		if !ok {
			return StatusListCredentialSubject{}, parseerr.New(parseerr.ErrInvalidShape, "'%s' of status list subject must be a string, got %s", key, v.Kind())
		}
		*dst = s
	}
	if subject.EncodedList == "" {
		return StatusListCredentialSubject{}, parseerr.New(parseerr.ErrMissingField, "missing required 'encodedList'")
	}
	return subject, nil
}

// CheckStatus reports whether the bit for status is set in the status list credential.
// For a revocation entry a set bit means the credential is revoked.
func CheckStatus(status vc.Status, listVC *vc.Credential) (bool, error) {
	subject, err := SubjectFromCredential(listVC)
	if err != nil {
		return false, err
	}

	if status.StatusListCredential != "" && listVC.ID() != "" && status.StatusListCredential != listVC.ID() {
		return false, parseerr.New(parseerr.ErrInvalidArgument, "status refers to list %q, got %q", status.StatusListCredential, listVC.ID())
	}
	if status.StatusPurpose != "" && subject.StatusPurpose != "" && status.StatusPurpose != subject.StatusPurpose {
		return false, parseerr.New(parseerr.ErrInvalidArgument, "status purpose %q does not match list purpose %q", status.StatusPurpose, subject.StatusPurpose)
	}

	position, err := strconv.Atoi(status.StatusListIndex)
	if err != nil {
		return false, parseerr.Wrap(parseerr.ErrInvalidShape, err, "invalid statusListIndex %q", status.StatusListIndex)
	}

	set, err := IsSet(position, subject.EncodedList)
	if err != nil {
		return false, err
	}

	logging.Log().
		WithField("statusListCredential", listVC.ID()).
		WithField("statusListIndex", position).
		Tracef("Status bit is %t", set)
	return set, nil
}

// IsRevoked checks whether a credential is revoked based on the encoded list
// and a given status position (index in the bitstring).
func IsRevoked(position int, subject StatusListCredentialSubject) (bool, error) {
	// Only handle revocation lists here.
	if subject.StatusPurpose != PurposeRevocation {
		return false, nil
	}
	return IsSet(position, subject.EncodedList)
}

// IsSet reports whether the bit at position is set. encodedList is a gzip
// compressed bitstring in base64url, optionally multibase prefixed with 'u'.
func IsSet(position int, encodedList string) (bool, error) {
	bitstring, err := decodeList(encodedList)
	if err != nil {
		return false, err
	}

	if position < 0 || position/8 >= len(bitstring) {
		return false, parseerr.New(parseerr.ErrInvalidArgument, "status position %d is out of range for a list of %d entries", position, len(bitstring)*8)
	}

	byteIndex := position / 8
	bitIndex := position % 8
	return (bitstring[byteIndex]>>bitIndex)&1 == 1, nil
}

func decodeList(encodedList string) ([]byte, error) {
	if strings.HasPrefix(encodedList, "u") {
		compressed, _, err := codec.MultibaseDecode(encodedList)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid encodedList")
		}
		out, err := util.Decompress(compressed)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid encodedList")
		}
		return out, nil
	}

	out, err := util.DecompressFromBase64URL(encodedList)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid encodedList")
	}
	return out, nil
}

// EncodeList builds an encodedList value from a bitstring.
func EncodeList(bitstring []byte) (string, error) {
	encoded, err := util.CompressToBase64URL(bitstring)
	if err != nil {
		return "", fmt.Errorf("failed to encode status list: %w", err)
	}
	return encoded, nil
}
