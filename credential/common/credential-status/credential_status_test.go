package credentialstatus

import (
	"fmt"
	"testing"

	"github.com/multiformats/go-multibase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
	"github.com/pilacorp/go-did-sdk/credential/vc"
)

func TestIsRevoked(t *testing.T) {
	// Bit pattern: 0x01 -> [1,0,0,0,0,0,0,0] (LSB-first)
	encoded, err := EncodeList([]byte{0x01})
	require.NoError(t, err)

	subject := StatusListCredentialSubject{
		EncodedList:   encoded,
		StatusPurpose: PurposeRevocation,
	}

	revoked, err := IsRevoked(0, subject)
	assert.NoError(t, err)
	assert.True(t, revoked, "position 0 should be revoked")

	notRevoked, err := IsRevoked(1, subject)
	assert.NoError(t, err)
	assert.False(t, notRevoked, "position 1 should not be revoked")
}

func TestIsRevoked_NonRevocationPurpose(t *testing.T) {
	encoded, err := EncodeList([]byte{0x01})
	require.NoError(t, err)

	subject := StatusListCredentialSubject{
		EncodedList:   encoded,
		StatusPurpose: PurposeSuspension,
	}

	revoked, err := IsRevoked(0, subject)
	assert.NoError(t, err)
	assert.False(t, revoked, "non-revocation purpose should always be not revoked")
}

func TestIsSet(t *testing.T) {
	encoded, err := EncodeList([]byte{0x00, 0x80})
	require.NoError(t, err)

	t.Run("last bit of second byte", func(t *testing.T) {
		set, err := IsSet(15, encoded)
		require.NoError(t, err)
		assert.True(t, set)
	})

	t.Run("multibase prefixed list", func(t *testing.T) {
		compressed, err := util.Compress([]byte{0x00, 0x80})
		require.NoError(t, err)
		prefixed, err := multibase.Encode(multibase.Base64url, compressed)
		require.NoError(t, err)

		set, err := IsSet(15, prefixed)
		require.NoError(t, err)
		assert.True(t, set)
	})

	t.Run("position out of range", func(t *testing.T) {
		_, err := IsSet(16, encoded)
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)

		_, err = IsSet(-1, encoded)
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)
	})

	t.Run("garbage list", func(t *testing.T) {
		_, err := IsSet(0, "H4sI!!!")
		assert.ErrorContains(t, err, "invalid encodedList")
	})
}

func TestCheckStatus(t *testing.T) {
	// position 42 -> byte 5, bit 2
	bitstring := make([]byte, 16)
	bitstring[5] = 1 << 2
	encoded, err := EncodeList(bitstring)
	require.NoError(t, err)

	listVC, err := vc.ParseCredential([]byte(fmt.Sprintf(`{
      "id": "https://example.org/status/1",
      "type": ["VerifiableCredential", "StatusList2021Credential"],
      "issuer": "did:example:issuer",
      "credentialSubject": {
        "id": "https://example.org/status/1#list",
        "type": "StatusList2021",
        "statusPurpose": "revocation",
        "encodedList": %q
      }
    }`, encoded)))
	require.NoError(t, err)

	status := vc.Status{
		Type:                 "StatusList2021Entry",
		StatusPurpose:        PurposeRevocation,
		StatusListIndex:      "42",
		StatusListCredential: "https://example.org/status/1",
	}

	t.Run("revoked", func(t *testing.T) {
		revoked, err := CheckStatus(status, listVC)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("not revoked", func(t *testing.T) {
		other := status
		other.StatusListIndex = "43"
		revoked, err := CheckStatus(other, listVC)
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("status parsed from a credential", func(t *testing.T) {
		c, err := vc.ParseCredential([]byte(`{"type":"VerifiableCredential","credentialSubject":{"id":"did:example:s"},
          "credentialStatus":{"type":"StatusList2021Entry","statusPurpose":"revocation","statusListIndex":42,"statusListCredential":"https://example.org/status/1"}}`))
		require.NoError(t, err)

		revoked, err := CheckStatus(c.Statuses()[0], listVC)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("wrong list", func(t *testing.T) {
		other := status
		other.StatusListCredential = "https://example.org/status/2"
		_, err := CheckStatus(other, listVC)
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)
	})

	t.Run("purpose mismatch", func(t *testing.T) {
		other := status
		other.StatusPurpose = PurposeSuspension
		_, err := CheckStatus(other, listVC)
		assert.ErrorContains(t, err, "does not match list purpose")
	})

	t.Run("invalid index", func(t *testing.T) {
		other := status
		other.StatusListIndex = "forty-two"
		_, err := CheckStatus(other, listVC)
		assert.ErrorIs(t, err, parseerr.ErrInvalidShape)
	})

	t.Run("list without encodedList", func(t *testing.T) {
		empty, err := vc.ParseCredential([]byte(`{"type":"VerifiableCredential","credentialSubject":{"statusPurpose":"revocation"}}`))
		require.NoError(t, err)
		_, err = CheckStatus(status, empty)
		assert.ErrorIs(t, err, parseerr.ErrMissingField)
	})

	t.Run("nil list", func(t *testing.T) {
		_, err := CheckStatus(status, nil)
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)
	})
}
