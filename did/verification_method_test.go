package did

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/multiformats/go-multicodec"
	"github.com/pilacorp/go-did-sdk/credential/common/codec"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKeyHex       = "730197cfd86bc84bee128f9c05c2d30569e7afd9018f1dbfd714cc9ddb60b61e"
	testKeyBase58    = "8jwJ4Q2k92oRx5SjomFMhJx9sADShgqgZoT14dXM3rG5"
	testKeyMultibase = "z6MknCCLeeHBUaHu4aHSVLDCYQW9gjVJ7a63FpMvtuVMy53T"
	testKeyJwkX      = "cwGXz9hryEvuEo-cBcLTBWnnr9kBjx2_1xTMndtgth4"
)

func testKey(t *testing.T) []byte {
	b, err := hex.DecodeString(testKeyHex)
	require.NoError(t, err)
	return b
}

func TestNewVerificationMethod(t *testing.T) {
	t.Run("requires id", func(t *testing.T) {
		vm, err := NewVerificationMethod(VerificationMethodContents{Type: Ed25519VerificationKey2018})

		assert.Nil(t, vm)
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "id")
	})

	t.Run("additional properties are copied", func(t *testing.T) {
		props := map[string]interface{}{
			"nested": map[string]interface{}{"value": "original"},
			"list":   []interface{}{"a"},
		}
		vm, err := NewVerificationMethod(VerificationMethodContents{
			ID:                   "did:example:123#key-1",
			AdditionalProperties: props,
		})
		require.NoError(t, err)

		props["nested"].(map[string]interface{})["value"] = "changed"
		props["list"] = []interface{}{"b"}
		props["extra"] = true

		out, err := vm.ToJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"did:example:123#key-1","list":["a"],"nested":{"value":"original"}}`, string(out))
	})

	t.Run("jwk is copied", func(t *testing.T) {
		jwk := map[string]interface{}{"kty": "OKP", "crv": "Ed25519", "x": testKeyJwkX}
		vm, err := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1", PublicKeyJwk: jwk})
		require.NoError(t, err)

		jwk["x"] = "tampered"

		b, err := vm.PublicKeyBytes()
		require.NoError(t, err)
		assert.Equal(t, testKey(t), b)
	})

	t.Run("unconvertible additional property", func(t *testing.T) {
		_, err := NewVerificationMethod(VerificationMethodContents{
			ID:                   "did:example:123#key-1",
			AdditionalProperties: map[string]interface{}{"ch": make(chan int)},
		})
		assert.ErrorIs(t, err, parseerr.ErrInvalidArgument)
	})
}

func TestParseVerificationMethod(t *testing.T) {
	t.Run("round-trips all fields", func(t *testing.T) {
		input := `{
			"id": "did:example:123#key-1",
			"type": "Ed25519VerificationKey2020",
			"controller": "did:example:123",
			"publicKeyJwk": {"kty": "OKP", "crv": "Ed25519", "x": "` + testKeyJwkX + `"},
			"publicKeyBase58": "` + testKeyBase58 + `",
			"publicKeyMultibase": "` + testKeyMultibase + `",
			"revoked": "2024-01-01T00:00:00Z"
		}`
		vm, err := ParseVerificationMethod([]byte(input))
		require.NoError(t, err)

		assert.Equal(t, "did:example:123#key-1", vm.ID())
		assert.Equal(t, Ed25519VerificationKey2020, vm.Type())
		assert.Equal(t, "did:example:123", vm.Controller())
		assert.Equal(t, testKeyBase58, vm.PublicKeyBase58())
		assert.Equal(t, testKeyMultibase, vm.PublicKeyMultibase())
		assert.Equal(t, "OKP", vm.PublicKeyJwk()["kty"])
		revoked, ok := vm.AdditionalProperties().GetString("revoked")
		assert.True(t, ok)
		assert.Equal(t, "2024-01-01T00:00:00Z", revoked)

		out, err := vm.ToJSON()
		require.NoError(t, err)
		assert.JSONEq(t, input, string(out))

		again, err := ParseVerificationMethod(out)
		require.NoError(t, err)
		assert.Equal(t, vm.Controller(), again.Controller())
		assert.Equal(t, vm.Type(), again.Type())
	})

	t.Run("controller array is kept as JSON text", func(t *testing.T) {
		vm, err := ParseVerificationMethod([]byte(`{"id":"did:example:1#k","controller":["did:example:a", "did:example:b"]}`))
		require.NoError(t, err)

		assert.Equal(t, `["did:example:a","did:example:b"]`, vm.Controller())
		assert.Equal(t, []string{"did:example:a", "did:example:b"}, vm.Controllers())

		out, err := vm.ToJSON()
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"did:example:1#k","controller":["did:example:a","did:example:b"]}`, string(out))
	})

	tests := []struct {
		name     string
		input    string
		kind     error
		errorMsg string
	}{
		{name: "missing id", input: `{"type":"x"}`, kind: parseerr.ErrMissingField, errorMsg: "'id'"},
		{name: "null id", input: `{"id":null}`, kind: parseerr.ErrInvalidShape, errorMsg: "'id'"},
		{name: "empty id", input: `{"id":"  "}`, kind: parseerr.ErrInvalidShape, errorMsg: "'id' must not be empty"},
		{name: "numeric type", input: `{"id":"a","type":1}`, kind: parseerr.ErrInvalidShape, errorMsg: "'type'"},
		{name: "jwk not an object", input: `{"id":"a","publicKeyJwk":"x"}`, kind: parseerr.ErrInvalidShape, errorMsg: "'publicKeyJwk'"},
		{name: "base58 not a string", input: `{"id":"a","publicKeyBase58":[]}`, kind: parseerr.ErrInvalidShape, errorMsg: "'publicKeyBase58'"},
		{name: "controller object", input: `{"id":"a","controller":{}}`, kind: parseerr.ErrInvalidShape, errorMsg: "'controller'"},
		{name: "controller array with number", input: `{"id":"a","controller":["x",1]}`, kind: parseerr.ErrInvalidShape, errorMsg: "index 1"},
		{name: "not an object", input: `[]`, kind: parseerr.ErrInvalidShape, errorMsg: "must be a JSON object"},
		{name: "malformed", input: `{"id":`, kind: parseerr.ErrMalformedJSON, errorMsg: "invalid JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vm, err := ParseVerificationMethod([]byte(tt.input))

			assert.Nil(t, vm)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestVerificationMethod_PublicKeyBytes(t *testing.T) {
	key := testKey(t)

	t.Run("multibase wins over base58", func(t *testing.T) {
		vm, err := NewVerificationMethod(VerificationMethodContents{
			ID:                 "did:example:123#key-1",
			PublicKeyMultibase: testKeyMultibase,
			PublicKeyBase58:    "invalid-base58-0OIl",
		})
		require.NoError(t, err)

		b, err := vm.PublicKeyBytes()
		require.NoError(t, err)
		assert.Equal(t, append([]byte{0xed, 0x01}, key...), b)
	})

	t.Run("base58", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1", PublicKeyBase58: testKeyBase58})

		b, err := vm.PublicKeyBytes()
		require.NoError(t, err)
		assert.Equal(t, key, b)
	})

	t.Run("base58 from the example document", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1", PublicKeyBase58: "2R2JpJUNonBPaawUGhWXeS1T1EsYz8f7nQ4GZyKwhLQ1"})

		b, err := vm.PublicKeyBytes()
		require.NoError(t, err)
		assert.Len(t, b, 32)
	})

	t.Run("invalid base58", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1", PublicKeyBase58: "0OIl"})

		_, err := vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrMalformedKey)
		assert.ErrorIs(t, err, codec.ErrInvalidBase58)
		assert.Contains(t, err.Error(), "base58")
	})

	t.Run("invalid multibase", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1", PublicKeyMultibase: "!nope"})

		_, err := vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrMalformedKey)
	})

	t.Run("Ed25519 JWK", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{
			ID:           "did:example:123#key-1",
			PublicKeyJwk: map[string]interface{}{"kty": "OKP", "crv": "Ed25519", "x": testKeyJwkX},
		})

		b, err := vm.PublicKeyBytes()
		require.NoError(t, err)
		assert.Equal(t, key, b)
	})

	t.Run("JWK without x", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{
			ID:           "did:example:123#key-1",
			PublicKeyJwk: map[string]interface{}{"kty": "OKP", "crv": "Ed25519"},
		})

		_, err := vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrMalformedKey)
		assert.Contains(t, err.Error(), "'x'")
	})

	t.Run("EC P-256 JWK is not supported", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{
			ID: "did:example:123#key-1",
			PublicKeyJwk: map[string]interface{}{
				"kty": "EC", "crv": "P-256",
				"x": "MKBCTNIcKUSDii11ySs3526iDZ8AiTo7Tu6KPAqv7D4",
				"y": "4Etl6SRW2YiLUrN5vfvVHuhp7x8PxltmWWlbbM4IFyM",
			},
		})

		_, err := vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrUnsupportedKey)
		assert.Contains(t, err.Error(), "not supported")
		assert.Contains(t, err.Error(), "publicKeyJwk is present")
	})

	t.Run("no key material", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "did:example:123#key-1"})

		_, err := vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrNoUsableKey)
		assert.Contains(t, err.Error(), "no usable public key")
	})

	t.Run("empty multibase member counts as present", func(t *testing.T) {
		vm, err := ParseVerificationMethod([]byte(`{"id":"a","publicKeyMultibase":"","publicKeyBase58":"` + testKeyBase58 + `"}`))
		require.NoError(t, err)

		_, err = vm.PublicKeyBytes()
		assert.ErrorIs(t, err, parseerr.ErrMalformedKey)
	})
}

func TestVerificationMethod_PublicKey(t *testing.T) {
	key := testKey(t)

	t.Run("ed25519 multibase", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: testKeyMultibase})

		pub, err := vm.PublicKey()
		require.NoError(t, err)
		assert.Equal(t, ed25519.PublicKey(key), pub)
	})

	t.Run("secp256k1 multibase", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: "zQ3shVc2UkAfJCdc1TR8E66J85h48P43r93q8jGPkPpjF9Ef9"})

		pub, err := vm.PublicKey()
		require.NoError(t, err)
		ec, ok := pub.(*ecdsa.PublicKey)
		require.True(t, ok)
		assert.Equal(t, "79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798", hex.EncodeToString(ec.X.Bytes()))
	})

	t.Run("p-256 multibase", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: "zDnaepsL7AXenJkVYdkh5KuKsSU7Ykh7kyXaLLU7auN9FWSiZ"})

		pub, err := vm.PublicKey()
		require.NoError(t, err)
		ec, ok := pub.(*ecdsa.PublicKey)
		require.True(t, ok)
		assert.Equal(t, "P-256", ec.Curve.Params().Name)
	})

	t.Run("x25519 multibase", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: "z6LSjR7TahqcEVXB3TpWLQmK1uAdiJkZQJ1qSnAgZ6AsmE2q"})

		pub, err := vm.PublicKey()
		require.NoError(t, err)
		x, ok := pub.(*ecdh.PublicKey)
		require.True(t, ok)
		assert.Equal(t, key, x.Bytes())
	})

	t.Run("unsupported multicodec", func(t *testing.T) {
		mb := codec.MultibaseEncode(codec.PrefixMulticodec(multicodec.Raw, key))
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: mb})

		_, err := vm.PublicKey()
		assert.ErrorIs(t, err, parseerr.ErrUnsupportedKey)
	})

	t.Run("ed25519 with wrong length", func(t *testing.T) {
		mb := codec.MultibaseEncode(codec.PrefixMulticodec(multicodec.Ed25519Pub, key[:31]))
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", PublicKeyMultibase: mb})

		_, err := vm.PublicKey()
		assert.ErrorIs(t, err, parseerr.ErrMalformedKey)
	})

	t.Run("base58 by type", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a", Type: Ed25519VerificationKey2018, PublicKeyBase58: testKeyBase58})
		pub, err := vm.PublicKey()
		require.NoError(t, err)
		assert.Equal(t, ed25519.PublicKey(key), pub)

		vm, _ = NewVerificationMethod(VerificationMethodContents{ID: "a", Type: EcdsaSecp256k1VerificationKey2019, PublicKeyBase58: "jesTu2BpszP8DKSoi1R5G6ggjHrsrVnboLdx6V47vkoR"})
		pub, err = vm.PublicKey()
		require.NoError(t, err)
		assert.IsType(t, &ecdsa.PublicKey{}, pub)

		vm, _ = NewVerificationMethod(VerificationMethodContents{ID: "a", Type: "UnknownKey2099", PublicKeyBase58: testKeyBase58})
		_, err = vm.PublicKey()
		assert.ErrorIs(t, err, parseerr.ErrUnsupportedKey)
	})

	t.Run("jwk", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{
			ID:           "a",
			PublicKeyJwk: map[string]interface{}{"kty": "OKP", "crv": "Ed25519", "x": testKeyJwkX},
		})

		pub, err := vm.PublicKey()
		require.NoError(t, err)
		assert.Equal(t, ed25519.PublicKey(key), pub)
	})

	t.Run("no key", func(t *testing.T) {
		vm, _ := NewVerificationMethod(VerificationMethodContents{ID: "a"})

		_, err := vm.PublicKey()
		assert.True(t, errors.Is(err, parseerr.ErrNoUsableKey))
	})
}
