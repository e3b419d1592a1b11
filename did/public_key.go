package did

import (
	"crypto"
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/multiformats/go-multicodec"
	"github.com/pilacorp/go-did-sdk/credential/common/codec"
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
)

// Verification method types that carry a raw public key in publicKeyBase58.
const (
	Ed25519VerificationKey2018        = "Ed25519VerificationKey2018"
	Ed25519VerificationKey2020        = "Ed25519VerificationKey2020"
	EcdsaSecp256k1VerificationKey2019 = "EcdsaSecp256k1VerificationKey2019"
	X25519KeyAgreementKey2019         = "X25519KeyAgreementKey2019"
	X25519KeyAgreementKey2020         = "X25519KeyAgreementKey2020"
)

// PublicKeyBytes returns the public key material of the verification method.
// The encodings are tried in a fixed order: publicKeyMultibase (the decoded
// bytes, including any multicodec prefix), publicKeyBase58, then publicKeyJwk,
// of which only OKP keys on the Ed25519 curve are supported.
func (vm *VerificationMethod) PublicKeyBytes() ([]byte, error) {
	switch {
	case vm.hasMultibase:
		b, _, err := codec.MultibaseDecode(vm.publicKeyMultibase)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid publicKeyMultibase in verification method '%s'", vm.id)
		}
		return b, nil
	case vm.hasBase58:
		b, err := codec.Base58Decode(vm.publicKeyBase58)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid publicKeyBase58 in verification method '%s'", vm.id)
		}
		return b, nil
	case vm.publicKeyJwk != nil:
		return vm.ed25519JwkBytes()
	}
	return nil, parseerr.New(parseerr.ErrNoUsableKey, "no usable public key found in verification method '%s'", vm.id)
}

func (vm *VerificationMethod) ed25519JwkBytes() ([]byte, error) {
	kty, _ := vm.publicKeyJwk.GetString("kty")
	crv, _ := vm.publicKeyJwk.GetString("crv")
	if kty != "OKP" || crv != "Ed25519" {
		logging.Log().
			WithField(logging.FieldKeyID, vm.id).
			Debugf("Unsupported publicKeyJwk (kty=%q, crv=%q)", kty, crv)
		return nil, parseerr.New(parseerr.ErrUnsupportedKey,
			"publicKeyJwk is present but kty %q / crv %q is not supported", kty, crv)
	}
	if _, ok := vm.publicKeyJwk.Get("x"); !ok {
		return nil, parseerr.New(parseerr.ErrMalformedKey, "publicKeyJwk is missing 'x'")
	}

	key, err := vm.parseJwk()
	if err != nil {
		return nil, err
	}
	okp, ok := key.(jwk.OKPPublicKey)
	if !ok {
		return nil, parseerr.New(parseerr.ErrMalformedKey, "publicKeyJwk is not an OKP public key")
	}
	return okp.X(), nil
}

func (vm *VerificationMethod) parseJwk() (jwk.Key, error) {
	key, err := jwk.ParseKey(jsonvalue.ObjectValue(vm.publicKeyJwk).Bytes())
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid publicKeyJwk in verification method '%s'", vm.id)
	}
	return key, nil
}

// PublicKey returns the public key as a Go crypto key: ed25519.PublicKey,
// *ecdsa.PublicKey or *ecdh.PublicKey. Multibase keys are identified by their
// multicodec prefix and base58 keys by the verification method type.
func (vm *VerificationMethod) PublicKey() (crypto.PublicKey, error) {
	switch {
	case vm.hasMultibase:
		b, err := vm.PublicKeyBytes()
		if err != nil {
			return nil, err
		}
		code, key, err := codec.SplitMulticodec(b)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid publicKeyMultibase in verification method '%s'", vm.id)
		}
		return publicKeyFromMulticodec(code, key)
	case vm.hasBase58:
		b, err := vm.PublicKeyBytes()
		if err != nil {
			return nil, err
		}
		return publicKeyFromType(vm.typ, b)
	case vm.publicKeyJwk != nil:
		key, err := vm.parseJwk()
		if err != nil {
			return nil, err
		}
		var raw interface{}
		if err := key.Raw(&raw); err != nil {
			return nil, parseerr.Wrap(parseerr.ErrUnsupportedKey, err, "publicKeyJwk is present but cannot be converted")
		}
		return raw, nil
	}
	return nil, parseerr.New(parseerr.ErrNoUsableKey, "no usable public key found in verification method '%s'", vm.id)
}

func publicKeyFromMulticodec(code multicodec.Code, key []byte) (crypto.PublicKey, error) {
	switch code {
	case multicodec.Ed25519Pub:
		return ed25519Key(key)
	case multicodec.Secp256k1Pub:
		return secp256k1Key(key)
	case multicodec.X25519Pub:
		return x25519Key(key)
	case multicodec.P256Pub:
		return compressedECKey(elliptic.P256(), 33, key)
	case multicodec.P384Pub:
		return compressedECKey(elliptic.P384(), 49, key)
	}
	return nil, parseerr.New(parseerr.ErrUnsupportedKey, "unsupported multicodec key type: %s", code)
}

func publicKeyFromType(typ string, key []byte) (crypto.PublicKey, error) {
	switch typ {
	case Ed25519VerificationKey2018, Ed25519VerificationKey2020:
		return ed25519Key(key)
	case EcdsaSecp256k1VerificationKey2019:
		return secp256k1Key(key)
	case X25519KeyAgreementKey2019, X25519KeyAgreementKey2020:
		return x25519Key(key)
	}
	return nil, parseerr.New(parseerr.ErrUnsupportedKey, "publicKeyBase58 is present but type %q is not supported", typ)
}

func ed25519Key(key []byte) (crypto.PublicKey, error) {
	if len(key) != ed25519.PublicKeySize {
		return nil, invalidKeyLength("ed25519", len(key))
	}
	return ed25519.PublicKey(key), nil
}

func secp256k1Key(key []byte) (crypto.PublicKey, error) {
	pub, err := secp256k1.ParsePubKey(key)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid secp256k1 public key")
	}
	return pub.ToECDSA(), nil
}

func x25519Key(key []byte) (crypto.PublicKey, error) {
	pub, err := ecdh.X25519().NewPublicKey(key)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedKey, err, "invalid x25519 public key")
	}
	return pub, nil
}

func compressedECKey(curve elliptic.Curve, expectedLen int, key []byte) (crypto.PublicKey, error) {
	if len(key) != expectedLen {
		return nil, invalidKeyLength(curve.Params().Name, len(key))
	}
	x, y := elliptic.UnmarshalCompressed(curve, key)
	if x == nil {
		return nil, parseerr.New(parseerr.ErrMalformedKey, "invalid compressed %s point", curve.Params().Name)
	}
	return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
}

func invalidKeyLength(alg string, got int) error {
	return parseerr.New(parseerr.ErrMalformedKey, "invalid %s public key length: %d", alg, got)
}
