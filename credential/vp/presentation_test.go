package vp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/vc"
)

const embeddedCredential = `{
  "@context": ["https://www.w3.org/2018/credentials/v1"],
  "id": "urn:uuid:vc-1",
  "type": ["VerifiableCredential"],
  "issuer": "did:example:issuer",
  "credentialSubject": {"id": "did:example:holder", "name": "Alice"},
  "proof": {"type": "Ed25519Signature2020", "proofValue": "z111"}
}`

const examplePresentation = `{
  "@context": ["https://www.w3.org/2018/credentials/v1"],
  "id": "urn:uuid:vp-1",
  "type": ["VerifiablePresentation"],
  "holder": "did:example:holder",
  "verifiableCredential": [` + embeddedCredential + `],
  "proof": [
    {"type": "Ed25519Signature2020", "proofPurpose": "authentication", "challenge": "c1", "proofValue": "z222"},
    {"type": "EcdsaSecp256k1Signature2019", "proofPurpose": "authentication", "jws": "eyJ..sig"}
  ]
}`

func TestParsePresentation(t *testing.T) {
	t.Run("proof set", func(t *testing.T) {
		p, err := ParsePresentation([]byte(examplePresentation))
		require.NoError(t, err)

		assert.Equal(t, "urn:uuid:vp-1", p.ID())
		assert.Equal(t, []string{"VerifiablePresentation"}, p.Types())
		assert.Equal(t, "did:example:holder", p.Holder())

		proofs := p.Proofs()
		require.Len(t, proofs, 2)
		second, _ := proofs[1].Object()
		typ, _ := second.GetString("type")
		assert.Equal(t, "EcdsaSecp256k1Signature2019", typ)

		typed, err := p.TypedProofs()
		require.NoError(t, err)
		assert.Equal(t, "c1", typed[0].Challenge)
		assert.Equal(t, "eyJ..sig", typed[1].JWS)

		credentials := p.Credentials()
		require.Len(t, credentials, 1)
		assert.Equal(t, "urn:uuid:vc-1", credentials[0].ID())
		assert.Equal(t, "did:example:holder", credentials[0].Subjects()[0].ID)
	})

	t.Run("single credential and single proof", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":"VerifiablePresentation","verifiableCredential":` + embeddedCredential + `,
			"proof":{"type":"Ed25519Signature2020"}}`))
		require.NoError(t, err)

		assert.Len(t, p.Credentials(), 1)
		assert.Len(t, p.Proofs(), 1)
	})

	t.Run("empty credential array", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":["VerifiablePresentation"],"verifiableCredential":[]}`))
		require.NoError(t, err)

		assert.NotNil(t, p.Credentials())
		assert.Empty(t, p.Credentials())
		assert.Empty(t, p.Proofs())
	})

	t.Run("absent credentials yield an empty list", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":"VerifiablePresentation","proof":[{"type":"Ed25519Signature2020"}]}`))
		require.NoError(t, err)

		assert.NotNil(t, p.Credentials())
		assert.Empty(t, p.Credentials())
	})

	t.Run("holder object", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":"VerifiablePresentation","holder":{"id":"did:example:h","name":"H"}}`))
		require.NoError(t, err)
		assert.Equal(t, "did:example:h", p.Holder())
	})

	t.Run("credential options are applied", func(t *testing.T) {
		input := []byte(`{"type":"VerifiablePresentation","verifiableCredential":{"type":"Other","credentialSubject":{}}}`)

		_, err := ParsePresentation(input)
		require.NoError(t, err)

		_, err = ParsePresentation(input, WithCredentialOptions(vc.WithStrictTypes()))
		assert.ErrorIs(t, err, parseerr.ErrInvalidShape)
		assert.ErrorContains(t, err, "verifiableCredential")
	})

	t.Run("unknown members are kept", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":"VerifiablePresentation","termsOfUse":[{"type":"HolderPolicy"}]}`))
		require.NoError(t, err)
		assert.True(t, p.AdditionalProperties().Has("termsOfUse"))
	})
}

func TestParsePresentation_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		opts     []PresentationOpt
		kind     error
		errorMsg string
	}{
		{
			name:     "empty input",
			input:    "  ",
			kind:     parseerr.ErrMalformedJSON,
			errorMsg: "invalid JSON format for presentation",
		},
		{
			name:     "not an object",
			input:    `"VerifiablePresentation"`,
			kind:     parseerr.ErrInvalidShape,
			errorMsg: "presentation must be a JSON object",
		},
		{
			name:     "missing type",
			input:    `{"verifiableCredential":[]}`,
			kind:     parseerr.ErrMissingField,
			errorMsg: "'type'",
		},
		{
			name:     "invalid embedded credential",
			input:    `{"type":"VerifiablePresentation","verifiableCredential":[` + embeddedCredential + `,{"type":"VerifiableCredential","credentialSubject":null}]}`,
			kind:     parseerr.ErrMissingField,
			errorMsg: "invalid 'verifiableCredential' entry at index 1",
		},
		{
			name:     "credential given as a string",
			input:    `{"type":"VerifiablePresentation","verifiableCredential":"eyJhbGciOi.x.y"}`,
			kind:     parseerr.ErrInvalidShape,
			errorMsg: "verifiableCredential",
		},
		{
			name:     "scalar proof",
			input:    `{"type":"VerifiablePresentation","proof":true}`,
			kind:     parseerr.ErrInvalidShape,
			errorMsg: "'proof'",
		},
		{
			name:     "numeric holder",
			input:    `{"type":"VerifiablePresentation","holder":7}`,
			kind:     parseerr.ErrInvalidShape,
			errorMsg: "'holder' must be a string",
		},
		{
			name:     "strict types",
			input:    `{"type":"SomethingElse"}`,
			opts:     []PresentationOpt{WithStrictTypes()},
			kind:     parseerr.ErrInvalidShape,
			errorMsg: "VerifiablePresentation",
		},
		{
			name:     "too deep",
			input:    `{"type":"VerifiablePresentation","x":[[[]]]}`,
			opts:     []PresentationOpt{WithMaxDepth(3)},
			kind:     parseerr.ErrMalformedJSON,
			errorMsg: "invalid JSON format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParsePresentation([]byte(tt.input), tt.opts...)

			require.Error(t, err)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.kind)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestPresentation_ToJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		p, err := ParsePresentation([]byte(examplePresentation))
		require.NoError(t, err)

		data, err := p.ToJSON()
		require.NoError(t, err)

		reparsed, err := ParsePresentation(data)
		require.NoError(t, err)
		assert.Len(t, reparsed.Proofs(), 2)
		assert.Equal(t, p.Credentials()[0].Subjects()[0].ID, reparsed.Credentials()[0].Subjects()[0].ID)

		assert.Equal(t, p.Types(), reparsed.Types())
		assert.Equal(t, p.Holder(), reparsed.Holder())
		assert.True(t, jsonvalue.Equal(p.Proofs()[1], reparsed.Proofs()[1]))

		second, err := reparsed.ToJSON()
		require.NoError(t, err)
		assert.Equal(t, string(data), string(second))
	})

	t.Run("single credential stays single", func(t *testing.T) {
		p, err := ParsePresentation([]byte(`{"type":"VerifiablePresentation","verifiableCredential":{"type":"VerifiableCredential","credentialSubject":{"id":"did:example:s"}}}`))
		require.NoError(t, err)

		obj, err := jsonvalue.ParseObject(p.ToValue().Bytes(), jsonvalue.DefaultMaxDepth)
		require.NoError(t, err)
		credential, _ := obj.Get("verifiableCredential")
		assert.Equal(t, jsonvalue.KindObject, credential.Kind())
		assert.False(t, obj.Has("proof"))
	})
}
