// Package dto holds typed views over structures that credentials and presentations keep as raw JSON.
package dto

import (
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// Proof represents a Linked Data Proof for a Verifiable Credential.
type Proof struct {
	Type               string   `json:"type"`
	Created            string   `json:"created"`
	VerificationMethod string   `json:"verificationMethod"`
	ProofPurpose       string   `json:"proofPurpose"`
	ProofValue         string   `json:"proofValue,omitempty"`
	JWS                string   `json:"jws,omitempty"`
	Disclosures        []string `json:"disclosures,omitempty"`
	Cryptosuite        string   `json:"cryptosuite,omitempty"`
	Challenge          string   `json:"challenge,omitempty"`
	Domain             string   `json:"domain,omitempty"`
}

// ProofFromValue reads the known members of a proof object. Members of other
// types or unknown members are left to the caller's raw value.
func ProofFromValue(v jsonvalue.Value) (Proof, error) {
	obj, ok := v.Object()
	if !ok {
		return Proof{}, parseerr.New(parseerr.ErrInvalidShape, "proof must be a JSON object, got %s", v.Kind())
	}

	var p Proof
	for key, dst := range map[string]*string{
		"type":               &p.Type,
		"created":            &p.Created,
		"verificationMethod": &p.VerificationMethod,
		"proofPurpose":       &p.ProofPurpose,
		"proofValue":         &p.ProofValue,
		"jws":                &p.JWS,
		"cryptosuite":        &p.Cryptosuite,
		"challenge":          &p.Challenge,
		"domain":             &p.Domain,
	} {
		s, err := util.OptionalString(obj, key)
		if err != nil {
			return Proof{}, err
		}
		*dst = s
	}

	disclosures, err := util.StringList(obj, "disclosures")
	if err != nil {
		return Proof{}, err
	}
	if len(disclosures) > 0 {
		p.Disclosures = disclosures
	}

	return p, nil
}

// ProofsFromValues converts every proof of a proof set.
func ProofsFromValues(values []jsonvalue.Value) ([]Proof, error) {
	proofs := make([]Proof, 0, len(values))
	for i, v := range values {
		p, err := ProofFromValue(v)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.KindOf(err), err, "invalid proof at index %d", i)
		}
		proofs = append(proofs, p)
	}
	return proofs, nil
}
