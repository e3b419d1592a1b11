package vp

import (
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
	"github.com/pilacorp/go-did-sdk/credential/vc"
)

const (
	jsonFldContext    = "@context"
	jsonFldID         = "id"
	jsonFldType       = "type"
	jsonFldHolder     = "holder"
	jsonFldCredential = "verifiableCredential"
	jsonFldProof      = "proof"
)

var presentationFields = []string{jsonFldContext, jsonFldID, jsonFldType, jsonFldHolder, jsonFldCredential, jsonFldProof}

// parseContext extracts the @context field from a Presentation.
func parseContext(obj *jsonvalue.Object, p *Presentation) error {
	contexts, err := util.ParseContexts(obj)
	if err != nil {
		return err
	}
	p.context = contexts
	return nil
}

// parseID extracts the ID field from a Presentation.
func parseID(obj *jsonvalue.Object, p *Presentation) error {
	id, err := util.OptionalString(obj, jsonFldID)
	if err != nil {
		return err
	}
	p.id = id
	return nil
}

// parseTypes extracts the type field from a Presentation.
func parseTypes(obj *jsonvalue.Object, p *Presentation) error {
	types, err := vc.ParseTypes(obj)
	if err != nil {
		return err
	}
	p.types = types
	return nil
}

// parseHolder extracts the holder field, given as a string or an object with an id.
func parseHolder(obj *jsonvalue.Object, p *Presentation) error {
	v, ok := obj.Get(jsonFldHolder)
	if !ok || v.IsNull() {
		return nil
	}
	if holderObj, ok := v.Object(); ok {
		id, err := util.RequiredString(holderObj, jsonFldID)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'holder'")
		}
		p.holder = id
		return nil
	}
	holder, err := util.OptionalString(obj, jsonFldHolder)
	if err != nil {
		return err
	}
	p.holder = holder
	return nil
}

// parseVerifiableCredentials extracts the verifiableCredential field from a Presentation.
func parseVerifiableCredentials(obj *jsonvalue.Object, p *Presentation, opts []vc.CredentialOpt) error {
	n := jsonvalue.Normalize(obj, jsonFldCredential)
	if n.Shape == jsonvalue.ShapeScalar {
		return parseerr.New(parseerr.ErrInvalidShape, "'verifiableCredential' must be an object or an array of objects")
	}

	items := n.Items()
	credentials := make([]*vc.Credential, 0, len(items))
	for i, item := range items {
		credential, err := vc.FromValue(item, opts...)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'verifiableCredential' entry at index %d", i)
		}
		credentials = append(credentials, credential)
	}
	p.credentials = credentials
	p.credentialShape = n.Shape
	return nil
}

// parseProofs extracts the proof field from a Presentation.
func parseProofs(obj *jsonvalue.Object, p *Presentation) error {
	proof, present, err := vc.ParseProofValue(obj)
	if err != nil {
		return err
	}
	p.proof, p.hasProof = proof, present
	return nil
}

// serializePresentation converts a Presentation to a JSON object.
func serializePresentation(p *Presentation) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.Set(jsonFldContext, jsonvalue.ArrayValue(util.CloneValues(p.context)...))
	if p.id != "" {
		obj.Set(jsonFldID, jsonvalue.StringValue(p.id))
	}
	obj.Set(jsonFldType, util.SerializeTypes(p.types))
	if p.holder != "" {
		obj.Set(jsonFldHolder, jsonvalue.StringValue(p.holder))
	}

	credentials := util.MapSlice(p.credentials, (*vc.Credential).ToValue)
	switch {
	case p.credentialShape == jsonvalue.ShapeObject && len(credentials) == 1:
		obj.Set(jsonFldCredential, credentials[0])
	case p.credentialShape == jsonvalue.ShapeArray:
		obj.Set(jsonFldCredential, jsonvalue.ArrayValue(credentials...))
	}

	if p.hasProof {
		obj.Set(jsonFldProof, p.proof.Clone())
	}
	for _, m := range p.additional.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}
