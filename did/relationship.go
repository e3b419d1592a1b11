package did

import (
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
)

// Verification relationships of a DID document.
const (
	Authentication       = "authentication"
	AssertionMethod      = "assertionMethod"
	KeyAgreement         = "keyAgreement"
	CapabilityInvocation = "capabilityInvocation"
	CapabilityDelegation = "capabilityDelegation"
)

var relationshipNames = []string{
	Authentication, AssertionMethod, KeyAgreement, CapabilityInvocation, CapabilityDelegation,
}

// Relationship is one entry of a verification relationship: either a reference
// to a verification method or a method embedded in place.
type Relationship struct {
	Reference string
	Embedded  *VerificationMethod
}

// ID returns the reference, or the id of the embedded method.
func (r Relationship) ID() string {
	if r.Embedded != nil {
		return r.Embedded.ID()
	}
	return r.Reference
}

func (r Relationship) toValue() jsonvalue.Value {
	if r.Embedded != nil {
		return r.Embedded.toValue()
	}
	return jsonvalue.StringValue(r.Reference)
}

func parseRelationship(obj *jsonvalue.Object, name string) ([]Relationship, error) {
	items := jsonvalue.Normalize(obj, name).Items()
	result := make([]Relationship, 0, len(items))
	for i, item := range items {
		switch item.Kind() {
		case jsonvalue.KindString:
			ref, _ := item.AsString()
			if ref == "" {
				return nil, parseerr.New(parseerr.ErrInvalidShape, "'%s' reference at index %d must not be empty", name, i)
			}
			result = append(result, Relationship{Reference: ref})
		case jsonvalue.KindObject:
			entry, _ := item.Object()
			vm, err := verificationMethodFromObject(entry)
			if err != nil {
				return nil, parseerr.Wrap(parseerr.KindOf(err), err, "invalid '%s' entry at index %d", name, i)
			}
			result = append(result, Relationship{Embedded: vm})
		default:
			return nil, parseerr.New(parseerr.ErrInvalidShape,
				"'%s' entry at index %d must be a reference string or a verification method, got %s", name, i, item.Kind())
		}
	}
	return result, nil
}

func relationshipIDs(rels []Relationship) []string {
	ids := make([]string, len(rels))
	for i, r := range rels {
		ids[i] = r.ID()
	}
	return ids
}
