package vc

import (
	"fmt"

	"github.com/PaesslerAG/jsonpath"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// Subject represents one entry of the credentialSubject field.
type Subject struct {
	ID string
	// Claims holds every member other than id, with nested values preserved.
	Claims *jsonvalue.Object
}

// SubjectFromObject creates a credential subject from a JSON object.
func SubjectFromObject(obj *jsonvalue.Object) (Subject, error) {
	id, err := util.OptionalString(obj, jsonFldID)
	if err != nil {
		return Subject{}, fmt.Errorf("failed to parse subject id: %w", err)
	}
	return Subject{ID: id, Claims: obj.Without(jsonFldID)}, nil
}

// Claim returns a top-level claim.
func (s Subject) Claim(name string) (jsonvalue.Value, bool) {
	return s.Claims.Get(name)
}

// Query evaluates a JSONPath expression, such as $.degree.name, against the
// subject. The result uses the types encoding/json decodes into.
func (s Subject) Query(path string) (interface{}, error) {
	result, err := jsonpath.Get(path, s.ToValue().Interface())
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrInvalidArgument, err, "failed to evaluate %q on credential subject", path)
	}
	return result, nil
}

// ToValue converts the subject to a JSON object, with id first.
func (s Subject) ToValue() jsonvalue.Value {
	obj := jsonvalue.NewObject()
	if s.ID != "" {
		obj.Set(jsonFldID, jsonvalue.StringValue(s.ID))
	}
	for _, m := range s.Claims.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}

func (s Subject) clone() Subject {
	return Subject{ID: s.ID, Claims: s.Claims.Clone()}
}
