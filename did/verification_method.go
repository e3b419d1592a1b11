package did

import (
	"strings"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// JSON field names of a verification method.
const (
	jsonFldID                 = "id"
	jsonFldType               = "type"
	jsonFldController         = "controller"
	jsonFldPublicKeyJwk       = "publicKeyJwk"
	jsonFldPublicKeyBase58    = "publicKeyBase58"
	jsonFldPublicKeyMultibase = "publicKeyMultibase"
)

var verificationMethodFields = []string{
	jsonFldID, jsonFldType, jsonFldController,
	jsonFldPublicKeyJwk, jsonFldPublicKeyBase58, jsonFldPublicKeyMultibase,
}

// VerificationMethodContents holds the fields used to construct a VerificationMethod.
// Empty strings and nil maps mean the field is absent.
type VerificationMethodContents struct {
	ID                   string
	Type                 string
	Controller           string
	PublicKeyJwk         map[string]interface{}
	PublicKeyBase58      string
	PublicKeyMultibase   string
	AdditionalProperties map[string]interface{}
}

// VerificationMethod is a public key reference in a DID document. It is immutable
// once constructed.
type VerificationMethod struct {
	id         string
	typ        string
	controller string
	// controllers is set when the controller was given as an array.
	controllers []string

	publicKeyJwk       *jsonvalue.Object
	publicKeyBase58    string
	hasBase58          bool
	publicKeyMultibase string
	hasMultibase       bool

	additional *jsonvalue.Object
}

// NewVerificationMethod builds a VerificationMethod. The maps in contents are
// deep-copied, so the caller may modify them afterwards.
func NewVerificationMethod(contents VerificationMethodContents) (*VerificationMethod, error) {
	if strings.TrimSpace(contents.ID) == "" {
		return nil, parseerr.New(parseerr.ErrInvalidArgument, "verification method 'id' is required")
	}

	vm := &VerificationMethod{
		id:                 contents.ID,
		typ:                contents.Type,
		controller:         contents.Controller,
		publicKeyBase58:    contents.PublicKeyBase58,
		hasBase58:          contents.PublicKeyBase58 != "",
		publicKeyMultibase: contents.PublicKeyMultibase,
		hasMultibase:       contents.PublicKeyMultibase != "",
	}

	if contents.PublicKeyJwk != nil {
		jwk, err := jsonvalue.FromInterface(contents.PublicKeyJwk)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrInvalidArgument, err, "invalid publicKeyJwk")
		}
		vm.publicKeyJwk, _ = jwk.Object()
	}

	vm.additional = jsonvalue.NewObject()
	if contents.AdditionalProperties != nil {
		props, err := jsonvalue.FromInterface(contents.AdditionalProperties)
		if err != nil {
			return nil, parseerr.Wrap(parseerr.ErrInvalidArgument, err, "invalid additional properties")
		}
		obj, _ := props.Object()
		vm.additional = obj.Without(verificationMethodFields...)
	}

	return vm, nil
}

// ParseVerificationMethod parses a single verification method from JSON.
func ParseVerificationMethod(data []byte, opts ...DocumentOpt) (*VerificationMethod, error) {
	options := getOptions(opts...)

	v, err := jsonvalue.ParseWithDepth(data, options.maxDepth)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid JSON format for verification method")
	}
	obj, ok := v.Object()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "verification method must be a JSON object, got %s", v.Kind())
	}

	return verificationMethodFromObject(obj)
}

func verificationMethodFromObject(obj *jsonvalue.Object) (*VerificationMethod, error) {
	id, err := util.RequiredString(obj, jsonFldID)
	if err != nil {
		return nil, err
	}

	vm := &VerificationMethod{id: id}

	if vm.typ, err = util.OptionalString(obj, jsonFldType); err != nil {
		return nil, err
	}

	if err = vm.parseController(obj); err != nil {
		return nil, err
	}

	if jwk, ok := obj.Get(jsonFldPublicKeyJwk); ok && !jwk.IsNull() {
		jwkObj, isObj := jwk.Object()
		if !isObj {
			return nil, parseerr.New(parseerr.ErrInvalidShape, "'%s' must be an object, got %s", jsonFldPublicKeyJwk, jwk.Kind())
		}
		vm.publicKeyJwk = jwkObj.Clone()
	}

	if vm.publicKeyBase58, vm.hasBase58, err = presentString(obj, jsonFldPublicKeyBase58); err != nil {
		return nil, err
	}
	if vm.publicKeyMultibase, vm.hasMultibase, err = presentString(obj, jsonFldPublicKeyMultibase); err != nil {
		return nil, err
	}

	vm.additional = obj.Without(verificationMethodFields...)

	return vm, nil
}

// parseController accepts a string, or an array of strings kept as its compact JSON text.
func (vm *VerificationMethod) parseController(obj *jsonvalue.Object) error {
	v, ok := obj.Get(jsonFldController)
	if !ok || v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case jsonvalue.KindString:
		vm.controller, _ = v.AsString()
		return nil
	case jsonvalue.KindArray:
		list, idx, ok := jsonvalue.Of(v).Strings()
		if !ok {
			return parseerr.New(parseerr.ErrInvalidShape, "'%s' entry at index %d must be a string", jsonFldController, idx)
		}
		vm.controller = v.String()
		vm.controllers = list
		return nil
	}
	return parseerr.New(parseerr.ErrInvalidShape, "'%s' must be a string or an array of strings, got %s", jsonFldController, v.Kind())
}

// presentString reads a member that, when present and not null, must be a string.
// The second result reports whether it was present.
func presentString(obj *jsonvalue.Object, key string) (string, bool, error) {
	v, ok := obj.Get(key)
	if !ok || v.IsNull() {
		return "", false, nil
	}
	s, ok := v.AsString()
	if !ok {
		return "", false, parseerr.New(parseerr.ErrInvalidShape, "'%s' must be a string, got %s", key, v.Kind())
	}
	return s, true, nil
}

func (vm *VerificationMethod) ID() string {
	return vm.id
}

func (vm *VerificationMethod) Type() string {
	return vm.typ
}

// Controller returns the controller as given. An array input is returned as its
// compact JSON text, e.g. ["did:example:a","did:example:b"].
func (vm *VerificationMethod) Controller() string {
	return vm.controller
}

// Controllers returns the controller as a list.
func (vm *VerificationMethod) Controllers() []string {
	if vm.controllers != nil {
		return append([]string(nil), vm.controllers...)
	}
	if vm.controller == "" {
		return nil
	}
	return []string{vm.controller}
}

// PublicKeyJwk returns a copy of the JWK, or nil if there is none.
func (vm *VerificationMethod) PublicKeyJwk() map[string]interface{} {
	if vm.publicKeyJwk == nil {
		return nil
	}
	return vm.publicKeyJwk.Map()
}

func (vm *VerificationMethod) PublicKeyBase58() string {
	return vm.publicKeyBase58
}

func (vm *VerificationMethod) PublicKeyMultibase() string {
	return vm.publicKeyMultibase
}

// AdditionalProperties returns a copy of the members that are not verification method fields.
func (vm *VerificationMethod) AdditionalProperties() *jsonvalue.Object {
	return vm.additional.Clone()
}

// ToJSON serializes the verification method.
func (vm *VerificationMethod) ToJSON() ([]byte, error) {
	return vm.toValue().Bytes(), nil
}

func (vm *VerificationMethod) toValue() jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.Set(jsonFldID, jsonvalue.StringValue(vm.id))
	if vm.typ != "" {
		obj.Set(jsonFldType, jsonvalue.StringValue(vm.typ))
	}
	switch {
	case vm.controllers != nil:
		obj.Set(jsonFldController, jsonvalue.StringArray(vm.controllers))
	case vm.controller != "":
		obj.Set(jsonFldController, jsonvalue.StringValue(vm.controller))
	}
	if vm.publicKeyJwk != nil {
		obj.Set(jsonFldPublicKeyJwk, jsonvalue.ObjectValue(vm.publicKeyJwk.Clone()))
	}
	if vm.hasBase58 {
		obj.Set(jsonFldPublicKeyBase58, jsonvalue.StringValue(vm.publicKeyBase58))
	}
	if vm.hasMultibase {
		obj.Set(jsonFldPublicKeyMultibase, jsonvalue.StringValue(vm.publicKeyMultibase))
	}
	for _, m := range vm.additional.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}
