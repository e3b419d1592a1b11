// Package did parses, validates and serializes DID documents and extracts public
// key material from their verification methods.
package did

import (
	"strings"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// ContextV1 is the base context of DID documents.
const ContextV1 = "https://www.w3.org/ns/did/v1"

const (
	jsonFldContext            = "@context"
	jsonFldAlsoKnownAs        = "alsoKnownAs"
	jsonFldVerificationMethod = "verificationMethod"
	jsonFldService            = "service"
)

var documentFields = append([]string{
	jsonFldContext, jsonFldID, jsonFldController, jsonFldAlsoKnownAs,
	jsonFldVerificationMethod, jsonFldService,
}, relationshipNames...)

// Document is a parsed DID document. It is immutable once parsed.
type Document struct {
	context             []jsonvalue.Value
	id                  string
	controller          []string
	alsoKnownAs         []string
	verificationMethods []*VerificationMethod
	relationships       map[string][]Relationship
	services            []*Service
	additional          *jsonvalue.Object

	// methodIndex maps verification method ids, including embedded ones, to methods.
	methodIndex map[string]*VerificationMethod
}

// ParseDocument parses a DID document from JSON.
func ParseDocument(data []byte, opts ...DocumentOpt) (*Document, error) {
	options := getOptions(opts...)

	v, err := jsonvalue.ParseWithDepth(data, options.maxDepth)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid JSON format for DID document")
	}
	obj, ok := v.Object()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "DID document must be a JSON object, got %s", v.Kind())
	}

	if options.isValidateSchema {
		if err := validateSchema(data); err != nil {
			return nil, err
		}
	}

	doc, err := documentFromObject(obj)
	if err != nil {
		logging.Log().WithError(err).Debug("Rejected DID document")
		return nil, err
	}

	logging.Log().
		WithField(logging.FieldDID, doc.id).
		Tracef("Parsed DID document (verificationMethods=%d, services=%d)", len(doc.verificationMethods), len(doc.services))

	return doc, nil
}

func documentFromObject(obj *jsonvalue.Object) (*Document, error) {
	id, err := util.RequiredString(obj, jsonFldID)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		id:            id,
		relationships: make(map[string][]Relationship, len(relationshipNames)),
	}

	if doc.context, err = util.ParseContexts(obj); err != nil {
		return nil, err
	}
	if doc.controller, err = util.StringList(obj, jsonFldController); err != nil {
		return nil, err
	}
	if doc.alsoKnownAs, err = util.StringList(obj, jsonFldAlsoKnownAs); err != nil {
		return nil, err
	}
	if err = doc.parseVerificationMethods(obj); err != nil {
		return nil, err
	}
	for _, name := range relationshipNames {
		rels, err := parseRelationship(obj, name)
		if err != nil {
			return nil, err
		}
		doc.relationships[name] = rels
		for _, r := range rels {
			if r.Embedded == nil {
				continue
			}
			if _, exists := doc.methodIndex[r.Embedded.ID()]; !exists {
				doc.methodIndex[r.Embedded.ID()] = r.Embedded
			}
		}
	}
	if err = doc.parseServices(obj); err != nil {
		return nil, err
	}

	doc.additional = obj.Without(documentFields...)

	return doc, nil
}

func (d *Document) parseVerificationMethods(obj *jsonvalue.Object) error {
	items := jsonvalue.Normalize(obj, jsonFldVerificationMethod).Items()
	d.verificationMethods = make([]*VerificationMethod, 0, len(items))
	d.methodIndex = make(map[string]*VerificationMethod, len(items))

	for i, item := range items {
		entry, ok := item.Object()
		if !ok {
			return parseerr.New(parseerr.ErrInvalidShape,
				"'%s' entry at index %d must be an object, got %s", jsonFldVerificationMethod, i, item.Kind())
		}
		vm, err := verificationMethodFromObject(entry)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid '%s' entry at index %d", jsonFldVerificationMethod, i)
		}
		if _, exists := d.methodIndex[vm.ID()]; exists {
			logging.Log().
				WithField(logging.FieldDID, d.id).
				WithField(logging.FieldKeyID, vm.ID()).
				Debug("Duplicate verification method id")
			return parseerr.New(parseerr.ErrDuplicateID, "duplicate verificationMethod id detected: '%s'", vm.ID())
		}
		d.methodIndex[vm.ID()] = vm
		d.verificationMethods = append(d.verificationMethods, vm)
	}
	return nil
}

func (d *Document) parseServices(obj *jsonvalue.Object) error {
	items := jsonvalue.Normalize(obj, jsonFldService).Items()
	d.services = make([]*Service, 0, len(items))

	for i, item := range items {
		entry, ok := item.Object()
		if !ok {
			return parseerr.New(parseerr.ErrInvalidShape,
				"'%s' entry at index %d must be an object, got %s", jsonFldService, i, item.Kind())
		}
		svc, err := serviceFromObject(entry)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid '%s' entry at index %d", jsonFldService, i)
		}
		d.services = append(d.services, svc)
	}
	return nil
}

func (d *Document) ID() string {
	return d.id
}

// Context returns the @context entries. Inline context objects are rendered as compact JSON.
func (d *Document) Context() []string {
	return util.ContextStrings(d.context)
}

func (d *Document) Controller() []string {
	return append([]string(nil), d.controller...)
}

func (d *Document) AlsoKnownAs() []string {
	return append([]string(nil), d.alsoKnownAs...)
}

// VerificationMethods returns the verificationMethod entries in document order.
func (d *Document) VerificationMethods() []*VerificationMethod {
	methods := make([]*VerificationMethod, len(d.verificationMethods))
	copy(methods, d.verificationMethods)
	return methods
}

// VerificationMethodByID looks up a verification method, including methods embedded
// in a relationship. A reference starting with '#' is resolved against the document id.
func (d *Document) VerificationMethodByID(ref string) (*VerificationMethod, bool) {
	if strings.HasPrefix(ref, "#") {
		if vm, ok := d.methodIndex[d.id+ref]; ok {
			return vm, true
		}
	}
	vm, ok := d.methodIndex[ref]
	return vm, ok
}

// Relationship returns the entries of the named verification relationship.
func (d *Document) Relationship(name string) []Relationship {
	return append([]Relationship(nil), d.relationships[name]...)
}

// Authentication returns the authentication references. Embedded methods are represented by their id.
func (d *Document) Authentication() []string {
	return relationshipIDs(d.relationships[Authentication])
}

// AssertionMethod returns the assertionMethod references. Embedded methods are represented by their id.
func (d *Document) AssertionMethod() []string {
	return relationshipIDs(d.relationships[AssertionMethod])
}

func (d *Document) KeyAgreement() []string {
	return relationshipIDs(d.relationships[KeyAgreement])
}

func (d *Document) CapabilityInvocation() []string {
	return relationshipIDs(d.relationships[CapabilityInvocation])
}

func (d *Document) CapabilityDelegation() []string {
	return relationshipIDs(d.relationships[CapabilityDelegation])
}

// Services returns the service endpoints in document order.
func (d *Document) Services() []*Service {
	services := make([]*Service, len(d.services))
	copy(services, d.services)
	return services
}

// AdditionalProperties returns a copy of the members that are not DID document fields.
func (d *Document) AdditionalProperties() *jsonvalue.Object {
	return d.additional.Clone()
}

// ToJSON serializes the document. @context, id and verificationMethod are always written.
func (d *Document) ToJSON() ([]byte, error) {
	return d.ToValue().Bytes(), nil
}

// ToValue returns the document as a JSON value.
func (d *Document) ToValue() jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.Set(jsonFldContext, jsonvalue.ArrayValue(util.CloneValues(d.context)...))
	obj.Set(jsonFldID, jsonvalue.StringValue(d.id))
	if len(d.alsoKnownAs) > 0 {
		obj.Set(jsonFldAlsoKnownAs, jsonvalue.StringArray(d.alsoKnownAs))
	}
	if len(d.controller) > 0 {
		obj.Set(jsonFldController, util.SerializeTypes(d.controller))
	}

	methods := make([]jsonvalue.Value, len(d.verificationMethods))
	for i, vm := range d.verificationMethods {
		methods[i] = vm.toValue()
	}
	obj.Set(jsonFldVerificationMethod, jsonvalue.ArrayValue(methods...))

	for _, name := range relationshipNames {
		rels := d.relationships[name]
		if len(rels) == 0 {
			continue
		}
		values := make([]jsonvalue.Value, len(rels))
		for i, r := range rels {
			values[i] = r.toValue()
		}
		obj.Set(name, jsonvalue.ArrayValue(values...))
	}

	if len(d.services) > 0 {
		services := make([]jsonvalue.Value, len(d.services))
		for i, s := range d.services {
			services[i] = s.toValue()
		}
		obj.Set(jsonFldService, jsonvalue.ArrayValue(services...))
	}

	for _, m := range d.additional.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}
