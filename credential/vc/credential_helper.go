package vc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// JSON field constants for credential serialization.
const (
	jsonFldContext              = "@context"
	jsonFldID                   = "id"
	jsonFldType                 = "type"
	jsonFldIssuer               = "issuer"
	jsonFldIssuanceDate         = "issuanceDate"
	jsonFldExpirationDate       = "expirationDate"
	jsonFldValidFrom            = "validFrom"
	jsonFldValidUntil           = "validUntil"
	jsonFldSubject              = "credentialSubject"
	jsonFldStatus               = "credentialStatus"
	jsonFldSchema               = "credentialSchema"
	jsonFldEvidence             = "evidence"
	jsonFldProof                = "proof"
	jsonFldStatusPurpose        = "statusPurpose"
	jsonFldStatusListIndex      = "statusListIndex"
	jsonFldStatusListCredential = "statusListCredential"
)

var credentialFields = []string{
	jsonFldContext, jsonFldID, jsonFldType, jsonFldIssuer,
	jsonFldIssuanceDate, jsonFldExpirationDate, jsonFldValidFrom, jsonFldValidUntil,
	jsonFldSubject, jsonFldStatus, jsonFldSchema, jsonFldEvidence, jsonFldProof,
}

var dateFields = []string{jsonFldIssuanceDate, jsonFldExpirationDate, jsonFldValidFrom, jsonFldValidUntil}

// parseContext extracts the @context field from a credential.
func parseContext(obj *jsonvalue.Object, c *Credential) error {
	contexts, err := util.ParseContexts(obj)
	if err != nil {
		return err
	}
	c.context = contexts
	return nil
}

// parseID extracts the id field from a credential.
func parseID(obj *jsonvalue.Object, c *Credential) error {
	id, err := util.OptionalString(obj, jsonFldID)
	if err != nil {
		return err
	}
	c.id = id
	return nil
}

// parseTypes extracts the type field. It must be a string or a non-empty array of strings.
func parseTypes(obj *jsonvalue.Object, c *Credential) error {
	types, err := ParseTypes(obj)
	if err != nil {
		return err
	}
	c.types = types
	return nil
}

// ParseTypes reads a required type member holding a string or a non-empty array of strings.
func ParseTypes(obj *jsonvalue.Object) ([]string, error) {
	n := jsonvalue.Normalize(obj, jsonFldType)
	switch n.Shape {
	case jsonvalue.ShapeAbsent:
		return nil, parseerr.New(parseerr.ErrMissingField, "missing required 'type'")
	case jsonvalue.ShapeNull:
		return nil, parseerr.New(parseerr.ErrMissingField, "'type' must not be null")
	case jsonvalue.ShapeObject:
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'type' must be a string or an array of strings")
	}
	types, idx, ok := n.Strings()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'type' entry at index %d must be a string", idx)
	}
	if len(types) == 0 {
		return nil, parseerr.New(parseerr.ErrMissingField, "'type' must not be empty")
	}
	for i, t := range types {
		if t == "" {
			return nil, parseerr.New(parseerr.ErrInvalidShape, "'type' entry at index %d must not be empty", i)
		}
	}
	return types, nil
}

// parseIssuer extracts the issuer field, given as a string or an object with an id.
func parseIssuer(obj *jsonvalue.Object, c *Credential) error {
	v, ok := obj.Get(jsonFldIssuer)
	if !ok || v.IsNull() {
		return nil
	}
	switch v.Kind() {
	case jsonvalue.KindString:
		c.issuer.ID, _ = v.AsString()
		return nil
	case jsonvalue.KindObject:
		issuerObj, _ := v.Object()
		id, err := util.RequiredString(issuerObj, jsonFldID)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'issuer'")
		}
		c.issuer = Issuer{ID: id, Properties: issuerObj.Without(jsonFldID)}
		return nil
	}
	return parseerr.New(parseerr.ErrInvalidShape, "'issuer' must be a string or an object, got %s", v.Kind())
}

// parseDates extracts issuanceDate, expirationDate, validFrom and validUntil as written.
func parseDates(obj *jsonvalue.Object, c *Credential) error {
	c.dates = make(map[string]string, len(dateFields))
	for _, name := range dateFields {
		s, err := util.OptionalString(obj, name)
		if err != nil {
			return err
		}
		if s != "" {
			c.dates[name] = s
		}
	}
	return nil
}

func parseDate(dates map[string]string, names ...string) (time.Time, error) {
	for _, name := range names {
		s, ok := dates[name]
		if !ok {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		return t, nil
	}
	return time.Time{}, nil
}

// parseSubjects extracts the credentialSubject field. It must be an object or a
// non-empty array of objects.
func parseSubjects(obj *jsonvalue.Object, c *Credential) error {
	n := jsonvalue.Normalize(obj, jsonFldSubject)
	switch n.Shape {
	case jsonvalue.ShapeAbsent:
		return parseerr.New(parseerr.ErrMissingField, "missing required 'credentialSubject'")
	case jsonvalue.ShapeNull:
		return parseerr.New(parseerr.ErrMissingField, "'credentialSubject' must not be null")
	case jsonvalue.ShapeScalar:
		return parseerr.New(parseerr.ErrInvalidShape, "'credentialSubject' must be an object or an array of objects")
	}

	items := n.Items()
	if len(items) == 0 {
		return parseerr.New(parseerr.ErrMissingField, "'credentialSubject' must not be empty")
	}

	subjects := make([]Subject, 0, len(items))
	for i, item := range items {
		subjectObj, ok := item.Object()
		if !ok {
			return parseerr.New(parseerr.ErrInvalidShape, "'credentialSubject' entry at index %d must be an object, got %s", i, item.Kind())
		}
		subject, err := SubjectFromObject(subjectObj)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'credentialSubject' entry at index %d", i)
		}
		subjects = append(subjects, subject)
	}
	c.subjects = subjects
	c.singleSubject = n.Shape == jsonvalue.ShapeObject
	return nil
}

// parseStatuses extracts the credentialStatus field: an object or an array of objects.
func parseStatuses(obj *jsonvalue.Object, c *Credential) error {
	n := jsonvalue.Normalize(obj, jsonFldStatus)
	if n.Shape == jsonvalue.ShapeScalar {
		return parseerr.New(parseerr.ErrInvalidShape, "'credentialStatus' must be an object or an array of objects")
	}
	items := n.Items()
	statuses := make([]Status, 0, len(items))
	for i, item := range items {
		statusObj, ok := item.Object()
		if !ok {
			return parseerr.New(parseerr.ErrInvalidShape, "'credentialStatus' entry at index %d must be an object, got %s", i, item.Kind())
		}
		status, err := parseStatusEntry(statusObj)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'credentialStatus' entry at index %d", i)
		}
		statuses = append(statuses, status)
	}
	c.statuses = statuses
	c.singleStatus = n.Shape == jsonvalue.ShapeObject
	return nil
}

// parseStatusEntry parses a single status entry. statusListIndex may be a string or an integer.
func parseStatusEntry(obj *jsonvalue.Object) (Status, error) {
	var (
		s   Status
		err error
	)
	if s.ID, err = util.OptionalString(obj, jsonFldID); err != nil {
		return Status{}, err
	}
	if s.Type, err = util.OptionalString(obj, jsonFldType); err != nil {
		return Status{}, err
	}
	if s.StatusPurpose, err = util.OptionalString(obj, jsonFldStatusPurpose); err != nil {
		return Status{}, err
	}
	if s.StatusListCredential, err = util.OptionalString(obj, jsonFldStatusListCredential); err != nil {
		return Status{}, err
	}
	if v, ok := obj.Get(jsonFldStatusListIndex); ok && !v.IsNull() {
		switch v.Kind() {
		case jsonvalue.KindString:
			s.StatusListIndex, _ = v.AsString()
		case jsonvalue.KindNumber:
			i, ok := v.Int64()
			if !ok || i < 0 {
				return Status{}, parseerr.New(parseerr.ErrInvalidShape, "'statusListIndex' must be a non-negative integer")
			}
			s.StatusListIndex = strconv.FormatInt(i, 10)
			s.numericIndex = true
		default:
			return Status{}, parseerr.New(parseerr.ErrInvalidShape, "'statusListIndex' must be a string or a number, got %s", v.Kind())
		}
	}
	s.Properties = obj.Without(jsonFldID, jsonFldType, jsonFldStatusPurpose, jsonFldStatusListIndex, jsonFldStatusListCredential)
	return s, nil
}

// parseSchemas extracts the credentialSchema field.
func parseSchemas(obj *jsonvalue.Object, c *Credential) error {
	items := jsonvalue.Normalize(obj, jsonFldSchema).Items()
	schemas := make([]Schema, 0, len(items))
	for i, item := range items {
		schema, err := parseSchemaID(item)
		if err != nil {
			return parseerr.Wrap(parseerr.KindOf(err), err, "invalid 'credentialSchema' entry at index %d", i)
		}
		schemas = append(schemas, schema)
	}
	c.schemas = schemas
	return nil
}

// parseSchemaID parses a Schema from a string or an object with id and type.
func parseSchemaID(v jsonvalue.Value) (Schema, error) {
	switch v.Kind() {
	case jsonvalue.KindString:
		id, _ := v.AsString()
		return Schema{ID: id}, nil
	case jsonvalue.KindObject:
		obj, _ := v.Object()
		id, err := util.OptionalString(obj, jsonFldID)
		if err != nil {
			return Schema{}, err
		}
		typ, err := util.OptionalString(obj, jsonFldType)
		if err != nil {
			return Schema{}, err
		}
		schema := Schema{ID: id, Type: typ}
		if rest := obj.Without(jsonFldID, jsonFldType); rest.Len() > 0 {
			schema.Properties = rest
		}
		return schema, nil
	}
	return Schema{}, parseerr.New(parseerr.ErrInvalidShape, "invalid schema format: %s", v.Kind())
}

func parseEvidence(obj *jsonvalue.Object, c *Credential) error {
	if v, ok := obj.Get(jsonFldEvidence); ok && !v.IsNull() {
		c.evidence = v.Clone()
		c.hasEvidence = true
	}
	return nil
}

// parseProof keeps the proof as one opaque value: an object, or an array of objects.
func parseProof(obj *jsonvalue.Object, c *Credential) error {
	proof, present, err := ParseProofValue(obj)
	if err != nil {
		return err
	}
	c.proof, c.hasProof = proof, present
	return nil
}

// ParseProofValue reads the proof member. It must be an object or an array of objects;
// null is treated as absent.
func ParseProofValue(obj *jsonvalue.Object) (jsonvalue.Value, bool, error) {
	n := jsonvalue.Normalize(obj, jsonFldProof)
	switch n.Shape {
	case jsonvalue.ShapeAbsent, jsonvalue.ShapeNull:
		return jsonvalue.NullValue(), false, nil
	case jsonvalue.ShapeScalar:
		return jsonvalue.Value{}, false, parseerr.New(parseerr.ErrInvalidShape, "'proof' must be an object or an array of objects")
	}
	for i, item := range n.Items() {
		if item.Kind() != jsonvalue.KindObject {
			return jsonvalue.Value{}, false, parseerr.New(parseerr.ErrInvalidShape, "'proof' entry at index %d must be an object, got %s", i, item.Kind())
		}
	}
	return n.Value().Clone(), true, nil
}

// serializeCredential converts a Credential to a JSON object.
func serializeCredential(c *Credential) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	obj.Set(jsonFldContext, jsonvalue.ArrayValue(util.CloneValues(c.context)...))
	if c.id != "" {
		obj.Set(jsonFldID, jsonvalue.StringValue(c.id))
	}
	obj.Set(jsonFldType, util.SerializeTypes(c.types))
	if c.issuer.ID != "" {
		obj.Set(jsonFldIssuer, serializeIssuer(c.issuer))
	}
	for _, name := range dateFields {
		if s, ok := c.dates[name]; ok {
			obj.Set(name, jsonvalue.StringValue(s))
		}
	}
	obj.Set(jsonFldSubject, serializeSubjects(c.subjects, c.singleSubject))
	if len(c.schemas) > 0 {
		obj.Set(jsonFldSchema, serializeSchemas(c.schemas))
	}
	if len(c.statuses) > 0 {
		obj.Set(jsonFldStatus, serializeStatuses(c.statuses, c.singleStatus))
	}
	if c.hasEvidence {
		obj.Set(jsonFldEvidence, c.evidence.Clone())
	}
	if c.hasProof {
		obj.Set(jsonFldProof, c.proof.Clone())
	} else {
		obj.Set(jsonFldProof, jsonvalue.NullValue())
	}
	for _, m := range c.additional.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}

func serializeIssuer(issuer Issuer) jsonvalue.Value {
	if issuer.Properties == nil {
		return jsonvalue.StringValue(issuer.ID)
	}
	obj := jsonvalue.NewObject()
	obj.Set(jsonFldID, jsonvalue.StringValue(issuer.ID))
	for _, m := range issuer.Properties.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}

// serializeSubjects converts subjects to an object when a single object was parsed, else to an array.
func serializeSubjects(subjects []Subject, single bool) jsonvalue.Value {
	values := util.MapSlice(subjects, Subject.ToValue)
	if single && len(values) == 1 {
		return values[0]
	}
	return jsonvalue.ArrayValue(values...)
}

func serializeSchemas(schemas []Schema) jsonvalue.Value {
	return jsonvalue.Single(util.MapSlice(schemas, serializeSchema))
}

func serializeSchema(schema Schema) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	if schema.ID != "" {
		obj.Set(jsonFldID, jsonvalue.StringValue(schema.ID))
	}
	if schema.Type != "" {
		obj.Set(jsonFldType, jsonvalue.StringValue(schema.Type))
	}
	for _, m := range schema.Properties.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}

func serializeStatuses(statuses []Status, single bool) jsonvalue.Value {
	values := util.MapSlice(statuses, serializeStatus)
	if single && len(values) == 1 {
		return values[0]
	}
	return jsonvalue.ArrayValue(values...)
}

// serializeStatus converts a single Status to a JSON object.
func serializeStatus(status Status) jsonvalue.Value {
	obj := jsonvalue.NewObject()
	for _, f := range []struct{ key, value string }{
		{jsonFldID, status.ID},
		{jsonFldType, status.Type},
		{jsonFldStatusPurpose, status.StatusPurpose},
		{jsonFldStatusListIndex, status.StatusListIndex},
		{jsonFldStatusListCredential, status.StatusListCredential},
	} {
		if f.value == "" {
			continue
		}
		if f.key == jsonFldStatusListIndex && status.numericIndex {
			if n, err := jsonvalue.NumberValue(f.value); err == nil {
				obj.Set(f.key, n)
				continue
			}
		}
		obj.Set(f.key, jsonvalue.StringValue(f.value))
	}
	for _, m := range status.Properties.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}
