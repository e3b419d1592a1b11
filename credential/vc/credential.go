// Package vc parses, validates and serializes Verifiable Credentials.
package vc

import (
	"time"

	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

// TypeVerifiableCredential is the base type every credential is expected to carry.
const TypeVerifiableCredential = "VerifiableCredential"

// Credential is a parsed Verifiable Credential. It is immutable once parsed.
type Credential struct {
	context  []jsonvalue.Value
	id       string
	types    []string
	issuer   Issuer
	dates    map[string]string
	subjects []Subject
	// singleSubject records that credentialSubject was given as an object.
	singleSubject bool
	statuses      []Status
	singleStatus  bool
	schemas       []Schema
	evidence      jsonvalue.Value
	hasEvidence   bool
	proof         jsonvalue.Value
	hasProof      bool
	additional    *jsonvalue.Object
}

// Issuer is the issuer of a credential, given either as a plain identifier or as
// an object with an id and further properties.
type Issuer struct {
	ID string
	// Properties is set when the issuer was given as an object. It excludes id.
	Properties *jsonvalue.Object
}

// Status represents the credentialStatus field as per W3C Verifiable Credentials.
type Status struct {
	ID                   string
	Type                 string
	StatusPurpose        string
	StatusListIndex      string
	StatusListCredential string
	// Properties holds the remaining members.
	Properties *jsonvalue.Object

	// numericIndex records that statusListIndex was written as a JSON number.
	numericIndex bool
}

// Schema represents a credential schema with an ID and type.
type Schema struct {
	ID   string
	Type string
	// Properties holds the remaining members when the schema was given as an object.
	Properties *jsonvalue.Object
}

// CredentialOpt configures credential processing options.
type CredentialOpt func(*credentialOptions)

// credentialOptions holds configuration for credential processing.
type credentialOptions struct {
	isStrictTypes bool
	maxDepth      int
	schema        []byte
}

// WithStrictTypes requires the type list to contain VerifiableCredential.
func WithStrictTypes() CredentialOpt {
	return func(c *credentialOptions) {
		c.isStrictTypes = true
	}
}

// WithMaxDepth sets the maximum nesting of arrays and objects accepted in the input.
func WithMaxDepth(depth int) CredentialOpt {
	return func(c *credentialOptions) {
		c.maxDepth = depth
	}
}

// WithSchemaValidation validates the credential against the given JSON schema during parsing.
func WithSchemaValidation(schema []byte) CredentialOpt {
	return func(c *credentialOptions) {
		c.schema = schema
	}
}

func getOptions(opts ...CredentialOpt) *credentialOptions {
	options := &credentialOptions{
		isStrictTypes: false,
		maxDepth:      jsonvalue.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ParseCredential parses a credential from JSON.
func ParseCredential(rawCredential []byte, opts ...CredentialOpt) (*Credential, error) {
	options := getOptions(opts...)

	v, err := jsonvalue.ParseWithDepth(rawCredential, options.maxDepth)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid JSON format for credential")
	}

	return fromValue(v, options)
}

// FromValue builds a credential from an already decoded JSON value, such as an
// entry of a presentation's verifiableCredential.
func FromValue(v jsonvalue.Value, opts ...CredentialOpt) (*Credential, error) {
	return fromValue(v, getOptions(opts...))
}

func fromValue(v jsonvalue.Value, options *credentialOptions) (*Credential, error) {
	obj, ok := v.Object()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "credential must be a JSON object, got %s", v.Kind())
	}

	c, err := credentialFromObject(obj, options)
	if err != nil {
		id, _ := obj.GetString(jsonFldID)
		logging.Log().
			WithError(err).
			WithField(logging.FieldCredentialID, id).
			Debug("Rejected credential")
		return nil, err
	}

	if options.schema != nil {
		if err := c.ValidateSchema(options.schema); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func credentialFromObject(obj *jsonvalue.Object, options *credentialOptions) (*Credential, error) {
	c := &Credential{}

	for _, parse := range []func(*jsonvalue.Object, *Credential) error{
		parseContext,
		parseID,
		parseTypes,
		parseIssuer,
		parseDates,
		parseSubjects,
		parseStatuses,
		parseSchemas,
		parseEvidence,
		parseProof,
	} {
		if err := parse(obj, c); err != nil {
			return nil, err
		}
	}

	if options.isStrictTypes && !slices.Contains(c.types, TypeVerifiableCredential) {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'type' must include %q", TypeVerifiableCredential)
	}

	c.additional = obj.Without(credentialFields...)

	logging.Log().
		WithField(logging.FieldCredentialID, c.id).
		WithField(logging.FieldCredentialType, c.types).
		Trace("Parsed credential")

	return c, nil
}

// Context returns the @context entries. Inline context objects are rendered as compact JSON.
func (c *Credential) Context() []string {
	return util.ContextStrings(c.context)
}

func (c *Credential) ID() string {
	return c.id
}

func (c *Credential) Types() []string {
	return append([]string(nil), c.types...)
}

// HasType reports whether the credential carries the given type.
func (c *Credential) HasType(t string) bool {
	return slices.Contains(c.types, t)
}

// Issuer returns the issuer identifier.
func (c *Credential) Issuer() string {
	return c.issuer.ID
}

// IssuerDetails returns the issuer including its properties when it was given as an object.
func (c *Credential) IssuerDetails() Issuer {
	issuer := Issuer{ID: c.issuer.ID}
	if c.issuer.Properties != nil {
		issuer.Properties = c.issuer.Properties.Clone()
	}
	return issuer
}

// IssuanceDate returns the issuanceDate as written, or "" if absent.
func (c *Credential) IssuanceDate() string {
	return c.dates[jsonFldIssuanceDate]
}

// ExpirationDate returns the expirationDate as written, or "" if absent.
func (c *Credential) ExpirationDate() string {
	return c.dates[jsonFldExpirationDate]
}

// ValidFrom returns the validFrom date as written, or "" if absent.
func (c *Credential) ValidFrom() string {
	return c.dates[jsonFldValidFrom]
}

// ValidUntil returns the validUntil date as written, or "" if absent.
func (c *Credential) ValidUntil() string {
	return c.dates[jsonFldValidUntil]
}

// IssuedAt returns the start of the validity period: validFrom, or issuanceDate
// when validFrom is absent. The zero time is returned when neither is set.
func (c *Credential) IssuedAt() (time.Time, error) {
	return parseDate(c.dates, jsonFldValidFrom, jsonFldIssuanceDate)
}

// ExpiresAt returns the end of the validity period: validUntil, or expirationDate
// when validUntil is absent. The zero time is returned when neither is set.
func (c *Credential) ExpiresAt() (time.Time, error) {
	return parseDate(c.dates, jsonFldValidUntil, jsonFldExpirationDate)
}

// IsExpired reports whether the credential has an expiry before now.
func (c *Credential) IsExpired(now time.Time) (bool, error) {
	exp, err := c.ExpiresAt()
	if err != nil || exp.IsZero() {
		return false, err
	}
	return now.After(exp), nil
}

// Subjects returns the credential subjects. A single subject object yields a list of one.
func (c *Credential) Subjects() []Subject {
	return util.MapSlice(c.subjects, Subject.clone)
}

func (c *Credential) Statuses() []Status {
	return util.MapSlice(c.statuses, Status.clone)
}

func (c *Credential) Schemas() []Schema {
	return util.MapSlice(c.schemas, Schema.clone)
}

// Evidence returns the evidence value, if present.
func (c *Credential) Evidence() (jsonvalue.Value, bool) {
	return c.evidence.Clone(), c.hasEvidence
}

// Proof returns the proof as one opaque value: an object, or an array for a proof set.
func (c *Credential) Proof() (jsonvalue.Value, bool) {
	return c.proof.Clone(), c.hasProof
}

// Proofs returns the proofs as a list, regardless of whether proof was an object or an array.
func (c *Credential) Proofs() []jsonvalue.Value {
	if !c.hasProof {
		return []jsonvalue.Value{}
	}
	return util.CloneValues(jsonvalue.Of(c.proof).Items())
}

// AdditionalProperties returns a copy of the members that are not credential fields.
func (c *Credential) AdditionalProperties() *jsonvalue.Object {
	return c.additional.Clone()
}

// ToJSON serializes the credential. @context, type, credentialSubject and proof
// are always written; proof is null for an unsigned credential.
func (c *Credential) ToJSON() ([]byte, error) {
	return c.ToValue().Bytes(), nil
}

// ToValue returns the credential as a JSON value.
func (c *Credential) ToValue() jsonvalue.Value {
	return serializeCredential(c)
}

func (s Schema) clone() Schema {
	if s.Properties != nil {
		s.Properties = s.Properties.Clone()
	}
	return s
}

func (s Status) clone() Status {
	s.Properties = s.Properties.Clone()
	return s
}
