// Package vp parses and serializes Verifiable Presentations.
package vp

import (
	"golang.org/x/exp/slices"

	"github.com/pilacorp/go-did-sdk/credential/common/dto"
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/logging"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
	"github.com/pilacorp/go-did-sdk/credential/vc"
)

// TypeVerifiablePresentation is the base type of a presentation.
const TypeVerifiablePresentation = "VerifiablePresentation"

// Presentation is a parsed Verifiable Presentation. It is immutable once parsed.
type Presentation struct {
	context     []jsonvalue.Value
	id          string
	types       []string
	holder      string
	credentials []*vc.Credential
	// credentialShape records how verifiableCredential was given, so it is written back the same way.
	credentialShape jsonvalue.Shape
	proof           jsonvalue.Value
	hasProof        bool
	additional      *jsonvalue.Object
}

// PresentationOpt configures presentation processing options.
type PresentationOpt func(*presentationOptions)

// presentationOptions holds configuration for presentation processing.
type presentationOptions struct {
	isStrictTypes bool
	maxDepth      int
	credentialOps []vc.CredentialOpt
}

// WithCredentialOptions sets the options used to parse embedded credentials.
func WithCredentialOptions(opts ...vc.CredentialOpt) PresentationOpt {
	return func(p *presentationOptions) {
		p.credentialOps = append(p.credentialOps, opts...)
	}
}

// WithStrictTypes requires the type list to contain VerifiablePresentation.
func WithStrictTypes() PresentationOpt {
	return func(p *presentationOptions) {
		p.isStrictTypes = true
	}
}

// WithMaxDepth sets the maximum nesting of arrays and objects accepted in the input.
func WithMaxDepth(depth int) PresentationOpt {
	return func(p *presentationOptions) {
		p.maxDepth = depth
	}
}

func getOptions(opts ...PresentationOpt) *presentationOptions {
	options := &presentationOptions{
		maxDepth: jsonvalue.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}

// ParsePresentation parses a presentation from JSON. Embedded credentials are
// parsed with the same rules as ParseCredential; the first invalid one fails the parse.
func ParsePresentation(rawPresentation []byte, opts ...PresentationOpt) (*Presentation, error) {
	options := getOptions(opts...)

	v, err := jsonvalue.ParseWithDepth(rawPresentation, options.maxDepth)
	if err != nil {
		return nil, parseerr.Wrap(parseerr.ErrMalformedJSON, err, "invalid JSON format for presentation")
	}

	obj, ok := v.Object()
	if !ok {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "presentation must be a JSON object, got %s", v.Kind())
	}

	p, err := presentationFromObject(obj, options)
	if err != nil {
		logging.Log().
			WithError(err).
			Debug("Rejected presentation")
		return nil, err
	}
	return p, nil
}

func presentationFromObject(obj *jsonvalue.Object, options *presentationOptions) (*Presentation, error) {
	p := &Presentation{}

	if err := parseContext(obj, p); err != nil {
		return nil, err
	}
	if err := parseID(obj, p); err != nil {
		return nil, err
	}
	if err := parseTypes(obj, p); err != nil {
		return nil, err
	}
	if options.isStrictTypes && !slices.Contains(p.types, TypeVerifiablePresentation) {
		return nil, parseerr.New(parseerr.ErrInvalidShape, "'type' must include %q", TypeVerifiablePresentation)
	}
	if err := parseHolder(obj, p); err != nil {
		return nil, err
	}
	if err := parseVerifiableCredentials(obj, p, options.credentialOps); err != nil {
		return nil, err
	}
	if err := parseProofs(obj, p); err != nil {
		return nil, err
	}

	p.additional = obj.Without(presentationFields...)

	logging.Log().
		WithField(logging.FieldPresentationHolder, p.holder).
		WithField("credentials", len(p.credentials)).
		Trace("Parsed presentation")

	return p, nil
}

// Context returns the @context entries. Inline context objects are rendered as compact JSON.
func (p *Presentation) Context() []string {
	return util.ContextStrings(p.context)
}

func (p *Presentation) ID() string {
	return p.id
}

func (p *Presentation) Types() []string {
	return append([]string(nil), p.types...)
}

// Holder returns the holder identifier, or "" if absent.
func (p *Presentation) Holder() string {
	return p.holder
}

// Credentials returns the embedded credentials. A single embedded object yields a list of one.
func (p *Presentation) Credentials() []*vc.Credential {
	credentials := make([]*vc.Credential, len(p.credentials))
	copy(credentials, p.credentials)
	return credentials
}

// Proofs returns the proofs as an ordered list, regardless of whether proof was an object or an array.
func (p *Presentation) Proofs() []jsonvalue.Value {
	if !p.hasProof {
		return []jsonvalue.Value{}
	}
	return util.CloneValues(jsonvalue.Of(p.proof).Items())
}

// TypedProofs returns the proofs with their well-known members decoded.
func (p *Presentation) TypedProofs() ([]dto.Proof, error) {
	return dto.ProofsFromValues(p.Proofs())
}

// AdditionalProperties returns a copy of the members that are not presentation fields.
func (p *Presentation) AdditionalProperties() *jsonvalue.Object {
	return p.additional.Clone()
}

// ToJSON serializes the presentation.
func (p *Presentation) ToJSON() ([]byte, error) {
	return p.ToValue().Bytes(), nil
}

// ToValue returns the presentation as a JSON value.
func (p *Presentation) ToValue() jsonvalue.Value {
	return serializePresentation(p)
}
