package did

import (
	"github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"
	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/pilacorp/go-did-sdk/credential/common/util"
)

const jsonFldServiceEndpoint = "serviceEndpoint"

// Service is a service endpoint of a DID document.
type Service struct {
	id    string
	types []string
	// endpoints holds strings or structured endpoint objects.
	endpoints []jsonvalue.Value
	// singleEndpoint records that serviceEndpoint was not given as an array.
	singleEndpoint bool
	additional     *jsonvalue.Object
}

func serviceFromObject(obj *jsonvalue.Object) (*Service, error) {
	id, err := util.OptionalString(obj, jsonFldID)
	if err != nil {
		return nil, err
	}
	types, err := util.StringList(obj, jsonFldType)
	if err != nil {
		return nil, err
	}

	endpoint := jsonvalue.Normalize(obj, jsonFldServiceEndpoint)
	items := endpoint.Items()
	endpoints := make([]jsonvalue.Value, 0, len(items))
	for i, item := range items {
		switch item.Kind() {
		case jsonvalue.KindString, jsonvalue.KindObject, jsonvalue.KindArray:
			endpoints = append(endpoints, item.Clone())
		default:
			return nil, parseerr.New(parseerr.ErrInvalidShape,
				"'%s' entry at index %d must be a string or an object, got %s", jsonFldServiceEndpoint, i, item.Kind())
		}
	}

	return &Service{
		id:             id,
		types:          types,
		endpoints:      endpoints,
		singleEndpoint: endpoint.Shape == jsonvalue.ShapeScalar || endpoint.Shape == jsonvalue.ShapeObject,
		additional:     obj.Without(jsonFldID, jsonFldType, jsonFldServiceEndpoint),
	}, nil
}

func (s *Service) ID() string {
	return s.id
}

// Type returns the first service type.
func (s *Service) Type() string {
	if len(s.types) == 0 {
		return ""
	}
	return s.types[0]
}

func (s *Service) Types() []string {
	return append([]string(nil), s.types...)
}

// Endpoints returns the endpoints in order: strings, or structured values for
// complex endpoint objects.
func (s *Service) Endpoints() []jsonvalue.Value {
	return util.CloneValues(s.endpoints)
}

// EndpointURLs returns the endpoints that are plain strings.
func (s *Service) EndpointURLs() []string {
	urls := make([]string, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		if u, ok := e.AsString(); ok {
			urls = append(urls, u)
		}
	}
	return urls
}

// AdditionalProperties returns a copy of the members other than id, type and serviceEndpoint.
func (s *Service) AdditionalProperties() *jsonvalue.Object {
	return s.additional.Clone()
}

func (s *Service) toValue() jsonvalue.Value {
	obj := jsonvalue.NewObject()
	if s.id != "" {
		obj.Set(jsonFldID, jsonvalue.StringValue(s.id))
	}
	if len(s.types) > 0 {
		obj.Set(jsonFldType, util.SerializeTypes(s.types))
	}
	if s.singleEndpoint && len(s.endpoints) == 1 {
		obj.Set(jsonFldServiceEndpoint, s.endpoints[0].Clone())
	} else {
		obj.Set(jsonFldServiceEndpoint, jsonvalue.ArrayValue(util.CloneValues(s.endpoints)...))
	}
	for _, m := range s.additional.Members() {
		obj.Set(m.Key, m.Value.Clone())
	}
	return jsonvalue.ObjectValue(obj)
}
