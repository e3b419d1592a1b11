package did

import (
	"fmt"
	"strings"

	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the structure of a DID document. Properties that may
// hold one value or a list accept both forms.
const documentSchema = `{
  "type": "object",
  "required": ["id"],
  "properties": {
    "@context": {
      "oneOf": [
        {"type": "string"},
        {"type": "object"},
        {"type": "array", "items": {"type": ["string", "object"]}}
      ]
    },
    "id": {"type": "string", "minLength": 1},
    "controller": {"$ref": "#/definitions/stringOrStrings"},
    "alsoKnownAs": {"$ref": "#/definitions/stringOrStrings"},
    "verificationMethod": {
      "oneOf": [
        {"$ref": "#/definitions/verificationMethod"},
        {"type": "array", "items": {"$ref": "#/definitions/verificationMethod"}}
      ]
    },
    "authentication": {"$ref": "#/definitions/relationship"},
    "assertionMethod": {"$ref": "#/definitions/relationship"},
    "keyAgreement": {"$ref": "#/definitions/relationship"},
    "capabilityInvocation": {"$ref": "#/definitions/relationship"},
    "capabilityDelegation": {"$ref": "#/definitions/relationship"},
    "service": {
      "oneOf": [
        {"$ref": "#/definitions/service"},
        {"type": "array", "items": {"$ref": "#/definitions/service"}}
      ]
    }
  },
  "definitions": {
    "stringOrStrings": {
      "oneOf": [
        {"type": "string"},
        {"type": "array", "items": {"type": "string"}}
      ]
    },
    "verificationMethod": {
      "type": "object",
      "required": ["id"],
      "properties": {
        "id": {"type": "string", "minLength": 1},
        "type": {"type": "string"},
        "controller": {"$ref": "#/definitions/stringOrStrings"},
        "publicKeyJwk": {"type": "object"},
        "publicKeyBase58": {"type": "string"},
        "publicKeyMultibase": {"type": "string"}
      }
    },
    "relationship": {
      "oneOf": [
        {"type": "string"},
        {"$ref": "#/definitions/verificationMethod"},
        {
          "type": "array",
          "items": {
            "oneOf": [
              {"type": "string"},
              {"$ref": "#/definitions/verificationMethod"}
            ]
          }
        }
      ]
    },
    "service": {
      "type": "object",
      "properties": {
        "id": {"type": "string"},
        "type": {"$ref": "#/definitions/stringOrStrings"},
        "serviceEndpoint": {"type": ["string", "object", "array"]}
      }
    }
  }
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(documentSchemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return parseerr.Wrap(parseerr.ErrMalformedJSON, err, "validation of DID document failed")
	}

	if !result.Valid() {
		errs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			errs = append(errs, fmt.Sprintf("- %s", desc))
		}
		return parseerr.New(parseerr.ErrInvalidShape, "DID document not valid:\n%s", strings.Join(errs, "\n"))
	}

	return nil
}
