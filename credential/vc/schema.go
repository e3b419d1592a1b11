package vc

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/pilacorp/go-did-sdk/credential/common/parseerr"
)

// ValidateSchema validates the serialized credential against a JSON schema.
func (c *Credential) ValidateSchema(schema []byte) error {
	if len(schema) == 0 {
		return parseerr.New(parseerr.ErrInvalidArgument, "schema is empty")
	}

	data, err := c.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize credential: %w", err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return parseerr.Wrap(parseerr.ErrInvalidArgument, err, "failed to validate credential schema")
	}

	if !result.Valid() {
		var errs []string
		for _, desc := range result.Errors() {
			errs = append(errs, desc.String())
		}
		return parseerr.New(parseerr.ErrInvalidShape, "credential validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}
