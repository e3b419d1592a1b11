package did

import "github.com/pilacorp/go-did-sdk/credential/common/jsonvalue"

// DocumentOpt configures DID document parsing.
type DocumentOpt func(*documentOptions)

type documentOptions struct {
	isValidateSchema bool
	maxDepth         int
}

// WithSchemaValidation checks the document against the DID document JSON schema before building it.
func WithSchemaValidation() DocumentOpt {
	return func(o *documentOptions) {
		o.isValidateSchema = true
	}
}

// WithMaxDepth sets the maximum nesting of arrays and objects accepted in the input.
func WithMaxDepth(depth int) DocumentOpt {
	return func(o *documentOptions) {
		o.maxDepth = depth
	}
}

func getOptions(opts ...DocumentOpt) *documentOptions {
	options := &documentOptions{
		isValidateSchema: false,
		maxDepth:         jsonvalue.DefaultMaxDepth,
	}

	for _, opt := range opts {
		opt(options)
	}

	return options
}
