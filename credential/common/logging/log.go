package logging

import (
	"github.com/sirupsen/logrus"
)

const (
	// FieldModule is the log field for the module name.
	FieldModule = "module"
	// FieldDID is the log field key for the ID of a DID document.
	FieldDID = "did"
	// FieldKeyID is the log field key for the ID of a verification method.
	FieldKeyID = "keyID"
	// FieldServiceID is the log field key for the ID of a DID document service.
	FieldServiceID = "serviceID"
	// FieldCredentialID is the log field key for the ID of a Verifiable Credential.
	FieldCredentialID = "credentialID"
	// FieldCredentialType is the log field key for the type of a Verifiable Credential.
	FieldCredentialType = "credentialType"
	// FieldPresentationHolder is the log field key for the holder of a Verifiable Presentation.
	FieldPresentationHolder = "holder"
)

var _logger = logrus.StandardLogger().WithField(FieldModule, "Credential")

// Log returns a logger which should be used for logging in the parsing packages.
// It adds fields so log entries from these packages can be recognized as such.
func Log() *logrus.Entry {
	return _logger
}
