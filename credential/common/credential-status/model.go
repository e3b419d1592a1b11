package credentialstatus

const (
	// PurposeRevocation marks a status list whose set bits are revoked credentials.
	PurposeRevocation = "revocation"
	// PurposeSuspension marks a status list whose set bits are suspended credentials.
	PurposeSuspension = "suspension"
)

// StatusListCredentialSubject represents the credentialSubject of the
// status list credential, including the encoded bitstring list.
type StatusListCredentialSubject struct {
	EncodedList   string
	ID            string
	StatusPurpose string
	Type          string
}
