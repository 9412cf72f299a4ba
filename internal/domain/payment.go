package domain

// Payment verdicts as the payment collaborator spells them on the wire.
const (
	PaymentVerdictSuccess = "SUCCESS"
	PaymentVerdictFailed  = "FAILED"
)
