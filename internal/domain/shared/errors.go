package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Error codes for the authoring failure taxonomy.
// Every failure class has an explicit user-visible representation;
// nothing is swallowed and nothing is retried automatically.
const (
	// ErrCodeValidationFailed blocks submission; recovered locally, never sent to the backend
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	// ErrCodeReferenceLoadFailed marks a failed categories/items/purposes fetch;
	// the session stays usable with whatever was last successfully loaded
	ErrCodeReferenceLoadFailed = "REFERENCE_LOAD_FAILED"
	// ErrCodeBulkImportFailed marks a total bulk-import failure (no structured result)
	ErrCodeBulkImportFailed = "BULK_IMPORT_FAILED"
	// ErrCodePersistenceFailed marks a backend rejection of create/update;
	// draft state is preserved verbatim for operator retry
	ErrCodePersistenceFailed = "PERSISTENCE_FAILED"
	// ErrCodeInvalidLineID is a programming-error class, not a user-facing condition
	ErrCodeInvalidLineID = "INVALID_LINE_ID"
	// ErrCodeSessionNotFound marks an unknown authoring session
	ErrCodeSessionNotFound = "SESSION_NOT_FOUND"
	// ErrCodeSessionClosed marks a mutation attempted after submit or abandon
	ErrCodeSessionClosed = "SESSION_CLOSED"
	// ErrCodeInvalidState marks an operation not allowed in the current session state
	ErrCodeInvalidState = "INVALID_STATE"
)

// Common domain errors
var (
	ErrInvalidLineID   = NewDomainError(ErrCodeInvalidLineID, "Draft line not found")
	ErrSessionNotFound = NewDomainError(ErrCodeSessionNotFound, "Authoring session not found")
	ErrSessionClosed   = NewDomainError(ErrCodeSessionClosed, "Authoring session has ended")
	ErrInvalidState    = NewDomainError(ErrCodeInvalidState, "Operation not allowed in current state")
)
