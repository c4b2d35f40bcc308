// Package apperrors provides the error type shared by every layer of the service.
// Errors carry a message, an HTTP status code and a Kind, and can wrap any
// number of other errors while staying compatible with errors.Is and errors.As.
package apperrors

// Kind classifies an error by how a caller should react to it.
type Kind int

const (
	// KindInfrastructure covers storage, connectivity and other unexpected failures.
	KindInfrastructure Kind = iota
	// KindValidation covers input the caller can fix.
	KindValidation
	// KindNotFound covers lookups that matched nothing.
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	default:
		return "infrastructure"
	}
}

// Error defines the interface for application errors. All mutating methods
// return a copy so sentinel errors can be derived from safely.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetExpandError(bool) Error             // controls whether ErrorAll expands wrapped errors
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	SetKind(Kind) Error                    // sets the error classification
	Kind() Kind                            // returns the error classification
	ErrorAll() string                      // returns full message including wrapped errors
	UnwrapAll() []error                    // returns all wrapped errors
}
