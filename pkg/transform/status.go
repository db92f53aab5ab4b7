package transform

import (
	"errors"
	"fmt"
)

// Code classifies the outcome of a model operation.
type Code int

const (
	// CodeSuccess means the operation completed.
	CodeSuccess Code = iota
	// CodeFailure is a numerical failure, such as a singular or
	// ill-conditioned system.
	CodeFailure
	// CodeInvalidInput reports mismatched sizes or non-finite values.
	CodeInvalidInput
	// CodeNullPointer reports a missing model, matrix or parameter vector.
	CodeNullPointer
	// CodeOutOfMemory reports an allocation failure.
	CodeOutOfMemory
	// CodeOperationNotSupported reports an unknown transform family.
	CodeOperationNotSupported
)

func (c Code) String() string {
	switch c {
	case CodeSuccess:
		return "SUCCESS"
	case CodeFailure:
		return "FAILURE"
	case CodeInvalidInput:
		return "INVALID_INPUT"
	case CodeNullPointer:
		return "NULL_POINTER"
	case CodeOutOfMemory:
		return "OUT_OF_MEMORY"
	case CodeOperationNotSupported:
		return "OPERATION_NOT_SUPPORTED"
	default:
		return fmt.Sprintf("Code(%d)", int(c))
	}
}

// Sentinel errors matching each failure code, for use with errors.Is on Status.Err.
var (
	ErrFailure               = errors.New("transform: failure")
	ErrInvalidInput          = errors.New("transform: invalid input")
	ErrNullPointer           = errors.New("transform: null pointer")
	ErrOutOfMemory           = errors.New("transform: out of memory")
	ErrOperationNotSupported = errors.New("transform: operation not supported")
)

func (c Code) sentinel() error {
	switch c {
	case CodeInvalidInput:
		return ErrInvalidInput
	case CodeNullPointer:
		return ErrNullPointer
	case CodeOutOfMemory:
		return ErrOutOfMemory
	case CodeOperationNotSupported:
		return ErrOperationNotSupported
	default:
		return ErrFailure
	}
}

const okMessage = "Operation successful"

// Status is the result of every fallible model operation.
// The zero value is a successful status.
type Status struct {
	code    Code
	message string
}

// OK returns a successful status.
func OK() Status {
	return Status{code: CodeSuccess, message: okMessage}
}

// Errorf returns a failed status with the given code and formatted message.
// Passing CodeSuccess yields a CodeFailure status.
func Errorf(code Code, format string, args ...interface{}) Status {
	if code == CodeSuccess {
		code = CodeFailure
	}
	return Status{code: code, message: fmt.Sprintf(format, args...)}
}

// OK reports whether the operation succeeded.
func (s Status) OK() bool {
	return s.code == CodeSuccess
}

// Code returns the status code.
func (s Status) Code() Code {
	return s.code
}

// Message returns the human-readable message.
func (s Status) Message() string {
	if s.code == CodeSuccess && s.message == "" {
		return okMessage
	}
	return s.message
}

// Err converts the status to an error. It returns nil on success; otherwise
// the error wraps the sentinel for the status code.
func (s Status) Err() error {
	if s.OK() {
		return nil
	}
	return fmt.Errorf("%w: %s", s.code.sentinel(), s.message)
}

func (s Status) String() string {
	if s.OK() {
		return "Success: " + s.Message()
	}
	return fmt.Sprintf("Error: %s (Code: %s)", s.message, s.code)
}
