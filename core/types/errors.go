package types

import (
	"errors"
	"fmt"
)

// MissingArgumentError reports required construction-time configuration
// that was not supplied.
type MissingArgumentError struct {
	// Arg is the name of the missing argument.
	Arg string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("missing required argument %q", e.Arg)
}

// InvalidArgumentError reports configuration or a runtime value that fails
// a validation rule (range, shape, membership, format, existence).
type InvalidArgumentError struct {
	// Name identifies the argument or value that failed validation.
	Name string

	// Reason describes why validation failed.
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid argument %q: %s", e.Name, e.Reason)
}

// ContractError reports Serialize or Deserialize invoked directly on the
// base contract. This is a programming defect in a variant, not a user
// input error, and should never be caught by calling code.
type ContractError struct {
	Kind   string
	Method string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("data type %q does not implement %s", e.Kind, e.Method)
}

// IsMissingArgument reports whether err is a MissingArgumentError.
func IsMissingArgument(err error) bool {
	var target *MissingArgumentError
	return errors.As(err, &target)
}

// IsInvalidArgument reports whether err is an InvalidArgumentError.
func IsInvalidArgument(err error) bool {
	var target *InvalidArgumentError
	return errors.As(err, &target)
}

// IsContractViolation reports whether err is a ContractError.
func IsContractViolation(err error) bool {
	var target *ContractError
	return errors.As(err, &target)
}

func missingArg(arg string) error {
	return &MissingArgumentError{Arg: arg}
}

func invalidArg(name, format string, args ...any) error {
	return &InvalidArgumentError{Name: name, Reason: fmt.Sprintf(format, args...)}
}
