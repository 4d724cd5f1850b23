package auth

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// MissingConfiguration means the auth file setting could not be found.
	MissingConfiguration ErrorKind = iota + 1
	// UnparsableSource means no candidate source could be read or parsed.
	UnparsableSource
	// MissingSection means the source parsed fine but has no [auth] section.
	MissingSection
)

func (k ErrorKind) String() string {
	switch k {
	case MissingConfiguration:
		return "missing configuration"
	case UnparsableSource:
		return "could not parse source"
	case MissingSection:
		return "missing required section"
	default:
		return "unknown"
	}
}

// ConfigurationError is returned by every credential loading operation.
type ConfigurationError struct {
	Kind   ErrorKind
	Source string
	cause  error
}

func NewMissingConfigurationError(setting string) *ConfigurationError {
	return &ConfigurationError{Kind: MissingConfiguration, Source: setting}
}

func NewUnparsableSourceError(source string, cause error) *ConfigurationError {
	return &ConfigurationError{Kind: UnparsableSource, Source: source, cause: cause}
}

func NewMissingSectionError(source string, section string) *ConfigurationError {
	return &ConfigurationError{
		Kind:   MissingSection,
		Source: source,
		cause:  fmt.Errorf("no [%s] section", section),
	}
}

func (e *ConfigurationError) Error() string {
	msg := e.Kind.String()
	if e.Source != "" {
		msg = fmt.Sprintf("%s '%s'", msg, e.Source)
	}
	if e.cause != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.cause.Error())
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.cause
}

func IsConfigurationError(err error) bool {
	var e *ConfigurationError
	return errors.As(err, &e)
}

func IsMissingConfigurationError(err error) bool {
	return isKind(err, MissingConfiguration)
}

func IsUnparsableSourceError(err error) bool {
	return isKind(err, UnparsableSource)
}

func IsMissingSectionError(err error) bool {
	return isKind(err, MissingSection)
}

func isKind(err error, kind ErrorKind) bool {
	var e *ConfigurationError
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
