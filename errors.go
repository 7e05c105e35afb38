package normalizr

import (
	"errors"
	"fmt"
)

// Issue codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType  = "invalid_type"
	CodeRequired     = "required"
	CodeTooSmall     = "too_small"
	CodeTooBig       = "too_big"
	CodeTooShort     = "too_short"
	CodeTooLong      = "too_long"
	CodePattern      = "pattern"
	CodeInvalidInput = "invalid_input"
	// Schema problems (fatal, never retried)
	CodeInvalidSchema  = "invalid_schema"
	CodeEmptySchema    = "empty_schema"
	CodeUnnamedEntity  = "unnamed_entity"
	CodeSchemaDepth    = "schema_depth"
	CodeUnknownHandler = "unknown_handler"
	// Store/reference problems
	CodeInvalidReference = "invalid_reference"
	CodeMissingEntity    = "missing_entity"
	// Custom handler contract violations and handler failures
	CodeCustomHandler = "custom_handler"
	CodeInternal      = "internal"
)

// ErrorClass is the classification applied once at the outermost call.
type ErrorClass int

const (
	ClassData ErrorClass = iota
	ClassSchema
	ClassUnexpected
)

func (c ErrorClass) String() string {
	switch c {
	case ClassSchema:
		return "schema"
	case ClassUnexpected:
		return "unexpected"
	default:
		return "data"
	}
}

// Issue describes a single violation found while walking a schema.
type Issue struct {
	Path    string // JSON Pointer (for example: /friends/2/age).
	Code    string // One of the codes listed above.
	Message string
	// Context carries structured parameters (entity, id, property, expected,
	// actual, min, max...) sufficient to reproduce the failure.
	Context map[string]any
	Cause   error // Optional: underlying error.
}

func (it *Issue) Error() string {
	if it.Path == "" {
		return fmt.Sprintf("%s: %s", it.Code, it.Message)
	}
	return fmt.Sprintf("%s at %s: %s", it.Code, it.Path, it.Message)
}

func (it *Issue) Unwrap() error { return it.Cause }

// SchemaValidationError reports a malformed schema.
type SchemaValidationError struct {
	Issue
}

func (e *SchemaValidationError) Error() string { return "schema validation: " + e.Issue.Error() }

func (e *SchemaValidationError) Unwrap() error { return e.Cause }

// NormalizationError is the single error returned by a failed Normalize.
type NormalizationError struct {
	Issue
	Class ErrorClass
}

func (e *NormalizationError) Error() string {
	return fmt.Sprintf("normalize (%s): %s", e.Class, e.Issue.Error())
}

func (e *NormalizationError) Unwrap() error { return e.Cause }

// DenormalizationError is the single error returned by a failed Denormalize.
type DenormalizationError struct {
	Issue
	Class ErrorClass
}

func (e *DenormalizationError) Error() string {
	return fmt.Sprintf("denormalize (%s): %s", e.Class, e.Issue.Error())
}

func (e *DenormalizationError) Unwrap() error { return e.Cause }

// AsNormalizationError extracts a NormalizationError using errors.As internally.
func AsNormalizationError(err error) (*NormalizationError, bool) {
	var ne *NormalizationError
	if errors.As(err, &ne) {
		return ne, true
	}
	return nil, false
}

// AsDenormalizationError extracts a DenormalizationError using errors.As internally.
func AsDenormalizationError(err error) (*DenormalizationError, bool) {
	var de *DenormalizationError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// AsSchemaValidationError extracts a SchemaValidationError using errors.As internally.
func AsSchemaValidationError(err error) (*SchemaValidationError, bool) {
	var se *SchemaValidationError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func classOf(code string) ErrorClass {
	switch code {
	case CodeInvalidSchema, CodeEmptySchema, CodeUnnamedEntity, CodeSchemaDepth, CodeUnknownHandler:
		return ClassSchema
	case CodeInternal, CodeCustomHandler:
		return ClassUnexpected
	default:
		return ClassData
	}
}

// classify turns whatever the recursion produced into one Issue plus class.
func classify(err error) (Issue, ErrorClass) {
	var sve *SchemaValidationError
	if errors.As(err, &sve) {
		it := sve.Issue
		it.Cause = sve
		return it, ClassSchema
	}
	var it *Issue
	if errors.As(err, &it) {
		return *it, classOf(it.Code)
	}
	return Issue{Code: CodeInternal, Message: err.Error(), Cause: err}, ClassUnexpected
}

func wrapNormalization(err error) error {
	if err == nil {
		return nil
	}
	it, cls := classify(err)
	return &NormalizationError{Issue: it, Class: cls}
}

func wrapDenormalization(err error) error {
	if err == nil {
		return nil
	}
	it, cls := classify(err)
	return &DenormalizationError{Issue: it, Class: cls}
}
