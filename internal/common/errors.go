package common

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Common application errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrInternal     = errors.New("internal error")
	ErrDatabase     = errors.New("database error")
	ErrValidation   = errors.New("validation failed")
)

// Extraction errors
var (
	ErrFileNotFound           = errors.New("file not found")
	ErrFieldNotFound          = errors.New("field not found")
	ErrUnrecognizedVocabulary = errors.New("unrecognized vocabulary")
	ErrConfigurationMissing   = errors.New("configuration missing")
	ErrUnknownField           = errors.New("unknown parameter field")
	ErrInvalidValue           = errors.New("invalid parameter value")
	ErrUnsupportedFormat      = errors.New("unsupported parameter file format")
)

// FileError names the file an operation could not read.
type FileError struct {
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error {
	return e.Cause
}

// FieldError pinpoints a mandatory field that could not be resolved in a file.
type FieldError struct {
	File  string
	Field string
	Cause error
}

func (e *FieldError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("field %q: %v", e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: field %q: %v", e.File, e.Field, e.Cause)
}

func (e *FieldError) Unwrap() error {
	return e.Cause
}

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

func NewFileNotFound(path string) error {
	return &FileError{Path: path, Cause: ErrFileNotFound}
}

func NewFieldNotFound(file, field string) error {
	return &FieldError{File: file, Field: field, Cause: ErrFieldNotFound}
}

// gRPC error helpers
func InvalidArgumentError(message string) error {
	return status.Error(codes.InvalidArgument, message)
}

func NotFoundError(message string) error {
	return status.Error(codes.NotFound, message)
}

func InternalError(message string) error {
	return status.Error(codes.Internal, message)
}

func InvalidArgumentErrorf(format string, args ...interface{}) error {
	return InvalidArgumentError(fmt.Sprintf(format, args...))
}

func InternalErrorf(format string, args ...interface{}) error {
	return InternalError(fmt.Sprintf(format, args...))
}

// ToStatus maps the error taxonomy onto gRPC status codes.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrFileNotFound), errors.Is(err, ErrNotFound):
		return NotFoundError(err.Error())
	case errors.Is(err, ErrFieldNotFound),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrUnknownField),
		errors.Is(err, ErrInvalidValue),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrValidation):
		return InvalidArgumentError(err.Error())
	default:
		return InternalError(err.Error())
	}
}
