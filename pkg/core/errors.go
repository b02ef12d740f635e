// Package core provides the error taxonomy and shared helpers of the feature
// build.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorCode defines standard error codes for feature builds
type ErrorCode string

// Standard error codes
const (
	// Input errors
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrParseError   ErrorCode = "PARSE_ERROR"

	// Network description errors
	ErrTopology         ErrorCode = "TOPOLOGY_ERROR"
	ErrMissingReference ErrorCode = "MISSING_REFERENCE"

	// Query errors
	ErrNoResults ErrorCode = "NO_RESULTS"

	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// BuildError describes why a railway, station group or zoom level could not
// be built.
type BuildError struct {
	Code     ErrorCode `json:"code"`
	Message  string    `json:"message"`
	Railway  string    `json:"railway,omitempty"`
	Subline  *int      `json:"subline,omitempty"`
	Station  string    `json:"station,omitempty"`
	Zoom     *int      `json:"zoom,omitempty"`
	Guidance string    `json:"guidance,omitempty"`
	cause    error
}

// Error implements the error interface
func (e *BuildError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", e.Code, e.Message)

	var where []string
	if e.Railway != "" {
		where = append(where, "railway "+e.Railway)
	}
	if e.Subline != nil {
		where = append(where, fmt.Sprintf("subline %d", *e.Subline))
	}
	if e.Station != "" {
		where = append(where, "station "+e.Station)
	}
	if e.Zoom != nil {
		where = append(where, fmt.Sprintf("zoom %d", *e.Zoom))
	}
	if len(where) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(where, ", "))
	}
	if e.cause != nil {
		fmt.Fprintf(&b, ": %v", e.cause)
	}
	if e.Guidance != "" {
		fmt.Fprintf(&b, ". %s", e.Guidance)
	}
	return b.String()
}

// Unwrap returns the underlying cause
func (e *BuildError) Unwrap() error {
	return e.cause
}

// NewError creates a new BuildError with the given code and message
func NewError(code ErrorCode, message string) *BuildError {
	return &BuildError{
		Code:    code,
		Message: message,
	}
}

// Errorf creates a new BuildError with a formatted message
func Errorf(code ErrorCode, format string, args ...interface{}) *BuildError {
	return NewError(code, fmt.Sprintf(format, args...))
}

// WithRailway adds the railway being built to the error
func (e *BuildError) WithRailway(id string) *BuildError {
	e.Railway = id
	return e
}

// WithSubline adds the index of the subline being built to the error
func (e *BuildError) WithSubline(index int) *BuildError {
	e.Subline = &index
	return e
}

// WithStation adds the station being resolved to the error
func (e *BuildError) WithStation(id string) *BuildError {
	e.Station = id
	return e
}

// WithZoom adds the zoom level being built to the error
func (e *BuildError) WithZoom(zoom int) *BuildError {
	e.Zoom = &zoom
	return e
}

// WithGuidance adds guidance information to the error
func (e *BuildError) WithGuidance(guidance string) *BuildError {
	e.Guidance = guidance
	return e
}

// WithCause wraps an underlying error
func (e *BuildError) WithCause(err error) *BuildError {
	e.cause = err
	return e
}

// CodeOf returns the code of the first BuildError in err's chain, or
// ErrInternalError when there is none.
func CodeOf(err error) ErrorCode {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code
	}
	return ErrInternalError
}

// IsCode reports whether err carries a BuildError with the given code
func IsCode(err error, code ErrorCode) bool {
	var be *BuildError
	return errors.As(err, &be) && be.Code == code
}

// ToMCPResult converts the error to an MCP tool result
func (e *BuildError) ToMCPResult() *mcp.CallToolResult {
	errorJSON, err := json.Marshal(e)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ERROR: %s - %s", e.Code, e.Message))
	}

	return mcp.NewToolResultError(string(errorJSON))
}

// TopologyError reports a junction that refers to a railway which is not
// available when the subline is built.
func TopologyError(railway string, subline int, target string) *BuildError {
	return Errorf(ErrTopology, "junction refers to railway %q which has not been built", target).
		WithRailway(railway).
		WithSubline(subline).
		WithGuidance("Define the referenced railway and make sure it does not depend on this one.")
}

// MissingStationError reports a station id absent from the station metadata.
func MissingStationError(station string) *BuildError {
	return NewError(ErrMissingReference, "station is not defined").
		WithStation(station).
		WithGuidance("Add the station to the station list or remove it from its group.")
}
