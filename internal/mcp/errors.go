// Package mcp implements the Model Context Protocol (MCP) server for iconify.
package mcp

import (
	"context"
	"errors"
	"fmt"

	ierrors "github.com/chandu-machineni/iconify/internal/errors"
	"github.com/chandu-machineni/iconify/internal/search"
)

// Custom MCP error codes for iconify.
const (
	// ErrCodeUpstreamUnavailable indicates the icon API could not be reached.
	ErrCodeUpstreamUnavailable = -32001

	// ErrCodeUnsupported indicates no provider can serve the request.
	ErrCodeUnsupported = -32002

	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout = -32003

	// ErrCodeSuperseded indicates a newer search replaced this one.
	ErrCodeSuperseded = -32004

	// Standard JSON-RPC error codes.
	ErrCodeInvalidRequest = -32600
	ErrCodeMethodNotFound = -32601
	ErrCodeInvalidParams  = -32602
	ErrCodeInternalError  = -32603
)

// Sentinel errors for internal use.
var (
	// ErrToolNotFound indicates the requested tool does not exist.
	ErrToolNotFound = errors.New("tool not found")

	// ErrInvalidParams indicates invalid parameters were provided.
	ErrInvalidParams = errors.New("invalid parameters")
)

// MCPError represents an MCP protocol error with code and message.
type MCPError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// MapError converts internal errors to MCP errors.
func MapError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var ie *ierrors.IconifyError
	if errors.As(err, &ie) {
		return mapIconifyError(ie)
	}

	switch {
	case errors.Is(err, search.ErrSuperseded):
		return &MCPError{
			Code:    ErrCodeSuperseded,
			Message: "Search was superseded by a newer query.",
		}
	case errors.Is(err, search.ErrNoActiveSearch):
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: "No active search. Call search_icons first.",
		}
	case errors.Is(err, context.DeadlineExceeded):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request timed out.",
		}
	case errors.Is(err, context.Canceled):
		return &MCPError{
			Code:    ErrCodeTimeout,
			Message: "Request was canceled.",
		}
	case errors.Is(err, ErrToolNotFound):
		return &MCPError{
			Code:    ErrCodeMethodNotFound,
			Message: "Tool not found.",
		}
	case errors.Is(err, ErrInvalidParams):
		return &MCPError{
			Code:    ErrCodeInvalidParams,
			Message: "Invalid parameters.",
		}
	default:
		return &MCPError{
			Code:    ErrCodeInternalError,
			Message: "Internal server error.",
		}
	}
}

// NewInvalidParamsError creates an error for invalid parameters with a custom message.
func NewInvalidParamsError(msg string) *MCPError {
	return &MCPError{
		Code:    ErrCodeInvalidParams,
		Message: msg,
	}
}

// NewMethodNotFoundError creates an error for unknown tools.
func NewMethodNotFoundError(name string) *MCPError {
	return &MCPError{
		Code:    ErrCodeMethodNotFound,
		Message: fmt.Sprintf("Tool '%s' not found.", name),
	}
}

func mapIconifyError(ie *ierrors.IconifyError) *MCPError {
	message := ie.Message
	if ie.Suggestion != "" {
		message = fmt.Sprintf("%s %s", ie.Message, ie.Suggestion)
	}

	if ie.Code == ierrors.ErrCodeUnsupported {
		return &MCPError{Code: ErrCodeUnsupported, Message: message}
	}

	switch ie.Category {
	case ierrors.CategoryValidation:
		return &MCPError{Code: ErrCodeInvalidParams, Message: message}
	case ierrors.CategoryUpstream:
		if ie.Code == ierrors.ErrCodeUpstreamTimeout {
			return &MCPError{Code: ErrCodeTimeout, Message: message}
		}
		return &MCPError{Code: ErrCodeUpstreamUnavailable, Message: message}
	default:
		return &MCPError{Code: ErrCodeInternalError, Message: message}
	}
}
