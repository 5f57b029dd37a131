package w4113

import (
	"errors"
	"fmt"
	"log"
)

// Sentinel errors returned by engine operations.
var (
	ErrEngineClosed     = errors.New("engine is closed")
	ErrUnknownStrip     = errors.New("unknown strip")
	ErrUnknownOperation = errors.New("unknown operation")
)

// ErrorHandler receives errors raised off the request path, such as
// background reload failures and stream teardown problems.
type ErrorHandler interface {
	HandleError(error)
}

// DefaultErrorHandler logs errors through the standard logger.
type DefaultErrorHandler struct{}

func (h *DefaultErrorHandler) HandleError(err error) {
	log.Printf("engine error: %v", err)
}

// LoggingErrorHandler passes each error to a logger func before
// delegating to an underlying handler. Either part may be nil.
type LoggingErrorHandler struct {
	underlying ErrorHandler
	logger     func(error)
}

// NewLoggingErrorHandler creates a new logging error handler.
func NewLoggingErrorHandler(underlying ErrorHandler, logger func(error)) *LoggingErrorHandler {
	return &LoggingErrorHandler{
		underlying: underlying,
		logger:     logger,
	}
}

func (h *LoggingErrorHandler) HandleError(err error) {
	if h.logger != nil {
		h.logger(err)
	}
	if h.underlying != nil {
		h.underlying.HandleError(err)
	}
}

// PanicErrorHandler panics on any error (useful for development).
type PanicErrorHandler struct{}

func (h *PanicErrorHandler) HandleError(err error) {
	panic(fmt.Sprintf("engine error: %v", err))
}
