package card

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Backends wrap these so the gateway can tell a missing card from a broken connection.
var NoCardErr = errors.New("no card in reader")
var ConnectionErr = errors.New("card connection failed")

const ConnectedStatus = "connected"

type ErrorKind int

const (
	NoReader ErrorKind = iota + 1
	NoCard
	ConnectionFailed
	Unknown
)

func (k ErrorKind) String() string {
	switch k {
	case NoReader:
		return "no reader"
	case NoCard:
		return "no card"
	case ConnectionFailed:
		return "connection failed"
	default:
		return "unknown"
	}
}

// Status is the HTTP status code a failure of this kind is reported with.
func (k ErrorKind) Status() int {
	switch k {
	case NoReader:
		return http.StatusNotFound
	case NoCard:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type ReadError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *ReadError) Error() string {
	return e.Message
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

func noReaderError() *ReadError {
	return &ReadError{
		Kind:    NoReader,
		Message: "no reader detected: check that the reader is plugged in and its driver is installed",
	}
}

func classify(err error) *ReadError {
	var re *ReadError
	switch {
	case errors.As(err, &re):
		return re
	case errors.Is(err, NoCardErr):
		return &ReadError{
			Kind:    NoCard,
			Message: "no card present: make sure the card is fully inserted",
			Cause:   err,
		}
	case errors.Is(err, ConnectionErr):
		return &ReadError{
			Kind:    ConnectionFailed,
			Message: "card connection failed: the chip may have a poor contact, reinsert the card",
			Cause:   err,
		}
	default:
		return unknownError(err.Error(), err)
	}
}

func unknownError(msg string, cause error) *ReadError {
	if msg == "" {
		msg = "unknown error"
	}
	return &ReadError{
		Kind:    Unknown,
		Message: fmt.Sprintf("unexpected error: %v", msg),
		Cause:   cause,
	}
}

type Data struct {
	ATR    string `json:"atr"`
	Reader string `json:"reader"`
	Status string `json:"status"`
}

// Result is the body of a card read. Exactly one of Data and Error is set, and
// Success is true iff Data is set.
type Result struct {
	Success bool   `json:"success"`
	Data    *Data  `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func Success(r Reading) Result {
	return Result{
		Success: true,
		Data: &Data{
			ATR:    FormatATR(r.ATR),
			Reader: r.Reader,
			Status: ConnectedStatus,
		},
	}
}

func Failure(err *ReadError) Result {
	return Result{Success: false, Error: err.Message}
}

// FormatATR renders bytes as uppercase hex pairs separated by single spaces, e.g. "3B 6E 00".
func FormatATR(atr []byte) string {
	parts := make([]string, len(atr))
	for i, b := range atr {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, " ")
}
