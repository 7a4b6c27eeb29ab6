package core

import "fmt"

// Code enumerates the execution outcome codes from spec.md §16, returned by
// every external interface boundary (core/service) instead of a bare error
// so callers can branch on outcome class (retryable vs. not) the way the
// teacher's storage layer branches on badger's sentinel errors.
type Code uint8

const (
	SUCCEEDED Code = iota
	SYNTAX_ERROR
	SEMANTIC_ERROR
	PERMISSION_ERROR
	SPACE_NOT_FOUND
	TAG_NOT_FOUND
	EDGE_NOT_FOUND
	INDEX_NOT_FOUND
	LEADER_CHANGED
	PART_NOT_FOUND
	CONSENSUS_ERROR
	RPC_FAILURE
	PARTIAL_SUCCESS
	TIMEOUT
	MEMORY_EXCEEDED
	EXECUTION_ERROR
)

func (c Code) String() string {
	switch c {
	case SUCCEEDED:
		return "SUCCEEDED"
	case SYNTAX_ERROR:
		return "SYNTAX_ERROR"
	case SEMANTIC_ERROR:
		return "SEMANTIC_ERROR"
	case PERMISSION_ERROR:
		return "PERMISSION_ERROR"
	case SPACE_NOT_FOUND:
		return "SPACE_NOT_FOUND"
	case TAG_NOT_FOUND:
		return "TAG_NOT_FOUND"
	case EDGE_NOT_FOUND:
		return "EDGE_NOT_FOUND"
	case INDEX_NOT_FOUND:
		return "INDEX_NOT_FOUND"
	case LEADER_CHANGED:
		return "LEADER_CHANGED"
	case PART_NOT_FOUND:
		return "PART_NOT_FOUND"
	case CONSENSUS_ERROR:
		return "CONSENSUS_ERROR"
	case RPC_FAILURE:
		return "RPC_FAILURE"
	case PARTIAL_SUCCESS:
		return "PARTIAL_SUCCESS"
	case TIMEOUT:
		return "TIMEOUT"
	case MEMORY_EXCEEDED:
		return "MEMORY_EXCEEDED"
	case EXECUTION_ERROR:
		return "EXECUTION_ERROR"
	default:
		return "UNKNOWN_CODE"
	}
}

// Retryable reports whether a caller might reasonably retry the operation
// that produced this code, used by the storage client's backoff policy
// (core/storageclient) to decide whether to retry a partition RPC.
func (c Code) Retryable() bool {
	switch c {
	case LEADER_CHANGED, RPC_FAILURE, CONSENSUS_ERROR, TIMEOUT:
		return true
	default:
		return false
	}
}

// Status pairs a Code with a human-readable message, the shape every
// execution response carries (spec.md §6).
type Status struct {
	Code    Code
	Message string
}

// OK constructs a SUCCEEDED status.
func OK() Status { return Status{Code: SUCCEEDED} }

// NewStatus constructs a Status with a formatted message.
func NewStatus(code Code, format string, args ...interface{}) Status {
	return Status{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsOK reports whether the status is SUCCEEDED.
func (s Status) IsOK() bool { return s.Code == SUCCEEDED }

func (s Status) Error() string {
	if s.Message == "" {
		return s.Code.String()
	}
	return fmt.Sprintf("%s: %s", s.Code, s.Message)
}

// StatusFromError maps a generic Go error to an EXECUTION_ERROR status
// unless it already carries a Status, preserving any more specific code a
// lower layer attached.
func StatusFromError(err error) Status {
	if err == nil {
		return OK()
	}
	if st, ok := err.(Status); ok {
		return st
	}
	var withStatus interface{ Status() Status }
	if ok := asStatusCarrier(err, &withStatus); ok {
		return withStatus.Status()
	}
	return NewStatus(EXECUTION_ERROR, "%v", err)
}

func asStatusCarrier(err error, out *interface{ Status() Status }) bool {
	if carrier, ok := err.(interface{ Status() Status }); ok {
		*out = carrier
		return true
	}
	return false
}
