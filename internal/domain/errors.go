package domain

import "errors"

// Sentinel errors for the topology core. Every failure returned by the
// topology, codec and service packages wraps one of these; use errors.Is.
var (
	// ErrDuplicateID indicates an entity id that is already registered.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrValidation indicates a name or attribute that breaks a format,
	// length or uniqueness rule.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound indicates an operation on an unknown id.
	ErrNotFound = errors.New("not found")

	// ErrInvalidConnection indicates an edge between two endpoints of the
	// same category, or an edge to a port that cannot take it.
	ErrInvalidConnection = errors.New("invalid connection")

	// ErrVlanConflict indicates a second untagged connection on one interface.
	ErrVlanConflict = errors.New("vlan conflict")

	// ErrCodec indicates a malformed or partial topology document.
	ErrCodec = errors.New("malformed topology document")

	// ErrNetworkFull is wrapped alongside ErrInvalidConnection when every
	// port of a network is occupied.
	ErrNetworkFull = errors.New("network has no free ports")
)

// Reason codes reported to the editor for rejected operations.
const (
	ReasonDuplicateID       = "DuplicateIdError"
	ReasonValidation        = "ValidationError"
	ReasonNotFound          = "NotFoundError"
	ReasonInvalidConnection = "InvalidConnectionError"
	ReasonVlanConflict      = "VlanConflictError"
	ReasonCodec             = "CodecError"
	ReasonInternal          = "InternalError"
)

// ReasonCode maps an error to its reason code. Codec errors win because a
// failed restore wraps the underlying cause as well.
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCodec):
		return ReasonCodec
	case errors.Is(err, ErrDuplicateID):
		return ReasonDuplicateID
	case errors.Is(err, ErrValidation):
		return ReasonValidation
	case errors.Is(err, ErrNotFound):
		return ReasonNotFound
	case errors.Is(err, ErrVlanConflict):
		return ReasonVlanConflict
	case errors.Is(err, ErrInvalidConnection):
		return ReasonInvalidConnection
	default:
		return ReasonInternal
	}
}

// UserMessage returns the short message shown to an operator for err.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCodec):
		return "The topology document could not be loaded."
	case errors.Is(err, ErrVlanConflict):
		return "Only one untagged vlan per interface is allowed."
	case errors.Is(err, ErrNetworkFull):
		return "This network has no free ports."
	case errors.Is(err, ErrInvalidConnection):
		return "Connections must link a host interface to a network."
	case errors.Is(err, ErrDuplicateID):
		return "This item has already been added."
	case errors.Is(err, ErrNotFound):
		return "The selected item no longer exists."
	case errors.Is(err, ErrValidation):
		// name rule errors carry their own operator-facing text
		var verr *NameError
		if errors.As(err, &verr) {
			return verr.Message
		}
		return "The request is not valid."
	default:
		return "Something went wrong."
	}
}
