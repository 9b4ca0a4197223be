package cfg

import "golang.org/x/xerrors"

// CfgError is returned by Prepare and Denormalize for any violation of
// the schema or of referential consistency: surface to the CLI with the
// descriptive message, exit 1, no stack trace. No other error kind
// escapes Prepare.
type CfgError struct {
	msg   string
	cause error
}

func (e *CfgError) Error() string {
	if e.cause == nil {
		return e.msg
	}
	return e.msg + ": " + e.cause.Error()
}

func (e *CfgError) Unwrap() error { return e.cause }

// NewCfgError returns a CfgError with the given descriptive message.
func NewCfgError(msg string) *CfgError {
	return &CfgError{msg: msg}
}

// WrapCfgError wraps cause as a CfgError, preserving it for errors.Is/As.
func WrapCfgError(msg string, cause error) *CfgError {
	return &CfgError{msg: msg, cause: cause}
}

var (
	// ErrUnknownReference is returned (wrapped in a CfgError) when a
	// config field references a host, process, node or data type id
	// that does not exist.
	ErrUnknownReference = xerrors.New("reference does not resolve to a known id")

	// ErrDuplicatePath is returned when two edges share the same src or
	// dst path.
	ErrDuplicatePath = xerrors.New("duplicate edge src/dst path")

	// ErrProcessOnMultipleHosts is returned when a single process id
	// appears to own edges spanning two different hosts - a
	// configuration error, since a process is defined to live on
	// exactly one host.
	ErrProcessOnMultipleHosts = xerrors.New("process id cannot span two hosts")

	// ErrCyclicDataType names a data-type graph with a cycle or an
	// undefined type. Nothing in this package returns it: the gap-table
	// resolver in cfg/data reports that case as data.ErrCyclicType.
	ErrCyclicDataType = xerrors.New("data type graph has an unresolved cycle or unknown type")

	// ErrOwnerHostNotEndpoint is returned when an inter-host edge names an
	// owner node whose host is neither the src node's host nor the dst
	// node's host: the owner host binds the listening socket for the
	// edge, so it must be one of the two hosts actually exchanging data.
	ErrOwnerHostNotEndpoint = xerrors.New("inter-host edge owner host is neither the src host nor the dst host")
)
