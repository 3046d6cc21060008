package schema

import "errors"

var (
	// ErrRelayURLUnset indicates the backend endpoint has not been configured.
	ErrRelayURLUnset = errors.New("relay url is not configured")
	// ErrBackendStatus indicates the backend answered with a non-2xx status.
	ErrBackendStatus = errors.New("backend rejected request")
	// ErrNoComposeField indicates the compose field could not be located.
	ErrNoComposeField = errors.New("compose field not found")
	// ErrNoSendControl indicates no send control was found to activate.
	ErrNoSendControl = errors.New("send control not found")
	// ErrSurfaceClosed indicates the UI surface has been shut down.
	ErrSurfaceClosed = errors.New("ui surface is closed")
	// ErrEngineClosed indicates the engine run loop has stopped.
	ErrEngineClosed = errors.New("engine is closed")
	// ErrUnknownHostVersion indicates no identifier table matches the host
	// app version; callers fall back to the last known table.
	ErrUnknownHostVersion = errors.New("unsupported host app version")
)
