package dict

import "errors"

// Sentinel errors for the dict package.
var (
	// ErrBadBanner indicates the server greeting was not a 220 status.
	ErrBadBanner = errors.New("unexpected server banner")

	// ErrProtocol indicates a response that does not match the expected
	// status code or shape for the issued command.
	ErrProtocol = errors.New("protocol error")
)
