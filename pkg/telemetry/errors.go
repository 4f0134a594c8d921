package telemetry

import "errors"

var (
	// ErrPayloadTooLarge indicates the payload doesn't fit in a Packet.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrUnknownCode indicates a packet carrying an unknown payload.
	ErrUnknownCode = errors.New("unknown packet code")
)
