// Package telemetry encodes the robot state streamed to the operator.
//
// A Frame is a protobuf message carrying one sample of every telemetry
// channel. On the wire each frame is wrapped in a Packet:
//
//	0xAA 0x55 SEQ CODE LEN DATA...
//
// SEQ increments per packet (1..0xef) so a receiver detects drops,
// CODE identifies the payload and LEN is the payload length in bytes.
// The receiver resynchronizes by hunting for the 0xAA 0x55 header.
package telemetry
