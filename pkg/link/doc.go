// Package link carries operator commands and telemetry over byte
// streams. A Link frames carriage-return terminated command lines out
// of whatever bytes arrive, and sends telemetry frames back verbatim.
//
// Transports are plain io.ReadWriters: a serial port (UART or a
// Bluetooth SPP module), or a packet transport such as MQTT or
// websocket adapted with NewPacketStream.
package link
