package link

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the rate of the Bluetooth SPP module.
const DefaultBaudRate = 115200

// OpenSerialPort opens a serial port in 8N1 mode.
func OpenSerialPort(path string, baudRate int) (serial.Port, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return port, nil
}

// OpenSerial opens a serial port as a Link.
func OpenSerial(path string, baudRate int) (*Link, error) {
	port, err := OpenSerialPort(path, baudRate)
	if err != nil {
		return nil, err
	}
	return New(path, port), nil
}

// SerialPorts lists the serial ports on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
