package sensors

import (
	"fmt"
	"log"

	serial "github.com/jacobsa/go-serial/serial"
)

// NewSerialSource opens a serial port that streams one CSV sample per line,
// as written by a phone or microcontroller bridge.
func NewSerialSource(portName string, baud int) (*ReaderSource, error) {
	serialOpts := serial.OpenOptions{
		PortName:              portName,
		BaudRate:              uint(baud),
		DataBits:              8,
		StopBits:              1,
		MinimumReadSize:       1,
		ParityMode:            serial.PARITY_NONE,
		InterCharacterTimeout: 0,
	}

	port, err := serial.Open(serialOpts)
	if err != nil {
		return nil, fmt.Errorf("serial source: open %s: %w", portName, err)
	}
	log.Printf("serial source: port opened on %s at %d baud", serialOpts.PortName, serialOpts.BaudRate)
	return NewReaderSource(port), nil
}
