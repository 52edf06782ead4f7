package sensors

import (
	"fmt"
	"os"
)

// NewReplaySource opens a recorded CSV sample file.
func NewReplaySource(path string) (*ReaderSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("replay source: %w", err)
	}
	return NewReaderSource(f), nil
}
