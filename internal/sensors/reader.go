package sensors

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/relabs-tech/velocity_gauge/internal/motion"
)

// csvFields is the number of values on one sample line:
// ax,ay,az,gx,gy,gz,rx,ry,rz
const csvFields = 9

// ReaderSource parses one sample per line from a text stream. Blank lines
// and lines starting with '#' are skipped.
type ReaderSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
	line    int
	seq     uint64
}

// NewReaderSource wraps r. If r is an io.Closer, Close closes it.
func NewReaderSource(r io.Reader) *ReaderSource {
	s := &ReaderSource{scanner: bufio.NewScanner(r)}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next sample, io.EOF at the end of the stream, or an error
// wrapping motion.ErrInvalidSample for a malformed line. A malformed line is
// consumed, so the caller may keep reading.
func (s *ReaderSource) Next() (motion.Sample, error) {
	for s.scanner.Scan() {
		s.line++
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sample, err := ParseSampleLine(line)
		if err != nil {
			return motion.Sample{}, fmt.Errorf("line %d: %w", s.line, err)
		}
		s.seq++
		sample.Seq = s.seq
		return sample, nil
	}
	if err := s.scanner.Err(); err != nil {
		return motion.Sample{}, err
	}
	return motion.Sample{}, io.EOF
}

// Close closes the underlying reader when it has a Close method.
func (s *ReaderSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// ParseSampleLine parses "ax,ay,az,gx,gy,gz,rx,ry,rz". Seq is left zero.
func ParseSampleLine(line string) (motion.Sample, error) {
	parts := strings.Split(line, ",")
	if len(parts) != csvFields {
		return motion.Sample{}, fmt.Errorf("%w: want %d fields, got %d", motion.ErrInvalidSample, csvFields, len(parts))
	}

	var v [csvFields]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return motion.Sample{}, fmt.Errorf("%w: field %d: %v", motion.ErrInvalidSample, i+1, err)
		}
		v[i] = f
	}

	s := motion.Sample{
		Accel:    motion.Vec3{X: v[0], Y: v[1], Z: v[2]},
		Gravity:  motion.Vec3{X: v[3], Y: v[4], Z: v[5]},
		Rotation: motion.Vec3{X: v[6], Y: v[7], Z: v[8]},
	}
	if err := s.Validate(); err != nil {
		return motion.Sample{}, err
	}
	return s, nil
}

// FormatSampleLine is the inverse of ParseSampleLine.
func FormatSampleLine(s motion.Sample) string {
	vals := []float64{
		s.Accel.X, s.Accel.Y, s.Accel.Z,
		s.Gravity.X, s.Gravity.Y, s.Gravity.Z,
		s.Rotation.X, s.Rotation.Y, s.Rotation.Z,
	}
	parts := make([]string, len(vals))
	for i, f := range vals {
		parts[i] = strconv.FormatFloat(f, 'g', -1, 64)
	}
	return strings.Join(parts, ",")
}
