// Package script reads and writes pointer scripts. A script is a list of
// lines of the form
//
//	<frames> <x> <y> <down|up>
//
// meaning the pointer sits at (x, y) in workspace pixels, in or out of
// contact, for the given number of frames. Blank lines and lines starting
// with '#' are ignored.
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// FrameDuration is the length of one frame at 60Hz.
const FrameDuration = time.Second / 60

// Step is one script line.
type Step struct {
	Frames  int
	X, Y    int
	Contact bool
}

// Duration returns how long the step lasts in real time.
func (s Step) Duration() time.Duration {
	return time.Duration(s.Frames) * FrameDuration
}

func (s Step) String() string {
	state := "up"
	if s.Contact {
		state = "down"
	}
	return fmt.Sprintf("%d %d %d %s", s.Frames, s.X, s.Y, state)
}

// ParseLine parses a single script line. ok is false for blank lines and
// comments.
func ParseLine(line string) (step Step, ok bool, err error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Step{}, false, nil
	}
	parts := strings.Fields(line)
	if len(parts) != 4 {
		return Step{}, false, fmt.Errorf("expected 4 fields, got %d", len(parts))
	}
	frames, err := strconv.Atoi(parts[0])
	if err != nil || frames <= 0 {
		return Step{}, false, fmt.Errorf("invalid frame count %q", parts[0])
	}
	x, err := strconv.Atoi(parts[1])
	if err != nil {
		return Step{}, false, fmt.Errorf("invalid x %q", parts[1])
	}
	y, err := strconv.Atoi(parts[2])
	if err != nil {
		return Step{}, false, fmt.Errorf("invalid y %q", parts[2])
	}
	var contact bool
	switch strings.ToLower(parts[3]) {
	case "down", "1":
		contact = true
	case "up", "0":
	default:
		return Step{}, false, fmt.Errorf("invalid contact state %q", parts[3])
	}
	return Step{Frames: frames, X: x, Y: y, Contact: contact}, true, nil
}

// Read parses a whole script. Errors carry the line number.
func Read(r io.Reader) ([]Step, error) {
	var steps []Step
	scanner := bufio.NewScanner(r)
	n := 0
	for scanner.Scan() {
		n++
		step, ok, err := ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		if ok {
			steps = append(steps, step)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

// Clamp limits (x, y) to a w x h workspace.
func Clamp(x, y, w, h int) (int, int) {
	return min(max(x, 0), max(w-1, 0)), min(max(y, 0), max(h-1, 0))
}

// Recorder collapses per-frame samples into steps and writes each step when
// the sample changes.
type Recorder struct {
	w       io.Writer
	current Step
	started bool
}

// NewRecorder creates a Recorder writing to w.
func NewRecorder(w io.Writer) *Recorder {
	return &Recorder{w: w}
}

// Record adds one frame.
func (r *Recorder) Record(x, y int, contact bool) error {
	if r.started && r.current.X == x && r.current.Y == y && r.current.Contact == contact {
		r.current.Frames++
		return nil
	}
	if err := r.flush(); err != nil {
		return err
	}
	r.current = Step{Frames: 1, X: x, Y: y, Contact: contact}
	r.started = true
	return nil
}

// Flush writes the pending step.
func (r *Recorder) Flush() error {
	err := r.flush()
	r.started = false
	return err
}

func (r *Recorder) flush() error {
	if !r.started {
		return nil
	}
	_, err := fmt.Fprintln(r.w, r.current.String())
	return err
}
