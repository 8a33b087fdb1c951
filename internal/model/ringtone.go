package model

import (
	"errors"
	"strings"
	"time"
)

// TrimWindow restricts which portion of an audio clip plays, in seconds
// from the start of the clip. A zero End means "play to the end".
type TrimWindow struct {
	Start float64
	End   float64
}

// Duration returns how long playback should run before being cut off, or 0
// when no stop timer is needed.
func (w TrimWindow) Duration() time.Duration {
	if w.End <= 0 || w.End <= w.Start {
		return 0
	}
	return time.Duration((w.End - w.Start) * float64(time.Second))
}

// Ringtone is one entry in the stored ringtone library.
type Ringtone struct {
	ID   string
	Name string
	Data []byte
	Type string
	Trim TrimWindow
}

func (r Ringtone) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: ringtone id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("model: ringtone name is required")
	}
	if len(r.Data) == 0 {
		return errors.New("model: ringtone data is required")
	}
	if r.Trim.Start < 0 || r.Trim.End < 0 {
		return errors.New("model: ringtone trim offsets must be non-negative")
	}
	return nil
}

const defaultClipTrimEnd = 30

// RingtoneClip is a task-local recorded sound, played when the task has no
// resolvable library entry.
type RingtoneClip struct {
	Data []byte
	Type string
	Trim TrimWindow
}

// Normalized returns the clip with its trim window filled in: negative
// offsets zeroed and a missing end defaulted to 30 seconds.
func (c RingtoneClip) Normalized() RingtoneClip {
	out := c
	if out.Trim.Start < 0 {
		out.Trim.Start = 0
	}
	if out.Trim.End <= 0 {
		out.Trim.End = defaultClipTrimEnd
	}
	return out
}
