package alarm

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

// ExecPlayer shells out to the platform audio player. Playback runs in its
// own goroutine so starting a sound never blocks a poll tick; the trim
// window is enforced by killing the player process after the window
// elapses.
type ExecPlayer struct{}

func (ExecPlayer) Play(data []byte, volume float64, trim model.TrimWindow) error {
	if len(data) == 0 {
		return fmt.Errorf("alarm: empty audio payload")
	}

	f, err := os.CreateTemp("", "taskmatrix-ringtone-*")
	if err != nil {
		return fmt.Errorf("alarm: stage audio: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("alarm: stage audio: %w", err)
	}
	f.Close()

	cmd := playerCommand(f.Name(), volume)
	if err := cmd.Start(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("alarm: start playback: %w", err)
	}

	var stopTimer *time.Timer
	if d := trim.Duration(); d > 0 {
		stopTimer = time.AfterFunc(d, func() {
			_ = cmd.Process.Kill()
		})
	}
	go func() {
		_ = cmd.Wait()
		if stopTimer != nil {
			stopTimer.Stop()
		}
		os.Remove(f.Name())
	}()
	return nil
}

func playerCommand(path string, volume float64) *exec.Cmd {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("afplay", "-v", fmt.Sprintf("%.2f", volume), path)
	default:
		return exec.Command("paplay", path)
	}
}

// ExecToneSink plays the synthesized tone through the same platform player.
// Failures are ignored: the tone tier has no further fallback.
type ExecToneSink struct{}

func (ExecToneSink) PlayTone(samples []int16, sampleRate int) {
	f, err := os.CreateTemp("", "taskmatrix-tone-*.wav")
	if err != nil {
		return
	}
	if _, err := f.Write(EncodeWAV(samples, sampleRate)); err != nil {
		f.Close()
		os.Remove(f.Name())
		return
	}
	f.Close()

	cmd := playerCommand(f.Name(), 1)
	if err := cmd.Start(); err != nil {
		os.Remove(f.Name())
		return
	}
	go func() {
		_ = cmd.Wait()
		os.Remove(f.Name())
	}()
}
