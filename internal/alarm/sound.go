package alarm

import (
	"io"
	"math"

	"github.com/charmbracelet/log"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

// Tier names which rung of the sound resolution chain actually played.
type Tier string

const (
	TierLibrary  Tier = "library"
	TierCustom   Tier = "custom"
	TierFallback Tier = "fallback"
)

// Library looks up stored ringtone entries by id. A miss is not an error;
// the chain simply falls through to the next tier.
type Library interface {
	Ringtone(id string) (model.Ringtone, bool)
}

// SettingsSource supplies the persisted settings, read fresh at fire time
// so a volume change affects already-scheduled alarms.
type SettingsSource interface {
	Settings() model.Settings
}

// Player starts audio playback. It must not block; trim enforcement is the
// player's job. Errors make the chain fall one tier down.
type Player interface {
	Play(data []byte, volume float64, trim model.TrimWindow) error
}

// ToneSink emits the synthesized fallback tone. It cannot fail.
type ToneSink interface {
	PlayTone(samples []int16, sampleRate int)
}

// Sounder walks the ringtone priority chain for a fired alarm:
// library entry, then the task's own clip, then the synthesized tone.
type Sounder struct {
	library  Library
	settings SettingsSource
	player   Player
	tone     ToneSink
	logger   *log.Logger
}

func NewSounder(library Library, settings SettingsSource, player Player, tone ToneSink, logger *log.Logger) *Sounder {
	if player == nil {
		player = NoopPlayer{}
	}
	if tone == nil {
		tone = NoopToneSink{}
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Sounder{library: library, settings: settings, player: player, tone: tone, logger: logger}
}

// PlayFor resolves and starts the alarm sound for a task, returning the
// tier that played. It never fails: the chain terminates at the pure
// oscillator tone.
func (s *Sounder) PlayFor(task model.Task) Tier {
	volume := model.DefaultSettings().Volume()
	if s.settings != nil {
		volume = s.settings.Settings().Volume()
	}

	if task.RingtoneLibraryID != "" && s.library != nil {
		entry, ok := s.library.Ringtone(task.RingtoneLibraryID)
		switch {
		case !ok || len(entry.Data) == 0:
			s.logger.Debug("ringtone library lookup miss", "task", task.ID, "ringtone", task.RingtoneLibraryID)
		default:
			if err := s.player.Play(entry.Data, volume, entry.Trim); err == nil {
				return TierLibrary
			} else {
				s.logger.Warn("library ringtone playback failed", "task", task.ID, "ringtone", entry.ID, "err", err)
			}
		}
	}

	if task.CustomRingtone != nil && len(task.CustomRingtone.Data) > 0 {
		clip := task.CustomRingtone.Normalized()
		if err := s.player.Play(clip.Data, volume, clip.Trim); err == nil {
			return TierCustom
		}
		s.logger.Warn("custom ringtone playback failed", "task", task.ID)
	}

	s.tone.PlayTone(SynthesizeTone(volume), toneSampleRate)
	return TierFallback
}

const (
	toneFrequency  = 800.0
	toneSampleRate = 44100
	toneDuration   = 0.5
	toneFloorGain  = 0.01
)

// SynthesizeTone produces the fallback beep: a fixed-frequency sine with an
// exponential decay envelope, 16-bit mono PCM. Pure computation, no
// external resource involved.
func SynthesizeTone(volume float64) []int16 {
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	peak := volume * 0.6

	n := int(toneDuration * toneSampleRate)
	samples := make([]int16, n)
	if peak <= toneFloorGain {
		return samples
	}
	for i := range samples {
		t := float64(i) / toneSampleRate
		gain := peak * math.Pow(toneFloorGain/peak, t/toneDuration)
		v := gain * math.Sin(2*math.Pi*toneFrequency*t)
		samples[i] = int16(v * math.MaxInt16)
	}
	return samples
}

// NoopPlayer rejects nothing and plays nothing. Useful headless and in
// tests.
type NoopPlayer struct{}

func (NoopPlayer) Play([]byte, float64, model.TrimWindow) error { return nil }

// NoopToneSink swallows the fallback tone.
type NoopToneSink struct{}

func (NoopToneSink) PlayTone([]int16, int) {}
