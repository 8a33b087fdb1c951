package alarm

import (
	"errors"
	"testing"
	"time"

	"github.com/sandeepkv93/taskmatrix/internal/model"
)

type fakeLibrary map[string]model.Ringtone

func (l fakeLibrary) Ringtone(id string) (model.Ringtone, bool) {
	r, ok := l[id]
	return r, ok
}

type fakeSettings struct {
	settings model.Settings
}

func (s *fakeSettings) Settings() model.Settings { return s.settings }

type recordingPlayer struct {
	calls   int
	volumes []float64
	trims   []model.TrimWindow
	fail    int // fail the first n calls
}

func (p *recordingPlayer) Play(data []byte, volume float64, trim model.TrimWindow) error {
	p.calls++
	p.volumes = append(p.volumes, volume)
	p.trims = append(p.trims, trim)
	if p.calls <= p.fail {
		return errors.New("decode error")
	}
	return nil
}

type recordingTone struct {
	played  bool
	samples []int16
}

func (t *recordingTone) PlayTone(samples []int16, sampleRate int) {
	t.played = true
	t.samples = samples
}

func TestSoundResolutionPrefersLibraryEntry(t *testing.T) {
	library := fakeLibrary{
		"r1": {ID: "r1", Name: "chime", Data: []byte("audio"), Trim: model.TrimWindow{Start: 1, End: 4}},
	}
	player := &recordingPlayer{}
	clip := model.RingtoneClip{Data: []byte("custom")}
	task := model.Task{ID: "t1", Title: "t", RingtoneLibraryID: "r1", CustomRingtone: &clip}

	s := NewSounder(library, &fakeSettings{settings: model.Settings{AlarmVolume: 0.5}}, player, &recordingTone{}, nil)
	if tier := s.PlayFor(task); tier != TierLibrary {
		t.Fatalf("expected library tier, got %s", tier)
	}
	if player.calls != 1 {
		t.Fatalf("expected single playback attempt, got %d", player.calls)
	}
	if player.trims[0].Duration() != 3*time.Second {
		t.Fatalf("library trim window not honored: %v", player.trims[0])
	}
}

func TestSoundResolutionLookupMissFallsToCustom(t *testing.T) {
	clip := model.RingtoneClip{Data: []byte("custom"), Trim: model.TrimWindow{Start: 2}}
	task := model.Task{ID: "t1", Title: "t", RingtoneLibraryID: "missing", CustomRingtone: &clip}
	player := &recordingPlayer{}

	s := NewSounder(fakeLibrary{}, nil, player, &recordingTone{}, nil)
	if tier := s.PlayFor(task); tier != TierCustom {
		t.Fatalf("expected custom tier on lookup miss, got %s", tier)
	}
	// Custom clips default the trim end to 30s.
	if player.trims[0].Duration() != 28*time.Second {
		t.Fatalf("custom clip trim not normalized: %v", player.trims[0])
	}
}

func TestSoundResolutionPlaybackFailureWalksChain(t *testing.T) {
	library := fakeLibrary{
		"r1": {ID: "r1", Name: "chime", Data: []byte("audio")},
	}
	clip := model.RingtoneClip{Data: []byte("custom")}
	task := model.Task{ID: "t1", Title: "t", RingtoneLibraryID: "r1", CustomRingtone: &clip}
	player := &recordingPlayer{fail: 2}
	tone := &recordingTone{}

	s := NewSounder(library, nil, player, tone, nil)
	if tier := s.PlayFor(task); tier != TierFallback {
		t.Fatalf("expected fallback tier after two failures, got %s", tier)
	}
	if player.calls != 2 {
		t.Fatalf("expected library then custom attempts, got %d", player.calls)
	}
	if !tone.played {
		t.Fatalf("fallback tone must play when both tiers fail")
	}
}

func TestSoundResolutionBareTaskGetsFallbackTone(t *testing.T) {
	tone := &recordingTone{}
	s := NewSounder(nil, nil, &recordingPlayer{}, tone, nil)
	if tier := s.PlayFor(model.Task{ID: "t1", Title: "t"}); tier != TierFallback {
		t.Fatalf("expected fallback tier, got %s", tier)
	}
	if !tone.played || len(tone.samples) == 0 {
		t.Fatalf("expected synthesized samples")
	}
}

func TestVolumeReadFreshAtFireTime(t *testing.T) {
	library := fakeLibrary{"r1": {ID: "r1", Name: "chime", Data: []byte("audio")}}
	settings := &fakeSettings{settings: model.Settings{AlarmVolume: 0.3}}
	player := &recordingPlayer{}
	task := model.Task{ID: "t1", Title: "t", RingtoneLibraryID: "r1"}

	s := NewSounder(library, settings, player, &recordingTone{}, nil)
	s.PlayFor(task)
	settings.settings.AlarmVolume = 0.9
	s.PlayFor(task)

	if player.volumes[0] != 0.3 || player.volumes[1] != 0.9 {
		t.Fatalf("volume must be read at fire time, got %v", player.volumes)
	}
}

func TestSynthesizeTone(t *testing.T) {
	samples := SynthesizeTone(0.8)
	if len(samples) != toneSampleRate/2 {
		t.Fatalf("expected half a second of samples, got %d", len(samples))
	}
	peak := int16(0)
	for _, s := range samples {
		if s > peak {
			peak = s
		}
	}
	if peak == 0 {
		t.Fatalf("tone must contain signal")
	}

	for _, s := range SynthesizeTone(0) {
		if s != 0 {
			t.Fatalf("zero volume must synthesize silence")
		}
	}
}

func TestEncodeWAVHeader(t *testing.T) {
	wav := EncodeWAV([]int16{0, 100, -100}, 44100)
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Fatalf("malformed RIFF header")
	}
	if len(wav) != 44+6 {
		t.Fatalf("unexpected container size: %d", len(wav))
	}
}
