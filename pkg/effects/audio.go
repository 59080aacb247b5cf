package effects

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/opd-ai/go-skyward/pkg/physics"
)

const (
	sampleRate = beep.SampleRate(44100)

	humBaseHz    = 55.0
	humRangeHz   = 165.0
	humBaseGain  = 0.05
	humRangeGain = 0.15
	humGlide     = 0.0005 // per-sample approach toward the target pitch
)

// Speaker is the audio device the hum plays through
type Speaker interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Close()
}

type systemSpeaker struct{}

func (systemSpeaker) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (systemSpeaker) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (systemSpeaker) Lock()                   { speaker.Lock() }
func (systemSpeaker) Unlock()                 { speaker.Unlock() }
func (systemSpeaker) Close()                  { speaker.Close() }

// AudioEffect plays a continuous engine hum whose pitch and volume rise with
// craft speed. Failing to open the audio device leaves it inactive.
type AudioEffect struct {
	toggle
	device   Speaker
	maxSpeed float64

	mu          sync.Mutex
	hum         *humStreamer
	ctrl        *beep.Ctrl
	mixer       *beep.Mixer
	initialized bool
}

// AudioOption configures an AudioEffect
type AudioOption func(*AudioEffect)

// WithSpeaker replaces the system speaker
func WithSpeaker(s Speaker) AudioOption {
	return func(a *AudioEffect) { a.device = s }
}

// NewAudio creates the engine hum for a craft capped at maxSpeed
func NewAudio(maxSpeed float64, opts ...AudioOption) *AudioEffect {
	a := &AudioEffect{
		device:   systemSpeaker{},
		maxSpeed: maxSpeed,
		hum:      newHumStreamer(sampleRate),
		mixer:    &beep.Mixer{},
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ctrl = &beep.Ctrl{Streamer: a.hum, Paused: true}
	a.mixer.Add(a.ctrl)
	return a
}

func (a *AudioEffect) Name() string { return Audio }

// Init opens the audio device and starts the (silent) mixer
func (a *AudioEffect) Init(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}
	if err := a.device.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	a.device.Play(a.mixer)
	a.initialized = true
	return nil
}

func (a *AudioEffect) Update(deltaTime float64, craft physics.CraftState) error {
	ratio := 0.0
	if a.maxSpeed > 0 {
		ratio = physics.Clamp(craft.Speed/a.maxSpeed, 0, 1)
	}
	a.hum.set(humBaseHz+humRangeHz*ratio, humBaseGain+humRangeGain*ratio)
	return nil
}

// SetActive starts or stops the hum
func (a *AudioEffect) SetActive(active bool) {
	a.toggle.SetActive(active)
	a.setPaused(!active)
}

// SetPaused silences the hum while the loop is paused without changing
// whether the module is active.
func (a *AudioEffect) SetPaused(paused bool) {
	a.setPaused(paused || !a.IsActive())
}

func (a *AudioEffect) setPaused(paused bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		a.device.Lock()
		defer a.device.Unlock()
	}
	a.ctrl.Paused = paused
}

// Dispose stops playback and releases the device
func (a *AudioEffect) Dispose() {
	a.toggle.SetActive(false)

	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.initialized {
		return
	}
	a.device.Lock()
	a.ctrl.Paused = true
	a.mixer.Clear()
	a.device.Unlock()
	a.device.Close()
	a.initialized = false
}

// Pitch returns the frequency the hum is gliding toward
func (a *AudioEffect) Pitch() float64 {
	freq, _ := a.hum.target()
	return freq
}

// Playing reports whether the hum is audible
func (a *AudioEffect) Playing() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.initialized && !a.ctrl.Paused
}

// humStreamer is a sine generator with a gliding frequency. The speaker
// goroutine reads it while the loop writes the target.
type humStreamer struct {
	sr beep.SampleRate

	mu         sync.Mutex
	targetFreq float64
	targetGain float64

	freq  float64
	gain  float64
	phase float64
}

func newHumStreamer(sr beep.SampleRate) *humStreamer {
	return &humStreamer{
		sr:         sr,
		targetFreq: humBaseHz,
		targetGain: humBaseGain,
		freq:       humBaseHz,
		gain:       humBaseGain,
	}
}

func (h *humStreamer) set(freq, gain float64) {
	h.mu.Lock()
	h.targetFreq = freq
	h.targetGain = gain
	h.mu.Unlock()
}

func (h *humStreamer) target() (float64, float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.targetFreq, h.targetGain
}

func (h *humStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	targetFreq, targetGain := h.target()
	step := 2 * math.Pi / float64(h.sr)

	for i := range samples {
		h.freq += (targetFreq - h.freq) * humGlide
		h.gain += (targetGain - h.gain) * humGlide

		// fundamental plus a quieter octave for body
		v := h.gain * (math.Sin(h.phase) + 0.3*math.Sin(2*h.phase))
		samples[i][0] = v
		samples[i][1] = v

		h.phase = math.Mod(h.phase+h.freq*step, 2*math.Pi)
	}
	return len(samples), true
}

func (h *humStreamer) Err() error {
	return nil
}
