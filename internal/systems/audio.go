package systems

import (
	"bytes"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/oto/v2"
	"github.com/vovakirdan/sandbox/internal/config"
)

// Audio output format: stereo 32-bit float.
const (
	ChannelCount = 2
	MaxVoices    = 2 // more simultaneous blips clip the speakers

	blipSeconds = 0.06
)

// Device plays PCM buffers. Play blocks until playback finishes.
type Device interface {
	Play(pcm []byte, volume float64)
}

// OpenFunc opens an output device at the given sample rate.
type OpenFunc func(sampleRate int) (Device, error)

// Audio plays a short procedural blip for every bounce. If the device cannot be
// opened the system logs a warning and stays silent; the sandbox keeps running.
type Audio struct {
	cfg    config.AudioConfig
	open   OpenFunc
	logger *log.Logger

	dev     Device
	active  atomic.Int32
	voices  sync.WaitGroup
	closed  atomic.Bool
	played  atomic.Uint64
	dropped atomic.Uint64
}

// NewAudio creates the audio system and subscribes it to bounce events.
// A nil open uses the system output through oto.
func NewAudio(cfg config.AudioConfig, events *Events, open OpenFunc, logger *log.Logger) *Audio {
	if open == nil {
		open = OpenOto
	}
	if logger == nil {
		logger = log.Default()
	}
	a := &Audio{cfg: cfg, open: open, logger: logger}
	if events != nil {
		events.Subscribe(EventBounce, a.onBounce)
	}
	return a
}

func (a *Audio) Name() string { return "audio" }

// Initialize opens the device. Failure disables audio instead of failing startup.
func (a *Audio) Initialize() error {
	if !a.cfg.Enabled {
		a.logger.Info("audio disabled by config")
		return nil
	}
	dev, err := a.open(a.cfg.SampleRate)
	if err != nil {
		a.logger.Warn("audio unavailable, continuing without sound", "err", err)
		return nil
	}
	a.dev = dev
	return nil
}

// Shutdown waits for in-flight voices.
func (a *Audio) Shutdown() error {
	a.closed.Store(true)
	a.voices.Wait()
	return nil
}

// Enabled reports whether a device is open.
func (a *Audio) Enabled() bool { return a.dev != nil }

// Played returns how many blips were started.
func (a *Audio) Played() uint64 { return a.played.Load() }

// Dropped returns how many blips were skipped because every voice was busy.
func (a *Audio) Dropped() uint64 { return a.dropped.Load() }

func (a *Audio) onBounce(ev Event) {
	if a.dev == nil || a.closed.Load() {
		return
	}
	if a.active.Add(1) > MaxVoices {
		a.active.Add(-1)
		a.dropped.Add(1)
		return
	}
	pitch := 220 + math.Min(ev.Strength, 1200)*0.6
	gain := math.Min(ev.Strength/600, 1)
	pcm := Blip(a.cfg.SampleRate, pitch, blipSeconds)

	a.played.Add(1)
	a.voices.Add(1)
	go func() {
		defer a.voices.Done()
		defer a.active.Add(-1)
		a.dev.Play(pcm, a.cfg.Volume*gain)
	}()
}

// Blip synthesizes a decaying sine at freq Hz as stereo float32 LE PCM.
func Blip(sampleRate int, freq, seconds float64) []byte {
	n := int(float64(sampleRate) * seconds)
	if n <= 0 {
		return nil
	}
	buf := make([]byte, n*ChannelCount*4)
	for i := range n {
		t := float64(i) / float64(sampleRate)
		env := math.Exp(-t * 40)
		putStereoF32(buf, i, math.Sin(2*math.Pi*freq*t)*env)
	}
	return buf
}

// putStereoF32 writes a [-1,1] sample as float32 LE to both stereo channels at frame i.
func putStereoF32(buf []byte, i int, sample float64) {
	v := math.Float32bits(float32(sample))
	for ch := range ChannelCount {
		off := i*ChannelCount*4 + ch*4
		buf[off] = byte(v)
		buf[off+1] = byte(v >> 8)
		buf[off+2] = byte(v >> 16)
		buf[off+3] = byte(v >> 24)
	}
}

// otoDevice plays through a process-wide oto context.
type otoDevice struct {
	ctx   *oto.Context
	ready chan struct{}
}

var (
	otoOnce sync.Once
	otoDev  *otoDevice
	otoErr  error
	otoRate int
)

// OpenOto opens the system audio output. oto allows one context per process, so
// later calls reuse it and fail if they ask for a different sample rate.
func OpenOto(sampleRate int) (Device, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(sampleRate, ChannelCount, oto.FormatFloat32LE)
		if err != nil {
			otoErr = err
			return
		}
		otoDev = &otoDevice{ctx: ctx, ready: ready}
		otoRate = sampleRate
	})
	if otoErr != nil {
		return nil, otoErr
	}
	if otoRate != sampleRate {
		return nil, fmt.Errorf("audio: output already open at %d Hz", otoRate)
	}
	return otoDev, nil
}

func (d *otoDevice) Play(pcm []byte, volume float64) {
	select {
	case <-d.ready:
	default:
		return
	}
	player := d.ctx.NewPlayer(bytes.NewReader(pcm))
	player.SetVolume(volume)
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	player.Close()
}
