// Package client implements the capture/playback controller driven by the
// browser (or any frame source): a state machine over voice-activity
// probabilities that decides when a speech segment is complete, when a
// submission is in flight and when playback owns the audio device.
package client

import (
	"sync"
	"time"
)

// State of the capture/playback controller.
type State int

const (
	StateIdle State = iota
	StateListening
	StateSpeechDetected
	StateSubmitting
	StateAwaitingResponse
	StatePlaying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateSpeechDetected:
		return "speechDetected"
	case StateSubmitting:
		return "submitting"
	case StateAwaitingResponse:
		return "awaitingResponse"
	case StatePlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Event reported by Process for one detector frame.
type Event int

const (
	EventNone Event = iota
	// EventSpeechStart fires once the positive-speech probability has been
	// sustained for the configured minimum frame count.
	EventSpeechStart
	// EventSpeechEnd fires when detected speech falls silent; the captured
	// segment is ready for submission.
	EventSpeechEnd
)

// Playback is a playing audio handle the controller can cancel.
type Playback interface {
	Pause()
}

// Config tunes the voice-activity gate.
type Config struct {
	// PositiveSpeechThreshold is the minimum per-frame speech probability.
	PositiveSpeechThreshold float64
	// MinSpeechFrames is how many consecutive frames must cross the
	// threshold before a segment counts as speech.
	MinSpeechFrames int
}

// DefaultConfig matches the deployed detector tuning.
func DefaultConfig() Config {
	return Config{
		PositiveSpeechThreshold: 0.6,
		MinSpeechFrames:         4,
	}
}

// Message is one local history entry. Latency is set on assistant
// messages only and holds the observed round-trip of the exchange.
type Message struct {
	Role    string
	Content string
	Latency time.Duration
}

// Controller is the capture/playback state machine. Playback and capture
// are mutually exclusive by state: detection frames are ignored while a
// submission is in flight, and starting a new submission always cancels
// any playing audio first.
type Controller struct {
	mu sync.Mutex

	cfg         Config
	state       State
	streak      int
	segment     []byte
	playing     Playback
	history     []Message
	submittedAt time.Time
}

// NewController creates a controller in the idle state. Zero config
// fields fall back to the defaults.
func NewController(cfg Config) *Controller {
	defaults := DefaultConfig()
	if cfg.PositiveSpeechThreshold == 0 {
		cfg.PositiveSpeechThreshold = defaults.PositiveSpeechThreshold
	}
	if cfg.MinSpeechFrames == 0 {
		cfg.MinSpeechFrames = defaults.MinSpeechFrames
	}
	return &Controller{cfg: cfg, state: StateIdle}
}

// State returns the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// History returns a copy of the local conversation history.
func (c *Controller) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	history := make([]Message, len(c.history))
	copy(history, c.history)
	return history
}

// Start moves the controller from idle to listening.
func (c *Controller) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == StateIdle {
		c.state = StateListening
	}
}

// Process feeds one detector frame: the speech probability for the frame
// and its audio bytes. Frames are only accumulated while listening or
// inside a detected segment; all other states ignore them.
func (c *Controller) Process(probability float64, frame []byte) Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case StateListening:
		if probability < c.cfg.PositiveSpeechThreshold {
			c.streak = 0
			c.segment = nil
			return EventNone
		}
		c.streak++
		c.segment = append(c.segment, frame...)
		if c.streak < c.cfg.MinSpeechFrames {
			return EventNone
		}
		c.state = StateSpeechDetected
		// Speaking over playback interrupts it.
		c.cancelPlaybackLocked()
		return EventSpeechStart

	case StateSpeechDetected:
		if probability >= c.cfg.PositiveSpeechThreshold {
			c.segment = append(c.segment, frame...)
			return EventNone
		}
		c.state = StateSubmitting
		return EventSpeechEnd

	default:
		return EventNone
	}
}

// Segment returns the captured audio after an EventSpeechEnd.
func (c *Controller) Segment() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.segment
}

// BeginSubmission marks the request as sent. Any in-flight playback is
// cancelled immediately, whatever state the controller is in; a typed
// submission can arrive while listening or even playing.
func (c *Controller) BeginSubmission() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPlaybackLocked()
	c.state = StateAwaitingResponse
	c.submittedAt = time.Now()
}

// CompleteExchange records the outcome of a submission. On success both
// sides of the exchange are appended to the history, the assistant turn
// carrying the observed round-trip latency, and playback takes over. On
// failure the history is left unchanged and capture resumes.
func (c *Controller) CompleteExchange(transcript, reply string, playback Playback) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.streak = 0
	c.segment = nil

	if transcript == "" || reply == "" {
		c.state = StateListening
		return
	}

	latency := time.Since(c.submittedAt)
	c.history = append(c.history,
		Message{Role: "user", Content: transcript},
		Message{Role: "assistant", Content: reply, Latency: latency},
	)

	if playback != nil {
		c.playing = playback
		c.state = StatePlaying
		return
	}
	c.state = StateListening
}

// FailExchange records a failed submission: no history change, capture
// resumes.
func (c *Controller) FailExchange() {
	c.CompleteExchange("", "", nil)
}

// PlaybackFinished returns the controller to listening once the reply
// audio has run out.
func (c *Controller) PlaybackFinished() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = nil
	if c.state == StatePlaying {
		c.state = StateListening
	}
}

// Interrupt cancels in-flight playback immediately (the Escape key) and
// resumes listening.
func (c *Controller) Interrupt() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelPlaybackLocked()
	if c.state == StatePlaying {
		c.state = StateListening
	}
}

// cancelPlaybackLocked pauses and discards the playing handle.
func (c *Controller) cancelPlaybackLocked() {
	if c.playing != nil {
		c.playing.Pause()
		c.playing = nil
	}
}
