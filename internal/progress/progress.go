package progress

import (
	"sync"
	"time"
)

// Stage represents the current stage of a run
type Stage string

const (
	StageLoading     Stage = "loading"
	StageDownloading Stage = "downloading"
	StageRipping     Stage = "ripping"
	StageComplete    Stage = "complete"
	StageError       Stage = "error"
)

// Event represents a progress event
type Event struct {
	Stage        Stage
	Progress     float64
	Message      string
	Warning      bool
	Timestamp    time.Time
	TrackDetails *TrackDetails
	Error        string
}

// TrackDetails contains information about the track being ripped
type TrackDetails struct {
	TrackNumber     int
	TotalTracks     int
	CurrentTrack    string
	ProcessedTracks int
}

// ProgressTracker fans run events out to its listeners
type ProgressTracker struct {
	mu           sync.RWMutex
	stage        Stage
	progress     float64
	message      string
	trackDetails *TrackDetails
	err          error
	listeners    []func(Event)
}

// NewProgressTracker creates a new ProgressTracker instance
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		stage:     StageLoading,
		listeners: make([]func(Event), 0),
	}
}

// AddListener adds a new progress event listener
func (pt *ProgressTracker) AddListener(listener func(Event)) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	pt.listeners = append(pt.listeners, listener)
}

// UpdateProgress updates the stage and notifies all listeners
func (pt *ProgressTracker) UpdateProgress(stage Stage, progress float64, message string) {
	pt.mu.Lock()
	pt.stage = stage
	pt.progress = progress
	pt.message = message
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     stage,
		Progress:  progress,
		Message:   message,
		Timestamp: time.Now(),
	})
}

// UpdateTrackProgress announces the track about to be ripped
func (pt *ProgressTracker) UpdateTrackProgress(trackNumber, totalTracks, processedTracks int, currentTrack string) {
	pt.mu.Lock()
	pt.stage = StageRipping
	pt.trackDetails = &TrackDetails{
		TrackNumber:     trackNumber,
		TotalTracks:     totalTracks,
		CurrentTrack:    currentTrack,
		ProcessedTracks: processedTracks,
	}
	event := Event{
		Stage:        pt.stage,
		Progress:     pt.progress,
		Message:      pt.message,
		Timestamp:    time.Now(),
		TrackDetails: pt.trackDetails,
	}
	pt.mu.Unlock()

	pt.notifyListeners(event)
}

// Warn reports a non-fatal condition without changing the stage
func (pt *ProgressTracker) Warn(message string) {
	pt.mu.RLock()
	event := Event{
		Stage:     pt.stage,
		Progress:  pt.progress,
		Message:   message,
		Warning:   true,
		Timestamp: time.Now(),
	}
	pt.mu.RUnlock()

	pt.notifyListeners(event)
}

// SetError sets an error state and notifies all listeners
func (pt *ProgressTracker) SetError(err error) {
	pt.mu.Lock()
	pt.stage = StageError
	pt.err = err
	progress := pt.progress
	pt.mu.Unlock()

	pt.notifyListeners(Event{
		Stage:     StageError,
		Progress:  progress,
		Message:   err.Error(),
		Timestamp: time.Now(),
		Error:     err.Error(),
	})
}

// notifyListeners sends an event to all registered listeners
func (pt *ProgressTracker) notifyListeners(event Event) {
	pt.mu.RLock()
	listeners := make([]func(Event), len(pt.listeners))
	copy(listeners, pt.listeners)
	pt.mu.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

// GetCurrentState returns the current progress state
func (pt *ProgressTracker) GetCurrentState() Event {
	pt.mu.RLock()
	defer pt.mu.RUnlock()

	state := Event{
		Stage:        pt.stage,
		Progress:     pt.progress,
		Message:      pt.message,
		Timestamp:    time.Now(),
		TrackDetails: pt.trackDetails,
	}
	if pt.err != nil {
		state.Error = pt.err.Error()
	}
	return state
}
