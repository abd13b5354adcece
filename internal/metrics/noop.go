package metrics

import "time"

// NoopRecorder discards every event.
type NoopRecorder struct{}

// NewNoop returns a Recorder that does nothing.
func NewNoop() *NoopRecorder {
	return &NoopRecorder{}
}

func (NoopRecorder) IncDownloadServed()                      {}
func (NoopRecorder) IncDownloadMissed()                      {}
func (NoopRecorder) ObserveDownloadDuration(_ time.Duration) {}
func (NoopRecorder) IncShareIssued()                         {}
func (NoopRecorder) IncShareRevoked()                        {}
func (NoopRecorder) IncFileUploaded()                        {}
func (NoopRecorder) IncFileDeleted()                         {}
func (NoopRecorder) IncLoginSucceeded()                      {}
func (NoopRecorder) IncLoginRejected()                       {}
