// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Download surface
	IncDownloadServed()
	IncDownloadMissed()
	ObserveDownloadDuration(duration time.Duration)

	// Admin surface
	IncShareIssued()
	IncShareRevoked()
	IncFileUploaded()
	IncFileDeleted()
	IncLoginSucceeded()
	IncLoginRejected()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
