package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	DownloadsServed         uint64
	DownloadsMissed         uint64
	DownloadDurationCount   uint64
	DownloadDurationTotalNs int64
	SharesIssued            uint64
	SharesRevoked           uint64
	FilesUploaded           uint64
	FilesDeleted            uint64
	LoginsSucceeded         uint64
	LoginsRejected          uint64
}

// InMemoryRecorder stores counters in memory. Used by tests and as the
// default recorder for a single-process deployment.
type InMemoryRecorder struct {
	downloadsServed         uint64
	downloadsMissed         uint64
	downloadDurationCount   uint64
	downloadDurationTotalNs int64
	sharesIssued            uint64
	sharesRevoked           uint64
	filesUploaded           uint64
	filesDeleted            uint64
	loginsSucceeded         uint64
	loginsRejected          uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		DownloadsServed:         atomic.LoadUint64(&m.downloadsServed),
		DownloadsMissed:         atomic.LoadUint64(&m.downloadsMissed),
		DownloadDurationCount:   atomic.LoadUint64(&m.downloadDurationCount),
		DownloadDurationTotalNs: atomic.LoadInt64(&m.downloadDurationTotalNs),
		SharesIssued:            atomic.LoadUint64(&m.sharesIssued),
		SharesRevoked:           atomic.LoadUint64(&m.sharesRevoked),
		FilesUploaded:           atomic.LoadUint64(&m.filesUploaded),
		FilesDeleted:            atomic.LoadUint64(&m.filesDeleted),
		LoginsSucceeded:         atomic.LoadUint64(&m.loginsSucceeded),
		LoginsRejected:          atomic.LoadUint64(&m.loginsRejected),
	}
}

func (m *InMemoryRecorder) IncDownloadServed() { atomic.AddUint64(&m.downloadsServed, 1) }
func (m *InMemoryRecorder) IncDownloadMissed() { atomic.AddUint64(&m.downloadsMissed, 1) }

func (m *InMemoryRecorder) ObserveDownloadDuration(duration time.Duration) {
	atomic.AddUint64(&m.downloadDurationCount, 1)
	atomic.AddInt64(&m.downloadDurationTotalNs, duration.Nanoseconds())
}

func (m *InMemoryRecorder) IncShareIssued()    { atomic.AddUint64(&m.sharesIssued, 1) }
func (m *InMemoryRecorder) IncShareRevoked()   { atomic.AddUint64(&m.sharesRevoked, 1) }
func (m *InMemoryRecorder) IncFileUploaded()   { atomic.AddUint64(&m.filesUploaded, 1) }
func (m *InMemoryRecorder) IncFileDeleted()    { atomic.AddUint64(&m.filesDeleted, 1) }
func (m *InMemoryRecorder) IncLoginSucceeded() { atomic.AddUint64(&m.loginsSucceeded, 1) }
func (m *InMemoryRecorder) IncLoginRejected()  { atomic.AddUint64(&m.loginsRejected, 1) }
