package model

import (
	"time"

	"github.com/google/uuid"
)

// Share is a revocable, single-use capability granting anonymous download of
// one file. The UID functions as a bearer credential; it must be
// cryptographically random and is the only lookup key exposed publicly.
//
// A Share is immutable once created. It is destroyed on explicit revoke, on
// deletion of the file it references, or on a successfully completed download.
type Share struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	UID       uuid.UUID `json:"uid"`
	CreatedAt time.Time `json:"created_at"`
}

// DownloadPath returns the public download path for the share.
func (s *Share) DownloadPath() string {
	return "/download/" + s.UID.String()
}
