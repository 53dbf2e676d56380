package sessions

import (
	"context"

	"github.com/haasonsaas/nexus/pkg/models"
)

// Store is the interface the Turn Controller and Message Store use to
// persist and restore Sessions. Exactly one Store instance exists per
// session id per process; see Locker for the mutual-exclusion guarantee
// that makes that invariant hold in practice.
type Store interface {
	// Create initializes a new, empty session file for id at workdir.
	Create(ctx context.Context, id, workdir string) (*models.Session, error)

	// Load reads and fully reconstructs a Session from its on-disk log,
	// repairing any truncated trailing record (see transcript_repair.go).
	Load(ctx context.Context, id string) (*models.Session, error)

	// AppendMessage durably appends a finalized Message to id's session
	// log. Must only be called while id's write lock is held.
	AppendMessage(ctx context.Context, id string, msg *models.Message) error

	// AppendUsage durably appends a Usage record to id's session log.
	AppendUsage(ctx context.Context, id string, usage models.Usage) error

	// UpdateMetadata persists updated session metadata (lastActiveAt,
	// latestTotalTokens) without touching the message log.
	UpdateMetadata(ctx context.Context, id string, meta models.SessionMetadata) error

	// List enumerates known session ids under the store's root.
	List(ctx context.Context) ([]string, error)

	// Delete removes a session's on-disk log entirely.
	Delete(ctx context.Context, id string) error
}
