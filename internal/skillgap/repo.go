package skillgap

import "context"

// Repo persists skill-gap analyses. Reads and deletes are scoped by user id.
type Repo interface {
	// Create stores a and returns it with its sequence number set.
	Create(ctx context.Context, a Analysis) (Analysis, error)
	// LatestForRole returns the newest analysis for the resume and role key,
	// or ErrNotFound.
	LatestForRole(ctx context.Context, userID, resumeID, roleKey string) (Analysis, error)
	GetByID(ctx context.Context, userID, analysisID string) (Analysis, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error)
	Delete(ctx context.Context, userID, analysisID string) error
}
