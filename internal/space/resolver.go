package space

import "context"

// Resolver yields the canonical snapshot of a space for a reservation.
// The local implementation reads the shared database; the remote one
// calls the spaces service over HTTP. credential is the caller's raw
// Authorization header, forwarded by remote implementations and ignored
// by local ones.
type Resolver interface {
	Resolve(ctx context.Context, id int64, credential string) (Snapshot, error)

	// ResolveDefault resolves the well-known singleton space used when a
	// reservation does not name one, creating it if absent.
	ResolveDefault(ctx context.Context, credential string) (Snapshot, error)
}
