package schema

import "context"

// Engine is the storage engine boundary for schema persistence. The
// schema layer hands the engine its marshaled field set and gets the
// same bytes back on load; the envelope the engine wraps around them
// (placement, compression, integrity checks) is engine-owned and opaque
// here. Engine errors are surfaced verbatim as the EngineError kind and
// never reinterpreted.
type Engine interface {
	// CreateArray persists a new array definition at uri. It fails if an
	// array is already registered there.
	CreateArray(ctx context.Context, uri string, doc []byte) error

	// LoadArray reads the persisted definition at uri and returns the
	// exact document bytes that were given to CreateArray.
	LoadArray(ctx context.Context, uri string) ([]byte, error)
}
