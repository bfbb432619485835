// Package engine persists array schema documents to object storage and
// tracks registrations in the catalog. It implements the storage side of
// the schema package's Engine interface.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tessera-db/tessera/internal/catalog"
	"github.com/tessera-db/tessera/internal/codec"
	terrors "github.com/tessera-db/tessera/internal/errors"
	"github.com/tessera-db/tessera/internal/storage"
)

// SchemaObjectName is the object written under an array URI holding the
// array's schema envelope.
const SchemaObjectName = "__schema.tsr"

// Engine writes and reads schema envelopes through an ObjectStore and
// records every created array in the catalog.
type Engine struct {
	store   storage.ObjectStore
	catalog catalog.Catalog
	codec   codec.Codec
}

// New creates an engine over the given store and catalog. codecName selects
// the compression applied to schema documents; empty means the default.
func New(store storage.ObjectStore, cat catalog.Catalog, codecName string) (*Engine, error) {
	c, err := codec.ByName(codecName)
	if err != nil {
		return nil, err
	}
	return &Engine{store: store, catalog: cat, codec: c}, nil
}

// SchemaObjectPath returns the object path of the schema document for an
// array URI.
func SchemaObjectPath(uri string) string {
	return uri + "/" + SchemaObjectName
}

// CreateArray persists doc as the schema of a new array at uri. The array
// must not already exist.
func (e *Engine) CreateArray(ctx context.Context, uri string, doc []byte) error {
	exists, err := e.catalog.Exists(ctx, uri)
	if err != nil {
		return err
	}
	if exists {
		return terrors.NewCatalogError(terrors.CodeArrayExists,
			fmt.Sprintf("array already exists at %s", uri), nil)
	}

	envelope, sum, err := sealEnvelope(e.codec, doc)
	if err != nil {
		return err
	}

	objectPath := SchemaObjectPath(uri)
	if err := e.store.PutIfAbsent(ctx, objectPath, envelope); err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return terrors.NewCatalogError(terrors.CodeArrayExists,
				fmt.Sprintf("array already exists at %s", uri), err)
		}
		return terrors.NewStorageError(terrors.CodeUploadFailed,
			fmt.Sprintf("failed to write schema object %s", objectPath), err)
	}

	rec := &catalog.ArrayRecord{
		ArrayID:    uuid.NewString(),
		URI:        uri,
		ObjectPath: objectPath,
		CodecID:    uint8(e.codec.ID()),
		Checksum:   sum,
		SizeBytes:  int64(len(envelope)),
		CreatedAt:  time.Now(),
	}
	if err := e.catalog.Register(ctx, rec); err != nil {
		// Roll back the orphaned object so a later create can succeed.
		_ = e.store.Delete(ctx, objectPath)
		return err
	}
	return nil
}

// LoadArray reads back the schema document of the array at uri.
func (e *Engine) LoadArray(ctx context.Context, uri string) ([]byte, error) {
	rec, err := e.catalog.Get(ctx, uri)
	if err != nil {
		return nil, err
	}

	envelope, err := e.store.Get(ctx, rec.ObjectPath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, terrors.NewStorageError(terrors.CodeObjectNotFound,
				fmt.Sprintf("schema object %s missing for registered array", rec.ObjectPath), err)
		}
		return nil, terrors.NewStorageError(terrors.CodeDownloadFailed,
			fmt.Sprintf("failed to read schema object %s", rec.ObjectPath), err)
	}

	return openEnvelope(envelope)
}
