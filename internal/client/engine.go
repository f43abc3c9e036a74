package client

import (
	"context"
	"encoding/json"
	"log"
	"sync/atomic"

	"shared-memo-pad/internal/memo"
	"shared-memo-pad/internal/worker"
)

// SyncEngine keeps the in-memory document consistent with the local cache
// and the remote store. Local writes are synchronous; remote writes are
// fire-and-forget. A single worker keeps remote saves in commit order.
type SyncEngine struct {
	api          *APIClient
	cache        *LocalCache
	pool         *worker.Pool
	syncFailures atomic.Int64
}

func NewSyncEngine(api *APIClient, cache *LocalCache) *SyncEngine {
	return &SyncEngine{
		api:   api,
		cache: cache,
		pool:  worker.NewPool(1, 64),
	}
}

// Bootstrap returns a usable document for the credential, never failing
// outward: remote load first, then the local cache, then the canonical empty
// document.
func (e *SyncEngine) Bootstrap(ctx context.Context, credential string) *memo.Document {
	doc, err := e.api.Load(ctx)
	if err == nil {
		doc.Normalize()
		// freshen the local mirror; failing to is not fatal here
		if payload, err := json.Marshal(doc); err == nil {
			if err := e.cache.PutDocument(credential, payload); err != nil {
				log.Printf("Failed to mirror remote document locally: %v", err)
			}
		}
		return doc
	}
	log.Printf("Remote load failed, falling back to local cache: %v", err)

	payload, err := e.cache.GetDocument(credential)
	if err == nil {
		var cached memo.Document
		if err := json.Unmarshal(payload, &cached); err == nil {
			cached.Normalize()
			return &cached
		}
		log.Printf("Cached document is corrupt, starting empty: %v", err)
	} else if err != ErrNoCachedDocument {
		log.Printf("Local cache unavailable, starting empty: %v", err)
	}

	return memo.DefaultDocument()
}

// Commit persists the document locally, then pushes it to the remote store
// best-effort. The local write is the durability guarantee for this device;
// a remote failure is counted and logged, and the next commit is the de
// facto retry.
func (e *SyncEngine) Commit(credential string, doc *memo.Document) error {
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := e.cache.PutDocument(credential, payload); err != nil {
		return err
	}
	if err := e.cache.RememberCredential(credential); err != nil {
		log.Printf("Failed to remember credential: %v", err)
	}

	e.pool.Submit(func(ctx context.Context) error {
		if err := e.api.Save(ctx, payload); err != nil {
			e.syncFailures.Add(1)
			return err
		}
		return nil
	})

	return nil
}

// SyncFailures reports how many background remote saves have failed since
// the engine started.
func (e *SyncEngine) SyncFailures() int64 {
	return e.syncFailures.Load()
}

// Close drains pending remote saves.
func (e *SyncEngine) Close() {
	e.pool.Shutdown()
}
