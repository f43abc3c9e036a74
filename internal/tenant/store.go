// Package tenant maps credentials to stored documents. A credential is a
// partition key: two credentials never see each other's documents, and a
// credential with no document is an empty tenant, not an error.
package tenant

import (
	"context"
	"encoding/json"

	"shared-memo-pad/internal/errors"
	"shared-memo-pad/internal/kv"
	"shared-memo-pad/internal/memo"

	lru "github.com/hashicorp/golang-lru/v2"
)

// dataKeySuffix namespaces document blobs inside the key-value store.
const dataKeySuffix = "shared_memo_data"

func dataKey(credential string) string {
	return credential + ":" + dataKeySuffix
}

// Store persists one document per credential in a key-value backend, with an
// LRU cache of serialized blobs in front of reads. Caching bytes rather than
// structs keeps cached entries immutable.
type Store struct {
	kv    kv.Store
	cache *lru.Cache[string, []byte]
}

func NewStore(backend kv.Store, cacheSize int) (*Store, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Store{kv: backend, cache: cache}, nil
}

// Save overwrites the credential's document unconditionally. Last write wins;
// there is no versioning or compare-and-swap.
func (s *Store) Save(ctx context.Context, credential string, doc *memo.Document) error {
	blob, err := json.Marshal(doc)
	if err != nil {
		return errors.Internal(err)
	}

	if err := s.kv.Put(ctx, dataKey(credential), blob); err != nil {
		return errors.Storage("Failed to save document", err)
	}

	s.cache.Add(dataKey(credential), blob)
	return nil
}

// Load returns the credential's document. An absent document yields the
// canonical empty document; a blob that fails to parse is a storage error,
// never silently treated as empty.
func (s *Store) Load(ctx context.Context, credential string) (*memo.Document, error) {
	key := dataKey(credential)

	blob, ok := s.cache.Get(key)
	if !ok {
		var err error
		blob, err = s.kv.Get(ctx, key)
		if err == kv.ErrNotFound {
			return memo.DefaultDocument(), nil
		}
		if err != nil {
			return nil, errors.Storage("Failed to load document", err)
		}
		s.cache.Add(key, blob)
	}

	var doc memo.Document
	if err := json.Unmarshal(blob, &doc); err != nil {
		return nil, errors.Storage("Stored document is corrupt", err)
	}

	doc.Normalize()
	return &doc, nil
}

// Delete removes the credential's document. Deleting a credential that never
// stored anything is not an error.
func (s *Store) Delete(ctx context.Context, credential string) error {
	if err := s.kv.Delete(ctx, dataKey(credential)); err != nil {
		return errors.Storage("Failed to delete document", err)
	}
	s.cache.Remove(dataKey(credential))
	return nil
}
