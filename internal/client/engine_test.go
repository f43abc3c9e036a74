package client

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"shared-memo-pad/internal/kv"
	"shared-memo-pad/internal/memo"
	"shared-memo-pad/internal/middleware"
	"shared-memo-pad/internal/tenant"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startTestServer runs the real document-exchange stack over a memory
// backend and returns its URL plus the tenant store for direct inspection.
func startTestServer(t *testing.T) (string, *tenant.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := tenant.NewStore(kv.NewMemoryStore(), 16)
	require.NoError(t, err)
	handler := tenant.NewHandler(store)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	api := router.Group("/api", middleware.CredentialAuth())
	api.POST("/save", handler.Save)
	api.GET("/load", handler.Load)
	api.DELETE("/delete", handler.Delete)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return server.URL, store
}

func newTestEngine(t *testing.T, serverURL, credential string) (*SyncEngine, *LocalCache) {
	t.Helper()
	cache, err := OpenLocalCache(filepath.Join(t.TempDir(), "memo.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	engine := NewSyncEngine(NewAPIClient(serverURL, credential), cache)
	return engine, cache
}

func TestBootstrap_FreshCredentialReturnsDefaultDocument(t *testing.T) {
	serverURL, _ := startTestServer(t)
	engine, _ := newTestEngine(t, serverURL, "alice")
	defer engine.Close()

	doc := engine.Bootstrap(context.Background(), "alice")

	assert.Empty(t, doc.Memos)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, memo.DefaultCategoryID, doc.Categories[0].ID)
}

func TestBootstrap_LoadsRemoteDocument(t *testing.T) {
	serverURL, store := startTestServer(t)

	remote := memo.DefaultDocument()
	remote.Memos = append(remote.Memos, memo.Memo{
		ID: "m1", Title: "From another device", CategoryID: memo.DefaultCategoryID,
	})
	require.NoError(t, store.Save(context.Background(), "alice", remote))

	engine, _ := newTestEngine(t, serverURL, "alice")
	defer engine.Close()

	doc := engine.Bootstrap(context.Background(), "alice")
	require.Len(t, doc.Memos, 1)
	assert.Equal(t, "From another device", doc.Memos[0].Title)
}

func TestCommit_ReachesRemoteStore(t *testing.T) {
	serverURL, store := startTestServer(t)
	engine, _ := newTestEngine(t, serverURL, "alice")

	model := memo.NewModel(engine.Bootstrap(context.Background(), "alice"))
	_, err := model.CreateMemo(memo.CreateMemoParams{Title: "Synced"})
	require.NoError(t, err)
	require.NoError(t, engine.Commit("alice", model.Document()))

	// Close drains the background save
	engine.Close()

	remote, err := store.Load(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, remote.Memos, 1)
	assert.Equal(t, "Synced", remote.Memos[0].Title)
	assert.Zero(t, engine.SyncFailures())
}

func TestCommit_RemoteFailureIsSwallowedButDurableLocally(t *testing.T) {
	// no server listening here
	engine, cache := newTestEngine(t, "http://127.0.0.1:1", "alice")

	model := memo.NewModel(nil)
	_, err := model.CreateMemo(memo.CreateMemoParams{Title: "Offline edit"})
	require.NoError(t, err)

	require.NoError(t, engine.Commit("alice", model.Document()))
	engine.Close()

	assert.Equal(t, int64(1), engine.SyncFailures())
	payload, err := cache.GetDocument("alice")
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Offline edit")
}

func TestBootstrap_FallsBackToLocalCacheWhenRemoteIsDown(t *testing.T) {
	engine, _ := newTestEngine(t, "http://127.0.0.1:1", "alice")
	defer engine.Close()

	model := memo.NewModel(nil)
	_, err := model.CreateMemo(memo.CreateMemoParams{Title: "Cached edit"})
	require.NoError(t, err)
	require.NoError(t, engine.Commit("alice", model.Document()))

	doc := engine.Bootstrap(context.Background(), "alice")
	require.Len(t, doc.Memos, 1)
	assert.Equal(t, "Cached edit", doc.Memos[0].Title)
}

func TestBootstrap_NeitherRemoteNorCacheStillUsable(t *testing.T) {
	engine, _ := newTestEngine(t, "http://127.0.0.1:1", "alice")
	defer engine.Close()

	doc := engine.Bootstrap(context.Background(), "alice")

	require.NotNil(t, doc)
	assert.Empty(t, doc.Memos)
	require.Len(t, doc.Categories, 1)
	assert.Equal(t, memo.DefaultCategoryID, doc.Categories[0].ID)
}

func TestCommit_RemembersCredential(t *testing.T) {
	serverURL, _ := startTestServer(t)
	engine, cache := newTestEngine(t, serverURL, "alice")
	defer engine.Close()

	require.NoError(t, engine.Commit("alice", memo.DefaultDocument()))

	remembered, err := cache.RememberedCredential()
	require.NoError(t, err)
	assert.Equal(t, "alice", remembered)
}

func TestBootstrap_MirrorsRemoteDocumentLocally(t *testing.T) {
	serverURL, store := startTestServer(t)

	remote := memo.DefaultDocument()
	remote.Memos = append(remote.Memos, memo.Memo{
		ID: "m1", Title: "Mirror me", CategoryID: memo.DefaultCategoryID,
	})
	require.NoError(t, store.Save(context.Background(), "alice", remote))

	engine, cache := newTestEngine(t, serverURL, "alice")
	defer engine.Close()
	engine.Bootstrap(context.Background(), "alice")

	payload, err := cache.GetDocument("alice")
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Mirror me")
}
