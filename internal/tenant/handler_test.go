package tenant

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shared-memo-pad/internal/kv"
	"shared-memo-pad/internal/memo"
	"shared-memo-pad/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store, err := NewStore(kv.NewMemoryStore(), 16)
	require.NoError(t, err)
	handler := NewHandler(store)

	router := gin.New()
	router.Use(middleware.ErrorHandler())
	api := router.Group("/api", middleware.CredentialAuth())
	api.POST("/save", handler.Save)
	api.GET("/load", handler.Load)
	api.DELETE("/delete", handler.Delete)
	return router
}

func doRequest(router *gin.Engine, method, path, credential string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// TestLoad_MissingAuthorization tests that no document leaks without a credential
func TestLoad_MissingAuthorization(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, "GET", "/api/load", "", nil)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var response map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.NotEmpty(t, response["error"])
	assert.NotContains(t, w.Body.String(), "memos")
}

// TestSave_MalformedAuthorization tests rejection of a non-Bearer header
func TestSave_MalformedAuthorization(t *testing.T) {
	router := setupRouter(t)

	req := httptest.NewRequest("POST", "/api/save", bytes.NewReader([]byte("{}")))
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// TestSaveThenLoad tests the document exchange round trip over HTTP
func TestSaveThenLoad(t *testing.T) {
	router := setupRouter(t)

	doc := memo.DefaultDocument()
	doc.Memos = append(doc.Memos, memo.Memo{
		ID: "m1", Title: "Report", CategoryID: memo.DefaultCategoryID,
	})
	body, err := json.Marshal(doc)
	require.NoError(t, err)

	w := doRequest(router, "POST", "/api/save", "alice", body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	w = doRequest(router, "GET", "/api/load", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var loaded memo.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	require.Len(t, loaded.Memos, 1)
	assert.Equal(t, "Report", loaded.Memos[0].Title)
}

// TestLoad_FreshCredential tests the canonical empty document fallback
func TestLoad_FreshCredential(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, "GET", "/api/load", "brand-new", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var loaded memo.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Empty(t, loaded.Memos)
	require.Len(t, loaded.Categories, 1)
	assert.Equal(t, memo.DefaultCategoryID, loaded.Categories[0].ID)
}

// TestSave_InvalidPayload tests rejection of unparseable documents
func TestSave_InvalidPayload(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, "POST", "/api/save", "alice", []byte("{not json"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

// TestDelete tests document removal and the empty state afterwards
func TestDelete(t *testing.T) {
	router := setupRouter(t)

	body, err := json.Marshal(memo.DefaultDocument())
	require.NoError(t, err)
	w := doRequest(router, "POST", "/api/save", "alice", body)
	require.Equal(t, http.StatusOK, w.Code)

	w = doRequest(router, "DELETE", "/api/delete", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())

	w = doRequest(router, "GET", "/api/load", "alice", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var loaded memo.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Empty(t, loaded.Memos)
}

// TestTenantIsolationOverHTTP tests that credentials are disjoint namespaces
func TestTenantIsolationOverHTTP(t *testing.T) {
	router := setupRouter(t)

	docA := memo.DefaultDocument()
	docA.Memos = append(docA.Memos, memo.Memo{ID: "a", Title: "A's", CategoryID: memo.DefaultCategoryID})
	bodyA, _ := json.Marshal(docA)
	docB := memo.DefaultDocument()
	docB.Memos = append(docB.Memos, memo.Memo{ID: "b", Title: "B's", CategoryID: memo.DefaultCategoryID})
	bodyB, _ := json.Marshal(docB)

	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/save", "A", bodyA).Code)
	require.Equal(t, http.StatusOK, doRequest(router, "POST", "/api/save", "B", bodyB).Code)

	w := doRequest(router, "GET", "/api/load", "A", nil)
	var loaded memo.Document
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	require.Len(t, loaded.Memos, 1)
	assert.Equal(t, "a", loaded.Memos[0].ID)
}

// TestUnknownPath tests the 404 for anything outside the API surface
func TestUnknownPath(t *testing.T) {
	router := setupRouter(t)

	w := doRequest(router, "GET", "/api/unknown", "alice", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
