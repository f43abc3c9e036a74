package client

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS documents (
	credential TEXT PRIMARY KEY,
	document BLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	name TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const credentialSetting = "credential"

// ErrNoCachedDocument is returned when the cache has nothing for a credential.
var ErrNoCachedDocument = errors.New("client: no cached document")

// LocalCache is the device-local mirror: the last committed document per
// credential plus the remembered credential, in a SQLite file. It is the
// durable source of truth for this device while the remote store is
// unreachable.
type LocalCache struct {
	db *sql.DB
}

func OpenLocalCache(path string) (*LocalCache, error) {
	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s", path))
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping local cache: %w", err)
	}

	if _, err := db.Exec(cacheSchema); err != nil {
		return nil, fmt.Errorf("failed to execute cache schema: %w", err)
	}

	return &LocalCache{db: db}, nil
}

func (c *LocalCache) Close() error {
	return c.db.Close()
}

// PutDocument stores the serialized document for a credential, replacing any
// prior value.
func (c *LocalCache) PutDocument(credential string, payload []byte) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO documents (credential, document, updated_at) VALUES (?, ?, ?)`,
		credential, payload, time.Now().UTC(),
	)
	return err
}

// GetDocument returns the last document committed for a credential.
func (c *LocalCache) GetDocument(credential string) ([]byte, error) {
	var payload []byte
	err := c.db.QueryRow(
		`SELECT document FROM documents WHERE credential = ?`,
		credential,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, ErrNoCachedDocument
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// DeleteDocument drops the cached document for a credential.
func (c *LocalCache) DeleteDocument(credential string) error {
	_, err := c.db.Exec(`DELETE FROM documents WHERE credential = ?`, credential)
	return err
}

// RememberCredential stores the credential so the next start of this device
// can reuse it without prompting.
func (c *LocalCache) RememberCredential(credential string) error {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO settings (name, value) VALUES (?, ?)`,
		credentialSetting, credential,
	)
	return err
}

// RememberedCredential returns the stored credential, or "" if none is saved.
func (c *LocalCache) RememberedCredential() (string, error) {
	var credential string
	err := c.db.QueryRow(
		`SELECT value FROM settings WHERE name = ?`,
		credentialSetting,
	).Scan(&credential)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return credential, nil
}

// ForgetCredential removes the remembered credential.
func (c *LocalCache) ForgetCredential() error {
	_, err := c.db.Exec(`DELETE FROM settings WHERE name = ?`, credentialSetting)
	return err
}
