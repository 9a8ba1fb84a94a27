package repositories

import (
	"database/sql"
	"time"

	"promptdeck/internal/platform/models"
)

type APIKeyRepository struct {
	db *sql.DB
}

func NewAPIKeyRepository(db *sql.DB) *APIKeyRepository {
	return &APIKeyRepository{db: db}
}

func (r *APIKeyRepository) Create(key *models.APIKey) error {
	_, err := r.db.Exec(`
		INSERT INTO api_keys (id, user_id, name, key_hash, key_prefix, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key.ID, key.UserID, key.Name, key.KeyHash, key.KeyPrefix, key.CreatedAt)
	return err
}

func (r *APIKeyRepository) GetByID(id string) (*models.APIKey, error) {
	k := &models.APIKey{}
	err := r.db.QueryRow(`
		SELECT id, user_id, name, key_hash, key_prefix, last_used_at, created_at, revoked_at
		FROM api_keys WHERE id = ?
	`, id).Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.LastUsedAt, &k.CreatedAt, &k.RevokedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return k, nil
}

// ListByPrefix narrows the verification scan; prefixes are random enough that
// this returns at most a handful of candidates.
func (r *APIKeyRepository) ListByPrefix(prefix string) ([]*models.APIKey, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, key_hash, key_prefix, last_used_at, created_at, revoked_at
		FROM api_keys WHERE key_prefix = ? AND revoked_at IS NULL
	`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		k := &models.APIKey{}
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.LastUsedAt, &k.CreatedAt, &k.RevokedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) ListByUser(userID string) ([]*models.APIKey, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, name, key_hash, key_prefix, last_used_at, created_at, revoked_at
		FROM api_keys WHERE user_id = ? ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []*models.APIKey
	for rows.Next() {
		k := &models.APIKey{}
		if err := rows.Scan(&k.ID, &k.UserID, &k.Name, &k.KeyHash, &k.KeyPrefix, &k.LastUsedAt, &k.CreatedAt, &k.RevokedAt); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func (r *APIKeyRepository) Revoke(id string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE api_keys SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL
	`, time.Now().Unix(), id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *APIKeyRepository) UpdateLastUsed(id string) error {
	_, err := r.db.Exec(`UPDATE api_keys SET last_used_at = ? WHERE id = ?`, time.Now().Unix(), id)
	return err
}
