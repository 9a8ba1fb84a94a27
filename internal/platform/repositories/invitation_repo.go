package repositories

import (
	"database/sql"

	"promptdeck/internal/platform/models"
)

type InvitationRepository struct {
	db *sql.DB
}

func NewInvitationRepository(db *sql.DB) *InvitationRepository {
	return &InvitationRepository{db: db}
}

func (r *InvitationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

const invitationColumns = `id, email, token, role, organization_id, invited_by, expires_at, used_at, created_at`

func scanInvitation(row interface {
	Scan(dest ...interface{}) error
}) (*models.Invitation, error) {
	inv := &models.Invitation{}
	err := row.Scan(&inv.ID, &inv.Email, &inv.Token, &inv.Role, &inv.OrganizationID,
		&inv.InvitedBy, &inv.ExpiresAt, &inv.UsedAt, &inv.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) Create(inv *models.Invitation) error {
	_, err := r.db.Exec(`
		INSERT INTO invitations (id, email, token, role, organization_id, invited_by, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.Email, inv.Token, inv.Role, inv.OrganizationID, inv.InvitedBy, inv.ExpiresAt, inv.UsedAt, inv.CreatedAt)
	return err
}

func (r *InvitationRepository) GetByID(id string) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRow(`
		SELECT `+invitationColumns+` FROM invitations WHERE id = ?
	`, id))
}

func (r *InvitationRepository) GetByToken(token string) (*models.Invitation, error) {
	return scanInvitation(r.db.QueryRow(`
		SELECT `+invitationColumns+` FROM invitations WHERE token = ?
	`, token))
}

// ListPending returns unconsumed, unexpired invitations newest-first.
func (r *InvitationRepository) ListPending(now int64) ([]*models.Invitation, error) {
	rows, err := r.db.Query(`
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE used_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC, id DESC
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invitations []*models.Invitation
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, inv)
	}
	return invitations, rows.Err()
}

// FindLatestPendingByEmailTx picks the redemption candidate inside the signup
// transaction: the newest pending invitation for the address. When a
// super-admin re-issues before the old offer expires, the most recent wins.
func (r *InvitationRepository) FindLatestPendingByEmailTx(tx *sql.Tx, email string, now int64) (*models.Invitation, error) {
	return scanInvitation(tx.QueryRow(`
		SELECT `+invitationColumns+`
		FROM invitations
		WHERE email = ? AND used_at IS NULL AND expires_at > ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, email, now))
}

// ConsumeTx marks the invitation used. The WHERE clause re-checks the pending
// state so concurrent redemptions resolve to exactly one winner; the loser
// sees zero rows affected.
func (r *InvitationRepository) ConsumeTx(tx *sql.Tx, id string, usedAt int64) (bool, error) {
	res, err := tx.Exec(`
		UPDATE invitations SET used_at = ?
		WHERE id = ? AND used_at IS NULL AND expires_at > ?
	`, usedAt, id, usedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Expire back-dates expires_at, a soft revoke that keeps the row auditable.
// Only pending invitations are touched; terminal ones report no effect.
func (r *InvitationRepository) Expire(id string, now int64) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE invitations SET expires_at = ?
		WHERE id = ? AND used_at IS NULL AND expires_at > ?
	`, now-1, id, now)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// UpsertByToken inserts the invitation or, when the token already exists,
// re-extends its expiry. Bootstrap uses this for idempotent seeding.
func (r *InvitationRepository) UpsertByToken(inv *models.Invitation) error {
	_, err := r.db.Exec(`
		INSERT INTO invitations (id, email, token, role, organization_id, invited_by, expires_at, used_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(token) DO UPDATE SET expires_at = excluded.expires_at
	`, inv.ID, inv.Email, inv.Token, inv.Role, inv.OrganizationID, inv.InvitedBy, inv.ExpiresAt, inv.UsedAt, inv.CreatedAt)
	return err
}
