package repositories

import (
	"database/sql"

	"github.com/mattn/go-sqlite3"

	"promptdeck/internal/platform/models"
)

// IsUniqueViolation reports whether err is a uniqueness-constraint failure,
// e.g. a duplicate (organization_id, user_id) membership insert.
func IsUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) BeginTx() (*sql.Tx, error) {
	return r.db.Begin()
}

func (r *OrganizationRepository) Create(org *models.Organization) error {
	_, err := r.db.Exec(`
		INSERT INTO organizations (id, name, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.IsPublic, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) CreateTx(tx *sql.Tx, org *models.Organization) error {
	_, err := tx.Exec(`
		INSERT INTO organizations (id, name, is_public, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.IsPublic, org.CreatedAt, org.UpdatedAt)
	return err
}

func (r *OrganizationRepository) GetByID(id string) (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, is_public, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.IsPublic, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

// GetPublicDefault returns the canonical public landing organization: the
// oldest org flagged public. The singleton is a convention, not a constraint,
// so ordering makes the lookup deterministic when several exist.
func (r *OrganizationRepository) GetPublicDefault() (*models.Organization, error) {
	org := &models.Organization{}
	err := r.db.QueryRow(`
		SELECT id, name, is_public, created_at, updated_at
		FROM organizations WHERE is_public = 1
		ORDER BY created_at ASC, id ASC LIMIT 1
	`).Scan(&org.ID, &org.Name, &org.IsPublic, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) GetPublicDefaultTx(tx *sql.Tx) (*models.Organization, error) {
	org := &models.Organization{}
	err := tx.QueryRow(`
		SELECT id, name, is_public, created_at, updated_at
		FROM organizations WHERE is_public = 1
		ORDER BY created_at ASC, id ASC LIMIT 1
	`).Scan(&org.ID, &org.Name, &org.IsPublic, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return org, nil
}

func (r *OrganizationRepository) Update(org *models.Organization) error {
	_, err := r.db.Exec(`
		UPDATE organizations SET name = ?, is_public = ?, updated_at = ?
		WHERE id = ?
	`, org.Name, org.IsPublic, org.UpdatedAt, org.ID)
	return err
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Create(profile *models.Profile) error {
	_, err := r.db.Exec(`
		INSERT INTO profiles (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, profile.ID, profile.Email, profile.DisplayName, profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *ProfileRepository) CreateTx(tx *sql.Tx, profile *models.Profile) error {
	_, err := tx.Exec(`
		INSERT INTO profiles (id, email, display_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, profile.ID, profile.Email, profile.DisplayName, profile.CreatedAt, profile.UpdatedAt)
	return err
}

func (r *ProfileRepository) GetByID(id string) (*models.Profile, error) {
	profile := &models.Profile{}
	err := r.db.QueryRow(`
		SELECT id, email, display_name, created_at, updated_at
		FROM profiles WHERE id = ?
	`, id).Scan(&profile.ID, &profile.Email, &profile.DisplayName, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return profile, nil
}

// ListWithRoles returns every profile with its organization bindings,
// ordered by profile creation then org name so output is stable.
func (r *ProfileRepository) ListWithRoles() ([]*models.UserWithRoles, error) {
	rows, err := r.db.Query(`
		SELECT p.id, p.email, p.display_name, o.id, o.name, o.is_public, m.role
		FROM profiles p
		LEFT JOIN memberships m ON m.user_id = p.id
		LEFT JOIN organizations o ON o.id = m.organization_id
		ORDER BY p.created_at ASC, p.id ASC, o.name ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.UserWithRoles
	index := make(map[string]*models.UserWithRoles)

	for rows.Next() {
		var userID, email, displayName string
		var orgID, orgName, role sql.NullString
		var isPublic sql.NullBool

		if err := rows.Scan(&userID, &email, &displayName, &orgID, &orgName, &isPublic, &role); err != nil {
			return nil, err
		}

		user, ok := index[userID]
		if !ok {
			user = &models.UserWithRoles{
				UserID:        userID,
				Email:         email,
				DisplayName:   displayName,
				Organizations: []models.OrgRoleSummary{},
			}
			index[userID] = user
			users = append(users, user)
		}

		if orgID.Valid {
			user.Organizations = append(user.Organizations, models.OrgRoleSummary{
				OrgID:    orgID.String,
				OrgName:  orgName.String,
				Role:     role.String,
				IsPublic: isPublic.Bool,
			})
		}
	}
	return users, rows.Err()
}

type MembershipRepository struct {
	db *sql.DB
}

func NewMembershipRepository(db *sql.DB) *MembershipRepository {
	return &MembershipRepository{db: db}
}

func (r *MembershipRepository) Create(m *models.Membership) error {
	_, err := r.db.Exec(`
		INSERT INTO memberships (id, organization_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.OrganizationID, m.UserID, m.Role, m.CreatedAt)
	return err
}

func (r *MembershipRepository) CreateTx(tx *sql.Tx, m *models.Membership) error {
	_, err := tx.Exec(`
		INSERT INTO memberships (id, organization_id, user_id, role, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.OrganizationID, m.UserID, m.Role, m.CreatedAt)
	return err
}

func (r *MembershipRepository) GetByUserAndOrg(userID, orgID string) (*models.Membership, error) {
	m := &models.Membership{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, user_id, role, created_at
		FROM memberships WHERE user_id = ? AND organization_id = ?
	`, userID, orgID).Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return m, nil
}

func (r *MembershipRepository) ListByOrg(orgID string) ([]*models.Membership, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, user_id, role, created_at
		FROM memberships WHERE organization_id = ? ORDER BY created_at ASC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memberships []*models.Membership
	for rows.Next() {
		m := &models.Membership{}
		if err := rows.Scan(&m.ID, &m.OrganizationID, &m.UserID, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, m)
	}
	return memberships, rows.Err()
}

// HasRoleAnywhere reports whether any membership row for the user carries the
// given role. Used for the global super-admin capability check.
func (r *MembershipRepository) HasRoleAnywhere(userID, role string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM memberships WHERE user_id = ? AND role = ?)
	`, userID, role).Scan(&exists)
	return exists, err
}

// UpdateRole returns whether a row was affected so promotions of absent
// members degrade to "no effect" instead of an error.
func (r *MembershipRepository) UpdateRole(userID, orgID, role string) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE memberships SET role = ? WHERE user_id = ? AND organization_id = ?
	`, role, userID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MembershipRepository) Delete(userID, orgID string) (bool, error) {
	res, err := r.db.Exec(`
		DELETE FROM memberships WHERE user_id = ? AND organization_id = ?
	`, userID, orgID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
