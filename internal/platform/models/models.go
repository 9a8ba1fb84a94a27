package models

type Organization struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPublic  bool   `json:"is_public"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Profile is the locally stored projection of an identity-provider principal.
// Authentication state (passwords, sessions) lives with the provider.
type Profile struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAt   int64  `json:"created_at"`
	UpdatedAt   int64  `json:"updated_at"`
}

type Membership struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	UserID         string `json:"user_id"`
	Role           string `json:"role"`
	CreatedAt      int64  `json:"created_at"`
}

type Invitation struct {
	ID             string  `json:"id"`
	Email          string  `json:"email"`
	Token          string  `json:"-"`
	Role           string  `json:"role"`
	OrganizationID *string `json:"organization_id,omitempty"`
	InvitedBy      string  `json:"invited_by"`
	ExpiresAt      int64   `json:"expires_at"`
	UsedAt         *int64  `json:"used_at,omitempty"`
	CreatedAt      int64   `json:"created_at"`
}

// UserWithRoles is the admin listing shape: one row per user with every
// organization binding attached.
type UserWithRoles struct {
	UserID        string           `json:"user_id"`
	Email         string           `json:"email"`
	DisplayName   string           `json:"display_name"`
	Organizations []OrgRoleSummary `json:"organizations"`
}

type OrgRoleSummary struct {
	OrgID    string `json:"org_id"`
	OrgName  string `json:"org_name"`
	Role     string `json:"role"`
	IsPublic bool   `json:"is_public"`
}
