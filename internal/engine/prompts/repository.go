package prompts

import (
	"database/sql"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(p *Prompt) error {
	_, err := r.db.Exec(`
		INSERT INTO prompts (id, organization_id, name, description, created_by, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.OrganizationID, p.Name, p.Description, p.CreatedBy, p.CreatedAt, p.UpdatedAt)
	return err
}

func (r *Repository) GetByID(id string) (*Prompt, error) {
	p := &Prompt{}
	err := r.db.QueryRow(`
		SELECT id, organization_id, name, description, created_by, created_at, updated_at
		FROM prompts WHERE id = ?
	`, id).Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func (r *Repository) ListByOrg(orgID string) ([]*Prompt, error) {
	rows, err := r.db.Query(`
		SELECT id, organization_id, name, description, created_by, created_at, updated_at
		FROM prompts WHERE organization_id = ? ORDER BY created_at DESC
	`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Prompt
	for rows.Next() {
		p := &Prompt{}
		if err := rows.Scan(&p.ID, &p.OrganizationID, &p.Name, &p.Description, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

func (r *Repository) Update(p *Prompt) error {
	_, err := r.db.Exec(`
		UPDATE prompts SET name = ?, description = ?, updated_at = ? WHERE id = ?
	`, p.Name, p.Description, p.UpdatedAt, p.ID)
	return err
}

func (r *Repository) Delete(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM prompts WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) CreateVariant(v *Variant) error {
	_, err := r.db.Exec(`
		INSERT INTO prompt_variants (id, prompt_id, name, content, model, is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, v.ID, v.PromptID, v.Name, v.Content, v.Model, v.IsDefault, v.CreatedAt, v.UpdatedAt)
	return err
}

func (r *Repository) GetVariant(id string) (*Variant, error) {
	v := &Variant{}
	err := r.db.QueryRow(`
		SELECT id, prompt_id, name, content, model, is_default, created_at, updated_at
		FROM prompt_variants WHERE id = ?
	`, id).Scan(&v.ID, &v.PromptID, &v.Name, &v.Content, &v.Model, &v.IsDefault, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

func (r *Repository) ListVariants(promptID string) ([]*Variant, error) {
	rows, err := r.db.Query(`
		SELECT id, prompt_id, name, content, model, is_default, created_at, updated_at
		FROM prompt_variants WHERE prompt_id = ? ORDER BY created_at ASC
	`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Variant
	for rows.Next() {
		v := &Variant{}
		if err := rows.Scan(&v.ID, &v.PromptID, &v.Name, &v.Content, &v.Model, &v.IsDefault, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, rows.Err()
}

func (r *Repository) UpdateVariant(v *Variant) error {
	_, err := r.db.Exec(`
		UPDATE prompt_variants SET name = ?, content = ?, model = ?, is_default = ?, updated_at = ?
		WHERE id = ?
	`, v.Name, v.Content, v.Model, v.IsDefault, v.UpdatedAt, v.ID)
	return err
}

func (r *Repository) DeleteVariant(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM prompt_variants WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) CreateArgument(a *Argument) error {
	_, err := r.db.Exec(`
		INSERT INTO prompt_arguments (id, prompt_id, name, description, default_value, required, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.PromptID, a.Name, a.Description, a.DefaultValue, a.Required, a.CreatedAt)
	return err
}

func (r *Repository) ListArguments(promptID string) ([]*Argument, error) {
	rows, err := r.db.Query(`
		SELECT id, prompt_id, name, description, default_value, required, created_at
		FROM prompt_arguments WHERE prompt_id = ? ORDER BY name ASC
	`, promptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*Argument
	for rows.Next() {
		a := &Argument{}
		if err := rows.Scan(&a.ID, &a.PromptID, &a.Name, &a.Description, &a.DefaultValue, &a.Required, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *Repository) DeleteArgument(id string) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM prompt_arguments WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
