package prompts

type Prompt struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	CreatedBy      string `json:"created_by"`
	CreatedAt      int64  `json:"created_at"`
	UpdatedAt      int64  `json:"updated_at"`
}

// Variant is one concrete rendering of a prompt, e.g. per model or per
// experiment arm.
type Variant struct {
	ID        string `json:"id"`
	PromptID  string `json:"prompt_id"`
	Name      string `json:"name"`
	Content   string `json:"content"`
	Model     string `json:"model,omitempty"`
	IsDefault bool   `json:"is_default"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// Argument declares a named placeholder a prompt's variants may interpolate.
type Argument struct {
	ID           string `json:"id"`
	PromptID     string `json:"prompt_id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
	Required     bool   `json:"required"`
	CreatedAt    int64  `json:"created_at"`
}
