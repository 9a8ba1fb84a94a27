package prompts

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"promptdeck/internal/engine/authz"
	"promptdeck/internal/pkg/errors"
)

// Service enforces the prompt policy predicates before every operation.
// Variant and argument checks key on the parent prompt's organization.
type Service struct {
	repo   *Repository
	policy *authz.Policy
}

func NewService(repo *Repository, policy *authz.Policy) *Service {
	return &Service{repo: repo, policy: policy}
}

func (s *Service) Create(callerID, orgID, name, description string) (*Prompt, error) {
	allowed, err := s.policy.CanCreatePrompt(callerID, orgID, callerID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot create prompts in this organization", errors.ErrPermissionDenied)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: prompt name is required", errors.ErrInvalidInput)
	}

	now := time.Now().Unix()
	p := &Prompt{
		ID:             "prm_" + uuid.NewString(),
		OrganizationID: orgID,
		Name:           name,
		Description:    description,
		CreatedBy:      callerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.repo.Create(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(callerID, promptID string) (*Prompt, error) {
	p, err := s.repo.GetByID(promptID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: prompt %s", errors.ErrNotFound, promptID)
	}
	allowed, err := s.policy.CanReadPrompt(callerID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot read prompt", errors.ErrPermissionDenied)
	}
	return p, nil
}

func (s *Service) List(callerID, orgID string) ([]*Prompt, error) {
	allowed, err := s.policy.CanReadPrompt(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot list prompts", errors.ErrPermissionDenied)
	}
	return s.repo.ListByOrg(orgID)
}

func (s *Service) Update(callerID, promptID, name, description string) (*Prompt, error) {
	p, err := s.repo.GetByID(promptID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: prompt %s", errors.ErrNotFound, promptID)
	}

	allowed, err := s.policy.CanEditPrompt(callerID, p.OrganizationID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot update prompt", errors.ErrPermissionDenied)
	}

	if name != "" {
		p.Name = name
	}
	if description != "" {
		p.Description = description
	}
	p.UpdatedAt = time.Now().Unix()

	if err := s.repo.Update(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(callerID, promptID string) (bool, error) {
	p, err := s.repo.GetByID(promptID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	allowed, err := s.policy.CanEditPrompt(callerID, p.OrganizationID)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, fmt.Errorf("%w: cannot delete prompt", errors.ErrPermissionDenied)
	}

	return s.repo.Delete(promptID)
}

// parentOrg resolves the prompt's organization for content-level checks.
func (s *Service) parentOrg(promptID string) (string, error) {
	p, err := s.repo.GetByID(promptID)
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", fmt.Errorf("%w: prompt %s", errors.ErrNotFound, promptID)
	}
	return p.OrganizationID, nil
}

func (s *Service) CreateVariant(callerID, promptID, name, content, model string, isDefault bool) (*Variant, error) {
	orgID, err := s.parentOrg(promptID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanEditPromptContent(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot modify prompt variants", errors.ErrPermissionDenied)
	}

	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: variant content is required", errors.ErrInvalidInput)
	}

	now := time.Now().Unix()
	v := &Variant{
		ID:        "var_" + uuid.NewString(),
		PromptID:  promptID,
		Name:      name,
		Content:   content,
		Model:     model,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateVariant(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) ListVariants(callerID, promptID string) ([]*Variant, error) {
	orgID, err := s.parentOrg(promptID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanReadPromptContent(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot read prompt variants", errors.ErrPermissionDenied)
	}
	return s.repo.ListVariants(promptID)
}

func (s *Service) UpdateVariant(callerID, variantID, name, content, model string, isDefault *bool) (*Variant, error) {
	v, err := s.repo.GetVariant(variantID)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, fmt.Errorf("%w: variant %s", errors.ErrNotFound, variantID)
	}

	orgID, err := s.parentOrg(v.PromptID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanEditPromptContent(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot modify prompt variants", errors.ErrPermissionDenied)
	}

	if name != "" {
		v.Name = name
	}
	if content != "" {
		v.Content = content
	}
	if model != "" {
		v.Model = model
	}
	if isDefault != nil {
		v.IsDefault = *isDefault
	}
	v.UpdatedAt = time.Now().Unix()

	if err := s.repo.UpdateVariant(v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *Service) DeleteVariant(callerID, variantID string) (bool, error) {
	v, err := s.repo.GetVariant(variantID)
	if err != nil {
		return false, err
	}
	if v == nil {
		return false, nil
	}

	orgID, err := s.parentOrg(v.PromptID)
	if err != nil {
		return false, err
	}
	allowed, err := s.policy.CanEditPromptContent(callerID, orgID)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, fmt.Errorf("%w: cannot modify prompt variants", errors.ErrPermissionDenied)
	}

	return s.repo.DeleteVariant(variantID)
}

func (s *Service) CreateArgument(callerID, promptID, name, description, defaultValue string, required bool) (*Argument, error) {
	orgID, err := s.parentOrg(promptID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanEditPromptContent(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot modify prompt arguments", errors.ErrPermissionDenied)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: argument name is required", errors.ErrInvalidInput)
	}

	a := &Argument{
		ID:           "arg_" + uuid.NewString(),
		PromptID:     promptID,
		Name:         name,
		Description:  description,
		DefaultValue: defaultValue,
		Required:     required,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.repo.CreateArgument(a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *Service) ListArguments(callerID, promptID string) ([]*Argument, error) {
	orgID, err := s.parentOrg(promptID)
	if err != nil {
		return nil, err
	}
	allowed, err := s.policy.CanReadPromptContent(callerID, orgID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, fmt.Errorf("%w: cannot read prompt arguments", errors.ErrPermissionDenied)
	}
	return s.repo.ListArguments(promptID)
}

func (s *Service) DeleteArgument(callerID, promptID, argumentID string) (bool, error) {
	orgID, err := s.parentOrg(promptID)
	if err != nil {
		return false, err
	}
	allowed, err := s.policy.CanEditPromptContent(callerID, orgID)
	if err != nil {
		return false, err
	}
	if !allowed {
		return false, fmt.Errorf("%w: cannot modify prompt arguments", errors.ErrPermissionDenied)
	}
	return s.repo.DeleteArgument(argumentID)
}
