package entities

import (
	"strings"

	"mutualexchange/src/domain"
)

type Person struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Locale        string `json:"locale"`
	NotifyByEmail bool   `json:"notify_by_email"`
}

func (p *Person) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if !strings.Contains(p.Email, "@") {
		return domain.NewValidationError("email", "a valid email is required")
	}
	return nil
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
