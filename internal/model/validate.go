package model

import "github.com/startificial/requireflow/internal/errors"

// Validate checks the fields a customer must carry before being stored.
func (c Customer) Validate() error {
	fields := map[string][]string{}
	if c.Name == "" {
		fields["name"] = append(fields["name"], "must not be empty")
	}
	if len(fields) > 0 {
		return errors.NewValidation("Invalid customer", fields)
	}
	return nil
}

func (p Project) Validate() error {
	fields := map[string][]string{}
	if p.Name == "" {
		fields["name"] = append(fields["name"], "must not be empty")
	}
	if p.CustomerID == "" {
		fields["customerId"] = append(fields["customerId"], "must reference a customer")
	}
	if len(fields) > 0 {
		return errors.NewValidation("Invalid project", fields)
	}
	return nil
}

func (r Requirement) Validate() error {
	fields := map[string][]string{}
	if r.Title == "" {
		fields["title"] = append(fields["title"], "must not be empty")
	}
	if r.ProjectID == "" {
		fields["projectId"] = append(fields["projectId"], "must reference a project")
	}
	if !r.Category.IsValid() {
		fields["category"] = append(fields["category"], "must be one of: functional, non-functional, security, performance")
	}
	if !r.Priority.IsValid() {
		fields["priority"] = append(fields["priority"], "must be one of: high, medium, low")
	}
	if len(fields) > 0 {
		return errors.NewValidation("Invalid requirement", fields)
	}
	return nil
}

func (s InputSource) Validate() error {
	fields := map[string][]string{}
	if s.Name == "" {
		fields["name"] = append(fields["name"], "must not be empty")
	}
	if s.ProjectID == "" {
		fields["projectId"] = append(fields["projectId"], "must reference a project")
	}
	if !s.Type.IsValid() {
		fields["type"] = append(fields["type"], "must be one of: document, audio, video, manual")
	}
	if len(fields) > 0 {
		return errors.NewValidation("Invalid input source", fields)
	}
	return nil
}
