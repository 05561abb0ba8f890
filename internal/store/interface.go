package store

import (
	"context"
	"time"

	"github.com/startificial/requireflow/internal/model"
)

// Repository defines the interface for requirement data storage.
type Repository interface {
	// Users and sessions
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	CreateSession(ctx context.Context, session *model.Session) error
	GetSession(ctx context.Context, token string) (*model.Session, error)
	DeleteSession(ctx context.Context, token string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)

	// Customers
	CreateCustomer(ctx context.Context, customer *model.Customer) error
	GetCustomer(ctx context.Context, id string) (*model.Customer, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	UpdateCustomer(ctx context.Context, customer *model.Customer) error
	DeleteCustomer(ctx context.Context, id string) error

	// Projects
	CreateProject(ctx context.Context, project *model.Project) error
	GetProject(ctx context.Context, id string) (*model.Project, error)
	ListProjects(ctx context.Context, customerID string) ([]model.Project, error)
	UpdateProject(ctx context.Context, project *model.Project) error
	DeleteProject(ctx context.Context, id string) error

	// Input sources
	CreateInputSource(ctx context.Context, source *model.InputSource) error
	GetInputSource(ctx context.Context, id string) (*model.InputSource, error)
	ListInputSources(ctx context.Context, projectID string) ([]model.InputSource, error)

	// Requirements
	CreateRequirement(ctx context.Context, requirement *model.Requirement) error
	GetRequirement(ctx context.Context, id string) (*model.Requirement, error)
	ListRequirements(ctx context.Context, projectID string) ([]model.Requirement, error)
	UpdateRequirement(ctx context.Context, requirement *model.Requirement) error
	DeleteRequirement(ctx context.Context, id string) error

	Close() error
}
