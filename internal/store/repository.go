// Package store persists Requireflow's domain entities in SQLite.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/model"
)

type repository struct {
	db     *sql.DB
	logger logger.Logger
}

// NewRepository opens (or creates) the SQLite database at cfg.DBPath and
// verifies its schema.
func NewRepository(cfg Config, log logger.Logger) (Repository, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure the directory exists
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, defaultDirPerm); err != nil {
			return nil, errors.NewDatabase("create database directory", err)
		}
	}

	// WAL keeps readers unblocked while the API writes
	dsn := cfg.DBPath + "?_journal=WAL&_foreign_keys=on"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.NewDatabase("open database", err)
	}

	if err := EnsureSchema(db, log); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().
		Str("path", cfg.DBPath).
		Int("schema_version", SchemaVersion).
		Msg("Store initialized")

	return &repository{db: db, logger: log}, nil
}

// Open opens the database without touching the schema. Used by the migrate
// command, which manages the schema itself.
func Open(cfg Config) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal=WAL")
	if err != nil {
		return nil, errors.NewDatabase("open database", err)
	}
	return db, nil
}

func (r *repository) Close() error {
	if _, err := r.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return errors.NewDatabase("checkpoint WAL", err)
	}
	if err := r.db.Close(); err != nil {
		return errors.NewDatabase("close database", err)
	}
	r.logger.Info().Msg("Store closed gracefully")
	return nil
}

// translate maps a driver error to a taxonomy variant. Constraint violations
// become Conflict; everything else is a Database error.
func translate(operation string, err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return errors.NewConflict("Conflicting record: " + operation)
	}
	return errors.NewDatabase(operation, err)
}

// Users

func (r *repository) CreateUser(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO users (id, email, name, password_hash, created_at)
        VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Email, user.Name, user.PasswordHash, user.CreatedAt.Unix())
	if err != nil {
		return translate("insert user", err)
	}
	return nil
}

func (r *repository) GetUser(ctx context.Context, id string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
        SELECT id, email, name, password_hash, created_at
        FROM users WHERE id = ?`, id), "User", id)
}

func (r *repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.scanUser(r.db.QueryRowContext(ctx, `
        SELECT id, email, name, password_hash, created_at
        FROM users WHERE email = ?`, email), "User", email)
}

func (r *repository) scanUser(row *sql.Row, resource string, id any) (*model.User, error) {
	var user model.User
	var createdAt int64
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound(resource, id)
	}
	if err != nil {
		return nil, errors.NewDatabase("select user", err)
	}
	user.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &user, nil
}

// Sessions

func (r *repository) CreateSession(ctx context.Context, session *model.Session) error {
	session.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO sessions (token, user_id, expires_at, created_at)
        VALUES (?, ?, ?, ?)`,
		session.Token, session.UserID, session.ExpiresAt.Unix(), session.CreatedAt.Unix())
	if err != nil {
		return translate("insert session", err)
	}
	return nil
}

func (r *repository) GetSession(ctx context.Context, token string) (*model.Session, error) {
	var session model.Session
	var expiresAt, createdAt int64
	err := r.db.QueryRowContext(ctx, `
        SELECT token, user_id, expires_at, created_at
        FROM sessions WHERE token = ?`, token).
		Scan(&session.Token, &session.UserID, &expiresAt, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Session")
	}
	if err != nil {
		return nil, errors.NewDatabase("select session", err)
	}
	session.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	session.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &session, nil
}

func (r *repository) DeleteSession(ctx context.Context, token string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = ?`, token)
	if err != nil {
		return errors.NewDatabase("delete session", err)
	}
	return nil
}

func (r *repository) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, now.Unix())
	if err != nil {
		return 0, errors.NewDatabase("delete expired sessions", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, errors.NewDatabase("count deleted sessions", err)
	}
	if deleted > 0 {
		r.logger.Debug().Int64("sessions", deleted).Msg("Expired sessions removed")
	}
	return deleted, nil
}

// Customers

func (r *repository) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	customer.CreatedAt = now
	customer.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO customers (id, name, industry, description, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		customer.ID, customer.Name, customer.Industry, customer.Description,
		customer.CreatedAt.Unix(), customer.UpdatedAt.Unix())
	if err != nil {
		return translate("insert customer", err)
	}
	return nil
}

func (r *repository) GetCustomer(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx, `
        SELECT id, name, industry, description, created_at, updated_at
        FROM customers WHERE id = ?`, id).
		Scan(&customer.ID, &customer.Name, &customer.Industry, &customer.Description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Customer", id)
	}
	if err != nil {
		return nil, errors.NewDatabase("select customer", err)
	}
	customer.CreatedAt = time.Unix(createdAt, 0).UTC()
	customer.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &customer, nil
}

func (r *repository) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, name, industry, description, created_at, updated_at
        FROM customers ORDER BY name`)
	if err != nil {
		return nil, errors.NewDatabase("list customers", err)
	}
	defer rows.Close()

	customers := []model.Customer{}
	for rows.Next() {
		var customer model.Customer
		var createdAt, updatedAt int64
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Industry,
			&customer.Description, &createdAt, &updatedAt); err != nil {
			return nil, errors.NewDatabase("scan customer", err)
		}
		customer.CreatedAt = time.Unix(createdAt, 0).UTC()
		customer.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		customers = append(customers, customer)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabase("iterate customers", err)
	}
	return customers, nil
}

func (r *repository) UpdateCustomer(ctx context.Context, customer *model.Customer) error {
	customer.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
        UPDATE customers SET name = ?, industry = ?, description = ?, updated_at = ?
        WHERE id = ?`,
		customer.Name, customer.Industry, customer.Description,
		customer.UpdatedAt.Unix(), customer.ID)
	if err != nil {
		return translate("update customer", err)
	}
	return requireRow(res, "Customer", customer.ID, "update customer")
}

func (r *repository) DeleteCustomer(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id)
	if err != nil {
		return errors.NewDatabase("delete customer", err)
	}
	return requireRow(res, "Customer", id, "delete customer")
}

// Projects

func (r *repository) CreateProject(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO projects (id, customer_id, name, description, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)`,
		project.ID, project.CustomerID, project.Name, project.Description,
		project.CreatedAt.Unix(), project.UpdatedAt.Unix())
	if err != nil {
		return translate("insert project", err)
	}
	return nil
}

func (r *repository) GetProject(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx, `
        SELECT id, customer_id, name, description, created_at, updated_at
        FROM projects WHERE id = ?`, id).
		Scan(&project.ID, &project.CustomerID, &project.Name, &project.Description, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Project", id)
	}
	if err != nil {
		return nil, errors.NewDatabase("select project", err)
	}
	project.CreatedAt = time.Unix(createdAt, 0).UTC()
	project.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &project, nil
}

func (r *repository) ListProjects(ctx context.Context, customerID string) ([]model.Project, error) {
	query := `
        SELECT id, customer_id, name, description, created_at, updated_at
        FROM projects`
	args := []any{}
	if customerID != "" {
		query += ` WHERE customer_id = ?`
		args = append(args, customerID)
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabase("list projects", err)
	}
	defer rows.Close()

	projects := []model.Project{}
	for rows.Next() {
		var project model.Project
		var createdAt, updatedAt int64
		if err := rows.Scan(&project.ID, &project.CustomerID, &project.Name,
			&project.Description, &createdAt, &updatedAt); err != nil {
			return nil, errors.NewDatabase("scan project", err)
		}
		project.CreatedAt = time.Unix(createdAt, 0).UTC()
		project.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		projects = append(projects, project)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabase("iterate projects", err)
	}
	return projects, nil
}

func (r *repository) UpdateProject(ctx context.Context, project *model.Project) error {
	project.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
        UPDATE projects SET name = ?, description = ?, updated_at = ?
        WHERE id = ?`,
		project.Name, project.Description, project.UpdatedAt.Unix(), project.ID)
	if err != nil {
		return translate("update project", err)
	}
	return requireRow(res, "Project", project.ID, "update project")
}

func (r *repository) DeleteProject(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return errors.NewDatabase("delete project", err)
	}
	return requireRow(res, "Project", id, "delete project")
}

// Input sources

func (r *repository) CreateInputSource(ctx context.Context, source *model.InputSource) error {
	if source.ID == "" {
		source.ID = uuid.NewString()
	}
	source.CreatedAt = time.Now().UTC().Truncate(time.Second)

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO input_sources (id, project_id, type, name, content_type, size_bytes, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		source.ID, source.ProjectID, string(source.Type), source.Name,
		source.ContentType, source.SizeBytes, source.CreatedAt.Unix())
	if err != nil {
		return translate("insert input source", err)
	}
	return nil
}

func (r *repository) GetInputSource(ctx context.Context, id string) (*model.InputSource, error) {
	var source model.InputSource
	var createdAt int64
	err := r.db.QueryRowContext(ctx, `
        SELECT id, project_id, type, name, content_type, size_bytes, created_at
        FROM input_sources WHERE id = ?`, id).
		Scan(&source.ID, &source.ProjectID, &source.Type, &source.Name,
			&source.ContentType, &source.SizeBytes, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Input source", id)
	}
	if err != nil {
		return nil, errors.NewDatabase("select input source", err)
	}
	source.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &source, nil
}

func (r *repository) ListInputSources(ctx context.Context, projectID string) ([]model.InputSource, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, project_id, type, name, content_type, size_bytes, created_at
        FROM input_sources WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, errors.NewDatabase("list input sources", err)
	}
	defer rows.Close()

	sources := []model.InputSource{}
	for rows.Next() {
		var source model.InputSource
		var createdAt int64
		if err := rows.Scan(&source.ID, &source.ProjectID, &source.Type, &source.Name,
			&source.ContentType, &source.SizeBytes, &createdAt); err != nil {
			return nil, errors.NewDatabase("scan input source", err)
		}
		source.CreatedAt = time.Unix(createdAt, 0).UTC()
		sources = append(sources, source)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabase("iterate input sources", err)
	}
	return sources, nil
}

// Requirements

func (r *repository) CreateRequirement(ctx context.Context, requirement *model.Requirement) error {
	if requirement.ID == "" {
		requirement.ID = uuid.NewString()
	}
	now := time.Now().UTC().Truncate(time.Second)
	requirement.CreatedAt = now
	requirement.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
        INSERT INTO requirements (id, project_id, source_id, title, description, category, priority, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		requirement.ID, requirement.ProjectID, requirement.SourceID, requirement.Title,
		requirement.Description, string(requirement.Category), string(requirement.Priority),
		requirement.CreatedAt.Unix(), requirement.UpdatedAt.Unix())
	if err != nil {
		return translate("insert requirement", err)
	}
	return nil
}

func (r *repository) GetRequirement(ctx context.Context, id string) (*model.Requirement, error) {
	var requirement model.Requirement
	var createdAt, updatedAt int64
	err := r.db.QueryRowContext(ctx, `
        SELECT id, project_id, source_id, title, description, category, priority, created_at, updated_at
        FROM requirements WHERE id = ?`, id).
		Scan(&requirement.ID, &requirement.ProjectID, &requirement.SourceID, &requirement.Title,
			&requirement.Description, &requirement.Category, &requirement.Priority, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewNotFound("Requirement", id)
	}
	if err != nil {
		return nil, errors.NewDatabase("select requirement", err)
	}
	requirement.CreatedAt = time.Unix(createdAt, 0).UTC()
	requirement.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	return &requirement, nil
}

func (r *repository) ListRequirements(ctx context.Context, projectID string) ([]model.Requirement, error) {
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, project_id, source_id, title, description, category, priority, created_at, updated_at
        FROM requirements WHERE project_id = ? ORDER BY created_at`, projectID)
	if err != nil {
		return nil, errors.NewDatabase("list requirements", err)
	}
	defer rows.Close()

	requirements := []model.Requirement{}
	for rows.Next() {
		var requirement model.Requirement
		var createdAt, updatedAt int64
		if err := rows.Scan(&requirement.ID, &requirement.ProjectID, &requirement.SourceID,
			&requirement.Title, &requirement.Description, &requirement.Category,
			&requirement.Priority, &createdAt, &updatedAt); err != nil {
			return nil, errors.NewDatabase("scan requirement", err)
		}
		requirement.CreatedAt = time.Unix(createdAt, 0).UTC()
		requirement.UpdatedAt = time.Unix(updatedAt, 0).UTC()
		requirements = append(requirements, requirement)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabase("iterate requirements", err)
	}
	return requirements, nil
}

func (r *repository) UpdateRequirement(ctx context.Context, requirement *model.Requirement) error {
	requirement.UpdatedAt = time.Now().UTC().Truncate(time.Second)

	res, err := r.db.ExecContext(ctx, `
        UPDATE requirements SET title = ?, description = ?, category = ?, priority = ?, updated_at = ?
        WHERE id = ?`,
		requirement.Title, requirement.Description, string(requirement.Category),
		string(requirement.Priority), requirement.UpdatedAt.Unix(), requirement.ID)
	if err != nil {
		return translate("update requirement", err)
	}
	return requireRow(res, "Requirement", requirement.ID, "update requirement")
}

func (r *repository) DeleteRequirement(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM requirements WHERE id = ?`, id)
	if err != nil {
		return errors.NewDatabase("delete requirement", err)
	}
	return requireRow(res, "Requirement", id, "delete requirement")
}

// requireRow converts a zero-row update or delete into a NotFound variant.
func requireRow(res sql.Result, resource, id, operation string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return errors.NewDatabase(operation, err)
	}
	if affected == 0 {
		return errors.NewNotFound(resource, id)
	}
	return nil
}
