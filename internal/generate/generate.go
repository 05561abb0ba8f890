// Package generate turns uploaded input sources into stored requirement
// drafts by calling the collaborator generation endpoint.
package generate

import (
	"context"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/startificial/requireflow/internal/apiclient"
	"github.com/startificial/requireflow/internal/cache"
	"github.com/startificial/requireflow/internal/errors"
	"github.com/startificial/requireflow/internal/logger"
	"github.com/startificial/requireflow/internal/model"
	"github.com/startificial/requireflow/internal/store"
)

const generatePath = "/v1/requirements/generate"

type Config struct {
	// Enabled is false when no generation endpoint is configured.
	Enabled bool
	Model   string
	// MaxAttempts bounds the number of calls per Generate, including the
	// first one. The request pipeline itself never retries; this service
	// owns the retry policy.
	MaxAttempts int
}

type Service struct {
	client *apiclient.Client
	repo   store.Repository
	cache  *cache.Service
	cfg    Config
	logger logger.Logger
}

func NewService(client *apiclient.Client, repo store.Repository, c *cache.Service, cfg Config, log logger.Logger) *Service {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Service{
		client: client,
		repo:   repo,
		cache:  c,
		cfg:    cfg,
		logger: log,
	}
}

type generateRequest struct {
	Model       string `json:"model"`
	ProjectName string `json:"projectName"`
	SourceName  string `json:"sourceName,omitempty"`
	SourceType  string `json:"sourceType,omitempty"`
}

type draft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

type generateResponse struct {
	Requirements []draft `json:"requirements"`
}

// Generate asks the collaborator for requirement drafts for the given
// project (optionally scoped to one input source), persists the usable ones
// and returns them. Unavailable-class failures are retried with exponential
// backoff up to MaxAttempts calls.
func (s *Service) Generate(ctx context.Context, projectID, sourceID string) ([]model.Requirement, error) {
	if !s.cfg.Enabled {
		return nil, errors.NewServiceUnavailable("generation")
	}

	project, err := s.repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	req := generateRequest{
		Model:       s.cfg.Model,
		ProjectName: project.Name,
	}
	if sourceID != "" {
		source, err := s.repo.GetInputSource(ctx, sourceID)
		if err != nil {
			return nil, err
		}
		if source.ProjectID != projectID {
			return nil, errors.NewValidation("Input source belongs to a different project", nil)
		}
		req.SourceName = source.Name
		req.SourceType = string(source.Type)
	}

	var resp generateResponse
	call := func() error {
		resp = generateResponse{}
		if err := s.client.Post(ctx, generatePath, req, &resp); err != nil {
			if retriable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(s.cfg.MaxAttempts-1)), ctx)
	if err := backoff.Retry(call, policy); err != nil {
		s.logger.Error().Err(err).Str("project_id", projectID).Msg("Requirement generation failed")
		return nil, err
	}

	created := make([]model.Requirement, 0, len(resp.Requirements))
	for _, d := range resp.Requirements {
		requirement := normalize(d, projectID, sourceID)
		if requirement == nil {
			continue
		}
		if err := s.repo.CreateRequirement(ctx, requirement); err != nil {
			return created, err
		}
		created = append(created, *requirement)
	}

	if s.cache != nil {
		s.cache.DeletePrefix("projects:" + projectID + ":")
	}

	s.logger.Info().
		Str("project_id", projectID).
		Int("requirements", len(created)).
		Int("drafts", len(resp.Requirements)).
		Msg("Requirements generated")

	return created, nil
}

// retriable reports whether a failed call is worth another attempt: transport
// errors and unavailable/5xx responses are, anything else is final.
func retriable(err error) bool {
	c := errors.Classify(err)
	if !c.Known {
		// Transport-level failure; the collaborator may come back.
		return true
	}
	if c.Err.Code == errors.CodeServiceUnavailable {
		return true
	}
	return c.Err.Code == errors.CodeAPI && c.Err.StatusCode >= 500
}

// normalize converts one draft into a storable requirement, or nil when the
// draft has no usable title. Unknown categories and priorities fall back to
// functional/medium rather than dropping the draft.
func normalize(d draft, projectID, sourceID string) *model.Requirement {
	title := strings.TrimSpace(d.Title)
	if title == "" {
		return nil
	}

	category := model.Category(strings.ToLower(strings.TrimSpace(d.Category)))
	if !category.IsValid() {
		category = model.CategoryFunctional
	}
	priority := model.Priority(strings.ToLower(strings.TrimSpace(d.Priority)))
	if !priority.IsValid() {
		priority = model.PriorityMedium
	}

	return &model.Requirement{
		ProjectID:   projectID,
		SourceID:    sourceID,
		Title:       title,
		Description: strings.TrimSpace(d.Description),
		Category:    category,
		Priority:    priority,
	}
}

func newBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}
