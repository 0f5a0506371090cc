// Package seed loads the sample issues and users shipped with the service.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/civicsync/civic-dashboard/internal/models"
	"github.com/civicsync/civic-dashboard/pkg/logger"
)

//go:embed fixtures.yaml
var fixturesYAML []byte

// Fixtures is the decoded sample data set.
type Fixtures struct {
	Issues []models.Issue `yaml:"issues"`
	Users  []models.User  `yaml:"users"`
}

// IssueCreator is the subset of the issue store needed for seeding.
type IssueCreator interface {
	Create(issue *models.Issue) error
	List() ([]models.Issue, error)
}

// UserCreator is the subset of the user store needed for seeding.
type UserCreator interface {
	Create(user *models.User) error
	List() ([]models.User, error)
}

// Load decodes the embedded fixtures.
func Load() (*Fixtures, error) {
	return Parse(fixturesYAML)
}

// Parse decodes fixtures from YAML and fills in defaults.
func Parse(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}

	for i := range f.Issues {
		issue := &f.Issues[i]
		if issue.Status == "" {
			issue.Status = models.StatusPending
		}
		if _, err := models.ParseCategory(string(issue.Category)); err != nil {
			return nil, fmt.Errorf("fixture issue %s: %w", issue.ID, err)
		}
		if _, err := models.ParseStatus(string(issue.Status)); err != nil {
			return nil, fmt.Errorf("fixture issue %s: %w", issue.ID, err)
		}
		issue.UpdatedAt = issue.ReportedAt
	}

	return &f, nil
}

// Apply inserts the fixtures into stores that are still empty. Non-empty stores are left alone.
func Apply(f *Fixtures, issues IssueCreator, users UserCreator, log *logger.Logger) error {
	existingIssues, err := issues.List()
	if err != nil {
		return fmt.Errorf("failed to inspect issue store: %w", err)
	}
	if len(existingIssues) == 0 {
		for i := range f.Issues {
			issue := f.Issues[i]
			if err := issues.Create(&issue); err != nil {
				return fmt.Errorf("failed to seed issue %s: %w", issue.ID, err)
			}
		}
		log.Info().Int("count", len(f.Issues)).Msg("Seeded sample issues")
	}

	existingUsers, err := users.List()
	if err != nil {
		return fmt.Errorf("failed to inspect user store: %w", err)
	}
	if len(existingUsers) == 0 {
		for i := range f.Users {
			user := f.Users[i]
			user.Badges = append([]string(nil), f.Users[i].Badges...)
			if err := users.Create(&user); err != nil {
				return fmt.Errorf("failed to seed user %s: %w", user.ID, err)
			}
		}
		log.Info().Int("count", len(f.Users)).Msg("Seeded sample users")
	}

	return nil
}
