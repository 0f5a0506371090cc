package gamification

import (
	"fmt"

	"github.com/civicsync/civic-dashboard/internal/config"
	"github.com/civicsync/civic-dashboard/internal/models"
)

// Supported achievement metrics.
const (
	MetricIssuesReported = "issues_reported"
	MetricIssuesResolved = "issues_resolved"
	MetricLevel          = "level"
	MetricRank           = "rank"
)

// Evaluator checks a user against the configured achievement catalog.
type Evaluator struct {
	catalog []config.AchievementConfig
}

// NewEvaluator creates an evaluator for the given catalog.
func NewEvaluator(catalog []config.AchievementConfig) *Evaluator {
	return &Evaluator{catalog: append([]config.AchievementConfig(nil), catalog...)}
}

// Evaluate returns every achievement in catalog order. user.Rank must already be derived.
// Progress-tracked achievements report progress capped at their target.
func (e *Evaluator) Evaluate(user *models.User) ([]models.Achievement, error) {
	achievements := make([]models.Achievement, 0, len(e.catalog))
	for _, def := range e.catalog {
		value, err := metricValue(user, def.Metric)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", def.ID, err)
		}

		unlocked, err := checkCriteria(def.Operator, def.Value, value)
		if err != nil {
			return nil, fmt.Errorf("achievement %s: %w", def.ID, err)
		}

		a := models.Achievement{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Unlocked:    unlocked,
		}
		if def.Progress && def.Operator == ">=" {
			progress := value
			if progress > def.Value {
				progress = def.Value
			}
			if progress < 0 {
				progress = 0
			}
			maxProgress := def.Value
			a.Progress = &progress
			a.MaxProgress = &maxProgress
		}
		achievements = append(achievements, a)
	}
	return achievements, nil
}

func metricValue(user *models.User, metric string) (int, error) {
	switch metric {
	case MetricIssuesReported:
		return user.IssuesReported, nil
	case MetricIssuesResolved:
		return user.IssuesResolved, nil
	case MetricLevel:
		return user.Level, nil
	case MetricRank:
		return user.Rank, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %s", metric)
	}
}

// checkCriteria compares a metric value against a threshold.
// "top" means a rank between 1 and threshold.
func checkCriteria(operator string, threshold, actual int) (bool, error) {
	switch operator {
	case ">=":
		return actual >= threshold, nil
	case "top":
		return actual >= 1 && actual <= threshold, nil
	default:
		return false, fmt.Errorf("unsupported operator: %s", operator)
	}
}
