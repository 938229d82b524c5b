// Package notify delivers change-set application notices to stakeholders.
package notify

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/cenniki/pricelist-service/internal/pricediff"
)

// ModelChange summarises the price changes of one product
type ModelChange struct {
	Product          string  `json:"product"`
	Category         string  `json:"category,omitempty"`
	Changes          int     `json:"changes"`
	AvgChangePercent float64 `json:"avgChangePercent"`
}

// Notification is sent after a change-set was applied
type Notification struct {
	ProducerSlug string            `json:"producerSlug"`
	ProducerName string            `json:"producerName"`
	ChangeSetID  string            `json:"changeSetId"`
	Summary      pricediff.Summary `json:"summary"`
	Models       []ModelChange     `json:"models"`
	// Recipients are producer-specific addresses added to the notifier's defaults
	Recipients []string `json:"-"`
}

// Notifier delivers notifications
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SummarizeModels groups changes by product in first-seen order
func SummarizeModels(changes []pricediff.AtomicChange) []ModelChange {
	models := make([]ModelChange, 0)
	index := make(map[string]int)
	groups := make(map[string][]pricediff.AtomicChange)

	for _, c := range changes {
		key := c.Category + "\x00" + c.Product
		if _, ok := index[key]; !ok {
			index[key] = len(models)
			models = append(models, ModelChange{Product: c.Product, Category: c.Category})
		}
		groups[key] = append(groups[key], c)
	}
	for key, i := range index {
		s := pricediff.Summarize(groups[key])
		models[i].Changes = s.TotalChanges
		models[i].AvgChangePercent = s.AvgChangePercent
	}
	return models
}

// LogNotifier writes notifications to the log
type LogNotifier struct {
	logger *zerolog.Logger
}

// NewLogNotifier creates a LogNotifier
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info().
		Str("producer", n.ProducerSlug).
		Str("changeSet", n.ChangeSetID).
		Int("changes", n.Summary.TotalChanges).
		Int("models", len(n.Models)).
		Float64("avgChangePercent", n.Summary.AvgChangePercent).
		Msg("Price changes applied")
	return nil
}

// Multi fans a notification out to every notifier and joins their errors
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, n Notification) error {
	var errs []error
	for _, notifier := range m {
		if err := notifier.Notify(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
