package commands

import (
	"fmt"
	"os"

	"github.com/colonyops/briefly/internal/core/briefing"
	"gopkg.in/yaml.v3"
)

// topicsFile is the on-disk shape of a topic queue handed to `briefly run`.
// The source adapter that fetched the items writes this file; order is
// narration order. The same entry shapes arrive as JSON on merge turns.
type topicsFile struct {
	Topics []topicEntry `yaml:"topics"`
}

type topicEntry struct {
	Label string      `yaml:"label" json:"label"`
	Items []itemEntry `yaml:"items" json:"items"`
}

type itemEntry struct {
	ID        string `yaml:"id" json:"id"`
	Subject   string `yaml:"subject" json:"subject"`
	Sender    string `yaml:"sender" json:"sender"`
	Priority  string `yaml:"priority" json:"priority,omitempty"`
	IsFlagged bool   `yaml:"is_flagged" json:"is_flagged,omitempty"`
	Summary   string `yaml:"summary" json:"summary,omitempty"`
}

// LoadTopics reads and validates a topics YAML file.
func LoadTopics(path string) ([]briefing.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topics file: %w", err)
	}

	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse topics file: %w", err)
	}

	return convertTopics(file.Topics)
}

// convertTopics validates entries and maps them onto the domain model.
// Item ids must be non-empty; duplicates within one payload are rejected
// here, while duplicates against an existing session are left to the merge.
func convertTopics(entries []topicEntry) ([]briefing.Topic, error) {
	seen := make(map[string]bool)
	topics := make([]briefing.Topic, 0, len(entries))

	for i, t := range entries {
		if t.Label == "" {
			return nil, fmt.Errorf("topics[%d]: label is required", i)
		}

		items := make([]briefing.ItemRef, 0, len(t.Items))
		for j, item := range t.Items {
			if item.ID == "" {
				return nil, fmt.Errorf("topics[%d].items[%d]: id is required", i, j)
			}
			if seen[item.ID] {
				return nil, fmt.Errorf("topics[%d].items[%d]: duplicate item id %q", i, j, item.ID)
			}
			seen[item.ID] = true

			items = append(items, briefing.ItemRef{
				ID:        item.ID,
				Subject:   item.Subject,
				Sender:    item.Sender,
				Priority:  briefing.Priority(item.Priority),
				IsFlagged: item.IsFlagged,
				Summary:   item.Summary,
			})
		}

		topics = append(topics, briefing.Topic{Label: t.Label, Items: items})
	}

	return topics, nil
}
