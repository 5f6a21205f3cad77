// Package detect finds claim-bearing sentences in ingested documents by
// matching them against a topic list of claim templates.
package detect

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed topics_covid.yaml
var defaultTopics []byte

// Template is one claim template from a topic list. A sentence containing
// every term of any one pattern instantiates the template.
type Template struct {
	Topic    string   `yaml:"topic"`
	Subtopic string   `yaml:"subtopic"`
	Template string   `yaml:"template"`
	Patterns []string `yaml:"patterns"`
}

// TopicList is the set of claim templates for one domain.
type TopicList struct {
	Templates []Template `yaml:"templates"`
}

// DefaultTopicList returns the embedded COVID-19 topic list.
func DefaultTopicList() (*TopicList, error) {
	return parseTopicList(defaultTopics)
}

// LoadTopicList reads a topic list from a YAML file.
func LoadTopicList(path string) (*TopicList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read topic list: %w", err)
	}
	return parseTopicList(data)
}

func parseTopicList(data []byte) (*TopicList, error) {
	var list TopicList
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("unmarshal topic list: %w", err)
	}
	if len(list.Templates) == 0 {
		return nil, fmt.Errorf("topic list declares no templates")
	}
	for i, tmpl := range list.Templates {
		if tmpl.Template == "" {
			return nil, fmt.Errorf("template %d has no template text", i)
		}
		if len(tmpl.Patterns) == 0 {
			return nil, fmt.Errorf("template %q has no patterns", tmpl.Template)
		}
	}
	return &list, nil
}
