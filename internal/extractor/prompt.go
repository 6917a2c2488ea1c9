package extractor

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed prompts/default.yaml
var defaultPrompts []byte

// PromptConfig holds the extraction prompt and its model parameters
type PromptConfig struct {
	IntentExtraction struct {
		Temperature  float32 `yaml:"temperature"`
		MaxTokens    int     `yaml:"max_tokens"`
		System       string  `yaml:"system"`
		UserTemplate string  `yaml:"user_template"`
	} `yaml:"intent_extraction"`
}

// LoadPrompts loads prompt configuration from a YAML file.
// An empty path selects the prompts compiled into the binary.
func LoadPrompts(promptsPath string) (*PromptConfig, error) {
	data := defaultPrompts
	if promptsPath != "" {
		var err error
		data, err = os.ReadFile(promptsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read prompts file: %w", err)
		}
	}

	var prompts PromptConfig
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prompts: %w", err)
	}
	if prompts.IntentExtraction.UserTemplate == "" {
		return nil, fmt.Errorf("prompts file has no intent_extraction.user_template")
	}

	return &prompts, nil
}

type weekdayDate struct {
	English    string
	Indonesian string
	Date       string
}

type promptData struct {
	Utterance        string
	Today            string
	TodayWeekday     string
	Tomorrow         string
	DayAfterTomorrow string
	NextFriday       string
	Year             int
	NextWeekdays     []weekdayDate
}

func newPromptData(utterance string, ref time.Time) promptData {
	ref = DateOnly(ref)
	data := promptData{
		Utterance:        utterance,
		Today:            ref.Format(time.DateOnly),
		TodayWeekday:     ref.Weekday().String(),
		Tomorrow:         ref.AddDate(0, 0, 1).Format(time.DateOnly),
		DayAfterTomorrow: ref.AddDate(0, 0, 2).Format(time.DateOnly),
		NextFriday:       NextWeekday(ref, time.Friday).Format(time.DateOnly),
		Year:             ref.Year(),
	}
	for _, w := range weekdayNames {
		data.NextWeekdays = append(data.NextWeekdays, weekdayDate{
			English:    w.english,
			Indonesian: w.indonesian,
			Date:       NextWeekday(ref, w.day).Format(time.DateOnly),
		})
	}
	return data
}

// renderTemplate renders a template with provided data
func renderTemplate(templateStr string, data any) (string, error) {
	tmpl, err := template.New("prompt").Option("missingkey=error").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
