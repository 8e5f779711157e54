package parser

import (
	_ "embed"
	"log"
	"strings"

	"github.com/go-telegram/bot/models"
	"gopkg.in/yaml.v3"
)

//go:embed messages.yaml
var rawMessages []byte

type buttonSpec struct {
	Text   string `yaml:"text"`
	URL    string `yaml:"url,omitempty"`
	WebApp string `yaml:"web_app,omitempty"`
}

type messageSpec struct {
	Text    string         `yaml:"text"`
	Buttons [][]buttonSpec `yaml:"buttons,omitempty"`
}

var messages map[string]messageSpec

func init() {
	if err := yaml.Unmarshal(rawMessages, &messages); err != nil {
		log.Fatalf("failed to parse messages.yaml: %v", err)
	}
}

// GetMessage returns the template text for key with {param} placeholders
// replaced, plus its inline keyboard when one is defined.
func GetMessage(key string, params map[string]string) (string, *models.InlineKeyboardMarkup) {
	spec, ok := messages[key]
	if !ok {
		return "", nil
	}

	apply := func(s string) string {
		for k, v := range params {
			s = strings.ReplaceAll(s, "{"+k+"}", v)
		}
		return s
	}

	text := apply(spec.Text)
	if len(spec.Buttons) == 0 {
		return text, nil
	}

	var rows [][]models.InlineKeyboardButton
	for _, row := range spec.Buttons {
		var buttons []models.InlineKeyboardButton
		for _, b := range row {
			button := models.InlineKeyboardButton{Text: apply(b.Text)}
			switch {
			case b.WebApp != "":
				button.WebApp = &models.WebAppInfo{URL: apply(b.WebApp)}
			case b.URL != "":
				button.URL = apply(b.URL)
			}
			buttons = append(buttons, button)
		}
		rows = append(rows, buttons)
	}

	return text, &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
