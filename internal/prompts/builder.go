package prompts

import (
	"fmt"
	"strings"

	"github.com/jonathan/page-digest/internal/ingestion"
	"github.com/jonathan/page-digest/internal/types"
)

const (
	summaryFile  = "summary.json"
	headlineFile = "headline.json"
)

// HeadlinePreviewLength caps the content embedded in the headline prompt, in runes.
const HeadlinePreviewLength = 2000

// Style selects the language and template set of the summary prompt.
type Style string

const (
	// StyleEnglish asks for an English summary.
	StyleEnglish Style = "en"
	// StyleChinese asks for a Chinese summary.
	StyleChinese Style = "zh"
)

// unsafeKeywords may not appear in a caller-supplied system prompt.
var unsafeKeywords = []string{
	"hack", "crack", "exploit", "bypass", "illegal", "unauthorized",
	"generate", "create", "write", "code", "script", "program",
}

// UnsafePromptError is returned when an override system prompt contains a
// disallowed instruction keyword.
type UnsafePromptError struct {
	Keywords []string
}

func (e *UnsafePromptError) Error() string {
	return fmt.Sprintf("custom system prompt contains disallowed instructions (%s), edit it and retry",
		strings.Join(e.Keywords, ", "))
}

// StyleForModel returns the prompt style for a model id. The gpt-5 family
// gets English prompts, everything else Chinese.
func StyleForModel(model string) Style {
	if strings.HasPrefix(model, "gpt-5") {
		return StyleEnglish
	}
	return StyleChinese
}

// BuildSummaryPrompt returns the messages for the summary call: the system
// prompt (override or default), a format reminder, and the page itself.
func BuildSummaryPrompt(content types.SanitizedContent, override string, style Style) ([]types.ChatMessage, error) {
	if style != StyleEnglish {
		style = StyleChinese
	}

	system := strings.TrimSpace(override)
	if system != "" {
		if found := CheckOverride(system); len(found) > 0 {
			return nil, &UnsafePromptError{Keywords: found}
		}
	} else {
		var err error
		if system, err = Get(summaryFile, "system-"+string(style)); err != nil {
			return nil, err
		}
	}

	reminder, err := Get(summaryFile, "format-reminder-"+string(style))
	if err != nil {
		return nil, err
	}
	userTemplate, err := Get(summaryFile, "user-"+string(style))
	if err != nil {
		return nil, err
	}

	return []types.ChatMessage{
		{Role: types.RoleSystem, Content: system},
		{Role: types.RoleSystem, Content: reminder},
		{Role: types.RoleUser, Content: Format(userTemplate, map[string]string{
			"Title":   content.Title,
			"URL":     content.URL,
			"Content": content.Content,
		})},
	}, nil
}

// BuildHeadlinePrompt returns the messages for the headline call.
func BuildHeadlinePrompt(content types.SanitizedContent) ([]types.ChatMessage, error) {
	system, err := Get(headlineFile, "system")
	if err != nil {
		return nil, err
	}
	userTemplate, err := Get(headlineFile, "user")
	if err != nil {
		return nil, err
	}

	return []types.ChatMessage{
		{Role: types.RoleSystem, Content: system},
		{Role: types.RoleUser, Content: Format(userTemplate, map[string]string{
			"Title":   content.Title,
			"URL":     content.URL,
			"Preview": ingestion.Truncate(content.Content, HeadlinePreviewLength),
		})},
	}, nil
}

// CheckOverride returns the disallowed keywords found in an override prompt.
func CheckOverride(prompt string) []string {
	lower := strings.ToLower(prompt)
	var found []string
	for _, keyword := range unsafeKeywords {
		if strings.Contains(lower, keyword) {
			found = append(found, keyword)
		}
	}
	return found
}
