// Package assistant turns free-form chat messages into event suggestions
// using keyword heuristics. It deliberately avoids any external NLP service;
// unknown messages produce a help reply instead of a guess.
package assistant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/kairos/internal/scheduling/domain"
)

// Action classifies what the assistant proposes to do with a message.
type Action string

const (
	ActionCreateEvent Action = "create_event"
	ActionInfo        Action = "info"
)

// Suggestion is a draft event extracted from a chat message.
type Suggestion struct {
	Title    string
	Duration time.Duration
	Priority domain.Priority
	Category domain.EventCategory
}

// Reply is the assistant's answer to one message.
type Reply struct {
	Message   string
	Suggested *Suggestion
	Action    Action
}

var durationPattern = regexp.MustCompile(`(\d+)\s*(hours?|hrs?|h|minutes?|mins?|m)`)

var (
	subjects   = []string{"math", "science", "english", "history", "chemistry", "physics", "programming", "coding"}
	activities = []string{"study", "meeting", "class", "lecture", "review", "practice", "workout", "exercise"}

	highPriorityWords = []string{"urgent", "important", "asap", "critical"}
	lowPriorityWords  = []string{"low", "optional", "maybe"}
	mandatoryWords    = []string{"class", "lecture", "mandatory", "must"}
	fixedWords        = []string{"at", "pm", "am"}
)

const helpText = "I'd be happy to help you add events! Try saying something like:\n" +
	"- 'I need to study math for 2 hours'\n" +
	"- 'Schedule a meeting with John at 3 PM tomorrow'\n" +
	"- 'Add my chemistry class every Monday at 9 AM'"

// Parse extracts an event suggestion from a chat message. The second return
// value is false when the message contains no recognizable duration, subject
// or activity keyword.
func Parse(message string) (Suggestion, bool) {
	message = strings.ToLower(message)

	s := Suggestion{
		Title:    "Study Session",
		Duration: time.Hour,
		Priority: domain.PriorityMedium,
		Category: domain.CategoryFlexible,
	}

	recognized := false

	if m := durationPattern.FindStringSubmatch(message); m != nil {
		value, _ := strconv.Atoi(m[1])
		if strings.HasPrefix(m[2], "h") {
			s.Duration = time.Duration(value) * time.Hour
		} else {
			s.Duration = time.Duration(value) * time.Minute
		}
		recognized = true
	}

	subject := firstContained(message, subjects)
	activity := firstContained(message, activities)
	switch {
	case activity != "" && subject != "":
		s.Title = capitalize(activity) + " " + capitalize(subject)
	case subject != "":
		s.Title = "Study " + capitalize(subject)
	case activity != "":
		s.Title = capitalize(activity)
	}
	if subject != "" || activity != "" {
		recognized = true
	}

	// Priority and category markers match whole words only, so "math" does
	// not trigger the "at" clock hint.
	words := tokenize(message)

	switch {
	case hasAnyWord(words, highPriorityWords):
		s.Priority = domain.PriorityHigh
	case hasAnyWord(words, lowPriorityWords):
		s.Priority = domain.PriorityLow
	}

	switch {
	case hasAnyWord(words, mandatoryWords):
		s.Category = domain.CategoryMandatory
	case hasAnyWord(words, fixedWords) || strings.Contains(message, ":"):
		s.Category = domain.CategoryFixed
	}

	return s, recognized
}

// Respond produces a chat reply for one message.
func Respond(message string) Reply {
	suggestion, ok := Parse(message)
	if !ok {
		return Reply{Message: helpText, Action: ActionInfo}
	}

	return Reply{
		Message: fmt.Sprintf(
			"I understand you want to add: %q\nDuration: %d minutes\nShall I add this to your calendar?",
			suggestion.Title, int(suggestion.Duration.Minutes()),
		),
		Suggested: &suggestion,
		Action:    ActionCreateEvent,
	}
}

func firstContained(message string, words []string) string {
	for _, w := range words {
		if strings.Contains(message, w) {
			return w
		}
	}
	return ""
}

func tokenize(message string) map[string]bool {
	words := make(map[string]bool)
	for _, f := range strings.Fields(message) {
		words[strings.Trim(f, ".,!?;:'\"")] = true
	}
	return words
}

func hasAnyWord(words map[string]bool, candidates []string) bool {
	for _, c := range candidates {
		if words[c] {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
