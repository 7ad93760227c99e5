package engine

import (
	"math"

	"github.com/lazypower/lifeclock/internal/store"
)

// Option is one answer to a question.
type Option struct {
	Text   string `json:"text"`
	Value  string `json:"value"`
	Weight int    `json:"weight"`
}

// Question is the prompt asked for a category.
type Question struct {
	Category store.Category `json:"category"`
	Label    string         `json:"label"`
	Text     string         `json:"question"`
	Options  []Option       `json:"choices"`
}

var questions = []Question{
	{
		Category: store.CategoryMindfulness,
		Label:    "Mindfulness",
		Text:     "Right now, how do you choose to engage with this moment?",
		Options: []Option{
			{Text: "Actively direct my full attention to this present experience", Value: "mindful", Weight: 100},
			{Text: "Allow my mind to wander to other tasks and distractions", Value: "mindless", Weight: 0},
		},
	},
	{
		Category: store.CategoryIntention,
		Label:    "Intention",
		Text:     "How do you choose to approach this assessment process?",
		Options: []Option{
			{Text: "Set a clear intention to learn about myself without attachment to results", Value: "intending", Weight: 100},
			{Text: "Hope for favorable outcomes and judge myself based on the results", Value: "expecting", Weight: 0},
		},
	},
	{
		Category: store.CategoryAction,
		Label:    "Action",
		Text:     "There's a difficult task you've been postponing. What do you decide to do?",
		Options: []Option{
			{Text: "Commit to tackling it today, despite the discomfort", Value: "acting", Weight: 100},
			{Text: "Continue delaying it and find reasons to put it off further", Value: "avoiding", Weight: 0},
		},
	},
	{
		Category: store.CategoryAppreciation,
		Label:    "Appreciation",
		Text:     "How do you choose to view your current life circumstances?",
		Options: []Option{
			{Text: "Actively look for and acknowledge what I can appreciate right now", Value: "appreciating", Weight: 100},
			{Text: "Focus on cataloging what's lacking or problematic", Value: "dismissing", Weight: 0},
		},
	},
	{
		Category: store.CategoryPresence,
		Label:    "Presence",
		Text:     "Where do you decide to place your attention right now?",
		Options: []Option{
			{Text: "Deliberately anchor my awareness in this present moment", Value: "present", Weight: 100},
			{Text: "Let my mind drift to past regrets or future anxieties", Value: "escaping", Weight: 0},
		},
	},
	{
		Category: store.CategorySelfBelief,
		Label:    "Self-Belief",
		Text:     "How do you choose to define your self-worth in this moment?",
		Options: []Option{
			{Text: "Affirm my inherent value independent of any external achievements", Value: "selfAssertive", Weight: 100},
			{Text: "Base my worth on others' approval and external accomplishments", Value: "selfDoubting", Weight: 0},
		},
	},
	{
		Category: store.CategoryAgency,
		Label:    "Agency",
		Text:     "When facing your current challenges, what approach do you choose?",
		Options: []Option{
			{Text: "Identify and act on what I can directly influence and control", Value: "personalAgency", Weight: 100},
			{Text: "Dwell on how external forces are limiting my options", Value: "victimMindset", Weight: 0},
		},
	},
	{
		Category: store.CategoryValidation,
		Label:    "Validation",
		Text:     "How do you choose to cultivate your sense of value?",
		Options: []Option{
			{Text: "Practice recognizing and honoring my inherent worth", Value: "internalWorth", Weight: 100},
			{Text: "Seek praise, achievements, and external recognition", Value: "externalValidation", Weight: 0},
		},
	},
}

type outcomeLines struct {
	positive string
	negative string
}

var categoryOutcomes = map[store.Category]outcomeLines{
	store.CategoryMindfulness:  {"Builds emotional resilience and clarity", "Weakens awareness and increases reactivity"},
	store.CategoryIntention:    {"Strengthens purposeful action", "Increases frustration and complaints"},
	store.CategoryAction:       {"Builds momentum and confidence", "Reinforces avoidance patterns"},
	store.CategoryAppreciation: {"Enhances contentment and relationships", "Increases dissatisfaction and negativity"},
	store.CategoryPresence:     {"Improves focus and connection", "Strengthens escapist tendencies"},
	store.CategorySelfBelief:   {"Builds unshakeable inner confidence", "Increases dependency on others"},
	store.CategoryAgency:       {"Strengthens sense of control", "Reinforces victim mindset"},
	store.CategoryValidation:   {"Builds authentic self-worth", "Increases need for external approval"},
}

// Questions returns the question bank, one question per category.
func Questions() []Question {
	out := make([]Question, len(questions))
	copy(out, questions)
	return out
}

// LookupOption finds the question for category and the option with value.
func LookupOption(category store.Category, value string) (Question, Option, bool) {
	for _, q := range questions {
		if q.Category != category {
			continue
		}
		for _, o := range q.Options {
			if o.Value == value {
				return q, o, true
			}
		}
		return q, Option{}, false
	}
	return Question{}, Option{}, false
}

// Impact previews how one more choice would move a category score.
type Impact struct {
	Category  store.Category `json:"category"`
	Current   float64        `json:"current"`
	Projected float64        `json:"projected"`
	Delta     int            `json:"delta"`
	Outcome   string         `json:"outcome"`
}

// PreviewImpact estimates the effect of choosing an option with weight on a
// category currently scored at current. It does not use the trend term.
func PreviewImpact(category store.Category, current float64, weight int) Impact {
	magnitude := math.Abs(float64(weight)-neutralScore) / 2
	lines := categoryOutcomes[category]

	projected := clamp(current-magnitude, 0, 100)
	outcome := lines.negative
	if float64(weight) > neutralScore {
		projected = clamp(current+magnitude, 0, 100)
		outcome = lines.positive
	}

	return Impact{
		Category:  category,
		Current:   current,
		Projected: projected,
		Delta:     int(math.Round(projected - current)),
		Outcome:   outcome,
	}
}
