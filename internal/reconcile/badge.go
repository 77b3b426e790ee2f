package reconcile

import "strings"

// Tone is the display tone of a badge label.
type Tone string

const (
	ToneGood    Tone = "good"
	ToneWarn    Tone = "warn"
	ToneBad     Tone = "bad"
	ToneNeutral Tone = "neutral"
)

type toneRule struct {
	tone    Tone
	needles []string
}

// Order matters: the first rule with a matching substring wins.
var toneRules = []toneRule{
	{tone: ToneGood, needles: []string{"strong", "good"}},
	{tone: ToneWarn, needles: []string{"gap", "weak"}},
	{tone: ToneBad, needles: []string{"low", "risk"}},
}

// Classify maps a free-text badge label to a tone by case-insensitive
// substring search. It never affects the numeric score.
func Classify(badge string) Tone {
	label := strings.ToLower(strings.TrimSpace(badge))
	if label == "" {
		return ToneNeutral
	}

	for _, rule := range toneRules {
		for _, needle := range rule.needles {
			if strings.Contains(label, needle) {
				return rule.tone
			}
		}
	}

	return ToneNeutral
}
