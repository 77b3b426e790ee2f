// Package reconcile turns partial match and grading results into one
// display-ready outcome. It holds no state and performs no I/O.
package reconcile

import (
	"fmt"
	"math"
	"strings"

	"github.com/spigell/hirescore/internal/backend"
)

const (
	// DefaultMaxGaps is how many gaps a view shows when no limit is configured.
	DefaultMaxGaps = 8
	// Unknown is rendered in place of a score that was never computed.
	Unknown = "—"
)

// Kind selects which score chain and label fallback a view uses.
type Kind string

const (
	KindCV       Kind = "cv"
	KindCombined Kind = "combined"
)

// Score is a percentage that may be absent. A zero Value with Known set is a real score.
type Score struct {
	Value float64
	Known bool
}

func known(v float64) Score {
	return Score{Value: v, Known: true}
}

func (s Score) String() string {
	if !s.Known {
		return Unknown
	}
	return Percent(s.Value)
}

// Percent rounds half away from zero.
func Percent(v float64) string {
	return fmt.Sprintf("%d%%", int(math.Round(v)))
}

// CombinedScore walks combined, then cv match, then quiz match.
func CombinedScore(m *backend.MatchResult) Score {
	if m == nil {
		return Score{}
	}

	switch {
	case m.Combined != nil:
		return known(*m.Combined)
	case m.CVMatch != nil:
		return known(m.CVMatch.Score)
	case m.QuizMatch != nil:
		return known(m.QuizMatch.Score)
	default:
		return Score{}
	}
}

// CVScore only looks at the cv match block.
func CVScore(m *backend.MatchResult) Score {
	if m == nil || m.CVMatch == nil {
		return Score{}
	}
	return known(m.CVMatch.Score)
}

// Gaps prefers the backend's recommended list over raw cv or quiz gaps and
// returns at most limit entries in backend order. The result never aliases m.
func Gaps(m *backend.MatchResult, limit int) []string {
	if m == nil {
		return nil
	}

	if limit <= 0 {
		limit = DefaultMaxGaps
	}

	var source []string
	switch {
	case m.Recommend != nil && len(m.Recommend.TopGaps) > 0:
		source = m.Recommend.TopGaps
	case m.CVMatch != nil && len(m.CVMatch.Gaps) > 0:
		source = m.CVMatch.Gaps
	case m.QuizMatch != nil && len(m.QuizMatch.Gaps) > 0:
		source = m.QuizMatch.Gaps
	}

	if len(source) == 0 {
		return nil
	}

	if len(source) > limit {
		source = source[:limit]
	}

	out := make([]string, len(source))
	copy(out, source)
	return out
}

// View is everything needed to display one match result.
type View struct {
	Kind    Kind
	Score   Score
	Badge   string
	Tone    Tone
	Gaps    []string
	Message string
	// Skills is set when the cv match reported skill counts.
	Skills *SkillCount
}

type SkillCount struct {
	Matched int
	Total   int
}

// Options tunes Reconcile.
type Options struct {
	MaxGaps int
}

// Reconcile builds the view of m. A nil m yields an empty view with an unknown score.
func Reconcile(kind Kind, m *backend.MatchResult, opts Options) View {
	view := View{
		Kind:  kind,
		Badge: string(kind),
		Tone:  ToneNeutral,
	}

	if m == nil {
		return view
	}

	if kind == KindCV {
		view.Score = CVScore(m)
	} else {
		view.Score = CombinedScore(m)
	}

	if label := strings.TrimSpace(m.Badge); label != "" {
		view.Badge = label
	}
	view.Tone = Classify(m.Badge)
	view.Gaps = Gaps(m, opts.MaxGaps)
	view.Message = strings.TrimSpace(m.Message)

	if m.CVMatch != nil && m.CVMatch.TotalSkills > 0 {
		view.Skills = &SkillCount{Matched: m.CVMatch.Matched, Total: m.CVMatch.TotalSkills}
	}

	return view
}
