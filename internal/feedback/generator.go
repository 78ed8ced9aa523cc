package feedback

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"strings"
	"sync"
)

// Highlight tags attached to a session.
const (
	HighlightStrengths    = "✅ Strengths"
	HighlightImprovements = "⚠️ Improvements"
	HighlightStrong       = "🔥 Strong session"
	HighlightNeedsWork    = "🔧 Needs work"
)

var (
	strengthPattern    = regexp.MustCompile(`(?i)\b(good|great|excellent|ok)\b|✅`)
	improvementPattern = regexp.MustCompile(`(?i)\b(improve|work on|warn|avoid)\b|⚠️`)
)

// RoleSkills is one entry of the role/skill catalog.
type RoleSkills struct {
	Role   string   `json:"role"`
	Skills []string `json:"skills"`
}

// Request describes the clip feedback is generated for.
type Request struct {
	VideoName string
	Role      string
	Skill     string
	Rating    int
	Note      string
}

// Result is generated feedback plus the prompt line it answers.
type Result struct {
	Prompt     string
	Feedback   string
	Highlights []string
}

// Library is the expanded template table. It is safe for concurrent use.
type Library struct {
	mu      sync.Mutex
	rnd     *rand.Rand
	entries map[string]map[string][]string
}

// NewLibrary expands the handcrafted table using rnd for the filler phrases
// and later template picks. A nil rnd uses a randomly seeded source.
func NewLibrary(rnd *rand.Rand) *Library {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	l := &Library{rnd: rnd, entries: map[string]map[string][]string{}}
	for _, role := range RoleOrder {
		l.entries[role] = map[string][]string{}
		for _, skill := range skillOrder[role] {
			templates := Handcrafted[role][skill]
			expanded := make([]string, 0, len(templates)*3)
			for _, t := range templates {
				expanded = append(expanded,
					t,
					fmt.Sprintf("%s. %s", l.pick(strengths), t),
					fmt.Sprintf("%s — %s. %s", t, l.pick(improvements), l.pick(drills)),
				)
			}
			l.entries[role][skill] = expanded
		}
	}
	l.entries[DefaultKey] = map[string][]string{DefaultKey: {defaultFeedback}}
	return l
}

func (l *Library) pick(options []string) string {
	return options[l.rnd.IntN(len(options))]
}

// Templates returns the expanded templates for role and skill, falling back to
// the default entry when either is unknown.
func (l *Library) Templates(role, skill string) []string {
	if skills, ok := l.entries[role]; ok {
		if t, ok := skills[skill]; ok && len(t) > 0 {
			return t
		}
	}
	return l.entries[DefaultKey][DefaultKey]
}

// Known reports whether role and skill are in the catalog.
func (l *Library) Known(role, skill string) bool {
	if role == DefaultKey {
		return skill == DefaultKey
	}
	_, ok := l.entries[role][skill]
	return ok
}

// Catalog lists roles and their skills in display order.
func (l *Library) Catalog() []RoleSkills {
	out := make([]RoleSkills, 0, len(RoleOrder)+1)
	for _, role := range RoleOrder {
		out = append(out, RoleSkills{Role: role, Skills: append([]string(nil), skillOrder[role]...)})
	}
	return append(out, RoleSkills{Role: DefaultKey, Skills: []string{DefaultKey}})
}

// Generate picks a template for the request and builds the feedback text,
// the prompt line and the highlight tags.
func (l *Library) Generate(req Request) Result {
	note := strings.TrimSpace(req.Note)

	prompt := fmt.Sprintf("Video: %s | Role: %s | Skill: %s | Rating: %d", req.VideoName, req.Role, req.Skill, req.Rating)
	if note != "" {
		prompt += " | Note: " + note
	}

	templates := l.Templates(req.Role, req.Skill)
	l.mu.Lock()
	text := l.pick(templates)
	l.mu.Unlock()

	if note != "" {
		text += "\n\nPlayer note: " + note
	}
	text += fmt.Sprintf("\n\nSession rating: %d/10", req.Rating)

	return Result{Prompt: prompt, Feedback: text, Highlights: Highlights(text, req.Rating)}
}

// Highlights derives tags from feedback wording and the rating.
func Highlights(text string, rating int) []string {
	tags := []string{}
	if strengthPattern.MatchString(text) {
		tags = append(tags, HighlightStrengths)
	}
	if improvementPattern.MatchString(text) {
		tags = append(tags, HighlightImprovements)
	}
	switch {
	case rating >= 8:
		tags = append(tags, HighlightStrong)
	case rating <= 4:
		tags = append(tags, HighlightNeedsWork)
	}
	return tags
}
