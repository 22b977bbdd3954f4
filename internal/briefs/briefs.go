// Package briefs maps article categories to the research instructions handed
// to the generation service. A job's custom prompt always wins; unknown
// categories fall back to a generic brief.
package briefs

import "strings"

const genericBrief = "Research recent, reliable sources on this topic and write a practical, " +
	"well-structured guide for an international audience. Cite concrete figures and official sources where possible."

// Registry keeps a mapping from category names to their default briefs.
type Registry struct {
	briefs map[string]string
}

// NewRegistry builds a registry preloaded with the standard categories.
func NewRegistry() *Registry {
	return &Registry{briefs: map[string]string{
		"immigration": "Focus on current immigration policy, processing times, and official government guidance. Prefer primary sources over commentary.",
		"education":   "Focus on admissions, tuition, rankings, and academic life. Compare destination countries where relevant.",
		"visa":        "Focus on visa types, eligibility, documentation, fees, and typical timelines. Flag recent rule changes explicitly.",
		"career":      "Focus on job markets, work rights, salary expectations, and employer sponsorship for international candidates.",
		"success":     "Tell a concrete, verifiable success story with the obstacles, decisions, and outcomes spelled out.",
		"culture":     "Focus on everyday cultural adaptation: customs, etiquette, social life, and common friction points for newcomers.",
	}}
}

// Register adds or replaces a category brief.
func (r *Registry) Register(category, brief string) {
	if r.briefs == nil {
		r.briefs = map[string]string{}
	}
	r.briefs[strings.ToLower(strings.TrimSpace(category))] = brief
}

// Resolve picks the research brief for a run: custom prompt first, then the
// category default, then the generic fallback.
func (r *Registry) Resolve(category, customPrompt string) string {
	if strings.TrimSpace(customPrompt) != "" {
		return customPrompt
	}
	if brief, ok := r.briefs[strings.ToLower(strings.TrimSpace(category))]; ok {
		return brief
	}
	return genericBrief
}
