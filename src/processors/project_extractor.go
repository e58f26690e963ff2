package processors

import "strings"

// regeneraAlias is the canonical project label for the Burgermeister
// engagement, which appears under a personal name in bank statements.
const regeneraAlias = "RegenEra"

// ProjectExtractor tags transactions with a known project/client name.
type ProjectExtractor struct {
	keywords []string
}

func NewProjectExtractor(keywords []string) *ProjectExtractor {
	return &ProjectExtractor{keywords: keywords}
}

// Extract returns the first known project name found in the
// description, or "" when the transaction belongs to no project.
// "Patrick Burgermeister" in either word order resolves to the
// RegenEra alias.
func (p *ProjectExtractor) Extract(description string) string {
	normalized := NormalizeDescription(description)
	for _, project := range p.keywords {
		if strings.Contains(normalized, strings.ToLower(project)) {
			if project == "Patrick Burgermeister" {
				return regeneraAlias
			}
			return project
		}
	}
	if strings.Contains(normalized, "burgermeister patrick") {
		return regeneraAlias
	}
	return ""
}
