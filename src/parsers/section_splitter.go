package parsers

import (
	"strings"
	"unicode"

	"github.com/username/ledgerlens/src/models"
)

// IsSectionHeader reports whether a raw line introduces a new ledger
// section. The export marks section headers as `SectionName,,,,`: the
// name followed by exactly four empty fields. Summary rows share the
// same comma shape (`Total,,,,123.45` has a value in the last field,
// but `Total,,,,` style rows exist in some exports), so lines starting
// with `Total,` are never treated as headers.
func IsSectionHeader(line string) bool {
	if strings.HasPrefix(line, "Total,") {
		return false
	}
	fields := strings.Split(line, ",")
	if len(fields) != 5 {
		return false
	}
	name := fields[0]
	if name == "" {
		return false
	}
	for i := 1; i < 5; i++ {
		if fields[i] != "" {
			return false
		}
	}
	return unicode.IsLetter(rune(name[0]))
}

// SplitSections splits a full export into named sections. Each section
// keeps its header line as Lines[0]. Text before the first header is
// discarded.
//
// The export emits the totals row of the accounts receivable ledger at
// the start of the block that follows it, so that row is moved back
// onto the receivables section when it appears within the first three
// lines of the next section.
func SplitSections(raw string) []models.Section {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	var sections []models.Section
	var current *models.Section
	for _, line := range lines {
		if IsSectionHeader(line) {
			sections = append(sections, models.Section{
				Name:  strings.TrimSpace(strings.SplitN(line, ",", 2)[0]),
				Lines: []string{line},
			})
			current = &sections[len(sections)-1]
			continue
		}
		if current != nil {
			current.Lines = append(current.Lines, line)
		}
	}

	for i := range sections {
		if sections[i].Name != "Accounts receivable" || i+1 >= len(sections) {
			continue
		}
		next := sections[i+1].Lines
		limit := len(next)
		if limit > 3 {
			limit = 3
		}
		for j, line := range next[:limit] {
			if strings.HasPrefix(strings.TrimSpace(line), "Total,") {
				sections[i].Lines = append(sections[i].Lines, strings.TrimSpace(line))
				sections[i+1].Lines = append(next[:j:j], next[j+1:]...)
				break
			}
		}
	}

	return sections
}
