package processors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractProject(t *testing.T) {
	e := NewProjectExtractor(DefaultProjectKeywords)

	tests := []struct {
		name        string
		description string
		want        string
	}{
		{"client name in transfer text", "Medio Zorg B.V. NL15 INGB 0106 2158 17\n2025-0007 RF33NHVC7H3A", "Medio Zorg"},
		{"case insensitive", "MEDIO ZORG payment", "Medio Zorg"},
		{"invoice reference", "INV 2025-0009 - RebelsAI B.V. 2025-0009", "RebelsAI"},
		{"no known project", "HubSpot Netherlands B. Schiphol, NL", ""},
		{"empty description", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.description))
		})
	}
}

func TestExtractProjectBurgermeisterAlias(t *testing.T) {
	e := NewProjectExtractor(DefaultProjectKeywords)

	// The engagement shows up under a personal name, in both word
	// orders depending on the source row.
	assert.Equal(t, "RegenEra", e.Extract("INV 2025-0003 - Patrick Burgermeister"))
	assert.Equal(t, "RegenEra", e.Extract("Burgermeister Patrick CH56 0839 8064 2115 0510 4\nPitch deck / Branding / Logo"))
}
