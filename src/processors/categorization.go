package processors

// CategoryRule maps one business category to its trigger keywords.
// Rules are evaluated in slice order and the first match wins, so the
// order of this table is significant.
type CategoryRule struct {
	Category string
	Keywords []string
}

// DefaultCategoryRules is the built-in keyword table. Keywords are
// matched as lowercase substrings of the normalized description.
var DefaultCategoryRules = []CategoryRule{
	{"Software & AI Tools", []string{"hubspot", "slack", "google", "cursor", "apollo", "render", "koyeb", "claude", "canva", "moneybird", "openai", "anthropic", "openrouter", "twilio", "coollabs", "hetzner", "godaddy", "50plus", "facebk", "monday.com"}},
	{"Salaries & Freelancers", []string{"catalin-stefan", "diogo guedes", "robijs dubas", "salary", "freelance", "contractor", "dubas", "anyhouse", "niculescu"}},
	{"Taxes & Accounting", []string{"belastingdienst", "taxpas", "tax", "accounting", "kvk", "digidentity", "peter", "kamer v koophandel"}},
	{"Travel & Transport", []string{"nlov", "ns groep", "q park", "ovpay", "transavia", "booking.com", "bck*ns", "ns"}},
	{"Office & Meetings", []string{"zettle", "seats2meet", "office", "meeting", "coworking", "plnt", "workplaces"}},
	{"Bank & Payment Fees", []string{"bunq", "pay.nl", "sumup", "stripe", "bank fee", "transaction fee", "mollie"}},
	{"Hardware & Assets", []string{"back market", "laptop", "hardware", "equipment", "computer"}},
	{"Client Revenue", []string{"medio zorg", "rebelsai", "burgermeister", "qualevita", "medicapital"}},
	{"Food & Groceries", []string{"albert heijn", "ozan market", "soupenzo", "restaurant", "griekse taverne", "lisa", "vialis", "weena b.v.", "dadawan"}},
	{"Miscellaneous", []string{"helios b.v.", "geniusinvest", "eq verhoef", "50plus mobiel", "genius invest"}},
}

// DefaultProjectKeywords lists the known project/client names, matched
// case-insensitively as substrings. Order matters here too.
var DefaultProjectKeywords = []string{
	"Medio Zorg", "Qualevita", "RebelsAI", "Patrick Burgermeister",
	"V&P Vastgoed", "RegenEra Ventures", "Curista", "MatrixMeesters",
	"Astralift", "MediCapital Solutions",
}
