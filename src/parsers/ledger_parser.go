package parsers

import (
	"encoding/csv"
	"io"
	"log"
	"regexp"
	"strconv"
	"strings"

	"github.com/username/ledgerlens/src/models"
)

var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)

// ParseRows parses a section's body as CSV with the first body line as
// the column header row. Header names are trimmed. Rows shorter than
// the header are tolerated, reading the missing fields as empty. Any
// other malformed row is logged and skipped.
func ParseRows(section models.Section) []map[string]string {
	if len(section.Lines) < 2 {
		return nil
	}

	reader := csv.NewReader(strings.NewReader(strings.Join(section.Lines[1:], "\n")))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if err != io.EOF {
			log.Printf("Failed to read header row in section %q: %v", section.Name, err)
		}
		return nil
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("Skipping malformed row in section %q: %v", section.Name, err)
			continue
		}
		row := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// TransactionRows filters parsed rows down to usable transaction rows:
// those whose Date field starts with an ISO date. Header echoes, blank
// rows and Total rows all fail this check.
func TransactionRows(rows []map[string]string) []map[string]string {
	var out []map[string]string
	for _, row := range rows {
		if datePrefixRe.MatchString(row["Date"]) {
			out = append(out, row)
		}
	}
	return out
}

// SectionTotal scans a section for its reported totals row, a line
// starting with `Total,` whose fifth field carries the value. The bank
// ledger reports its running balance this way and the receivables
// ledger its outstanding total. Returns false when no such line exists.
func SectionTotal(section models.Section) (float64, bool) {
	for _, line := range section.Lines {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "Total,") {
			continue
		}
		parts := strings.Split(trimmed, ",")
		if len(parts) < 5 {
			continue
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(parts[4]), 64)
		if err != nil {
			log.Printf("Unparseable total value %q in section %q", parts[4], section.Name)
			return 0, false
		}
		return value, true
	}
	return 0, false
}
