package services

import (
	"fmt"
	"strings"
	"time"
)

// FormatGBP formats an amount in pounds sterling with thousands grouping
// and exactly 2 decimal places, e.g. £12,345.60.
func FormatGBP(amount float64) string {
	negative := false
	if amount < 0 {
		negative = true
		amount = -amount
	}

	raw := fmt.Sprintf("%.2f", amount)
	parts := strings.SplitN(raw, ".", 2)
	intPart := parts[0]
	decPart := parts[1]

	result := "£" + groupThousands(intPart) + "." + decPart
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every 3 digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var b strings.Builder
	lead := n % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteString(",")
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// ArtifactFileName builds the output file name callers depend on:
// "{project_number} {kind} {DDMMYYYY}[ Rev {letter}]{ext}". The revision
// suffix is omitted entirely while the project has no revision yet. The
// date is taken from the project's DD/MM/YYYY date field, falling back to
// today when blank.
func ArtifactFileName(projectNumber, kind, date, revision, ext string) string {
	compact := strings.NewReplacer("/", "", "-", "").Replace(date)
	if compact == "" {
		compact = time.Now().Format("02012006")
	}
	name := fmt.Sprintf("%s %s %s", projectNumber, kind, compact)
	if revision != "" {
		name += " Rev " + revision
	}
	return name + ext
}

// NextRevision advances a revision letter: "" -> "A", "A" -> "B",
// "Z" -> "AA", "AZ" -> "BA". Revisions are monotonic per regenerate cycle.
func NextRevision(rev string) string {
	rev = strings.ToUpper(strings.TrimSpace(rev))
	if rev == "" {
		return "A"
	}
	letters := []byte(rev)
	for i := len(letters) - 1; i >= 0; i-- {
		if letters[i] < 'Z' {
			letters[i]++
			return string(letters)
		}
		letters[i] = 'A'
	}
	return "A" + string(letters)
}

// FormatDisplayDate converts DD/MM/YYYY into the quotation's long form,
// e.g. "14 March 2026". Unparseable input is returned untouched; blank
// input becomes today's date.
func FormatDisplayDate(date string) string {
	if strings.TrimSpace(date) == "" {
		return time.Now().Format("2 January 2006")
	}
	t, err := time.Parse("02/01/2006", date)
	if err != nil {
		return date
	}
	return t.Format("2 January 2006")
}

// QuoteReference builds the quotation reference "{number}/{MM}/{YY}" from
// the project number and date. A blank or malformed date falls back to the
// current month and year.
func QuoteReference(projectNumber, date string) string {
	t, err := time.Parse("02/01/2006", date)
	if err != nil {
		t = time.Now()
	}
	return fmt.Sprintf("%s/%s/%s", projectNumber, t.Format("01"), t.Format("06"))
}

// Initials condenses a full name into initials, honouring "and", "&" and
// "/" separators: "Jane Doe / Sam Roe" -> "JD/SR".
func Initials(name string) string {
	if name == "" {
		return ""
	}
	name = strings.ReplaceAll(name, " and ", "/")
	name = strings.ReplaceAll(name, "&", "/")

	var out []string
	for _, person := range strings.Split(name, "/") {
		var initials strings.Builder
		for _, part := range strings.Fields(person) {
			initials.WriteString(strings.ToUpper(part[:1]))
		}
		if initials.Len() > 0 {
			out = append(out, initials.String())
		}
	}
	return strings.Join(out, "/")
}
