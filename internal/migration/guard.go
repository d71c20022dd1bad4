package migration

import (
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strings"
)

// AllowMarker exempts a statement when it appears in a comment line before
// the statement's terminating semicolon.
const AllowMarker = "-- guard:allow"

var (
	dropTable  = regexp.MustCompile(`(?is)^DROP\s+TABLE\b`)
	alterTable = regexp.MustCompile(`(?is)^ALTER\s+TABLE\b`)
	dropClause = regexp.MustCompile(`(?i)\bDROP\s+(COLUMN\s+)?(?:IF\s+EXISTS\s+)?("[^"]+"|\w+)`)
	truncate   = regexp.MustCompile(`(?is)^TRUNCATE\b`)
	deleteFrom = regexp.MustCompile(`(?is)^DELETE\s+FROM\b`)
	where      = regexp.MustCompile(`(?is)\bWHERE\b`)
)

// keepsColumn lists what may follow DROP inside ALTER TABLE without removing
// a column. NOT covers DROP NOT NULL.
var keepsColumn = map[string]bool{
	"CONSTRAINT": true,
	"DEFAULT":    true,
	"NOT":        true,
	"IDENTITY":   true,
	"EXPRESSION": true,
}

// dropsColumn reports whether an ALTER TABLE statement removes a column.
// COLUMN is optional in DROP [COLUMN] [IF EXISTS] name.
func dropsColumn(stmt string) bool {
	if !alterTable.MatchString(stmt) {
		return false
	}
	for _, m := range dropClause.FindAllStringSubmatch(stmt, -1) {
		if m[1] != "" || !keepsColumn[strings.ToUpper(m[2])] {
			return true
		}
	}
	return false
}

// classify returns the rule a statement breaks, or "".
func classify(stmt string) string {
	switch {
	case dropTable.MatchString(stmt):
		return "DROP TABLE"
	case dropsColumn(stmt):
		return "DROP COLUMN"
	case truncate.MatchString(stmt):
		return "TRUNCATE"
	case deleteFrom.MatchString(stmt) && !where.MatchString(stmt):
		return "DELETE without WHERE"
	default:
		return ""
	}
}

// Finding is one destructive statement found in an up migration.
type Finding struct {
	File      string
	Line      int
	Rule      string
	Statement string
}

func (f Finding) String() string {
	return fmt.Sprintf("%s:%d: %s: %s", f.File, f.Line, f.Rule, f.Statement)
}

// Scan checks every *.up.sql file in fsys. Down migrations are destructive
// by nature and are skipped.
func Scan(fsys fs.FS) ([]Finding, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var findings []Finding
	for _, name := range files {
		body, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		findings = append(findings, ScanSQL(name, string(body))...)
	}
	return findings, nil
}

// ScanSQL splits src on semicolons and reports each destructive statement
// that does not carry AllowMarker.
func ScanSQL(file, src string) []Finding {
	var findings []Finding
	line := 1
	for _, raw := range strings.Split(src, ";") {
		startLine := line + leadingNewlines(raw)
		line += strings.Count(raw, "\n")

		allowed := strings.Contains(raw, AllowMarker)
		stmt := strings.TrimSpace(stripComments(raw))
		if stmt == "" || allowed {
			continue
		}
		rule := classify(stmt)
		if rule == "" {
			continue
		}
		findings = append(findings, Finding{
			File:      file,
			Line:      startLine,
			Rule:      rule,
			Statement: oneLine(stmt),
		})
	}
	return findings
}

func stripComments(src string) string {
	var b strings.Builder
	for _, l := range strings.Split(src, "\n") {
		if idx := strings.Index(l, "--"); idx >= 0 {
			l = l[:idx]
		}
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// leadingNewlines counts lines before the first code line, skipping
// blank and comment-only lines.
func leadingNewlines(src string) int {
	count := 0
	for _, l := range strings.Split(src, "\n") {
		trimmed := strings.TrimSpace(l)
		if trimmed != "" && !strings.HasPrefix(trimmed, "--") {
			return count
		}
		count++
	}
	return 0
}

func oneLine(stmt string) string {
	return strings.Join(strings.Fields(stmt), " ")
}
