package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"idmend/internal/dedupe"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
)

const labelWidth = 16

var counts = message.NewPrinter(language.English)

type outcome int

const (
	outcomeOK outcome = iota
	outcomeWarn
	outcomeError
)

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func formatCount(n int) string {
	return counts.Sprintf("%d", n)
}

func formatID(n int64) string {
	return counts.Sprintf("%d", n)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func writeField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "%-*s %s\n", labelWidth, label+":", value)
}

func writeOutcome(w io.Writer, kind outcome, msg string, colorize bool) {
	if colorize {
		color := ansiGreen
		switch kind {
		case outcomeWarn:
			color = ansiYellow
		case outcomeError:
			color = ansiRed
		}
		msg = color + msg + ansiReset
	}
	fmt.Fprintln(w, msg)
}

func writeReportHeader(w io.Writer, workspace string, report dedupe.Report) {
	writeField(w, "Workspace", workspace)
	writeField(w, "Feature class", report.FeatureClass)
	writeField(w, "Identifier", report.IDField)
	writeField(w, "Max identifier", formatID(report.MaxID))
	writeField(w, "Duplicates", formatCount(len(report.Detection.Duplicates)))
}

func renderAssignments(assignments []dedupe.Assignment) string {
	rows := make([][]string, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, []string{strconv.FormatInt(a.OID, 10), quoteBlank(a.Previous), a.Value})
	}
	return renderTable([]string{"OID", "Previous", "New"}, rows, []columnAlignment{alignRight, alignLeft, alignLeft})
}

func renderGroups(groups []dedupe.Group) string {
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		oids := make([]string, 0, len(g.DuplicateOIDs))
		for _, oid := range g.DuplicateOIDs {
			oids = append(oids, strconv.FormatInt(oid, 10))
		}
		rows = append(rows, []string{
			g.Value,
			strconv.FormatInt(g.FirstOID, 10),
			formatCount(len(g.DuplicateOIDs)),
			strings.Join(oids, ", "),
		})
	}
	return renderTable(
		[]string{"Identifier", "Kept OID", "Duplicates", "Duplicate OIDs"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft},
	)
}

// quoteBlank makes surrounding whitespace visible in the previous value.
func quoteBlank(s string) string {
	if strings.TrimSpace(s) != s {
		return strconv.Quote(s)
	}
	return s
}
