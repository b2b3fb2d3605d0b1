// Package printer formats scorectl output.
package printer

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/fatih/color"

	"student-scores/models"
)

func init() {
	if os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
	blue   = color.New(color.FgBlue)
)

func Success(w io.Writer, format string, a ...any) {
	green.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, a...))
}

func Warning(w io.Writer, format string, a ...any) {
	yellow.Fprintf(w, "⚠️  %s\n", fmt.Sprintf(format, a...))
}

func Step(w io.Writer, format string, a ...any) {
	cyan.Fprintf(w, "→ %s\n", fmt.Sprintf(format, a...))
}

// Error prints a titled error with an optional hint to w and returns an
// error carrying only the title, for cobra.
func Error(w io.Writer, title, explanation, hint string) error {
	red.Fprintf(w, "%s\n", title)
	if explanation != "" {
		fmt.Fprintf(w, "\n%s\n", explanation)
	}
	if hint != "" {
		fmt.Fprintf(w, "\n%s\n", hint)
	}
	return fmt.Errorf("%s", title)
}

// Students prints the view as an aligned table, coloring the levels.
func Students(w io.Writer, records []models.StudentRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tLAST\tFIRST\tGRADE\tPRIOR\tFALL\tSPRING")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Identifier, str(r.LastName), str(r.FirstName), str(r.Grade),
			scored(r.PriorScore, r.PriorLevel), scored(r.FallScore, r.FallLevel), scored(r.SpringScore, r.SpringLevel))
	}
	tw.Flush()
}

func scored(score *float64, level *string) string {
	if score == nil {
		return "-"
	}
	s := strconv.FormatFloat(*score, 'f', -1, 64)
	if level == nil {
		return s
	}
	return s + " " + Level(*level)
}

// Level colors the default STAAR labels; other labels print plain.
func Level(label string) string {
	switch label {
	case "Did Not Meet":
		return red.Sprint(label)
	case "Approaches":
		return yellow.Sprint(label)
	case "Meets":
		return green.Sprint(label)
	case "Masters":
		return blue.Sprint(label)
	default:
		return label
	}
}

func str(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}
