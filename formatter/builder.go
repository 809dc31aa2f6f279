package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"
	tt "github.com/gnolang/ccheck/internal/types"
)

// issues are not tied to source lines, so the gutter has a fixed width.
const gutterWidth = 1

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// issueFormatter is the interface that wraps the IssueTemplate method.
// Implementations of this interface are responsible for formatting specific kinds of issues.
type issueFormatter interface {
	IssueTemplate() string
}

// getIssueFormatter is a factory function that returns the appropriate issueFormatter
// based on the category of the issue.
// If no specific formatter is found, it returns a GeneralIssueFormatter.
func getIssueFormatter(category string) issueFormatter {
	switch category {
	case tt.CategoryViolation:
		return &ViolationFormatter{}
	case tt.CategoryStructural:
		return &StructuralFormatter{}
	default:
		return &GeneralIssueFormatter{}
	}
}

// GenerateFormattedIssue formats a slice of issues into a human-readable string.
// It uses the appropriate formatter for each issue based on its category.
func GenerateFormattedIssue(issues []tt.Issue) string {
	var builder strings.Builder
	for _, issue := range issues {
		formatter := getIssueFormatter(issue.Category)
		builder.WriteString(buildIssue(issue, formatter))
	}
	return builder.String()
}

/***** Issue Formatter Builder *****/

type IssueData struct {
	Category string
	Severity string
	Code     string
	Filename string
	Location string
	Padding  string
	Message  string
	Note     string
}

func buildIssue(issue tt.Issue, formatter issueFormatter) string {
	data := IssueData{
		Category: issue.Category,
		Severity: issue.Severity.String(),
		Code:     issue.Code,
		Filename: issue.Filename,
		Location: location(issue),
		Padding:  strings.Repeat(" ", gutterWidth+1),
		Message:  issue.Message,
		Note:     issue.Note,
	}

	funcMap := template.FuncMap{
		"header":  header,
		"gutter":  gutter,
		"message": message,
		"note":    note,
	}

	issueTemplate := formatter.IssueTemplate()
	tmpl := template.Must(template.New("issue").Funcs(funcMap).Parse(issueTemplate))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting issue: %v", err)
	}
	return buf.String()
}

// location renders the member an issue points at as Type::Member. Members
// that are already owner-qualified are used as they are.
func location(issue tt.Issue) string {
	switch {
	case strings.Contains(issue.Member, "::"):
		return issue.Member
	case issue.Type != "" && issue.Member != "":
		return issue.Type + "::" + issue.Member
	case issue.Type != "":
		return issue.Type
	default:
		return issue.Member
	}
}

// utils functions used in the text templates

func header(code string, severity string, filename string, loc string) string {
	var endString string
	switch severity {
	case "ERROR":
		endString = errorStyle.Sprintf("error: ")
	case "WARNING":
		endString = warningStyle.Sprintf("warning: ")
	case "INFO":
		endString = messageStyle.Sprintf("info: ")
	}

	endString += ruleStyle.Sprintf("%s\n", code)

	if filename == "" && loc == "" {
		return endString
	}

	padding := strings.Repeat(" ", gutterWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	switch {
	case filename != "" && loc != "":
		endString += fileStyle.Sprintf("%s", filename)
		endString += lineStyle.Sprintf(" :: ")
		endString += fileStyle.Sprintf("%s\n", loc)
	case filename != "":
		endString += fileStyle.Sprintf("%s\n", filename)
	default:
		endString += fileStyle.Sprintf("%s\n", loc)
	}
	return endString
}

func gutter(padding string) string {
	return lineStyle.Sprintf("%s|\n", padding)
}

func message(msg string, padding string) string {
	endString := lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprintf("%s\n", msg)
	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}

	var endString string
	endString = suggestionStyle.Sprint("Note: ")
	endString += lineStyle.Sprintf("%s\n", note)
	return endString
}
