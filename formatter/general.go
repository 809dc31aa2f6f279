package formatter

type GeneralIssueFormatter struct{}

func (f *GeneralIssueFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .Filename .Location -}}
{{gutter .Padding -}}
{{message .Message .Padding -}}
{{note .Note}}
`
}

// ViolationFormatter renders a clause that failed for one invocation. The
// note names the declaration the clause was inherited from.
type ViolationFormatter struct{}

func (f *ViolationFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .Filename .Location -}}
{{gutter .Padding -}}
{{message .Message .Padding -}}
{{gutter .Padding -}}
{{note .Note}}
`
}

// StructuralFormatter renders errors that aborted the analysis of a file.
type StructuralFormatter struct{}

func (f *StructuralFormatter) IssueTemplate() string {
	return `{{header .Code .Severity .Filename .Location -}}
{{message .Message .Padding -}}
{{note "analysis of this file was aborted"}}
`
}
