package model

// ServiceHint associates a named service with the repositories, directories
// and runbook most likely relevant to it.
type ServiceHint struct {
	Name        string
	Repos       []string
	Directories map[string][]string // repo -> path prefixes
	Runbook     string
	Keywords    []string
	TopicTokens []string
}
