package model

// RepoMatch is a single search hit. Path is relative to the repository root
// and Line is 1-based.
type RepoMatch struct {
	Path    string
	Line    int
	Preview string
}

type RepoCommit struct {
	SHA     string
	Author  string
	Date    string
	Message string
}
