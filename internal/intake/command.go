package intake

import (
	"regexp"
	"strings"
)

type Command string

const (
	CommandNone    Command = ""
	CommandStatus  Command = "status"
	CommandRerun   Command = "rerun"
	CommandProduct Command = "product"
)

const productToken = "/product"

var productPattern = regexp.MustCompile(`(?i)(?:^|\s)/product\b`)

var commandAliases = []struct {
	command Command
	aliases []string
}{
	{CommandStatus, []string{"status", "triage status", "status?", "show status"}},
	{CommandRerun, []string{"rerun", "rerun analysis", "rerun triage", "next steps", "next-steps"}},
	{CommandProduct, []string{"/product", "product"}},
}

// ExtractCommand finds a command in flattened message text. "/product" is
// recognised anywhere; other commands must open the message. The remainder
// is the trimmed text following the command token.
func ExtractCommand(plain string) (Command, string) {
	text := strings.TrimSpace(plain)

	if loc := productPattern.FindStringIndex(text); loc != nil {
		idx := loc[0] + strings.Index(strings.ToLower(text[loc[0]:loc[1]]), productToken)
		return CommandProduct, strings.TrimSpace(text[idx+len(productToken):])
	}

	lowered := strings.ToLower(text)
	for _, entry := range commandAliases {
		for _, alias := range entry.aliases {
			if lowered == alias {
				return entry.command, ""
			}
			if len(text) > len(alias) && strings.EqualFold(text[:len(alias)], alias) && text[len(alias)] == ' ' {
				return entry.command, strings.TrimSpace(text[len(alias):])
			}
		}
	}
	return CommandNone, ""
}
