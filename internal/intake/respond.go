package intake

import (
	"strings"

	"basegraph.app/triage/internal/zulip"
)

// botWord always triggers a response when it appears in stream text.
const botWord = "triage"

// Identity is how the bot recognises itself and mentions of itself.
type Identity struct {
	Email   string
	Aliases []string
}

// NewIdentity derives aliases from the bot address: the local part without
// any "+tag", its prefixes before "-", "_" and ".", then the operator's extra
// aliases. Duplicates are dropped and order is kept.
func NewIdentity(email string, extra []string) Identity {
	handle, _, _ := strings.Cut(email, "@")
	handle, _, _ = strings.Cut(handle, "+")

	candidates := []string{strings.ToLower(handle)}
	for _, sep := range []string{"-", "_", "."} {
		if prefix, _, found := strings.Cut(handle, sep); found {
			candidates = append(candidates, strings.ToLower(prefix))
		}
	}
	for _, alias := range extra {
		if alias = strings.ToLower(strings.TrimSpace(alias)); alias != "" {
			candidates = append(candidates, alias)
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	aliases := make([]string, 0, len(candidates))
	for _, alias := range candidates {
		if _, dup := seen[alias]; dup {
			continue
		}
		seen[alias] = struct{}{}
		aliases = append(aliases, alias)
	}
	return Identity{Email: email, Aliases: aliases}
}

// IsSelf guards against answering our own messages.
func (id Identity) IsSelf(sender string) bool {
	return sender != "" && sender == id.Email
}

func (id Identity) ShouldRespond(msg zulip.Message, plain string) bool {
	if msg.IsPrivate() {
		return true
	}
	if msg.HasFlag("mentioned") || msg.HasFlag("mentioned-inline") {
		return true
	}

	content := strings.ToLower(plain)
	if strings.Contains(content, botWord) {
		return true
	}
	for _, alias := range id.Aliases {
		if alias == "" {
			continue
		}
		// "@alias", "@**alias**" and "@_alias" all contain the bare alias.
		if strings.Contains(content, alias) {
			return true
		}
	}
	return false
}
