package intake

import (
	"net/url"
	"regexp"
	"strings"
)

// ThreadRef points at a (channel, topic) conversation mentioned in a message.
type ThreadRef struct {
	Channel string
	Topic   string
}

var (
	threadLinkPattern   = regexp.MustCompile(`(?i)#narrow/channel/(\d+)-([^/]+)/topic/([^\s)"'<>]+)`)
	threadLabelPattern  = regexp.MustCompile(`\[#([^>\]]+)\s*>`)
	manualThreadPattern = regexp.MustCompile(`#\*\*([^>]+)>([^*]+)\*\*`)
	dotEscapePattern    = regexp.MustCompile(`\.([0-9A-Fa-f]{2})`)
)

// ExtractThreadReference looks for a narrow deep link in the raw markup, then
// for a "#**Channel>Topic**" mention in the plain text.
func ExtractThreadReference(raw, plain string) (ThreadRef, bool) {
	m := threadLinkPattern.FindStringSubmatch(raw)
	if m == nil {
		manual := manualThreadPattern.FindStringSubmatch(plain)
		if manual == nil {
			return ThreadRef{}, false
		}
		return ThreadRef{
			Channel: strings.TrimSpace(manual[1]),
			Topic:   strings.TrimSpace(manual[2]),
		}, true
	}

	slug := m[2]
	topicPart, _, _ := strings.Cut(m[3], "/near/")
	ref := ThreadRef{Topic: DecodeComponent(topicPart)}

	if label := threadLabelPattern.FindStringSubmatch(plain); label != nil {
		ref.Channel = strings.TrimSpace(label[1])
	} else {
		ref.Channel = DecodeComponent(slug)
	}
	if ref.Channel == "" {
		ref.Channel = slug
	}
	return ref, true
}

// DecodeComponent undoes Zulip's URL fragment encoding, where ".2e" stands
// for "%2e". Malformed escapes are left as they are.
func DecodeComponent(encoded string) string {
	patched := dotEscapePattern.ReplaceAllString(encoded, "%$1")
	if decoded, err := url.PathUnescape(patched); err == nil {
		return decoded
	}
	return percentDecodeLenient(patched)
}

func percentDecodeLenient(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]) {
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	default:
		return c - 'A' + 10
	}
}
