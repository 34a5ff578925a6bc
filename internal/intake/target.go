package intake

import (
	"strconv"

	"basegraph.app/triage/internal/zulip"
)

// FetchTarget picks the conversation whose history should be loaded for msg.
// An explicit back-reference wins over the message's own stream and topic.
func FetchTarget(msg zulip.Message, ref *ThreadRef) (ThreadRef, bool) {
	var target ThreadRef
	switch {
	case ref != nil:
		target = *ref
	case msg.DisplayRecipient.IsList() && msg.Subject != "":
		if msg.StreamID != nil {
			target = ThreadRef{Channel: strconv.FormatInt(*msg.StreamID, 10), Topic: msg.Subject}
		}
	case !msg.DisplayRecipient.IsList() && msg.DisplayRecipient.Stream != "" && msg.Subject != "":
		target = ThreadRef{Channel: msg.DisplayRecipient.Stream, Topic: msg.Subject}
	}
	return target, target.Channel != "" && target.Topic != ""
}
