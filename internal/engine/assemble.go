package engine

import "github.com/flemzord/backscroll/pkg/message"

// assembleWindow composes the anchor and session into the caller-facing
// window. The anchor stays in its own field rather than being spliced
// into the session: it may be far older than the session span and callers
// render it differently ("user is replying to: ..."). When the anchor is
// also a session element it is still reported — consumers that need a
// flat sequence rely on Window.Flatten, which never duplicates a message.
func assembleWindow(trigger message.Message, anchor AnchorResult, session []message.Message) message.Window {
	w := message.Window{
		Session: session,
		Trigger: trigger,
	}
	if anchor.Found {
		anchored := anchor.Message
		w.Anchor = &anchored
	}
	return w
}
