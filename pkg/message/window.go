package message

// Window is the engine's answer to "what is the relevant recent context"
// for a trigger message. It is computed fresh per retrieval and never
// persisted.
type Window struct {
	// Anchor is the message the trigger explicitly replies to, when it
	// resolved. It is populated even if the same message also appears in
	// Session, so callers can tell which session element is the anchor.
	Anchor *Message `json:"anchor,omitempty"`

	// Session is the inferred current session, oldest first. It may be
	// empty when the trigger stands alone.
	Session []Message `json:"session"`

	// Trigger is the message that initiated the retrieval.
	Trigger Message `json:"trigger"`
}

// HasAnchor reports whether the trigger's reply reference resolved.
func (w *Window) HasAnchor() bool {
	return w.Anchor != nil
}

// AnchorInSession reports whether the anchor is already part of the
// session window.
func (w *Window) AnchorInSession() bool {
	if w.Anchor == nil {
		return false
	}
	for i := range w.Session {
		if w.Session[i].Same(w.Anchor) {
			return true
		}
	}
	return false
}

// Flatten renders the window as a single chronological sequence: the
// anchor first when it is older than the session, then the session, then
// the trigger. No message appears twice.
func (w *Window) Flatten() []Message {
	out := make([]Message, 0, len(w.Session)+2)
	if w.Anchor != nil && !w.AnchorInSession() && !w.Anchor.Same(&w.Trigger) {
		out = append(out, *w.Anchor)
	}
	for i := range w.Session {
		if w.Session[i].Same(&w.Trigger) {
			continue
		}
		out = append(out, w.Session[i])
	}
	return append(out, w.Trigger)
}
