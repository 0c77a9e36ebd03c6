package flow

// Kind tags the variant of an inbound dialog event.
type Kind int

const (
	// KindText is free-form text typed by the user.
	KindText Kind = iota
	// KindSelect is a press on a previously offered option.
	KindSelect
)

// Input is one inbound event delivered to the engine. Text events carry the
// message in Value; select events carry the option action and its payload.
type Input struct {
	Kind   Kind
	Action string
	Value  string
}

// Text builds a free-text input.
func Text(value string) Input {
	return Input{Kind: KindText, Value: value}
}

// Select builds an option-press input.
func Select(action, value string) Input {
	return Input{Kind: KindSelect, Action: action, Value: value}
}

// Option is one selectable choice attached to a reply.
type Option struct {
	Label  string
	Action string
	Data   string
}

// Reply is the outbound prompt produced by one engine step.
// Alert marks short rejection notices that the transport may render as a
// popup instead of a chat message. Edit asks the transport to rewrite the
// message that carried the pressed option.
type Reply struct {
	Text    string
	Options []Option
	Alert   bool
	Edit    bool
}

// Empty reports whether the reply carries nothing to show.
func (r Reply) Empty() bool {
	return r.Text == "" && len(r.Options) == 0
}
