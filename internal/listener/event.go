package listener

type EventKind int

const (
	StatusUpdate EventKind = iota
	UtteranceRecognized
)

// Event - a status line or a recognized utterance coming out of the worker.
type Event struct {
	Kind EventKind
	Text string
}

func Status(text string) Event {
	return Event{Kind: StatusUpdate, Text: text}
}

func Utterance(text string) Event {
	return Event{Kind: UtteranceRecognized, Text: text}
}
