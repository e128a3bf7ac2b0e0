package attendance

// Level is the severity of an Event.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// Event is a structured report from the core. Counts is optional.
type Event struct {
	Level   Level
	Message string
	Counts  map[string]int
}

// Observer receives events. The core never logs directly and keeps no
// reference to an observer beyond the call it was passed to.
type Observer interface {
	Observe(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) Observe(e Event) { f(e) }

// Discard drops every event.
var Discard Observer = ObserverFunc(func(Event) {})

func observe(o Observer, level Level, msg string, counts map[string]int) {
	if o == nil {
		return
	}
	o.Observe(Event{Level: level, Message: msg, Counts: counts})
}
