package strategy

// EventKind identifies a DigitPad lifecycle event
type EventKind string

const (
	EventCreated  EventKind = "created"
	EventTick     EventKind = "tick"
	EventRejected EventKind = "rejected"
	EventAnalysis EventKind = "analysis"
	EventReset    EventKind = "reset"
)

// Event is delivered to an Observer after the state change it describes
type Event struct {
	Kind     EventKind
	Strategy string
	Price    float64         // tick / rejected
	Digit    int             // tick
	Result   *AnalysisResult // analysis
}

// Observer receives strategy events. It runs synchronously inside the call
// that produced the event and must not call back into the strategy.
type Observer func(Event)

// Option configures a DigitPad
type Option func(*DigitPad)

// WithObserver attaches an observer; multiple observers are called in order
func WithObserver(obs Observer) Option {
	return func(dp *DigitPad) {
		if obs == nil {
			return
		}
		prev := dp.observer
		if prev == nil {
			dp.observer = obs
			return
		}
		dp.observer = func(e Event) {
			prev(e)
			obs(e)
		}
	}
}

func (dp *DigitPad) emit(e Event) {
	if dp.observer == nil {
		return
	}
	e.Strategy = dp.Name()
	dp.observer(e)
}
