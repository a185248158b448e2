package scope

// Displayer consumes what the device produces.
// Methods are called with the session locked and must not call back
// into the Session synchronously.
type Displayer interface {
	// DisplaySamples receives a sample buffer. The buffer is owned by the callee.
	DisplaySamples(buf []byte)
	// TriggerDone is called when a one-shot capture completes.
	TriggerDone()
	// ParametersReceived is called for every PARAMETERS_REPLY.
	ParametersReceived(Params)
}

// Displayers fans out to multiple displayers.
type Displayers []Displayer

// DisplaySamples implements Displayer.
func (d Displayers) DisplaySamples(buf []byte) {
	for n, disp := range d {
		b := buf
		if n < len(d)-1 {
			b = append([]byte(nil), buf...)
		}
		disp.DisplaySamples(b)
	}
}

// TriggerDone implements Displayer.
func (d Displayers) TriggerDone() {
	for _, disp := range d {
		disp.TriggerDone()
	}
}

// ParametersReceived implements Displayer.
func (d Displayers) ParametersReceived(p Params) {
	for _, disp := range d {
		disp.ParametersReceived(p)
	}
}

// StateNotifier is called when the session state changes.
type StateNotifier interface {
	StateChanged(State)
}

// StateChangedFunc is func type of StateNotifier.
type StateChangedFunc func(State)

// StateChanged implements StateNotifier.
func (f StateChangedFunc) StateChanged(state State) {
	f(state)
}

// StateNotifiers fans out to multiple notifiers.
type StateNotifiers []StateNotifier

// StateChanged implements StateNotifier.
func (n StateNotifiers) StateChanged(state State) {
	for _, notifier := range n {
		notifier.StateChanged(state)
	}
}

// ErrorHandler receives non-fatal errors: decode failures,
// undecodable replies and device errors.
type ErrorHandler interface {
	HandleError(error)
}

// HandleErrorFunc is func type of ErrorHandler.
type HandleErrorFunc func(error)

// HandleError implements ErrorHandler.
func (f HandleErrorFunc) HandleError(err error) {
	f(err)
}
