package sh

import (
	"errors"
	"sync"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/oscope.go/pkg/scope"
)

// Console is a scope.Displayer keeping the last buffer for the shell
// and printing notable events.
type Console struct {
	Shell *ishell.Shell

	lock     sync.Mutex
	last     []byte
	triggers int
}

// NewConsole creates a Console.
func NewConsole(shell *ishell.Shell) *Console {
	return &Console{Shell: shell}
}

// DisplaySamples implements scope.Displayer.
func (c *Console) DisplaySamples(buf []byte) {
	c.lock.Lock()
	c.last = buf
	c.lock.Unlock()
}

// TriggerDone implements scope.Displayer.
func (c *Console) TriggerDone() {
	c.lock.Lock()
	c.triggers++
	c.lock.Unlock()
	c.println("triggered")
}

// ParametersReceived implements scope.Displayer.
func (c *Console) ParametersReceived(p scope.Params) {
	c.println("parameters: " + p.String())
}

// HandleError implements scope.ErrorHandler.
func (c *Console) HandleError(err error) {
	var derr *scope.DeviceError
	if errors.As(err, &derr) {
		c.println("device error: " + derr.Error())
	}
}

// Last returns the last received buffer.
func (c *Console) Last() []byte {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.last
}

// Triggers returns the number of completed one-shot captures.
func (c *Console) Triggers() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.triggers
}

func (c *Console) println(msg string) {
	if c.Shell != nil {
		c.Shell.Println(msg)
	}
}
