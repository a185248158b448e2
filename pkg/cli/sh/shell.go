package sh

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/sim"
)

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive  bool
	OutputJSON   bool
	AutoConnect  bool
	ReadyTimeout time.Duration

	Shell   *ishell.Shell
	Config  *scope.Config
	Conn    *scope.Conn
	Console *Console

	// port is used for the prompt, the notifier can't call into Conn.
	promptLock sync.Mutex
	port       string
}

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// ErrNotReady indicates the device didn't reach sampling in time.
var ErrNotReady = errors.New("device not ready")

var (
	// flags

	evalOnly   bool
	outputJSON bool

	// commands
	commands = []*ishell.Cmd{
		&PortsCmd,
		&ConnectCmd,
		&DisconnectCmd,
		&StatusCmd,
		&ParamsCmd,
		&DumpCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *scope.Config) *Shell {
	s := &Shell{
		Interactive:  !evalOnly,
		OutputJSON:   outputJSON,
		ReadyTimeout: 3 * conf.Protocol().PingTimeout,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Console = NewConsole(s.Shell)
	s.Conn = conf.NewConn(s.Console)
	s.Conn.Session.Notifier = scope.StateChangedFunc(s.stateChanged)
	s.Conn.Session.Errors = s.Console
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(unconnectedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps command func requires a connection.
func MustBeConnected(fn func(c *ishell.Context)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		if ShellFrom(c).Conn.PortName() == "" {
			c.Err(scope.ErrNotConnected)
			return
		}
		fn(c)
	}
}

// Do runs a command on the session and reports the result.
func Do(c *ishell.Context, fn func(*scope.Session) error) error {
	s := ShellFrom(c)
	if err := fn(s.Conn.Session); err != nil {
		c.Err(err)
		return err
	}
	if s.OutputJSON {
		c.Println(`{"ok":true}`)
	} else {
		c.Println("OK")
	}
	return nil
}

// Print prints v as JSON when requested, otherwise with text.
func Print(c *ishell.Context, v interface{}, text string) {
	if !ShellFrom(c).OutputJSON {
		c.Println(text)
		return
	}
	out, err := json.Marshal(v)
	if err != nil {
		c.Err(err)
		return
	}
	c.Println(string(out))
}

// WithAutoConnect sets AutoConnect.
func (s *Shell) WithAutoConnect(en bool) *Shell {
	s.AutoConnect = en
	return s
}

func (s *Shell) setPort(name string) {
	s.promptLock.Lock()
	s.port = name
	s.promptLock.Unlock()
}

func (s *Shell) stateChanged(state scope.State) {
	s.promptLock.Lock()
	name := s.port
	s.promptLock.Unlock()
	if name != "" && state != scope.StateDisconnected {
		s.Shell.SetPrompt(fmt.Sprintf("[%s %s] > ", name, state))
		return
	}
	s.Shell.SetPrompt(unconnectedPrompt)
}

// SelectPort lists ports and asks for a choice.
func (s *Shell) SelectPort() (string, error) {
	ports, err := s.Conn.Ports()
	if err != nil {
		return "", err
	}
	switch {
	case len(ports) == 0:
		return "", fmt.Errorf("no serial ports found")
	case len(ports) == 1:
		return ports[0], nil
	case !s.Interactive:
		return "", fmt.Errorf("more than 1 ports found in non-interactive mode")
	}
	return ports[s.Shell.MultiChoice(ports, "Which one to connect?")], nil
}

// Connect opens the port and starts the device bring-up.
func (s *Shell) Connect(name string) error {
	s.setPort(name)
	if err := s.Conn.ChangePort(name); err != nil {
		s.setPort("")
		return err
	}
	return nil
}

// WaitReady waits until the device is sampling.
func (s *Shell) WaitReady() error {
	deadline := time.After(s.ReadyTimeout)
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	done := s.Conn.Done()
	for {
		if s.Conn.Session.State() == scope.StateSampling {
			return nil
		}
		select {
		case <-done:
			if err := s.Conn.Err(); err != nil {
				return err
			}
			return scope.ErrNotConnected
		case <-deadline:
			return ErrNotReady
		case <-ticker.C:
		}
	}
}

// Disconnect closes the current port.
func (s *Shell) Disconnect() {
	s.setPort("")
	s.Conn.Close()
	s.Shell.SetPrompt(unconnectedPrompt)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	defer s.Conn.Close()
	if s.AutoConnect && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Connecting %s ...\n", s.Config.Port)
		}
		if err := s.Connect(s.Config.Port); err != nil {
			log.Fatalf("connect %q failed: %v", s.Config.Port, err)
		}
		if !s.Interactive {
			if err := s.WaitReady(); err != nil {
				log.Fatalf("device on %q: %v", s.Config.Port, err)
			}
		}
	}

	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	s := New(scope.NewConfig())
	t, err := sim.NewConfig().Wrap(s.Conn.Transport, s.Config.ClockHz)
	if err != nil {
		log.Fatalln(err)
	}
	s.Conn.Transport = t
	s.WithAutoConnect(true).Run(flag.Args()...)
}
