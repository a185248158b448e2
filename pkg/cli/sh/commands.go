package sh

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/oscope.go/pkg/scope"
)

// Status is printed by the status command.
type Status struct {
	Port     string      `json:"port"`
	State    string      `json:"state"`
	Version  string      `json:"version,omitempty"`
	OneShot  bool        `json:"oneshot"`
	Frozen   bool        `json:"frozen"`
	Flags    uint8       `json:"flags"`
	Stats    scope.Stats `json:"stats"`
	Triggers int         `json:"triggers"`
}

// StatusOf collects the status of the shell connection.
func StatusOf(s *Shell) Status {
	sess := s.Conn.Session
	st := Status{
		Port:     s.Conn.PortName(),
		State:    sess.State().String(),
		OneShot:  sess.OneShot(),
		Frozen:   sess.Frozen(),
		Flags:    uint8(sess.Flags()),
		Stats:    sess.Stats(),
		Triggers: s.Console.Triggers(),
	}
	if v := sess.Version(); v != (scope.Version{}) {
		st.Version = v.String()
	}
	return st
}

// String implements fmt.Stringer.
func (st Status) String() string {
	port := st.Port
	if port == "" {
		port = "(none)"
	}
	return fmt.Sprintf("port=%s state=%s version=%q oneshot=%v frozen=%v flags=%d\n"+
		"frames=%d errors=%d buffers=%d requests=%d pings=%d triggers=%d",
		port, st.State, st.Version, st.OneShot, st.Frozen, st.Flags,
		st.Stats.Frames, st.Stats.DecodeErrors, st.Stats.Buffers,
		st.Stats.Requests, st.Stats.Pings, st.Triggers)
}

func formatSamples(buf []byte, dual bool) string {
	var sb strings.Builder
	for n, b := range buf {
		switch {
		case n == 0:
		case n%16 == 0:
			sb.WriteByte('\n')
		default:
			sb.WriteByte(' ')
		}
		if dual && n%2 == 1 {
			fmt.Fprintf(&sb, "%3d|", b)
		} else {
			fmt.Fprintf(&sb, "%3d", b)
		}
	}
	return sb.String()
}

var (
	// PortsCmd lists serial ports.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ports, err := ShellFrom(c).Conn.Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if ports == nil {
				ports = []string{}
			}
			text := strings.Join(ports, "\n")
			if len(ports) == 0 {
				text = "No serial ports found"
			}
			Print(c, ports, text)
		},
	}

	// ConnectCmd opens a port.
	ConnectCmd = ishell.Cmd{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			var name string
			if len(c.Args) > 0 {
				name = c.Args[0]
			} else {
				var err error
				if name, err = s.SelectPort(); err != nil {
					c.Err(err)
					return
				}
			}
			if err := s.Connect(name); err != nil {
				c.Err(err)
				return
			}
			if err := s.WaitReady(); err != nil {
				c.Err(err)
				return
			}
			c.Println(s.Conn.Session.Version().String())
		},
	}

	// DisconnectCmd closes the current port.
	DisconnectCmd = ishell.Cmd{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "",
		Func: func(c *ishell.Context) {
			ShellFrom(c).Disconnect()
		},
	}

	// StatusCmd shows the session status.
	StatusCmd = ishell.Cmd{
		Name:    "status",
		Aliases: []string{"st"},
		Help:    "",
		Func: func(c *ishell.Context) {
			st := StatusOf(ShellFrom(c))
			Print(c, st, st.String())
		},
	}

	// ParamsCmd shows the device parameters, refresh asks the device first.
	ParamsCmd = ishell.Cmd{
		Name:    "params",
		Aliases: []string{"p"},
		Help:    "[refresh]",
		Func: MustBeConnected(func(c *ishell.Context) {
			s := ShellFrom(c)
			if len(c.Args) > 0 && c.Args[0] == "refresh" {
				if err := s.Conn.Session.RequestParameters(); err != nil {
					c.Err(err)
					return
				}
				// the reply is printed by the console.
				return
			}
			p := s.Conn.Session.Params()
			Print(c, p, fmt.Sprintf("%s rate=%.0fHz", p, p.SampleRate(s.Config.ClockHz)))
		}),
	}

	// DumpCmd prints the last sample buffer.
	DumpCmd = ishell.Cmd{
		Name:    "dump",
		Aliases: []string{"buf"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			buf := s.Console.Last()
			if buf == nil {
				c.Err(fmt.Errorf("no samples"))
				return
			}
			samples := make([]int, len(buf))
			for n, b := range buf {
				samples[n] = int(b)
			}
			Print(c, samples, formatSamples(buf, s.Conn.Session.Flags().DualChannel()))
		},
	}
)
