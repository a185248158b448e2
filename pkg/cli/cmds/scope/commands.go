package scope

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/oscope.go/pkg/cli/sh"
	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/scope/msgs"
)

// ParseSwitch parses on/off style arguments.
func ParseSwitch(arg string) (uint32, error) {
	switch strings.ToLower(arg) {
	case "on", "yes", "enable":
		return 1, nil
	case "off", "no", "disable":
		return 0, nil
	}
	val, err := strconv.ParseBool(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid switch %q, expect on or off", arg)
	}
	if val {
		return 1, nil
	}
	return 0, nil
}

// ParseValue parses a numeric argument, 0x prefix allowed.
func ParseValue(arg string) (uint32, error) {
	val, err := strconv.ParseUint(arg, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value %q", arg)
	}
	return uint32(val), nil
}

func controlCmd(op, help string, parse func(string) (uint32, error), aliases ...string) *ishell.Cmd {
	return &ishell.Cmd{
		Name:    op,
		Aliases: aliases,
		Help:    help,
		Func: sh.MustBeConnected(func(c *ishell.Context) {
			if len(c.Args) < 1 {
				c.Err(fmt.Errorf("%s required", help))
				return
			}
			val, err := parse(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			ctl := &msgs.Control{Op: op, Value: val}
			sh.Do(c, func(s *scope.Session) error {
				return ctl.Apply(s)
			})
		}),
	}
}

var (
	// TriggerCmd sets the trigger level.
	TriggerCmd = controlCmd(msgs.OpTrigger, "LEVEL(0-255)", ParseValue, "trig")
	// HoldoffCmd sets the holdoff samples.
	HoldoffCmd = controlCmd(msgs.OpHoldoff, "SAMPLES(0-255)", ParseValue)
	// PrescalerCmd sets the ADC prescaler.
	PrescalerCmd = controlCmd(msgs.OpPrescaler, "PRESCALER(0-255)", ParseValue, "ps")
	// VrefCmd selects the ADC reference.
	VrefCmd = controlCmd(msgs.OpVref, "REF(0-255)", ParseValue)
	// SamplesCmd sets the number of samples per buffer.
	SamplesCmd = controlCmd(msgs.OpSamples, "COUNT(0-65535)", ParseValue)
	// DualCmd switches dual channel sampling.
	DualCmd = controlCmd(msgs.OpDual, "on|off", ParseSwitch)
	// InvertCmd switches trigger on falling edge.
	InvertCmd = controlCmd(msgs.OpInvert, "on|off", ParseSwitch)
	// OneShotCmd switches one-shot capture.
	OneShotCmd = controlCmd(msgs.OpOneShot, "on|off", ParseSwitch, "single")
	// FreezeCmd suspends or resumes sampling.
	FreezeCmd = controlCmd(msgs.OpFreeze, "on|off", ParseSwitch, "hold")
)

func init() {
	sh.AddCmds(
		TriggerCmd,
		HoldoffCmd,
		PrescalerCmd,
		VrefCmd,
		SamplesCmd,
		DualCmd,
		InvertCmd,
		OneShotCmd,
		FreezeCmd,
	)
}
