package main

import (
	"github.com/robotalks/oscope.go/pkg/cli/sh"
	"github.com/robotalks/oscope.go/pkg/scope"
	"github.com/robotalks/oscope.go/pkg/sim"

	_ "github.com/robotalks/oscope.go/pkg/cli/cmds/scope"
)

func init() {
	scope.SetupFlags()
	sim.SetupFlags()
}

func main() {
	sh.Main()
}
