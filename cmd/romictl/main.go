package main

import (
	"github.com/robotalks/romi.go/pkg/cli/sh"
	"github.com/robotalks/romi.go/pkg/config"
)

//go-build: CGO_ENABLED=0

func init() {
	config.SetupFlags()
}

func main() {
	sh.Main()
}
