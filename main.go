// Package main is the entry point of the regpulse CLI.
package main

import (
	"github.com/regpulse/regpulse/cmd"
	"github.com/regpulse/regpulse/internal/contract"
)

func main() {
	if err := cmd.Execute(); err != nil {
		contract.LogFatal("regpulse", err)
	}
}
