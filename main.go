package main

import (
	"os"

	"github.com/Cholarajarp/AURA-AI-Unified-Resume-And-Interview-Agent/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
