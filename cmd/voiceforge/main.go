package main

import (
	"os"

	"github.com/voiceforge/voiceforge/internal/commands"
)

func main() {
	os.Exit(commands.Execute())
}
