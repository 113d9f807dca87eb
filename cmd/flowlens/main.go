package main

import (
	"github.com/flowlens/flowlens/cmd/flowlens/commands"
	"github.com/joho/godotenv"
)

func main() {
	// A local .env may carry OPENAI_API_KEY or FLOWLENS_* overrides; it is
	// optional, so a missing file is not an error.
	_ = godotenv.Load()

	commands.Execute()
}
