// Command decklog tracks card game decks, played games and pack openings.
package main

import (
	"os"

	"github.com/roach88/decklog/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		cli.ReportUnhandled(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
