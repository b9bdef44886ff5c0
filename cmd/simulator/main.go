package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/adeyemio/betwallet/cmd/simulator/outcomes"
)

func main() {
	app := &cli.App{
		Name:  "betwallet simulator",
		Usage: "Publishes simulated game and sports outcomes onto the wallet event bus",
		Commands: []*cli.Command{
			outcomes.New(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
