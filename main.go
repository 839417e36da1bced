package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/visitkit/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "visitkit"
	app.Version = "0.1"
	app.Usage = "Drives page visits through a hybrid web view session"
	app.Commands = []*cli.Command{
		{
			Name:    "visit",
			Aliases: []string{"v"},
			Usage:   "cold boot a url and visit paths in page",
			Action:  clicmds.Visit,
			Flags:   clicmds.VisitFlags(),
		},
		{
			Name:    "history",
			Aliases: nil,
			Usage:   "print recorded visits",
			Action:  clicmds.History,
			Flags:   clicmds.HistoryFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
