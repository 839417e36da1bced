package clicmds

import (
	"fmt"
	"io/ioutil"

	"github.com/emicklei/dot"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/visitkit/store"
	"gitlab.com/visitkit/visitk"
)

// HistoryFlags for viewing recorded visits
func HistoryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "visitkittmp",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "max visits to print, 0 for all",
			Value: 0,
		},
		&cli.StringFlag{
			Name:  "dot",
			Usage: "export visit graph to DOT file",
			Value: "",
		},
	}
}

// History prints recorded visits
func History(cliCtx *cli.Context) error {
	visits := store.NewVisitStore(cliCtx.String("datadir") + "/visits")
	if err := visits.Init(); err != nil {
		log.Error().Err(err).Msg("failed to init visit store for viewing")
		return err
	}
	defer visits.Close()

	records, err := visits.Visits(cliCtx.Int("limit"))
	if err != nil {
		return err
	}
	fmt.Printf("Had %d visits\n", len(records))
	for _, record := range records {
		fmt.Printf("%x %s %s -> %s", record.ID, record.StartedTime.Format("15:04:05.000"), record, record.EndedTime.Format("15:04:05.000"))
		if record.Error != "" {
			fmt.Printf(" error: %s", record.Error)
		}
		fmt.Println()
	}

	if dotFile := cliCtx.String("dot"); dotFile != "" {
		g := visitGraph(records)
		if err := ioutil.WriteFile(dotFile, []byte(g.String()), 0644); err != nil {
			return errors.Wrap(err, "writing dot file")
		}
	}
	return nil
}

// visitGraph links each location to the one visited after it, edges are
// labeled with how the next visit went
func visitGraph(records []*visitk.VisitRecord) *dot.Graph {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "LR")
	if len(records) == 0 {
		return g
	}

	prev := g.Node(records[0].Location)
	for _, record := range records[1:] {
		current := g.Node(record.Location)
		edge := g.Edge(prev, current, fmt.Sprintf("%s %s", record.Strategy, record.State))
		if record.State != visitk.VisitCompleted {
			edge.Attr("style", "dashed")
			continue
		}
		prev = current
	}
	return g
}
