package main

import (
	"errors"
	"fmt"

	"github.com/poiesic/mediakg/graph"
	"github.com/urfave/cli/v2"
)

func ontologyCommand() *cli.Command {
	return &cli.Command{
		Name:   "ontology",
		Usage:  "Write the ontology declaration for the configured namespace",
		Action: writeOntology,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to this file instead of standard output",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (turtle, ntriples)",
				Value: "turtle",
			},
		},
	}
}

func writeOntology(c *cli.Context) error {
	cfg := configFrom(c)
	g, err := graph.New(
		graph.WithNamespace(cfg.Graph.Namespace),
		graph.WithPrefix(cfg.Graph.Prefix),
	)
	if err != nil {
		return err
	}
	g.DeclareOntology()

	output := c.String("output")
	format, err := outputFormat(c.String("format"), cfg.Graph.Format, output, c.IsSet("format") || output == "")
	if err != nil {
		return err
	}
	if output == "" {
		return g.Encode(c.App.Writer, format)
	}
	return g.Serialize(output, format)
}

func convertCommand() *cli.Command {
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a graph file between Turtle and N-Triples",
		ArgsUsage: "<input> <output>",
		Action:    convertGraph,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format (turtle, ntriples); defaults to the output extension",
			},
		},
	}
}

func convertGraph(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("convert takes an input and an output path")
	}
	in, out := c.Args().Get(0), c.Args().Get(1)

	g, err := graph.Load(in)
	if err != nil {
		return err
	}

	var format graph.Format
	if c.IsSet("format") {
		if format, err = graph.ParseFormat(c.String("format")); err != nil {
			return err
		}
	}
	if err := g.Serialize(out, format); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Converted %d triples to %s\n", g.Len(), out)
	return nil
}

func snapshotCommand() *cli.Command {
	return &cli.Command{
		Name:  "snapshot",
		Usage: "Manage graph snapshots stored in the database",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List stored snapshots",
				Action: listSnapshots,
			},
			{
				Name:      "export",
				Usage:     "Serialize a stored snapshot to a file",
				ArgsUsage: "<name> <path>",
				Action:    exportSnapshot,
			},
			{
				Name:      "import",
				Usage:     "Store a graph file as a snapshot, replacing any snapshot of that name",
				ArgsUsage: "<path> <name>",
				Action:    importSnapshot,
			},
			{
				Name:      "delete",
				Usage:     "Delete a stored snapshot",
				ArgsUsage: "<name>",
				Action:    deleteSnapshot,
			},
		},
	}
}

func listSnapshots(c *cli.Context) error {
	ctx := c.Context
	cfg := configFrom(c)
	cfg.AI.Enabled = false

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	infos, err := kb.Snapshots().ListGraphs(ctx)
	if err != nil {
		return err
	}
	for _, info := range infos {
		fmt.Fprintf(c.App.Writer, "%s\t%d triples\t%s\t%s\n",
			info.Name, info.Triples, info.Namespace, info.SavedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func exportSnapshot(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("export takes a snapshot name and an output path")
	}
	name, path := c.Args().Get(0), c.Args().Get(1)
	ctx := c.Context
	cfg := configFrom(c)
	cfg.AI.Enabled = false

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	info, triples, err := kb.Snapshots().LoadGraph(ctx, name)
	if err != nil {
		return err
	}
	g, err := graph.FromTriples(triples, graph.WithNamespace(info.Namespace), graph.WithPrefix(cfg.Graph.Prefix))
	if err != nil {
		return err
	}
	if err := g.Serialize(path, ""); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Exported %d triples to %s\n", g.Len(), path)
	return nil
}

func importSnapshot(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("import takes an input path and a snapshot name")
	}
	path, name := c.Args().Get(0), c.Args().Get(1)
	ctx := c.Context
	cfg := configFrom(c)
	cfg.AI.Enabled = false

	g, err := graph.Load(path)
	if err != nil {
		return err
	}

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	info, err := kb.Snapshots().SaveGraph(ctx, name, g.Namespace().IRI(), g.Triples())
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Imported %d triples as %s\n", info.Triples, info.Name)
	return nil
}

func deleteSnapshot(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("delete takes a snapshot name")
	}
	ctx := c.Context
	cfg := configFrom(c)
	cfg.AI.Enabled = false

	kb, err := openKnowledgeBase(ctx, cfg)
	if err != nil {
		return err
	}
	defer kb.Close()

	return kb.Snapshots().DeleteGraph(ctx, c.Args().Get(0))
}
