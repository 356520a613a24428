package main

import (
	"FolderSearch/internal"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:      "FolderSearch",
		Usage:     "Recursive keyword search through text files and archives",
		ArgsUsage: "FOLDER",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "keyword",
				Aliases:  []string{"k"},
				Usage:    "Keyword to search for (1-100 characters)",
				Required: true,
			},
			&cli.StringSliceFlag{
				Name:    "ext",
				Aliases: []string{"e"},
				Usage:   "File extensions to scan (comma separated)",
				Value:   cli.NewStringSlice(internal.DefaultExtensions),
			},
			&cli.BoolFlag{
				Name:  "match-once",
				Usage: "Stop scanning a file after its first match",
			},
			&cli.BoolFlag{
				Name:  "last-match",
				Usage: "Keep only the last match in each file",
			},
			&cli.BoolFlag{
				Name:  "case-sensitive",
				Usage: "Compare keyword and lines verbatim",
			},
			&cli.BoolFlag{
				Name:  "include-nomatch",
				Usage: "Emit a sentinel row for files without matches",
				Value: true,
			},
			&cli.BoolFlag{
				Name:  "show-all",
				Usage: "Disable the preview row cap",
			},
			&cli.BoolFlag{
				Name:  "archives",
				Usage: "Search inside archives (.zip, .7z)",
				Value: true,
			},
			&cli.StringFlag{
				Name:  "csv",
				Usage: "Export results to this CSV file",
			},
			&cli.StringFlag{
				Name:  "xlsx",
				Usage: "Export results to this Excel file",
			},
			&cli.StringFlag{
				Name:  "logfile",
				Usage: "Write logs into file instead of stdout",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level: debug, info, warn, error",
				Value: "info",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the keyword in the history file",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		logrus.Fatal(err)
	}
}

func run(c *cli.Context) error {
	internal.InitLogger(c.String("logfile"), c.String("log-level"))

	opts := internal.ScanOptions{
		Root:               c.Args().First(),
		Keyword:            c.String("keyword"),
		Extensions:         c.StringSlice("ext"),
		MatchOnce:          c.Bool("match-once"),
		UseLastMatch:       c.Bool("last-match"),
		CaseSensitive:      c.Bool("case-sensitive"),
		IncludeNonMatching: c.Bool("include-nomatch"),
		ShowAllInPreview:   c.Bool("show-all"),
		SearchArchives:     c.Bool("archives"),
	}

	co, err := internal.NewCoordinator()
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	defer co.Close()
	defer co.RemoveResult()

	if err := co.Start(opts); err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// Ctrl+C cancels the scan cooperatively.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		co.Cancel()
	}()

	terminal := observe(co)
	if terminal.State == internal.StateFailed {
		return cli.Exit(terminal.Status, 1)
	}

	printPreview(co, terminal)

	store := co.ResultPath()
	if dst := c.String("csv"); dst != "" && store != "" {
		if err := internal.ExportCSV(store, dst); err != nil {
			logrus.WithError(err).Error("CSV export failed")
		} else {
			logrus.Infof("Results exported to %s", dst)
		}
	}
	if dst := c.String("xlsx"); dst != "" && store != "" {
		if err := internal.ExportExcel(store, dst); err != nil {
			logrus.WithError(err).Error("Excel export failed")
		} else {
			logrus.Infof("Results exported to %s", dst)
		}
	}

	if !c.Bool("no-history") {
		path := internal.HistoryPath()
		if err := internal.SaveHistory(path, internal.PushHistory(internal.LoadHistory(path), opts.Keyword)); err != nil {
			logrus.WithError(err).Debug("save keyword history")
		}
	}

	st := co.LastState()
	fmt.Printf(
		"\n======= %s =======\nFiles scanned: %d/%d\nMatches found: %d\nErrors: %d\n",
		terminal.Status, st.Processed, st.Total, st.Matches, st.Errors,
	)
	return nil
}

// observe drains the progress feed, rendering a bar, until the terminal
// event arrives.
func observe(co *internal.Coordinator) internal.Progress {
	var bar *progressbar.ProgressBar
	for ev := range co.Events() {
		if bar == nil && ev.Total > 0 {
			bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionSetDescription("scanning"),
				progressbar.OptionShowCount(),
			)
		}
		if bar != nil {
			_ = bar.Set(ev.Processed)
		}
		if ev.Terminal {
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}
			return ev
		}
	}
	return internal.Progress{}
}

func printPreview(co *internal.Coordinator, terminal internal.Progress) {
	preview := co.Preview()
	if len(preview) == 0 {
		fmt.Println("No matches found.")
		return
	}
	shown := 0
	for _, row := range preview {
		fmt.Printf("%s (Line %s): %s\n", row.Path, row.Line, row.Text)
		if row.Line.IsMatch() {
			shown++
		}
	}
	if terminal.Matches > shown {
		fmt.Printf("\n--- Showing first %d of %d total matches ---\n", shown, terminal.Matches)
		fmt.Println("Use --csv or --xlsx to export all results.")
	}
}
