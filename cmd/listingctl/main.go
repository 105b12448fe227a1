// Command listingctl runs order syncs and exports without the web UI.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/JonMunkholm/listingdesk/internal/config"
	"github.com/JonMunkholm/listingdesk/internal/core"
	"github.com/JonMunkholm/listingdesk/internal/logging"
	"github.com/JonMunkholm/listingdesk/internal/webhook"
)

// Exit codes.
const (
	exitBlocked = 2
	exitEmpty   = 3
)

func main() {
	_ = godotenv.Overload()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	codeFlag := &cli.StringFlag{
		Name:    "code",
		Usage:   "access code for the order sync",
		EnvVars: []string{"WEBHOOK_ACCESS_CODE"},
	}

	return &cli.App{
		Name:  "listingctl",
		Usage: "sync orders and build listing exports from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Value: "warn", EnvVars: []string{"LOG_LEVEL"}},
		},
		Before: func(c *cli.Context) error {
			// Logs go to stderr so CSV on stdout stays clean.
			slog.SetDefault(logging.New(os.Stderr, c.String("log-level"), "text"))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "fetch all orders and print a summary",
				Flags:  []cli.Flag{codeFlag},
				Action: runSync,
			},
			{
				Name:  "export",
				Usage: "validate an order and write its CSV export",
				Flags: []cli.Flag{
					codeFlag,
					&cli.StringFlag{Name: "order", Aliases: []string{"o"}, Usage: "order id", Required: true},
					&cli.StringFlag{Name: "mode", Aliases: []string{"m"}, Value: string(core.ExportPreliminary), Usage: "preliminar or stoc-real"},
					&cli.StringFlag{Name: "out", Usage: "output file (default: stdout)"},
				},
				Action: runExport,
			},
			{
				Name:      "inspect",
				Usage:     "summarize an export CSV file",
				ArgsUsage: "FILE",
				Action:    runInspect,
			},
		},
	}
}

// headless opens a session outside the web server.
func headless(c *cli.Context) (*core.Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	code := c.String("code")
	if code == "" {
		code = cfg.Webhook.AccessCode
	}

	limiter := core.NewAutomationLimiter(cfg.Automation.MaxConcurrent, cfg.Automation.MaxWait)
	manager := core.NewSessionManager(webhook.NewClient(cfg.Webhook), nil, limiter, core.SessionOptions{
		DefaultAccessCode: code,
	})
	sess, _ := manager.Get(c.Context, "")
	return sess, nil
}

func syncOrders(c *cli.Context, sess *core.Session) ([]core.Order, error) {
	orders, ok := sess.Syncer.SyncOrders(c.Context, sess.State.AccessCode())
	if !ok {
		return nil, fmt.Errorf("%s", core.FormatUserError(core.ErrSyncFailed))
	}
	return orders, nil
}

func runSync(c *cli.Context) error {
	sess, err := headless(c)
	if err != nil {
		return err
	}
	orders, err := syncOrders(c, sess)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCOMANDĂ\tPALEȚI\tPRODUSE\tAȘTEPTATE\tGĂSITE\tGATA")
	for _, o := range orders {
		s := core.Summarize(o)
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%d\n",
			s.ID, s.Name, s.Pallets, s.Totals.Products, s.Totals.Expected, s.Totals.Found, s.Totals.Ready)
	}
	return tw.Flush()
}

func runExport(c *cli.Context) error {
	mode := core.ExportMode(c.String("mode"))
	if mode != core.ExportPreliminary && mode != core.ExportRealStock {
		return cli.Exit(fmt.Sprintf("unknown mode %q", mode), 1)
	}

	sess, err := headless(c)
	if err != nil {
		return err
	}
	if _, err := syncOrders(c, sess); err != nil {
		return err
	}
	order, ok := sess.State.FindOrder(c.String("order"))
	if !ok {
		return cli.Exit(core.FormatUserError(core.ErrNotFound), 1)
	}

	report := core.NewExporter(sess.Syncer).Run(c.Context, order, mode)
	printReport(c.App.ErrWriter, report)

	switch {
	case report.Blocked():
		return cli.Exit(core.FormatUserError(core.ErrExportBlocked), exitBlocked)
	case len(report.Records) == 0:
		return cli.Exit(core.FormatUserError(core.ErrEmptyExport), exitEmpty)
	}

	out := c.App.Writer
	if path := c.String("out"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	return core.WriteCSV(out, report.Records)
}

func printReport(w io.Writer, r core.ExportReport) {
	for _, warning := range r.Warnings {
		fmt.Fprintln(w, "atenție:", warning)
	}
	for _, issue := range r.Issues {
		fmt.Fprintf(w, "%s %s: %s\n", issue.ASIN, issue.Name, strings.Join(issue.Reasons, "; "))
	}
	fmt.Fprintf(w, "%d rânduri, %d cu erori, %d omise\n", len(r.Rows), len(r.Issues), len(r.Skipped))
}

func runInspect(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("inspect needs exactly one FILE", 1)
	}
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := core.ReadCSV(f)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(c.App.Writer, "0 rânduri")
		return nil
	}

	fmt.Fprintf(c.App.Writer, "%d rânduri\ncoloane: %s\n", len(records), strings.Join(records[0].Keys(), ", "))
	return nil
}
