package command

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/diskemb-go/internal/cli/output"
	"github.com/yndnr/diskemb-go/internal/storage/snapshot"
	"github.com/yndnr/diskemb-go/internal/table"
)

// SnapshotCommand returns the snapshot subcommand group.
func SnapshotCommand() *cli.Command {
	tableFlag := &cli.StringFlag{
		Name:     "table",
		Aliases:  []string{"t"},
		Usage:    "Table name",
		Required: true,
	}
	dirFlag := &cli.StringFlag{
		Name:  "snapshot-dir",
		Usage: "Managed snapshot directory",
	}

	return &cli.Command{
		Name:  "snapshot",
		Usage: "Export, import and manage table snapshots",
		Subcommands: []*cli.Command{
			{
				Name:      "export",
				Usage:     "Write a table to a snapshot file",
				ArgsUsage: "PATH",
				Flags:     []cli.Flag{tableFlag},
				Action:    snapshotExport,
			},
			{
				Name:      "import",
				Usage:     "Replace a table's contents from a snapshot file",
				ArgsUsage: "PATH",
				Flags: []cli.Flag{tableFlag,
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					}},
				Action: snapshotImport,
			},
			{
				Name:   "create",
				Usage:  "Write a table to the managed snapshot directory",
				Flags:  []cli.Flag{tableFlag, dirFlag},
				Action: snapshotCreate,
			},
			{
				Name:   "list",
				Usage:  "List managed snapshots",
				Flags:  []cli.Flag{dirFlag},
				Action: snapshotList,
			},
			{
				Name:   "prune",
				Usage:  "Apply the retention policy to managed snapshots",
				Flags:  []cli.Flag{dirFlag},
				Action: snapshotPrune,
			},
		},
	}
}

// openAdmin opens the store and a codec-free handle on the named table.
func openAdmin(c *cli.Context) (*env, *table.Admin, error) {
	e, err := openEnv(c)
	if err != nil {
		return nil, nil, err
	}
	admin, err := table.NewAdmin(e.store, table.Config{
		Name:     c.String("table"),
		ValueDim: 1,
		Logger:   e.logger,
		Metrics:  e.metrics,
	})
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, admin, nil
}

// openManager builds the snapshot manager from config and flags.
func (e *env) openManager(c *cli.Context) (*snapshot.Manager, error) {
	cfg := snapshot.Config{
		Dir:            e.cfg.Snapshot.Dir,
		RetentionCount: e.cfg.Snapshot.RetentionCount,
		RetentionDays:  e.cfg.Snapshot.RetentionDays,
	}
	if c.IsSet("snapshot-dir") {
		cfg.Dir = c.String("snapshot-dir")
	}
	return snapshot.NewManager(cfg, e.logger)
}

func snapshotExport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("snapshot path required")
	}

	e, admin, err := openAdmin(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := admin.Export(c.Context, path); err != nil {
		return err
	}
	fmt.Printf("Table '%s' exported to %s.\n", admin.Name(), path)
	return nil
}

func snapshotImport(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("snapshot path required")
	}

	name := c.String("table")
	if !c.Bool("force") {
		fmt.Printf("This replaces every record of table '%s'. Type '%s' to confirm: ", name, name)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != name {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	e, admin, err := openAdmin(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := admin.Import(c.Context, path); err != nil {
		return err
	}
	fmt.Printf("Table '%s' imported from %s.\n", name, path)
	return nil
}

func snapshotCreate(c *cli.Context) error {
	e, admin, err := openAdmin(c)
	if err != nil {
		return err
	}
	defer e.close()

	mgr, err := e.openManager(c)
	if err != nil {
		return err
	}

	info, err := mgr.Create(c.Context, admin.Export)
	if err != nil {
		return err
	}
	fmt.Printf("Snapshot %s created (%d bytes).\n", info.ID, info.Size)
	return nil
}

func snapshotList(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	mgr, err := e.openManager(c)
	if err != nil {
		return err
	}
	infos, err := mgr.List()
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, infos)
	}

	t := &output.Table{Headers: []string{"ID", "SIZE", "CREATED"}}
	for _, info := range infos {
		created := "-"
		if info.CreatedAt > 0 {
			created = time.UnixMilli(info.CreatedAt).UTC().Format("2006-01-02 15:04")
		}
		t.AddRow(info.ID, fmt.Sprintf("%d", info.Size), created)
	}
	if err := t.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d snapshots\n", len(infos))
	return nil
}

func snapshotPrune(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	mgr, err := e.openManager(c)
	if err != nil {
		return err
	}

	before, err := mgr.List()
	if err != nil {
		return err
	}
	if err := mgr.Prune(); err != nil {
		return err
	}
	after, err := mgr.List()
	if err != nil {
		return err
	}

	fmt.Printf("Pruned %d snapshot(s), %d kept.\n", len(before)-len(after), len(after))
	return nil
}
