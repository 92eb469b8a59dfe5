package command

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/diskemb-go/internal/cli/output"
	"github.com/yndnr/diskemb-go/internal/table"
)

// tableFlags are the flags shared by the table subcommands.
func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "table",
			Aliases:  []string{"t"},
			Usage:    "Table name",
			Required: true,
		},
		&cli.IntFlag{
			Name:  "dim",
			Usage: "Elements per value vector",
			Value: 1,
		},
		&cli.StringFlag{
			Name:  "key-type",
			Usage: "Key type: int32, int64, string",
			Value: "int64",
		},
		&cli.StringFlag{
			Name:  "value-type",
			Usage: "Value element type: int64, float32, float64, string",
			Value: "float32",
		},
	}
}

// TableCommand returns the table subcommand group.
func TableCommand() *cli.Command {
	return &cli.Command{
		Name:  "table",
		Usage: "Read and write table records",
		Subcommands: []*cli.Command{
			{
				Name:      "get",
				Usage:     "Look up value vectors by key",
				ArgsUsage: "KEY...",
				Flags: append(tableFlags(),
					&cli.StringFlag{
						Name:  "default",
						Usage: "Default vector for absent keys, comma-separated",
					}),
				Action: tableGet,
			},
			{
				Name:      "put",
				Usage:     "Store one value vector",
				ArgsUsage: "KEY ELEMENT...",
				Flags:     tableFlags(),
				Action:    tablePut,
			},
			{
				Name:      "del",
				Usage:     "Delete records by key",
				ArgsUsage: "KEY...",
				Flags:     tableFlags(),
				Action:    tableDel,
			},
			{
				Name:  "clear",
				Usage: "Remove every record of a table",
				Flags: append(tableFlags(),
					&cli.BoolFlag{
						Name:    "force",
						Aliases: []string{"f"},
						Usage:   "Skip confirmation",
					}),
				Action: tableClear,
			},
			{
				Name:   "size",
				Usage:  "Show the record count of a table",
				Flags:  tableFlags(),
				Action: tableSize,
			},
			{
				Name:   "keys",
				Usage:  "List every key of a table",
				Flags:  tableFlags(),
				Action: tableKeys,
			},
		},
	}
}

// openTyped opens the store and builds a typed table view from the flags.
func openTyped(c *cli.Context) (*env, typedTable, error) {
	e, err := openEnv(c)
	if err != nil {
		return nil, nil, err
	}

	cfg := table.Config{
		Name:     c.String("table"),
		ValueDim: c.Int("dim"),
		Logger:   e.logger,
		Metrics:  e.metrics,
	}
	tt, err := newTyped(e.store, cfg, c.String("key-type"), c.String("value-type"))
	if err != nil {
		e.close()
		return nil, nil, err
	}
	return e, tt, nil
}

func tableGet(c *cli.Context) error {
	keys := c.Args().Slice()
	if len(keys) == 0 {
		return fmt.Errorf("at least one key required")
	}

	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	def := tt.ZeroDefault()
	if s := c.String("default"); s != "" {
		def = strings.Split(s, ",")
	}

	rows, err := tt.Find(c.Context, keys, def)
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		result := make(map[string][]string, len(keys))
		for i, k := range keys {
			result[k] = rows[i]
		}
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, result)
	}

	t := &output.Table{Headers: []string{"KEY", "VALUE"}}
	for i, k := range keys {
		t.AddRow(k, strings.Join(rows[i], ","))
	}
	return t.Render(os.Stdout)
}

func tablePut(c *cli.Context) error {
	args := c.Args().Slice()
	if len(args) < 2 {
		return fmt.Errorf("usage: table put KEY ELEMENT...")
	}
	key, values := args[0], args[1:]
	if len(values) != c.Int("dim") {
		return fmt.Errorf("%d elements given, table dimension is %d", len(values), c.Int("dim"))
	}

	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := tt.Insert(c.Context, key, values); err != nil {
		return err
	}
	fmt.Printf("Stored %s.\n", key)
	return nil
}

func tableDel(c *cli.Context) error {
	keys := c.Args().Slice()
	if len(keys) == 0 {
		return fmt.Errorf("at least one key required")
	}

	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := tt.Remove(c.Context, keys); err != nil {
		return err
	}
	fmt.Printf("Deleted %d key(s).\n", len(keys))
	return nil
}

func tableClear(c *cli.Context) error {
	name := c.String("table")
	if !c.Bool("force") {
		fmt.Printf("This removes every record of table '%s'. Type '%s' to confirm: ", name, name)
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != name {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	if err := tt.Admin().Clear(c.Context); err != nil {
		return err
	}
	fmt.Printf("Table '%s' cleared.\n", name)
	return nil
}

func tableSize(c *cli.Context) error {
	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	n, err := tt.Admin().Size(c.Context)
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	stats := map[string]any{
		"table":   c.String("table"),
		"records": n,
	}
	if flags.Wide {
		stats["store_bytes"] = tt.Admin().MemoryUsed()
	}
	formatter := output.NewFormatter(output.Format(flags.Output), flags.Wide)
	return formatter.Format(os.Stdout, stats)
}

func tableKeys(c *cli.Context) error {
	e, tt, err := openTyped(c)
	if err != nil {
		return err
	}
	defer e.close()

	keys, err := tt.Keys(c.Context)
	if err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, keys)
	}
	for _, k := range keys {
		fmt.Println(k)
	}
	return nil
}
