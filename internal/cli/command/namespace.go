package command

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/diskemb-go/internal/cli/output"
)

// NamespaceCommand returns the namespace subcommand group.
func NamespaceCommand() *cli.Command {
	return &cli.Command{
		Name:    "namespace",
		Aliases: []string{"ns"},
		Usage:   "Inspect the namespaces backing the store",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List all namespaces and their key counts",
				Action: namespaceList,
			},
		},
	}
}

type namespaceRow struct {
	Name string `json:"name"`
	Keys uint64 `json:"keys"`
}

func namespaceList(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	names, err := e.store.ListNamespaces()
	if err != nil {
		return err
	}
	sort.Strings(names)

	rows := make([]namespaceRow, 0, len(names))
	for _, name := range names {
		ns, ok, err := e.store.Namespace(name)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		count, err := e.store.Count(c.Context, ns)
		if err != nil {
			return err
		}
		rows = append(rows, namespaceRow{Name: name, Keys: count})
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, rows)
	}

	t := &output.Table{Headers: []string{"NAME", "KEYS"}}
	for _, row := range rows {
		t.AddRow(row.Name, fmt.Sprintf("%d", row.Keys))
	}
	if err := t.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d namespaces\n", len(rows))
	return nil
}
