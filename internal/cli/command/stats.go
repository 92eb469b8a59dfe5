package command

import (
	"fmt"
	"os"

	"github.com/prometheus/common/expfmt"
	"github.com/urfave/cli/v2"

	"github.com/yndnr/diskemb-go/internal/cli/output"
	"github.com/yndnr/diskemb-go/internal/infra/buildinfo"
)

// StatsCommand returns the stats command.
func StatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Show store statistics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "metrics",
				Usage: "Dump collected metrics in Prometheus text format",
			},
		},
		Action: statsShow,
	}
}

type storeStats struct {
	Version      string `json:"version"`
	Dir          string `json:"dir"`
	Namespaces   int    `json:"namespaces"`
	LSMBytes     int64  `json:"lsm_bytes"`
	ValueLogSize int64  `json:"value_log_bytes"`
	TotalBytes   int64  `json:"total_bytes"`
}

func statsShow(c *cli.Context) error {
	e, err := openEnv(c)
	if err != nil {
		return err
	}
	defer e.close()

	if c.Bool("metrics") {
		return dumpMetrics(e)
	}

	names, err := e.store.ListNamespaces()
	if err != nil {
		return err
	}
	lsm, vlog := e.store.Size()

	stats := storeStats{
		Version:      buildinfo.Version,
		Dir:          e.cfg.Store.Dir,
		Namespaces:   len(names),
		LSMBytes:     lsm,
		ValueLogSize: vlog,
		TotalBytes:   lsm + vlog,
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		formatter := &output.JSONFormatter{}
		return formatter.Format(os.Stdout, stats)
	}

	t := &output.Table{Headers: []string{"FIELD", "VALUE"}}
	t.AddRow("version", stats.Version)
	t.AddRow("dir", stats.Dir)
	t.AddRow("namespaces", fmt.Sprintf("%d", stats.Namespaces))
	t.AddRow("lsm_bytes", fmt.Sprintf("%d", stats.LSMBytes))
	t.AddRow("value_log_bytes", fmt.Sprintf("%d", stats.ValueLogSize))
	t.AddRow("total_bytes", fmt.Sprintf("%d", stats.TotalBytes))
	return t.Render(os.Stdout)
}

// dumpMetrics writes the registry contents in Prometheus text exposition format.
func dumpMetrics(e *env) error {
	families, err := e.registry.Gather()
	if err != nil {
		return err
	}
	enc := expfmt.NewEncoder(os.Stdout, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, family := range families {
		if err := enc.Encode(family); err != nil {
			return err
		}
	}
	return nil
}
