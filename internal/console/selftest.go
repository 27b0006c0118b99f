package console

import (
	"context"

	"github.com/noah-isme/campus-admin-console/internal/models"
)

// SelfTestTables are probed by the database self-test, in order.
var SelfTestTables = []string{
	"students", "functions", "participants", "instructors", "courses",
	"staff", "announcements", "gallery", "classes", "settings",
}

// TableProber checks that a table is readable and counts its rows.
type TableProber interface {
	Probe(ctx context.Context, table string) (int, error)
}

// RunSelfTest probes every table sequentially. A failing table does not stop the run.
func RunSelfTest(ctx context.Context, prober TableProber, tables ...string) []models.TableProbe {
	if len(tables) == 0 {
		tables = SelfTestTables
	}
	out := make([]models.TableProbe, 0, len(tables))
	for _, table := range tables {
		probe := models.TableProbe{Table: table}
		count, err := prober.Probe(ctx, table)
		if err != nil {
			probe.Error = err.Error()
		} else {
			probe.Exists = true
			probe.Count = count
		}
		out = append(out, probe)
	}
	return out
}
