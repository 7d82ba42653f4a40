package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v3"

	"github.com/universal-model/universal-model/cmd/universal-model/templates"
	"github.com/universal-model/universal-model/scheduler"
	"github.com/universal-model/universal-model/store"
)

type benchState struct {
	Counter int
	Items   map[string][]int
}

func bench(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	iters := int(cmd.Int(itersKey))
	report := &templates.Report{
		Store:     cfg.Store.Name,
		Generated: time.Now(),
		Iters:     iters,
	}

	start := time.Now()
	log.Printf("Flush benchmark started, %d ticks per case", iters)
	defer func() {
		log.Printf("Flush benchmark finished in %v", time.Since(start))
	}()

	for _, c := range cmd.IntSlice(consumersKey) {
		for _, b := range cmd.IntSlice(burstKey) {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := benchmarkFlush(int(c), int(b), iters)
			if err != nil {
				return err
			}
			report.Rows = append(report.Rows, row)
		}
	}

	if cmd.Bool(tableKey) {
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"consumers", "writes/tick", "avg", "p99", "max", "deliveries", "ticks/s"})
		for _, row := range report.Rows {
			table.Append([]string{
				humanize.Comma(int64(row.Consumers)),
				humanize.Comma(int64(row.Burst)),
				fmt.Sprint(row.Avg),
				fmt.Sprint(row.P99),
				fmt.Sprint(row.Max),
				humanize.Comma(row.Deliveries),
				humanize.Commaf(float64(int64(row.Rate))),
			})
		}
		table.Render()
	}

	if path := cmd.String(reportKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		templates.WriteBenchReport(f, report)
		log.Printf("Report written to %s", path)
	}
	return nil
}

// benchmarkFlush times one tick of burst writes to a sub-state watched by
// consumers consumers, from the first write to the last delivery.
func benchmarkFlush(consumers, burst, iters int) (templates.ReportRow, error) {
	loop := scheduler.NewLoop()
	st := store.New(store.WithName("bench"), store.WithScheduler(loop))
	s := store.MustSubState(st, "bench", benchState{Items: map[string][]int{}})

	var deliveries int64
	deliver := store.DeliveryFunc(func(store.Batch) { deliveries++ })
	for i := 0; i < consumers; i++ {
		if _, err := st.Register(fmt.Sprintf("bench-%d", i), deliver, store.Bind(store.KindState, s)...); err != nil {
			return templates.ReportRow{}, err
		}
	}

	tach := tachymeter.New(&tachymeter.Config{Size: iters})
	wallStart := time.Now()
	for i := 0; i < iters; i++ {
		start := time.Now()
		for j := 0; j < burst; j++ {
			s.Update(func(v *benchState) {
				v.Counter++
				key := fmt.Sprint(j % 8)
				v.Items[key] = append(v.Items[key], v.Counter)
				if len(v.Items[key]) > 16 {
					v.Items[key] = v.Items[key][1:]
				}
			})
		}
		loop.Drain()
		tach.AddTime(time.Since(start))
	}
	tach.SetWallTime(time.Since(wallStart))

	if want := int64(consumers * iters); deliveries != want {
		return templates.ReportRow{}, fmt.Errorf("%d consumers over %d ticks got %d deliveries, want %d", consumers, iters, deliveries, want)
	}

	calc := tach.Calc()
	return templates.ReportRow{
		Consumers:  consumers,
		Burst:      burst,
		Avg:        calc.Time.Avg,
		P99:        calc.Time.P99,
		Max:        calc.Time.Max,
		Deliveries: deliveries,
		Rate:       calc.Rate.Second,
	}, nil
}
