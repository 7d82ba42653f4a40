package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/universal-model/universal-model/bind"
	"github.com/universal-model/universal-model/logging"
	"github.com/universal-model/universal-model/metrics"
	"github.com/universal-model/universal-model/scheduler"
	"github.com/universal-model/universal-model/store"
)

type todo struct {
	Title string
	Done  bool
}

type deliveryLog struct {
	tbl  table.Writer
	tick int
}

func (d *deliveryLog) add(consumer, what string) {
	d.tbl.AppendRow(table.Row{d.tick, consumer, what})
}

type demoView struct {
	log      *deliveryLog
	teardown []func()
	state    *store.State
}

func (v *demoView) RegisterMountEffect(setup func() func()) {
	v.teardown = append(v.teardown, setup())
}

func (v *demoView) RequestRerender() {
	v.log.add("hook view", fmt.Sprintf("render count=%d", store.Get[int](v.state, "count")))
}

func (v *demoView) unmount() {
	for _, td := range v.teardown {
		td()
	}
}

type demoComponent struct {
	bind.Lifecycle
	Todos []todo
	Open  int
}

type demoHost struct {
	destroy []func()
}

func (h *demoHost) OnDestroy(fn func()) {
	h.destroy = append(h.destroy, fn)
}

func demo(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := metrics.FromConfig(cfg, prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	loop := scheduler.NewLoop(
		scheduler.WithMaxTicksPerDrain(cfg.Scheduler.MaxTicksPerDrain),
		scheduler.WithLogger(logging.NewLogger("scheduler")),
	)
	st := store.New(store.FromConfig(cfg), store.WithScheduler(loop), store.WithMetrics(m))

	count := store.MustSubState(st, "count", 0)
	todos := store.MustSubState(st, "todos", []todo{{Title: "write docs"}})
	open := store.MustSelector(st, "open", func(s *store.State) int {
		n := 0
		for _, td := range store.Get[[]todo](s, "todos") {
			if !td.Done {
				n++
			}
		}
		return n
	})
	parity := store.MustSelector(st, "parity", func(s *store.State) string {
		if store.Get[int](s, "count")%2 == 0 {
			return "even"
		}
		return "odd"
	})

	out := &deliveryLog{tbl: table.NewWriter()}
	out.tbl.SetTitle(fmt.Sprintf("Deliveries from store %q", st.Name()))
	out.tbl.SetOutputMirror(os.Stdout)
	out.tbl.AppendHeader(table.Row{"tick", "consumer", "delivered"})

	view := &demoView{log: out, state: st.State()}
	if err := bind.UseState(st, view, count); err != nil {
		return err
	}

	comp := &demoComponent{}
	err = bind.UseStateAndSelectorsNg(st, comp,
		map[string]bind.FieldBinding{
			"todos": bind.Field(todos, func(v []todo) {
				comp.Todos = v
				out.add("instance", fmt.Sprintf("Todos=%d items", len(v)))
			}),
		},
		map[string]bind.FieldBinding{
			"open": bind.Field(open, func(v int) {
				comp.Open = v
				out.add("instance", fmt.Sprintf("Open=%d", v))
			}),
		})
	if err != nil {
		return err
	}

	host := &demoHost{}
	slots, err := bind.UseSelectorsSvelte(st, "", host, parity)
	if err != nil {
		return err
	}
	slots[0].Subscribe(func(v any) { out.add("slot", fmt.Sprintf("parity=%v", v)) })

	steps := []struct {
		name string
		fn   func()
	}{
		{"increment twice", func() {
			count.Set(count.Peek() + 1)
			count.Set(count.Peek() + 1)
		}},
		{"add and finish todos", func() {
			todos.Update(func(v *[]todo) {
				*v = append(*v, todo{Title: "ship"}, todo{Title: "celebrate"})
				(*v)[0].Done = true
			})
			count.Set(count.Peek() + 1)
		}},
		{"unmount view and destroy component", func() {
			count.Set(count.Peek() + 1)
			view.unmount()
			comp.Destroy()
		}},
		{"rename a todo", func() {
			todos.Update(func(v *[]todo) { (*v)[1].Title = strings.ToUpper((*v)[1].Title) })
			count.Set(count.Peek() + 1)
		}},
	}

	go func() {
		for i, step := range steps {
			if err := loop.Dispatch(func() {
				out.tick = i + 1
				out.add("-", step.name)
				step.fn()
			}); err != nil {
				return
			}
		}
		loop.Close()
	}()
	if err := loop.Run(ctx); err != nil {
		return err
	}

	for _, fn := range host.destroy {
		fn()
	}
	out.tbl.Render()
	fmt.Printf("%s, component saw %d open of %d todos\n", st, comp.Open, len(comp.Todos))
	return nil
}
