package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/delaneyj/sinew/cell"
	"github.com/dustin/go-humanize"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/urfave/cli/v3"
)

const (
	itersKey   = "iters"
	profileKey = "profile"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write-to-settle latency across graph shapes",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Number of timed writes per graph shape",
				Value: 100,
			},
			&cli.BoolFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile to default.pgo",
				Value: false,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	iters := int(cmd.Uint(itersKey))

	if cmd.Bool(profileKey) {
		f, err := os.Create("default.pgo")
		if err != nil {
			return err
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	log.Printf("warming up")
	benchmarkPropagate(iters, true)
	benchmarkBatch(iters, true)
	return nil
}

var (
	ww = []int{1, 10, 100, 1_000}
	hh = []int{1, 10, 100, 1_000}
)

// benchmarkPropagate builds w independent chains of h derived nodes off one
// source, terminates each chain in an effect, then times single writes to the
// source end to end.
func benchmarkPropagate(iters int, shouldRender bool) {
	getValue := func(x any) int {
		switch x := x.(type) {
		case *cell.WriteableSignal[int]:
			return x.Value() + 1
		case *cell.ReadonlySignal[int]:
			return x.Value() + 1
		default:
			panic("unknown type")
		}
	}

	tbl := table.NewWriter()
	tbl.SetTitle("Sinew Cells")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "nodes", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			rs := cell.NewReactiveSystem(func(err error) {
				log.Panic(err)
			})
			src := cell.Signal(rs, 1)
			for i := 0; i < w; i++ {
				var last any
				last = src
				for j := 0; j < h; j++ {
					prev := last
					last = cell.Computed(rs, func(oldValue int) int {
						return getValue(prev)
					})
				}

				cell.Effect(rs, func() (cell.Cleanup, error) {
					getValue(last)
					return nil, nil
				})
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				src.SetValue(src.Value() + 1)
				tach.AddTime(time.Since(start))
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					humanize.Comma(int64(w * h)),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// benchmarkBatch fans one batch of writes across many sources feeding one
// subscribed sum node, so the whole write set settles as a single
// notification.
func benchmarkBatch(iters int, shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("Sinew Batched Writes")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "sources", "avg", "min", "p75", "p99", "max"})

	for _, n := range ww {
		tach := tachymeter.New(&tachymeter.Config{Size: iters})

		rs := cell.NewReactiveSystem(func(err error) {
			log.Panic(err)
		})
		srcs := make([]*cell.WriteableSignal[int], n)
		for i := range srcs {
			srcs[i] = cell.Signal(rs, i)
		}
		sum := cell.Computed(rs, func(oldValue int) int {
			total := 0
			for _, s := range srcs {
				total += s.Value()
			}
			return total
		})
		sum.Subscribe(func(int) {})

		for i := 0; i < iters; i++ {
			start := time.Now()
			rs.Batch(func() {
				for _, s := range srcs {
					s.Update(func(prev int) int { return prev + 1 })
				}
			})
			tach.AddTime(time.Since(start))
		}

		calc := tach.Calc()
		tbl.AppendRows([]table.Row{
			{
				fmt.Sprintf("batch: %d writes", n),
				humanize.Comma(int64(n)),
				calc.Time.Avg,
				calc.Time.Min,
				calc.Time.P75,
				calc.Time.P99,
				calc.Time.Max,
			},
		})
	}

	if shouldRender {
		tbl.Render()
	}
}
