package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	tl "github.com/AnatoleLucet/timeline"
)

const stepsKey = "steps"

func main() {
	cmd := &cli.Command{
		Name:  "timelinectl",
		Usage: "Drive a toy diamond-shaped cell graph and print engine state after each write",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  stepsKey,
				Usage: "Number of writes to the source cell",
				Value: 5,
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	steps := int(cmd.Uint(stepsKey))

	// A diamond: source -> {double, triple} -> sum.
	source, writeSource := tl.Changeable(0, nil)
	double := tl.Lift(source, func(v int) int { return v * 2 }, nil)
	triple := tl.Lift(source, func(v int) int { return v * 3 }, nil)
	sum := tl.LiftN([]*tl.Cell[int]{double, triple}, func(vs []int) int { return vs[0] + vs[1] }, nil)

	tl.Notify(sum, func(v int) {
		fmt.Printf("sum is now %s\n", humanize.Comma(int64(v)))
	}, true)

	for i := 1; i <= steps; i++ {
		writeSource.Write(i)
		tl.Propagate()

		fmt.Printf("\n-- after writing source = %d --\n", i)
		tl.DumpTimeline(os.Stdout)

		stats := tl.Stats()
		fmt.Printf("propagate p50=%s p99=%s\n", stats.Time.P50, stats.Time.P99)
	}

	return nil
}
