// Command lc3 runs an LC-3 ROM image to completion, bridging the
// emulator core to a real terminal.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lc3/internal/emulator"
	"lc3/internal/events"
	"lc3/internal/terminal"
)

func main() {
	var debug bool

	root := &cobra.Command{
		Use:   "lc3 ROM",
		Short: "An LC-3 emulator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], debug)
		},
	}
	root.Flags().BoolVar(&debug, "debug", false, "step through execution in an interactive TUI instead of running to completion")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "lc3:", err)
		os.Exit(1)
	}
}

// run reads the ROM at path, constructs the emulator and terminal
// host, and joins their goroutines, per spec §6's CLI surface.
func run(path string, debug bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("lc3: reading ROM: %w", err)
	}

	e, err := emulator.New(data)
	if err != nil {
		return err
	}

	ch := events.NewChannel()
	host := terminal.NewHost(ch.WorldSide())
	if err := host.Start(); err != nil {
		return err
	}
	defer host.Stop()

	var g errgroup.Group
	g.Go(func() error {
		host.Run()
		return nil
	})
	g.Go(func() error {
		cpuSide := ch.CPUSide()
		if debug {
			e.Debug(cpuSide, 0x3000)
			cpuSide.Send(events.MachineControl, 1<<15) // unblock host.Run, since Debug has no HALT guarantee
			return nil
		}
		return e.Run(cpuSide)
	})

	return g.Wait()
}
