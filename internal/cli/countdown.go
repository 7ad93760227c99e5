package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/spf13/cobra"
)

var countdownWatch bool

var countdownCmd = &cobra.Command{
	Use:   "countdown",
	Short: "Show the time remaining in each scenario",
	RunE:  runCountdown,
}

func init() {
	countdownCmd.Flags().BoolVarP(&countdownWatch, "watch", "w", false, "Keep printing on every tick until interrupted")
}

func runCountdown(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if !countdownWatch {
		sess, err := openSession(cmd.Context())
		if err != nil {
			return err
		}
		defer sess.Close()

		state, ok := sess.engine.Countdown()
		if !ok {
			fmt.Fprintln(out, "No life parameters set. Run 'lifeclock params set' first.")
			return nil
		}
		printCountdown(out, state)
		return nil
	}

	ticks := make(chan engine.CountdownState, 1)
	sess, err := openSession(cmd.Context(), engine.WithTickHandler(func(s engine.CountdownState) {
		// Drop ticks the printer has not caught up with.
		select {
		case ticks <- s:
		default:
		}
	}))
	if err != nil {
		return err
	}
	defer sess.Close()

	if !sess.engine.CountdownRunning() {
		fmt.Fprintln(out, "No life parameters set. Run 'lifeclock params set' first.")
		return nil
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(done)

	for {
		select {
		case s := <-ticks:
			fmt.Fprint(out, "\033[H\033[2J")
			printCountdown(out, s)
		case <-done:
			return nil
		}
	}
}

func printCountdown(out io.Writer, s engine.CountdownState) {
	b := s.Breakdown
	fmt.Fprintf(out, "%s days %02d:%02d:%02d remaining (realistic)\n", humanize.Comma(b.Days), b.Hours, b.Minutes, b.Seconds)
	if s.Expired() {
		fmt.Fprintln(out, "The realistic countdown has reached zero.")
	}
	fmt.Fprintf(out, "  = %s hours = %s minutes = %s seconds\n",
		humanize.Comma(s.Total.Hours), humanize.Comma(s.Total.Minutes), humanize.Comma(s.Total.Seconds))
	fmt.Fprintf(out, "  choice impact: %+.0f days\n\n", s.ImpactDays)
	for _, sc := range engine.Scenarios {
		c := s.Scenarios[sc]
		fmt.Fprintf(out, "  %-12s %s days %02d:%02d:%02d\n", sc, humanize.Comma(c.Days), c.Hours, c.Minutes, c.Seconds)
	}
}
