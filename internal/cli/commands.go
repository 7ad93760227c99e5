package cli

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/lazypower/lifeclock/internal/client"
	"github.com/lazypower/lifeclock/internal/engine"
	"github.com/lazypower/lifeclock/internal/store"
	"github.com/spf13/cobra"
)

func init() {
	paramsCmd.AddCommand(paramsSetCmd)
	paramsCmd.AddCommand(paramsShowCmd)

	// Params flags
	paramsSetCmd.Flags().StringVar(&paramsDOB, "dob", "", "Date of birth (YYYY-MM-DD)")
	paramsSetCmd.Flags().StringSliceVarP(&paramsConditions, "condition", "c", nil,
		"Health condition; repeat or comma-separate ("+conditionList()+")")

	// Scores flags
	scoresCmd.Flags().Int64Var(&scoresSeed, "horizon-seed", -1, "Also project weeks/months/years with this seed")

	// Reset flags
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "Confirm clearing the choice log")
}

func conditionList() string {
	names := make([]string, len(engine.Conditions))
	for i, c := range engine.Conditions {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

// userError returns the message of a validation error, or err unchanged.
func userError(err error) error {
	var verr *engine.ValidationError
	if errors.As(err, &verr) {
		return errors.New(verr.Message)
	}
	return err
}

// --- questions command ---

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List the questions and their choices",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		for _, q := range engine.Questions() {
			fmt.Fprintf(out, "## %s (%s)\n", q.Label, q.Category)
			fmt.Fprintf(out, "%s\n", q.Text)
			for _, o := range q.Options {
				fmt.Fprintf(out, "  %-20s %s\n", o.Value, o.Text)
			}
			fmt.Fprintln(out)
		}
	},
}

// --- choose command ---

var chooseCmd = &cobra.Command{
	Use:   "choose <category> <value>",
	Short: "Record a choice",
	Long:  "Record the choice with the given value for a category's question. See 'lifeclock questions'.",
	Args:  cobra.ExactArgs(2),
	RunE:  runChoose,
}

func runChoose(cmd *cobra.Command, args []string) error {
	category := store.Category(args[0])

	// A running server caches the log, so record through it when it is up.
	if c := client.New(""); c.Healthy(cmd.Context()) {
		return chooseRemote(cmd, c, category, args[1])
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	before := sess.engine.Scores().Abstract[category]

	c, err := sess.engine.Choose(cmd.Context(), category, args[1])
	if err != nil {
		return userError(err)
	}
	after := sess.engine.Scores().Abstract[category]

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded %s: %s\n", c.Category, c.Choice)
	fmt.Fprintf(out, "  %s score %.0f -> %.0f\n", c.Category, before, after)
	return nil
}

func chooseRemote(cmd *cobra.Command, c *client.Client, category store.Category, value string) error {
	before, err := c.CategoryScores(cmd.Context())
	if err != nil {
		return err
	}
	choice, err := c.Choose(cmd.Context(), category, value)
	if err != nil {
		return err
	}
	after, err := c.CategoryScores(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Recorded %s: %s (via server)\n", choice.Category, choice.Choice)
	fmt.Fprintf(out, "  %s score %.0f -> %.0f\n", choice.Category, before[category], after[category])
	return nil
}

// --- params command ---

var (
	paramsDOB        string
	paramsConditions []string
)

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage date of birth and health conditions",
}

var paramsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Set date of birth and health conditions",
	RunE:  runParamsSet,
}

var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show life parameters and expectancies",
	RunE:  runParamsShow,
}

func runParamsSet(cmd *cobra.Command, args []string) error {
	var dob time.Time
	if paramsDOB != "" {
		var err error
		dob, err = time.Parse(time.DateOnly, paramsDOB)
		if err != nil {
			return fmt.Errorf("--dob must be YYYY-MM-DD: %w", err)
		}
	}

	if c := client.New(""); c.Healthy(cmd.Context()) {
		p, err := c.PutParameters(cmd.Context(), dob, paramsConditions)
		if err != nil {
			return err
		}
		printParams(cmd, p)
		return nil
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	p, err := sess.engine.SetLifeParameters(cmd.Context(), dob, engine.ParseConditions(paramsConditions))
	if err != nil {
		return userError(err)
	}
	printParams(cmd, p)
	return nil
}

func runParamsShow(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	p, ok := sess.engine.LifeParameters()
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), "No life parameters set. Run 'lifeclock params set --dob YYYY-MM-DD -c none'.")
		return nil
	}
	printParams(cmd, p)
	return nil
}

func printParams(cmd *cobra.Command, p store.LifeParameters) {
	out := cmd.OutOrStdout()
	conditions := make([]string, len(p.Conditions))
	for i, c := range p.Conditions {
		conditions[i] = string(c)
	}
	fmt.Fprintf(out, "Born:        %s (age %d)\n", p.DateOfBirth.Format(time.DateOnly), store.AgeOn(p.DateOfBirth, time.Now()))
	fmt.Fprintf(out, "Conditions:  %s\n", strings.Join(conditions, ", "))
	fmt.Fprintf(out, "Expectancy:  %.1f optimistic / %.1f realistic / %.1f pessimistic years\n",
		p.Expectancies.Optimistic, p.Expectancies.Realistic, p.Expectancies.Pessimistic)
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(out, "Updated:     %s\n", humanize.Time(p.UpdatedAt))
	}
}

// --- scores command ---

var scoresSeed int64

var scoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show category scores and projected outcomes",
	RunE:  runScores,
}

func runScores(cmd *cobra.Command, args []string) error {
	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	scores := sess.engine.Scores()
	out := cmd.OutOrStdout()

	var timeframes map[store.Category]engine.TimeframeScores
	if scoresSeed >= 0 {
		seed := uint64(scoresSeed)
		timeframes = engine.ProjectTimeframes(scores.Abstract, rand.New(rand.NewPCG(seed, seed)))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if timeframes != nil {
		fmt.Fprintln(tw, "CATEGORY\tNOW\tWEEKS\tMONTHS\tYEARS")
	} else {
		fmt.Fprintln(tw, "CATEGORY\tNOW")
	}
	for _, cat := range store.Categories {
		if tf, ok := timeframes[cat]; ok {
			fmt.Fprintf(tw, "%s\t%.0f\t%.0f\t%.0f\t%.0f\n", cat, scores.Abstract[cat],
				tf[engine.HorizonWeeks], tf[engine.HorizonMonths], tf[engine.HorizonYears])
			continue
		}
		fmt.Fprintf(tw, "%s\t%.0f\n", cat, scores.Abstract[cat])
	}
	tw.Flush()
	fmt.Fprintf(out, "\nAggregate: %.1f\n\n", scores.Aggregate)

	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OUTCOME\tOPTIMISTIC\tREALISTIC\tPESSIMISTIC")
	for _, d := range engine.Domains {
		r := scores.Concrete[d]
		fmt.Fprintf(tw, "%s\t%d%%\t%d%%\t%d%%\n", d, r.Optimistic, r.Realistic, r.Pessimistic)
	}
	tw.Flush()
	for _, d := range engine.Domains {
		fmt.Fprintf(out, "  * %s: %s\n", d, scores.Concrete[d].Caveat)
	}
	return nil
}

// --- reset command ---

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear the choice log",
	Long:  "Clear every recorded choice and stop the countdown. Life parameters are kept.",
	RunE:  runReset,
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return errors.New("refusing to clear the choice log without --yes")
	}

	if c := client.New(""); c.Healthy(cmd.Context()) {
		return resetRemote(cmd, c)
	}

	sess, err := openSession(cmd.Context())
	if err != nil {
		return err
	}
	defer sess.Close()

	n := len(sess.engine.Choices())
	sess.engine.Reset(cmd.Context())
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s choices.\n", humanize.Comma(int64(n)))
	return nil
}

func resetRemote(cmd *cobra.Command, c *client.Client) error {
	choices, err := c.Choices(cmd.Context())
	if err != nil {
		return err
	}
	if err := c.Reset(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s choices (via server).\n", humanize.Comma(int64(len(choices))))
	return nil
}
