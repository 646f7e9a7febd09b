package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/prospect-research/internal/pipeline"
)

var prospectCompany string

var companyCmd = &cobra.Command{
	Use:   "company <name>",
	Short: "Research a company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initResearch("research")
		if err != nil {
			return err
		}

		return runCompany(withConsole(ctx, cmd), env.Pipeline, cmd.OutOrStdout(), strings.Join(args, " "))
	},
}

var prospectCmd = &cobra.Command{
	Use:   "prospect <name>",
	Short: "Research a person, optionally at a company",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initResearch("research")
		if err != nil {
			return err
		}

		return runProspect(withConsole(ctx, cmd), env.Pipeline, cmd.OutOrStdout(), strings.Join(args, " "), prospectCompany)
	},
}

var askCmd = &cobra.Command{
	Use:   "ask [request]",
	Short: "Research from a natural-language request, or interactively with no arguments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initResearch("research")
		if err != nil {
			return err
		}

		ctx = withConsole(ctx, cmd)
		out := cmd.OutOrStdout()
		if len(args) > 0 {
			return runAsk(ctx, env.Pipeline, out, strings.Join(args, " "))
		}
		return askLoop(ctx, env.Pipeline, cmd.InOrStdin(), out)
	},
}

// withConsole attaches progress reporting on stderr unless JSON output was
// requested.
func withConsole(ctx context.Context, cmd *cobra.Command) context.Context {
	if jsonOutput {
		return ctx
	}
	return pipeline.WithHooks(ctx, consoleHooks(cmd.ErrOrStderr()))
}

func runCompany(ctx context.Context, r pipeline.Researcher, w io.Writer, name string) error {
	rec, err := r.Company(ctx, name)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(w, rec)
	}
	printCompany(w, rec)
	return nil
}

func runProspect(ctx context.Context, r pipeline.Researcher, w io.Writer, name, company string) error {
	rec, err := r.Prospect(ctx, name, company)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(w, rec)
	}
	printProspect(w, rec)
	return nil
}

// errNotUnderstood is returned when a request names neither a company nor a
// person.
var errNotUnderstood = eris.New("could not identify a company or person in the request")

func runAsk(ctx context.Context, r pipeline.Researcher, w io.Writer, text string) error {
	req := r.ParseRequest(ctx, text)
	if req.Type == pipeline.ResearchUnknown {
		return errNotUnderstood
	}
	s, err := r.Research(ctx, req)
	if err != nil {
		return err
	}
	if jsonOutput {
		return printJSON(w, s)
	}
	printSynthesis(w, s)
	return nil
}

// askLoop reads requests line by line until EOF or "exit".
func askLoop(ctx context.Context, r pipeline.Researcher, in io.Reader, w io.Writer) error {
	color.New(color.Bold).Fprintln(w, "Ask me to research companies or prospects in natural language.")
	fmt.Fprintln(w, "Examples:\n- Tell me about Microsoft\n- Research John Smith from Apple\nType 'exit' to quit.")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(w, "\nWhat would you like to research? ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case strings.EqualFold(line, "exit"):
			return nil
		}
		if err := runAsk(ctx, r, w, line); err != nil {
			fmt.Fprintln(w, color.YellowString(err.Error()))
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func init() {
	prospectCmd.Flags().StringVar(&prospectCompany, "company", "", "company the person works at")
	rootCmd.AddCommand(companyCmd, prospectCmd, askCmd)
}
