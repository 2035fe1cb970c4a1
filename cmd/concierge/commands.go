package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/poiesic/concierge/core"
	"github.com/poiesic/concierge/fusion"
	"github.com/poiesic/concierge/reembed"
	"github.com/poiesic/concierge/responder"
	"github.com/urfave/cli/v2"
)

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("question is required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	sid := c.String("session")
	out := c.App.Writer
	answer := func(q string) error {
		res := sys.Handle(c.Context, q, sid, nil)
		if c.Bool("json") {
			return writeJSON(out, res)
		}
		printResult(out, res)
		return nil
	}

	if c.NArg() == 1 && c.Args().First() == "-" {
		scanner := bufio.NewScanner(c.App.Reader)
		for scanner.Scan() {
			q := strings.TrimSpace(scanner.Text())
			if q == "" {
				continue
			}
			if err := answer(q); err != nil {
				return err
			}
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read questions: %w", err)
		}
	} else if err := answer(strings.Join(c.Args().Slice(), " ")); err != nil {
		return err
	}

	if c.Bool("stats") {
		if snap, ok := sys.Metrics(); ok {
			fmt.Fprintf(out, "requests=%d errors=%d fallbacks=%d avg_time_sec=%.3f\n",
				snap.Requests, snap.Errors, snap.Fallbacks, snap.AvgTimeSec)
		}
	}
	return nil
}

func printResult(out io.Writer, res *core.Result) {
	fmt.Fprintln(out, res.Answer)
	fmt.Fprintf(out, "  answer_id: %s (%s)\n", res.AnswerID, res.Responder)
	for i, ev := range res.Evidence {
		fmt.Fprintf(out, "  [%d] %.4f %s\n", i+1, ev.Score, preview(ev.Text, 100))
	}
	if res.AutoEval != nil {
		fmt.Fprintf(out, "  auto_eval: pertinence=%d clarte=%d\n", res.AutoEval.Pertinence, res.AutoEval.Clarity)
	}
}

func searchCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("query is required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	query := strings.Join(c.Args().Slice(), " ")
	var items []core.EvidenceItem
	if c.Bool("trace") {
		items, err = sys.SearchWithMonitor(c.Context, query, c.Int("top-k"), &fusion.LogMonitor{})
	} else {
		items, err = sys.Search(c.Context, query, c.Int("top-k"))
	}
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	out := c.App.Writer
	if c.Bool("json") {
		return writeJSON(out, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(out, "No results")
		return nil
	}
	for i, it := range items {
		fmt.Fprintf(out, "%d. [%.4f %s] %s\n", i+1, it.Score, it.Origin, preview(it.Text, 160))
	}
	return nil
}

func feedbackCommand(c *cli.Context) error {
	if c.NArg() < 2 {
		return fmt.Errorf("answer id and status are required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	args := c.Args().Slice()
	q := responder.FeedbackPrefix + args[0] + ":" + args[1] + ":" + strings.Join(args[2:], " ")
	res := sys.Handle(c.Context, q, c.String("session"), nil)
	fmt.Fprintln(c.App.Writer, res.Answer)
	return nil
}

func sessionShowCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("session id is required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	s, err := sys.Sessions().Get(c.Context, c.Args().First(), "")
	if err != nil {
		return err
	}
	return writeJSON(c.App.Writer, s)
}

func sessionClearCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("session id is required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	return sys.Sessions().Clear(c.Context, c.Args().First())
}

func sessionSetCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		return fmt.Errorf("session id, name and value are required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	args := c.Args().Slice()
	return sys.Sessions().SetVar(c.Context, args[0], args[1], parseVar(args[2]))
}

// parseVar keeps booleans and integers typed so session flags read back correctly.
func parseVar(raw string) any {
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	return raw
}

func sessionAttachCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("session id and file are required")
	}
	data, err := os.ReadFile(c.Args().Get(1))
	if err != nil {
		return err
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	return sys.Sessions().SetFullDocumentText(c.Context, c.Args().First(), string(data))
}

func ingestCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	pipeline, err := sys.NewIngestionPipeline()
	if err != nil {
		return err
	}
	defer pipeline.Release()

	total := 0
	for _, path := range c.Args().Slice() {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n, err := pipeline.Ingest(c.Context, filepath.Base(path), string(data))
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		total += n
		fmt.Fprintf(c.App.Writer, "%s: %d chunks\n", path, n)
	}
	fmt.Fprintf(c.App.Writer, "Ingested %d chunks\n", total)
	return nil
}

func reembedCommand(c *cli.Context) error {
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	cfg := reembed.DefaultConfig()
	cfg.BatchSize = c.Int("batch-size")
	cfg.ReportInterval = c.Int("report-interval")
	cfg.MaxRetries = c.Int("max-retries")

	r, err := sys.NewReembedder(cfg, c.App.ErrWriter)
	if err != nil {
		return err
	}
	n, err := r.Run(c.Context)
	if err != nil {
		return fmt.Errorf("reembedding failed after %d chunks: %w", n, err)
	}
	fmt.Fprintf(c.App.Writer, "Reembedded %d chunks\n", n)
	return nil
}

func auditCommand(c *cli.Context) error {
	sys, err := open(c)
	if err != nil {
		return err
	}
	defer sys.Close()

	limit := c.Int("limit")
	switch kind := c.String("kind"); kind {
	case "feedback":
		events, err := sys.Audit().ListFeedback(c.Context, limit)
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, events)
	case "evaluations":
		events, err := sys.Audit().ListEvaluations(c.Context, limit)
		if err != nil {
			return err
		}
		return writeJSON(c.App.Writer, events)
	default:
		return fmt.Errorf("invalid kind %q: must be feedback or evaluations", kind)
	}
}

func writeJSON(out io.Writer, v any) error {
	data, err := sonic.ConfigDefault.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func preview(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}
