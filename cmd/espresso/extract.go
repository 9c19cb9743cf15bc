package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/christianacho/espresso/plugin/ai/braindump"
	"github.com/christianacho/espresso/server"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
	formatICS  = "ics"
	formatText = "text"
)

func newExtractCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "extract [text]",
		Short: "Extract events from a brain dump without starting the server.",
		Long:  "Extract events from the given text, or from stdin when no text is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(args, cmd.InOrStdin())
			if err != nil {
				return err
			}
			p, err := loadProfile()
			if err != nil {
				return err
			}
			extractor, err := newExtractor(p, server.NewLogger(cmd.ErrOrStderr(), p))
			if err != nil {
				return err
			}

			now := time.Now()
			events, err := extractor.ExtractEvents(cmd.Context(), text, now)
			if err != nil {
				return err
			}
			return writeEvents(cmd.OutOrStdout(), format, events, now)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json, yaml or ics")
	return cmd
}

func newDatesCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "dates",
		Short: "Print the phrase to date table for today.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeDates(cmd.OutOrStdout(), format, braindump.ResolveDates(time.Now()))
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatText, "output format: text, json or yaml")
	return cmd
}

func readInput(args []string, stdin io.Reader) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.Wrap(err, "failed to read stdin")
	}
	return string(data), nil
}

func writeEvents(w io.Writer, format string, events []braindump.NormalizedEvent, now time.Time) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(events)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(events)
	case formatICS:
		_, err := io.WriteString(w, braindump.ExportICS(events, now.Location(), now))
		return err
	case formatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tTIME\tPRIORITY\tTITLE")
		for _, ev := range events {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ev.Date, ev.DisplayTime(), ev.Priority, ev.Title)
		}
		return tw.Flush()
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func writeDates(w io.Writer, format string, table braindump.DateTable) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(table.Map())
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(table.Map())
	case formatText, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, d := range table.Entries() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", d.Phrase, d.String(), d.Date.Weekday())
		}
		return tw.Flush()
	default:
		return errors.Errorf("unknown format %q", format)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

