package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	agentpkg "github.com/hrygo/shopdesk/ai/agents"
	"github.com/hrygo/shopdesk/ai/format"
)

var askFormat string

var askCmd = &cobra.Command{
	Use:   "ask <utterance...>",
	Short: "Handle one customer utterance and print the traced reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		formatter, err := format.NewFormatter(askFormat)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		eng, err := newEngine(ctx, profileFrom(cmd))
		if err != nil {
			return err
		}

		reply, err := eng.dispatcher.Handle(ctx, strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if askFormat == "" || askFormat == format.KindText {
			fmt.Fprintln(out, reply.Output)
			return nil
		}

		// Only the customer-facing message is rendered; the trace block stays JSON.
		resp, err := formatter.Format(ctx, &format.FormatRequest{Content: reply.Message})
		if err != nil {
			return err
		}
		traceJSON, err := agentpkg.EncodeTrace(reply.Trace)
		if err != nil {
			return err
		}
		fmt.Fprint(out, agentpkg.FormatOutput(traceJSON, resp.Formatted))
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askFormat, "format", format.KindText, "message format: text or html")
}
