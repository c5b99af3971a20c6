package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nicolasimarinw/hr-ontology/modules/assistant"
)

func newChatCmd() *cobra.Command {
	var (
		message   string
		showTools bool
	)
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Ask the HR assistant questions; reads stdin when --message is empty",
		RunE: func(cmd *cobra.Command, _ []string) error {
			e := newEnv()
			ctx := cmd.Context()
			defer e.tracing(ctx)()

			b := e.openBackends(ctx)
			defer b.Close(ctx)
			agent, err := e.agent(b)
			if err != nil {
				return fail(exitUsage, err)
			}

			out := cmd.OutOrStdout()
			onTool := func(tc assistant.ToolCall) {
				if showTools {
					fmt.Fprintf(cmd.ErrOrStderr(), "-> %s %s\n", tc.Name, tc.Arguments)
				}
			}

			if message != "" {
				reply, err := agent.Chat(ctx, nil, message, onTool)
				if err != nil {
					return fail(exitLLM, err)
				}
				return writeJSONLine(reply)
			}
			return repl(cmd.InOrStdin(), out, func(history []assistant.Message, q string) (string, error) {
				reply, err := agent.Chat(ctx, history, q, onTool)
				if err != nil {
					return "", err
				}
				return reply.Answer, nil
			})
		},
	}
	cmd.Flags().StringVarP(&message, "message", "m", "", "single question; prints the reply as JSON")
	cmd.Flags().BoolVar(&showTools, "tools", false, "print tool calls to stderr")
	return cmd
}

// repl keeps the conversation history between questions. "exit" or EOF
// ends it; "reset" clears the history.
func repl(in io.Reader, out io.Writer, ask func(history []assistant.Message, q string) (string, error)) error {
	var history []assistant.Message
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		q := strings.TrimSpace(scanner.Text())
		switch q {
		case "":
			fmt.Fprint(out, "> ")
			continue
		case "exit", "quit":
			return nil
		case "reset":
			history = nil
			fmt.Fprint(out, "history cleared\n> ")
			continue
		}
		answer, err := ask(history, q)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n> ", err)
			continue
		}
		fmt.Fprintf(out, "%s\n\n> ", answer)
		history = append(history,
			assistant.Message{Role: assistant.RoleUser, Content: q},
			assistant.Message{Role: assistant.RoleAssistant, Content: answer},
		)
	}
	return scanner.Err()
}
