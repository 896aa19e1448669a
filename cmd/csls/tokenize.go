package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"csls/internal/expr"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] <expression>",
	Short: "Tokenize and type-check a ChoiceScript expression",
	Long: `Tokenize breaks an expression such as 'strength + 10 > 50' into typed
tokens and reports the parse and type errors the checker would report.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("set", false, "tokenize as the value of *set, allowing '+ 2' style changes")
}

type tokenJSON struct {
	Type   string      `json:"type"`
	Text   string      `json:"text"`
	Start  int         `json:"start"`
	End    int         `json:"end"`
	Tokens []tokenJSON `json:"tokens,omitempty"`
}

type tokenizeOutput struct {
	Expression string      `json:"expression"`
	EvalType   string      `json:"evalType"`
	Tokens     []tokenJSON `json:"tokens"`
	Errors     []errorJSON `json:"errors"`
}

type errorJSON struct {
	Severity string `json:"severity"`
	Code     string `json:"code"`
	Message  string `json:"message"`
	Start    int    `json:"start"`
	End      int    `json:"end"`
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	isSet, err := cmd.Flags().GetBool("set")
	if err != nil {
		return fmt.Errorf("failed to get set flag: %w", err)
	}
	text := strings.Join(args, " ")
	e := expr.Tokenize(text, 0, isSet)
	out := buildTokenizeOutput(e)

	switch strings.ToLower(format) {
	case "pretty":
		writeTokensPretty(cmd.OutOrStdout(), out)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
	if len(out.Errors) > 0 {
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		fmt.Fprintf(os.Stderr, "%d error(s)\n", len(out.Errors))
		return errDiagnosticsFailed
	}
	return nil
}

func buildTokenizeOutput(e *expr.Expression) tokenizeOutput {
	out := tokenizeOutput{
		Expression: e.BareExpression,
		EvalType:   e.EvalType.String(),
		Tokens:     tokensJSON(e),
		Errors:     []errorJSON{},
	}
	for _, d := range e.Errors() {
		out.Errors = append(out.Errors, errorJSON{
			Severity: strings.ToLower(d.Severity.String()),
			Code:     d.Code.ID(),
			Message:  d.Message,
			Start:    d.Span.Start,
			End:      d.Span.End,
		})
	}
	return out
}

// tokensJSON lists the tokens of e, descending into compound tokens.
func tokensJSON(e *expr.Expression) []tokenJSON {
	out := make([]tokenJSON, 0, len(e.Tokens))
	for i, tok := range e.Tokens {
		t := tokenJSON{
			Type:  tok.Type.String(),
			Text:  tok.Text,
			Start: tok.Index,
			End:   tok.End(),
		}
		if inner := e.Inner(i); inner != nil {
			t.Tokens = tokensJSON(inner)
		}
		out = append(out, t)
	}
	return out
}

func writeTokensPretty(w io.Writer, out tokenizeOutput) {
	writeTokenLines(w, out.Tokens, 0)
	fmt.Fprintf(w, "type: %s\n", out.EvalType)
	for _, e := range out.Errors {
		fmt.Fprintf(w, "%s[%s] %d:%d: %s\n", e.Severity, e.Code, e.Start, e.End, e.Message)
	}
}

func writeTokenLines(w io.Writer, tokens []tokenJSON, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, t := range tokens {
		fmt.Fprintf(w, "%s%-4d %-22s %q\n", indent, t.Start, t.Type, t.Text)
		writeTokenLines(w, t.Tokens, depth+1)
	}
}
