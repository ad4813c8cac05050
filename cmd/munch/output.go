package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"

	"github.com/dshills/automata-go/automata/lex"
	"github.com/dshills/automata-go/automata/store"
)

var (
	errorStyle  = color.New(color.FgRed, color.Bold)
	offsetStyle = color.New(color.FgBlue)
	ruleStyle   = color.New(color.FgYellow, color.Bold)
	textStyle   = color.New(color.FgCyan)
	dimStyle    = color.New(color.Faint)
)

// printTokens writes one line per token: offset, rule, quoted text.
func printTokens(w io.Writer, tokens []lex.Token[rune]) {
	for _, tok := range tokens {
		fmt.Fprintf(w, "%s %s %s\n",
			offsetStyle.Sprintf("%6d", tok.Offset),
			ruleStyle.Sprintf("%-8s", tok.Rule),
			textStyle.Sprint(strconv.Quote(string(tok.Units))))
	}
}

// printJournal writes a journaled run, including skipped tokens.
func printJournal(w io.Writer, runID string, records []store.TokenRecord[rune]) {
	fmt.Fprintln(w, dimStyle.Sprintf("run %s: %d tokens", runID, len(records)))
	for _, rec := range records {
		fmt.Fprintf(w, "%s %s %s %s\n",
			dimStyle.Sprintf("#%-4d", rec.Seq),
			offsetStyle.Sprintf("%6d-%-6d", rec.Offset, rec.End),
			ruleStyle.Sprintf("%-8s", rec.Rule),
			textStyle.Sprint(strconv.Quote(string(rec.Units))))
	}
}

func printRules(w io.Writer, rules []namedRule) {
	for i, r := range rules {
		fmt.Fprintf(w, "%d. %s %s\n", i+1, ruleStyle.Sprintf("%-8s", r.name), r.summary)
	}
}
