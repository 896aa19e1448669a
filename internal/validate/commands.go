package validate

import (
	"strings"

	"csls/internal/cimap"
	"csls/internal/diag"
	"csls/internal/index"
	"csls/internal/language"
	"csls/internal/source"
	"csls/internal/textutil"
)

var needsArgument = map[string]bool{
	"goto": true, "gosub": true, "goto_scene": true, "gosub_scene": true,
	"label": true, "temp": true, "temp_array": true, "create": true,
	"create_array": true, "set": true, "setref": true, "achieve": true,
	"achievement": true, "if": true, "elseif": true, "elsif": true,
	"selectable_if": true, "rand": true, "input_text": true,
	"input_number": true, "delete": true, "print": true, "gotoref": true,
}

// lines runs the per-line checks: command syntax, indentation and style.
func (c *checker) lines() {
	startup := index.IsStartupFile(c.doc.URI)
	var (
		labels  cimap.Map[struct{}]
		creates cimap.Map[struct{}]
		achieve cimap.Map[struct{}]
		indent  byte
	)
	inBlock := false // inside a *scene_list or *stat_chart body
	blockIndent := 0

	for line := 0; line < c.doc.LineCount(); line++ {
		text := c.doc.LineText(line)
		start := c.doc.LineSpan(line).Start
		if textutil.IsBlank(text) {
			continue
		}
		indent = c.indentation(text, start, indent)

		if inBlock {
			if textutil.IndentWidth(text) > blockIndent {
				continue
			}
			inBlock = false
		}

		cmd, ok := language.ParseCommandLine(text, start)
		if !ok {
			c.prose(text, start)
			continue
		}
		name := cmd.Name
		cmdSpan := source.Span{Start: cmd.Star, End: cmd.NameSpan.End}
		if name == "comment" {
			continue
		}
		if !language.IsCommand(name) {
			c.out.Report(diag.CmdUnknown, diag.SevError, cmdSpan, "Unknown command *"+name)
			continue
		}
		if !startup && language.IsStartupOnly(name) {
			c.out.Report(diag.CmdStartupOnly, diag.SevError, cmdSpan,
				"*"+name+" can only be used in "+index.StartupFileName)
		}
		if language.IsStandalone(name) && cmd.Args != "" {
			c.out.Report(diag.CmdNotAlone, diag.SevError, cmd.ArgsSpan,
				"*"+name+" must be on a line by itself")
		}
		if needsArgument[name] && cmd.Args == "" {
			c.out.Report(diag.CmdMissingArgument, diag.SevError, cmdSpan,
				"*"+name+" is missing its argument")
			continue
		}

		first, _, hasFirst := language.FirstArg(cmd.Args, cmd.ArgsSpan.Start)
		switch name {
		case "label":
			if hasFirst && !once(&labels, first.Text) {
				c.out.Report(diag.CmdDuplicateLabel, diag.SevError, first.Span,
					"Label "+first.Text+" is already defined")
			}
		case "create", "create_array":
			if startup && hasFirst && !once(&creates, first.Text) {
				c.out.Report(diag.CmdDuplicateCreate, diag.SevError, first.Span,
					"Variable "+first.Text+" was already created")
			}
			if hasFirst && !language.IsValidVariableName(first.Text) {
				c.out.Report(diag.CmdMissingArgument, diag.SevError, first.Span,
					"Invalid variable name "+first.Text)
			}
		case "temp", "temp_array":
			// Re-creating a temp in the same scene is legal.
			if hasFirst && !language.IsValidVariableName(first.Text) {
				c.out.Report(diag.CmdMissingArgument, diag.SevError, first.Span,
					"Invalid variable name "+first.Text)
			}
		case "achievement":
			if startup && hasFirst && !once(&achieve, first.Text) {
				c.out.Report(diag.CmdDuplicateAchieve, diag.SevError, first.Span,
					"Achievement "+first.Text+" is already defined")
			}
		case "scene_list", "stat_chart":
			inBlock = true
			blockIndent = len(cmd.Indent)
		case "if", "elseif", "elsif", "selectable_if":
			if opt, ok := language.OptionText(cmd.Args, cmd.ArgsSpan.Start); ok {
				c.style(opt.Text, opt.Span.Start)
			}
		}
	}
}

// once records name and reports whether it was new.
func once(seen *cimap.Map[struct{}], name string) bool {
	if seen.Has(name) {
		return false
	}
	seen.Set(name, struct{}{})
	return true
}

// prose checks a line of scene text or #option text.
func (c *checker) prose(text string, start int) {
	if !c.opts.StyleGuide {
		return
	}
	for _, ic := range language.ScanInlineCommands(text, start) {
		c.out.Report(diag.StyInlineCommand, diag.SevInfo, ic.Span,
			"*"+ic.Name+" should be on its own line")
	}
	c.style(text, start)
}

func (c *checker) style(text string, start int) {
	if !c.opts.StyleGuide {
		return
	}
	// Replacement contents are code, not prose.
	skip := language.ScanReplacements(text, start)
	inCode := func(off int) bool {
		for _, r := range skip {
			if off >= r.Start && off < r.End {
				return true
			}
		}
		return false
	}
	for _, m := range language.ScanStyle(text, start) {
		if inCode(m.Span.Start) {
			continue
		}
		switch m.Kind {
		case language.StyleEllipsis:
			c.add(diag.NewInfo(diag.StyEllipsis, m.Span,
				"Use an ellipsis (…) instead of three periods").WithFix("Replace with …", "…"))
		case language.StyleEmDash:
			c.add(diag.NewInfo(diag.StyEmDash, m.Span,
				"Use an em-dash (—) instead of two hyphens").WithFix("Replace with —", "—"))
		}
	}
}

// indentation flags lines whose indentation mixes in the character the
// document did not start with. It returns the dominant character.
func (c *checker) indentation(text string, start int, dominant byte) byte {
	ws := textutil.Indentation(text)
	if ws == "" {
		return dominant
	}
	if dominant == 0 {
		dominant = ws[0]
	}
	other := byte('\t')
	name, otherName := "spaces", "tabs"
	if dominant == '\t' {
		other = ' '
		name, otherName = "tabs", "spaces"
	}
	if i := strings.IndexByte(ws, other); i >= 0 {
		c.out.Report(diag.LayMixedIndentation, diag.SevError, source.SpanAt(start, len(ws)),
			"Mixed indentation: this file is indented with "+name+" but this line uses "+otherName)
	}
	return dominant
}
