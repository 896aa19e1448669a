package language

import (
	"testing"

	"csls/internal/source"
)

func TestParseCommandLine(t *testing.T) {
	line := "\t*goto_scene  chapter_2 intro  "
	cmd, ok := ParseCommandLine(line, 100)
	if !ok {
		t.Fatal("expected command")
	}
	if cmd.Name != "goto_scene" || cmd.Indent != "\t" {
		t.Fatalf("unexpected command %+v", cmd)
	}
	if cmd.Star != 101 || cmd.NameSpan != (source.Span{Start: 102, End: 112}) {
		t.Fatalf("unexpected offsets %+v", cmd)
	}
	if cmd.Args != "chapter_2 intro" || cmd.ArgsSpan.Start != 114 {
		t.Fatalf("unexpected args %q at %v", cmd.Args, cmd.ArgsSpan)
	}
	words := SplitArgs(cmd.Args, cmd.ArgsSpan.Start)
	if len(words) != 2 || words[1].Text != "intro" || words[1].Span != (source.Span{Start: 124, End: 129}) {
		t.Fatalf("unexpected words %+v", words)
	}
	if _, ok := ParseCommandLine("plain text *goto x", 0); ok {
		t.Fatal("prose line must not parse as command")
	}
}

func TestFirstArg(t *testing.T) {
	first, rest, ok := FirstArg("strength  +10", 5)
	if !ok || first.Text != "strength" || rest.Text != "+10" || rest.Span.Start != 15 {
		t.Fatalf("unexpected split %+v / %+v", first, rest)
	}
}

func TestScanReplacements(t *testing.T) {
	text := `Hi ${name}, you are @{(hp > 3) fine|hurt} \${not} $!{title`
	reps := ScanReplacements(text, 10)
	if len(reps) != 3 {
		t.Fatalf("expected 3 replacements, got %d: %+v", len(reps), reps)
	}
	if reps[0].Kind != ReplaceVariable || reps[0].Content != "name" || reps[0].ContentStart != 15 {
		t.Fatalf("unexpected first replacement %+v", reps[0])
	}
	if reps[1].Kind != ReplaceMultireplace || reps[1].Content != "(hp > 3) fine|hurt" {
		t.Fatalf("unexpected multireplace %+v", reps[1])
	}
	if !reps[2].Unterminated || reps[2].Content != "title" || reps[2].End != 10+len(text) {
		t.Fatalf("unexpected unterminated replacement %+v", reps[2])
	}
}

func TestScanInlineCommandsAndStyle(t *testing.T) {
	line := "She waits... then *goto end -- or not---"
	cmds := ScanInlineCommands(line, 0)
	if len(cmds) != 1 || cmds[0].Name != "goto" {
		t.Fatalf("unexpected inline commands %+v", cmds)
	}
	if got := line[cmds[0].Span.Start:cmds[0].Span.End]; got != "*goto" {
		t.Fatalf("span covers %q", got)
	}
	style := ScanStyle(line, 0)
	if len(style) != 2 || style[0].Kind != StyleEllipsis || style[1].Kind != StyleEmDash {
		t.Fatalf("unexpected style matches %+v", style)
	}
}

func TestOptionText(t *testing.T) {
	args := "(strength > 3) *hide_reuse #Lift the gate"
	opt, ok := OptionText(args, 20)
	if !ok || opt.Text != "Lift the gate" {
		t.Fatalf("unexpected option %+v", opt)
	}
	if opt.Span.Start != 20+len("(strength > 3) *hide_reuse #") {
		t.Fatalf("unexpected option start %d", opt.Span.Start)
	}
	if _, ok := OptionText("(x) plain", 0); ok {
		t.Fatal("expected no option without #")
	}
}

func TestCountWords(t *testing.T) {
	text := "*comment not counted\nThe knight... rides on.\n*choice\n  #Follow him\n  *selectable_if (x) #Stay put\n*set x 2\nHello ${name} @{x yes sir|no}"
	// 4 + 2 + 2 + 4
	if got := CountWords(text); got != 12 {
		t.Fatalf("CountWords = %d, want 12", got)
	}
}

func TestTables(t *testing.T) {
	if !IsCommand("goto") || IsCommand("Goto") || IsCommand("frobnicate") {
		t.Fatal("unexpected command membership")
	}
	if !IsStartupOnly("create") || IsStartupOnly("temp") {
		t.Fatal("unexpected startup membership")
	}
	if c, ok := LookupFlowCommand("gosub_scene"); !ok || !c.TargetsScene() || !c.IsSubroutineCall() {
		t.Fatal("unexpected flow command")
	}
	if SymbolicOperator("%+") != OpMath || SymbolicOperator("<=") != OpComparison || SymbolicOperator("&") != OpString {
		t.Fatal("unexpected operator classification")
	}
	if f, ok := LookupFunction("NOT"); !ok || f.Returns != TypeBoolean {
		t.Fatal("expected not() to return boolean")
	}
	if code, ok := AchievementCodename("Choice_Achieved_Hero"); !ok || code != "Hero" {
		t.Fatalf("unexpected codename %q", code)
	}
	if !IsParamVariable("param_12") || IsParamVariable("param_x") {
		t.Fatal("unexpected param matching")
	}
	if !IsBuiltinVariable("choice_purchased_gold") {
		t.Fatal("expected purchased variables to be builtin")
	}
	names := ArrayElementNames("stats", 2)
	if len(names) != 3 || names[0] != "stats_1" || names[2] != "stats_count" {
		t.Fatalf("unexpected array names %v", names)
	}
}
