package language

import "sort"

var validCommands = makeSet(
	"abort", "achieve", "achievement", "advertisement", "allow_reuse", "author",
	"bug", "check_achievements", "check_purchase", "check_registration", "choice",
	"comment", "config", "create", "create_array", "delay_break", "delay_ending",
	"delete", "disable_reuse", "else", "elseif", "elsif", "end_trial", "ending",
	"fake_choice", "feedback", "finish", "gosub", "gosub_scene", "goto",
	"goto_random_scene", "goto_scene", "gotoref", "hide_reuse", "if", "ifid",
	"image", "input_number", "input_text", "kindle_product", "kindle_search",
	"label", "line_break", "link", "link_button", "looplimit", "more_games",
	"page_break", "params", "print", "product", "purchase", "purchase_discount",
	"rand", "redirect_scene", "reset", "restart", "restore_game",
	"restore_purchases", "return", "save_game", "scene_list", "script",
	"selectable_if", "set", "setref", "share_this_game", "show_password",
	"sound", "stat_chart", "subscribe", "temp", "temp_array", "text_image",
	"title", "youtube",
)

// Commands that may only appear in the startup scene.
var startupCommands = makeSet(
	"create", "create_array", "scene_list", "title", "author", "achievement",
	"product", "ifid",
)

// Commands that take no arguments and must stand alone on their line.
var standaloneCommands = makeSet(
	"else", "ending", "reset", "restart", "return", "choice", "fake_choice",
	"stat_chart", "abort", "line_break", "check_achievements", "end_trial",
)

// Commands that may prefix a #option on the same line.
var optionModifierCommands = makeSet(
	"if", "selectable_if", "allow_reuse", "disable_reuse", "hide_reuse",
)

// FlowCommand identifies a command that transfers control.
type FlowCommand string

const (
	FlowGoto       FlowCommand = "goto"
	FlowGosub      FlowCommand = "gosub"
	FlowGotoScene  FlowCommand = "goto_scene"
	FlowGosubScene FlowCommand = "gosub_scene"
	FlowReturn     FlowCommand = "return"
)

var flowCommands = map[string]FlowCommand{
	"goto":        FlowGoto,
	"gosub":       FlowGosub,
	"goto_scene":  FlowGotoScene,
	"gosub_scene": FlowGosubScene,
	"return":      FlowReturn,
}

// TargetsScene reports whether the command names a scene before its label.
func (c FlowCommand) TargetsScene() bool {
	return c == FlowGotoScene || c == FlowGosubScene
}

// IsSubroutineCall reports whether the command is a gosub form.
func (c FlowCommand) IsSubroutineCall() bool {
	return c == FlowGosub || c == FlowGosubScene
}

// IsCommand reports whether name is a known command. Commands are
// lowercase in the language; "*Goto" is not a command.
func IsCommand(name string) bool {
	_, ok := validCommands[name]
	return ok
}

// IsStartupOnly reports whether name may only be used in startup.
func IsStartupOnly(name string) bool {
	_, ok := startupCommands[name]
	return ok
}

// IsStandalone reports whether name must be alone on its line.
func IsStandalone(name string) bool {
	_, ok := standaloneCommands[name]
	return ok
}

// IsOptionModifier reports whether name may precede a #option.
func IsOptionModifier(name string) bool {
	_, ok := optionModifierCommands[name]
	return ok
}

// LookupFlowCommand returns the flow-control kind of name.
func LookupFlowCommand(name string) (FlowCommand, bool) {
	c, ok := flowCommands[name]
	return c, ok
}

// Commands lists every known command in sorted order.
func Commands() []string {
	return sortedKeys(validCommands)
}

func makeSet(items ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(items))
	for _, it := range items {
		out[it] = struct{}{}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
