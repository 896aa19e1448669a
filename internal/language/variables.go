package language

import (
	"regexp"
	"strconv"
	"strings"
)

// AchievementVariablePrefix starts the boolean variable implicitly created
// for every achievement.
const AchievementVariablePrefix = "choice_achieved_"

var builtinVariables = makeSet(
	"choice_subscribe_allowed", "choice_register_allowed", "choice_registered",
	"choice_is_web", "choice_is_steam", "choice_is_ios_app",
	"choice_is_android_app", "choice_is_omnibus_app", "choice_is_amazon_app",
	"choice_is_advertising_supported", "choice_is_trial", "choice_release_date",
	"choice_prerelease", "choice_kindle", "choice_randomtest",
	"choice_quicktest", "choice_restore_purchases_allowed",
	"choice_save_allowed", "choice_time_stamp", "choice_nightmode",
	"choice_title", "choice_purchase_supported", "choice_purchased_adfree",
	"choice_just_restored", "choice_user_restored", "implicit_control_flow",
)

var (
	variableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	paramPattern        = regexp.MustCompile(`^param_(?:count|\d+)$`)
	purchasedPattern    = regexp.MustCompile(`^choice_purchased_\w+$`)
)

// IsBuiltinVariable reports whether name is provided by the interpreter.
func IsBuiltinVariable(name string) bool {
	lower := strings.ToLower(name)
	if _, ok := builtinVariables[lower]; ok {
		return true
	}
	return purchasedPattern.MatchString(lower)
}

// IsParamVariable reports whether name is one of the variables *params
// fills in (param_count, param_1, ...).
func IsParamVariable(name string) bool {
	return paramPattern.MatchString(strings.ToLower(name))
}

// IsValidVariableName reports whether name can name a variable.
func IsValidVariableName(name string) bool {
	return variableNamePattern.MatchString(name)
}

// AchievementCodename extracts the codename from a choice_achieved_ variable.
func AchievementCodename(variable string) (string, bool) {
	if len(variable) <= len(AchievementVariablePrefix) {
		return "", false
	}
	if !strings.EqualFold(variable[:len(AchievementVariablePrefix)], AchievementVariablePrefix) {
		return "", false
	}
	return variable[len(AchievementVariablePrefix):], true
}

// AchievementVariable builds the variable name shadowing an achievement.
func AchievementVariable(codename string) string {
	return AchievementVariablePrefix + codename
}

// ArrayElementNames lists the variables *create_array and *temp_array
// define for an array of the given length: name_1..name_n and name_count.
func ArrayElementNames(name string, length int) []string {
	if length < 0 {
		length = 0
	}
	out := make([]string, 0, length+1)
	for i := 1; i <= length; i++ {
		out = append(out, name+"_"+strconv.Itoa(i))
	}
	out = append(out, name+"_count")
	return out
}

// BuiltinVariables lists the interpreter-provided variables, sorted.
func BuiltinVariables() []string {
	return sortedKeys(builtinVariables)
}
