package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	toggleFlagTypeName      = "bool"
	toggleImplicitLiteral   = "true"
	toggleAcceptedLiterals  = "true, false, yes, no, on, off, 1, 0"
	errorToggleValueFormat  = "invalid boolean value %q for --%s; accepted values: %s"
	flagArgumentsTerminator = "--"
)

// toggleLiterals maps the accepted spellings of a boolean flag value.
var toggleLiterals = map[string]bool{
	"true": true, "t": true, "1": true, "yes": true, "y": true, "on": true,
	"false": false, "f": false, "0": false, "no": false, "n": false, "off": false,
}

// parseToggleLiteral reports the boolean behind a literal and whether the literal is recognized.
func parseToggleLiteral(literal string) (bool, bool) {
	value, recognized := toggleLiterals[strings.ToLower(strings.TrimSpace(literal))]
	return value, recognized
}

// toggleValue is a pflag.Value for boolean flags that also accepts yes/no and on/off.
type toggleValue struct {
	target   *bool
	flagName string
}

func (value *toggleValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = toggleImplicitLiteral
	}
	parsed, recognized := parseToggleLiteral(input)
	if !recognized {
		return fmt.Errorf(errorToggleValueFormat, input, value.flagName, toggleAcceptedLiterals)
	}
	*value.target = parsed
	return nil
}

func (value *toggleValue) String() string {
	if value == nil || value.target == nil {
		return strconv.FormatBool(false)
	}
	return strconv.FormatBool(*value.target)
}

func (value *toggleValue) Type() string {
	return toggleFlagTypeName
}

// addToggleFlag registers a boolean flag that may be given bare, as --name=value, or as --name value.
func addToggleFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	flagSet.Var(&toggleValue{target: target, flagName: name}, name, usage)
	registered := flagSet.Lookup(name)
	registered.DefValue = strconv.FormatBool(defaultValue)
	registered.NoOptDefVal = toggleImplicitLiteral
}

// expandToggleArguments rewrites "--name value" into "--name=value" for toggle flags whose following
// argument is a boolean literal, so pflag does not treat the literal as a positional argument.
func expandToggleArguments(command *cobra.Command, arguments []string) []string {
	toggleNames := map[string]struct{}{}
	gatherToggleNames(command, toggleNames)
	if len(toggleNames) == 0 {
		return arguments
	}

	expanded := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == flagArgumentsTerminator {
			return append(expanded, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(argument, "--")
		if isLongFlag && !strings.Contains(flagName, "=") && index+1 < len(arguments) {
			if _, isToggle := toggleNames[flagName]; isToggle {
				next := arguments[index+1]
				if _, recognized := parseToggleLiteral(next); recognized && !strings.HasPrefix(next, "-") {
					expanded = append(expanded, argument+"="+next)
					index++
					continue
				}
			}
		}
		expanded = append(expanded, argument)
	}
	return expanded
}

func gatherToggleNames(command *cobra.Command, names map[string]struct{}) {
	collect := func(flag *pflag.Flag) {
		if flag.Value.Type() == toggleFlagTypeName {
			names[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		gatherToggleNames(child, names)
	}
}
