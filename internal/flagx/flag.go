// Package flagx lets several independent flag sets share os.Args: each set
// sees only the flags it declares, so the config file lookup and the server
// flags never reject each other's arguments.
package flagx

import (
	"flag"
	"strings"
)

// FilterArgs returns the subset of args that belongs to the given flags.
//
// valued flags take a value, either inline ("-d=dsn") or as the next argument
// when it does not start with '-'. bools are boolean switches ("-production",
// "-production=false") and never consume the following argument.
//
// The result is never nil and keeps the original order.
func FilterArgs(args []string, valued []string, bools ...string) []string {
	takesValue := make(map[string]bool, len(valued)+len(bools))
	for _, f := range valued {
		takesValue[f] = true
	}
	for _, f := range bools {
		takesValue[f] = false
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]
		if !strings.HasPrefix(arg, "-") {
			continue
		}

		name, _, inline := strings.Cut(arg, "=")
		needsValue, known := takesValue[name]
		if !known {
			continue
		}

		filtered = append(filtered, arg)
		if inline || !needsValue {
			continue
		}

		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFilePath extracts the JSON config path given with -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigFilePath(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.StringVar(&path, "config", "", "path to JSON config file")
	fs.StringVar(&path, "c", "", "path to JSON config file (short)")
	_ = fs.Parse(FilterArgs(args, []string{"-c", "-config", "--config"}))

	return path
}
