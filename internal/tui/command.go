package tui

import "strings"

// Command is a ':' command line split into its name and the rest.
type Command struct {
	Name string
	Args string
}

var commandAliases = map[string]string{
	"q":        "quit",
	"exit":     "quit",
	"h":        "help",
	"settings": "config",
}

// ParseCommand parses a command line. A leading ':' is optional, the name is
// lowercased and aliases resolve to their full name.
func ParseCommand(input string) Command {
	input = strings.TrimPrefix(strings.TrimSpace(input), ":")
	name, args, _ := strings.Cut(strings.TrimSpace(input), " ")
	name = strings.ToLower(name)
	if full, ok := commandAliases[name]; ok {
		name = full
	}
	return Command{Name: name, Args: strings.TrimSpace(args)}
}
