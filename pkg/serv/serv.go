// Package serv hosts the built-in services and their shared help
// conventions. Every service owns a unit describing itself with the
// keys name, info, tut and man; `help`, `help.name`, `help.info`,
// `help.tut` and `help.man` extract sub-paths from it.
package serv

import "github.com/architector1324/vnix/pkg/unit"

// HelpTopic resolves a help topic string against a service's help
// unit. Reports false when the topic is not a help request or the help
// unit has no entry for the requested key.
func HelpTopic(help *unit.Unit, topic string) (*unit.Unit, bool) {
	switch topic {
	case "help":
		return help, true
	case "help.name":
		return findTopic(help, "name")
	case "help.info":
		return findTopic(help, "info")
	case "help.tut":
		return findTopic(help, "tut")
	case "help.man":
		return findTopic(help, "man")
	}
	return nil, false
}

func findTopic(help *unit.Unit, key string) (*unit.Unit, bool) {
	u, ok := help.Find(key)
	if !ok {
		return nil, false
	}
	return u, true
}
