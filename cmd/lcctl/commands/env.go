package commands

import (
	"fmt"
	"net"
	"os"
)

// Environment is the set of values read from the process environment that
// every lcctl subcommand needs: which interface to scope multicast
// membership to, and which channel name join and listen default to when
// their [channel] argument is omitted.
type Environment struct {
	Interface string
	Channel   string
}

// GetEnvironment reads LC_IF and LC_CHANNEL. LC_IF is required; LC_CHANNEL
// may be empty, in which case commands that need a channel name must
// receive it as an argument.
func GetEnvironment() (*Environment, error) {
	env := &Environment{
		Interface: os.Getenv("LC_IF"),
		Channel:   os.Getenv("LC_CHANNEL"),
	}

	if env.Interface == "" {
		return nil, fmt.Errorf("LC_IF environment variable is required")
	}

	return env, nil
}

// resolveInterface looks up the interface index for env's configured
// interface name.
func (env *Environment) resolveInterface() (int, error) {
	ifi, err := net.InterfaceByName(env.Interface)
	if err != nil {
		return 0, err
	}
	return ifi.Index, nil
}

func resolveChannelName(env *Environment, args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if env.Channel != "" {
		return env.Channel, nil
	}
	return "", fmt.Errorf("a channel name is required, either as an argument or via LC_CHANNEL")
}
