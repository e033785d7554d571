package commands

import "github.com/spf13/cobra"

func GetRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lcctl",
		Short: "lcctl is a command line tool for sending and receiving on librecast channels.",
		Long: `lcctl joins, sends to and listens on IPv6 multicast channels derived from
a channel name.

One environment variable is required, a second is optional:
- LC_IF: the network interface to bind to
- LC_CHANNEL: the default channel name, used when join or listen is run
  without its [channel] argument (send and ping always take one)

For more information on the channel derivation and wire protocol, see the
package documentation.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(
		GetJoinCommand(),
		GetSendCommand(),
		GetListenCommand(),
		GetPingCommand(),
		GetVersionCommand(),
	)

	return cmd
}
