package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-librecast/librecast/pkg/lc"
	"github.com/spf13/cobra"
)

func GetJoinCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "join [channel]",
		Short: "Join a channel's multicast group and hold it until interrupted",
		Long: `Derives the channel's group address from its name, binds a socket to
the configured interface, joins the group and blocks until interrupted with
Ctrl-C.`,
		RunE: runJoin,
	}
	cmd.Args = cobra.MaximumNArgs(1)
	return cmd
}

func runJoin(cmd *cobra.Command, args []string) error {
	env, err := GetEnvironment()
	if err != nil {
		return err
	}
	name, err := resolveChannelName(env, args)
	if err != nil {
		return err
	}

	ctx := lc.NewContext()
	defer ctx.Close()

	sock, err := ctx.NewSocket()
	if err != nil {
		return err
	}
	ifx, err := env.resolveInterface()
	if err != nil {
		return err
	}
	if err := sock.Bind(ifx); err != nil {
		return err
	}

	channel, err := ctx.NewChannel(name)
	if err != nil {
		return err
	}
	if err := channel.Bind(sock); err != nil {
		return err
	}
	if err := channel.Join(); err != nil {
		return err
	}

	fmt.Printf("joined %s (%s)\n", name, channel.Addr())

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	return channel.Part()
}
