package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-librecast/librecast/pkg/lc"
	"github.com/spf13/cobra"
)

func GetListenCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listen [channel]",
		Short: "Join a channel and print every message received on it",
		Long: `Derives the channel's group address from its name, joins its group and
prints every message received on it until interrupted with Ctrl-C. PING
messages are answered automatically and are printed like any other message.`,
		RunE: runListen,
	}
	cmd.Args = cobra.MaximumNArgs(1)
	return cmd
}

func runListen(cmd *cobra.Command, args []string) error {
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

	err = sock.Listen(func(c *lc.Channel, msg *lc.Message) {
		fmt.Printf("%s: %s\n", msg.SrcText, string(msg.Payload))
	}, func(err error) {
		fmt.Fprintf(os.Stderr, "lcctl: %v\n", err)
	})
	if err != nil {
		return err
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	return sock.StopListening()
}
