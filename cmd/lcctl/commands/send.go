package commands

import (
	"github.com/go-librecast/librecast/pkg/lc"
	"github.com/spf13/cobra"
)

func GetSendCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <channel> <message>",
		Short: "Send one message to a channel",
		Long:  `Derives the channel's group address from its name and sends message to it.`,
		RunE:  runSend,
	}
	cmd.Args = cobra.ExactArgs(2)
	return cmd
}

func runSend(cmd *cobra.Command, args []string) error {
	env, err := GetEnvironment()
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

	channel, err := ctx.NewChannel(args[0])
	if err != nil {
		return err
	}
	if err := channel.Bind(sock); err != nil {
		return err
	}

	msg := lc.NewMessageData([]byte(args[1]), nil, nil)
	_, err = channel.Send(msg)
	return err
}
