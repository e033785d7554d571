package commands

import (
	"fmt"
	"time"

	"github.com/go-librecast/librecast/pkg/lc"
	"github.com/spf13/cobra"
)

func GetPingCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ping <channel>",
		Short: "Send a PING on a channel and report the first PONG received",
		Long:  `Joins the channel, sends a single PING message and waits for a reply.`,
		RunE:  runPing,
	}
	cmd.Args = cobra.ExactArgs(1)
	cmd.Flags().DurationP("timeout", "t", 5*time.Second, "how long to wait for a reply")
	return cmd
}

func runPing(cmd *cobra.Command, args []string) error {
	env, err := GetEnvironment()
	if err != nil {
		return err
	}
	timeout, err := cmd.Flags().GetDuration("timeout")
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
	if err := channel.Join(); err != nil {
		return err
	}

	replies := make(chan time.Duration, 1)
	sent := time.Now()
	err = sock.Listen(func(c *lc.Channel, msg *lc.Message) {
		if msg.Opcode == lc.OpPong {
			select {
			case replies <- time.Since(sent):
			default:
			}
		}
	}, func(error) {})
	if err != nil {
		return err
	}
	defer sock.StopListening()

	ping := lc.NewMessageData([]byte("ping"), nil, nil)
	ping.Opcode = lc.OpPing
	if _, err := channel.Send(ping); err != nil {
		return err
	}

	select {
	case rtt := <-replies:
		fmt.Printf("pong from %s in %s\n", channel.Addr(), rtt)
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("no reply within %s", timeout)
	}
}
