// Command stomp-listen subscribes to a destination and prints every
// delivered message until interrupted, acknowledging each one as it
// arrives.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"stomp/frame"
	"stomp/session"
)

func main() {
	var (
		host        string
		port        int
		login       string
		passcode    string
		ackMode     string
		dialTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stomp-listen <destination>",
		Short: "Subscribe to a destination and print deliveries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination := args[0]

			mode, err := parseAckMode(ackMode)
			if err != nil {
				return err
			}

			// Step 1: dial and handshake.
			s, err := session.New(host, port).
				WithCredentials(login, passcode).
				WithDialTimeout(dialTimeout).
				Start()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			// Step 2: subscribe, printing each delivery and acking it.
			var received uint64
			_, err = s.Subscription(destination, func(f *frame.Frame) session.AckDecision {
				received++
				fmt.Printf("[%d] %s\n", received, f.Body)
				return session.Ack
			}).WithAckMode(mode).Start()
			if err != nil {
				return fmt.Errorf("subscribe: %w", err)
			}

			// Step 3: run the dispatcher until interrupted or the
			// connection ends.
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt)
			listenErr := make(chan error, 1)
			go func() { listenErr <- s.Listen() }()

			select {
			case <-sigCh:
				return s.Disconnect()
			case err := <-listenErr:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "broker host")
	cmd.Flags().IntVar(&port, "port", 61613, "broker port")
	cmd.Flags().StringVar(&login, "login", "", "STOMP login")
	cmd.Flags().StringVar(&passcode, "passcode", "", "STOMP passcode")
	cmd.Flags().StringVar(&ackMode, "ack", "client", "ack mode: auto, client, or client-individual")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 10*time.Second, "connect timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func parseAckMode(s string) (frame.AckMode, error) {
	switch s {
	case "auto":
		return frame.AckAuto, nil
	case "client":
		return frame.AckClient, nil
	case "client-individual":
		return frame.AckClientIndividual, nil
	default:
		return "", fmt.Errorf("unknown ack mode %q", s)
	}
}
