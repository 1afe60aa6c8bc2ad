// Command stomp-send connects to a broker and sends a single message to a
// destination, optionally waiting for a RECEIPT before exiting.
package main

import (
	"fmt"
	"os"
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
		contentType string
		waitReceipt bool
		dialTimeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "stomp-send <destination> <body>",
		Short: "Send one STOMP message and exit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			destination, body := args[0], args[1]

			// Step 1: dial and handshake.
			s, err := session.New(host, port).
				WithCredentials(login, passcode).
				WithDialTimeout(dialTimeout).
				Start()
			if err != nil {
				return fmt.Errorf("connect: %w", err)
			}

			// Step 2: build and send the message.
			builder := s.Message(destination, []byte(body))
			if contentType != "" {
				builder = builder.WithContentType(contentType)
			}

			acked := make(chan struct{})
			if waitReceipt {
				builder = builder.WithReceipt(func(*frame.Frame) { close(acked) })
			}
			if _, err := builder.Send(); err != nil {
				return fmt.Errorf("send: %w", err)
			}

			// Step 3: if a receipt was requested, drive the dispatcher on a
			// background goroutine until it arrives, then tear down.
			if waitReceipt {
				listenErr := make(chan error, 1)
				go func() { listenErr <- s.Listen() }()
				select {
				case <-acked:
				case err := <-listenErr:
					return fmt.Errorf("listen: %w", err)
				}
			}
			return s.Disconnect()
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "broker host")
	cmd.Flags().IntVar(&port, "port", 61613, "broker port")
	cmd.Flags().StringVar(&login, "login", "", "STOMP login")
	cmd.Flags().StringVar(&passcode, "passcode", "", "STOMP passcode")
	cmd.Flags().StringVar(&contentType, "content-type", "text/plain", "content-type header")
	cmd.Flags().BoolVar(&waitReceipt, "wait-receipt", false, "wait for a RECEIPT before exiting")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", 10*time.Second, "connect timeout")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
