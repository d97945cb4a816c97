// Command estimate-cli runs the estimate chat in a terminal. Leads are posted
// to the intake endpoint configured by LEAD_ENDPOINT_URL.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spartan_estimator/internal/estimate/leadclient"
	"spartan_estimator/internal/estimate/session"
	"spartan_estimator/platform/config"
	"spartan_estimator/platform/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		endpoint string
		typing   time.Duration
		verbose  bool
	)

	cmd := &cobra.Command{
		Use:   "estimate-cli",
		Short: "Get a Spartan estimate from the terminal",
		Long: `estimate-cli runs the Leonidas estimate chat over stdin and stdout.
Each input line is one message. The finished lead is posted to the intake
endpoint, by default LEAD_ENDPOINT_URL.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("endpoint") {
				endpoint = cfg.GetLeadEndpointURL()
			}
			if !cmd.Flags().Changed("typing") {
				typing = cfg.GetChatTypingDelay()
			}

			log := logger.Discard()
			if verbose {
				log = logger.NewWithWriter(cfg.Env, cmd.ErrOrStderr())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			client := leadclient.New(endpoint, cfg.GetLeadClientTimeout(), log)
			s := session.New(uuid.NewString(), client, session.Options{TypingDelay: typing, Logger: log})

			err = run(ctx, s, cmd.InOrStdin(), cmd.OutOrStdout())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}

	cmd.Flags().StringVar(&endpoint, "endpoint", "", "lead intake URL (default LEAD_ENDPOINT_URL)")
	cmd.Flags().DurationVar(&typing, "typing", 0, "bot typing delay (default CHAT_TYPING_DELAY)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

// run feeds each input line to the session and prints bot messages as they
// arrive. It returns once input ends and any pending submission settled.
func run(ctx context.Context, s *session.Session, in io.Reader, out io.Writer) error {
	messages, cancel := s.Subscribe()
	defer cancel()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for msg := range messages {
			if msg.Role == session.RoleBot {
				fmt.Fprintf(out, "\nLEONIDAS> %s\n\n", msg.Content)
			}
		}
	}()

	if err := s.Open(ctx); err != nil {
		return err
	}

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := send(ctx, s, scanner.Text()); err != nil {
			if errors.Is(err, session.ErrLimitReached) {
				break
			}
			if !errors.Is(err, session.ErrEmpty) {
				return err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	s.Wait()
	s.Close()
	<-printed
	return ctx.Err()
}

// send retries while the session is busy or inside its send interval, which
// piped input would otherwise trip on every line.
func send(ctx context.Context, s *session.Session, text string) error {
	for {
		err := s.Send(ctx, text)
		if !errors.Is(err, session.ErrTooFast) && !errors.Is(err, session.ErrBusy) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(session.SendInterval):
		}
	}
}
