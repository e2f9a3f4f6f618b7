package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/radarfiscal/radar/internal/client"
)

// Version is injected at build time via -ldflags.
var Version = "dev"

type options struct {
	api          string
	email        string
	pollInterval time.Duration
	maxAttempts  int
	timeout      time.Duration
	verbose      bool
}

// NewRootCommand builds the terminal client for the assessment funnel.
func NewRootCommand(in io.Reader, out, errOut io.Writer) *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "radar",
		Short: "Diagnóstico de risco fiscal no terminal",
		Long: `radar answers the Radar Fiscal questionnaire against a running API,
shows the risk level, generates the PIX charge for the full report and waits
for the payment to be confirmed.`,
		Version:      Version,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return run(ctx, opts, in, out, errOut)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.api, "api", "http://localhost:8080", "base URL of the Radar Fiscal API")
	f.StringVar(&opts.email, "email", "", "email for the report, skips the prompt once")
	f.DurationVar(&opts.pollInterval, "poll-interval", client.DefaultPollInterval, "delay between payment status checks")
	f.IntVar(&opts.maxAttempts, "max-attempts", client.DefaultMaxAttempts, "payment status checks before asking to verify manually")
	f.DurationVar(&opts.timeout, "timeout", 15*time.Second, "per request timeout")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log requests and retries to stderr")

	return cmd
}

func run(ctx context.Context, opts options, in io.Reader, out, errOut io.Writer) error {
	level := slog.LevelWarn
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(errOut, &slog.HandlerOptions{Level: level}))

	var ui client.UI = client.NewTerminal(in, out)
	if opts.email != "" {
		ui = &presetEmail{UI: ui, email: opts.email}
	}

	flow := client.NewFlow(client.NewAPI(opts.api, opts.timeout), ui, logger, client.FlowConfig{
		PollInterval: opts.pollInterval,
		MaxAttempts:  opts.maxAttempts,
	})

	err := flow.Run(ctx)
	switch {
	case errors.Is(err, client.ErrNoConsent):
		return errors.New("é preciso aceitar os termos para continuar")
	case errors.Is(err, client.ErrAbandoned):
		return errors.New("pagamento não confirmado; rode novamente quando o PIX for compensado")
	}
	return err
}

// presetEmail answers the first email prompt with the flag value. Later
// prompts, after the server rejected it, go to the wrapped UI.
type presetEmail struct {
	client.UI
	email string
	used  bool
}

func (p *presetEmail) Email() (string, error) {
	if !p.used {
		p.used = true
		return p.email, nil
	}
	return p.UI.Email()
}
