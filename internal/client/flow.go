package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/payment"
)

var (
	ErrNoConsent = errors.New("terms not accepted")
	ErrAbandoned = errors.New("payment not completed")
)

// UI is the presentation side of the funnel.
type UI interface {
	Consent() (bool, error)
	// Ask returns the chosen option, or back=true to revisit the previous
	// question.
	Ask(q catalog.Question, step, total int) (opt catalog.Option, back bool, err error)
	Preview(r Result)
	Email() (string, error)
	PaymentCode(code payment.Code)
	// Recheck is offered after polling gives up; false abandons payment.
	Recheck() (bool, error)
	Report(r Result)
	Notice(msg string)
}

type FlowConfig struct {
	PollInterval time.Duration
	MaxAttempts  int
}

// Flow walks a customer through consent, questions, preview, paywall and
// result.
type Flow struct {
	api    *API
	ui     UI
	logger *slog.Logger
	cfg    FlowConfig
}

func NewFlow(api *API, ui UI, logger *slog.Logger, cfg FlowConfig) *Flow {
	return &Flow{api: api, ui: ui, logger: logger, cfg: cfg}
}

func (f *Flow) Run(ctx context.Context) error {
	ok, err := f.ui.Consent()
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoConsent
	}

	qs, err := f.api.Questionnaire(ctx)
	if err != nil {
		return err
	}
	sessionID, err := f.api.CreateSession(ctx)
	if err != nil {
		return err
	}
	f.logger.Debug("session created", "session_id", sessionID)

	if err := f.answerAll(ctx, sessionID, catalog.New(qs)); err != nil {
		return err
	}

	preview, err := f.api.Result(ctx, sessionID)
	if err != nil {
		return err
	}
	f.ui.Preview(preview)

	if !preview.Paid() {
		if err := f.pay(ctx, sessionID); err != nil {
			return err
		}
	}

	result, err := f.api.Result(ctx, sessionID)
	if err != nil {
		return err
	}
	f.ui.Report(result)
	return nil
}

// answerAll asks the visible questions in order. Visibility is recomputed
// after every answer, so later steps appear or disappear as answers change.
// Saving an answer is best effort: a failed save is logged and the flow
// moves on.
func (f *Flow) answerAll(ctx context.Context, sessionID string, cat *catalog.Catalog) error {
	answers := make(catalog.Answers)
	idx := 0
	for {
		visible := cat.Visible(answers)
		if idx >= len(visible) {
			return nil
		}
		q := visible[idx]

		opt, back, err := f.ui.Ask(q, idx+1, len(visible))
		if err != nil {
			return err
		}
		if back {
			if idx > 0 {
				idx--
			}
			continue
		}

		answers[q.ID] = catalog.Answer{Label: opt.Label, Weight: opt.Weight}
		if err := f.api.Answer(ctx, sessionID, q.ID, opt); err != nil {
			f.logger.Warn("answer not saved", "question_id", q.ID, "error", err)
		}
		idx++
	}
}

func (f *Flow) pay(ctx context.Context, sessionID string) error {
	code, err := f.checkout(ctx, sessionID)
	if errors.Is(err, errPaidAlready) {
		return nil
	}
	if err != nil {
		return err
	}
	f.ui.PaymentCode(code)

	poller := NewPoller(func(ctx context.Context) (bool, error) {
		st, err := f.api.PaymentStatus(ctx, sessionID)
		return st.Paid, err
	}, f.cfg.PollInterval, f.cfg.MaxAttempts, f.logger)

	state := poller.Run(ctx)
	for state == TimedOut {
		again, err := f.ui.Recheck()
		if err != nil {
			return err
		}
		if !again {
			return ErrAbandoned
		}
		state, err = poller.Recheck(ctx)
		if err != nil {
			f.ui.Notice("Não foi possível verificar o pagamento. Tente novamente.")
			continue
		}
		if state != Paid {
			f.ui.Notice("Pagamento ainda não identificado. Se você já pagou, aguarde alguns instantes.")
		}
	}
	if state == Cancelled {
		return ctx.Err()
	}
	return nil
}

var errPaidAlready = errors.New("already paid")

// checkout asks for an email until the server accepts it. Any other
// failure stops the flow since there is no code to pay with.
func (f *Flow) checkout(ctx context.Context, sessionID string) (payment.Code, error) {
	for {
		email, err := f.ui.Email()
		if err != nil {
			return payment.Code{}, err
		}

		code, err := f.api.Checkout(ctx, sessionID, email)
		var apiErr *APIError
		switch {
		case err == nil:
			return code, nil
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest:
			f.ui.Notice(fmt.Sprintf("E-mail inválido: %s", apiErr.Message))
		case errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict:
			return payment.Code{}, errPaidAlready
		default:
			return payment.Code{}, fmt.Errorf("erro ao gerar PIX: %w", err)
		}
	}
}
