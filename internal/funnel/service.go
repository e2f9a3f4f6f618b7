package funnel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/radarfiscal/radar/internal/catalog"
	"github.com/radarfiscal/radar/internal/dedupe"
	"github.com/radarfiscal/radar/internal/events"
	"github.com/radarfiscal/radar/internal/payment"
	"github.com/radarfiscal/radar/internal/scoring"
)

const chargeDescription = "Radar Fiscal - relatório completo"

// Deps wires a Service. Guard, Notifier and Logger are optional.
type Deps struct {
	Store      Store
	Gateway    payment.Gateway
	Engine     *scoring.Engine
	Guard      dedupe.Guard
	Notifier   events.Notifier
	Logger     *slog.Logger
	PriceCents int64
	Currency   string
}

type Service struct {
	store    Store
	gateway  payment.Gateway
	engine   *scoring.Engine
	guard    dedupe.Guard
	notifier events.Notifier
	logger   *slog.Logger
	price    int64
	currency string

	now   func() time.Time
	idGen func() string
}

func NewService(d Deps) *Service {
	s := &Service{
		store:    d.Store,
		gateway:  d.Gateway,
		engine:   d.Engine,
		guard:    d.Guard,
		notifier: d.Notifier,
		logger:   d.Logger,
		price:    d.PriceCents,
		currency: d.Currency,
		now:      func() time.Time { return time.Now().UTC() },
		idGen:    uuid.NewString,
	}
	if s.guard == nil {
		s.guard = dedupe.NewMemory(24 * time.Hour)
	}
	if s.notifier == nil {
		s.notifier = events.Fanout{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.engine.Catalog() }

func (s *Service) Rules() catalog.Rules { return s.engine.Rules() }

func (s *Service) CreateSession(ctx context.Context) (Session, error) {
	sess := Session{ID: s.idGen(), CreatedAt: s.now()}
	if err := s.store.CreateSession(ctx, sess.ID, sess.CreatedAt); err != nil {
		return Session{}, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

func (s *Service) Session(ctx context.Context, id string) (Session, error) {
	return s.store.SessionByID(ctx, id)
}

// RecordAnswer stores or replaces the answer to one question with the label
// and weight the client sent. A pair that disagrees with the catalog is
// stored anyway and only logged.
func (s *Service) RecordAnswer(ctx context.Context, sessionID, questionID, label string, weight int) error {
	if questionID == "" {
		return invalid("questionId", "required")
	}
	if label == "" {
		return invalid("label", "required")
	}
	if _, err := s.store.SessionByID(ctx, sessionID); err != nil {
		return err
	}

	if q, ok := s.engine.Catalog().Question(questionID); ok {
		if opt, ok := q.Option(label); !ok || opt.Weight != weight {
			s.logger.Debug("answer differs from catalog",
				"session_id", sessionID, "question_id", questionID,
				"label", label, "weight", weight, "catalog_weight", opt.Weight)
		}
	}

	a := catalog.Answer{Label: label, Weight: weight}
	if err := s.store.UpsertAnswer(ctx, sessionID, questionID, a, s.now()); err != nil {
		return fmt.Errorf("saving answer: %w", err)
	}
	return nil
}

// Checkout requests a PIX charge for the session and stores the code the
// customer pays with.
func (s *Service) Checkout(ctx context.Context, sessionID, email string) (payment.Code, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return payment.Code{}, invalid("email", "required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return payment.Code{}, invalid("email", "invalid address")
	}

	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return payment.Code{}, err
	}
	if sess.Paid {
		return payment.Code{}, ErrAlreadyPaid
	}

	co, err := s.gateway.CreateCharge(ctx, payment.Charge{
		AmountCents: s.price,
		Currency:    s.currency,
		Reference:   sessionID,
		Email:       email,
		Description: chargeDescription,
	})
	if err != nil {
		return payment.Code{}, &GatewayError{Msg: "could not create payment", Err: err}
	}
	if co.Status == "" {
		co.Status = payment.StatusPending
	}

	if err := s.store.SaveCheckout(ctx, sessionID, email, co); err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrAlreadyPaid) {
			return payment.Code{}, err
		}
		return payment.Code{}, fmt.Errorf("saving checkout: %w", err)
	}
	s.logger.Info("checkout created", "session_id", sessionID, "provider_ref", co.ProviderRef)
	return co.Code, nil
}

func (s *Service) PaymentStatus(ctx context.Context, sessionID string) (PaymentStatus, error) {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return PaymentStatus{}, err
	}
	return sess.paymentStatus(), nil
}

// ConfirmPayment marks the session paid. It reports whether this call made
// the transition; confirming an already paid session is a no-op.
func (s *Service) ConfirmPayment(ctx context.Context, sessionID, providerRef, providerStatus string) (bool, error) {
	at := s.now()
	changed, err := s.store.MarkPaid(ctx, sessionID, providerRef, providerStatus, at)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	s.logger.Info("payment confirmed", "session_id", sessionID, "provider_ref", providerRef)
	err = s.notifier.Notify(ctx, events.Event{
		Type:           events.TypePaymentConfirmed,
		SessionID:      sessionID,
		ProviderStatus: providerStatus,
		OccurredAt:     at,
	})
	if err != nil {
		s.logger.Warn("payment event not delivered", "session_id", sessionID, "error", err)
	}
	return true, nil
}

// Outcome describes what a provider notification did.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeRecorded  Outcome = "recorded"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// HandleNotification processes a provider callback. The payment state is
// always re-read from the provider; the callback body is never trusted.
//
// Only notifications carrying a provider event id are deduplicated. The
// legacy IPN form identifies the payment, not the event, and the same
// payment is announced again when its status changes.
func (s *Service) HandleNotification(ctx context.Context, n payment.Notification) (Outcome, error) {
	if n.EventID == "" {
		return s.applyNotification(ctx, n)
	}
	key := n.EventID

	claimed, err := s.guard.Claim(ctx, key)
	if err != nil {
		s.logger.Warn("dedupe unavailable, processing notification", "key", key, "error", err)
		claimed = true
	}
	if !claimed {
		return OutcomeDuplicate, nil
	}

	outcome, err := s.applyNotification(ctx, n)
	if err != nil {
		if rerr := s.guard.Release(ctx, key); rerr != nil {
			s.logger.Warn("releasing notification claim", "key", key, "error", rerr)
		}
		return "", err
	}
	return outcome, nil
}

func (s *Service) applyNotification(ctx context.Context, n payment.Notification) (Outcome, error) {
	conf, err := s.gateway.Verify(ctx, n)
	if errors.Is(err, payment.ErrUnknownPayment) {
		s.logger.Info("notification ignored", "type", n.Type, "resource_id", n.ResourceID, "error", err)
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", &GatewayError{Msg: "could not verify payment", Err: err}
	}

	sessionID := conf.Reference
	if sessionID == "" {
		sess, err := s.store.SessionByProviderRef(ctx, conf.ProviderRef)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("notification for unknown payment", "provider_ref", conf.ProviderRef)
			return OutcomeIgnored, nil
		}
		if err != nil {
			return "", err
		}
		sessionID = sess.ID
	}

	if conf.Paid {
		_, err := s.ConfirmPayment(ctx, sessionID, conf.ProviderRef, conf.ProviderStatus)
		if errors.Is(err, ErrNotFound) {
			s.logger.Warn("payment for unknown session", "session_id", sessionID)
			return OutcomeIgnored, nil
		}
		if err != nil {
			return "", err
		}
		return OutcomeConfirmed, nil
	}

	err = s.store.SetProviderStatus(ctx, sessionID, conf.ProviderStatus)
	if errors.Is(err, ErrNotFound) {
		return OutcomeIgnored, nil
	}
	if err != nil {
		return "", err
	}
	return OutcomeRecorded, nil
}

// Report is the paid part of a result.
type Report struct {
	ScoreFinal int              `json:"scoreFinal"`
	Factors    []scoring.Factor `json:"factors"`
}

// ResultView is what a session may see of its result. Report is only set
// for paid sessions, so an unpaid view carries no score or factors at all.
type ResultView struct {
	Classification scoring.Classification `json:"classification"`
	PaymentStatus  string                 `json:"paymentStatus"`
	*Report
}

func (s *Service) Result(ctx context.Context, sessionID string) (ResultView, error) {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return ResultView{}, err
	}
	answers, err := s.store.Answers(ctx, sessionID)
	if err != nil {
		return ResultView{}, fmt.Errorf("loading answers: %w", err)
	}

	res := s.engine.Score(answers)
	view := ResultView{
		Classification: res.Classification,
		PaymentStatus:  sess.resultStatus(),
	}
	if sess.Paid {
		view.Report = &Report{ScoreFinal: res.ScoreFinal, Factors: res.Factors}
	}
	return view, nil
}

// RequirePaid returns ErrPaymentRequired unless the session is paid.
func (s *Service) RequirePaid(ctx context.Context, sessionID string) error {
	sess, err := s.store.SessionByID(ctx, sessionID)
	if err != nil {
		return err
	}
	if !sess.Paid {
		return ErrPaymentRequired
	}
	return nil
}
