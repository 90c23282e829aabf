// Package alerts delivers buyer-facing email alerts through an Asynq queue:
// submission receipts, win and loss notices and no-sale notices. Delivery is
// best effort and never blocks the request path outcome.
package alerts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/sealabid/sealabid/internal/db"
	"github.com/sealabid/sealabid/internal/model"
)

// Notifier enqueues alert tasks and runs the worker that sends them.
type Notifier struct {
	client *asynq.Client
	server *asynq.Server
	pool   db.PgxPool
	mailer *Mailer
	log    *zap.Logger
}

// RedisAddrFromEnv resolves the Redis address from REDIS_ADDR, or from
// REDIS_HOST and REDIS_PORT, defaulting to the compose service name.
func RedisAddrFromEnv() string {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	if host := os.Getenv("REDIS_HOST"); host != "" {
		port := os.Getenv("REDIS_PORT")
		if port == "" {
			port = "6379"
		}
		return host + ":" + port
	}
	if os.Getenv("RUN_LOCAL") == "true" {
		return "127.0.0.1:6379"
	}
	return "redis:6379"
}

// New constructs a Notifier against the given Redis address.
func New(redisAddr string, pool db.PgxPool, mailer *Mailer, log *zap.Logger) *Notifier {
	opts := asynq.RedisClientOpt{Addr: redisAddr}
	n := &Notifier{
		client: asynq.NewClient(opts),
		pool:   pool,
		mailer: mailer,
		log:    log,
	}
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskEnvelopeReceipt, n.handleEnvelopeReceipt)
	mux.HandleFunc(TaskWinnerChosen, n.handleWinnerChosen)
	mux.HandleFunc(TaskNotSelected, n.handleNotSelected)
	mux.HandleFunc(TaskNoSale, n.handleNoSale)

	n.server = asynq.NewServer(opts, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"emails": 10,
		},
	})
	go func() {
		if err := n.server.Run(mux); err != nil {
			log.Error("alert worker stopped", zap.Error(err))
		}
	}()
	return n
}

// Close releases the client and stops the worker.
func (n *Notifier) Close() {
	if n.client != nil {
		_ = n.client.Close()
	}
	if n.server != nil {
		n.server.Shutdown()
	}
}

// EnvelopeReceipt confirms a buyer's submitted or updated offer.
func (n *Notifier) EnvelopeReceipt(ctx context.Context, e *model.Envelope) error {
	var email, title string
	err := n.pool.QueryRow(ctx,
		`SELECT u.email, l.title FROM users u, listings l WHERE u.id = $1 AND l.id = $2`,
		e.BuyerID, e.ListingID,
	).Scan(&email, &title)
	if err != nil {
		return fmt.Errorf("resolve receipt recipient: %w", err)
	}

	p := EnvelopeReceiptPayload{
		EnvelopeID: e.ID.String(),
		ListingID:  e.ListingID.String(),
		BuyerID:    e.BuyerID.String(),
		Email:      email,
		Amount:     e.Amount,
		Envelope: EmailEnvelope{
			To:      email,
			Subject: fmt.Sprintf("Your offer on %q is in", title),
			Body: fmt.Sprintf(
				"Your sealed offer of %s on %q has been recorded.\n\nYou can update or withdraw it any time before the listing closes. The seller sees nothing until then.",
				formatAmount(e.Amount), title),
		},
		SentAt: time.Now(),
	}
	return n.enqueue(TaskEnvelopeReceipt, p)
}

// DecisionMade notifies the winning buyer and every rejected buyer of a
// decided listing. Safe to call again; buyers get at most one extra copy.
func (n *Notifier) DecisionMade(ctx context.Context, listingID uuid.UUID) error {
	var title string
	err := n.pool.QueryRow(ctx,
		`SELECT title FROM listings WHERE id = $1`, listingID,
	).Scan(&title)
	if err != nil {
		return fmt.Errorf("resolve listing: %w", err)
	}

	rows, err := n.pool.Query(ctx,
		`SELECT e.id::text, e.buyer_id::text, e.status, e.amount, u.email
		 FROM envelopes e JOIN users u ON u.id = e.buyer_id
		 WHERE e.listing_id = $1 AND e.status IN ('winner', 'rejected')`,
		listingID,
	)
	if err != nil {
		return fmt.Errorf("resolve decision recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, buyerID, status, email string
		var amount int64
		if err := rows.Scan(&id, &buyerID, &status, &amount, &email); err != nil {
			return err
		}
		var enqErr error
		if status == string(model.EnvelopeWinner) {
			enqErr = n.enqueue(TaskWinnerChosen, WinnerChosenPayload{
				EnvelopeID: id,
				ListingID:  listingID.String(),
				BuyerID:    buyerID,
				Email:      email,
				Amount:     amount,
				Envelope: EmailEnvelope{
					To:      email,
					Subject: fmt.Sprintf("Your offer on %q was accepted", title),
					Body: fmt.Sprintf(
						"The seller accepted your offer of %s on %q. They will be in touch to complete the deal.",
						formatAmount(amount), title),
				},
				SentAt: time.Now(),
			})
		} else {
			enqErr = n.enqueue(TaskNotSelected, NotSelectedPayload{
				EnvelopeID: id,
				ListingID:  listingID.String(),
				BuyerID:    buyerID,
				Email:      email,
				Envelope: EmailEnvelope{
					To:      email,
					Subject: fmt.Sprintf("Update on %q", title),
					Body: fmt.Sprintf(
						"The seller went with another offer on %q. Thanks for taking part.", title),
				},
				SentAt: time.Now(),
			})
		}
		if enqErr != nil {
			return enqErr
		}
	}
	return rows.Err()
}

// NoSale notifies every still-submitted buyer that the listing ended without
// a winner.
func (n *Notifier) NoSale(ctx context.Context, listingID uuid.UUID) error {
	var title string
	err := n.pool.QueryRow(ctx,
		`SELECT title FROM listings WHERE id = $1`, listingID,
	).Scan(&title)
	if err != nil {
		return fmt.Errorf("resolve listing: %w", err)
	}

	rows, err := n.pool.Query(ctx,
		`SELECT e.buyer_id::text, u.email
		 FROM envelopes e JOIN users u ON u.id = e.buyer_id
		 WHERE e.listing_id = $1 AND e.status = 'submitted'`,
		listingID,
	)
	if err != nil {
		return fmt.Errorf("resolve no sale recipients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var buyerID, email string
		if err := rows.Scan(&buyerID, &email); err != nil {
			return err
		}
		if err := n.enqueue(TaskNoSale, NoSalePayload{
			ListingID: listingID.String(),
			BuyerID:   buyerID,
			Email:     email,
			Envelope: EmailEnvelope{
				To:      email,
				Subject: fmt.Sprintf("%q closed without a sale", title),
				Body: fmt.Sprintf(
					"The seller decided not to sell %q this time. No offer was accepted.", title),
			},
			SentAt: time.Now(),
		}); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (n *Notifier) enqueue(taskType string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = n.client.Enqueue(asynq.NewTask(taskType, b), asynq.Queue("emails"))
	return err
}

func (n *Notifier) handleEnvelopeReceipt(_ context.Context, t *asynq.Task) error {
	var p EnvelopeReceiptPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := n.mailer.Send(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		n.log.Error("receipt send failed", zap.String("envelope_id", p.EnvelopeID), zap.Error(err))
		return err
	}
	n.log.Info("receipt sent", zap.String("envelope_id", p.EnvelopeID), zap.String("to", p.Email))
	return nil
}

func (n *Notifier) handleWinnerChosen(_ context.Context, t *asynq.Task) error {
	var p WinnerChosenPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := n.mailer.Send(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		n.log.Error("winner notice send failed", zap.String("envelope_id", p.EnvelopeID), zap.Error(err))
		return err
	}
	n.log.Info("winner notice sent", zap.String("listing_id", p.ListingID), zap.String("to", p.Email))
	return nil
}

func (n *Notifier) handleNotSelected(_ context.Context, t *asynq.Task) error {
	var p NotSelectedPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := n.mailer.Send(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		n.log.Error("loss notice send failed", zap.String("envelope_id", p.EnvelopeID), zap.Error(err))
		return err
	}
	n.log.Info("loss notice sent", zap.String("listing_id", p.ListingID), zap.String("to", p.Email))
	return nil
}

func (n *Notifier) handleNoSale(_ context.Context, t *asynq.Task) error {
	var p NoSalePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return err
	}
	if err := n.mailer.Send(p.Envelope.To, p.Envelope.Subject, p.Envelope.Body); err != nil {
		n.log.Error("no sale notice send failed", zap.String("listing_id", p.ListingID), zap.Error(err))
		return err
	}
	n.log.Info("no sale notice sent", zap.String("listing_id", p.ListingID), zap.String("to", p.Email))
	return nil
}

// formatAmount renders pence as pounds for email copy.
func formatAmount(pence int64) string {
	return fmt.Sprintf("£%d.%02d", pence/100, pence%100)
}
