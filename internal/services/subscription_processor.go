package services

import (
	"context"
	"fmt"
	"time"

	"wallet/internal/core"
	"wallet/internal/log"
	"wallet/internal/storage"
)

// DefaultMaxCatchUp bounds how many missed cycles one run charges for a
// single subscription.
const DefaultMaxCatchUp = 60

// SubscriptionProcessor charges due subscriptions as expense transactions
// and moves their next payment date forward.
type SubscriptionProcessor struct {
	store      *RecordStore
	checker    DueChecker
	maxCatchUp int
	logger     *log.Logger
}

func NewSubscriptionProcessor(store *RecordStore, checker DueChecker, logger *log.Logger) *SubscriptionProcessor {
	if checker == nil {
		checker = DayChecker{}
	}
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SubscriptionProcessor{
		store:      store,
		checker:    checker,
		maxCatchUp: DefaultMaxCatchUp,
		logger:     logger.WithComponent(log.ComponentSubscription),
	}
}

// ChargeResult reports what one run did to a single subscription.
type ChargeResult struct {
	SubscriptionID string
	Name           string
	Charges        int
	NextPayment    time.Time
}

// ProcessDue charges every active subscription whose payment is due at now.
// A subscription several cycles behind is charged once per missed cycle,
// each transaction dated on its own payment date. Failures on one
// subscription are logged and do not stop the others.
func (p *SubscriptionProcessor) ProcessDue(ctx context.Context, now time.Time) ([]ChargeResult, error) {
	subs, err := p.store.ListSubscriptions(ctx, storage.SubscriptionFilter{})
	if err != nil {
		return nil, fmt.Errorf("list active subscriptions: %w", err)
	}

	p.logger.InfoContext(ctx, "Processing subscriptions",
		"total_active", len(subs),
		"processing_date", now.Format("2006-01-02"))

	var results []ChargeResult
	for _, sub := range subs {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res, err := p.charge(ctx, sub, now)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to process subscription",
				log.FieldRecordID, sub.ID,
				"name", sub.Name,
				log.FieldError, err)
		}
		if res.Charges > 0 {
			results = append(results, res)
		}
	}

	p.logger.InfoContext(ctx, "Subscription processing complete",
		"processed", len(results),
		"total_checked", len(subs))
	return results, nil
}

func (p *SubscriptionProcessor) charge(ctx context.Context, sub core.Subscription, now time.Time) (ChargeResult, error) {
	res := ChargeResult{SubscriptionID: sub.ID, Name: sub.Name, NextPayment: sub.NextPaymentDate}

	anchor := sub.NextPaymentDate
	for res.Charges < p.maxCatchUp {
		due := sub.BillingCycle.Advance(anchor, res.Charges)
		if !p.checker.IsDue(due, now) {
			break
		}
		tx := core.Transaction{
			Title:       sub.Name,
			Amount:      sub.Amount,
			AccountName: sub.AccountName,
			Category:    sub.Category,
			Date:        due,
			Notes:       fmt.Sprintf("%s subscription payment", sub.BillingCycle),
		}
		if _, err := p.store.CreateTransaction(ctx, tx); err != nil {
			// Persist the progress made so far before giving up.
			err = fmt.Errorf("create payment transaction: %w", err)
			if res.Charges > 0 {
				if uerr := p.advance(ctx, sub, anchor, &res); uerr != nil {
					err = fmt.Errorf("%w; %w", err, uerr)
				}
			}
			return res, err
		}
		res.Charges++
	}

	if res.Charges == 0 {
		return res, nil
	}
	if err := p.advance(ctx, sub, anchor, &res); err != nil {
		return res, err
	}

	p.logger.InfoContext(ctx, "Charged subscription",
		log.FieldRecordID, sub.ID,
		"name", sub.Name,
		"charges", res.Charges,
		log.FieldAmountCents, sub.Amount.Cents,
		"billing_cycle", sub.BillingCycle,
		"next_payment", res.NextPayment.Format("2006-01-02"))
	return res, nil
}

func (p *SubscriptionProcessor) advance(ctx context.Context, sub core.Subscription, anchor time.Time, res *ChargeResult) error {
	next := sub.BillingCycle.Advance(anchor, res.Charges)
	if _, err := p.store.UpdateSubscription(ctx, sub.ID, core.SubscriptionPatch{NextPaymentDate: &next}); err != nil {
		return fmt.Errorf("advance next payment date: %w", err)
	}
	res.NextPayment = next
	return nil
}
