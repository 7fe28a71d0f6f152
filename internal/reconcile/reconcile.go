// Package reconcile decides, on return from hosted checkout, whether the
// payment made it into the backend, and actively recovers the record when the
// Viva webhook has not landed yet.
package reconcile

import (
	"context"

	"foroline.gr/foroline-web/internal/backend"
	"foroline.gr/foroline-web/internal/params"
)

// TransactionAPI is the slice of the backend client the reconciler needs.
type TransactionAPI interface {
	GetTransaction(ctx context.Context, transactionID, orderCode, token string) (backend.Transaction, error)
	RecordPayment(ctx context.Context, p backend.PaymentRequest, token string) (bool, error)
}

// Outcome is the reconciler's verdict for one checkout return.
type Outcome int

const (
	// OutcomeNone: the callback did not carry a complete parameter set;
	// nothing to do.
	OutcomeNone Outcome = iota
	// OutcomeFailed: Viva flagged the order as failed or cancelled. No
	// backend calls are made.
	OutcomeFailed
	// OutcomeRecorded: the webhook already recorded the transaction.
	OutcomeRecorded
	// OutcomeRecovered: the record was missing and the fallback
	// verify-and-record call put it in place (or found it already there).
	OutcomeRecovered
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFailed:
		return "failed"
	case OutcomeRecorded:
		return "recorded"
	case OutcomeRecovered:
		return "recovered"
	}
	return "none"
}

// Success reports whether the payment is confirmed recorded.
func (o Outcome) Success() bool { return o == OutcomeRecorded || o == OutcomeRecovered }

// Reconciler runs the lookup-then-fallback sequence.
type Reconciler struct {
	api TransactionAPI
}

// New builds a Reconciler over the given API slice.
func New(api TransactionAPI) *Reconciler {
	return &Reconciler{api: api}
}

// Run reconciles one checkout return for the authenticated user. Any
// network or backend error halts the flow without marking success; ctx
// cancellation (client gone, request superseded) aborts in-flight calls and
// surfaces as an error the same way.
func (r *Reconciler) Run(ctx context.Context, cb params.PaymentCallback, userID, token string) (Outcome, error) {
	if cb.OrderFailed {
		return OutcomeFailed, nil
	}
	if !cb.Complete() {
		return OutcomeNone, nil
	}

	tx, err := r.api.GetTransaction(ctx, cb.TransactionID, cb.OrderCode, token)
	if err != nil {
		return OutcomeNone, err
	}
	if tx.Found() {
		return OutcomeRecorded, nil
	}

	// Webhook not received yet: have the backend verify the transaction with
	// Viva and record it. A non-201 success means it raced the webhook and
	// the record already exists, which is success by idempotence.
	//
	// TODO: thread the charged amount through the checkout return URL; the
	// true amount is unknown at this point so a placeholder is recorded.
	req := backend.PaymentRequest{
		UserID:        userID,
		TransactionID: cb.TransactionID,
		OrderCode:     cb.OrderCode,
		EventID:       cb.EventID,
		ECI:           cb.ECI,
		AmountCents:   5,
	}
	if _, err := r.api.RecordPayment(ctx, req, token); err != nil {
		return OutcomeNone, err
	}
	return OutcomeRecovered, nil
}
