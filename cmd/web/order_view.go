package main

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"foroline.gr/foroline-web/internal/format"
	"foroline.gr/foroline-web/internal/params"
)

// Plan is one purchasable credit package on the order page.
type Plan struct {
	AmountCents int
	PriceLabel  string
	NameKey     string
	DescKey     string
	Featured    bool
}

// OrderView aggregates everything the order page renders.
type OrderView struct {
	Plans    []Plan
	LoggedIn bool

	// NoticeKey, when set, renders a dismissible notice above the plans
	// (backend failure, discarded intent, and so on).
	NoticeKey    string
	NoticeDetail string

	// Confirm, when set, renders the resume-confirmation dialog for a
	// stale intent instead of the plain plan grid.
	Confirm *ConfirmView
}

// ConfirmView carries the pending intent the user must confirm or discard.
type ConfirmView struct {
	AmountCents int
	PriceLabel  string
}

// RedirectView renders an interstitial notice followed by a timed
// navigation (meta refresh), standing in for toast-then-navigate.
type RedirectView struct {
	MessageKey   string
	Detail       string
	TargetURL    string
	DelaySeconds int
}

func buildOrderView(lang string, loggedIn bool) OrderView {
	return OrderView{
		Plans: []Plan{
			{
				AmountCents: params.AmountBasic,
				PriceLabel:  format.FmtEuro(int64(params.AmountBasic), lang),
				NameKey:     "order.plan.basic.name",
				DescKey:     "order.plan.basic.desc",
			},
			{
				AmountCents: params.AmountPlus,
				PriceLabel:  format.FmtEuro(int64(params.AmountPlus), lang),
				NameKey:     "order.plan.plus.name",
				DescKey:     "order.plan.plus.desc",
				Featured:    true,
			},
		},
		LoggedIn: loggedIn,
	}
}

func confirmView(lang string, amountCents int) *ConfirmView {
	return &ConfirmView{
		AmountCents: amountCents,
		PriceLabel:  format.FmtEuro(int64(amountCents), lang),
	}
}

// checkoutURL builds the hosted checkout address for an order code.
func checkoutURL(orderCode string) string {
	return fmt.Sprintf("%s?ref=%s", appCfg.Payments.CheckoutURL, url.QueryEscape(orderCode))
}

func delaySeconds(d time.Duration) int {
	s := int(d / time.Second)
	if s < 1 {
		s = 1
	}
	return s
}

// formAmount reads and validates the amount field of a submitted form.
func formAmount(raw string) (int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	if n != params.AmountBasic && n != params.AmountPlus {
		return 0, false
	}
	return n, true
}
