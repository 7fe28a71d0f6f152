package main

import (
	"net/http"

	"go.uber.org/zap"

	mw "foroline.gr/foroline-web/internal/middleware"
	"foroline.gr/foroline-web/internal/params"
	"foroline.gr/foroline-web/internal/reconcile"
	"foroline.gr/foroline-web/internal/redirect"
)

// OutcomeView is the view model for the checkout return pages.
type OutcomeView struct {
	Success    bool
	Failed     bool
	MessageKey string
	Detail     string
	// Home interstitial target; empty means stay on the page.
	HomeURL      string
	DelaySeconds int
}

// OrderSuccessHandler reconciles a return from hosted checkout. Viva
// redirects here with t/s/eventId/eci (and orderFailed on failure); the
// cookies may have been dropped mid-flight, so an unauthenticated return
// goes through login again with the callback params preserved.
func OrderSuccessHandler(w http.ResponseWriter, r *http.Request) {
	cb := params.ParsePaymentCallback(r.URL.Query())

	user := mw.CurrentUser(r)
	if user == nil {
		kept := redirect.FilterParams(r.URL.Query())
		returnTo := "/order/success"
		if len(kept) > 0 {
			returnTo += "?" + kept.Encode()
		}
		renderRedirectPage(w, r, "order.login.pending", RedirectView{
			MessageKey:   "order.login.pending",
			TargetURL:    loginRedirector().LoginURL(returnTo),
			DelaySeconds: delaySeconds(appCfg.Auth.LoginRedirectDelay),
		})
		return
	}

	outcome, err := reconciler.Run(r.Context(), cb, user.ID, mw.AuthToken(r))
	if err != nil {
		zlog.Error("reconcile checkout return",
			zap.String("transaction_id", cb.TransactionID),
			zap.String("order_code", cb.OrderCode),
			zap.Error(err),
		)
		renderOutcomePage(w, r, OutcomeView{
			MessageKey: "payment.outcome.error",
			Detail:     err.Error(),
		})
		return
	}

	zlog.Info("checkout return reconciled",
		zap.String("outcome", outcome.String()),
		zap.String("transaction_id", cb.TransactionID),
		zap.String("order_code", cb.OrderCode),
	)

	switch outcome {
	case reconcile.OutcomeFailed:
		renderOutcomePage(w, r, OutcomeView{
			Failed:     true,
			MessageKey: "payment.outcome.failed",
		})
	case reconcile.OutcomeRecorded, reconcile.OutcomeRecovered:
		renderOutcomePage(w, r, OutcomeView{
			Success:      true,
			MessageKey:   "payment.outcome.success",
			HomeURL:      "/",
			DelaySeconds: delaySeconds(appCfg.Payments.HomeRedirectDelay),
		})
	default:
		// Nothing to reconcile; just take the visitor home.
		renderOutcomePage(w, r, OutcomeView{
			MessageKey:   "payment.outcome.none",
			HomeURL:      "/",
			DelaySeconds: delaySeconds(appCfg.Payments.HomeRedirectDelay),
		})
	}
}

// OrderFailHandler renders the failed/cancelled checkout notice. No backend
// calls are made on this path.
func OrderFailHandler(w http.ResponseWriter, r *http.Request) {
	renderOutcomePage(w, r, OutcomeView{
		Failed:     true,
		MessageKey: "payment.outcome.failed",
	})
}

func renderOutcomePage(w http.ResponseWriter, r *http.Request, view OutcomeView) {
	lang := mw.Lang(r)
	vm := basePageData(r, i18nOrDefault(lang, "payment.title", "Αποτέλεσμα πληρωμής"))
	vm.SEO.Robots = "noindex"
	vm.Outcome = view
	renderPage(w, r, "order_outcome", vm)
}
