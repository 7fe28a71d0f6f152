package main

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"foroline.gr/foroline-web/internal/backend"
	"foroline.gr/foroline-web/internal/intent"
	mw "foroline.gr/foroline-web/internal/middleware"
	"foroline.gr/foroline-web/internal/params"
)

// authRedirect builds login URLs for unauthenticated visitors. With no
// authorize endpoint configured (standalone development) the round trip
// collapses into a direct hop to our own callback.
type authRedirect struct {
	authorizeURL string
	provider     string
}

func (a authRedirect) LoginURL(returnTo string) string {
	if a.authorizeURL == "" {
		return "/auth/callback?return_to=" + url.QueryEscape(returnTo)
	}
	q := url.Values{}
	q.Set("provider", a.provider)
	q.Set("return_to", returnTo)
	return a.authorizeURL + "?" + q.Encode()
}

var _ intent.AuthRedirector = authRedirect{}

func loginRedirector() authRedirect {
	return authRedirect{authorizeURL: appCfg.Auth.AuthorizeURL, provider: appCfg.Auth.Provider}
}

// clock feeds the intent freshness checks; nil means time.Now. Overridable
// so tests can move across the freshness windows.
var clock func() time.Time

func intentController(r *http.Request) *intent.Controller {
	return intent.NewController(mw.IntentStore(r), clock)
}

// OrderPageHandler renders the plan picker and, after the login round trip,
// resolves any intent carried back in the URL. Intent parameters never reach
// a rendered page: every resolution ends in a redirect to the canonical
// /order, which then shows the stashed outcome.
func OrderPageHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	q := r.URL.Query()
	hasIntentParams := q.Get(params.KeyAmount) != "" || q.Get(params.KeyCreatedAt) != ""

	user := mw.CurrentUser(r)
	if user == nil {
		if hasIntentParams {
			// Intent params without a login mean the round trip never
			// completed; strip them back to the canonical URL.
			seeOther(w, r, "/order")
			return
		}
		renderOrderPage(w, r, buildOrderView(lang, false))
		return
	}

	if hasIntentParams {
		decision := intentController(r).Resume(q)
		switch decision.Action {
		case intent.ActionAutoResume:
			startCheckout(w, r, decision.AmountCents)
		case intent.ActionAskConfirmation:
			view := buildOrderView(lang, true)
			view.Confirm = confirmView(lang, decision.AmountCents)
			renderOrderPage(w, r, view)
		default:
			seeOther(w, r, "/order")
		}
		return
	}

	if f := mw.GetSession(r).PopOrderFlash(); f != nil {
		if f.CheckoutURL != "" {
			renderRedirectPage(w, r, "order.checkout.pending", RedirectView{
				MessageKey:   "order.checkout.pending",
				TargetURL:    f.CheckoutURL,
				DelaySeconds: delaySeconds(appCfg.Payments.CheckoutRedirectDelay),
			})
			return
		}
		view := buildOrderView(lang, true)
		view.NoticeKey = f.NoticeKey
		view.NoticeDetail = f.NoticeDetail
		renderOrderPage(w, r, view)
		return
	}

	renderOrderPage(w, r, buildOrderView(lang, true))
}

// OrderSubmitHandler handles a plan selection. Guests get their intent
// persisted and a login interstitial; authenticated users go straight to
// checkout.
func OrderSubmitHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	amount, ok := formAmount(r.PostFormValue("amount"))
	if !ok {
		view := buildOrderView(mw.Lang(r), mw.CurrentUser(r) != nil)
		view.NoticeKey = "order.notice.badamount"
		renderOrderPage(w, r, view)
		return
	}

	if mw.CurrentUser(r) == nil {
		vals := intentController(r).Persist(amount)
		returnTo := "/order?" + vals.Encode()
		renderRedirectPage(w, r, "order.login.pending", RedirectView{
			MessageKey:   "order.login.pending",
			TargetURL:    loginRedirector().LoginURL(returnTo),
			DelaySeconds: delaySeconds(appCfg.Auth.LoginRedirectDelay),
		})
		return
	}

	startCheckout(w, r, amount)
}

// OrderConfirmHandler resolves a pending stale-intent confirmation.
func OrderConfirmHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	if mw.CurrentUser(r) == nil {
		seeOther(w, r, "/order")
		return
	}
	amount, _ := formAmount(r.PostFormValue("amount"))
	decision := intentController(r).Confirm(amount)
	if decision.Action != intent.ActionAutoResume {
		seeOther(w, r, "/order")
		return
	}
	startCheckout(w, r, decision.AmountCents)
}

// OrderCancelHandler discards a pending stale-intent confirmation.
func OrderCancelHandler(w http.ResponseWriter, r *http.Request) {
	intentController(r).Discard()
	seeOther(w, r, "/order")
}

// startCheckout opens a backend order, stashes the outcome in the session
// and redirects to the canonical order URL, where the checkout interstitial
// or a retryable failure notice is rendered. The redirect keeps consumed
// intent parameters and the submitted form out of the browser history.
func startCheckout(w http.ResponseWriter, r *http.Request, amountCents int) {
	sess := mw.GetSession(r)
	orderCode, err := apiClient.CreateOrder(r.Context(), amountCents, mw.AuthToken(r))
	if err != nil {
		zlog.Warn("create order",
			zap.Int("amount_cents", amountCents),
			zap.Error(err),
		)
		flash := &mw.OrderFlash{NoticeKey: "order.notice.failed"}
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			flash.NoticeDetail = apiErr.Message
		}
		sess.OrderFlash = flash
		sess.MarkDirty()
		seeOther(w, r, "/order")
		return
	}

	zlog.Info("order created",
		zap.Int("amount_cents", amountCents),
		zap.String("order_code", orderCode),
	)
	sess.OrderFlash = &mw.OrderFlash{CheckoutURL: checkoutURL(orderCode)}
	sess.MarkDirty()
	seeOther(w, r, "/order")
}

func renderOrderPage(w http.ResponseWriter, r *http.Request, view OrderView) {
	lang := mw.Lang(r)
	vm := basePageData(r, i18nOrDefault(lang, "order.title", "Αγορά μονάδων"))
	vm.SEO.Title = vm.Title + " | " + i18nOrDefault(lang, "brand.name", "Foroline")
	vm.SEO.Description = i18nOrDefault(lang, "order.desc", "Αγοράστε μονάδες για τον φορολογικό σας βοηθό.")
	vm.Order = view
	renderPage(w, r, "order", vm)
}

// renderRedirectPage shows a short notice and then navigates via meta
// refresh, the server-side analogue of toast-then-navigate.
func renderRedirectPage(w http.ResponseWriter, r *http.Request, titleKey string, view RedirectView) {
	lang := mw.Lang(r)
	vm := basePageData(r, i18nOrDefault(lang, titleKey, "Ανακατεύθυνση"))
	vm.SEO.Robots = "noindex"
	vm.Redirect = view
	renderPage(w, r, "redirect", vm)
}
