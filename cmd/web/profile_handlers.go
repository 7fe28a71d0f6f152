package main

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"foroline.gr/foroline-web/internal/backend"
	"foroline.gr/foroline-web/internal/format"
	mw "foroline.gr/foroline-web/internal/middleware"
)

// ProfileView is the account dashboard view model: balance, payment
// history and per-thread token usage.
type ProfileView struct {
	Identifier   string
	BalanceLabel string
	Payments     []PaymentRow
	Threads      []ThreadRow
}

type PaymentRow struct {
	OrderCode     string
	TransactionID string
	AmountLabel   string
	Status        string
	DateLabel     string
}

type ThreadRow struct {
	Name        string
	DateLabel   string
	InputLabel  string
	OutputLabel string
	TotalLabel  string
}

// ProfileHandler renders the signed-in account dashboard.
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	lang := mw.Lang(r)
	user := mw.CurrentUser(r)
	if user == nil {
		vm := basePageData(r, i18nOrDefault(lang, "profile.title", "Ο λογαριασμός μου"))
		vm.SEO.Robots = "noindex"
		renderPage(w, r, "profile_signin", vm)
		return
	}

	acct, err := apiClient.GetAccount(r.Context(), mw.AuthToken(r))
	if err != nil {
		zlog.Error("load account", zap.String("user_id", user.ID), zap.Error(err))
		vm := basePageData(r, i18nOrDefault(lang, "profile.title", "Ο λογαριασμός μου"))
		vm.Error = i18nOrDefault(lang, "profile.error", "Δεν ήταν δυνατή η φόρτωση του λογαριασμού.")
		renderPage(w, r, "profile", vm)
		return
	}

	vm := basePageData(r, i18nOrDefault(lang, "profile.title", "Ο λογαριασμός μου"))
	vm.SEO.Robots = "noindex"
	vm.Profile = buildProfileView(lang, acct)
	renderPage(w, r, "profile", vm)
}

func buildProfileView(lang string, acct backend.Account) ProfileView {
	view := ProfileView{
		Identifier:   acct.User.Identifier,
		BalanceLabel: format.FmtTokens(int64(acct.User.Balance), lang),
	}
	for _, p := range acct.Payments {
		view.Payments = append(view.Payments, PaymentRow{
			OrderCode:     p.OrderCode,
			TransactionID: p.TransactionID,
			AmountLabel:   format.FmtEuro(int64(p.AmountCents), lang),
			Status:        p.Status,
			DateLabel:     formatISODate(p.CreatedAt, lang),
		})
	}
	for _, t := range acct.ThreadUsage {
		view.Threads = append(view.Threads, ThreadRow{
			Name:        t.Name,
			DateLabel:   formatISODate(t.CreatedAt, lang),
			InputLabel:  format.FmtTokens(int64(t.InputTokens), lang),
			OutputLabel: format.FmtTokens(int64(t.OutputTokens), lang),
			TotalLabel:  format.FmtTokens(int64(t.TotalTokens), lang),
		})
	}
	return view
}

func formatISODate(raw, lang string) string {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return format.FmtDate(t, lang)
}
