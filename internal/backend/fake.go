package backend

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Mock responses served when no API base URL is configured, so the frontend
// can be developed without a running backend.

func fakeOrderCode() string {
	b := make([]byte, 5)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("90%d", time.Now().UnixNano()%1_0000_0000)
	}
	return "90" + hex.EncodeToString(b)
}

func fakeTransaction(transactionID, orderCode string) Transaction {
	return Transaction{
		ID:            "pay_" + transactionID,
		TransactionID: transactionID,
		OrderCode:     orderCode,
		UserID:        "dev-user",
		EventID:       1796,
		ECI:           5,
		AmountCents:   500,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
	}
}

func fakeAccount() Account {
	acct := Account{}
	acct.User.ID = "dev-user"
	acct.User.Identifier = "dev@foroline.gr"
	acct.User.Balance = 120_000
	acct.Payments = []Payment{
		{
			OrderCode:     fakeOrderCode(),
			TransactionID: "b1f0c9a2-demo",
			AmountCents:   500,
			Currency:      "EUR",
			CreatedAt:     time.Now().Add(-48 * time.Hour).UTC().Format(time.RFC3339),
			Status:        "completed",
		},
	}
	acct.ThreadUsage = []ThreadUsage{
		{
			ID:           "thr_demo",
			Name:         "Φορολογική δήλωση 2025",
			CreatedAt:    time.Now().Add(-24 * time.Hour).UTC().Format(time.RFC3339),
			InputTokens:  1840,
			OutputTokens: 3120,
			TotalTokens:  4960,
		},
	}
	return acct
}
