// Package ingest watches incoming SMS in the background and forwards
// probable financial transactions to the backend parser.
package ingest

import (
	"regexp"
	"strings"
)

var (
	moneyRe = regexp.MustCompile(`(?i)(?:rs\.?|inr|₹|amt)`)
	digitRe = regexp.MustCompile(`\d`)
)

var transactionWords = []string{
	"credited", "debited", "spent", "paid",
	"received", "sent", "refund", "transfer",
}

// PreFilterSMS is the cheap gate applied before any network traffic: a
// message must carry a currency marker, a digit and a transaction
// keyword, and must not look like an OTP or a payment request. The real
// parsing happens on the backend; this only keeps obvious noise off the
// wire.
func PreFilterSMS(body string) bool {
	text := strings.ToLower(body)

	if !moneyRe.MatchString(text) {
		return false
	}
	if !digitRe.MatchString(text) {
		return false
	}

	hasTransactionWord := false
	for _, word := range transactionWords {
		if strings.Contains(text, word) {
			hasTransactionWord = true
			break
		}
	}
	if !hasTransactionWord {
		return false
	}

	if strings.Contains(text, "otp") || strings.Contains(text, "one time password") {
		return false
	}
	if strings.Contains(text, "request") {
		return false
	}

	return true
}
