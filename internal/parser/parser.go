package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"statement-reconciliation-backend/internal/models"
)

// Transaction is one extracted statement entry, prior to persistence. Amount is
// always the absolute value; polarity is carried by Kind only, because bank
// exports are inconsistent about signed amounts.
type Transaction struct {
	Date        string  // YYYY-MM-DD
	Amount      float64 // absolute value
	Description string
	Kind        string // debit | credit
	RawMemo     string
}

// Result is the output of a parse pass over a raw statement export.
type Result struct {
	Transactions  []Transaction
	BankName      string
	AccountNumber string
}

// overridable in tests; unparseable dates fall back to the processing date
var now = time.Now

// Parse extracts transactions from a raw statement export. It never fails:
// input matching neither layout yields an empty transaction list. The
// fallback pass runs only when the primary pass extracted zero transactions,
// never merged with it.
func Parse(raw string) Result {
	res := parsePrimary(raw)
	if len(res.Transactions) == 0 {
		res.Transactions = parseFallback(raw)
	}
	return res
}

// Primary layout: delimited transaction blocks in the style of OFX exports.
// Each block opens with <STMTTRN> and carries a type marker, an 8-digit
// posted-date marker, an amount marker and a memo marker.
var (
	blockStartRe = regexp.MustCompile(`(?i)<STMTTRN>`)

	tagRes = map[string]*regexp.Regexp{
		"ORG":      tagRe("ORG"),
		"BANKID":   tagRe("BANKID"),
		"ACCTID":   tagRe("ACCTID"),
		"TRNTYPE":  tagRe("TRNTYPE"),
		"DTPOSTED": tagRe("DTPOSTED"),
		"TRNAMT":   tagRe("TRNAMT"),
		"MEMO":     tagRe("MEMO"),
		"NAME":     tagRe("NAME"),
	}
)

func tagRe(tag string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)<` + tag + `>\s*([^<\r\n]+)`)
}

func tagValue(block, tag string) string {
	if m := tagRes[tag].FindStringSubmatch(block); len(m) > 1 {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func parsePrimary(raw string) Result {
	var res Result

	res.BankName = tagValue(raw, "ORG")
	if res.BankName == "" {
		res.BankName = tagValue(raw, "BANKID")
	}
	res.AccountNumber = tagValue(raw, "ACCTID")

	blocks := blockStartRe.Split(raw, -1)
	if len(blocks) < 2 {
		return res
	}

	for _, block := range blocks[1:] {
		// closing tag, when present, bounds the block
		if idx := strings.Index(strings.ToUpper(block), "</STMTTRN>"); idx != -1 {
			block = block[:idx]
		}

		dateTok := tagValue(block, "DTPOSTED")
		amountTok := tagValue(block, "TRNAMT")
		if dateTok == "" || amountTok == "" {
			continue
		}

		amount, ok := cleanAmount(amountTok)
		if !ok {
			continue
		}

		memo := tagValue(block, "MEMO")
		if memo == "" {
			memo = tagValue(block, "NAME")
		}

		res.Transactions = append(res.Transactions, Transaction{
			Date:        normalizeDate(dateTok),
			Amount:      amount,
			Description: memo,
			Kind:        kindFromType(tagValue(block, "TRNTYPE")),
			RawMemo:     memo,
		})
	}

	return res
}

// Fallback layout: one transaction per line, fields split on "|" or ",",
// date | amount | description. Lines that do not fit are skipped silently;
// this is a best-effort importer, not a validator.
func parseFallback(raw string) []Transaction {
	var txs []Transaction

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := splitFields(line)
		if len(fields) < 3 {
			continue
		}

		dateTok := strings.TrimSpace(fields[0])
		if !looksLikeDate(dateTok) {
			continue
		}

		amount, ok := cleanAmount(strings.TrimSpace(fields[1]))
		if !ok {
			continue
		}

		txs = append(txs, Transaction{
			Date:        normalizeDate(dateTok),
			Amount:      amount,
			Description: strings.TrimSpace(fields[2]),
			// fallback lines carry no polarity marker
			Kind:    models.KindCredit,
			RawMemo: line,
		})
	}

	return txs
}

func splitFields(line string) []string {
	if strings.Contains(line, "|") {
		return strings.Split(line, "|")
	}
	return strings.Split(line, ",")
}

var (
	isoDateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	dmyDateRe = regexp.MustCompile(`^\d{1,2}[/-]\d{1,2}[/-]\d{4}$`)
)

func looksLikeDate(s string) bool {
	return isoDateRe.MatchString(s) || dmyDateRe.MatchString(s)
}

// normalizeDate converts a date token to YYYY-MM-DD. Accepted forms: 8-digit
// YYYYMMDD (possibly with a trailing timestamp), ISO (truncated to date-only)
// and day/month/year. Anything else defaults to the processing date.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)

	if len(s) >= 8 {
		if t, err := time.Parse("20060102", s[:8]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if isoDateRe.MatchString(s) {
		if t, err := time.Parse("2006-01-02", s[:10]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if dmyDateRe.MatchString(s) {
		norm := strings.ReplaceAll(s, "-", "/")
		for _, layout := range []string{"02/01/2006", "2/1/2006"} {
			if t, err := time.Parse(layout, norm); err == nil {
				return t.Format("2006-01-02")
			}
		}
	}

	return now().Format("2006-01-02")
}

// cleanAmount parses a raw amount token into an absolute float64. Currency
// symbols and thousands separators are stripped; both "1,234.56" and
// "1.234,56" styles are accepted.
func cleanAmount(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' || r == '.' || r == ',' || r == '-' || r == '+' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")
	switch {
	case lastComma > lastDot:
		// comma is the decimal separator
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		i := strings.LastIndex(cleaned, ",")
		cleaned = strings.ReplaceAll(cleaned[:i], ",", "") + "." + cleaned[i+1:]
	default:
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}

	f, err := strconv.ParseFloat(strings.TrimPrefix(cleaned, "+"), 64)
	if err != nil {
		return 0, false
	}
	if f < 0 {
		f = -f
	}
	return f, true
}

func kindFromType(trnType string) string {
	if strings.Contains(strings.ToUpper(trnType), "DEBIT") {
		return models.KindDebit
	}
	return models.KindCredit
}
