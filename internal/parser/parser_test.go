package parser

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-reconciliation-backend/internal/models"
)

const primaryStatement = `OFXHEADER:100
<OFX>
<ORG>Banco Exemplo</ORG>
<BANKID>341</BANKID>
<ACCTID>12345-6</ACCTID>
<BANKTRANLIST>
<STMTTRN>
<TRNTYPE>DEBIT</TRNTYPE>
<DTPOSTED>20260115</DTPOSTED>
<TRNAMT>150.00</TRNAMT>
<MEMO>Mensalidade Joao</MEMO>
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT</TRNTYPE>
<DTPOSTED>20260120120000[-3:BRT]</DTPOSTED>
<TRNAMT>-75.50</TRNAMT>
<MEMO>Estorno tarifa</MEMO>
</STMTTRN>
</BANKTRANLIST>
</OFX>`

func TestParse_PrimaryBlocks(t *testing.T) {
	res := Parse(primaryStatement)

	assert.Equal(t, "Banco Exemplo", res.BankName)
	assert.Equal(t, "12345-6", res.AccountNumber)
	require.Len(t, res.Transactions, 2)

	first := res.Transactions[0]
	assert.Equal(t, "2026-01-15", first.Date)
	assert.Equal(t, 150.00, first.Amount)
	assert.Equal(t, models.KindDebit, first.Kind)
	assert.Equal(t, "Mensalidade Joao", first.Description)

	// amount is stored absolute; polarity lives in Kind only
	second := res.Transactions[1]
	assert.Equal(t, "2026-01-20", second.Date)
	assert.Equal(t, 75.50, second.Amount)
	assert.Equal(t, models.KindCredit, second.Kind)
}

func TestParse_PrimarySkipsIncompleteBlocks(t *testing.T) {
	raw := `<STMTTRN>
<TRNTYPE>DEBIT</TRNTYPE>
<MEMO>sem data nem valor</MEMO>
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT</TRNTYPE>
<DTPOSTED>20260201</DTPOSTED>
<TRNAMT>10.00</TRNAMT>
<MEMO>ok</MEMO>
</STMTTRN>`

	res := Parse(raw)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "ok", res.Transactions[0].Description)
}

func TestParse_FallbackPipe(t *testing.T) {
	res := Parse("2026-01-15|150.00|Mensalidade Joao")

	require.Len(t, res.Transactions, 1)
	tx := res.Transactions[0]
	assert.Equal(t, "2026-01-15", tx.Date)
	assert.Equal(t, 150.00, tx.Amount)
	assert.Equal(t, "Mensalidade Joao", tx.Description)
}

func TestParse_FallbackComma(t *testing.T) {
	raw := "15/01/2026,150.00,Mensalidade Joao\nnot a transaction line\n"

	res := Parse(raw)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2026-01-15", res.Transactions[0].Date)
	assert.Equal(t, 150.00, res.Transactions[0].Amount)
	assert.Equal(t, "Mensalidade Joao", res.Transactions[0].Description)
}

func TestParse_FallbackDecimalComma(t *testing.T) {
	res := Parse("2026-02-01|1.150,00|Tarifa mensal")

	require.Len(t, res.Transactions, 1)
	assert.Equal(t, 1150.00, res.Transactions[0].Amount)
}

func TestParse_FallbackSkipsNonMatchingLines(t *testing.T) {
	raw := "header|line|here\n2026-02-01|20.00|Mensalidade Maria\nrodape do extrato"

	res := Parse(raw)
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "Mensalidade Maria", res.Transactions[0].Description)
}

func TestParse_FallbackOnlyWhenPrimaryYieldsZero(t *testing.T) {
	// a fallback-shaped line after a valid block must not produce a second pass
	raw := primaryStatement + "\n2026-01-15|150.00|linha solta"

	res := Parse(raw)
	assert.Len(t, res.Transactions, 2)
}

func TestParse_ArbitraryTextDegradesToEmpty(t *testing.T) {
	res := Parse("nada para ver aqui\napenas texto livre")
	assert.Empty(t, res.Transactions)
	assert.Empty(t, res.BankName)
}

func TestParse_Idempotent(t *testing.T) {
	raw := primaryStatement
	first := Parse(raw)
	second := Parse(raw)
	assert.Equal(t, first, second)
}

func TestParse_UnparseableDateDefaultsToProcessingDate(t *testing.T) {
	orig := now
	now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	defer func() { now = orig }()

	// matches the ISO shape but is not a real calendar date
	res := Parse("2026-13-45|10.00|data invalida")
	require.Len(t, res.Transactions, 1)
	assert.Equal(t, "2026-03-10", res.Transactions[0].Date)
}

func TestCleanAmount(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"150.00", 150.00, true},
		{"-150.00", 150.00, true},
		{"R$ 1.234,56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"+20,5", 20.5, true},
		{"abc", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := cleanAmount(tc.in)
		assert.Equal(t, tc.ok, ok, tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, tc.in)
		}
	}
}
