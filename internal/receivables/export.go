package receivables

import (
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// csvHeader is the fixed column order of the receivables export.
var csvHeader = []string{
	"ID", "Documento", "Contrato", "Cliente", "Competencia", "Emissao",
	"Vencimento", "DiasAtraso", "Forma", "Bruto", "Descontos", "Liquido",
	"Aberto", "Status", "Responsavel", "Unidade",
}

const csvSeparator = ";"

// utf8BOM makes spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV emits the receivables report: semicolon-delimited, UTF-8 with BOM,
// every field double-quoted with embedded quotes doubled. Money columns use
// pt-BR formatting. encoding/csv cannot force quoting on every field, hence
// the explicit writer.
func WriteCSV(w io.Writer, records []Receivable, asOf time.Time) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	printer := message.NewPrinter(language.BrazilianPortuguese)

	if err := writeRow(w, csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		row := []string{
			rec.ID.String(),
			rec.DocumentNumber,
			rec.ContractName,
			rec.ClientName,
			rec.Month(),
			formatDate(rec.IssueDate),
			formatDate(rec.DueDate),
			strconv.Itoa(overdueDays(rec, asOf)),
			rec.PaymentMethod,
			printer.Sprintf("%.2f", rec.GrossAmount),
			printer.Sprintf("%.2f", rec.DiscountAmount),
			printer.Sprintf("%.2f", rec.NetAmount),
			printer.Sprintf("%.2f", rec.OpenAmount),
			string(rec.EffectiveStatus(asOf)),
			rec.Responsible,
			rec.Unit,
		}
		if err := writeRow(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(w io.Writer, fields []string) error {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteString(csvSeparator)
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteString("\r\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("02/01/2006")
}

// overdueDays reports days past due only for effectively overdue records,
// matching the report column semantics.
func overdueDays(rec Receivable, asOf time.Time) int {
	if rec.EffectiveStatus(asOf) != StatusOverdue {
		return 0
	}
	return rec.DaysOverdue(asOf)
}
