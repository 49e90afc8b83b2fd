package pdf

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

var printer = message.NewPrinter(language.MustParse("es-CL"))

// FormatMoney "$1.234.567,50": separador de miles y dos decimales según la configuración regional.
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return "$" + printer.Sprint(number.Decimal(f, number.Scale(2)))
}
