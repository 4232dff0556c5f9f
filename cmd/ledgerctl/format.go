package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Libaaxow/gaf-flow-hub-sub002/internal/domain/shared/valueobject"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// amount renders money with thousands separators, e.g. 1,250.00
func amount(m valueobject.Money) string {
	return printer.Sprintf("%.2f", m.Amount().InexactFloat64())
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
}

func row(w io.Writer, cells ...any) {
	for i, c := range cells {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, c)
	}
	fmt.Fprintln(w, "\t")
}
