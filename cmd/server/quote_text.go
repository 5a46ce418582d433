package main

import (
	"fmt"
	"net/http"
	"strings"
)

func (s *server) handleQuoteText(w http.ResponseWriter, r *http.Request) {
	opp, ok := s.loadOpportunity(w, r)
	if !ok {
		return
	}

	view := s.buildCompareView(r, opp)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(renderQuoteText(view)))
}

func renderQuoteText(v compareView) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Quote: %s\n", v.Title)
	if p := v.Promotion; p != nil {
		fmt.Fprintf(&b, "Promotion: %s (%s)", p.Type, p.Discount)
		if p.ValidUntil != "" {
			fmt.Fprintf(&b, " valid until %s", p.ValidUntil)
		}
		if p.Expired {
			b.WriteString(" [expired]")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	for i, pkg := range v.Packages {
		fmt.Fprintf(&b, "Package %d: %s", i+1, pkg.Display)
		if pkg.Decided {
			b.WriteString(" (approved)")
		}
		b.WriteString("\n")
		for _, o := range pkg.Options {
			name := o.Name
			if name == "" {
				name = "Option"
			}
			fmt.Fprintf(&b, "  - %s: %s", name, o.Display)
			if o.Original != "" {
				fmt.Fprintf(&b, " (was %s)", o.Original)
			}
			b.WriteString("\n")
		}
	}

	if v.Display != "" {
		label := "Price range"
		if v.Approved {
			label = "Approved total"
		}
		fmt.Fprintf(&b, "\n%s: %s\n", label, v.Display)
	}
	if q := v.AsLowAs; q != nil {
		fmt.Fprintf(&b, "As low as: %s (%s, %.2f%% APR, %d months)\n", q.Display, q.Plan.Name, q.Plan.APR, q.Plan.TermMonths)
	}

	return b.String()
}
