package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"estates/internal/estate"
	"estates/internal/game"

	"github.com/fatih/color"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func promptChoice(label string, options []string, defaultValue string) (string, error) {
	for {
		fmt.Printf("%s (%s) [%s]: ", label, strings.Join(options, "/"), defaultValue)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.ToLower(strings.TrimSpace(text))
		if text == "" {
			text = strings.ToLower(defaultValue)
		}
		for _, opt := range options {
			if text == strings.ToLower(opt) {
				return text, nil
			}
		}
		printWarn("Invalid option. Please pick one of the listed values.")
	}
}

func renderDashboard(d game.Dashboard) {
	accent.Printf("\n== ROUND %d ==\n", d.Round)
	switch {
	case d.Won, d.Lost:
		if d.Won {
			success.Println(d.Message)
		} else {
			danger.Println(d.Message)
		}
	case d.Paused:
		printWarn("Game is paused.")
	}
	fmt.Printf("Balance:          %s\n", colorizeMicros(d.BalanceMicros))
	fmt.Printf("Net Worth:        %s\n", colorizeMicros(d.NetWorthMicros))
	fmt.Printf("Property Value:   %s\n", formatMicros(d.PropertyValueMicros))
	fmt.Printf("Debt:             %s\n", formatMicros(d.DebtMicros))
	fmt.Printf("Interest Rate:    %.2f%%\n", d.BaseInterestRate*100)
	fmt.Printf("Property Tax:     %.2f%%\n", d.PropertyTaxRate*100)
	fmt.Printf("Market:           %d for sale, %d offers, %d leases\n", d.ForSaleCount, d.ActiveOffers, d.ActiveRentals)

	if len(d.Owned) > 0 {
		fmt.Println()
		accent.Println("Holdings")
		printPropertyHeader()
		for _, p := range d.Owned {
			printPropertyRow(p)
		}
	}
	if len(d.Loans) > 0 {
		fmt.Println()
		accent.Println("Loans")
		fmt.Printf("%-8s %-20s %14s %12s %8s\n", "ID", "PURPOSE", "PRINCIPAL", "MONTHLY", "LEFT")
		for _, l := range d.Loans {
			fmt.Printf("%-8s %-20s %14s %12s %8d\n",
				shortID(l.ID.String()), truncate(l.Purpose, 20), formatMicros(l.PrincipalMicros), formatMicros(l.MonthlyPaymentMicros), l.MonthsRemaining)
		}
	}

	s := d.Stats
	fmt.Println()
	accent.Println("Statistics")
	fmt.Printf("Bought/Sold/Rented: %d/%d/%d\n", s.PropertiesBought, s.PropertiesSold, s.PropertiesRented)
	fmt.Printf("Spent:              %s\n", formatMicros(s.MoneySpentMicros))
	fmt.Printf("Earned:             %s\n", formatMicros(s.MoneyEarnedMicros))
	fmt.Printf("Rental Income:      %s\n", formatMicros(s.RentalIncomeMicros))
	fmt.Printf("Taxes/Maintenance:  %s / %s\n", formatMicros(s.TaxesPaidMicros), formatMicros(s.MaintenancePaidMicros))
	fmt.Printf("Peak Net Worth:     %s\n", formatMicros(s.HighestBalanceMicros))
	fmt.Println()
}

func printPropertyHeader() {
	fmt.Printf("%-36s %-22s %-4s %-10s %-9s %-9s %14s %10s %4s\n", "ID", "ADDRESS", "CTY", "TYPE", "SAFETY", "STATUS", "VALUE", "RENT", "REN")
}

func printPropertyRow(p game.PropertyView) {
	fmt.Printf("%-36s %-22s %-4s %-10s %-9s %-9s %14s %10s %4d\n",
		p.ID, truncate(p.Address, 22), p.County, p.Type, p.Safety, p.Status,
		formatMicros(p.ValueMicros), formatMicros(p.MonthlyRentMicros), p.RenovationLevel)
}

func renderMarket(rows []game.PropertyView) {
	accent.Println("\n== MARKET ==")
	if len(rows) == 0 {
		printInfo("No properties for sale.")
		return
	}
	fmt.Printf("%-36s %-22s %-12s %-4s %-12s %-10s %-9s %14s %8s\n", "ID", "ADDRESS", "CITY", "CTY", "LOCATION", "TYPE", "SAFETY", "PRICE", "BED/BATH")
	for _, p := range rows {
		fmt.Printf("%-36s %-22s %-12s %-4s %-12s %-10s %-9s %14s %8s\n",
			p.ID, truncate(p.Address, 22), truncate(p.City, 12), p.County, p.Location, p.Type, p.Safety,
			formatMicros(p.PriceMicros), fmt.Sprintf("%d/%d", p.Bedrooms, p.Bathrooms))
	}
	fmt.Println()
}

func renderOffers(rows []game.OfferView) {
	accent.Println("\n== OFFERS ==")
	if len(rows) == 0 {
		printInfo("Nobody is looking right now.")
		return
	}
	fmt.Printf("%-36s %-10s %-7s %-4s %-10s %-9s %14s %s\n", "ID", "NAME", "ROLE", "CTY", "TYPE", "SAFETY", "OFFER", "ALTERNATIVE")
	for _, o := range rows {
		alt := ""
		if o.AltSafety != "" {
			alt = fmt.Sprintf("%s @ %s", o.AltSafety, formatMicros(o.AltOfferMicros))
		}
		fmt.Printf("%-36s %-10s %-7s %-4s %-10s %-9s %14s %s\n",
			o.ID, truncate(o.Name, 10), o.Role, o.County, o.DesiredType, o.DesiredSafety, formatMicros(o.OfferMicros), alt)
	}
	fmt.Println()
}

func renderEvents(rows []game.EventView) {
	accent.Println("\n== MARKET EVENTS ==")
	if len(rows) == 0 {
		printInfo("The market is quiet.")
		return
	}
	for _, e := range rows {
		scope := "national"
		if e.County != "" {
			scope = e.County
		}
		impact := colorizePercent((e.Multiplier - 1) * 100)
		fmt.Printf("%-22s %-9s %s  %d rounds left\n", e.Title, scope, impact, e.Remaining)
		if e.Description != "" {
			fmt.Printf("  %s\n", e.Description)
		}
	}
	fmt.Println()
}

func renderLedger(rows []game.TransactionView) {
	accent.Println("\n== LEDGER ==")
	if len(rows) == 0 {
		printInfo("No transactions yet.")
		return
	}
	fmt.Printf("%-6s %-16s %-14s %14s %s\n", "ROUND", "TIME", "KIND", "AMOUNT", "DETAILS")
	for _, t := range rows {
		fmt.Printf("%-6d %-16s %-14s %14s %s\n",
			t.Round, t.At.Local().Format("2006-01-02 15:04"), t.Kind, colorizeMicros(t.AmountMicros), t.Details)
	}
	fmt.Println()
}

func renderRound(rep game.RoundReport) {
	if rep.Skipped {
		printWarn(fmt.Sprintf("Round %d skipped: game is paused.", rep.Round))
		return
	}
	accent.Printf("\n== ROUND %d COMPLETE ==\n", rep.Round)
	if rep.EventSpawned != "" {
		fmt.Printf("Event:        %s\n", rep.EventSpawned)
	}
	fmt.Printf("Rent:         %s\n", colorizeMicros(rep.Rentals.CollectedMicros))
	if rep.TaxPaidMicros > 0 || rep.TaxSkipped {
		fmt.Printf("Taxes:        %s (skipped=%t)\n", formatMicros(rep.TaxPaidMicros), rep.TaxSkipped)
	}
	if rep.MaintenancePaidMicros > 0 || rep.MaintenanceMissed {
		fmt.Printf("Maintenance:  %s (missed=%t)\n", formatMicros(rep.MaintenancePaidMicros), rep.MaintenanceMissed)
	}
	fmt.Printf("NPC sales:    %d\n", rep.Matches)
	fmt.Printf("Balance:      %s\n", colorizeMicros(rep.BalanceMicros))
	fmt.Printf("Net Worth:    %s\n", colorizeMicros(rep.NetWorthMicros))
	switch {
	case rep.Won:
		printSuccess("You won!")
	case rep.Lost:
		danger.Println("Bankrupt.")
	}
	fmt.Println()
}

func colorizeMicros(v int64) string {
	text := formatMicros(v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizePercent(v float64) string {
	text := fmt.Sprintf("%+.1f%%", v)
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func formatMicros(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := v / estate.MicrosPerUnit
	frac := (v % estate.MicrosPerUnit) / 10_000
	return fmt.Sprintf("%s$%s.%02d", sign, comma(whole), frac)
}

func comma(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
		b.WriteByte(',')
	}
	for i := pre; i < len(s); i += 3 {
		b.WriteString(s[i : i+3])
		if i+3 < len(s) {
			b.WriteByte(',')
		}
	}
	return b.String()
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
