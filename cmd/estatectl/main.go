package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"estates/internal/config"
	"estates/internal/db"
	"estates/internal/estate"
	"estates/internal/game"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

type app struct {
	svc       *game.Service
	closeRepo func()
}

func main() {
	a := &app{}
	root := &cobra.Command{
		Use:          "estatectl",
		Short:        "Operate the real-estate market game",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open(cmd.Context())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeRepo != nil {
				a.closeRepo()
			}
		},
	}

	root.AddCommand(
		newStatusCmd(a),
		newMarketCmd(a),
		newOffersCmd(a),
		newEventsCmd(a),
		newLedgerCmd(a),
		newPauseCmd(a, true),
		newPauseCmd(a, false),
		newResetCmd(a),
		newBuyCmd(a),
		newSellCmd(a),
		newSellToCmd(a),
		newRentCmd(a),
		newRentOutCmd(a),
		newRenovateCmd(a),
		newSetRentCmd(a),
		newSetPriceCmd(a),
		newQuickBuyCmd(a),
		newLoanCmd(a),
		newTickCmd(a),
	)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) open(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: max(cfg.LogLevel, slog.LevelWarn)}))
	clock := estate.SystemClock()
	repo, closeRepo, err := db.Open(ctx, cfg, clock, logger)
	if err != nil {
		return err
	}
	a.closeRepo = closeRepo
	a.svc = game.NewService(repo, logger, game.Options{
		Rand:              estate.NewSource(cfg.Seed),
		Clock:             clock,
		StaleListingAfter: cfg.StaleListingAfter,
	})
	return nil
}

func timeout(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func parseID(label, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", label, raw)
	}
	return id, nil
}

func parseAmount(raw string) (int64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", raw)
	}
	return estate.UnitsToMicros(v), nil
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show balance, holdings and statistics",
		Aliases: []string{"dash"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			d, err := a.svc.Dashboard(ctx)
			if err != nil {
				return err
			}
			renderDashboard(d)
			return nil
		},
	}
}

func newMarketCmd(a *app) *cobra.Command {
	var f game.MarketFilter
	var location, typ string
	cmd := &cobra.Command{
		Use:   "market",
		Short: "List properties for sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Location = estate.LocationType(strings.ToLower(location))
			f.Type = estate.EstateType(strings.ToLower(typ))
			f.County = strings.ToUpper(f.County)
			ctx, cancel := timeout(cmd)
			defer cancel()
			out, err := a.svc.Market(ctx, f)
			if err != nil {
				return err
			}
			renderMarket(out)
			return nil
		},
	}
	cmd.Flags().StringVar(&f.County, "county", "", "filter by county code")
	cmd.Flags().StringVar(&f.City, "city", "", "filter by city")
	cmd.Flags().StringVar(&location, "location", "", "center, around_city or outside_city")
	cmd.Flags().StringVar(&typ, "type", "", "apartment, house or mansion")
	cmd.Flags().IntVar(&f.Limit, "limit", 0, "maximum rows")
	return cmd
}

func newOffersCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "offers",
		Short: "List active buyers and tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			out, err := a.svc.Offers(ctx, limit)
			if err != nil {
				return err
			}
			renderOffers(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum rows")
	return cmd
}

func newEventsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List active market events",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			out, err := a.svc.ActiveEvents(ctx, limit)
			if err != nil {
				return err
			}
			renderEvents(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 5, "maximum rows")
	return cmd
}

func newLedgerCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:     "ledger",
		Short:   "Show the latest transactions",
		Aliases: []string{"tx"},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			out, err := a.svc.Transactions(ctx, limit)
			if err != nil {
				return err
			}
			renderLedger(out)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", game.DefaultTransactionsPageSize, "maximum rows")
	return cmd
}

func newPauseCmd(a *app, paused bool) *cobra.Command {
	use, short := "resume", "Resume round processing"
	if paused {
		use, short = "pause", "Pause round processing"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.SetPaused(ctx, paused); err != nil {
				return err
			}
			if paused {
				printWarn("Game paused.")
			} else {
				printSuccess("Game resumed.")
			}
			return nil
		},
	}
}

func newResetCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Wipe every entity and the ledger and start over",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				choice, err := promptChoice("Wipe the whole game", []string{"yes", "no"}, "no")
				if err != nil {
					return err
				}
				if choice != "yes" {
					printInfo("Reset cancelled.")
					return nil
				}
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.Reset(ctx); err != nil {
				return err
			}
			printSuccess("Game reset.")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")
	return cmd
}

func newBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "buy PROPERTY_ID",
		Short: "Buy a listed property at its asking price",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			p, err := a.svc.Buy(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought %s, %s for %s", p.Address, p.City, formatMicros(p.PriceMicros)))
			return nil
		},
	}
}

func newSellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sell PROPERTY_ID",
		Short: "Sell an owned property at market value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			amount, err := a.svc.SellAtMarket(ctx, id)
			if err != nil {
				return err
			}
			printSuccess("Sold for " + formatMicros(amount))
			return nil
		},
	}
}

func newSellToCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sell-to BUYER_ID PROPERTY_ID",
		Short: "Accept a buyer's offer for an owned property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buyer, err := parseID("buyer", args[0])
			if err != nil {
				return err
			}
			prop, err := parseID("property", args[1])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			amount, err := a.svc.SellToOffer(ctx, buyer, prop)
			if err != nil {
				return err
			}
			printSuccess("Sold for " + formatMicros(amount))
			return nil
		},
	}
}

func newRentCmd(a *app) *cobra.Command {
	var months int
	cmd := &cobra.Command{
		Use:   "rent TENANT_ID PROPERTY_ID",
		Short: "Let an owned property to a tenant offer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant, err := parseID("tenant", args[0])
			if err != nil {
				return err
			}
			prop, err := parseID("property", args[1])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.RentToTenant(ctx, tenant, prop, months); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Lease signed for %d months.", months))
			return nil
		},
	}
	cmd.Flags().IntVar(&months, "months", 12, "lease length: 3, 6, 9 or 12")
	return cmd
}

func newRentOutCmd(a *app) *cobra.Command {
	var in game.RentOutInput
	cmd := &cobra.Command{
		Use:   "rent-out PROPERTY_ID",
		Short: "Let an owned property at its listed rent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			in.PropertyID = id
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.RentOut(ctx, in); err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Property let for %d months.", in.Months))
			return nil
		},
	}
	cmd.Flags().IntVar(&in.Months, "months", 12, "lease length: 3, 6, 9 or 12")
	cmd.Flags().StringVar(&in.TenantName, "tenant", "", "tenant name")
	return cmd
}

func newRenovateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "renovate PROPERTY_ID",
		Short: "Renovate an owned property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			level, err := a.svc.Renovate(ctx, id)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Renovation level is now %d.", level))
			return nil
		},
	}
}

func newSetRentCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-rent PROPERTY_ID AMOUNT",
		Short: "Set the monthly rent of an owned property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.SetRent(ctx, id, amount); err != nil {
				return err
			}
			printSuccess("Rent set to " + formatMicros(amount))
			return nil
		},
	}
}

func newSetPriceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-price PROPERTY_ID AMOUNT",
		Short: "Set the asking price of an owned property",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID("property", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			ctx, cancel := timeout(cmd)
			defer cancel()
			if err := a.svc.SetSalePrice(ctx, id, amount); err != nil {
				return err
			}
			printSuccess("Price set to " + formatMicros(amount))
			return nil
		},
	}
}

func newQuickBuyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "quick-buy",
		Short: "Buy an affordable starter apartment",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			p, err := a.svc.QuickBuy(ctx)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Bought starter %s in %s for %s", p.Address, p.County, formatMicros(p.PriceMicros)))
			return nil
		},
	}
}

func newLoanCmd(a *app) *cobra.Command {
	var in game.LoanInput
	cmd := &cobra.Command{
		Use:   "loan AMOUNT",
		Short: "Borrow at the current base rate",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[0])
			if err != nil {
				return err
			}
			in.AmountMicros = amount
			ctx, cancel := timeout(cmd)
			defer cancel()
			l, err := a.svc.TakeLoan(ctx, in)
			if err != nil {
				return err
			}
			printSuccess(fmt.Sprintf("Borrowed %s at %.2f%%, %s per month for %d months",
				formatMicros(l.PrincipalMicros), l.InterestRate*100, formatMicros(l.MonthlyPaymentMicros), l.MonthsRemaining))
			return nil
		},
	}
	cmd.Flags().IntVar(&in.Months, "months", 12, "repayment term in months")
	cmd.Flags().StringVar(&in.Purpose, "purpose", "", "what the loan is for")
	return cmd
}

func newTickCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tick",
		Short: "Run one round now",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := timeout(cmd)
			defer cancel()
			rep, err := a.svc.RunRound(ctx)
			if err != nil {
				return err
			}
			renderRound(rep)
			return nil
		},
	}
}
