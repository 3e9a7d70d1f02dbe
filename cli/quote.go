// Package cli holds the offline commands added to the server binary.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"installcost/config"
	"installcost/costing"
	"installcost/services"
)

// NewQuoteCmd returns the "quote" command, which prices a calculation
// document from a JSON file without touching the database.
func NewQuoteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quote FILE",
		Short: "Price a calculation document offline",
		Long: `Read a calculation document (JSON) and print its cost breakdown and
auto-approval verdict. Settings missing from the document are taken from the
costing config file.`,
		Args: cobra.ExactArgs(1),
		RunE: runQuote,
	}
	cmd.Flags().StringP("mode", "m", string(costing.ModeInitial), "Snapshot to price: INITIAL or FINAL")
	cmd.Flags().StringP("currency", "c", "", "Target currency (defaults to the offer currency)")
	cmd.Flags().String("config", config.Path(), "Path to the costing TOML config")
	return cmd
}

func runQuote(cmd *cobra.Command, args []string) error {
	modeFlag, _ := cmd.Flags().GetString("mode")
	currencyFlag, _ := cmd.Flags().GetString("currency")
	configPath, _ := cmd.Flags().GetString("config")

	mode := costing.Mode(strings.ToUpper(modeFlag))
	if mode != costing.ModeInitial && mode != costing.ModeFinal {
		return fmt.Errorf("unknown mode %q: use INITIAL or FINAL", modeFlag)
	}
	currency := costing.Currency(strings.ToUpper(currencyFlag))
	if currency != "" && !currency.Valid() {
		return fmt.Errorf("unknown currency %q", currencyFlag)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	doc, err := readDocument(args[0])
	if err != nil {
		return err
	}
	doc = withDefaults(doc, cfg.Settings())
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}

	rec := &services.CalculationRecord{
		Name:            strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])),
		ReferenceNumber: "-",
		Document:        doc.Recalculate(),
	}
	data := services.BuildBreakdownExport(rec, mode, currency, time.Now())
	writeBreakdown(cmd.OutOrStdout(), data)

	res := rec.Document.Approval(cfg.ApprovalRules())
	writeApproval(cmd.OutOrStdout(), res)
	return nil
}

// readDocument decodes a calculation document from path.
func readDocument(path string) (costing.Document, error) {
	var doc costing.Document
	raw, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}

// withDefaults fills settings the document leaves unset.
func withDefaults(doc costing.Document, defaults costing.Settings) costing.Document {
	s := &doc.Settings
	if s.ExchangeRate.IsZero() {
		s.ExchangeRate = defaults.ExchangeRate
	}
	if s.FeePercent.IsZero() {
		s.FeePercent = defaults.FeePercent
	}
	if s.TargetMargin.IsZero() && s.ManualPrice == nil {
		s.TargetMargin = defaults.TargetMargin
	}
	if s.OfferCurrency == "" {
		s.OfferCurrency = defaults.OfferCurrency
	}
	if doc.Stage == "" {
		doc.Stage = costing.StageDraft
	}
	return doc
}

func writeBreakdown(w io.Writer, data services.ExportData) {
	fmt.Fprintf(w, "%s (%s, %s)\n\n", data.Title, data.Mode, data.Currency)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	for _, r := range data.Rows {
		desc := r.Description
		if r.Level > 0 {
			desc = "  " + desc
		}
		if r.Excluded {
			desc += " (excluded)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t\n", r.Index, desc, services.FormatMoney(r.Amount, data.Currency))
	}
	tw.Flush()

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Total cost:      %s\n", services.FormatMoney(data.Breakdown.Total, data.Currency))
	fmt.Fprintf(w, "Excluded items:  %s\n", services.FormatMoney(data.Breakdown.Excluded, data.Currency))
	fmt.Fprintf(w, "Offer price:     %s\n", services.FormatMoney(data.Price, data.Currency))
	fmt.Fprintf(w, "Margin:          %s\n", services.FormatPercent(data.Margin))
}

func writeApproval(w io.Writer, res costing.ApprovalResult) {
	fmt.Fprintln(w)
	if res.Approved {
		fmt.Fprintln(w, "Auto-approval: approved")
		return
	}
	fmt.Fprintln(w, "Auto-approval: manual review required")
	for _, r := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
}
