package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/VineetPaun/expense-management/internal/adapter/http/dto"
	"github.com/VineetPaun/expense-management/internal/infrastructure/logger"
	"github.com/VineetPaun/expense-management/internal/infrastructure/postgres"
)

// errCheckFailed makes the process exit non-zero after the report has been printed.
var errCheckFailed = errors.New("ledger is inconsistent")

type globalFlags struct {
	baseURL string
	token   string
	timeout time.Duration
}

// Overridden in tests.
var (
	migrateUp   = postgres.RunMigrations
	migrateDown = postgres.RunMigrationsDown
)

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:           "expense-cli",
		Short:         "Expense ledger CLI tool",
		Long:          `A command line interface for operating the expense ledger API and its database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&g.baseURL, "url", envOr("EXPENSE_API_URL", "http://localhost:8080"), "Base URL of the expense API")
	root.PersistentFlags().StringVar(&g.token, "token", os.Getenv("EXPENSE_TOKEN"), "Bearer token for authenticated endpoints")
	root.PersistentFlags().DurationVar(&g.timeout, "timeout", 10*time.Second, "Request timeout")

	root.AddCommand(
		newMigrateCmd(),
		newLoginCmd(g),
		newLedgerCmd(g),
		newStatementCmd(g),
	)

	return root
}

func newMigrateCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")

	run := func(fn func(string, zerolog.Logger) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			if databaseURL == "" {
				return errors.New("--database-url or DATABASE_URL is required")
			}
			log := logger.New(logger.Config{Level: "info", Format: "console", Output: cmd.ErrOrStderr()})
			return fn(databaseURL, log)
		}
	}

	cmd.AddCommand(
		&cobra.Command{Use: "up", Short: "Apply all pending migrations", RunE: run(migrateUp)},
		&cobra.Command{Use: "down", Short: "Roll back every migration", RunE: run(migrateDown)},
	)
	return cmd
}

func newLoginCmd(g *globalFlags) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print an access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body, err := json.Marshal(dto.LoginRequest{Email: email, Password: password})
			if err != nil {
				return err
			}

			var resp dto.LoginResponse
			if err := g.client().do(cmd.Context(), http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body), &resp, http.StatusOK); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newLedgerCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	consistency := &cobra.Command{
		Use:   "consistency",
		Short: "Check every account balance against its entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var report dto.ConsistencyReportResponse
			err := g.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, &report, http.StatusOK, http.StatusConflict)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts checked: %d\n", report.TotalAccounts)
			fmt.Fprintf(out, "Reconciled:       %d\n", report.ReconciledAccounts)
			for _, d := range report.Discrepancies {
				fmt.Fprintf(out, "  %s recorded=%s calculated=%s difference=%s\n",
					d.AccountID, d.RecordedBalance, d.CalculatedBalance, d.Difference)
			}
			if !report.LedgerConsistent || len(report.Discrepancies) > 0 {
				fmt.Fprintln(out, "Consistency check FAILED")
				return errCheckFailed
			}
			fmt.Fprintln(out, "Consistency check PASSED")
			return nil
		},
	}

	reconcile := &cobra.Command{
		Use:   "reconcile ACCOUNT_ID",
		Short: "Recompute an account from its entries and repair drift",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result dto.ReconciliationResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/reconcile"
			if err := g.client().do(cmd.Context(), http.MethodPost, path, nil, &result, http.StatusOK); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Account:    %s\n", result.AccountID)
			fmt.Fprintf(out, "Recorded:   %s\n", result.RecordedBalance)
			fmt.Fprintf(out, "Calculated: %s\n", result.CalculatedBalance)
			fmt.Fprintf(out, "Entries:    %d\n", result.EntryCount)
			fmt.Fprintf(out, "Repaired:   %t\n", result.Repaired)
			return nil
		},
	}

	cmd.AddCommand(consistency, reconcile)
	return cmd
}

func newStatementCmd(g *globalFlags) *cobra.Command {
	var (
		search, from, to, direction, category string
		sortBy, sortOrder                     string
		page, limit                           int
	)

	cmd := &cobra.Command{
		Use:   "statement ACCOUNT_ID",
		Short: "Print a page of an account's transactions with a summary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{}
			set := func(k, v string) {
				if v != "" {
					q.Set(k, v)
				}
			}
			set("search", search)
			set("start_date", from)
			set("end_date", to)
			set("type", direction)
			set("category", category)
			set("sort_by", sortBy)
			set("sort_order", sortOrder)
			q.Set("page", strconv.Itoa(page))
			q.Set("limit", strconv.Itoa(limit))

			var st dto.StatementResponse
			path := "/api/v1/accounts/" + url.PathEscape(args[0]) + "/transactions?" + q.Encode()
			if err := g.client().do(cmd.Context(), http.MethodGet, path, nil, &st, http.StatusOK); err != nil {
				return err
			}
			printStatement(cmd.OutOrStdout(), &st)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&search, "search", "", "Match description or reference")
	f.StringVar(&from, "from", "", "Start date (YYYY-MM-DD)")
	f.StringVar(&to, "to", "", "End date (YYYY-MM-DD)")
	f.StringVar(&direction, "type", "", "credit or debit")
	f.StringVar(&category, "category", "", "Category name")
	f.StringVar(&sortBy, "sort", "", "Sort field: entry_date, amount or created_at")
	f.StringVar(&sortOrder, "order", "", "asc or desc")
	f.IntVar(&page, "page", 1, "Page number")
	f.IntVar(&limit, "limit", 10, "Entries per page")
	return cmd
}

func printStatement(w io.Writer, st *dto.StatementResponse) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTYPE\tCATEGORY\tAMOUNT\tOPENING\tCLOSING\tDESCRIPTION")
	for _, tx := range st.Transactions {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			tx.EntryDate.Format(time.DateOnly), tx.Type, tx.Category, tx.Amount,
			tx.OpeningBalance, tx.ClosingBalance, truncate(tx.Description, 32))
	}
	_ = tw.Flush()

	p := st.Pagination
	fmt.Fprintf(w, "\nPage %d of %d (%d transactions)\n", p.CurrentPage, p.TotalPages, p.TotalCount)
	fmt.Fprintf(w, "Credits: %s (%d)  Debits: %s (%d)  Net: %s\n",
		st.Summary.TotalCredit, st.Summary.CreditCount,
		st.Summary.TotalDebit, st.Summary.DebitCount, st.Summary.NetFlow)
	fmt.Fprintf(w, "Current balance: %s\n", st.CurrentBalance)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type apiClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func (g *globalFlags) client() *apiClient {
	return &apiClient{
		baseURL: strings.TrimRight(g.baseURL, "/"),
		token:   g.token,
		http:    &http.Client{Timeout: g.timeout},
	}
}

// do sends a request and decodes the JSON body into out when the status is one of ok.
func (c *apiClient) do(ctx context.Context, method, path string, body io.Reader, out any, ok ...int) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	for _, code := range ok {
		if resp.StatusCode == code {
			if err := json.Unmarshal(raw, out); err != nil {
				return fmt.Errorf("decode response: %w", err)
			}
			return nil
		}
	}

	var apiErr dto.ErrorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
		if apiErr.Message != "" {
			return fmt.Errorf("%s (status %d): %s", apiErr.Error, resp.StatusCode, apiErr.Message)
		}
		return fmt.Errorf("%s (status %d)", apiErr.Error, resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
}
