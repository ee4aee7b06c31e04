package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/fekuna/omnipos-restock-service/config"
	"github.com/fekuna/omnipos-restock-service/internal/auth"
	"github.com/fekuna/omnipos-restock-service/internal/catalog"
	catRepoPkg "github.com/fekuna/omnipos-restock-service/internal/catalog/repository"
	"github.com/fekuna/omnipos-restock-service/internal/inventory"
	"github.com/fekuna/omnipos-restock-service/internal/inventory/dto"
	invRecorderPkg "github.com/fekuna/omnipos-restock-service/internal/inventory/recorder"
	invUCPkg "github.com/fekuna/omnipos-restock-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-restock-service/internal/logger"
	"github.com/fekuna/omnipos-restock-service/internal/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type options struct {
	dataFile string
	logLevel string
	actor    string
	asJSON   bool
}

func newRootCmd() *cobra.Command {
	_ = godotenv.Load()
	cfg := config.LoadEnv()
	opts := &options{}

	root := &cobra.Command{
		Use:           "inventoryctl",
		Short:         "Inspect and change the restock catalog file",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.dataFile, "data-file", cfg.Store.FilePath, "catalog JSON file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")
	root.PersistentFlags().StringVar(&opts.actor, "actor", "inventoryctl", "actor recorded on inventory events")
	root.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print JSON instead of a table")

	root.AddCommand(
		newCreateCmd(opts),
		newStatusCmd(opts),
		newPurchaseCmd(opts),
		newListCmd(opts),
	)
	return root
}

// open loads the catalog from the data file. A load failure is reported on
// stderr and the command continues against an empty catalog.
func (o *options) open(cmd *cobra.Command) inventory.UseCase {
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{
		Encoding:          "console",
		Level:             o.logLevel,
		DisableStacktrace: true,
		OutputPaths:       []string{"stderr"},
	})

	store := catalog.NewStore(catRepoPkg.NewFileRepository(o.dataFile))
	if err := store.Load(cmd.Context()); err != nil {
		cmd.PrintErrf("warning: %v\n", err)
	}
	cmd.SetContext(auth.WithActor(cmd.Context(), o.actor))
	return invUCPkg.NewInventoryUseCase(store, invRecorderPkg.NewLogRecorder(log), log)
}

func newCreateCmd(opts *options) *cobra.Command {
	in := &dto.CreateProductInput{}
	var priority string

	cmd := &cobra.Command{
		Use:   "create PRODUCT_ID",
		Short: "Add a product or replace an existing one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc := opts.open(cmd)
			in.ProductID = args[0]
			in.Priority = model.Priority(priority)

			p, err := uc.CreateProduct(cmd.Context(), in)
			if err != nil {
				return err
			}
			return opts.printProducts(cmd.OutOrStdout(), *p)
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().IntVar(&in.StockQuantity, "stock", 0, "units on hand")
	cmd.Flags().IntVar(&in.MinThreshold, "min-threshold", 0, "restock when stock falls below this")
	cmd.Flags().IntVar(&in.RestockQuantity, "restock", 0, "units added per restock")
	cmd.Flags().StringVar(&priority, "priority", string(model.PriorityLow), "high or low")
	_ = cmd.MarkFlagRequired("restock")
	return cmd
}

func newStatusCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "status PRODUCT_ID",
		Short: "Show stock level and status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			view, err := opts.open(cmd).GetStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return opts.printViews(cmd.OutOrStdout(), *view)
		},
	}
}

func newPurchaseCmd(opts *options) *cobra.Command {
	var reference string

	cmd := &cobra.Command{
		Use:   "purchase PRODUCT_ID QUANTITY",
		Short: "Take units out of stock, restocking when needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: quantity must be an integer, got %q", inventory.ErrInvalidInput, args[1])
			}

			p, err := opts.open(cmd).Purchase(cmd.Context(), &dto.PurchaseInput{
				ProductID: args[0],
				Quantity:  qty,
				Reference: reference,
			})
			if err != nil {
				return err
			}
			return opts.printProducts(cmd.OutOrStdout(), *p)
		},
	}
	cmd.Flags().StringVar(&reference, "reference", "", "order or ticket id recorded on the event")
	return cmd
}

func newListCmd(opts *options) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List products with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := opts.open(cmd).ListProducts(cmd.Context(), &dto.ProductFilters{Status: model.Status(status)})
			if err != nil {
				return err
			}
			return opts.printViews(cmd.OutOrStdout(), items...)
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "only ok, below_threshold or out_of_stock")
	return cmd
}

func (o *options) printProducts(w io.Writer, products ...model.Product) error {
	if o.asJSON {
		return writeJSON(w, products)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Name", "Stock", "Min", "Restock", "Priority", "Category", "Status"})
	for _, p := range products {
		t.AppendRow(table.Row{p.ProductID, p.Name, p.StockQuantity, p.MinThreshold, p.RestockQuantity, p.Priority, p.Category, p.Status()})
	}
	t.Render()
	return nil
}

func (o *options) printViews(w io.Writer, views ...model.StatusView) error {
	if o.asJSON {
		return writeJSON(w, views)
	}
	t := newTable(w)
	t.AppendHeader(table.Row{"Product", "Stock", "Status", "Priority"})
	for _, v := range views {
		t.AppendRow(table.Row{v.ProductID, v.StockQuantity, v.Status, v.Priority})
	}
	t.Render()
	return nil
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
