package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"vehicle-storefront/models"
	"vehicle-storefront/server"
	"vehicle-storefront/services"
	"vehicle-storefront/storage"
)

var (
	filterFlag  string
	filtersFlag []string
	pagesFlag   int
	fixtureFlag string
	clearFlag   bool
	addrFlag    string
	urlFlag     string
	stepsFlag   int
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Page through one listing view and print every card",
	Long: `Loads the first page of a listing view and keeps loading pages, as
infinite scroll would, until the list is exhausted or --pages is reached.

Example:
  storefront browse --filter bike/discounted/Pune --pages 3`,
	RunE: runBrowse,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Load several listing views and write them to CSV",
	RunE:  runExport,
}

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print price, mileage, city and brand statistics",
	RunE:  runInsights,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert fixture listings into PostgreSQL",
	RunE:  runSeed,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve listing pages over HTTP and websocket",
	RunE:  runServe,
}

var probeScrollCmd = &cobra.Command{
	Use:   "probe-scroll",
	Short: "Measure a rendered storefront page in headless Chrome against the scroll threshold",
	RunE:  runProbeScroll,
}

func init() {
	browseCmd.Flags().StringVar(&filterFlag, "filter", models.DefaultFilter().String(), "category/mode[/city]")
	browseCmd.Flags().IntVar(&pagesFlag, "pages", 0, "stop after this many pages (0 = MAX_PAGES or all)")

	for _, c := range []*cobra.Command{exportCmd, insightsCmd} {
		c.Flags().StringSliceVar(&filtersFlag, "filters", []string{"car/latest", "bike/latest"}, "listing views to load")
		c.Flags().IntVar(&pagesFlag, "pages", 0, "page limit per view (0 = MAX_PAGES or all)")
	}

	seedCmd.Flags().StringVar(&fixtureFlag, "file", "", "fixtures YAML (default FIXTURES_PATH)")
	seedCmd.Flags().BoolVar(&clearFlag, "clear", false, "delete existing listings first")

	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (default LISTEN_ADDR)")

	probeScrollCmd.Flags().StringVar(&urlFlag, "url", "", "page to probe (default STOREFRONT_URL)")
	probeScrollCmd.Flags().IntVar(&stepsFlag, "steps", 3, "scroll-to-bottom steps")
}

func pageLimit() int {
	if pagesFlag > 0 {
		return pagesFlag
	}
	return cfg.MaxPages
}

func runBrowse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	filter, err := models.ParseFilter(filterFlag)
	if err != nil {
		return err
	}
	lcfg, err := loaderConfig()
	if err != nil {
		return err
	}
	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	feed := services.NewStateFeed()
	defer feed.Close()
	states, unsubscribe := feed.Subscribe(8)
	defer unsubscribe()
	go func() {
		for st := range states {
			logger.Debug("[browse] state: page=%d items=%d loading=%t hasMore=%t err=%q",
				st.PageIndex, len(st.Items), st.IsLoading, st.HasMore, st.LastError)
		}
	}()

	loader := services.NewLoader(src, services.NewValidator(logger), logger, filter, lcfg, services.WithStateFeed(feed))

	var rows [][]string
	collectRows := func() {
		st := loader.State()
		for _, v := range st.Items[len(rows):] {
			rows = append(rows, []string{
				strconv.Itoa(len(rows) + 1), v.ID, v.Title(),
				strconv.FormatInt(v.SellPrice, 10), strconv.Itoa(v.KilometersDriven), v.City,
			})
		}
	}

	if err := loader.Refresh(ctx); err != nil {
		return err
	}
	collectRows()

	limit := pageLimit()
	for pages := 1; limit == 0 || pages < limit; pages++ {
		if _, hasMore := loader.Status(); !hasMore {
			break
		}
		if err := loader.LoadMore(ctx); err != nil {
			logger.Error("[browse] %v (run again to retry)", err)
			break
		}
		collectRows()
	}

	if err := renderCards(cmd.OutOrStdout(), rows); err != nil {
		return err
	}

	st := loader.State()
	logger.Info("[browse] %s: %d listings over %d pages, more available: %t",
		filter, len(st.Items), st.PageIndex+1, st.HasMore)
	return nil
}

// renderCards prints listing rows as a borderless, left-aligned table.
func renderCards(w io.Writer, rows [][]string) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{Borders: tw.BorderNone}),
	)
	table.Header([]string{"#", "ID", "Vehicle", "Price", "KM", "City"})
	if err := table.Bulk(rows); err != nil {
		return err
	}
	return table.Render()
}

func collect(cmd *cobra.Command) ([]*models.VehicleSummary, error) {
	ctx := cmd.Context()

	filters := make([]models.ListingFilter, 0, len(filtersFlag))
	for _, raw := range filtersFlag {
		f, err := models.ParseFilter(raw)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}
	lcfg, err := loaderConfig()
	if err != nil {
		return nil, err
	}
	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	catalog := services.NewCatalog(src, services.NewValidator(logger), logger, lcfg,
		cfg.MaxConcurrency, cfg.RateLimitMs, pageLimit())
	results := catalog.Collect(ctx, filters)

	var failed []string
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r.Filter.String())
		}
	}
	if len(failed) > 0 {
		logger.Warn("[collect] Incomplete views: %s", strings.Join(failed, ", "))
	}
	return services.MergeUnique(results), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	items, err := collect(cmd)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no listings loaded, nothing to export")
	}

	w, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return err
	}
	if err := writeSummaries(w, items); err != nil {
		return err
	}
	logger.Info("[export] %d listings saved to %s", len(items), cfg.CSVOutputPath)
	return nil
}

func writeSummaries(out storage.SummaryWriter, items []*models.VehicleSummary) error {
	if err := out.WriteSummaries(items); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func runInsights(cmd *cobra.Command, args []string) error {
	items, err := collect(cmd)
	if err != nil {
		return err
	}
	svc := services.NewInsightService(logger)
	svc.Print(cmd.OutOrStdout(), svc.Generate(items))
	return nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	path := fixtureFlag
	if path == "" {
		path = cfg.FixturesPath
	}
	listings, err := storage.LoadFixtures(path)
	if err != nil {
		return err
	}

	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	pg, ok := src.(*storage.PostgresSource)
	if !ok {
		return fmt.Errorf("seed needs the %q backend, got %q", "postgres", cfg.Backend)
	}

	if clearFlag {
		if err := pg.Clear(ctx); err != nil {
			return err
		}
	}
	var writer storage.ListingWriter = pg
	if err := writer.Write(ctx, listings); err != nil {
		return err
	}
	logger.Info("[seed] %d listings from %s written to PostgreSQL (table: vehicles)", len(listings), path)
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	lcfg, err := loaderConfig()
	if err != nil {
		return err
	}
	src, err := openSource(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer src.Close()

	addr := addrFlag
	if addr == "" {
		addr = cfg.ListenAddr
	}
	srv := server.New(src, services.NewValidator(logger), logger, server.Options{
		Loader:            lcfg,
		ScrollThresholdPx: cfg.ScrollThresholdPx,
	})
	return srv.Run(ctx, addr)
}
