package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"revenue-forecast/internal/errors"
	"revenue-forecast/internal/models"
)

const (
	parseBatchSize = 5000
	parseWorkers   = 8
)

// dataset is an immutable snapshot of one upload: the accepted records plus
// the per-product monthly revenue series derived from them. Readers share
// the pointer; a new upload builds a fresh dataset and swaps it in.
type dataset struct {
	records    []models.Transaction
	series     map[string]map[models.MonthKey]decimal.Decimal
	totals     map[models.MonthKey]decimal.Decimal
	catalog    []string
	firstMonth models.MonthKey
	lastMonth  models.MonthKey
	loadedAt   time.Time
}

func newDataset(records []models.Transaction) *dataset {
	d := &dataset{
		records:  records,
		series:   make(map[string]map[models.MonthKey]decimal.Decimal),
		totals:   make(map[models.MonthKey]decimal.Decimal),
		loadedAt: time.Now().UTC(),
	}

	for _, tx := range records {
		month := tx.Month()
		revenue := tx.LineRevenue()

		perMonth := d.series[tx.ProductID]
		if perMonth == nil {
			perMonth = make(map[models.MonthKey]decimal.Decimal)
			d.series[tx.ProductID] = perMonth
		}
		perMonth[month] = perMonth[month].Add(revenue)
		d.totals[month] = d.totals[month].Add(revenue)

		if d.firstMonth.IsZero() || month.Before(d.firstMonth) {
			d.firstMonth = month
		}
		if d.lastMonth.IsZero() || d.lastMonth.Before(month) {
			d.lastMonth = month
		}
	}

	d.catalog = lo.Keys(d.series)
	sort.Strings(d.catalog)
	return d
}

func (d *dataset) empty() bool {
	return len(d.records) == 0
}

func (d *dataset) monthSpan() int {
	return models.MonthSpan(d.firstMonth, d.lastMonth)
}

func (d *dataset) hasProduct(id string) bool {
	_, ok := d.series[id]
	return ok
}

// historyWindow emits the trailing window ending at the last observed month,
// zero-filling months without transactions. The window never extends before
// the first observed month.
func (d *dataset) historyWindow(months int) []models.HistoryPoint {
	window := min(months, d.monthSpan())
	points := make([]models.HistoryPoint, 0, window)
	if window == 0 {
		return points
	}

	month := d.lastMonth.AddMonths(-(window - 1))
	for i := 0; i < window; i++ {
		points = append(points, models.HistoryPoint{
			Month:   month.String(),
			Revenue: d.totals[month].InexactFloat64(),
		})
		month = month.Next()
	}
	return points
}

// baselineRevenue estimates each product's monthly revenue as the mean over
// the trailing window (capped at maxWindow months, ending at the dataset's
// last observed month). Months without sales count as zero.
func (d *dataset) baselineRevenue(maxWindow int) (map[string]decimal.Decimal, int) {
	window := min(maxWindow, d.monthSpan())
	out := make(map[string]decimal.Decimal, len(d.series))
	if window == 0 {
		return out, 0
	}

	start := d.lastMonth.AddMonths(-(window - 1))
	divisor := decimal.NewFromInt(int64(window))
	for product, perMonth := range d.series {
		sum := decimal.Zero
		for month, revenue := range perMonth {
			if !month.Before(start) {
				sum = sum.Add(revenue)
			}
		}
		out[product] = sum.Div(divisor)
	}
	return out, window
}

type columnIndex struct {
	customer, date, product, quantity, price int
}

func readHeader(record []string) (columnIndex, error) {
	idx := columnIndex{customer: -1, date: -1, product: -1, quantity: -1, price: -1}
	for i, name := range record {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "customer_id":
			idx.customer = i
		case "date":
			idx.date = i
		case "product_id":
			idx.product = i
		case "quantity":
			idx.quantity = i
		case "price":
			idx.price = i
		default:
			return idx, errors.MalformedInput(fmt.Sprintf("unknown column %q in header", strings.TrimSpace(name)))
		}
	}
	if idx.customer < 0 || idx.date < 0 || idx.product < 0 || idx.quantity < 0 || idx.price < 0 {
		return idx, errors.MalformedInput("header must contain customer_id, date, product_id, quantity and price")
	}
	return idx, nil
}

func parseRow(record []string, idx columnIndex) (models.Transaction, error) {
	customer := strings.TrimSpace(record[idx.customer])
	if customer == "" {
		return models.Transaction{}, fmt.Errorf("empty customer_id")
	}

	product := strings.TrimSpace(record[idx.product])
	if product == "" {
		return models.Transaction{}, fmt.Errorf("empty product_id")
	}

	date, err := time.Parse("2006-01-02", strings.TrimSpace(record[idx.date]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid date %q", strings.TrimSpace(record[idx.date]))
	}

	quantity, err := decimal.NewFromString(strings.TrimSpace(record[idx.quantity]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid quantity %q", strings.TrimSpace(record[idx.quantity]))
	}
	if quantity.IsNegative() {
		return models.Transaction{}, fmt.Errorf("negative quantity %s", quantity)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(record[idx.price]))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("invalid price %q", strings.TrimSpace(record[idx.price]))
	}
	if price.IsNegative() {
		return models.Transaction{}, fmt.Errorf("negative price %s", price)
	}

	return models.Transaction{
		CustomerID: customer,
		Date:       date,
		ProductID:  product,
		Quantity:   quantity,
		UnitPrice:  price,
	}, nil
}

// parseTransactions reads the whole CSV strictly. Any bad row fails the
// parse; the error names the first offending row (the header is row 1).
func parseTransactions(ctx context.Context, r io.Reader) ([]models.Transaction, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.MalformedInput("empty file")
	}
	if err != nil {
		return nil, errors.MalformedInputWrap(err, "unreadable CSV header")
	}

	idx, err := readHeader(header)
	if err != nil {
		return nil, err
	}

	var out []models.Transaction

	flush := func(firstRow int, batch [][]string) error {
		results := make([]models.Transaction, len(batch))
		rowErrs := make([]error, len(batch))

		var g errgroup.Group
		g.SetLimit(parseWorkers)
		for i, record := range batch {
			g.Go(func() error {
				select {
				case <-ctx.Done():
					return ctx.Err()
				default:
				}
				tx, err := parseRow(record, idx)
				if err != nil {
					rowErrs[i] = err
					return nil
				}
				results[i] = tx
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		for i, rowErr := range rowErrs {
			if rowErr != nil {
				return errors.MalformedInput(fmt.Sprintf("row %d: %v", firstRow+i, rowErr))
			}
		}

		out = append(out, results...)
		return nil
	}

	batch := make([][]string, 0, parseBatchSize)
	row := 1 // header
	batchStart := 2
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, errors.MalformedInputWrap(err, fmt.Sprintf("row %d: malformed CSV", row))
		}

		batch = append(batch, record)
		if len(batch) >= parseBatchSize {
			if err := flush(batchStart, batch); err != nil {
				return nil, err
			}
			batchStart = row + 1
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := flush(batchStart, batch); err != nil {
			return nil, err
		}
	}

	return out, nil
}
