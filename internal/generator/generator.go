// Package generator fabricates a referentially consistent synthetic
// e-commerce dataset from a seed and a scale factor.
package generator

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
	"github.com/shashiranjanraj/ecomsynth/pkg/logger"
	"github.com/shashiranjanraj/ecomsynth/pkg/validate"
)

var ErrInvalidOptions = errors.New("generator: invalid options")

// DefaultEndDate is the reference date of a run when none is given.
var DefaultEndDate = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)

// Base row counts at scale 1.
const (
	BaseCustomers = 500
	BaseProducts  = 200
	BaseOrders    = 2500
	BaseReviews   = 800
)

type Options struct {
	Seed      int64     `json:"seed"`
	Scale     float64   `json:"scale" validate:"gt=0,lte=1000"`
	EndDate   time.Time `json:"end_date"`
	Discounts bool      `json:"discounts"`
}

// Counts is the number of rows per top-level table. Order items follow
// from the orders.
type Counts struct {
	Customers int
	Products  int
	Orders    int
	Reviews   int
}

// CountsFor returns max(1, floor(base × scale)) for every table.
func CountsFor(scale float64) Counts {
	n := func(base int) int {
		return max(1, int(math.Floor(float64(base)*scale)))
	}
	return Counts{
		Customers: n(BaseCustomers),
		Products:  n(BaseProducts),
		Orders:    n(BaseOrders),
		Reviews:   n(BaseReviews),
	}
}

// Generate builds the whole dataset in memory. Identical options give an
// identical dataset.
func Generate(ctx context.Context, opts Options) (*dataset.Dataset, error) {
	if errs := validate.Struct(opts); validate.HasErrors(errs) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidOptions, validate.Join(errs))
	}
	if opts.EndDate.IsZero() {
		opts.EndDate = DefaultEndDate
	}
	end := time.Date(opts.EndDate.Year(), opts.EndDate.Month(), opts.EndDate.Day(), 0, 0, 0, 0, time.UTC)

	counts := CountsFor(opts.Scale)
	log := logger.WithCtx(ctx)
	log.Debug("generating dataset", "seed", opts.Seed, "scale", opts.Scale,
		"end_date", end.Format(dataset.DateLayout), "discounts", opts.Discounts)

	w := window{
		joinFrom: end.AddDate(-3, 0, 0),
		from:     end.AddDate(-2, 0, 0),
		to:       end.AddDate(0, 0, 1),
	}
	ds := &dataset.Dataset{}

	// Parents first.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Customers, err = customers(gctx, stream(opts.Seed, dataset.Customers), counts.Customers, w)
		return err
	})
	g.Go(func() (err error) {
		ds.Products, err = products(gctx, stream(opts.Seed, dataset.Products), counts.Products)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Orders, ds.OrderItems, err = orders(gctx, stream(opts.Seed, dataset.Orders), counts.Orders,
			len(ds.Customers), ds.Products, w, opts.Discounts)
		return err
	})
	g.Go(func() (err error) {
		ds.Reviews, err = reviews(gctx, stream(opts.Seed, dataset.Reviews), counts.Reviews,
			len(ds.Customers), len(ds.Products), w)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := dataset.Check(ds); err != nil {
		return nil, fmt.Errorf("generator: produced an invalid dataset: %w", err)
	}
	for _, t := range dataset.Tables {
		log.Debug("generated table", "table", string(t), "rows", ds.Rows(t))
	}
	return ds, nil
}

// stream derives the per-table seed so tables can be drawn concurrently
// without sharing a source.
func stream(seed int64, t dataset.Table) *faker {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t))
	return newFaker(seed ^ int64(h.Sum64()))
}

type window struct {
	joinFrom time.Time // customers join within 3 years
	from, to time.Time // orders and reviews fall within 2 years
}

// checkEvery is how many rows pass between context checks.
const checkEvery = 1024

func cancelled(ctx context.Context, row int) error {
	if row%checkEvery != 0 {
		return nil
	}
	return ctx.Err()
}
