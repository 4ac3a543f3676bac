package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/shashiranjanraj/ecomsynth/internal/dataset"
)

var categoryWeights = []float64{.18, .14, .12, .12, .18, .14, .12}

var statusWeights = []float64{.70, .20, .06, .04}

var ratingWeights = []float64{.05, .05, .15, .40, .35}

var quantities = []int{1, 1, 1, 2, 3}

var (
	discountSteps   = []int{0, 5, 10, 15, 20}
	discountWeights = []float64{.80, .05, .05, .05, .05}
)

// November and December carry the holiday peak, February is the trough.
var monthWeights = [12]float64{0.9, 0.7, 0.9, 0.9, 1.0, 1.0, 1.0, 1.0, 0.9, 1.0, 1.4, 1.6}

const (
	maxItemsPerOrder = 5
	reviewWordCount  = 12
)

func customers(ctx context.Context, f *faker, n int, w window) ([]dataset.Customer, error) {
	out := make([]dataset.Customer, n)
	for i := range out {
		if err := cancelled(ctx, i); err != nil {
			return nil, err
		}
		id := i + 1
		first, last := f.name()
		joined := f.between(w.joinFrom, w.to)
		out[i] = dataset.Customer{
			ID:       id,
			Name:     first + " " + last,
			Email:    f.email(first, last, id),
			Phone:    f.phone(),
			Address:  f.address(),
			JoinDate: joined.Truncate(24 * time.Hour),
		}
	}
	return out, nil
}

func products(ctx context.Context, f *faker, n int) ([]dataset.Product, error) {
	out := make([]dataset.Product, n)
	for i := range out {
		if err := cancelled(ctx, i); err != nil {
			return nil, err
		}
		id := i + 1
		category := dataset.Categories[f.weighted(categoryWeights)]
		out[i] = dataset.Product{
			ID:       id,
			Name:     f.productName(category),
			Category: category,
			Price:    max(1, dataset.MoneyFromFloat(f.lognormal(3.0, 0.8))),
			SKU:      fmt.Sprintf("SKU-%06d", id),
		}
	}
	return out, nil
}

// orders draws every order together with its items; the order total is the
// sum of the item line totals.
func orders(ctx context.Context, f *faker, n, nCustomers int, catalog []dataset.Product, w window, discounts bool) ([]dataset.Order, []dataset.OrderItem, error) {
	out := make([]dataset.Order, n)
	items := make([]dataset.OrderItem, 0, n*3)

	for i := range out {
		if err := cancelled(ctx, i); err != nil {
			return nil, nil, err
		}
		o := dataset.Order{
			ID:         i + 1,
			CustomerID: 1 + f.r.Intn(nCustomers),
			OrderDate:  f.seasonal(w.from, w.to, monthWeights),
		}

		k := 1 + f.r.Intn(min(maxItemsPerOrder, len(catalog)))
		for _, pid := range f.distinct(len(catalog), k) {
			it := dataset.OrderItem{
				ID:        len(items) + 1,
				OrderID:   o.ID,
				ProductID: pid,
				Quantity:  quantities[f.r.Intn(len(quantities))],
				UnitPrice: catalog[pid-1].Price,
			}
			if discounts {
				it.DiscountPct = discountSteps[f.weighted(discountWeights)]
			}
			it.LineTotal = dataset.LineTotal(it.Quantity, it.UnitPrice, it.DiscountPct)
			o.Total += it.LineTotal
			items = append(items, it)
		}

		o.Status = dataset.Statuses[f.weighted(statusWeights)]
		out[i] = o
	}
	return out, items, nil
}

func reviews(ctx context.Context, f *faker, n, nCustomers, nProducts int, w window) ([]dataset.Review, error) {
	out := make([]dataset.Review, n)
	for i := range out {
		if err := cancelled(ctx, i); err != nil {
			return nil, err
		}
		out[i] = dataset.Review{
			ID:         i + 1,
			ProductID:  1 + f.r.Intn(nProducts),
			CustomerID: 1 + f.r.Intn(nCustomers),
			Rating:     1 + f.weighted(ratingWeights),
			Text:       f.sentence(reviewWords, reviewWordCount),
			ReviewDate: f.between(w.from, w.to),
		}
	}
	return out, nil
}
