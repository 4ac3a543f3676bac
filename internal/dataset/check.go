package dataset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/shashiranjanraj/ecomsynth/pkg/collection"
)

// maxProblems bounds how many violations Check reports.
const maxProblems = 20

// Check verifies the relational and arithmetic invariants of ds. All
// violations (up to a limit) are joined into one ErrInconsistent error.
func Check(ds *Dataset) error {
	var c checker

	customers := uniqueIDs(&c, Customers, collection.Map(ds.Customers, func(x Customer) int { return x.ID }))
	products := uniqueIDs(&c, Products, collection.Map(ds.Products, func(x Product) int { return x.ID }))
	orders := uniqueIDs(&c, Orders, collection.Map(ds.Orders, func(x Order) int { return x.ID }))
	uniqueIDs(&c, OrderItems, collection.Map(ds.OrderItems, func(x OrderItem) int { return x.ID }))
	uniqueIDs(&c, Reviews, collection.Map(ds.Reviews, func(x Review) int { return x.ID }))

	emails := make(map[string]int, len(ds.Customers))
	for _, cu := range ds.Customers {
		if prev, ok := emails[cu.Email]; ok {
			c.add("customer %d: email %q already used by customer %d", cu.ID, cu.Email, prev)
		}
		emails[cu.Email] = cu.ID
	}

	for _, p := range ds.Products {
		if p.Price <= 0 {
			c.add("product %d: price %s is not positive", p.ID, p.Price)
		}
		if !slices.Contains(Categories, p.Category) {
			c.add("product %d: unknown category %q", p.ID, p.Category)
		}
	}

	itemsByOrder := collection.GroupBy(ds.OrderItems, func(i OrderItem) int { return i.OrderID })
	for _, o := range ds.Orders {
		if !customers[o.CustomerID] {
			c.add("order %d: customer %d does not exist", o.ID, o.CustomerID)
		}
		if !slices.Contains(Statuses, o.Status) {
			c.add("order %d: unknown status %q", o.ID, o.Status)
		}
		items := itemsByOrder[o.ID]
		if len(items) == 0 {
			c.add("order %d: has no items", o.ID)
			continue
		}
		seen := make(map[int]bool, len(items))
		for _, it := range items {
			if seen[it.ProductID] {
				c.add("order %d: product %d appears twice", o.ID, it.ProductID)
			}
			seen[it.ProductID] = true
		}
		if sum := collection.SumBy(items, func(i OrderItem) Money { return i.LineTotal }); sum != o.Total {
			c.add("order %d: total %s != sum of items %s", o.ID, o.Total, sum)
		}
	}

	for _, it := range ds.OrderItems {
		if !orders[it.OrderID] {
			c.add("order item %d: order %d does not exist", it.ID, it.OrderID)
		}
		if !products[it.ProductID] {
			c.add("order item %d: product %d does not exist", it.ID, it.ProductID)
		}
		if it.Quantity <= 0 {
			c.add("order item %d: quantity %d is not positive", it.ID, it.Quantity)
		}
		if it.DiscountPct < 0 || it.DiscountPct > 100 {
			c.add("order item %d: discount %d%% out of range", it.ID, it.DiscountPct)
		}
		if want := LineTotal(it.Quantity, it.UnitPrice, it.DiscountPct); it.LineTotal != want {
			c.add("order item %d: line total %s, want %s", it.ID, it.LineTotal, want)
		}
	}

	for _, r := range ds.Reviews {
		if !products[r.ProductID] {
			c.add("review %d: product %d does not exist", r.ID, r.ProductID)
		}
		if !customers[r.CustomerID] {
			c.add("review %d: customer %d does not exist", r.ID, r.CustomerID)
		}
		if r.Rating < 1 || r.Rating > 5 {
			c.add("review %d: rating %d out of range", r.ID, r.Rating)
		}
	}

	return c.err()
}

func uniqueIDs(c *checker, t Table, ids []int) map[int]bool {
	set := make(map[int]bool, len(ids))
	for _, id := range ids {
		if set[id] {
			c.add("%s: duplicate id %d", t, id)
		}
		set[id] = true
	}
	return set
}

type checker struct {
	problems []error
	dropped  int
}

func (c *checker) add(format string, args ...any) {
	if len(c.problems) >= maxProblems {
		c.dropped++
		return
	}
	c.problems = append(c.problems, fmt.Errorf(format, args...))
}

func (c *checker) err() error {
	if len(c.problems) == 0 {
		return nil
	}
	if c.dropped > 0 {
		c.problems = append(c.problems, fmt.Errorf("and %d more", c.dropped))
	}
	return fmt.Errorf("%w:\n%w", ErrInconsistent, errors.Join(c.problems...))
}
