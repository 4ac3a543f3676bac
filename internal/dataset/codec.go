package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"
)

// Headers holds the exact header row of each table.
var Headers = map[Table][]string{
	Customers:  {"customer_id", "name", "email", "phone", "address", "join_date"},
	Products:   {"product_id", "name", "category", "price", "sku"},
	Orders:     {"order_id", "customer_id", "order_date", "total", "status"},
	OrderItems: {"order_item_id", "order_id", "product_id", "quantity", "unit_price", "discount_pct", "line_total"},
	Reviews:    {"review_id", "product_id", "customer_id", "rating", "review_text", "review_date"},
}

// Encode renders every table as CSV with its header row.
func Encode(ds *Dataset) (map[Table][]byte, error) {
	out := make(map[Table][]byte, len(Tables))
	for _, t := range Tables {
		b, err := EncodeTable(ds, t)
		if err != nil {
			return nil, err
		}
		out[t] = b
	}
	return out, nil
}

// EncodeTable renders a single table.
func EncodeTable(ds *Dataset, t Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(Headers[t]); err != nil {
		return nil, err
	}
	for _, rec := range records(ds, t) {
		if err := w.Write(rec); err != nil {
			return nil, fmt.Errorf("dataset: encode %s: %w", t.File(), err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("dataset: encode %s: %w", t.File(), err)
	}
	return buf.Bytes(), nil
}

func records(ds *Dataset, t Table) [][]string {
	itoa := strconv.Itoa
	var out [][]string
	switch t {
	case Customers:
		for _, c := range ds.Customers {
			out = append(out, []string{itoa(c.ID), c.Name, c.Email, c.Phone, c.Address, c.JoinDate.Format(DateLayout)})
		}
	case Products:
		for _, p := range ds.Products {
			out = append(out, []string{itoa(p.ID), p.Name, p.Category, p.Price.String(), p.SKU})
		}
	case Orders:
		for _, o := range ds.Orders {
			out = append(out, []string{itoa(o.ID), itoa(o.CustomerID), o.OrderDate.Format(DateTimeLayout), o.Total.String(), o.Status})
		}
	case OrderItems:
		for _, i := range ds.OrderItems {
			out = append(out, []string{
				itoa(i.ID), itoa(i.OrderID), itoa(i.ProductID), itoa(i.Quantity),
				i.UnitPrice.String(), itoa(i.DiscountPct), i.LineTotal.String(),
			})
		}
	case Reviews:
		for _, r := range ds.Reviews {
			out = append(out, []string{itoa(r.ID), itoa(r.ProductID), itoa(r.CustomerID), itoa(r.Rating), r.Text, r.ReviewDate.Format(DateTimeLayout)})
		}
	}
	return out
}

// Decode parses one table's CSV bytes into ds.
func Decode(ds *Dataset, t Table, data []byte) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return fmt.Errorf("%w: %s", ErrEmptyFile, t.File())
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(Headers[t])

	header, err := r.Read()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) && errors.Is(pe.Err, csv.ErrFieldCount) {
			return fmt.Errorf("%w: %s has %d columns, want %v", ErrHeaderMismatch, t.File(), len(header), Headers[t])
		}
		return fmt.Errorf("dataset: %s: %w", t.File(), err)
	}
	if !equalHeader(header, Headers[t]) {
		return fmt.Errorf("%w: %s has %v, want %v", ErrHeaderMismatch, t.File(), header, Headers[t])
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("dataset: %s: %w", t.File(), err)
		}
		line, _ := r.FieldPos(0)
		p := fieldParser{rec: rec}
		switch t {
		case Customers:
			ds.Customers = append(ds.Customers, Customer{
				ID: p.int(0), Name: rec[1], Email: rec[2], Phone: rec[3], Address: rec[4],
				JoinDate: p.time(5, DateLayout),
			})
		case Products:
			ds.Products = append(ds.Products, Product{
				ID: p.int(0), Name: rec[1], Category: rec[2], Price: p.money(3), SKU: rec[4],
			})
		case Orders:
			ds.Orders = append(ds.Orders, Order{
				ID: p.int(0), CustomerID: p.int(1), OrderDate: p.time(2, DateTimeLayout),
				Total: p.money(3), Status: rec[4],
			})
		case OrderItems:
			ds.OrderItems = append(ds.OrderItems, OrderItem{
				ID: p.int(0), OrderID: p.int(1), ProductID: p.int(2), Quantity: p.int(3),
				UnitPrice: p.money(4), DiscountPct: p.int(5), LineTotal: p.money(6),
			})
		case Reviews:
			ds.Reviews = append(ds.Reviews, Review{
				ID: p.int(0), ProductID: p.int(1), CustomerID: p.int(2), Rating: p.int(3),
				Text: rec[4], ReviewDate: p.time(5, DateTimeLayout),
			})
		}
		if p.err != nil {
			return fmt.Errorf("dataset: %s line %d: %w", t.File(), line, p.err)
		}
	}
}

func equalHeader(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		g := got[i]
		if i == 0 {
			g = trimBOM(g)
		}
		if g != want[i] {
			return false
		}
	}
	return true
}

func trimBOM(s string) string {
	if len(s) >= 3 && s[0] == 0xEF && s[1] == 0xBB && s[2] == 0xBF {
		return s[3:]
	}
	return s
}

// fieldParser keeps the first conversion error of a record.
type fieldParser struct {
	rec []string
	err error
}

func (p *fieldParser) fail(i int, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("column %d (%q): %w", i+1, p.rec[i], err)
	}
}

func (p *fieldParser) int(i int) int {
	n, err := strconv.Atoi(p.rec[i])
	if err != nil {
		p.fail(i, err)
	}
	return n
}

func (p *fieldParser) money(i int) Money {
	m, err := ParseMoney(p.rec[i])
	if err != nil {
		p.fail(i, err)
	}
	return m
}

func (p *fieldParser) time(i int, layout string) time.Time {
	t, err := time.Parse(layout, p.rec[i])
	if err != nil {
		p.fail(i, err)
	}
	return t
}
