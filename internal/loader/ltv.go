package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/ecomsynth/app/models"
	"github.com/shashiranjanraj/ecomsynth/internal/report"
)

// buildLTV materialises customer_ltv inside tx and returns it as CSV.
func buildLTV(ctx context.Context, tx *gorm.DB) (int, []byte, error) {
	if err := tx.Migrator().CreateTable(&models.CustomerLTV{}); err != nil {
		return 0, nil, fmt.Errorf("loader: create customer_ltv: %w", err)
	}
	insert := "INSERT INTO customer_ltv (" + strings.Join(report.LTVColumns, ", ") + ")" + report.LTVSelect
	if err := tx.Exec(insert).Error; err != nil {
		return 0, nil, fmt.Errorf("loader: fill customer_ltv: %w", err)
	}

	var rows []models.CustomerLTV
	if err := tx.WithContext(ctx).Order("lifetime_spend DESC, customer_id").Find(&rows).Error; err != nil {
		return 0, nil, fmt.Errorf("loader: read customer_ltv: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(report.LTVColumns)
	for _, r := range rows {
		last := ""
		if r.LastOrderDate != nil {
			last = *r.LastOrderDate
		}
		_ = w.Write([]string{
			strconv.Itoa(r.CustomerID), r.Name,
			strconv.FormatFloat(r.LifetimeSpend, 'f', 2, 64),
			strconv.Itoa(r.OrdersCount),
			strconv.FormatFloat(r.AvgOrderValue, 'f', 2, 64),
			last,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, nil, fmt.Errorf("loader: encode %s: %w", LTVFile, err)
	}
	return len(rows), buf.Bytes(), nil
}
