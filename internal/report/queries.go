package report

// The statements below run unchanged on sqlite and postgres. Money is
// rounded to 2 decimals and ratios to 4; every ORDER BY ends on a key so
// ties are stable. "* 1.0" keeps sqlite from integer division when whole
// amounts were stored as integers.

const topCustomersSQL = `
SELECT c.customer_id,
       c.name,
       ROUND(CAST(SUM(o.total) AS NUMERIC), 2) AS lifetime_spend,
       COUNT(DISTINCT o.order_id)              AS orders_count
FROM customers c
JOIN orders o ON o.customer_id = c.customer_id
WHERE o.status = 'completed'
GROUP BY c.customer_id, c.name
ORDER BY lifetime_spend DESC, c.customer_id
LIMIT 10`

const topProductsSQL = `
SELECT p.product_id,
       p.name,
       p.category,
       ROUND(CAST(SUM(oi.line_total) AS NUMERIC), 2) AS revenue,
       SUM(oi.quantity)                              AS units_sold
FROM order_items oi
JOIN orders o   ON o.order_id = oi.order_id
JOIN products p ON p.product_id = oi.product_id
WHERE o.status = 'completed'
GROUP BY p.product_id, p.name, p.category
ORDER BY revenue DESC, p.product_id
LIMIT 10`

const monthlyRevenueSQL = `
SELECT SUBSTR(o.order_date, 1, 7)              AS month,
       ROUND(CAST(SUM(o.total) AS NUMERIC), 2) AS revenue,
       COUNT(*)                                AS order_count
FROM orders o
WHERE o.status = 'completed'
  AND o.order_date IS NOT NULL
  AND o.order_date <> ''
GROUP BY SUBSTR(o.order_date, 1, 7)
ORDER BY month DESC
LIMIT 12`

const topRatedCustomersSQL = `
SELECT c.customer_id,
       c.name,
       ROUND(CAST(AVG(r.rating) AS NUMERIC), 2) AS avg_rating,
       COUNT(*)                                 AS review_count
FROM reviews r
JOIN customers c ON c.customer_id = r.customer_id
GROUP BY c.customer_id, c.name
HAVING COUNT(*) >= 3
ORDER BY AVG(r.rating) DESC, COUNT(*) DESC, c.customer_id
LIMIT 20`

const categoryShareSQL = `
WITH category_revenue AS (
    SELECT p.category, SUM(oi.line_total) AS revenue
    FROM order_items oi
    JOIN orders o   ON o.order_id = oi.order_id
    JOIN products p ON p.product_id = oi.product_id
    WHERE o.status = 'completed'
    GROUP BY p.category
),
grand AS (
    SELECT SUM(revenue) AS grand_total FROM category_revenue
)
SELECT cr.category,
       ROUND(CAST(cr.revenue AS NUMERIC), 2) AS revenue,
       COALESCE(ROUND(CAST(cr.revenue * 1.0 / NULLIF(g.grand_total, 0) AS NUMERIC), 4), 0) AS pct_of_revenue
FROM category_revenue cr
CROSS JOIN grand g
ORDER BY revenue DESC, cr.category`

// LTVSelect computes the lifetime value of every customer from completed
// orders. Customers without one report zero spend and no last order date.
const LTVSelect = `
SELECT c.customer_id,
       c.name,
       COALESCE(ROUND(CAST(SUM(o.total) AS NUMERIC), 2), 0) AS lifetime_spend,
       COUNT(o.order_id)                                    AS orders_count,
       CASE WHEN COUNT(o.order_id) = 0 THEN 0
            ELSE ROUND(CAST(SUM(o.total) * 1.0 / COUNT(o.order_id) AS NUMERIC), 2)
       END                                                  AS avg_order_value,
       MAX(o.order_date)                                    AS last_order_date
FROM customers c
LEFT JOIN orders o ON o.customer_id = c.customer_id AND o.status = 'completed'
GROUP BY c.customer_id, c.name
ORDER BY lifetime_spend DESC, c.customer_id`

// LTVColumns is the column list of LTVSelect and of the customer_ltv table.
var LTVColumns = []string{"customer_id", "name", "lifetime_spend", "orders_count", "avg_order_value", "last_order_date"}
