package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/retailbooks/retailbooks/internal/shared"
)

// queryCanceled is SQLSTATE 57014, raised when the server kills a
// statement, typically through statement_timeout.
const queryCanceled = "57014"

// classify maps driver errors onto the shared sentinel set. A statement
// cancelled server-side surfaces as the report budget timeout; everything
// else passes through unchanged.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == queryCanceled {
		return fmt.Errorf("%w: %s", shared.ErrTimeout, pgErr.Message)
	}
	return err
}

// Postgres implements Store against the relational event tables.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs the adapter.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// dateColumn names the calendar-date column a range filter applies to.
// Retargeting a filter to a different event table means choosing a
// different constant, never rewriting SQL text.
type dateColumn string

const (
	saleDate        dateColumn = "s.created_at"
	purchaseDate    dateColumn = "p.date"
	transactionDate dateColumn = "t.transaction_date"
	expenseDate     dateColumn = "e.date"
	adjustmentDate  dateColumn = "a.created_at"
)

// rangeClause appends inclusive date bounds for col to the query. A zero
// time leaves that side unbounded. Comparison is date-truncated in SQL so
// stored timestamps behave as calendar dates.
func rangeClause(sb *strings.Builder, args *[]any, col dateColumn, from, to time.Time) {
	if !from.IsZero() {
		*args = append(*args, from)
		fmt.Fprintf(sb, " AND %s::date >= $%d", col, len(*args))
	}
	if !to.IsZero() {
		*args = append(*args, to)
		fmt.Fprintf(sb, " AND %s::date <= $%d", col, len(*args))
	}
}

const notCancelled = " AND %s.status NOT IN ('cancelled','deleted')"

func (s *Postgres) GetShopConfig(ctx context.Context) (ShopConfig, error) {
	const query = `SELECT COALESCE(gstin,''), COALESCE(state,''), COALESCE(is_inclusive,false) FROM shop_config LIMIT 1`
	var cfg ShopConfig
	err := s.pool.QueryRow(ctx, query).Scan(&cfg.GSTIN, &cfg.State, &cfg.IsInclusive)
	if errors.Is(err, pgx.ErrNoRows) {
		return ShopConfig{}, nil
	}
	if err != nil {
		return ShopConfig{}, fmt.Errorf("store: shop config: %w", classify(err))
	}
	return cfg, nil
}

func (s *Postgres) GetCustomer(ctx context.Context, id int64) (Customer, error) {
	const query = `SELECT id, name, COALESCE(gstin,''), COALESCE(state,'') FROM customers WHERE id = $1`
	var c Customer
	err := s.pool.QueryRow(ctx, query, id).Scan(&c.ID, &c.Name, &c.GSTIN, &c.State)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, fmt.Errorf("store: customer %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Customer{}, fmt.Errorf("store: customer %d: %w", id, classify(err))
	}
	return c, nil
}

func (s *Postgres) GetSupplier(ctx context.Context, id int64) (Supplier, error) {
	const query = `SELECT id, name, COALESCE(gstin,''), COALESCE(state,'') FROM suppliers WHERE id = $1`
	var sup Supplier
	err := s.pool.QueryRow(ctx, query, id).Scan(&sup.ID, &sup.Name, &sup.GSTIN, &sup.State)
	if errors.Is(err, pgx.ErrNoRows) {
		return Supplier{}, fmt.Errorf("store: supplier %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Supplier{}, fmt.Errorf("store: supplier %d: %w", id, classify(err))
	}
	return sup, nil
}

func (s *Postgres) GetProduct(ctx context.Context, id int64) (Product, error) {
	const query = `SELECT id, name, COALESCE(hsn_code,''), COALESCE(gst_rate,0), COALESCE(quantity,0), active FROM products WHERE id = $1`
	var p Product
	err := s.pool.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.HSNCode, &p.GSTRate, &p.Quantity, &p.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, fmt.Errorf("store: product %d: %w", id, shared.ErrNotFound)
	}
	if err != nil {
		return Product{}, fmt.Errorf("store: product %d: %w", id, classify(err))
	}
	return p, nil
}

func (s *Postgres) ListCustomers(ctx context.Context) ([]Customer, error) {
	const query = `SELECT id, name, COALESCE(gstin,''), COALESCE(state,'') FROM customers ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list customers: %w", classify(err))
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.GSTIN, &c.State); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Postgres) ListActiveProducts(ctx context.Context) ([]Product, error) {
	const query = `SELECT id, name, COALESCE(hsn_code,''), COALESCE(gst_rate,0), COALESCE(quantity,0), active FROM products WHERE active ORDER BY id`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", classify(err))
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.HSNCode, &p.GSTRate, &p.Quantity, &p.Active); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Postgres) CustomersByIDs(ctx context.Context, ids []int64) (map[int64]Customer, error) {
	if len(ids) == 0 {
		return map[int64]Customer{}, nil
	}
	const query = `SELECT id, name, COALESCE(gstin,''), COALESCE(state,'') FROM customers WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("store: customers by ids: %w", classify(err))
	}
	defer rows.Close()

	out := make(map[int64]Customer, len(ids))
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.Name, &c.GSTIN, &c.State); err != nil {
			return nil, err
		}
		out[c.ID] = c
	}
	return out, rows.Err()
}

func (s *Postgres) ProductsByIDs(ctx context.Context, ids []int64) (map[int64]Product, error) {
	if len(ids) == 0 {
		return map[int64]Product{}, nil
	}
	const query = `SELECT id, name, COALESCE(hsn_code,''), COALESCE(gst_rate,0), COALESCE(quantity,0), active FROM products WHERE id = ANY($1)`
	rows, err := s.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("store: products by ids: %w", classify(err))
	}
	defer rows.Close()

	out := make(map[int64]Product, len(ids))
	for rows.Next() {
		var p Product
		if err := rows.Scan(&p.ID, &p.Name, &p.HSNCode, &p.GSTRate, &p.Quantity, &p.Active); err != nil {
			return nil, err
		}
		out[p.ID] = p
	}
	return out, rows.Err()
}

func (s *Postgres) querySales(ctx context.Context, where string, args []any) ([]Sale, error) {
	query := `SELECT s.id, COALESCE(s.customer_id,0), COALESCE(s.reference_no,''), s.created_at,
		COALESCE(s.total_amount,0), COALESCE(s.paid_amount,0), s.status,
		COALESCE(s.is_quote,false), COALESCE(s.is_reverse_charge,false)
		FROM sales s WHERE NOT COALESCE(s.is_quote,false)` +
		fmt.Sprintf(notCancelled, "s") + where + " ORDER BY s.created_at, s.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query sales: %w", classify(err))
	}
	defer rows.Close()

	var sales []Sale
	ids := make([]int64, 0)
	for rows.Next() {
		var sl Sale
		if err := rows.Scan(&sl.ID, &sl.CustomerID, &sl.ReferenceNo, &sl.Date, &sl.TotalAmount, &sl.PaidAmount, &sl.Status, &sl.IsQuote, &sl.IsReverseCharge); err != nil {
			return nil, err
		}
		sales = append(sales, sl)
		ids = append(ids, sl.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(sales) == 0 {
		return sales, nil
	}

	const itemQuery = `SELECT sale_id, product_id, COALESCE(quantity,0), COALESCE(rate,0), COALESCE(discount,0), COALESCE(gst_rate,0)
		FROM sale_items WHERE sale_id = ANY($1)`
	itemRows, err := s.pool.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("store: sale items: %w", classify(err))
	}
	defer itemRows.Close()

	itemsBySale := make(map[int64][]SaleItem)
	for itemRows.Next() {
		var saleID int64
		var it SaleItem
		if err := itemRows.Scan(&saleID, &it.ProductID, &it.Quantity, &it.Rate, &it.DiscountPct, &it.GSTRate); err != nil {
			return nil, err
		}
		itemsBySale[saleID] = append(itemsBySale[saleID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Items = itemsBySale[sales[i].ID]
	}
	return sales, nil
}

func (s *Postgres) SalesByCustomer(ctx context.Context, customerID int64, from, to time.Time) ([]Sale, error) {
	var sb strings.Builder
	args := []any{customerID}
	sb.WriteString(" AND s.customer_id = $1")
	rangeClause(&sb, &args, saleDate, from, to)
	return s.querySales(ctx, sb.String(), args)
}

func (s *Postgres) SalesInRange(ctx context.Context, from, to time.Time) ([]Sale, error) {
	var sb strings.Builder
	var args []any
	rangeClause(&sb, &args, saleDate, from, to)
	return s.querySales(ctx, sb.String(), args)
}

func (s *Postgres) queryPurchases(ctx context.Context, where string, args []any) ([]Purchase, error) {
	query := `SELECT p.id, p.supplier_id, COALESCE(p.reference_no,''), p.date,
		COALESCE(p.total_amount,0), COALESCE(p.paid_amount,0), p.status
		FROM purchases p WHERE 1=1` +
		fmt.Sprintf(notCancelled, "p") + where + " ORDER BY p.date, p.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query purchases: %w", classify(err))
	}
	defer rows.Close()

	var purchases []Purchase
	ids := make([]int64, 0)
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.SupplierID, &p.ReferenceNo, &p.Date, &p.TotalAmount, &p.PaidAmount, &p.Status); err != nil {
			return nil, err
		}
		purchases = append(purchases, p)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(purchases) == 0 {
		return purchases, nil
	}

	const itemQuery = `SELECT purchase_id, product_id, COALESCE(quantity,0), COALESCE(rate,0), COALESCE(discount,0), COALESCE(gst_rate,0)
		FROM purchase_items WHERE purchase_id = ANY($1)`
	itemRows, err := s.pool.Query(ctx, itemQuery, ids)
	if err != nil {
		return nil, fmt.Errorf("store: purchase items: %w", classify(err))
	}
	defer itemRows.Close()

	itemsByBill := make(map[int64][]PurchaseItem)
	for itemRows.Next() {
		var billID int64
		var it PurchaseItem
		if err := itemRows.Scan(&billID, &it.ProductID, &it.Quantity, &it.Rate, &it.DiscountPct, &it.GSTRate); err != nil {
			return nil, err
		}
		itemsByBill[billID] = append(itemsByBill[billID], it)
	}
	if err := itemRows.Err(); err != nil {
		return nil, err
	}
	for i := range purchases {
		purchases[i].Items = itemsByBill[purchases[i].ID]
	}
	return purchases, nil
}

func (s *Postgres) PurchasesBySupplier(ctx context.Context, supplierID int64, from, to time.Time) ([]Purchase, error) {
	var sb strings.Builder
	args := []any{supplierID}
	sb.WriteString(" AND p.supplier_id = $1")
	rangeClause(&sb, &args, purchaseDate, from, to)
	return s.queryPurchases(ctx, sb.String(), args)
}

func (s *Postgres) PurchasesInRange(ctx context.Context, from, to time.Time) ([]Purchase, error) {
	var sb strings.Builder
	var args []any
	rangeClause(&sb, &args, purchaseDate, from, to)
	return s.queryPurchases(ctx, sb.String(), args)
}

func (s *Postgres) queryTransactions(ctx context.Context, where string, args []any) ([]Transaction, error) {
	query := `SELECT t.id, t.type, COALESCE(t.bill_id,0), COALESCE(t.bill_type,''), COALESCE(t.entity_id,0),
		COALESCE(t.entity_type,''), t.transaction_date, COALESCE(t.amount,0), COALESCE(t.gst_amount,0),
		COALESCE(t.payment_mode,''), COALESCE(t.reference_no,''), COALESCE(t.note,''), t.status
		FROM transactions t WHERE 1=1` +
		fmt.Sprintf(notCancelled, "t") + where + " ORDER BY t.transaction_date, t.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query transactions: %w", classify(err))
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var tx Transaction
		if err := rows.Scan(&tx.ID, &tx.Type, &tx.BillID, &tx.BillType, &tx.EntityID, &tx.EntityType,
			&tx.Date, &tx.Amount, &tx.GSTAmount, &tx.PaymentMode, &tx.ReferenceNo, &tx.Note, &tx.Status); err != nil {
			return nil, err
		}
		out = append(out, tx)
	}
	return out, rows.Err()
}

func (s *Postgres) TransactionsByEntity(ctx context.Context, entityType EntityType, entityID int64, from, to time.Time) ([]Transaction, error) {
	var sb strings.Builder
	args := []any{string(entityType), entityID}
	sb.WriteString(" AND t.entity_type = $1 AND t.entity_id = $2")
	rangeClause(&sb, &args, transactionDate, from, to)
	return s.queryTransactions(ctx, sb.String(), args)
}

func (s *Postgres) TransactionsInRange(ctx context.Context, from, to time.Time) ([]Transaction, error) {
	var sb strings.Builder
	var args []any
	rangeClause(&sb, &args, transactionDate, from, to)
	return s.queryTransactions(ctx, sb.String(), args)
}

func (s *Postgres) ExpensesInRange(ctx context.Context, from, to time.Time) ([]Expense, error) {
	var sb strings.Builder
	var args []any
	rangeClause(&sb, &args, expenseDate, from, to)
	query := `SELECT e.id, e.date, COALESCE(e.category,''), COALESCE(e.amount,0), COALESCE(e.payment_mode,''), e.status
		FROM expenses e WHERE 1=1` + fmt.Sprintf(notCancelled, "e") + sb.String() + " ORDER BY e.date, e.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query expenses: %w", classify(err))
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.Date, &e.Category, &e.Amount, &e.PaymentMode, &e.Status); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Postgres) AdjustmentsByProduct(ctx context.Context, productID int64, from, to time.Time) ([]StockAdjustment, error) {
	var sb strings.Builder
	args := []any{productID}
	sb.WriteString(" AND a.product_id = $1")
	rangeClause(&sb, &args, adjustmentDate, from, to)
	query := `SELECT a.id, a.product_id, COALESCE(a.old_quantity,0), COALESCE(a.new_quantity,0), a.created_at, COALESCE(a.category,'')
		FROM stock_adjustments a WHERE 1=1` + sb.String() + " ORDER BY a.created_at, a.id"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: query adjustments: %w", classify(err))
	}
	defer rows.Close()

	var out []StockAdjustment
	for rows.Next() {
		var a StockAdjustment
		if err := rows.Scan(&a.ID, &a.ProductID, &a.OldQuantity, &a.NewQuantity, &a.Date, &a.Category); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Postgres) ProductMovement(ctx context.Context, productID int64, from, to time.Time) (Movement, error) {
	var mv Movement

	var pb strings.Builder
	purchaseArgs := []any{productID}
	rangeClause(&pb, &purchaseArgs, purchaseDate, from, to)
	purchaseQuery := `SELECT COALESCE(SUM(pi.quantity),0) FROM purchase_items pi
		JOIN purchases p ON p.id = pi.purchase_id
		WHERE pi.product_id = $1` + fmt.Sprintf(notCancelled, "p") + pb.String()
	if err := s.pool.QueryRow(ctx, purchaseQuery, purchaseArgs...).Scan(&mv.PurchasedQty); err != nil {
		return Movement{}, fmt.Errorf("store: purchased qty: %w", classify(err))
	}

	var sb strings.Builder
	saleArgs := []any{productID}
	rangeClause(&sb, &saleArgs, saleDate, from, to)
	saleQuery := `SELECT COALESCE(SUM(si.quantity),0) FROM sale_items si
		JOIN sales s ON s.id = si.sale_id
		WHERE si.product_id = $1 AND NOT COALESCE(s.is_quote,false)` + fmt.Sprintf(notCancelled, "s") + sb.String()
	if err := s.pool.QueryRow(ctx, saleQuery, saleArgs...).Scan(&mv.SoldQty); err != nil {
		return Movement{}, fmt.Errorf("store: sold qty: %w", classify(err))
	}

	return mv, nil
}
