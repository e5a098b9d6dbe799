// Package store — PostgreSQL Store implementation backed by pgxpool.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/shoplite/shoplite/api/pkg/models"
)

// PostgresStore implements Store using a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to PostgreSQL, verifies reachability, and runs
// migrations. An unreachable database is a startup failure, not something
// to retry at request time.
func NewPostgresStore(ctx context.Context, connURL string, maxConns int) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connURL)
	if err != nil {
		return nil, fmt.Errorf("postgres config: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrate: %w", err)
	}

	log.Info().Msg("postgres store initialized")
	return s, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// Migrate creates the schema if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS products (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			price       DOUBLE PRECISION NOT NULL,
			category    TEXT NOT NULL,
			tags        TEXT[] NOT NULL DEFAULT '{}',
			image_url   TEXT NOT NULL DEFAULT '',
			stock       INTEGER NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS customers (
			id         TEXT PRIMARY KEY,
			name       TEXT NOT NULL,
			email      TEXT NOT NULL UNIQUE,
			phone      TEXT NOT NULL DEFAULT '',
			address    TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS orders (
			id                 TEXT PRIMARY KEY,
			customer_id        TEXT NOT NULL,
			items              JSONB NOT NULL DEFAULT '[]',
			total              DOUBLE PRECISION NOT NULL,
			status             TEXT NOT NULL,
			carrier            TEXT NOT NULL DEFAULT '',
			estimated_delivery TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS conversation_turns (
			id         TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role       TEXT NOT NULL,
			content    TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_turns_session ON conversation_turns (session_id, created_at DESC);

		CREATE TABLE IF NOT EXISTS assistant_logs (
			id                 TEXT PRIMARY KEY,
			session_id         TEXT NOT NULL,
			intent             TEXT NOT NULL,
			functions_called   JSONB NOT NULL DEFAULT '[]',
			processing_time_ms BIGINT NOT NULL DEFAULT 0,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := s.pool.Exec(ctx, ddl)
	return err
}

// ── Product Store ───────────────────────────────────────────

const productColumns = `id, name, description, price, category, tags, image_url, stock, created_at, updated_at`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.Tags,
		&p.ImageURL, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", len(args), len(args))
	}
	if filter.Tag != "" {
		args = append(args, filter.Tag)
		query += fmt.Sprintf(" AND $%d = ANY(tags)", len(args))
	}
	switch filter.Sort {
	case "price-asc":
		query += " ORDER BY price ASC"
	case "price-desc":
		query += " ORDER BY price DESC"
	default:
		query += " ORDER BY name ASC"
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "product", Key: id}
	}
	return p, err
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *models.Product) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO products (`+productColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.Tags, product.ImageURL, product.Stock, product.CreatedAt, product.UpdatedAt)
	return err
}

func (s *PostgresStore) SearchProducts(ctx context.Context, term string, limit int) ([]models.Product, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+productColumns+` FROM products
		WHERE name ILIKE $1
		ORDER BY name ASC
		LIMIT $2`, "%"+term+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

func (s *PostgresStore) CountProducts(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count)
	return count, err
}

// ── Order Store ─────────────────────────────────────────────

const orderColumns = `id, customer_id, items, total, status, carrier, estimated_delivery, created_at, updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.CustomerID, &o.Items, &o.Total, &o.Status, &o.Carrier,
		&o.EstimatedDelivery, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *PostgresStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "order", Key: id}
	}
	return o, err
}

func (s *PostgresStore) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		order.ID, order.CustomerID, order.Items, order.Total, order.Status,
		order.Carrier, order.EstimatedDelivery, order.CreatedAt, order.UpdatedAt)
	return err
}

func (s *PostgresStore) UpdateOrderStatus(ctx context.Context, id, status, carrier string, eta *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE orders SET
			status = $2,
			carrier = CASE WHEN $3 <> '' THEN $3 ELSE carrier END,
			estimated_delivery = COALESCE($4, estimated_delivery),
			updated_at = NOW()
		WHERE id = $1`, id, status, carrier, eta)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ErrNotFound{Entity: "order", Key: id}
	}
	return nil
}

func (s *PostgresStore) ListOrdersByCustomer(ctx context.Context, customerID string, limit int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	args := []any{customerID}
	if limit > 0 {
		args = append(args, limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func (s *PostgresStore) CountOrdersByCustomer(ctx context.Context, customerID string) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders WHERE customer_id = $1`, customerID).Scan(&count)
	return count, err
}

func (s *PostgresStore) SumOrdersByCustomer(ctx context.Context, customerID string) (*models.OrderAggregate, error) {
	var agg models.OrderAggregate
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM orders WHERE customer_id = $1`, customerID).Scan(&agg.TotalSpent, &agg.OrderCount)
	if err != nil {
		return nil, err
	}
	return &agg, nil
}

func (s *PostgresStore) LastOrderByCustomer(ctx context.Context, customerID string) (*models.Order, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE customer_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, customerID)
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "order", Key: "customer:" + customerID}
	}
	return o, err
}

func (s *PostgresStore) DailyRevenue(ctx context.Context, from, to time.Time) ([]models.DailyRevenue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
		       SUM(total), COUNT(*)
		FROM orders
		WHERE created_at >= $1 AND created_at <= $2
		GROUP BY day
		ORDER BY day ASC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily revenue: %w", err)
	}
	defer rows.Close()

	result := []models.DailyRevenue{}
	for rows.Next() {
		var d models.DailyRevenue
		if err := rows.Scan(&d.Date, &d.Revenue, &d.OrderCount); err != nil {
			return nil, fmt.Errorf("scan revenue: %w", err)
		}
		result = append(result, d)
	}
	return result, rows.Err()
}

func (s *PostgresStore) BusinessMetrics(ctx context.Context) (*models.BusinessMetrics, error) {
	var m models.BusinessMetrics
	err := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*), COALESCE(AVG(total), 0)
		FROM orders`).Scan(&m.TotalRevenue, &m.TotalOrders, &m.AvgOrderValue)
	if err != nil {
		return nil, fmt.Errorf("business metrics: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT status, COUNT(*) FROM orders GROUP BY status ORDER BY status ASC`)
	if err != nil {
		return nil, fmt.Errorf("orders by status: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sc models.StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, fmt.Errorf("scan status count: %w", err)
		}
		m.OrdersByStatus = append(m.OrdersByStatus, sc)
	}
	return &m, rows.Err()
}

// ── Customer Store ──────────────────────────────────────────

const customerColumns = `id, name, email, phone, address, created_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *PostgresStore) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (s *PostgresStore) GetCustomer(ctx context.Context, id string) (*models.Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "customer", Key: id}
	}
	return c, err
}

func (s *PostgresStore) GetCustomerByEmail(ctx context.Context, email string) (*models.Customer, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE LOWER(email) = LOWER($1)`, email)
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &ErrNotFound{Entity: "customer", Key: email}
	}
	return c, err
}

func (s *PostgresStore) CreateCustomer(ctx context.Context, customer *models.Customer) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		customer.ID, customer.Name, customer.Email, customer.Phone, customer.Address, customer.CreatedAt)
	return err
}

// ── Conversation Store ──────────────────────────────────────

func (s *PostgresStore) AppendTurn(ctx context.Context, turn *models.Turn) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO conversation_turns (id, session_id, role, content, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		turn.ID, turn.SessionID, turn.Role, turn.Content, turn.CreatedAt)
	return err
}

func (s *PostgresStore) RecentTurns(ctx context.Context, sessionID string, limit int) ([]models.Turn, error) {
	// Take the newest N, then flip to ascending for transcript rendering.
	rows, err := s.pool.Query(ctx, `
		SELECT id, session_id, role, content, created_at FROM (
			SELECT id, session_id, role, content, created_at
			FROM conversation_turns
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT $2
		) latest
		ORDER BY created_at ASC`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent turns: %w", err)
	}
	defer rows.Close()

	turns := []models.Turn{}
	for rows.Next() {
		var t models.Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// ── Assistant Log Store ─────────────────────────────────────

func (s *PostgresStore) AppendAssistantLog(ctx context.Context, entry *models.AssistantLog) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO assistant_logs (id, session_id, intent, functions_called, processing_time_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		entry.ID, entry.SessionID, entry.Intent, entry.FunctionsCalled, entry.ProcessingTimeMs, entry.CreatedAt)
	return err
}

func (s *PostgresStore) AssistantStats(ctx context.Context) (*models.AssistantStats, error) {
	stats := &models.AssistantStats{}

	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assistant_logs`).Scan(&stats.TotalQueries); err != nil {
		return nil, fmt.Errorf("assistant stats count: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT intent, COUNT(*), AVG(processing_time_ms)
		FROM assistant_logs
		GROUP BY intent
		ORDER BY COUNT(*) DESC, intent ASC`)
	if err != nil {
		return nil, fmt.Errorf("intent distribution: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var ic models.IntentCount
		var avg float64
		if err := rows.Scan(&ic.Intent, &ic.Count, &avg); err != nil {
			return nil, fmt.Errorf("scan intent count: %w", err)
		}
		stats.IntentDistribution = append(stats.IntentDistribution, ic)
		stats.AvgTimings = append(stats.AvgTimings, models.IntentTiming{Intent: ic.Intent, AvgResponseTimeMs: avg})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	fnRows, err := s.pool.Query(ctx, `
		SELECT fc->>'name', COUNT(*)
		FROM assistant_logs, jsonb_array_elements(functions_called) AS fc
		GROUP BY fc->>'name'
		ORDER BY COUNT(*) DESC, fc->>'name' ASC`)
	if err != nil {
		return nil, fmt.Errorf("function calls: %w", err)
	}
	defer fnRows.Close()

	for fnRows.Next() {
		var fc models.FunctionCount
		if err := fnRows.Scan(&fc.FunctionName, &fc.Count); err != nil {
			return nil, fmt.Errorf("scan function count: %w", err)
		}
		stats.FunctionCalls = append(stats.FunctionCalls, fc)
	}
	return stats, fnRows.Err()
}

// Compile-time check that PostgresStore implements Store.
var _ Store = (*PostgresStore)(nil)
