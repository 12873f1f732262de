// Package repository содержит реализацию доступа к данным в PostgreSQL.
package repository

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/mmeshcher/transferdesk/internal/model"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrUserExists возвращается при попытке создать пользователя с уже существующим логином.
var (
	ErrUserExists = errors.New("user already exists")
	// ErrUserNotFound возвращается, если пользователь не найден.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound возвращается, если запись не найдена.
	ErrNotFound = errors.New("record not found")
	// ErrNameExists возвращается при попытке создать водителя или подрядчика с занятым именем.
	ErrNameExists = errors.New("name already exists")
	// ErrEntityInUse возвращается при удалении водителя или подрядчика с назначенными услугами.
	ErrEntityInUse = errors.New("entity has assigned services")
)

// PostgresRepository предоставляет доступ к хранилищу данных в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

func (r *PostgresRepository) withRetry(ctx context.Context, fn func() error) error {
	var err error
	delays := []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		// Если ошибка контекста — выходим сразу
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected {
				if i < len(delays) {
					time.Sleep(delays[i])
					continue
				}
			}
		}

		if isConnectionError(err) {
			if i < len(delays) {
				time.Sleep(delays[i])
				continue
			}
		}

		break
	}
	return err
}

func isConnectionError(err error) bool {
	// Упрощенная проверка на ошибки соединения
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// CreateUser создаёт нового сотрудника.
func (r *PostgresRepository) CreateUser(ctx context.Context, login string, passwordHash []byte) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (login, password_hash) VALUES ($1, $2) RETURNING id`,
		login, passwordHash,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return 0, fmt.Errorf("%w: %s", ErrUserExists, login)
		}
		return 0, fmt.Errorf("create user: %w", err)
	}
	return id, nil
}

// GetUserByLogin возвращает сотрудника по логину.
func (r *PostgresRepository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, login, password_hash, created_at FROM users WHERE login = $1`,
		login,
	)

	var u model.User
	err := row.Scan(&u.ID, &u.Login, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &u, nil
}

// CreateDriver сохраняет нового водителя.
func (r *PostgresRepository) CreateDriver(ctx context.Context, d model.Driver) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO drivers (id, name, phone, note) VALUES ($1, $2, $3, $4)`,
		d.ID, d.Name, d.Phone, d.Note,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrNameExists, d.Name)
		}
		return fmt.Errorf("create driver: %w", err)
	}
	return nil
}

// GetDriver возвращает водителя по идентификатору.
func (r *PostgresRepository) GetDriver(ctx context.Context, id string) (*model.Driver, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, note, created_at FROM drivers WHERE id = $1`, id)

	var d model.Driver
	if err := row.Scan(&d.ID, &d.Name, &d.Phone, &d.Note, &d.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get driver: %w", err)
	}
	return &d, nil
}

// ListDrivers возвращает всех водителей в алфавитном порядке.
func (r *PostgresRepository) ListDrivers(ctx context.Context) ([]model.Driver, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, note, created_at FROM drivers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select drivers: %w", err)
	}
	defer rows.Close()

	var res []model.Driver
	for rows.Next() {
		var d model.Driver
		if err := rows.Scan(&d.ID, &d.Name, &d.Phone, &d.Note, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		res = append(res, d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateDriver обновляет данные водителя.
func (r *PostgresRepository) UpdateDriver(ctx context.Context, d model.Driver) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE drivers SET name = $2, phone = $3, note = $4 WHERE id = $1`,
		d.ID, d.Name, d.Phone, d.Note,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrNameExists, d.Name)
		}
		return fmt.Errorf("update driver: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteDriver удаляет водителя без назначенных услуг.
func (r *PostgresRepository) DeleteDriver(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM drivers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrEntityInUse
		}
		return fmt.Errorf("delete driver: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateSupplier сохраняет нового подрядчика.
func (r *PostgresRepository) CreateSupplier(ctx context.Context, s model.Supplier) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO suppliers (id, name, phone, note) VALUES ($1, $2, $3, $4)`,
		s.ID, s.Name, s.Phone, s.Note,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrNameExists, s.Name)
		}
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

// GetSupplier возвращает подрядчика по идентификатору.
func (r *PostgresRepository) GetSupplier(ctx context.Context, id string) (*model.Supplier, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, name, phone, note, created_at FROM suppliers WHERE id = $1`, id)

	var s model.Supplier
	if err := row.Scan(&s.ID, &s.Name, &s.Phone, &s.Note, &s.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get supplier: %w", err)
	}
	return &s, nil
}

// ListSuppliers возвращает всех подрядчиков в алфавитном порядке.
func (r *PostgresRepository) ListSuppliers(ctx context.Context) ([]model.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, phone, note, created_at FROM suppliers ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("select suppliers: %w", err)
	}
	defer rows.Close()

	var res []model.Supplier
	for rows.Next() {
		var s model.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Phone, &s.Note, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan supplier: %w", err)
		}
		res = append(res, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

// UpdateSupplier обновляет данные подрядчика.
func (r *PostgresRepository) UpdateSupplier(ctx context.Context, s model.Supplier) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $2, phone = $3, note = $4 WHERE id = $1`,
		s.ID, s.Name, s.Phone, s.Note,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%w: %s", ErrNameExists, s.Name)
		}
		return fmt.Errorf("update supplier: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSupplier удаляет подрядчика без назначенных услуг.
func (r *PostgresRepository) DeleteSupplier(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrEntityInUse
		}
		return fmt.Errorf("delete supplier: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const serviceColumns = `id, title, client_name, client_contact, start_at, end_at,
	client_price, deposit, supplier_cost, extras_amount, extras_info,
	payment_method, client_payment_status, supplier_payment_status,
	driver_id, supplier_id, status, created_at`

func scanService(row pgx.Row) (model.ServiceRecord, error) {
	var rec model.ServiceRecord
	err := row.Scan(
		&rec.ID, &rec.Title, &rec.ClientName, &rec.ClientContact, &rec.StartAt, &rec.EndAt,
		&rec.ClientPrice, &rec.Deposit, &rec.SupplierCost, &rec.ExtrasAmount, &rec.ExtrasInfo,
		&rec.PaymentMethod, &rec.ClientPaymentStatus, &rec.SupplierPaymentStatus,
		&rec.DriverID, &rec.SupplierID, &rec.Status, &rec.CreatedAt,
	)
	return rec, err
}

// CreateService сохраняет новую услугу.
func (r *PostgresRepository) CreateService(ctx context.Context, rec model.ServiceRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO services (id, title, client_name, client_contact, start_at, end_at,
			client_price, deposit, supplier_cost, extras_amount, extras_info,
			payment_method, client_payment_status, supplier_payment_status,
			driver_id, supplier_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		rec.ID, rec.Title, rec.ClientName, rec.ClientContact, rec.StartAt, rec.EndAt,
		rec.ClientPrice, rec.Deposit, rec.SupplierCost, rec.ExtrasAmount, rec.ExtrasInfo,
		string(rec.PaymentMethod), string(rec.ClientPaymentStatus), string(rec.SupplierPaymentStatus),
		rec.DriverID, rec.SupplierID, string(rec.Status),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("insert service: %w", err)
	}
	return nil
}

// GetService возвращает услугу по идентификатору.
func (r *PostgresRepository) GetService(ctx context.Context, id string) (*model.ServiceRecord, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+serviceColumns+` FROM services WHERE id = $1`, id)

	rec, err := scanService(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get service: %w", err)
	}
	return &rec, nil
}

// UpdateService обновляет услугу целиком, кроме статуса жизненного цикла.
func (r *PostgresRepository) UpdateService(ctx context.Context, rec model.ServiceRecord) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE services SET title = $2, client_name = $3, client_contact = $4,
			start_at = $5, end_at = $6, client_price = $7, deposit = $8,
			supplier_cost = $9, extras_amount = $10, extras_info = $11,
			payment_method = $12, client_payment_status = $13, supplier_payment_status = $14,
			driver_id = $15, supplier_id = $16
		 WHERE id = $1`,
		rec.ID, rec.Title, rec.ClientName, rec.ClientContact, rec.StartAt, rec.EndAt,
		rec.ClientPrice, rec.Deposit, rec.SupplierCost, rec.ExtrasAmount, rec.ExtrasInfo,
		string(rec.PaymentMethod), string(rec.ClientPaymentStatus), string(rec.SupplierPaymentStatus),
		rec.DriverID, rec.SupplierID,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("update service: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateServiceStatus меняет статус жизненного цикла услуги.
func (r *PostgresRepository) UpdateServiceStatus(ctx context.Context, id string, status model.ServiceStatus) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE services SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("update service status: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteService удаляет услугу.
func (r *PostgresRepository) DeleteService(ctx context.Context, id string) error {
	cmdTag, err := r.pool.Exec(ctx, `DELETE FROM services WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete service: %w", err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListServices возвращает услуги, начинающиеся в полуинтервале [from, to).
// Нулевое значение границы снимает ограничение.
func (r *PostgresRepository) ListServices(ctx context.Context, from, to time.Time) ([]model.ServiceRecord, error) {
	var res []model.ServiceRecord

	err := r.withRetry(ctx, func() error {
		rows, err := r.pool.Query(ctx,
			`SELECT `+serviceColumns+`
			 FROM services
			 WHERE ($1::timestamptz IS NULL OR start_at >= $1)
			   AND ($2::timestamptz IS NULL OR start_at < $2)
			 ORDER BY start_at DESC`,
			nullableTime(from), nullableTime(to),
		)
		if err != nil {
			return fmt.Errorf("select services: %w", err)
		}
		defer rows.Close()

		res = res[:0]
		for rows.Next() {
			rec, err := scanService(rows)
			if err != nil {
				return fmt.Errorf("scan service: %w", err)
			}
			res = append(res, rec)
		}

		if err := rows.Err(); err != nil {
			return fmt.Errorf("rows error: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

// ListServicesDue возвращает услуги, чей статус пора продвинуть по времени:
// подтверждённые с наступившим началом и идущие с наступившим окончанием.
func (r *PostgresRepository) ListServicesDue(ctx context.Context, now time.Time) ([]model.ServiceRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+serviceColumns+`
		 FROM services
		 WHERE (status = $1 AND start_at <= $3)
		    OR (status = $2 AND end_at IS NOT NULL AND end_at <= $3)
		 ORDER BY start_at`,
		string(model.ServiceStatusConfirmed), string(model.ServiceStatusInProgress), now,
	)
	if err != nil {
		return nil, fmt.Errorf("select due services: %w", err)
	}
	defer rows.Close()

	var res []model.ServiceRecord
	for rows.Next() {
		rec, err := scanService(rows)
		if err != nil {
			return nil, fmt.Errorf("scan service: %w", err)
		}
		res = append(res, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return res, nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
