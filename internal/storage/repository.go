package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"asociados/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// SQLiteRepository persists the member roster, the contractor directory and
// the append-only movement log. The movimientos table has no update or delete
// path: the liquidation engine replays it as-is.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// CreateMember inserts the member and returns its id.
func (r *SQLiteRepository) CreateMember(ctx context.Context, m core.Member) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO asociados
			(nombre, apellido, documento, legajo, fecha_alta, contratista_id, contratista_nombre, activo, monotributo)
		VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)`,
		m.Nombre, m.Apellido, m.Documento, m.Legajo,
		m.FechaAlta.Format(dateLayout),
		m.Contratista.ID, m.Contratista.Nombre,
		boolToInt(m.Monotributo),
	)
	if err != nil {
		return 0, fmt.Errorf("create member: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("member id: %w", err)
	}

	slog.InfoContext(ctx, "Member saved",
		"id", id,
		"documento", m.Documento,
		"contratista", m.Contratista.Nombre)
	return id, nil
}

func (r *SQLiteRepository) GetMember(ctx context.Context, id int64) (core.Member, error) {
	row := r.db.QueryRowContext(ctx, memberSelect+` WHERE id = ?`, id)
	m, err := scanMember(row)
	if err != nil {
		return core.Member{}, fmt.Errorf("get member %d: %w", id, err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListMembers(ctx context.Context) ([]core.Member, error) {
	rows, err := r.db.QueryContext(ctx, memberSelect+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []core.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeactivateMember flips the active flag and records the departure fields on
// the member row. The matching baja event goes through AppendMovement.
func (r *SQLiteRepository) DeactivateMember(ctx context.Context, id int64, fecha core.Date, responsable string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE asociados SET activo = 0, fecha_baja = ?, responsable_baja = ? WHERE id = ?`,
		fecha.Format(dateLayout), responsable, id)
	if err != nil {
		return fmt.Errorf("deactivate member %d: %w", id, err)
	}
	return requireRow(res, id)
}

// UpdateMemberContractor records the member's current contractor after a
// transfer. History lives in the movement log, not here.
func (r *SQLiteRepository) UpdateMemberContractor(ctx context.Context, id int64, c core.Contractor) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE asociados SET contratista_id = ?, contratista_nombre = ? WHERE id = ?`,
		c.ID, c.Nombre, id)
	if err != nil {
		return fmt.Errorf("update member contractor %d: %w", id, err)
	}
	return requireRow(res, id)
}

func (r *SQLiteRepository) CreateContractor(ctx context.Context, c core.Contractor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contratistas (id, nombre) VALUES (?, ?)`, c.ID, c.Nombre)
	if err != nil {
		return fmt.Errorf("create contractor: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) ListContractors(ctx context.Context) ([]core.Contractor, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nombre FROM contratistas ORDER BY nombre`)
	if err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	defer rows.Close()

	var out []core.Contractor
	for rows.Next() {
		var c core.Contractor
		if err := rows.Scan(&c.ID, &c.Nombre); err != nil {
			return nil, fmt.Errorf("scan contractor: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AppendMovement appends one lifecycle event. There is no update or delete
// counterpart on purpose.
func (r *SQLiteRepository) AppendMovement(ctx context.Context, e core.MovementEvent) (int64, error) {
	var fecha any
	if !e.Fecha.IsEmpty() {
		fecha = e.Fecha.Format(dateLayout)
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO movimientos
			(tipo, asociado_id, fecha,
			 contratista_anterior_id, contratista_anterior_nombre,
			 contratista_nuevo_id, contratista_nuevo_nombre,
			 responsable)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(e.Tipo), e.MemberID, fecha,
		e.ContratistaAnterior.ID, e.ContratistaAnterior.Nombre,
		e.ContratistaNuevo.ID, e.ContratistaNuevo.Nombre,
		e.Responsable,
	)
	if err != nil {
		return 0, fmt.Errorf("append movement: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("movement id: %w", err)
	}

	slog.InfoContext(ctx, "Movement appended",
		"id", id,
		"tipo", e.Tipo,
		"asociado_id", e.MemberID)
	return id, nil
}

func (r *SQLiteRepository) ListMovements(ctx context.Context) ([]core.MovementEvent, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, tipo, asociado_id, fecha,
		       contratista_anterior_id, contratista_anterior_nombre,
		       contratista_nuevo_id, contratista_nuevo_nombre,
		       responsable
		FROM movimientos ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var out []core.MovementEvent
	for rows.Next() {
		var (
			e     core.MovementEvent
			tipo  string
			fecha sql.NullString
		)
		if err := rows.Scan(&e.ID, &tipo, &e.MemberID, &fecha,
			&e.ContratistaAnterior.ID, &e.ContratistaAnterior.Nombre,
			&e.ContratistaNuevo.ID, &e.ContratistaNuevo.Nombre,
			&e.Responsable); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		e.Tipo = core.MovementType(tipo)
		if fecha.Valid {
			// Degraded records keep a zero date; the engine handles them.
			e.Fecha, _ = core.ParseDate(fecha.String)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

const memberSelect = `
	SELECT id, nombre, apellido, documento, legajo,
	       fecha_alta, fecha_baja, responsable_baja,
	       contratista_id, contratista_nombre, activo, monotributo
	FROM asociados`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (core.Member, error) {
	var (
		m         core.Member
		fechaAlta string
		fechaBaja sql.NullString
		activo    int
		monotrib  int
	)
	err := row.Scan(&m.ID, &m.Nombre, &m.Apellido, &m.Documento, &m.Legajo,
		&fechaAlta, &fechaBaja, &m.ResponsableBaja,
		&m.Contratista.ID, &m.Contratista.Nombre, &activo, &monotrib)
	if err != nil {
		return core.Member{}, err
	}
	m.FechaAlta, _ = core.ParseDate(fechaAlta)
	if fechaBaja.Valid {
		m.FechaBaja, _ = core.ParseDate(fechaBaja.String)
	}
	m.Activo = activo != 0
	m.Monotributo = monotrib != 0
	return m, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("member %d: %w", id, sql.ErrNoRows)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
