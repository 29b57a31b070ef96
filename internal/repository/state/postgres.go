package state

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver.

	domain "github.com/oshokin/catpoint/internal/domain/alarm"
)

// schema creates the tables if they don't exist and seeds the single status row.
const schema = `
CREATE TABLE IF NOT EXISTS catpoint_status (
	id            SMALLINT PRIMARY KEY CHECK (id = 1),
	alarm_status  TEXT NOT NULL,
	arming_status TEXT NOT NULL,
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

INSERT INTO catpoint_status (id, alarm_status, arming_status)
VALUES (1, 'NO_ALARM', 'DISARMED')
ON CONFLICT (id) DO NOTHING;

CREATE TABLE IF NOT EXISTS catpoint_sensors (
	name        TEXT NOT NULL,
	sensor_type TEXT NOT NULL,
	active      BOOLEAN NOT NULL DEFAULT FALSE,
	PRIMARY KEY (name, sensor_type)
);
`

const (
	selectAlarmStatusQuery  = `SELECT alarm_status FROM catpoint_status WHERE id = 1`
	selectArmingStatusQuery = `SELECT arming_status FROM catpoint_status WHERE id = 1`
	updateAlarmStatusQuery  = `UPDATE catpoint_status SET alarm_status = $1, updated_at = now() WHERE id = 1`
	updateArmingStatusQuery = `UPDATE catpoint_status SET arming_status = $1, updated_at = now() WHERE id = 1`
	selectSensorsQuery      = `SELECT name, sensor_type, active FROM catpoint_sensors ORDER BY name, sensor_type`
	insertSensorQuery       = `INSERT INTO catpoint_sensors (name, sensor_type, active) VALUES ($1, $2, $3)
ON CONFLICT (name, sensor_type) DO NOTHING`
	upsertSensorQuery = `INSERT INTO catpoint_sensors (name, sensor_type, active) VALUES ($1, $2, $3)
ON CONFLICT (name, sensor_type) DO UPDATE SET active = EXCLUDED.active`
	deleteSensorQuery = `DELETE FROM catpoint_sensors WHERE name = $1 AND sensor_type = $2`
)

// PostgresRepository stores the state in PostgreSQL.
type PostgresRepository struct {
	// db is the connection pool.
	db *sql.DB
}

// NewPostgresRepository opens a connection pool and verifies it with a ping.
func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

// Init creates the required tables if they don't exist.
func (r *PostgresRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}

	return nil
}

// Close closes the connection pool.
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

// AlarmStatus returns the current alarm status.
func (r *PostgresRepository) AlarmStatus(ctx context.Context) (domain.AlarmStatus, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, selectAlarmStatusQuery).Scan(&value); err != nil {
		return domain.NoAlarm, fmt.Errorf("select alarm status: %w", err)
	}

	return domain.ParseAlarmStatus(value)
}

// SetAlarmStatus stores the alarm status.
func (r *PostgresRepository) SetAlarmStatus(ctx context.Context, status domain.AlarmStatus) error {
	if _, err := r.db.ExecContext(ctx, updateAlarmStatusQuery, status.String()); err != nil {
		return fmt.Errorf("update alarm status: %w", err)
	}

	return nil
}

// ArmingStatus returns the current arming status.
func (r *PostgresRepository) ArmingStatus(ctx context.Context) (domain.ArmingStatus, error) {
	var value string
	if err := r.db.QueryRowContext(ctx, selectArmingStatusQuery).Scan(&value); err != nil {
		return domain.Disarmed, fmt.Errorf("select arming status: %w", err)
	}

	return domain.ParseArmingStatus(value)
}

// SetArmingStatus stores the arming status.
func (r *PostgresRepository) SetArmingStatus(ctx context.Context, status domain.ArmingStatus) error {
	if _, err := r.db.ExecContext(ctx, updateArmingStatusQuery, status.String()); err != nil {
		return fmt.Errorf("update arming status: %w", err)
	}

	return nil
}

// Sensors returns the stored sensors ordered by name and type.
func (r *PostgresRepository) Sensors(ctx context.Context) ([]domain.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, selectSensorsQuery)
	if err != nil {
		return nil, fmt.Errorf("select sensors: %w", err)
	}

	defer func() {
		_ = rows.Close()
	}()

	var sensors []domain.Sensor

	for rows.Next() {
		var (
			sensor     domain.Sensor
			sensorType string
		)

		if err = rows.Scan(&sensor.Name, &sensorType, &sensor.Active); err != nil {
			return nil, fmt.Errorf("scan sensor: %w", err)
		}

		if sensor.Type, err = domain.ParseSensorType(sensorType); err != nil {
			return nil, err
		}

		sensors = append(sensors, sensor)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensors: %w", err)
	}

	// Enum order differs from the lexical order of the type column.
	domain.SortSensors(sensors)

	return sensors, nil
}

// AddSensor inserts the sensor unless it is already present.
func (r *PostgresRepository) AddSensor(ctx context.Context, sensor domain.Sensor) error {
	if _, err := r.db.ExecContext(ctx, insertSensorQuery, sensor.Name, sensor.Type.String(), sensor.Active); err != nil {
		return fmt.Errorf("insert sensor: %w", err)
	}

	return nil
}

// RemoveSensor deletes the sensor.
func (r *PostgresRepository) RemoveSensor(ctx context.Context, sensor domain.Sensor) error {
	if _, err := r.db.ExecContext(ctx, deleteSensorQuery, sensor.Name, sensor.Type.String()); err != nil {
		return fmt.Errorf("delete sensor: %w", err)
	}

	return nil
}

// UpdateSensor upserts the sensor.
func (r *PostgresRepository) UpdateSensor(ctx context.Context, sensor domain.Sensor) error {
	if _, err := r.db.ExecContext(ctx, upsertSensorQuery, sensor.Name, sensor.Type.String(), sensor.Active); err != nil {
		return fmt.Errorf("upsert sensor: %w", err)
	}

	return nil
}
