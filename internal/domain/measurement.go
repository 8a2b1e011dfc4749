package domain

import (
	"database/sql"
	"strconv"
	"time"
)

// TimestampLayout is the display format used by measurement views.
const TimestampLayout = "2006-01-02 15:04:05"

// Measurement domain model (measurements table). The upstream schema was
// renamed at some point, so the consumption number may live in `value`
// or in the legacy `reading` column. Both are loaded as optional fields
// and resolved through Numeric, never per call site.
type Measurement struct {
	ID       int64 `db:"measurement_id"`
	DeviceID int64 `db:"device_id"`

	Value   sql.NullFloat64 `db:"value"`
	Reading sql.NullFloat64 `db:"reading"`

	// Timestamp is assigned by the store at creation and immutable.
	Timestamp time.Time `db:"timestamp"`

	// DeviceName is populated by the join in list queries.
	DeviceName string `db:"device_name"`

	Base
}

// Numeric resolves the measurement value through the ordered alias
// fallback: value, then reading. ok is false when neither is present.
func (m *Measurement) Numeric() (float64, bool) {
	if m.Value.Valid {
		return m.Value.Float64, true
	}
	if m.Reading.Valid {
		return m.Reading.Float64, true
	}
	return 0, false
}

// MeasurementView is the flattened record handed to presentation. Field
// names match what the dashboard templates historically expected.
type MeasurementView struct {
	FechaHora   string `json:"fecha_hora"`
	Valor       string `json:"valor"`
	Dispositivo string `json:"dispositivo"`
	DeviceID    int64  `json:"device_id"`
}

// View flattens the measurement: formatted capture timestamp, value with
// alias fallback (empty string when genuinely absent), device name + id.
func (m *Measurement) View() MeasurementView {
	v := MeasurementView{
		Dispositivo: m.DeviceName,
		DeviceID:    m.DeviceID,
	}
	if !m.Timestamp.IsZero() {
		v.FechaHora = m.Timestamp.Format(TimestampLayout)
	}
	if n, ok := m.Numeric(); ok {
		v.Valor = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return v
}
