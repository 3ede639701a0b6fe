package ports

import "time"

// Clock fuente de tiempo para recorded_at y para "movimientos de hoy".
type Clock interface {
	Now() time.Time
	// Location zona horaria de reporte.
	Location() *time.Location
}

// SystemClock reloj del sistema en la zona horaria de reporte indicada.
type SystemClock struct {
	Loc *time.Location
}

// Now devuelve la hora actual en la zona de reporte.
func (c SystemClock) Now() time.Time {
	return time.Now().In(c.Location())
}

// Location devuelve la zona de reporte (time.Local si no se configuró).
func (c SystemClock) Location() *time.Location {
	if c.Loc == nil {
		return time.Local
	}
	return c.Loc
}
