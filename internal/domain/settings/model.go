package settings

import "github.com/google/uuid"

// Settings — складские настройки организации.
// EnableFEFO переключает автоподбор партий с FIFO на FEFO.
type Settings struct {
	OrgID      uuid.UUID
	EnableFEFO bool
}
