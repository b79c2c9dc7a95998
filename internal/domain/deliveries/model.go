package deliveries

import (
	"encoding/json"
	"time"
)

// Delivery es una entrega de webhook tal como se persiste en el log
// append-only. Inmutable una vez escrita.
type Delivery struct {
	DeliveryID string
	EventType  string
	Action     string
	Repository string
	PRNumber   int    // 0 cuando la entrega no referencia un PR
	HeadSHA    string // solo check_run / status; es la clave de correlación
	Payload    json.RawMessage
	OccurredAt time.Time
	ReceivedAt time.Time
}
