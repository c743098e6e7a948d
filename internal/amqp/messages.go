package amqp

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"salarycalc/internal/core"
)

// ExportMessage asks the worker to export the entries matching a filter.
// The worker re-runs the query, so only the filter travels on the queue.
type ExportMessage struct {
	ID         string    `json:"id"`
	Country    string    `json:"country,omitempty"`
	Language   string    `json:"language,omitempty"`
	Experience string    `json:"experience,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewExportMessage(f core.Filter) *ExportMessage {
	return &ExportMessage{
		ID:         newExportID(),
		Country:    f.Country,
		Language:   f.Language,
		Experience: f.Experience,
		Timestamp:  time.Now(),
	}
}

func (m *ExportMessage) Filter() core.Filter {
	return core.Filter{Country: m.Country, Language: m.Language, Experience: m.Experience}
}

func (m *ExportMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ExportMessageFromJSON(data []byte) (*ExportMessage, error) {
	var msg ExportMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.ID == "" {
		return nil, fmt.Errorf("export message without id")
	}
	return &msg, nil
}

func newExportID() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("exp_%d", time.Now().UnixNano())
	}
	return "exp_" + hex.EncodeToString(b)
}
