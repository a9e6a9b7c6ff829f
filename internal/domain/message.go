package domain

import "time"

// LeftMessage é um recado deixado por um cliente ("deixe sua mensagem").
type LeftMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Contact   string    `json:"contact"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}
