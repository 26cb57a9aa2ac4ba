package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

type Category struct {
	ID   string `json:"_id"`
	Name string `json:"name"`
}

type Product struct {
	ID         string    `json:"_id"`
	Name       string    `json:"name"`
	Price      Price     `json:"price"`
	Image      string    `json:"image,omitempty"`
	CategoryID string    `json:"categoryId,omitempty"`
	CreatedAt  time.Time `json:"createdAt,omitempty"`
}

// Price acepta el precio como numero o como string numerico.
type Price float64

func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == `""` {
		*p = 0
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("price %q: %w", raw, err)
	}
	*p = Price(v)
	return nil
}

func (p Price) String() string {
	return strconv.FormatFloat(float64(p), 'f', -1, 64)
}
