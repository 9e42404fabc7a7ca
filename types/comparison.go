package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/Hamza-spc/CountryCompare/errors"
)

// Comparison is a persisted comparison between two countries.
type Comparison struct {
	ID           string          `json:"id"`
	Country1Name string          `json:"country1_name"`
	Country2Name string          `json:"country2_name"`
	Data         json.RawMessage `json:"comparison_data"`
	CreatedAt    time.Time       `json:"created_at"`
}

// NewComparison stores data as JSON under a fresh random ID.
func NewComparison(country1, country2 string, data any, createdAt time.Time) (Comparison, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Comparison{}, errors.WrapInvalid(err, "Comparison", "NewComparison", "marshal comparison data")
	}
	return Comparison{
		ID:           uuid.NewString(),
		Country1Name: country1,
		Country2Name: country2,
		Data:         raw,
		CreatedAt:    createdAt.UTC(),
	}, nil
}

// Validate checks the identifying fields.
func (c Comparison) Validate() error {
	if _, err := uuid.Parse(c.ID); err != nil {
		return errors.WrapInvalid(err, "Comparison", "Validate", "invalid id")
	}
	if c.Country1Name == "" || c.Country2Name == "" {
		return errors.WrapInvalid(errors.ErrInvalidData, "Comparison", "Validate", "both country names are required")
	}
	return nil
}
