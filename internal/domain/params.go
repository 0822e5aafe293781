package domain

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Params are the model parameters of one run.
type Params struct {
	MosquitoLife int `json:"mosquito_life" validate:"min=1"` // window size in days
	Threshold    int `json:"threshold"`                      // development threshold
	RequiredDD   int `json:"required_dd" validate:"ne=0"`    // degree days per generation
	StartMonth   int `json:"start_month"`                    // active season, exclusive
	EndMonth     int `json:"end_month"`                      // active season, exclusive
}

// Validate rejects parameters the model cannot run with.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidParams, err)
	}
	return nil
}
