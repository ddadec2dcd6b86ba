package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/go-playground/validator/v10"

	service "github.com/okian/mapty/internal/app"
	"github.com/okian/mapty/internal/domain/workout"
)

const maxBodyBytes = 16 << 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// formValue is a raw form field. Pages send strings; scripted clients may
// send JSON numbers, which are kept in their literal form.
type formValue string

func (v *formValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*v = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = formValue(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(b), 64); err != nil {
		return fmt.Errorf("form value %s: %w", b, ErrBadRequest)
	}
	*v = formValue(b)
	return nil
}

// workoutRequest mirrors the OpenAPI schema for POST /workouts.
type workoutRequest struct {
	Type          string    `json:"type" validate:"max=32"`
	Distance      formValue `json:"distance" validate:"max=64"`
	Duration      formValue `json:"duration" validate:"max=64"`
	Cadence       formValue `json:"cadence" validate:"max=64"`
	ElevationGain formValue `json:"elevationGain" validate:"max=64"`
}

func (req workoutRequest) input() service.FormInput {
	return service.FormInput{
		Type:          req.Type,
		Distance:      string(req.Distance),
		Duration:      string(req.Duration),
		Cadence:       string(req.Cadence),
		ElevationGain: string(req.ElevationGain),
	}
}

// positionRequest mirrors the OpenAPI schema for POST /map/click and
// POST /geolocation.
type positionRequest struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lng *float64 `json:"lng" validate:"required,gte=-180,lte=180"`
}

func (req positionRequest) coords() workout.Coords {
	return workout.Coords{*req.Lat, *req.Lng}
}

// positionErrorRequest mirrors the OpenAPI schema for POST /geolocation/error.
type positionErrorRequest struct {
	Reason string `json:"reason" validate:"max=256"`
}

// decode reads a JSON body into dst and validates it.
func decode(r *http.Request, dst any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("read body: %w", ErrBadRequest)
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", ErrBadRequest)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrBadRequest, err.Error())
	}
	return nil
}
