package workload

import (
	"fmt"
	"math"

	"github.com/me/lottsched/pkg/model"
)

// Validate checks a workload for semantic errors.
// Returns nil if valid, or an *model.APIError with FieldError details.
func Validate(w *Workload) *model.APIError {
	var errs []model.FieldError

	if w.Name == "" {
		errs = append(errs, model.FieldError{Field: "name", Message: "name is required"})
	}
	if w.Quanta <= 0 {
		errs = append(errs, model.FieldError{Field: "quanta", Message: "quanta must be > 0"})
	}
	if len(w.Units) == 0 {
		errs = append(errs, model.FieldError{Field: "units", Message: "at least one unit is required"})
	}
	errs = append(errs, validateUnits(w)...)

	if len(errs) == 0 {
		return nil
	}
	return model.NewValidationError("workload validation failed", errs...)
}

func validateUnits(w *Workload) []model.FieldError {
	var errs []model.FieldError
	seen := make(map[string]bool, len(w.Units))
	total := 0

	for i, u := range w.Units {
		field := func(name string) string {
			return fmt.Sprintf("units[%d].%s", i, name)
		}

		switch {
		case u.Name == "":
			errs = append(errs, model.FieldError{Field: field("name"), Message: "name is required"})
		case seen[u.Name]:
			errs = append(errs, model.FieldError{Field: field("name"), Message: fmt.Sprintf("duplicate unit name %q", u.Name)})
		}
		seen[u.Name] = true

		switch {
		case u.Tickets < 0:
			errs = append(errs, model.FieldError{Field: field("tickets"), Message: "tickets must be >= 0"})
		case u.Tickets > math.MaxInt-total:
			errs = append(errs, model.FieldError{Field: field("tickets"), Message: fmt.Sprintf("total tickets must not exceed %d", math.MaxInt)})
		default:
			total += u.Tickets
		}
		if u.Work < 0 {
			errs = append(errs, model.FieldError{Field: field("work"), Message: "work must be >= 0"})
		}
		if u.Arrive < 0 || (w.Quanta > 0 && u.Arrive >= w.Quanta) {
			errs = append(errs, model.FieldError{Field: field("arrive"), Message: "arrive must fall within [0, quanta)"})
		}
		if u.BlockChance < 0 || u.BlockChance > 1 {
			errs = append(errs, model.FieldError{Field: field("block_chance"), Message: "block_chance must be within [0, 1]"})
		}
		if u.WakeChance < 0 || u.WakeChance > 1 {
			errs = append(errs, model.FieldError{Field: field("wake_chance"), Message: "wake_chance must be within [0, 1]"})
		}
		if u.BlockChance > 0 && u.WakeChance == 0 {
			errs = append(errs, model.FieldError{Field: field("wake_chance"), Message: "a unit that blocks needs wake_chance > 0"})
		}
	}

	for i, u := range w.Units {
		if u.WaitsOn == "" {
			continue
		}
		field := fmt.Sprintf("units[%d].waits_on", i)
		switch {
		case u.WaitsOn == u.Name:
			errs = append(errs, model.FieldError{Field: field, Message: "a unit cannot wait on itself"})
		case !hasUnit(w, u.WaitsOn):
			errs = append(errs, model.FieldError{Field: field, Message: fmt.Sprintf("unknown unit %q", u.WaitsOn)})
		}
	}
	return errs
}

func hasUnit(w *Workload, name string) bool {
	_, ok := w.Unit(name)
	return ok
}
