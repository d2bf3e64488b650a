package middleware

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

type restockPayload struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Batches   int    `json:"batches" validate:"required,gte=1,lte=1000"`
	Notes     string `json:"notes"`
}

func TestProperty_RequiredFieldValidationWorks(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("missing required fields are rejected", prop.ForAll(
		func(includeProductID bool, includeBatches bool) bool {
			reqMap := make(map[string]interface{})

			if includeProductID {
				reqMap["product_id"] = uuid.NewString()
			}
			if includeBatches {
				reqMap["batches"] = 3
			}

			allFieldsPresent := includeProductID && includeBatches

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload restockPayload
			err := DecodeAndValidate(req, &payload)

			if allFieldsPresent {
				return err == nil
			}
			return err != nil
		},
		gen.Bool(),
		gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_ValidationErrorsAreFormatted(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("validation errors include field information", prop.ForAll(
		func() bool {
			reqMap := map[string]interface{}{
				"product_id": "not-a-uuid",
				"batches":    3,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload restockPayload
			err := DecodeAndValidate(req, &payload)
			if err == nil {
				return false
			}

			validationErrors := FormatValidationErrors(err)
			if len(validationErrors) == 0 {
				return false
			}

			for _, ve := range validationErrors {
				if ve.Field == "" || ve.Message == "" {
					return false
				}
			}

			return true
		},
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_BatchRangeValidation(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("batch counts outside the valid range are rejected", prop.ForAll(
		func(batches int) bool {
			reqMap := map[string]interface{}{
				"product_id": uuid.NewString(),
				"batches":    batches,
			}

			reqBody, _ := json.Marshal(reqMap)
			req := httptest.NewRequest("POST", "/test", bytes.NewReader(reqBody))
			req.Header.Set("Content-Type", "application/json")

			var payload restockPayload
			err := DecodeAndValidate(req, &payload)

			if batches >= 1 && batches <= 1000 {
				return err == nil
			}
			return err != nil
		},
		gen.IntRange(-100, 2000),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	req := httptest.NewRequest("POST", "/test", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")

	var payload restockPayload
	if err := DecodeAndValidate(req, &payload); err == nil {
		t.Error("expected decode error for malformed JSON")
	}
}
