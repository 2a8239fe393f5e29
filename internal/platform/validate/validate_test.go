package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SlpAus/quiz-share-backend/internal/platform/apperr"
)

type sample struct {
	Name   string `validate:"required"`
	Letter string `validate:"omitempty,oneof=A B C D"`
	ID     int    `validate:"required"`
}

func TestStruct(t *testing.T) {
	testCases := []struct {
		name    string
		in      sample
		wantMsg string
	}{
		{name: "ok", in: sample{Name: "x", ID: 1}},
		{name: "missing string", in: sample{ID: 1}, wantMsg: "Missing fields"},
		{name: "zero int counts as missing", in: sample{Name: "x"}, wantMsg: "Missing fields"},
		{name: "bad enum", in: sample{Name: "x", ID: 1, Letter: "E"}, wantMsg: "Invalid fields"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := Struct(tc.in, "Missing fields")
			if tc.wantMsg == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *apperr.Error
			if assert.ErrorAs(t, err, &appErr) {
				assert.Equal(t, apperr.Validation, appErr.Kind)
				assert.Equal(t, tc.wantMsg, appErr.Msg)
			}
		})
	}
}
