package diagnosis

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestInsertError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"patient missing", &pgconn.PgError{Code: "23503", ConstraintName: "problem_list_patient_id_fkey"}, ErrUnknownPatient},
		{"doctor missing", &pgconn.PgError{Code: "23503", ConstraintName: "problem_list_doctor_id_fkey"}, ErrUnknownReference},
		{"hospital missing", fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503", ConstraintName: "problem_list_hospital_id_fkey"}), ErrUnknownReference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, insertError(tt.err), tt.want)
		})
	}
}

func TestInsertError_OtherFailuresPassThrough(t *testing.T) {
	for _, err := range []error{
		&pgconn.PgError{Code: "23514", ConstraintName: "problem_list_severity_check"},
		errors.New("connection reset"),
	} {
		got := insertError(err)
		assert.ErrorIs(t, got, err)
		assert.NotErrorIs(t, got, ErrUnknownPatient)
		assert.NotErrorIs(t, got, ErrUnknownReference)
	}
}
