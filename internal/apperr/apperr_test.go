package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{NotFoundf("user %d", 7), http.StatusNotFound, "not_found"},
		{Validationf("bad input"), http.StatusBadRequest, "validation_failed"},
		{AttemptLimitf("max attempts reached (%d)", 3), http.StatusUnprocessableEntity, "attempt_limit_exceeded"},
		{Conflictf("racing writers"), http.StatusConflict, "conflict"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.status, Status(tc.err), tc.err.Error())
		assert.Equal(t, tc.code, Code(tc.err), tc.err.Error())
	}
	assert.Equal(t, http.StatusOK, Status(nil))
}

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("submitting test: %w", AttemptLimitf("max attempts reached (%d)", 2))
	assert.True(t, errors.Is(err, ErrAttemptLimit))
	assert.Equal(t, http.StatusUnprocessableEntity, Status(err))
}
