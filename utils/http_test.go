package utils

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"lifetracker/services"
)

func TestErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("%w: %q", services.ErrInvalidUser, "x y"), 400},
		{fmt.Errorf("%w: action is required", services.ErrInvalidAction), 400},
		{fmt.Errorf("%w: rows must be > 0", services.ErrInvalidGame), 400},
		{services.ErrInactiveGame, 409},
		{fmt.Errorf("progress: %w", services.ErrNotFound), 404},
		{services.ErrAlreadyExists, 409},
		{services.ErrConcurrentModification, 409},
		{services.Unavailable(errors.New("dial tcp")), 503},
		{errors.New("boom"), 500},
	}
	for _, tc := range cases {
		code, msg := ErrorStatus(tc.err)
		assert.Equal(t, tc.code, code, tc.err.Error())
		assert.NotEmpty(t, msg)
	}

	_, msg := ErrorStatus(services.Unavailable(errors.New("password=hunter2")))
	assert.Equal(t, "store unavailable", msg, "driver details are not leaked")
}

func TestClampAndParse(t *testing.T) {
	assert.Equal(t, 50, ParseIntDefault("", 50))
	assert.Equal(t, 50, ParseIntDefault("abc", 50))
	assert.Equal(t, 7, ParseIntDefault("7", 50))
	assert.Equal(t, 1, ClampInt(-3, 1, 200))
	assert.Equal(t, 200, ClampInt(900, 1, 200))
}
