package postgres

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// errRow is a pgx.Row whose Scan always fails with the given error.
type errRow struct {
	err error
}

func (r errRow) Scan(dest ...any) error { return r.err }

func TestScanTreatsNoRowsAsAbsence(t *testing.T) {
	story, err := scanStory(errRow{err: pgx.ErrNoRows})
	require.NoError(t, err)
	assert.Nil(t, story)

	user, err := scanUser(errRow{err: pgx.ErrNoRows})
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestScanWrapsFailuresOnce(t *testing.T) {
	cause := errors.New("connection reset")

	_, err := scanStory(errRow{err: cause})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, strings.Count(err.Error(), "failed to"),
		"scan errors carry exactly one layer of context: %q", err.Error())

	_, err = scanUser(errRow{err: cause})
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, strings.Count(err.Error(), "failed to"),
		"scan errors carry exactly one layer of context: %q", err.Error())
}
