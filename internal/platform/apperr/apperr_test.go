package apperr

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestKinds(t *testing.T) {
	err := NotFoundf("product %s not found", "abc")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "product abc not found", err.Error())

	wrapped := fmt.Errorf("load: %w", Invalidf("bad"))
	assert.True(t, errors.Is(wrapped, ErrInvalid))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
}

func TestFromDB(t *testing.T) {
	assert.Nil(t, FromDB(nil, "order"))

	err := FromDB(sql.ErrNoRows, "order")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "order not found", err.Error())

	err = FromDB(&pq.Error{Code: "23505"}, "category")
	assert.True(t, errors.Is(err, ErrConflict))

	err = FromDB(fmt.Errorf("insert: %w", &pq.Error{Code: "23503"}), "product")
	assert.True(t, errors.Is(err, ErrInvalid))

	err = FromDB(&pq.Error{Code: "23514", Constraint: "stock_non_negative"}, "product")
	assert.True(t, errors.Is(err, ErrUnprocessable))

	other := errors.New("connection reset")
	assert.Equal(t, other, FromDB(other, "product"))
}
