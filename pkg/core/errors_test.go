package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     Kind
		msg      string
	}{
		{
			name:     "invalid argument",
			err:      Errorf(KindInvalidArgument, "Missing %s argument", "query"),
			sentinel: ErrInvalidArgument,
			kind:     KindInvalidArgument,
			msg:      "Missing query argument",
		},
		{
			name:     "rejected query",
			err:      Errorf(KindRejectedQuery, "Only SELECT queries are allowed"),
			sentinel: ErrRejectedQuery,
			kind:     KindRejectedQuery,
			msg:      "Only SELECT queries are allowed",
		},
		{
			name:     "wrapped execution failure",
			err:      Wrap(KindQueryExecutionFailed, errors.New("syntax error at or near \"FORM\""), "query failed"),
			sentinel: ErrQueryExecutionFailed,
			kind:     KindQueryExecutionFailed,
			msg:      `query failed: syntax error at or near "FORM"`,
		},
		{
			name:     "fmt wrapped data unavailable",
			err:      fmt.Errorf("list tables: %w", Errorf(KindDataUnavailable, "database connection not established")),
			sentinel: ErrDataUnavailable,
			kind:     KindDataUnavailable,
			msg:      "list tables: database connection not established",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(tt.err))
			assert.Equal(t, tt.msg, tt.err.Error())
		})
	}
}

func TestErrorIs_DifferentKind(t *testing.T) {
	err := Errorf(KindRejectedQuery, "nope")
	assert.NotErrorIs(t, err, ErrInvalidArgument)
	assert.NotErrorIs(t, err, ErrDataUnavailable)
}

func TestWrap_KeepsInnerKind(t *testing.T) {
	inner := Errorf(KindDataUnavailable, "connection refused")
	err := Wrap(KindQueryExecutionFailed, inner, "Query execution failed")

	assert.Equal(t, KindDataUnavailable, KindOf(err))
	assert.Nil(t, Wrap(KindQueryExecutionFailed, nil, "unused"))
}

func TestKindOf_Unclassified(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, "unknown", KindUnknown.String())
	assert.Equal(t, "data_unavailable", KindDataUnavailable.String())
}
