package domainerrors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorText() {
	s.Equal("Room not found", New(CodeNotFound, "Room not found").Error())
	s.Equal("unavailable", (&Error{Code: CodeUnavailable}).Error(), "code stands in for a missing message")
}

func (s *DomainErrorsSuite) TestIsComparesCodesOnly() {
	apiMiss := fmt.Errorf("load clinic 4: %w", New(CodeNotFound, "Clinic not found"))

	s.ErrorIs(apiMiss, &Error{Code: CodeNotFound})
	s.NotErrorIs(apiMiss, &Error{Code: CodeUnavailable})
	s.False((&Error{Code: CodeNotFound}).Is(errors.New("not_found")))
}

func (s *DomainErrorsSuite) TestWrapKeepsTheFirstCode() {
	s.Run("domain cause", func() {
		err := Wrap(New(CodeUnauthorized, "token expired"), CodeInternal, "could not load bookings")
		s.Equal(CodeUnauthorized, CodeOf(err))
		s.Equal("could not load bookings", err.Error())
	})

	s.Run("plain cause", func() {
		cause := context.DeadlineExceeded
		err := Wrap(cause, CodeTimeout, "")
		s.Equal(CodeTimeout, CodeOf(err))
		s.ErrorIs(err, context.DeadlineExceeded)
		s.Equal(cause, errors.Unwrap(err))
	})
}

func (s *DomainErrorsSuite) TestHasCode() {
	wrapped := fmt.Errorf("page: %w", Wrap(New(CodeConflict, "email taken"), CodeInternal, "register"))

	s.True(HasCode(wrapped, CodeConflict))
	s.False(HasCode(wrapped, CodeInternal))
	s.False(HasCode(errors.New("conflict"), CodeConflict))
	s.False(HasCode(nil, CodeConflict))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeTimeout, CodeOf(New(CodeTimeout, "slow")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.Equal(t, CodeInternal, CodeOf(nil))
}

func TestMessage(t *testing.T) {
	tests := map[string]struct {
		err  error
		want string
	}{
		"nil":                   {nil, ""},
		"api message":           {New(CodeValidation, "Guests must be at least 1"), "Guests must be at least 1"},
		"blank api message":     {&Error{Code: CodeUnavailable, Message: "  "}, DefaultMessage},
		"wrapped api message":   {fmt.Errorf("fetch: %w", New(CodeNotFound, "Room not found")), "Room not found"},
		"plain error":           {errors.New("dial tcp: connection refused"), "dial tcp: connection refused"},
		"empty plain error":     {errors.New(""), DefaultMessage},
		"outer message wins":    {Wrap(New(CodeNotFound, "inner"), CodeInternal, "outer"), "outer"},
		"outer blank uses base": {Wrap(New(CodeNotFound, "inner"), CodeInternal, ""), DefaultMessage},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Message(tc.err, DefaultMessage))
		})
	}
}
