package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are the core error primitives used at every trust boundary. Unit tests
// ensure invariants like "wrapped domain errors preserve original code" and
// "errors.Is matches by code" are maintained.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeUnauthenticated, Message: "no credentials"}
		s.Equal("no credentials", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeTransient}
		s.Equal("transient_failure", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	inner := errors.New("connection reset")
	err := Wrap(inner, CodeTransient, "identity endpoint unreachable")
	s.ErrorIs(err, inner)
}

func (s *DomainErrorsSuite) TestWrapPreservesDomainCode() {
	original := New(CodeUnauthenticated, "token rejected")
	wrapped := Wrap(original, CodeInternal, "resolve failed")

	s.True(HasCode(wrapped, CodeUnauthenticated))
	s.False(HasCode(wrapped, CodeInternal))
	s.Equal("resolve failed", wrapped.Error())
}

func (s *DomainErrorsSuite) TestWrapNonDomainError() {
	err := Wrap(fmt.Errorf("dial tcp: timeout"), CodeTransient, "backend call failed")
	s.True(HasCode(err, CodeTransient))
}

func (s *DomainErrorsSuite) TestIsMatchesByCode() {
	err := New(CodeRefreshFailed, "refresh endpoint returned 400")
	s.True(errors.Is(err, &Error{Code: CodeRefreshFailed}))
	s.False(errors.Is(err, &Error{Code: CodeNoRefreshToken}))
}

func (s *DomainErrorsSuite) TestHasCodeThroughChain() {
	err := fmt.Errorf("outer: %w", New(CodeStorageUnavailable, "cookie write failed"))
	s.True(HasCode(err, CodeStorageUnavailable))
	s.False(HasCode(err, CodeValidation))
	s.False(HasCode(errors.New("plain"), CodeStorageUnavailable))
}

func (s *DomainErrorsSuite) TestCodeOf() {
	s.Equal(CodeNoRefreshToken, CodeOf(New(CodeNoRefreshToken, "")))
	s.Equal(CodeInternal, CodeOf(errors.New("plain")))
}
