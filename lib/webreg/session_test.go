package webreg

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOwnedSession(t *testing.T) {
	s := NewOwnedSession("cookie", "FA23")
	require.Equal(t, "cookie", s.Credential())
	require.Equal(t, "FA23", s.Term())
	require.True(t, s.Valid())

	s.setValid(false)
	require.False(t, s.Valid())

	// a fresh credential clears the invalid mark
	s.SetCredential("cookie2")
	require.True(t, s.Valid())

	s.SetTerm("WI24")
	require.Equal(t, "WI24", s.Term())

	require.EqualValues(t, 1, s.NextRequest())
	require.EqualValues(t, 2, s.NextRequest())
}

func TestSharedSessionCredentialRotation(t *testing.T) {
	s := NewSharedSession("cookie", "FA23")
	s.setValid(false)
	s.SetCredential("cookie2")
	require.True(t, s.Valid())
	require.Equal(t, "cookie2", s.Credential())
}

func TestSharedSessionConcurrentUse(t *testing.T) {
	s := NewSharedSession("cookie", "FA23")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.SetCredential(fmt.Sprintf("cookie-%d-%d", i, j))
				_ = s.Credential()
				_ = s.Term()
				s.NextRequest()
				s.setValid(j%2 == 0)
				_ = s.Valid()
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 800, s.NextRequest()-1)
}
