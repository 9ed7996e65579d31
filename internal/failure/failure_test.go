package failure

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap_Nil(t *testing.T) {
	assert.NoError(t, Wrap(KindAPI, nil))
}

func TestKindOf_Tagged(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"parse", Wrap(KindParse, errors.New("no coordinates")), KindParse},
		{"network", Wrap(KindNetwork, errors.New("dial")), KindNetwork},
		{"http status", HTTPStatus(errors.New("status 403"), 403), KindAPI},
		{"api status", APIStatus(errors.New("REQUEST_DENIED"), "REQUEST_DENIED"), KindAPI},
		{"no results", Wrap(KindNoResults, errors.New("empty")), KindNoResults},
		{"database", Wrap(KindDatabase, errors.New("boom")), KindDatabase},
		{"plain", errors.New("plain"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestKindOf_SurvivesErisWrap(t *testing.T) {
	inner := HTTPStatus(errors.New("geocode: returned status 500"), 500)
	wrapped := eris.Wrap(inner, "pipeline: geocode")

	assert.Equal(t, KindAPI, KindOf(wrapped))

	var fe *Error
	require.True(t, errors.As(wrapped, &fe))
	assert.Equal(t, 500, fe.StatusCode)
}

func TestKindOf_UntaggedNetwork(t *testing.T) {
	err := fmt.Errorf("dial tcp: %w", syscall.ECONNREFUSED)
	assert.Equal(t, KindNetwork, KindOf(err))
}

func TestIsNetwork(t *testing.T) {
	assert.True(t, IsNetwork(&net.DNSError{Err: "no such host", Name: "maps.googleapis.com"}))
	assert.True(t, IsNetwork(fmt.Errorf("write: %w", syscall.ECONNRESET)))
	assert.True(t, IsNetwork(errors.New("net/http: TLS handshake timeout")))
	assert.False(t, IsNetwork(errors.New("invalid input")))
	assert.False(t, IsNetwork(nil))
}

func TestIsDuplicate(t *testing.T) {
	err := Wrap(KindDatabase, eris.Wrap(ErrDuplicatePlace, "store: insert"))
	assert.True(t, IsDuplicate(err))
	assert.True(t, Is(err, KindDatabase))
	assert.False(t, IsDuplicate(Wrap(KindDatabase, errors.New("syntax error"))))
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ok", nil, ExitOK},
		{"parse", Wrap(KindParse, errors.New("x")), ExitParse},
		{"network", Wrap(KindNetwork, errors.New("x")), ExitNetwork},
		{"api", HTTPStatus(errors.New("x"), 502), ExitAPI},
		{"no results", Wrap(KindNoResults, errors.New("x")), ExitNoResults},
		{"database", Wrap(KindDatabase, errors.New("x")), ExitDatabase},
		{"duplicate", Wrap(KindDatabase, eris.Wrap(ErrDuplicatePlace, "insert")), ExitDuplicate},
		{"unknown", errors.New("flag needs an argument"), ExitUsage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "parse failure", KindParse.String())
	assert.Equal(t, "database error", KindDatabase.String())
	assert.Equal(t, "unknown error", Kind(99).String())
}

func TestError_Message(t *testing.T) {
	err := HTTPStatus(errors.New("geocode: returned status 403"), 403)
	assert.Equal(t, "geocode: returned status 403", err.Error())
}
