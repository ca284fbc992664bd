package client

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBearer_Metadata(t *testing.T) {
	b := bearer{token: "T", secure: true}
	md, err := b.GetRequestMetadata(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer T", md["authorization"])
	require.True(t, b.RequireTransportSecurity())
	require.False(t, bearer{token: "T"}.RequireTransportSecurity())
}

func TestTransportCreds_Variants(t *testing.T) {
	creds, err := transportCreds(DialOptions{Plaintext: true})
	require.NoError(t, err)
	require.Equal(t, "insecure", creds.Info().SecurityProtocol)

	creds, err = transportCreds(DialOptions{Insecure: true})
	require.NoError(t, err)
	require.Equal(t, "tls", creds.Info().SecurityProtocol)

	_, err = transportCreds(DialOptions{})
	require.NoError(t, err)

	bad := filepath.Join(t.TempDir(), "bad.pem")
	require.NoError(t, os.WriteFile(bad, []byte("not pem"), 0o600))
	_, err = transportCreds(DialOptions{CACert: bad})
	require.Error(t, err)

	_, err = transportCreds(DialOptions{CACert: filepath.Join(t.TempDir(), "missing.pem")})
	require.Error(t, err)
}

func TestDial_Lazy(t *testing.T) {
	cc, err := Dial(DialOptions{Addr: "localhost:1", Plaintext: true})
	require.NoError(t, err)
	require.NoError(t, cc.Close())
}
