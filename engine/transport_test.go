package engine

import (
	"errors"
	"testing"

	tls "github.com/refraction-networking/utls"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildChromeH1Spec(t *testing.T) {
	spec, err := buildChromeH1Spec()
	require.NoError(t, err)

	var protocols []string
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			protocols = alpn.AlpnProtocols
		}
	}
	assert.Equal(t, []string{"http/1.1"}, protocols)
}

func TestChromeTransport(t *testing.T) {
	tr := chromeTransport(buildChromeH1Spec)
	assert.NotNil(t, tr.DialTLSContext)
	assert.Equal(t, 4, tr.MaxIdleConnsPerHost)
}

func TestChromeTransport_FallsBackWithoutSpec(t *testing.T) {
	tr := chromeTransport(func() (*tls.ClientHelloSpec, error) {
		return nil, errors.New("unsupported hello")
	})
	assert.Nil(t, tr.DialTLSContext, "default TLS dialing must stay in place")
	assert.NotNil(t, tr.Proxy)
}
