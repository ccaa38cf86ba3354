package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "disabled", cfg: Config{}},
		{name: "plaintext", cfg: Config{Enabled: true, Endpoint: "localhost:4317"}},
		{name: "tls without verification", cfg: Config{Enabled: true, Endpoint: "localhost:4317", TLSInsecure: true}},
		{name: "missing endpoint", cfg: Config{Enabled: true}, wantErr: true},
		{name: "missing CA file", cfg: Config{Enabled: true, Endpoint: "localhost:4317", TLSCAPath: "/does/not/exist.pem"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.cfg.Enabled, p.Enabled())
			assert.NotNil(t, p.Tracer("test"))
			assert.NoError(t, p.Stop(context.Background()))
		})
	}
}

func TestNewProvider_InvalidCA(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, []byte("not a certificate"), 0o600))

	_, err := NewProvider(Config{Enabled: true, Endpoint: "localhost:4317", TLSCAPath: path})
	assert.ErrorContains(t, err, "no certificates")
}

func TestDisabledProvider_SpansAreNotRecorded(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)

	_, span := p.Tracer("test").Start(context.Background(), "op")
	defer span.End()
	assert.False(t, span.IsRecording())
	assert.Equal(t, "tracing", p.Name())
}
