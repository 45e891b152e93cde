package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/asfe/pkg/adapters/alchemiscale"
	"github.com/aretw0/asfe/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolveWith(t *testing.T) {
	tests := []struct {
		name    string
		flags   Flags
		env     map[string]string
		want    Config
		wantErr error
	}{
		{
			name:  "from environment",
			flags: Flags{},
			env:   map[string]string{EnvUserID: "alice", EnvUserKey: "secret"},
			want: Config{
				APIURL:      alchemiscale.DefaultURL,
				Credentials: alchemiscale.Credentials{ID: "alice", Key: "secret"},
			},
		},
		{
			name:  "flags win",
			flags: Flags{UserID: "bob", UserKey: "flagkey", APIURL: "http://localhost:8080", Timeout: time.Minute},
			env:   map[string]string{EnvUserID: "alice", EnvUserKey: "secret", EnvAPIURL: "https://other.example"},
			want: Config{
				APIURL:      "http://localhost:8080",
				Credentials: alchemiscale.Credentials{ID: "bob", Key: "flagkey"},
				Timeout:     time.Minute,
			},
		},
		{
			name:  "mixed sources",
			flags: Flags{UserID: "bob"},
			env:   map[string]string{EnvUserKey: "secret", EnvAPIURL: "https://staging.example"},
			want: Config{
				APIURL:      "https://staging.example",
				Credentials: alchemiscale.Credentials{ID: "bob", Key: "secret"},
			},
		},
		{
			name:    "missing key",
			flags:   Flags{UserID: "bob"},
			env:     map[string]string{},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "missing id",
			env:     map[string]string{EnvUserKey: "secret"},
			wantErr: ErrMissingCredentials,
		},
		{
			name:    "blank values count as missing",
			flags:   Flags{UserID: "  ", UserKey: "\t"},
			env:     map[string]string{},
			wantErr: ErrMissingCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveWith(tt.flags, env(tt.env))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveWith_InvalidURL(t *testing.T) {
	_, err := ResolveWith(Flags{UserID: "a", UserKey: "b", APIURL: "not a url"}, env(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIURL")
}

func TestResolve_ReadsProcessEnvironment(t *testing.T) {
	t.Setenv(EnvUserID, "carol")
	t.Setenv(EnvUserKey, "k")
	t.Setenv(EnvAPIURL, "")

	cfg, err := Resolve(Flags{})
	require.NoError(t, err)
	assert.Equal(t, "carol", cfg.Credentials.ID)
	assert.Equal(t, alchemiscale.DefaultURL, cfg.APIURL)
}

func TestScopeKeyFile(t *testing.T) {
	sk, err := domain.ParseScopedKey("AlchemicalNetwork-abc123-org-camp-proj")
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "scoped-key.dat")

	require.NoError(t, WriteScopeKey(path, sk))
	got, err := ReadScopeKey(path)
	require.NoError(t, err)
	assert.Equal(t, sk, got)
}

func TestReadScopeKey_TrimsWhitespace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scoped-key.dat")
	require.NoError(t, os.WriteFile(path, []byte("\n  AlchemicalNetwork-abc123-org-camp-proj \r\n"), 0644))

	sk, err := ReadScopeKey(path)
	require.NoError(t, err)
	assert.Equal(t, "org-camp-proj", sk.Scope.String())
}

func TestReadScopeKey_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := ReadScopeKey(filepath.Join(dir, "missing.dat"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(dir, "bad.dat")
	require.NoError(t, os.WriteFile(bad, []byte("not-a-key"), 0644))
	_, err = ReadScopeKey(bad)
	assert.ErrorIs(t, err, domain.ErrInvalidScopedKey)
}
