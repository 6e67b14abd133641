package config

import (
	"errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

const testMainConf = `
[acme]
acme_email = "file@example.com"
acme_url = "https://acme.example.com/file-directory"
renew_if_days_left = 14

[system]
group = "acme-redirect"
exec = ["systemctl reload nginx"]
exec_extra = ["echo done"]
unknown_key = "ignored"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func setupConfigFiles(t *testing.T, mainConf string, certs map[string]string) Invocation {
	t.Helper()
	dir := t.TempDir()
	confDir := filepath.Join(dir, "acme-redirect.d")
	require.NoError(t, os.Mkdir(confDir, 0700))

	writeFile(t, filepath.Join(dir, "acme-redirect.conf"), mainConf)
	for name, content := range certs {
		writeFile(t, filepath.Join(confDir, name), content)
	}

	return Invocation{
		Config:    filepath.Join(dir, "acme-redirect.conf"),
		ConfigDir: confDir,
		DataDir:   "/var/lib/acme-redirect",
		ChallDir:  "/run/acme-redirect",
		AcmeUrl:   "https://acme.example.com/directory",
	}
}

func TestLoad(t *testing.T) {
	inv := setupConfigFiles(t, testMainConf, map[string]string{
		"example.com.conf": `
[cert]
name = "example.com"
dns_names = ["example.com", "www.example.com"]
`,
		"b.example.com.conf": `
[cert]
name = "b.example.com"
dns_names = ["b.example.com"]
must_staple = true
exec = ["systemctl reload postfix"]
`,
		"README": "not a config file",
		"old.conf.bak": `garbage [[[`,
	})

	conf, err := Load(inv)
	require.NoError(t, err)

	assert.Equal(t, "file@example.com", conf.AcmeEmail)
	assert.Equal(t, int64(14), conf.RenewIfDaysLeft)
	assert.Equal(t, "/var/lib/acme-redirect", conf.DataDir)
	assert.Equal(t, "/run/acme-redirect", conf.ChallDir)
	assert.Equal(t, "acme-redirect", conf.Group)
	assert.Equal(t, []string{"systemctl reload nginx"}, conf.Exec)
	assert.Equal(t, []string{"echo done"}, conf.ExecExtra)
	assert.Equal(t, []CertConfig{
		{Name: "b.example.com", DnsNames: []string{"b.example.com"}, MustStaple: true, Exec: []string{"systemctl reload postfix"}},
		{Name: "example.com", DnsNames: []string{"example.com", "www.example.com"}},
	}, conf.Certs)
}

func TestLoad_EmailOverride(t *testing.T) {
	inv := setupConfigFiles(t, testMainConf, nil)
	inv.AcmeEmail = "cli@example.com"

	conf, err := Load(inv)
	require.NoError(t, err)
	assert.Equal(t, "cli@example.com", conf.AcmeEmail)
	assert.Empty(t, conf.Certs)
}

func TestLoad_AcmeUrlFromInvocationOnly(t *testing.T) {
	inv := setupConfigFiles(t, testMainConf, nil)

	conf, err := Load(inv)
	require.NoError(t, err)
	assert.Equal(t, "https://acme.example.com/directory", conf.AcmeUrl)
}

func TestLoad_Defaults(t *testing.T) {
	inv := setupConfigFiles(t, "", nil)

	conf, err := Load(inv)
	require.NoError(t, err)
	assert.Equal(t, DefaultRenewIfDaysLeft, conf.RenewIfDaysLeft)
	assert.Equal(t, int64(30), conf.RenewIfDaysLeft)
	assert.Empty(t, conf.AcmeEmail)
	assert.Empty(t, conf.Group)
	assert.Empty(t, conf.Exec)
	assert.Empty(t, conf.ExecExtra)
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing main file", func(t *testing.T) {
		inv := setupConfigFiles(t, "", nil)
		inv.Config = filepath.Join(t.TempDir(), "missing.conf")

		_, err := Load(inv)
		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, inv.Config, confErr.Path)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
	t.Run("malformed main file", func(t *testing.T) {
		inv := setupConfigFiles(t, "[acme\nacme_email = ", nil)

		_, err := Load(inv)
		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, inv.Config, confErr.Path)
	})
	t.Run("missing config dir", func(t *testing.T) {
		inv := setupConfigFiles(t, "", nil)
		inv.ConfigDir = filepath.Join(inv.ConfigDir, "missing")

		_, err := Load(inv)
		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, inv.ConfigDir, confErr.Path)
	})
	t.Run("malformed cert file", func(t *testing.T) {
		inv := setupConfigFiles(t, "", map[string]string{
			"a.conf":   "[cert]\nname = \"a\"\ndns_names = [\"a.example.com\"]\n",
			"bad.conf": "[cert]\nname = ",
		})

		_, err := Load(inv)
		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr)
		assert.Equal(t, filepath.Join(inv.ConfigDir, "bad.conf"), confErr.Path)
	})
	t.Run("empty dns names", func(t *testing.T) {
		inv := setupConfigFiles(t, "", map[string]string{
			"a.conf": "[cert]\nname = \"a\"\ndns_names = []\n",
		})

		_, err := Load(inv)
		assert.ErrorIs(t, err, ErrMissingDnsNames)
	})
	t.Run("missing name", func(t *testing.T) {
		inv := setupConfigFiles(t, "", map[string]string{
			"a.conf": "[cert]\ndns_names = [\"a.example.com\"]\n",
		})

		_, err := Load(inv)
		assert.ErrorIs(t, err, ErrMissingName)
	})
	t.Run("duplicate name", func(t *testing.T) {
		inv := setupConfigFiles(t, "", map[string]string{
			"a.conf": "[cert]\nname = \"a\"\ndns_names = [\"a.example.com\"]\n",
			"b.conf": "[cert]\nname = \"a\"\ndns_names = [\"b.example.com\"]\n",
		})

		_, err := Load(inv)
		var confErr *ConfigError
		require.ErrorAs(t, err, &confErr)
		assert.True(t, errors.Is(err, ErrDuplicateName))
		assert.Equal(t, filepath.Join(inv.ConfigDir, "b.conf"), confErr.Path)
	})
}

func TestConfig_FilterCerts(t *testing.T) {
	conf := &Config{Certs: []CertConfig{
		{Name: "a", DnsNames: []string{"a.example.com"}},
		{Name: "b", DnsNames: []string{"b.example.com"}},
		{Name: "a", DnsNames: []string{"other.example.com"}},
		{Name: "c", DnsNames: []string{"c.example.com"}},
	}}

	names := func(filter Filter) []string {
		var out []string
		for cert := range conf.FilterCerts(filter) {
			out = append(out, cert.Name)
		}
		return out
	}

	assert.Equal(t, []string{"a", "b", "a", "c"}, names(nil))
	assert.Equal(t, []string{"a", "b", "a", "c"}, names(NewFilter()))
	assert.Equal(t, []string{"a", "a"}, names(NewFilter("a")))
	assert.Equal(t, []string{"b", "c"}, names(NewFilter("c", "b", "missing")))
	assert.Empty(t, names(NewFilter("missing")))

	// repeated iteration sees the same view
	assert.Equal(t, slices.Collect(conf.FilterCerts(nil)), slices.Collect(conf.FilterCerts(nil)))

	// stopping early is allowed
	for cert := range conf.FilterCerts(nil) {
		assert.Equal(t, "a", cert.Name)
		break
	}
}
