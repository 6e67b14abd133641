package main

import (
	"flag"
	"github.com/1f349/acme-redirect/config"
	"github.com/go-acme/lego/v4/lego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestRegisterInvocationFlags(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		f := flag.NewFlagSet("test", flag.ContinueOnError)
		inv, err := registerInvocationFlags(f)
		require.NoError(t, err)
		require.NoError(t, f.Parse(nil))

		assert.Equal(t, config.Invocation{
			Config:    "/etc/acme-redirect.conf",
			ConfigDir: "/etc/acme-redirect.d",
			DataDir:   "/var/lib/acme-redirect",
			ChallDir:  "/run/acme-redirect",
			AcmeUrl:   lego.LEDirectoryProduction,
		}, *inv)
	})
	t.Run("environment", func(t *testing.T) {
		t.Setenv("DATA_DIR", "/srv/acme/data")
		t.Setenv("ACME_EMAIL", "env@example.com")
		t.Setenv("ACME_URL", lego.LEDirectoryStaging)

		f := flag.NewFlagSet("test", flag.ContinueOnError)
		inv, err := registerInvocationFlags(f)
		require.NoError(t, err)
		require.NoError(t, f.Parse(nil))

		assert.Equal(t, "/srv/acme/data", inv.DataDir)
		assert.Equal(t, "env@example.com", inv.AcmeEmail)
		assert.Equal(t, lego.LEDirectoryStaging, inv.AcmeUrl)
	})
	t.Run("flags override environment", func(t *testing.T) {
		t.Setenv("ACME_EMAIL", "env@example.com")

		f := flag.NewFlagSet("test", flag.ContinueOnError)
		inv, err := registerInvocationFlags(f)
		require.NoError(t, err)
		require.NoError(t, f.Parse([]string{"-acme-email", "cli@example.com", "-chall-dir", "/tmp/chall"}))

		assert.Equal(t, "cli@example.com", inv.AcmeEmail)
		assert.Equal(t, "/tmp/chall", inv.ChallDir)
	})
}

func TestInvocationArg(t *testing.T) {
	inv := &config.Invocation{Config: "a.conf"}
	got, err := invocationArg([]interface{}{inv})
	require.NoError(t, err)
	assert.Same(t, inv, got)

	_, err = invocationArg(nil)
	assert.Error(t, err)
	_, err = invocationArg([]interface{}{"wrong"})
	assert.Error(t, err)
}

func TestWarnUnknownCerts(t *testing.T) {
	// only logs, make sure unknown names do not panic
	warnUnknownCerts(&config.Config{Certs: []config.CertConfig{{Name: "a"}}}, []string{"a", "b"})
}
