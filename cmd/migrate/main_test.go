package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmigrations "github.com/wolfman30/mindscreen/migrations"
)

func TestParseCommand(t *testing.T) {
	cmd, err := parseCommand(nil)
	require.NoError(t, err)
	assert.Equal(t, "up", cmd.name)

	cmd, err = parseCommand([]string{"down"})
	require.NoError(t, err)
	assert.Equal(t, "down", cmd.name)

	cmd, err = parseCommand([]string{"force", "2"})
	require.NoError(t, err)
	assert.Equal(t, command{name: "force", version: 2}, cmd)

	_, err = parseCommand([]string{"force"})
	assert.Error(t, err)
	_, err = parseCommand([]string{"force", "two"})
	assert.Error(t, err)
	_, err = parseCommand([]string{"version", "extra"})
	assert.Error(t, err)
	_, err = parseCommand([]string{"drop"})
	assert.ErrorContains(t, err, "unknown command")
}

func TestSchemaSourceOrdersScreeningMigrations(t *testing.T) {
	src, err := schemaSource(appmigrations.FS)
	require.NoError(t, err)
	defer func() { _ = src.Close() }()

	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), first)

	next, err := src.Next(first)
	require.NoError(t, err)
	assert.Equal(t, uint(2), next)

	r, identifier, err := src.ReadUp(next)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	assert.Equal(t, "compliance_audit_events", identifier)
}
