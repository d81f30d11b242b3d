package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/loanform/internal/core/domain"
)

func TestFieldCmd_HasSubcommands(t *testing.T) {
	commands := fieldCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "get")
	assert.Contains(t, commandNames, "set")
	assert.Contains(t, commandNames, "clear")
	assert.Contains(t, commandNames, "list")
}

func TestFieldSetCmd_RequiresTwoArgs(t *testing.T) {
	_, err := runCommand("field", "set", "pan")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestFieldSetCmd_SetsUserValue(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	out, err := runCommand("field", "set", "director_name_0", "Ravi Kumar", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "Set director_name_0 = Ravi Kumar")
	assert.Contains(t, out, "Saved application")

	field, err := applicationService.GetField(context.Background(), id, "director_name_0")
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", field.Value)
	assert.Equal(t, domain.OriginUserEntered, field.Origin)
}

func TestFieldSetCmd_UnknownKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	_, err := runCommand("field", "set", "favourite_colour", "blue", "--session", id)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestFieldSetCmd_UsesMostRecentSession(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	_, err := runCommand("field", "set", "pan", "ABCDE1234F")

	require.NoError(t, err)
	field, err := applicationService.GetField(context.Background(), id, "pan")
	require.NoError(t, err)
	assert.Equal(t, "ABCDE1234F", field.Value)
}

func TestFieldGetCmd_ShowsOrigin(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)
	_, err := applicationService.SetField(context.Background(), id, "email", "owner@acme.in")
	require.NoError(t, err)

	out, err := runCommand("field", "get", "email", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "email: owner@acme.in")
	assert.Contains(t, out, "Origin: user_entered")
}

func TestFieldGetCmd_Unset(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	out, err := runCommand("field", "get", "email", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "email: (empty)")
	assert.Contains(t, out, "Origin: unset")
}

func TestFieldClearCmd_IsSticky(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)

	out, err := runCommand("field", "clear", "pan", "--session", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Cleared pan")

	applied, err := applicationService.ApplyExtraction(ctx, id, map[string]string{"PAN": "ABCDE1234F"}, domain.DocumentSource{})
	require.NoError(t, err)
	assert.Empty(t, applied.Written)
	assert.Equal(t, []string{"pan"}, applied.Skipped)
}

func TestFieldListCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	ctx := context.Background()
	id := startSession(t)
	_, err := applicationService.SetField(ctx, id, "enterprise_name", "Acme Traders")
	require.NoError(t, err)
	_, err = applicationService.ApplyExtraction(ctx, id, map[string]string{"PAN": "ABCDE1234F"}, domain.DocumentSource{ID: "doc-1"})
	require.NoError(t, err)

	out, err := runCommand("field", "list", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "enterprise_name")
	assert.Contains(t, out, "[user_entered]")
	assert.Contains(t, out, "[document_derived]")
	assert.Contains(t, out, "Total: 2 fields")
}

func TestFieldListCmd_Empty(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	id := startSession(t)

	out, err := runCommand("field", "list", "--session", id)

	require.NoError(t, err)
	assert.Contains(t, out, "No fields set.")
}

func TestDisplayValue(t *testing.T) {
	assert.Equal(t, "(empty)", displayValue(""))
	assert.Equal(t, "(empty)", displayValue("  "))
	assert.Equal(t, "x", displayValue("x"))
}

func TestOriginLabel(t *testing.T) {
	assert.Equal(t, "entered", originLabel(domain.OriginUserEntered))
	assert.Equal(t, "from document", originLabel(domain.OriginDocumentDerived))
	assert.Equal(t, "", originLabel(domain.OriginUnset))
}
