package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parisxmas/intake-relay/internal/auth"
	"github.com/parisxmas/intake-relay/internal/models"
	"github.com/parisxmas/intake-relay/internal/service"
)

func TestListSchemas(t *testing.T) {
	schemasPath = ""
	var out bytes.Buffer
	require.NoError(t, listSchemas(&out))

	text := out.String()
	assert.Contains(t, text, "pacientes")
	assert.Contains(t, text, "LISTA")
	assert.Contains(t, text, "especialidad=Traumatólogo")
	assert.Contains(t, text, "rut*")
}

func TestMapPayload(t *testing.T) {
	schemasPath = ""

	var out bytes.Buffer
	in := strings.NewReader(`{"nombre":"Ana","rut":"1-9","edad":30,"dolor":"rodilla","lado":"derecho"}`)
	require.NoError(t, mapPayload(&out, "pacientes", in))

	var got struct {
		Tab string   `json:"tab"`
		Row []string `json:"row"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "LISTA", got.Tab)
	require.Len(t, got.Row, 10)
	_, err := time.Parse(models.TimestampLayout, got.Row[0])
	require.NoError(t, err)
	assert.Equal(t, []string{"Ana", "1-9", "30", "rodilla", "derecho", "", "", "", ""}, got.Row[1:])
}

func TestMapPayload_Errors(t *testing.T) {
	schemasPath = ""

	err := mapPayload(&bytes.Buffer{}, "cardiologo", strings.NewReader(`{}`))
	assert.ErrorIs(t, err, service.ErrUnknownKind)

	err = mapPayload(&bytes.Buffer{}, "traumatologo", strings.NewReader(``))
	var verr *service.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Missing, 5)

	err = mapPayload(&bytes.Buffer{}, "pacientes", strings.NewReader(`{`))
	assert.Error(t, err)
}

func TestMintToken(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, mintToken(&out, "s3cret", "ana", time.Minute))

	claims, err := auth.ValidateToken("s3cret", strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, "ana", claims.Operator)

	assert.Error(t, mintToken(&out, "", "ana", time.Minute))
}
