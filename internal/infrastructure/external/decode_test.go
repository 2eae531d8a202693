package external_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/crm-portal-api/internal/infrastructure/external"
)

func TestDecode_OrdenDelIdExterno(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"todas las formas", `{"id":1,"user":{"id":2},"data":{"id":3,"user":{"id":"du"}}}`, "du"},
		{"data.id antes que user.id", `{"id":1,"user":{"id":2},"data":{"id":3}}`, "3"},
		{"user.id antes que id", `{"id":1,"user":{"id":2}}`, "2"},
		{"id suelto", `{"id":5}`, "5"},
		{"id como texto", `{"data":{"user":{"id":"u-9"}}}`, "u-9"},
		{"data sin id cae a user.id", `{"data":{"message":"ok"},"user":{"id":4}}`, "4"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id := external.DecodeExternalID([]byte(tc.body))
			require.NotNil(t, id)
			assert.Equal(t, tc.want, *id)
		})
	}
}

func TestDecode_SinIdDevuelveNil(t *testing.T) {
	for _, body := range []string{`{}`, `{"data":{"message":"creado"}}`, `{"data":[1,2]}`, `{"id":null}`, `creado`, ``} {
		assert.Nil(t, external.DecodeExternalID([]byte(body)), body)
	}
}

func TestDecode_MensajeDeError(t *testing.T) {
	cases := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"message antes que error", `{"message":"m","error":"e"}`, http.StatusBadRequest, "m"},
		{"error como texto", `{"error":"e"}`, http.StatusBadRequest, "e"},
		{"error como lista", `{"error":["a","b"]}`, http.StatusBadRequest, "a; b"},
		{"errors por campo", `{"errors":{"name":["requerido"],"email":"inválido"}}`, http.StatusUnprocessableEntity, "email: inválido"},
		{"data.message", `{"data":{"message":"dm"}}`, http.StatusConflict, "dm"},
		{"cuerpo crudo", `oops`, http.StatusInternalServerError, "oops"},
		{"cuerpo vacío", ``, http.StatusBadGateway, "Bad Gateway"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := external.DecodeFailure([]byte(tc.body), tc.status)
			assert.Equal(t, tc.status, e.StatusCode)
			assert.Equal(t, tc.want, e.Message)
		})
	}
}

func TestDecode_DetallesPorCampo(t *testing.T) {
	e := external.DecodeFailure([]byte(`{"message":"validación","errors":{"email":["ya existe","formato"]}}`), http.StatusUnprocessableEntity)
	assert.Equal(t, "validación", e.Message)
	assert.Equal(t, []string{"ya existe", "formato"}, e.Details["email"])
}
