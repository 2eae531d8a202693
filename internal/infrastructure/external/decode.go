package external

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/crm-portal-api/internal/application/access"
)

// idField identificador que puede llegar como número o como texto.
type idField struct {
	value string
}

func (f *idField) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		s, err := strconv.Unquote(string(b))
		if err != nil {
			return err
		}
		f.value = s
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return nil // objetos u otros tipos no son un id
	}
	f.value = n.String()
	return nil
}

type userRef struct {
	ID       idField `json:"id"`
	Username string  `json:"username"`
}

type dataBlock struct {
	ID          idField  `json:"id"`
	User        *userRef `json:"user"`
	Message     string   `json:"message"`
	Token       string   `json:"token"`
	AccessToken string   `json:"access_token"`
}

// vendorBody forma común de las respuestas de los proveedores. Los campos ambiguos
// (data, error, errors) se decodifican en un segundo paso según su tipo.
type vendorBody struct {
	ID          idField         `json:"id"`
	User        *userRef        `json:"user"`
	Data        json.RawMessage `json:"data"`
	Message     json.RawMessage `json:"message"`
	Error       json.RawMessage `json:"error"`
	Errors      json.RawMessage `json:"errors"`
	Token       string          `json:"token"`
	AccessToken string          `json:"access_token"`
}

type decoded struct {
	body vendorBody
	data *dataBlock
	raw  []byte
}

func decode(raw []byte) decoded {
	d := decoded{raw: raw}
	if err := json.Unmarshal(raw, &d.body); err != nil {
		return d
	}
	if len(d.body.Data) > 0 && d.body.Data[0] == '{' {
		var blk dataBlock
		if err := json.Unmarshal(d.body.Data, &blk); err == nil {
			d.data = &blk
		}
	}
	return d
}

// externalID prueba data.user.id, data.id, user.id, id. nil si ninguno trae valor.
func (d decoded) externalID() *string {
	candidates := make([]string, 0, 4)
	if d.data != nil {
		if d.data.User != nil {
			candidates = append(candidates, d.data.User.ID.value)
		}
		candidates = append(candidates, d.data.ID.value)
	}
	if d.body.User != nil {
		candidates = append(candidates, d.body.User.ID.value)
	}
	candidates = append(candidates, d.body.ID.value)
	for _, c := range candidates {
		if c != "" {
			id := c
			return &id
		}
	}
	return nil
}

// username nombre de usuario asignado por el proveedor, si lo devuelve.
func (d decoded) username() string {
	if d.data != nil && d.data.User != nil && d.data.User.Username != "" {
		return d.data.User.Username
	}
	if d.body.User != nil {
		return d.body.User.Username
	}
	return ""
}

// token prueba token, access_token, data.token, data.access_token.
func (d decoded) token() string {
	for _, t := range []string{d.body.Token, d.body.AccessToken} {
		if t != "" {
			return t
		}
	}
	if d.data != nil {
		if d.data.Token != "" {
			return d.data.Token
		}
		return d.data.AccessToken
	}
	return ""
}

// failure construye el error tipado: message, error (texto o lista), errors por campo,
// data.message y por último el cuerpo crudo.
func (d decoded) failure(status int) *access.ExternalError {
	e := &access.ExternalError{StatusCode: status, Details: fieldErrors(d.body.Errors)}

	if msg := asText(d.body.Message); msg != "" {
		e.Message = msg
	} else if msg := asText(d.body.Error); msg != "" {
		e.Message = msg
	} else if len(e.Details) > 0 {
		e.Message = firstDetail(e.Details)
	} else if d.data != nil && d.data.Message != "" {
		e.Message = d.data.Message
	} else if raw := strings.TrimSpace(string(d.raw)); raw != "" {
		e.Message = truncate(raw, 300)
	} else {
		e.Message = http.StatusText(status)
	}
	return e
}

// asText acepta "texto" o ["a", "b"].
func asText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// fieldErrors acepta {"campo": ["msg"]} o {"campo": "msg"}.
func fieldErrors(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(map[string][]string, len(generic))
	for field, v := range generic {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			out[field] = list
			continue
		}
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[field] = []string{s}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func firstDetail(details map[string][]string) string {
	fields := make([]string, 0, len(details))
	for f := range details {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	for _, f := range fields {
		if len(details[f]) > 0 {
			return f + ": " + details[f][0]
		}
	}
	return ""
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
