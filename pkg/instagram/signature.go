package instagram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"strings"
)

// Param is one login parameter. Params preserve insertion order because the
// signature covers the exact serialized bytes.
type Param struct {
	Key   string
	Value interface{}
}

// Params is an ordered login parameter list
type Params []Param

// CanonicalJSON serializes the parameters as a compact JSON object with keys
// in insertion order and no extraneous whitespace.
func (p Params) CanonicalJSON() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, param := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		key, _ := json.Marshal(param.Key)
		b.Write(key)
		b.WriteByte(':')
		value, _ := json.Marshal(param.Value)
		b.Write(value)
	}
	b.WriteByte('}')
	return b.String()
}

// SignedBody produces the `<hex-hmac-sha256>.<canonical-json>` body the login
// endpoint verifies. Deterministic: the same key and parameters always yield
// the same string.
func SignedBody(signatureKey string, params Params) string {
	payload := params.CanonicalJSON()
	mac := hmac.New(sha256.New, []byte(signatureKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil)) + "." + payload
}

// SignParams wraps the signed body in the form fields the login endpoint
// expects.
func SignParams(signatureKey, keyVersion string, params Params) url.Values {
	form := url.Values{}
	form.Set("ig_sig_key_version", keyVersion)
	form.Set("signed_body", SignedBody(signatureKey, params))
	return form
}
